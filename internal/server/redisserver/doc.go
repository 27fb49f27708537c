// Package redisserver provides a Redis protocol compatible key-value server.
//
// The server runs a single event loop over an epoll reactor: one
// goroutine accepts connections, reads requests, executes commands and
// writes replies. There are no locks on the data path.
//
//   - resp.go: incremental request decoder and reply encoders
//   - command.go: command table and the built-in commands
//   - listener_linux.go: non-blocking listening socket
//   - registry_linux.go: connection ownership and lifecycle
//   - server_linux.go: the event loop
//
// Supported commands:
//   - PING, ECHO, QUIT, COMMAND
//   - GET, SET (EX, PX, KEEPTTL)
//
// Replies produced while handling one read event are written with a
// single non-blocking send. Bytes the socket does not accept are
// dropped, logged and counted; there is no outbound queue.
package redisserver
