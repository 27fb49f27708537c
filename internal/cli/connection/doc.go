// Package connection provides the reactorkv-cli connection to a server.
//
//   - client.go: RESP client over TCP (tidwall/resp)
//   - manager.go: current connection for the REPL
package connection
