// Package main provides the entry point for reactorkv-cli.
//
// The CLI sends single commands to a reactorkv server or, when run
// without a command, starts an interactive prompt:
//
//	reactorkv-cli ping
//	reactorkv-cli set --ex 60 session:1 alice
//	reactorkv-cli -o json get session:1
//	reactorkv-cli --addr 127.0.0.1:7000
package main
