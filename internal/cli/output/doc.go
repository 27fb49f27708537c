// Package output renders server replies for reactorkv-cli.
//
//   - formatter.go: Formatter interface and factory
//   - reply.go: conversion of RESP values into Reply
//   - raw.go: redis-cli style text
//   - json.go, yaml.go: machine-readable output for scripting
package output
