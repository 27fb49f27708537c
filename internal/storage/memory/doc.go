// Package memory provides the in-memory key-value store for reactorkv.
//
// The store keeps two maps: key to value and key to absolute expiry.
// Expiry is lazy. An entry whose deadline has passed is logically absent
// but stays in memory until the next Get for that key removes it; there
// is no background sweep.
//
// Thread Safety:
//
// A Store is NOT safe for concurrent use. It is owned by the goroutine
// running the server's event loop, which is the only caller.
package memory
