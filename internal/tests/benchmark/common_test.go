package benchmark

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/reactorkv/internal/server/redisserver"
	"github.com/yndnr/reactorkv/internal/storage/memory"
)

// KeyCounts defines the keyspace sizes for benchmarking.
var KeyCounts = []int{1000, 10000, 100000}

// ValueSizes defines the payload sizes for benchmarking.
var ValueSizes = []int{16, 256, 4096}

// newKey generates a unique key.
func newKey() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, _ := ulid.New(ulid.Timestamp(time.Now()), entropy)
	return "key:" + strings.ToLower(id.String())
}

// prefillStore fills a store with count keys and returns them.
func prefillStore(store *memory.Store, count int, ttl time.Duration) []string {
	keys := make([]string, count)
	value := []byte("value")
	for i := range keys {
		keys[i] = fmt.Sprintf("key:%d", i)
		_ = store.Set(keys[i], value, memory.SetOptions{TTL: ttl})
	}
	return keys
}

// encodeSet returns a SET command in wire form.
func encodeSet(key string, value []byte) []byte {
	return redisserver.EncodeCommand([]byte("SET"), []byte(key), value)
}

// encodeGet returns a GET command in wire form.
func encodeGet(key string) []byte {
	return redisserver.EncodeCommand([]byte("GET"), []byte(key))
}
