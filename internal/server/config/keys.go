package config

// Flatten returns cfg as a map keyed by dotted koanf path, suitable as
// loader defaults.
func (c *ServerConfig) Flatten() map[string]any {
	return map[string]any{
		"server.redis.addr":             c.Server.Redis.Addr,
		"server.redis.backlog":          c.Server.Redis.Backlog,
		"server.redis.max_events":       c.Server.Redis.MaxEvents,
		"server.redis.read_buffer_size": c.Server.Redis.ReadBufferSize,
		"server.redis.rate_limit":       c.Server.Redis.RateLimit,
		"server.redis.rate_burst":       c.Server.Redis.RateBurst,
		"server.http.enabled":           c.Server.HTTP.Enabled,
		"server.http.addr":              c.Server.HTTP.Addr,
		"protocol.max_array_len":        c.Protocol.MaxArrayLen,
		"protocol.max_bulk_len":         c.Protocol.MaxBulkLen,
		"protocol.max_inline_len":       c.Protocol.MaxInlineLen,
		"log.level":                     c.Log.Level,
		"log.format":                    c.Log.Format,
	}
}
