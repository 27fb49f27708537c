package logger

import (
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"credential",
	"auth",
	"bearer",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// PreviewLen is how many bytes of a payload Preview keeps.
const PreviewLen = 64

// redactSensitive redacts string attributes whose key suggests a secret.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		if a.Value.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		return a
	}

	// Handle nested groups recursively
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// Preview renders a client payload for debug logs: at most PreviewLen
// bytes, quoted so control characters and invalid UTF-8 stay readable,
// with the elided length noted.
func Preview(b []byte) string {
	if len(b) <= PreviewLen {
		return strconv.Quote(string(b))
	}
	head := b[:PreviewLen]
	// Do not cut a multi-byte rune in half.
	for i := 0; i < utf8.UTFMax && !utf8.Valid(head) && len(head) > 0; i++ {
		head = head[:len(head)-1]
	}
	return strconv.Quote(string(head)) + "...(" + strconv.Itoa(len(b)-len(head)) + " more bytes)"
}
