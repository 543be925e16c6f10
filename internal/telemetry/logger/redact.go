package logger

import (
	"log/slog"
	"strings"
)

// Attribute keys whose string values are key material or recovered
// plaintext and are never written in full.
var sensitiveKeyPatterns = []string{
	"keystream",
	"key_hex",
	"plaintext",
	"decrypted",
	"seed",
	"passphrase",
	"secret",
}

const redactedValue = "***REDACTED***"

// redactSensitive masks string attributes whose key names key material.
// Groups are walked recursively.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, RedactString(a.Value.String()))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// RedactString masks value. Hex strings keep their "0x" prefix and the
// first and last four digits so two keys can still be told apart in logs.
func RedactString(value string) string {
	if value == "" {
		return value
	}
	if strings.HasPrefix(value, "0x") && len(value) > 2+12 {
		body := value[2:]
		return "0x" + body[:4] + "..." + body[len(body)-4:]
	}
	return redactedValue
}

// IsSensitiveKey reports whether an attribute key names key material.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
