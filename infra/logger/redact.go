package logger

import "strings"

const redacted = "[REDACTED]"

// Redact copies fields into a log-safe map. Values of the given keys
// (case-insensitive) are replaced so that signatures and keys never reach a
// log sink.
func Redact(fields map[string]string, keys ...string) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
		for _, key := range keys {
			if strings.EqualFold(k, key) {
				out[k] = redacted
				break
			}
		}
	}
	return out
}
