package tracing

import (
	"errors"

	"go.opentelemetry.io/otel/attribute"
)

var allowedAttributeKeys = map[attribute.Key]struct{}{
	"http.method":             {},
	"http.route":              {},
	"http.status_code":        {},
	"http.server_duration_ms": {},
	"request_id":              {},
	"booking.ref_id":          {},
	"booking.event_type":      {},
}

// SafeAttributes drops attributes that may carry user supplied payloads.
func SafeAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedAttributeKeys[attr.Key]; ok {
			out = append(out, attr)
		}
	}
	return out
}

// SafeError replaces err with a payload-free error for span recording.
func SafeError(err error) error {
	if err == nil {
		return nil
	}
	var typed interface{ Type() string }
	if errors.As(err, &typed) {
		return errors.New(typed.Type())
	}
	return errors.New("request failed")
}
