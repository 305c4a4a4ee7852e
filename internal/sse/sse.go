// Package sse frames payloads for a text/event-stream response.
package sse

import (
	"encoding/json"
	"fmt"
)

// Done closes a logical stream for providers that synthesize an explicit
// completion event.
const doneSentinel = "[DONE]"

// Encode renders one event frame: a data: line with the JSON-encoded payload
// followed by a blank line. JSON escaping keeps payload newlines from ever
// forming a frame boundary.
func Encode(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		// payloads are plain structs/maps of strings; this is unreachable in
		// practice, but never break framing
		return []byte("data: {}\n\n")
	}
	return fmt.Appendf(nil, "data: %s\n\n", b)
}

// Done returns the terminal sentinel frame.
func Done() []byte {
	return []byte("data: " + doneSentinel + "\n\n")
}
