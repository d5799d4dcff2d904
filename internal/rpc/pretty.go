package rpc

import (
	"bytes"
	"encoding/json"
)

// Pretty renders raw bytes for display: two-space indented JSON when
// the payload parses, the bytes verbatim otherwise. An empty body
// renders as "null" so the log always shows something for the phase.
func Pretty(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
