package rpc

import "github.com/tidwall/gjson"

// Decode classifies raw bytes as a JSON-RPC message. It never fails:
// structural mismatches come back as KindUnparsed with Raw preserved,
// and the proxy keeps forwarding regardless.
func Decode(raw []byte) Envelope {
	env := Envelope{Kind: KindUnparsed, Raw: raw}
	if !gjson.ValidBytes(raw) {
		return env
	}

	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return env
	}

	if id := root.Get("id"); id.Exists() {
		env.ID = id.Raw
	}

	if method := root.Get("method"); method.Exists() && method.Type == gjson.String {
		env.Method = method.String()
		if env.ID != "" {
			env.Kind = KindRequest
		} else {
			env.Kind = KindNotification
		}
		return env
	}

	errField := root.Get("error")
	if root.Get("result").Exists() || errField.Exists() {
		env.Kind = KindResponse
		env.HasError = errField.Exists() && errField.Type != gjson.Null
	}
	return env
}
