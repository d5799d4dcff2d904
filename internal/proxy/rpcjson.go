package proxy

import (
	"encoding/json"

	"github.com/tidwall/sjson"
)

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcErrorResponse struct {
	Jsonrpc string   `json:"jsonrpc"`
	ID      int      `json:"id"`
	Error   rpcError `json:"error"`
}

// rpcErrorBody builds a JSON-RPC internal-error response body.
func rpcErrorBody(message string) []byte {
	body, _ := json.Marshal(rpcErrorResponse{
		Jsonrpc: "2.0",
		ID:      1,
		Error:   rpcError{Code: -32603, Message: message},
	})
	return body
}

// modulesOverrideBody builds the synthetic rpc_modules result, mapping
// each module name to version "1.0".
func modulesOverrideBody(modules []string) []byte {
	body := []byte(`{"jsonrpc":"2.0","result":{},"id":1}`)
	for _, m := range modules {
		body, _ = sjson.SetBytes(body, "result."+m, "1.0")
	}
	return body
}
