package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDecodeRequest(t *testing.T) {
	env := Decode([]byte(`{"jsonrpc":"2.0","method":"eth_blockNumber","params":[],"id":1}`))
	assert.Equal(t, KindRequest, env.Kind)
	assert.Equal(t, "eth_blockNumber", env.Method)
	assert.Equal(t, "1", env.ID)
	assert.False(t, env.HasError)
}

func TestDecodeNotification(t *testing.T) {
	env := Decode([]byte(`{"jsonrpc":"2.0","method":"eth_subscription","params":{}}`))
	assert.Equal(t, KindNotification, env.Kind)
	assert.Equal(t, "eth_subscription", env.Method)
	assert.Empty(t, env.ID)
}

func TestDecodeResponse(t *testing.T) {
	env := Decode([]byte(`{"jsonrpc":"2.0","result":"0x10","id":1}`))
	assert.Equal(t, KindResponse, env.Kind)
	assert.Empty(t, env.Method)
	assert.False(t, env.HasError)
}

func TestDecodeErrorResponse(t *testing.T) {
	env := Decode([]byte(`{"jsonrpc":"2.0","error":{"code":-32601,"message":"method not found"},"id":1}`))
	assert.Equal(t, KindResponse, env.Kind)
	assert.True(t, env.HasError)
}

func TestDecodeNullErrorIsNotAnError(t *testing.T) {
	env := Decode([]byte(`{"jsonrpc":"2.0","result":"0x1","error":null,"id":1}`))
	assert.Equal(t, KindResponse, env.Kind)
	assert.False(t, env.HasError)
}

func TestDecodeUnparsed(t *testing.T) {
	cases := map[string]string{
		"invalid json":  `{"method": eth_call}`,
		"batch array":   `[{"jsonrpc":"2.0","method":"eth_call","id":1}]`,
		"bare scalar":   `42`,
		"empty body":    ``,
		"plain text":    `hello there`,
		"no rpc fields": `{"foo":"bar"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			env := Decode([]byte(body))
			assert.Equal(t, KindUnparsed, env.Kind)
			assert.Empty(t, env.Method)
			assert.Equal(t, body, string(env.Raw))
		})
	}
}

func TestDecodeNonStringMethodIsUnparsed(t *testing.T) {
	env := Decode([]byte(`{"jsonrpc":"2.0","method":42,"id":1}`))
	assert.Equal(t, KindUnparsed, env.Kind)
	assert.Empty(t, env.Method)
}

func TestDecodePreservesRawBytes(t *testing.T) {
	// Raw must come back untouched no matter what goes in; forwarding
	// correctness depends on it.
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.SliceOf(rapid.Byte()).Draw(t, "raw")
		before := append([]byte(nil), raw...)
		env := Decode(raw)
		require.Equal(t, before, env.Raw)
		require.Equal(t, before, raw)
	})
}

func TestPrettyIndentsJSON(t *testing.T) {
	out := Pretty([]byte(`{"a":1,"b":[2,3]}`))
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    2,\n    3\n  ]\n}", out)
}

func TestPrettyPassesThroughNonJSON(t *testing.T) {
	out := Pretty([]byte("not json at all"))
	assert.Equal(t, "not json at all", out)
}

func TestPrettyEmptyBody(t *testing.T) {
	assert.Equal(t, "null", Pretty(nil))
	assert.Equal(t, "null", Pretty([]byte("  \n")))
}
