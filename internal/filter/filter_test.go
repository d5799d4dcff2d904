package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(n int) *int { return &n }

func TestParseRuleGrammar(t *testing.T) {
	cases := []struct {
		spec string
		want Rule
	}{
		{"eth_getBlockByHash", Rule{Kind: SelectMethod, Target: "eth_getBlockByHash", Scope: ScopeAll}},
		{"eth_call:5", Rule{Kind: SelectMethod, Target: "eth_call", MaxLines: intp(5), Scope: ScopeAll}},
		{"eth_call:RESPONSE", Rule{Kind: SelectMethod, Target: "eth_call", Scope: ScopeResponse}},
		{"eth_call:5:REQUEST", Rule{Kind: SelectMethod, Target: "eth_call", MaxLines: intp(5), Scope: ScopeRequest}},
		{"eth_call:10:ALL", Rule{Kind: SelectMethod, Target: "eth_call", MaxLines: intp(10), Scope: ScopeAll}},
		{"eth_call:response", Rule{Kind: SelectMethod, Target: "eth_call", Scope: ScopeResponse}},
	}
	for _, tc := range cases {
		t.Run(tc.spec, func(t *testing.T) {
			got, err := ParseRule(SelectMethod, tc.spec)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParsePathRule(t *testing.T) {
	got, err := ParseRule(SelectPath, "/eth/v1/builder/validators:10:REQUEST")
	require.NoError(t, err)
	assert.Equal(t, Rule{
		Kind:     SelectPath,
		Target:   "/eth/v1/builder/validators",
		MaxLines: intp(10),
		Scope:    ScopeRequest,
	}, got)
}

func TestParseRuleErrors(t *testing.T) {
	specs := []string{
		"",
		":5",
		"eth_call:0",
		"eth_call:-3",
		"eth_call:BOTH",
		"eth_call:abc:REQUEST",
		"eth_call:5:REQUEST:extra",
	}
	for _, spec := range specs {
		t.Run(spec, func(t *testing.T) {
			_, err := ParseRule(SelectMethod, spec)
			require.Error(t, err)
		})
	}
}

func TestParseRulesStopsAtFirstError(t *testing.T) {
	_, err := ParseRules(SelectMethod, []string{"ok_method", "bad:0"})
	require.Error(t, err)
}

func TestResolveNoMatch(t *testing.T) {
	e := NewEngine(nil)
	assert.Equal(t, Full, e.Resolve("eth_call", "/", PhaseRequest))
}

func TestResolveFullSuppressWinsOverLimit(t *testing.T) {
	// A no-limit method rule and a limited path rule both match; the
	// explicit suppress must win.
	e := NewEngine([]Rule{
		{Kind: SelectMethod, Target: "eth_getLogs", Scope: ScopeAll},
		{Kind: SelectPath, Target: "/rpc", MaxLines: intp(5), Scope: ScopeAll},
	})
	assert.Equal(t, Suppress, e.Resolve("eth_getLogs", "/rpc", PhaseRequest))
}

func TestResolveSmallestLimitWins(t *testing.T) {
	e := NewEngine([]Rule{
		{Kind: SelectMethod, Target: "eth_call", MaxLines: intp(8), Scope: ScopeAll},
		{Kind: SelectPath, Target: "/rpc", MaxLines: intp(3), Scope: ScopeAll},
	})
	assert.Equal(t, LimitedTo(3), e.Resolve("eth_call", "/rpc", PhaseRequest))
}

func TestResolveScopesComposeIndependently(t *testing.T) {
	// A Request-only rule and a Response-only rule on the same method
	// coexist without shadowing each other.
	e := NewEngine([]Rule{
		{Kind: SelectMethod, Target: "eth_call", MaxLines: intp(2), Scope: ScopeRequest},
		{Kind: SelectMethod, Target: "eth_call", Scope: ScopeResponse},
	})
	assert.Equal(t, LimitedTo(2), e.Resolve("eth_call", "/", PhaseRequest))
	assert.Equal(t, Suppress, e.Resolve("eth_call", "/", PhaseResponse))
}

func TestResolveMethodRuleCoversBothPhases(t *testing.T) {
	e := NewEngine([]Rule{
		{Kind: SelectMethod, Target: "eth_getBlockByHash", Scope: ScopeAll},
	})
	assert.Equal(t, Suppress, e.Resolve("eth_getBlockByHash", "/", PhaseRequest))
	assert.Equal(t, Suppress, e.Resolve("eth_getBlockByHash", "/", PhaseResponse))
}

func TestResolvePathRuleScopedToRequest(t *testing.T) {
	e := NewEngine([]Rule{
		{Kind: SelectPath, Target: "/eth/v1/builder/validators", MaxLines: intp(10), Scope: ScopeRequest},
	})
	assert.Equal(t, LimitedTo(10), e.Resolve("", "/eth/v1/builder/validators", PhaseRequest))
	assert.Equal(t, Full, e.Resolve("", "/eth/v1/builder/validators", PhaseResponse))
}

func TestResolveUnparsedMethodNeverMatchesMethodRules(t *testing.T) {
	e := NewEngine([]Rule{
		{Kind: SelectMethod, Target: "eth_call", Scope: ScopeAll},
		{Kind: SelectPath, Target: "/noisy", Scope: ScopeAll},
	})
	// Unparsed envelopes carry no method; only the path rule can apply.
	assert.Equal(t, Full, e.Resolve("", "/", PhaseRequest))
	assert.Equal(t, Suppress, e.Resolve("", "/noisy", PhaseRequest))
}

func TestDirectiveOrdering(t *testing.T) {
	assert.Equal(t, Suppress, stricter(Suppress, LimitedTo(1)))
	assert.Equal(t, Suppress, stricter(LimitedTo(1), Suppress))
	assert.Equal(t, LimitedTo(2), stricter(LimitedTo(2), LimitedTo(7)))
	assert.Equal(t, LimitedTo(2), stricter(LimitedTo(7), LimitedTo(2)))
	assert.Equal(t, LimitedTo(4), stricter(Full, LimitedTo(4)))
	assert.Equal(t, Full, stricter(Full, Full))
}
