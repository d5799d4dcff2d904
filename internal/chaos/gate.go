// Package chaos implements probabilistic request/response dropping for
// failure injection.
package chaos

import (
	"fmt"
	"math/rand/v2"
)

// Source yields uniform draws in [0,n). The process RNG is used when
// nil is passed to NewGate; tests inject a deterministic source.
type Source interface {
	IntN(n int) int
}

type processSource struct{}

func (processSource) IntN(n int) int { return rand.IntN(n) }

// Gate decides, independently per forwarding phase, whether to simulate
// a drop. It holds no per-session state and is safe for concurrent use
// as long as its Source is.
type Gate struct {
	requestRate  int
	responseRate int
	src          Source
}

// NewGate validates the configured drop rates and builds a gate. Rates
// outside [0,100] are rejected outright rather than clamped: chaos
// settings drive failure-injection tests, and a silently adjusted rate
// would invalidate them.
func NewGate(requestRate, responseRate int, src Source) (*Gate, error) {
	if requestRate < 0 || requestRate > 100 {
		return nil, fmt.Errorf("drop request rate %d: must be between 0 and 100", requestRate)
	}
	if responseRate < 0 || responseRate > 100 {
		return nil, fmt.Errorf("drop response rate %d: must be between 0 and 100", responseRate)
	}
	if src == nil {
		src = processSource{}
	}
	return &Gate{
		requestRate:  requestRate,
		responseRate: responseRate,
		src:          src,
	}, nil
}

// DropRequest reports whether the request phase of one session should
// be dropped. Each call is an independent Bernoulli trial.
func (g *Gate) DropRequest() bool { return g.drop(g.requestRate) }

// DropResponse reports whether the response phase of one session should
// be dropped, independently of any request decision.
func (g *Gate) DropResponse() bool { return g.drop(g.responseRate) }

func (g *Gate) drop(rate int) bool {
	if rate == 0 {
		return false
	}
	if rate == 100 {
		return true
	}
	return g.src.IntN(100) < rate
}
