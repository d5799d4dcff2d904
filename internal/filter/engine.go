package filter

import "fmt"

type directiveKind int

const (
	directiveFull directiveKind = iota
	directiveLimited
	directiveSuppress
)

// Directive says how much of a phase to print. Directives are totally
// ordered by strictness: Suppress beats any line limit, and a smaller
// limit beats a larger one. Merging matching rules is a max over this
// order.
type Directive struct {
	kind  directiveKind
	limit int
}

// Full prints the whole body.
var Full = Directive{kind: directiveFull}

// Suppress prints nothing for the phase, not even a placeholder.
var Suppress = Directive{kind: directiveSuppress}

// LimitedTo prints at most n body lines plus a truncation marker.
func LimitedTo(n int) Directive {
	return Directive{kind: directiveLimited, limit: n}
}

// Suppressed reports whether the phase prints nothing at all.
func (d Directive) Suppressed() bool { return d.kind == directiveSuppress }

// Limit returns the line cap and whether one applies.
func (d Directive) Limit() (int, bool) {
	return d.limit, d.kind == directiveLimited
}

func (d Directive) String() string {
	switch d.kind {
	case directiveSuppress:
		return "suppress"
	case directiveLimited:
		return fmt.Sprintf("limit(%d)", d.limit)
	default:
		return "full"
	}
}

// stricter merges two directives, keeping the more restrictive one.
func stricter(a, b Directive) Directive {
	if a.kind != b.kind {
		if a.kind > b.kind {
			return a
		}
		return b
	}
	if a.kind == directiveLimited && b.limit < a.limit {
		return b
	}
	return a
}

// Engine holds the ordered suppression rule set. It is immutable after
// construction and safe for concurrent reads across sessions.
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine from already-parsed rules.
func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: rules}
}

// Rules returns the configured rules in registration order.
func (e *Engine) Rules() []Rule { return e.rules }

// Resolve merges every rule matching the exchange into one directive
// for the given phase. Method rules match against the request's method
// (so a method rule can suppress the response of the same exchange);
// path rules match the inbound path exactly. An explicit no-limit rule
// wins over any line limit, and among limits the smallest wins. No
// match means the phase renders in full.
func (e *Engine) Resolve(method, path string, phase Phase) Directive {
	out := Full
	for _, r := range e.rules {
		if !r.Scope.covers(phase) || !r.matches(method, path) {
			continue
		}
		d := Suppress
		if r.MaxLines != nil {
			d = LimitedTo(*r.MaxLines)
		}
		out = stricter(out, d)
	}
	return out
}

func (r Rule) matches(method, path string) bool {
	switch r.Kind {
	case SelectMethod:
		return method != "" && method == r.Target
	case SelectPath:
		return path == r.Target
	}
	return false
}
