// Package filter decides how much of each proxied exchange gets
// printed, based on user-configured suppression rules.
package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase identifies one renderable half of a proxied exchange.
type Phase int

const (
	PhaseRequest Phase = iota
	PhaseResponse
)

func (p Phase) String() string {
	if p == PhaseResponse {
		return "response"
	}
	return "request"
}

// Scope restricts a rule to one phase, or covers both.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeRequest
	ScopeResponse
)

func (s Scope) String() string {
	switch s {
	case ScopeRequest:
		return "REQUEST"
	case ScopeResponse:
		return "RESPONSE"
	default:
		return "ALL"
	}
}

func (s Scope) covers(p Phase) bool {
	switch s {
	case ScopeRequest:
		return p == PhaseRequest
	case ScopeResponse:
		return p == PhaseResponse
	default:
		return true
	}
}

// SelectorKind says what a rule's target is compared against.
type SelectorKind int

const (
	SelectMethod SelectorKind = iota
	SelectPath
)

func (k SelectorKind) String() string {
	if k == SelectPath {
		return "path"
	}
	return "method"
}

// Rule is one user-configured suppression entry. A nil MaxLines means a
// matching phase prints nothing at all; a value caps the body at that
// many lines.
type Rule struct {
	Kind     SelectorKind
	Target   string
	MaxLines *int
	Scope    Scope
}

func (r Rule) String() string {
	s := fmt.Sprintf("%s %s", r.Kind, r.Target)
	if r.MaxLines != nil {
		s += fmt.Sprintf(" (max %d lines", *r.MaxLines)
	} else {
		s += " (suppress"
	}
	return s + ", " + r.Scope.String() + ")"
}

// ParseRule parses the TARGET[:MAXLINES][:SCOPE] grammar shared by
// --suppress-method and --suppress-path. MAXLINES must be at least 1;
// leaving it out means full suppression.
func ParseRule(kind SelectorKind, spec string) (Rule, error) {
	parts := strings.Split(spec, ":")
	if parts[0] == "" {
		return Rule{}, fmt.Errorf("suppression rule %q: empty target", spec)
	}

	rule := Rule{Kind: kind, Target: parts[0], Scope: ScopeAll}
	rest := parts[1:]
	if len(rest) > 2 {
		return Rule{}, fmt.Errorf("suppression rule %q: too many fields", spec)
	}

	if len(rest) > 0 {
		if n, err := strconv.Atoi(rest[0]); err == nil {
			if n < 1 {
				return Rule{}, fmt.Errorf("suppression rule %q: MAXLINES must be at least 1", spec)
			}
			rule.MaxLines = &n
			rest = rest[1:]
		} else if len(rest) == 2 {
			return Rule{}, fmt.Errorf("suppression rule %q: invalid MAXLINES %q", spec, rest[0])
		}
	}

	if len(rest) == 1 {
		switch strings.ToUpper(rest[0]) {
		case "REQUEST":
			rule.Scope = ScopeRequest
		case "RESPONSE":
			rule.Scope = ScopeResponse
		case "ALL":
			rule.Scope = ScopeAll
		default:
			return Rule{}, fmt.Errorf("suppression rule %q: unknown scope %q", spec, rest[0])
		}
	}

	return rule, nil
}

// ParseRules parses a list of rule specs of one selector kind.
func ParseRules(kind SelectorKind, specs []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, s := range specs {
		r, err := ParseRule(kind, s)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}
