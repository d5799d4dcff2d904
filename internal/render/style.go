package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Role selects the output style for a rendered block.
type Role int

const (
	RoleRequest Role = iota
	RoleResponse
	RoleError
	RoleDropped
)

// Palette holds the per-role styles. With color disabled every style is
// a zero style, which renders text unchanged, so output stays clean
// when piped or under --no-color.
type Palette struct {
	request  lipgloss.Style
	response lipgloss.Style
	err      lipgloss.Style
	dropped  lipgloss.Style
}

// NewPalette builds the color palette. Requests print cyan, successful
// responses green, errors red, drop markers uncolored.
func NewPalette(noColor bool) Palette {
	if noColor {
		return Palette{}
	}
	return Palette{
		request:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		response: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		err:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

func (p Palette) style(role Role) lipgloss.Style {
	switch role {
	case RoleRequest:
		return p.request
	case RoleResponse:
		return p.response
	case RoleError:
		return p.err
	default:
		return p.dropped
	}
}

// colorize styles each line separately so color codes reset at every
// line break; pagers handle per-line codes much better than one span
// across the whole block.
func colorize(s string, style lipgloss.Style) string {
	lines := strings.Split(s, "\n")
	for i, ln := range lines {
		lines[i] = style.Render(ln)
	}
	return strings.Join(lines, "\n")
}
