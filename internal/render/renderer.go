// Package render formats proxied traffic into colorized, line-budgeted
// terminal output through a single synchronized sink.
package render

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethDreamer/json-rpc-snoop/internal/filter"
	"github.com/ethDreamer/json-rpc-snoop/internal/rpc"
)

const timestampLayout = "Jan _2 15:04:05.000 2006"

// Block is one phase's complete, self-contained output.
type Block struct {
	Label     string // REQUEST, RESPONSE
	Role      Role
	Status    int         // HTTP status, 0 when not applicable
	Note      string      // inbound path or similar context, may be empty
	Headers   http.Header // printed as preface when header logging is on
	Body      []byte      // raw payload bytes, pretty-printed here
	Directive filter.Directive
}

// Renderer formats blocks and writes each one to the output stream as a
// single write. The internal mutex is the only synchronization shared
// between sessions; nothing else touches the stream.
type Renderer struct {
	mu         sync.Mutex
	out        io.Writer
	palette    Palette
	logHeaders bool
	now        func() time.Time
}

// New creates a renderer writing to out.
func New(out io.Writer, noColor, logHeaders bool) *Renderer {
	return &Renderer{
		out:        out,
		palette:    NewPalette(noColor),
		logHeaders: logHeaders,
		now:        time.Now,
	}
}

// Render formats and writes one phase. A Suppress directive writes
// nothing at all, not even a placeholder line.
func (r *Renderer) Render(b Block) {
	if b.Directive.Suppressed() {
		return
	}

	style := r.palette.style(b.Role)
	var buf bytes.Buffer

	headline := r.now().Format(timestampLayout) + " " + style.Render(b.Label)
	if b.Status != 0 {
		headline += fmt.Sprintf(" (status %d)", b.Status)
	}
	if note := noteString(b.Note); note != "" {
		headline += " " + note
	}
	buf.WriteString(headline)
	buf.WriteByte('\n')

	// Headers are a fixed preface: never budgeted, never truncated.
	if r.logHeaders && len(b.Headers) > 0 {
		writeHeaders(&buf, b.Headers)
	}

	body := rpc.Pretty(b.Body)
	if limit, ok := b.Directive.Limit(); ok {
		body = truncateLines(body, limit)
	}
	buf.WriteString(colorize(body, style))
	buf.WriteByte('\n')

	r.write(buf.Bytes())
}

// RenderMarker writes a single standalone line, used for simulated-drop
// markers so chaos stays distinguishable from genuine failures in logs.
func (r *Renderer) RenderMarker(label, note string) {
	line := r.now().Format(timestampLayout) + " " + label
	if note = noteString(note); note != "" {
		line += " " + note
	}
	r.write([]byte(line + "\n"))
}

func (r *Renderer) write(p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out.Write(p)
}

func writeHeaders(buf *bytes.Buffer, headers http.Header) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteString("headers:\n")
	for _, k := range keys {
		for _, v := range headers[k] {
			fmt.Fprintf(buf, "    (%s,%q)\n", k, v)
		}
	}
}

// truncateLines keeps the first limit lines and appends a marker naming
// how many were cut.
func truncateLines(body string, limit int) string {
	lines := strings.Split(body, "\n")
	if len(lines) <= limit {
		return body
	}
	omitted := len(lines) - limit
	kept := strings.Join(lines[:limit], "\n")
	return kept + fmt.Sprintf("\n... (%d more lines)", omitted)
}

// noteString hides the bare root path, which carries no information.
func noteString(note string) string {
	if note == "/" {
		return ""
	}
	return note
}
