// Package proxy implements the intercepting JSON-RPC proxy: it reads
// each inbound request, logs it, optionally drops it for chaos testing,
// forwards it byte-for-byte to the upstream endpoint, and logs and
// delivers the response the same way.
package proxy

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ethDreamer/json-rpc-snoop/internal/chaos"
	"github.com/ethDreamer/json-rpc-snoop/internal/filter"
	"github.com/ethDreamer/json-rpc-snoop/internal/render"
	"github.com/ethDreamer/json-rpc-snoop/internal/rpc"
)

// Options configures a Snoop proxy.
type Options struct {
	Upstream   string
	Gate       *chaos.Gate
	Engine     *filter.Engine
	Renderer   *render.Renderer
	Logger     zerolog.Logger
	DropDelay  time.Duration
	RPCModules []string // non-nil enables the rpc_modules override
}

// Snoop is the intercepting proxy handler. Each inbound request runs as
// its own session goroutine; the renderer sink is the only shared
// mutable state between sessions.
type Snoop struct {
	upstream   *url.URL
	rp         *httputil.ReverseProxy
	gate       *chaos.Gate
	engine     *filter.Engine
	renderer   *render.Renderer
	logger     zerolog.Logger
	dropDelay  time.Duration
	rpcModules []string

	observerMu sync.RWMutex
	observers  []EventObserver
}

type transportErrKey struct{}

// New creates a Snoop proxying to the given upstream endpoint.
func New(opts Options) (*Snoop, error) {
	target, err := url.Parse(opts.Upstream)
	if err != nil {
		return nil, err
	}

	s := &Snoop{
		upstream:   target,
		gate:       opts.Gate,
		engine:     opts.Engine,
		renderer:   opts.Renderer,
		logger:     opts.Logger,
		dropDelay:  opts.DropDelay,
		rpcModules: opts.RPCModules,
	}

	s.rp = &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.URL.Path = joinPath(target.Path, req.URL.Path)
			req.Host = target.Host
			// Upstream compression would make the captured body
			// unprintable.
			req.Header.Del("Accept-Encoding")
		},
		ErrorHandler: func(w http.ResponseWriter, req *http.Request, err error) {
			if p, ok := req.Context().Value(transportErrKey{}).(*error); ok {
				*p = err
			}
		},
	}

	return s, nil
}

// ServeHTTP runs one full proxy session: read and log the request,
// chaos-check it, forward it, log the response, chaos-check it,
// deliver it.
func (s *Snoop) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.NewString()
	path := r.URL.Path

	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		// Client went away mid-send; not a proxy failure.
		s.logger.Debug().Err(err).Str("path", path).Msg("client disconnected while sending request")
		return
	}

	env := rpc.Decode(body)

	reqDir := s.engine.Resolve(env.Method, path, filter.PhaseRequest)
	s.renderer.Render(render.Block{
		Label:     "REQUEST",
		Role:      render.RoleRequest,
		Note:      path,
		Headers:   r.Header,
		Body:      body,
		Directive: reqDir,
	})
	s.notify(TrafficEvent{
		Timestamp:  time.Now().UTC(),
		SessionID:  sessionID,
		Phase:      "request",
		Method:     env.Method,
		Path:       path,
		Suppressed: reqDir.Suppressed(),
		Bytes:      len(body),
	})

	if s.gate.DropRequest() {
		s.renderer.RenderMarker("DROPPED REQUEST (simulated)", path)
		s.notify(TrafficEvent{
			Timestamp: time.Now().UTC(),
			SessionID: sessionID,
			Phase:     "request",
			Method:    env.Method,
			Path:      path,
			Dropped:   true,
		})
		s.dropReply(w)
		return
	}

	if s.rpcModules != nil && env.Method == "rpc_modules" {
		s.serveModulesOverride(w, sessionID, env.Method, path)
		return
	}

	r.Body = io.NopCloser(bytes.NewReader(body))
	r.ContentLength = int64(len(body))

	rec := &responseRecorder{header: make(http.Header), body: &bytes.Buffer{}, code: http.StatusOK}
	var terr error
	ctx := context.WithValue(r.Context(), transportErrKey{}, &terr)
	s.rp.ServeHTTP(rec, r.WithContext(ctx))

	if terr != nil {
		s.transportError(w, sessionID, env.Method, path, terr)
		return
	}

	respBody := rec.body.Bytes()
	respEnv := rpc.Decode(respBody)

	role := render.RoleResponse
	if respEnv.HasError || rec.code >= 400 {
		role = render.RoleError
	}
	respDir := s.engine.Resolve(env.Method, path, filter.PhaseResponse)
	s.renderer.Render(render.Block{
		Label:     "RESPONSE",
		Role:      role,
		Status:    rec.code,
		Headers:   rec.header,
		Body:      respBody,
		Directive: respDir,
	})
	s.notify(TrafficEvent{
		Timestamp:  time.Now().UTC(),
		SessionID:  sessionID,
		Phase:      "response",
		Method:     env.Method,
		Path:       path,
		Status:     rec.code,
		RPCError:   respEnv.HasError,
		Suppressed: respDir.Suppressed(),
		Bytes:      len(respBody),
	})

	if s.gate.DropResponse() {
		s.renderer.RenderMarker("DROPPED RESPONSE (simulated)", path)
		s.notify(TrafficEvent{
			Timestamp: time.Now().UTC(),
			SessionID: sessionID,
			Phase:     "response",
			Method:    env.Method,
			Path:      path,
			Status:    rec.code,
			Dropped:   true,
		})
		s.dropReply(w)
		return
	}

	for k, v := range rec.header {
		w.Header()[k] = v
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(respBody)))
	w.WriteHeader(rec.code)
	w.Write(respBody)
}

// serveModulesOverride answers rpc_modules locally without contacting
// the upstream. Useful for attaching a geth console to endpoints that
// don't implement the method.
func (s *Snoop) serveModulesOverride(w http.ResponseWriter, sessionID, method, path string) {
	respBody := modulesOverrideBody(s.rpcModules)

	respDir := s.engine.Resolve(method, path, filter.PhaseResponse)
	s.renderer.Render(render.Block{
		Label:     "RESPONSE",
		Role:      render.RoleResponse,
		Status:    http.StatusOK,
		Body:      respBody,
		Directive: respDir,
	})
	s.notify(TrafficEvent{
		Timestamp:  time.Now().UTC(),
		SessionID:  sessionID,
		Phase:      "response",
		Method:     method,
		Path:       path,
		Status:     http.StatusOK,
		Suppressed: respDir.Suppressed(),
		Bytes:      len(respBody),
	})

	if s.gate.DropResponse() {
		s.renderer.RenderMarker("DROPPED RESPONSE (simulated)", path)
		s.dropReply(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(respBody)
}

// transportError reports an upstream connectivity failure. It always
// renders in full: an operator debugging connectivity must see it no
// matter what suppression rules are active.
func (s *Snoop) transportError(w http.ResponseWriter, sessionID, method, path string, terr error) {
	errBody := rpcErrorBody("error processing response: " + terr.Error())

	s.logger.Error().Err(terr).Str("path", path).Msg("upstream transport error")
	s.renderer.Render(render.Block{
		Label:     "RESPONSE",
		Role:      render.RoleError,
		Status:    http.StatusBadGateway,
		Body:      errBody,
		Directive: filter.Full,
	})
	s.notify(TrafficEvent{
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Phase:     "response",
		Method:    method,
		Path:      path,
		Status:    http.StatusBadGateway,
		RPCError:  true,
		Bytes:     len(errBody),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	w.Write(errBody)
}

// dropReply answers a chaos-dropped exchange with a synthetic failure.
// 502 keeps the wire response indistinguishable from a genuine upstream
// failure; the log labels tell them apart.
func (s *Snoop) dropReply(w http.ResponseWriter) {
	if s.dropDelay > 0 {
		time.Sleep(s.dropDelay)
	}
	body := rpcErrorBody("simulated drop (chaos)")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	w.Write(body)
}

// joinPath appends the inbound path suffix to the upstream base path.
func joinPath(base, p string) string {
	base = strings.TrimRight(base, "/")
	if p == "" || p == "/" {
		if base == "" {
			return "/"
		}
		return base
	}
	return base + p
}

// responseRecorder captures the upstream response so the session can
// log it and chaos-check it before anything reaches the client.
type responseRecorder struct {
	header http.Header
	body   *bytes.Buffer
	code   int
}

func (rr *responseRecorder) Header() http.Header {
	return rr.header
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	return rr.body.Write(b)
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.code = code
}
