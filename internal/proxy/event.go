package proxy

import "time"

// TrafficEvent describes one rendered phase of one session. Events are
// purely observational; nothing on the forwarding path depends on them.
type TrafficEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
	Phase      string    `json:"phase"` // "request" or "response"
	Method     string    `json:"method,omitempty"`
	Path       string    `json:"path"`
	Status     int       `json:"status,omitempty"`
	Dropped    bool      `json:"dropped"`
	Suppressed bool      `json:"suppressed"`
	RPCError   bool      `json:"rpc_error,omitempty"`
	Bytes      int       `json:"bytes"`
}

// EventObserver receives a copy of every traffic event.
type EventObserver func(TrafficEvent)

// AddObserver registers a callback invoked for every traffic event.
// Observers must not block; they run on the session goroutine.
func (s *Snoop) AddObserver(fn EventObserver) {
	s.observerMu.Lock()
	defer s.observerMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *Snoop) notify(event TrafficEvent) {
	s.observerMu.RLock()
	observers := s.observers
	s.observerMu.RUnlock()

	for _, fn := range observers {
		fn(event)
	}
}
