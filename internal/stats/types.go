package stats

import (
	"time"

	"github.com/ethDreamer/json-rpc-snoop/internal/proxy"
)

// FeedEvent wraps a TrafficEvent with a unique feed ID.
type FeedEvent struct {
	ID string `json:"id"`
	proxy.TrafficEvent
}

// WSMessage is the envelope for all WebSocket messages.
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Snapshot is a point-in-time view of accumulated traffic statistics.
type Snapshot struct {
	Requests         uint64            `json:"requests"`
	Responses        uint64            `json:"responses"`
	DroppedRequests  uint64            `json:"dropped_requests"`
	DroppedResponses uint64            `json:"dropped_responses"`
	Suppressed       uint64            `json:"suppressed"`
	RPCErrors        uint64            `json:"rpc_errors"`
	BytesIn          uint64            `json:"bytes_in"`
	BytesOut         uint64            `json:"bytes_out"`
	MethodCounts     map[string]uint64 `json:"method_counts"`
	StatusCounts     map[string]uint64 `json:"status_counts"`
	TimeSeries       []TimeSeriesPoint `json:"time_series"`
}

// TimeSeriesPoint is a single point in the 60-minute time series.
type TimeSeriesPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Count     uint64    `json:"count"`
	Dropped   uint64    `json:"dropped"`
}

// InitialState is sent to clients on WebSocket connect.
type InitialState struct {
	Events []*FeedEvent `json:"events"`
	Stats  *Snapshot    `json:"stats"`
}
