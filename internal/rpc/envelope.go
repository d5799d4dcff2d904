package rpc

// Kind classifies a decoded JSON-RPC message.
type Kind int

const (
	// KindUnparsed covers everything that is not a single JSON-RPC
	// object: invalid JSON, batch arrays, bare scalars, empty bodies.
	KindUnparsed Kind = iota
	KindRequest
	KindNotification
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindNotification:
		return "notification"
	case KindResponse:
		return "response"
	default:
		return "unparsed"
	}
}

// Envelope is the decoded, observational view of one JSON-RPC message.
// Raw always holds the original bytes untouched; forwarding uses Raw
// verbatim and never depends on the decode outcome.
type Envelope struct {
	Kind     Kind
	Method   string
	ID       string // raw JSON form of the id field, empty when absent
	HasError bool   // response only: top-level error present and non-null
	Raw      []byte
}
