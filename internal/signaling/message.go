package signaling

// Side names one of the two candidate sequences of a room.
type Side string

const (
	SideOffer  Side = "offer"
	SideAnswer Side = "answer"
)

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	return s == SideOffer || s == SideAnswer
}

// SessionDescription is the wire form of an SDP descriptor.
// Type is "offer" or "answer".
type SessionDescription struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// CandidateInit is the wire form of an ICE candidate, matching the
// browser's RTCIceCandidateInit shape.
type CandidateInit struct {
	Candidate        string  `json:"candidate"`
	SDPMid           *string `json:"sdpMid,omitempty"`
	SDPMLineIndex    *uint16 `json:"sdpMLineIndex,omitempty"`
	UsernameFragment *string `json:"usernameFragment,omitempty"`
}

// OfferResponse is the payload of GET /offer.
type OfferResponse struct {
	SDP      *SessionDescription `json:"sdp"`
	Stopped  bool                `json:"stopped"`
	Revision int                 `json:"revision"`
}

// AnswerResponse is the payload of GET /answer.
type AnswerResponse struct {
	SDP      *SessionDescription `json:"sdp"`
	Revision int                 `json:"revision"`
}

// CandidatesResponse is the payload of GET /candidate. Next is the
// cursor to pass back as "since" on the following poll.
type CandidatesResponse struct {
	Items []CandidateInit `json:"items"`
	Next  int             `json:"next"`
}

// OKResponse acknowledges a successful POST.
type OKResponse struct {
	OK bool `json:"ok"`
}

// PostSDPRequest is the body of POST /offer and POST /answer.
type PostSDPRequest struct {
	Room string              `json:"room"`
	SDP  *SessionDescription `json:"sdp"`
}

// PostCandidateRequest is the body of POST /candidate.
type PostCandidateRequest struct {
	Room      string         `json:"room"`
	Side      Side           `json:"side"`
	Candidate *CandidateInit `json:"candidate"`
}

// CloseRequest is the body of POST /close.
type CloseRequest struct {
	Room string `json:"room"`
}

// Update is pushed over the websocket feed whenever a room mutates.
// It carries no payload; the poller re-polls through the HTTP API so
// the cursor contract stays the single delivery mechanism.
type Update struct {
	Room string `json:"room"`
	Kind string `json:"kind"`
}

// Update kinds.
const (
	UpdateOffer     = "offer"
	UpdateAnswer    = "answer"
	UpdateCandidate = "candidate"
	UpdateClose     = "close"
)
