package room

import (
	"sync"
	"time"

	"github.com/hasanasadov/hasscreen/internal/signaling"
)

// Room holds the signaling state of one session keyed by room code.
// Candidate sequences are append-only; they are cleared only by Close.
type Room struct {
	Offer            *signaling.SessionDescription
	Answer           *signaling.SessionDescription
	OfferCandidates  []signaling.CandidateInit
	AnswerCandidates []signaling.CandidateInit

	// Stopped is only true after an explicit close, which is how the
	// viewer tells "deliberately ended" apart from "never started".
	Stopped bool

	// Revision increments on every close so a viewer can detect a new
	// session generation behind the same room code.
	Revision int

	UpdatedAt time.Time
}

// Store is the process-wide map of rooms. It is single-process only:
// state is lost on restart, and running more than one instance needs
// an external shared store instead.
type Store struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewStore() *Store {
	return &Store{rooms: make(map[string]*Room)}
}

// getOrCreate returns the room, creating it lazily on first write.
// Callers must hold s.mu.
func (s *Store) getOrCreate(code string) *Room {
	r, ok := s.rooms[code]
	if !ok {
		r = &Room{UpdatedAt: time.Now()}
		s.rooms[code] = r
	}
	return r
}

// SetOffer stores the room's offer, superseding any previous one in
// place. The revision is untouched: only Close bumps it.
func (s *Store) SetOffer(code string, sdp signaling.SessionDescription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.getOrCreate(code)
	r.Offer = &sdp
	r.UpdatedAt = time.Now()
}

// SetAnswer stores the room's answer, superseding any previous one.
func (s *Store) SetAnswer(code string, sdp signaling.SessionDescription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.getOrCreate(code)
	r.Answer = &sdp
	r.UpdatedAt = time.Now()
}

// AddCandidate appends a candidate to the named side's sequence.
func (s *Store) AddCandidate(code string, side signaling.Side, cand signaling.CandidateInit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.getOrCreate(code)
	if side == signaling.SideOffer {
		r.OfferCandidates = append(r.OfferCandidates, cand)
	} else {
		r.AnswerCandidates = append(r.AnswerCandidates, cand)
	}
	r.UpdatedAt = time.Now()
}

// Offer returns the room's offer state. A room that was never written
// reads as empty: nil sdp, not stopped, revision zero.
func (s *Store) Offer(code string) signaling.OfferResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[code]
	if !ok {
		return signaling.OfferResponse{}
	}
	return signaling.OfferResponse{SDP: r.Offer, Stopped: r.Stopped, Revision: r.Revision}
}

// Answer returns the room's answer state.
func (s *Store) Answer(code string) signaling.AnswerResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[code]
	if !ok {
		return signaling.AnswerResponse{}
	}
	return signaling.AnswerResponse{SDP: r.Answer, Revision: r.Revision}
}

// Candidates returns the slice of the named sequence starting at
// since, clamped to the sequence length, and the new cursor. The
// caller passes the cursor back on the next poll, which gives
// at-least-once in-order delivery with no data loss on missed polls.
func (s *Store) Candidates(code string, side signaling.Side, since int) signaling.CandidatesResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var seq []signaling.CandidateInit
	if r, ok := s.rooms[code]; ok {
		if side == signaling.SideOffer {
			seq = r.OfferCandidates
		} else {
			seq = r.AnswerCandidates
		}
	}

	if since < 0 {
		since = 0
	}
	if since > len(seq) {
		since = len(seq)
	}

	items := make([]signaling.CandidateInit, len(seq)-since)
	copy(items, seq[since:])
	return signaling.CandidatesResponse{Items: items, Next: len(seq)}
}

// Close resets the room's session state, marks it explicitly stopped
// and bumps the revision. Idempotent: closing an empty or never-seen
// room still succeeds and still advances the revision, so a resumed
// presenter always lands on a fresh generation.
func (s *Store) Close(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.getOrCreate(code)
	r.Offer = nil
	r.Answer = nil
	r.OfferCandidates = nil
	r.AnswerCandidates = nil
	r.Stopped = true
	r.Revision++
	r.UpdatedAt = time.Now()
}

// Len reports the number of rooms ever touched, for diagnostics.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}
