package room

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasanasadov/hasscreen/internal/signaling"
)

func sdp(kind, body string) signaling.SessionDescription {
	return signaling.SessionDescription{Type: kind, SDP: body}
}

func cand(c string) signaling.CandidateInit {
	return signaling.CandidateInit{Candidate: c}
}

func TestStore_EmptyRoom(t *testing.T) {
	s := NewStore()

	offer := s.Offer("12345678")
	assert.Nil(t, offer.SDP)
	assert.False(t, offer.Stopped)
	assert.Equal(t, 0, offer.Revision)

	answer := s.Answer("12345678")
	assert.Nil(t, answer.SDP)
	assert.Equal(t, 0, answer.Revision)

	cands := s.Candidates("12345678", signaling.SideOffer, 0)
	assert.Empty(t, cands.Items)
	assert.Equal(t, 0, cands.Next)

	// Reads never materialize a room.
	assert.Equal(t, 0, s.Len())
}

func TestStore_OfferAnswer(t *testing.T) {
	s := NewStore()

	s.SetOffer("12345678", sdp("offer", "v=0 first"))

	resp := s.Offer("12345678")
	require.NotNil(t, resp.SDP)
	assert.Equal(t, "v=0 first", resp.SDP.SDP)

	t.Run("offer superseded in place", func(t *testing.T) {
		s.SetOffer("12345678", sdp("offer", "v=0 second"))
		resp := s.Offer("12345678")
		require.NotNil(t, resp.SDP)
		assert.Equal(t, "v=0 second", resp.SDP.SDP)
		assert.Equal(t, 0, resp.Revision)
	})

	t.Run("answer stored independently", func(t *testing.T) {
		s.SetAnswer("12345678", sdp("answer", "v=0 reply"))
		resp := s.Answer("12345678")
		require.NotNil(t, resp.SDP)
		assert.Equal(t, "answer", resp.SDP.Type)
	})

	t.Run("rooms are isolated", func(t *testing.T) {
		assert.Nil(t, s.Offer("87654321").SDP)
	})
}

func TestStore_Candidates(t *testing.T) {
	s := NewStore()

	for i := 0; i < 3; i++ {
		s.AddCandidate("12345678", signaling.SideOffer, cand(fmt.Sprintf("offer-%d", i)))
	}
	s.AddCandidate("12345678", signaling.SideAnswer, cand("answer-0"))

	t.Run("ordered from cursor", func(t *testing.T) {
		resp := s.Candidates("12345678", signaling.SideOffer, 0)
		require.Len(t, resp.Items, 3)
		assert.Equal(t, "offer-0", resp.Items[0].Candidate)
		assert.Equal(t, "offer-2", resp.Items[2].Candidate)
		assert.Equal(t, 3, resp.Next)
	})

	t.Run("cursor resumes mid-sequence", func(t *testing.T) {
		resp := s.Candidates("12345678", signaling.SideOffer, 2)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "offer-2", resp.Items[0].Candidate)
	})

	t.Run("sides are independent", func(t *testing.T) {
		resp := s.Candidates("12345678", signaling.SideAnswer, 0)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "answer-0", resp.Items[0].Candidate)
		assert.Equal(t, 1, resp.Next)
	})

	t.Run("cursor clamped to bounds", func(t *testing.T) {
		resp := s.Candidates("12345678", signaling.SideOffer, 99)
		assert.Empty(t, resp.Items)
		assert.Equal(t, 3, resp.Next)

		resp = s.Candidates("12345678", signaling.SideOffer, -5)
		assert.Len(t, resp.Items, 3)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		resp := s.Candidates("12345678", signaling.SideOffer, 0)
		resp.Items[0].Candidate = "mutated"
		again := s.Candidates("12345678", signaling.SideOffer, 0)
		assert.Equal(t, "offer-0", again.Items[0].Candidate)
	})
}

func TestStore_Close(t *testing.T) {
	s := NewStore()

	s.SetOffer("12345678", sdp("offer", "v=0"))
	s.SetAnswer("12345678", sdp("answer", "v=0"))
	s.AddCandidate("12345678", signaling.SideOffer, cand("a"))
	s.AddCandidate("12345678", signaling.SideAnswer, cand("b"))

	s.Close("12345678")

	offer := s.Offer("12345678")
	assert.Nil(t, offer.SDP)
	assert.True(t, offer.Stopped)
	assert.Equal(t, 1, offer.Revision)

	assert.Nil(t, s.Answer("12345678").SDP)
	assert.Empty(t, s.Candidates("12345678", signaling.SideOffer, 0).Items)
	assert.Equal(t, 0, s.Candidates("12345678", signaling.SideAnswer, 0).Next)

	t.Run("close keeps bumping the revision", func(t *testing.T) {
		s.Close("12345678")
		assert.Equal(t, 2, s.Offer("12345678").Revision)
	})

	t.Run("close of a never-seen room succeeds", func(t *testing.T) {
		s.Close("00000000")
		resp := s.Offer("00000000")
		assert.True(t, resp.Stopped)
		assert.Equal(t, 1, resp.Revision)
	})

	t.Run("new offer after close clears stopped-ness for the reader", func(t *testing.T) {
		s.SetOffer("12345678", sdp("offer", "v=0 resumed"))
		resp := s.Offer("12345678")
		require.NotNil(t, resp.SDP)
		// Stopped stays until the next close; a present sdp wins on
		// the consumer side.
		assert.Equal(t, 2, resp.Revision)
	})
}

func TestStore_RevisionDistinguishesGenerations(t *testing.T) {
	s := NewStore()

	s.SetOffer("12345678", sdp("offer", "gen-1"))
	rev1 := s.Offer("12345678").Revision

	s.Close("12345678")
	s.SetOffer("12345678", sdp("offer", "gen-2"))
	rev2 := s.Offer("12345678").Revision

	assert.NotEqual(t, rev1, rev2)
	assert.Equal(t, "gen-2", s.Offer("12345678").SDP.SDP)
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			code := fmt.Sprintf("room-%d", n%2)
			for j := 0; j < 100; j++ {
				s.SetOffer(code, sdp("offer", "v=0"))
				s.AddCandidate(code, signaling.SideOffer, cand("c"))
				s.Candidates(code, signaling.SideOffer, 0)
				s.Offer(code)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 400, s.Candidates("room-0", signaling.SideOffer, 0).Next)
}
