package signaling_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasanasadov/hasscreen/internal/room"
	"github.com/hasanasadov/hasscreen/internal/server"
	"github.com/hasanasadov/hasscreen/internal/signaling"
)

func newRelay(t *testing.T, withHub bool) *httptest.Server {
	t.Helper()
	var hub *server.Hub
	if withHub {
		hub = server.NewHub(zerolog.Nop())
		go hub.Run()
	}
	h := server.NewHandler(room.NewStore(), hub, zerolog.Nop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RoundTrip(t *testing.T) {
	srv := newRelay(t, false)
	client := signaling.NewClient(srv.URL)
	ctx := context.Background()

	require.NoError(t, client.Health(ctx))

	offer := signaling.SessionDescription{Type: "offer", SDP: "v=0 offer"}
	require.NoError(t, client.PostOffer(ctx, "12345678", offer))

	got, err := client.GetOffer(ctx, "12345678")
	require.NoError(t, err)
	require.NotNil(t, got.SDP)
	assert.Equal(t, "v=0 offer", got.SDP.SDP)
	assert.False(t, got.Stopped)

	answer := signaling.SessionDescription{Type: "answer", SDP: "v=0 answer"}
	require.NoError(t, client.PostAnswer(ctx, "12345678", answer))

	gotAnswer, err := client.GetAnswer(ctx, "12345678")
	require.NoError(t, err)
	require.NotNil(t, gotAnswer.SDP)
	assert.Equal(t, "answer", gotAnswer.SDP.Type)

	cand := signaling.CandidateInit{Candidate: "candidate:1 1 udp 1 127.0.0.1 1 typ host"}
	require.NoError(t, client.PostCandidate(ctx, "12345678", signaling.SideOffer, cand))

	cands, err := client.GetCandidates(ctx, "12345678", signaling.SideOffer, 0)
	require.NoError(t, err)
	require.Len(t, cands.Items, 1)
	assert.Equal(t, 1, cands.Next)

	// The returned cursor picks up where the last poll stopped.
	cands, err = client.GetCandidates(ctx, "12345678", signaling.SideOffer, cands.Next)
	require.NoError(t, err)
	assert.Empty(t, cands.Items)

	require.NoError(t, client.Close(ctx, "12345678"))

	got, err = client.GetOffer(ctx, "12345678")
	require.NoError(t, err)
	assert.Nil(t, got.SDP)
	assert.True(t, got.Stopped)
	assert.Equal(t, 1, got.Revision)
}

func TestClient_ServerErrors(t *testing.T) {
	srv := newRelay(t, false)
	client := signaling.NewClient(srv.URL)
	ctx := context.Background()

	t.Run("validation surfaces as error", func(t *testing.T) {
		err := client.PostOffer(ctx, "", signaling.SessionDescription{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
	})

	t.Run("unreachable server", func(t *testing.T) {
		dead := signaling.NewClient("http://127.0.0.1:1")
		_, err := dead.GetOffer(ctx, "12345678")
		assert.Error(t, err)
	})

	t.Run("context cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.GetOffer(cancelled, "12345678")
		assert.Error(t, err)
	})
}

func TestWatcher_ReceivesNudges(t *testing.T) {
	srv := newRelay(t, true)
	client := signaling.NewClient(srv.URL)

	w, err := signaling.Watch(srv.URL, "12345678")
	require.NoError(t, err)
	defer w.Close()

	time.Sleep(50 * time.Millisecond)

	offer := signaling.SessionDescription{Type: "offer", SDP: "v=0"}
	require.NoError(t, client.PostOffer(context.Background(), "12345678", offer))

	select {
	case upd := <-w.Updates():
		assert.Equal(t, "12345678", upd.Room)
		assert.Equal(t, signaling.UpdateOffer, upd.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("no update received")
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	srv := newRelay(t, true)

	w, err := signaling.Watch(srv.URL, "12345678")
	require.NoError(t, err)
	w.Close()
	w.Close()
}
