package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasanasadov/hasscreen/internal/room"
	"github.com/hasanasadov/hasscreen/internal/signaling"
)

func newWatchServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	h := NewHandler(room.NewStore(), hub, zerolog.Nop())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dialWatch(t *testing.T, srv *httptest.Server, roomCode string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?room=" + roomCode
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_DeliversRoomUpdates(t *testing.T) {
	srv, _ := newWatchServer(t)
	conn := dialWatch(t, srv, "12345678")

	// Give the hub a moment to register the subscriber before the
	// mutation fires.
	time.Sleep(50 * time.Millisecond)

	resp := postJSON(t, srv.URL+"/offer", signaling.PostSDPRequest{
		Room: "12345678",
		SDP:  &signaling.SessionDescription{Type: "offer", SDP: "v=0"},
	})
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var upd signaling.Update
	require.NoError(t, conn.ReadJSON(&upd))
	assert.Equal(t, "12345678", upd.Room)
	assert.Equal(t, signaling.UpdateOffer, upd.Kind)
}

func TestHub_ScopesToRoom(t *testing.T) {
	srv, _ := newWatchServer(t)
	conn := dialWatch(t, srv, "11111111")
	time.Sleep(50 * time.Millisecond)

	// A mutation in another room must not reach this subscriber.
	resp := postJSON(t, srv.URL+"/close", signaling.CloseRequest{Room: "22222222"})
	resp.Body.Close()
	resp = postJSON(t, srv.URL+"/close", signaling.CloseRequest{Room: "11111111"})
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var upd signaling.Update
	require.NoError(t, conn.ReadJSON(&upd))
	assert.Equal(t, "11111111", upd.Room)
	assert.Equal(t, signaling.UpdateClose, upd.Kind)
}

func TestServeWS_RequiresRoom(t *testing.T) {
	srv, _ := newWatchServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHub_NotifyNeverBlocks(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	// No Run loop draining: Notify must still return.
	for i := 0; i < 200; i++ {
		hub.Notify("12345678", signaling.UpdateCandidate)
	}
}
