package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasanasadov/hasscreen/internal/config"
	"github.com/hasanasadov/hasscreen/internal/media"
	"github.com/hasanasadov/hasscreen/internal/signaling"
)

func newTestController(t *testing.T, opts ...Option) *Controller {
	t.Helper()
	cfg, err := config.Load(config.Options{Server: "http://127.0.0.1:1"})
	require.NoError(t, err)
	client := signaling.NewClient(cfg.ServerURL)
	return New(cfg, client, nil, media.NullSink{}, opts...)
}

func TestController_InitialSnapshot(t *testing.T) {
	c := newTestController(t)
	snap := c.Snapshot()
	assert.Equal(t, Role(""), snap.Role)
	assert.Equal(t, ModeMirror, snap.Mode)
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Equal(t, TintIdle, snap.Tint())
}

func TestController_SettersEmit(t *testing.T) {
	var snaps []Snapshot
	c := newTestController(t, WithOnChange(func(s Snapshot) {
		snaps = append(snaps, s)
	}))

	c.SetRoom("12345678")
	c.SetMode(ModeExtend)

	require.Len(t, snaps, 2)
	assert.Equal(t, "12345678", snaps[0].Room)
	assert.Equal(t, ModeExtend, snaps[1].Mode)
	assert.Equal(t, "12345678", c.Room())
}

func TestController_StartViewingRequiresRoom(t *testing.T) {
	c := newTestController(t)

	err := c.StartViewing(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRoomRequired))

	// The failed start must not burn the role.
	assert.Equal(t, Role(""), c.Snapshot().Role)
}

func TestController_StartPresentingRequiresRoom(t *testing.T) {
	c := newTestController(t)

	err := c.StartPresenting(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRoomRequired))
}

func TestController_SecondStartRejected(t *testing.T) {
	c := newTestController(t)
	c.SetRoom("12345678")

	require.NoError(t, c.StartViewing(context.Background()))
	defer c.Leave()

	err := c.StartViewing(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRoleAssigned))

	err = c.StartPresenting(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRoleAssigned))
}

func TestController_LeaveResetsEverything(t *testing.T) {
	c := newTestController(t)
	c.SetRoom("12345678")

	require.NoError(t, c.StartViewing(context.Background()))
	assert.Equal(t, RoleViewer, c.Snapshot().Role)

	c.Leave()

	snap := c.Snapshot()
	assert.Equal(t, Role(""), snap.Role)
	assert.False(t, snap.Joined)
	assert.Equal(t, StatusLeft, snap.Status)

	// The role slot is free again after leaving.
	require.NoError(t, c.StartViewing(context.Background()))
	c.Leave()
}

func TestController_LeaveIsIdempotent(t *testing.T) {
	c := newTestController(t)
	c.Leave()
	c.Leave()
	assert.Equal(t, StatusLeft, c.Snapshot().Status)
}

func TestController_TogglePauseWithoutStream(t *testing.T) {
	c := newTestController(t)
	c.TogglePause()
	assert.False(t, c.Snapshot().Paused)
}

// fakeStream records SetEnabled calls so pause behavior is observable
// without a real capture.
type fakeStream struct {
	mu      sync.Mutex
	enabled []bool
}

func (f *fakeStream) Tracks() []webrtc.TrackLocal { return nil }

func (f *fakeStream) SetEnabled(enabled bool) {
	f.mu.Lock()
	f.enabled = append(f.enabled, enabled)
	f.mu.Unlock()
}

func (f *fakeStream) OnEnded(func()) {}

func (f *fakeStream) Close() error { return nil }

func (f *fakeStream) calls() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.enabled...)
}

func TestController_PauseIsLocalOnly(t *testing.T) {
	var reqMu sync.Mutex
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqMu.Lock()
		requests = append(requests, r.URL.Path)
		reqMu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cfg, err := config.Load(config.Options{Server: srv.URL})
	require.NoError(t, err)
	c := New(cfg, signaling.NewClient(srv.URL), nil, media.NullSink{})

	stream := &fakeStream{}
	c.mu.Lock()
	c.role = RolePresenter
	c.room = "12345678"
	c.joined = true
	c.stream = stream
	c.status = StatusSharingMirror
	c.mu.Unlock()

	c.TogglePause()
	snap := c.Snapshot()
	assert.True(t, snap.Paused)
	assert.False(t, snap.Stopped)
	assert.Equal(t, StatusPaused, snap.Status)

	c.TogglePause()
	snap = c.Snapshot()
	assert.False(t, snap.Paused)
	assert.False(t, snap.Stopped)
	assert.Equal(t, StatusSharing, snap.Status)

	// The track was disabled, then re-enabled.
	assert.Equal(t, []bool{false, true}, stream.calls())

	// Pausing never touches the relay: no close, no signaling at all.
	reqMu.Lock()
	defer reqMu.Unlock()
	assert.Empty(t, requests)
}

func TestController_PictureInPictureUnsupportedSink(t *testing.T) {
	c := newTestController(t)
	c.TogglePictureInPicture()
	assert.False(t, c.Snapshot().PictureInPicture)
}

func TestSessionError(t *testing.T) {
	err := WrapError("start viewing", ErrRoleAssigned, "presenter")
	assert.True(t, errors.Is(err, ErrRoleAssigned))
	assert.Contains(t, err.Error(), "start viewing")
	assert.Contains(t, err.Error(), "presenter")

	plain := NewError("start presenting", ErrRoomRequired)
	assert.Equal(t, "start presenting: room code required", plain.Error())
}
