package session

import (
	"context"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"

	"github.com/hasanasadov/hasscreen/internal/config"
	"github.com/hasanasadov/hasscreen/internal/media"
	"github.com/hasanasadov/hasscreen/internal/rtc"
	"github.com/hasanasadov/hasscreen/internal/signaling"
)

// Controller owns one participant's session: the peer connection
// lifecycle, the polling loops against the signaling relay, and the
// role state machine the UI observes. All actions are safe to call
// from any goroutine.
type Controller struct {
	cfg      *config.Config
	client   *signaling.Client
	source   media.Source
	sink     media.Sink
	log      zerolog.Logger
	onChange func(Snapshot)
	watch    bool

	mu sync.Mutex

	role   Role
	mode   Mode
	room   string
	status string

	joined         bool
	paused         bool
	stopped        bool
	hasRemote      bool
	hadRemote      bool
	stoppedOverlay bool
	pip            bool
	lastHeartbeat  time.Time

	pc            *webrtc.PeerConnection
	stream        media.Stream
	stopHeartbeat func()
	controlOpen   bool

	// Candidate cursors are monotonic within one offer generation.
	// offerCandIdx resets to zero whenever a new revision is adopted.
	offerCandIdx  int
	answerCandIdx int
	lastOfferRev  int
	haveOfferRev  bool

	pollCancel context.CancelFunc
	pollWG     sync.WaitGroup
	watcher    *signaling.Watcher
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithOnChange registers the state observer. It is invoked after
// every state transition with a fresh snapshot, never while internal
// locks are held.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// WithUpdateFeed enables the websocket nudge feed; polling cadence is
// unchanged, updates merely trigger an immediate extra poll.
func WithUpdateFeed(enabled bool) Option {
	return func(c *Controller) { c.watch = enabled }
}

// New creates an idle controller. source may be nil for a pure
// viewer.
func New(cfg *config.Config, client *signaling.Client, source media.Source, sink media.Sink, opts ...Option) *Controller {
	c := &Controller{
		cfg:    cfg,
		client: client,
		source: source,
		sink:   sink,
		log:    zerolog.Nop(),
		mode:   ModeMirror,
		status: StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOnChange replaces the state observer. Call before starting a
// role; changing the observer mid-session races with emissions.
func (c *Controller) SetOnChange(fn func(Snapshot)) {
	c.onChange = fn
}

// SetMode selects mirror or extend capture for the next start.
func (c *Controller) SetMode(mode Mode) {
	c.set(func() { c.mode = mode })
}

// SetRoom sets the room code to use on the next start or join.
func (c *Controller) SetRoom(room string) {
	c.set(func() { c.room = room })
}

// Room returns the current room code.
func (c *Controller) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// Snapshot returns the current observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// TogglePause flips the local track's enabled state. Fully local: no
// renegotiation, no signaling traffic, the connection stays as it is.
func (c *Controller) TogglePause() {
	c.mu.Lock()
	stream := c.stream
	if stream == nil {
		c.mu.Unlock()
		return
	}
	c.paused = !c.paused
	paused := c.paused
	switch {
	case paused:
		c.status = StatusPaused
	case c.hasRemote:
		c.status = StatusConnected
	default:
		c.status = StatusSharing
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	stream.SetEnabled(!paused)
	c.emit(snap)
}

// TogglePictureInPicture delegates to the sink when it supports it;
// otherwise it is a no-op.
func (c *Controller) TogglePictureInPicture() {
	if !c.sink.SupportsPictureInPicture() {
		return
	}
	c.mu.Lock()
	target := !c.pip
	c.mu.Unlock()

	if err := c.sink.SetPictureInPicture(target); err != nil {
		return
	}
	c.set(func() { c.pip = target })
}

// Leave tears the whole session down and returns to idle. Safe to
// call repeatedly and with nothing to tear down.
func (c *Controller) Leave() {
	c.stopPolls()
	c.teardownTransport()
	c.sink.Detach()

	c.set(func() {
		c.role = ""
		c.joined = false
		c.paused = false
		c.stopped = false
		c.hasRemote = false
		c.hadRemote = false
		c.stoppedOverlay = false
		c.pip = false
		c.offerCandIdx = 0
		c.answerCandIdx = 0
		c.lastOfferRev = 0
		c.haveOfferRev = false
		c.lastHeartbeat = time.Time{}
		c.status = StatusLeft
	})
}

// ensurePC creates the peer connection on first use and wires its
// callbacks. Reused across offer generations within one session.
func (c *Controller) ensurePC() (*webrtc.PeerConnection, error) {
	c.mu.Lock()
	if c.pc != nil {
		pc := c.pc
		c.mu.Unlock()
		return pc, nil
	}
	c.mu.Unlock()

	pc, err := rtc.NewPeerConnection(c.cfg)
	if err != nil {
		return nil, err
	}

	pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand == nil {
			return
		}
		c.mu.Lock()
		roomCode := c.room
		side := signaling.SideOffer
		if c.role == RoleViewer {
			side = signaling.SideAnswer
		}
		c.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.client.PostCandidate(ctx, roomCode, side, rtc.CandidateToWire(cand)); err != nil {
			c.log.Debug().Err(err).Msg("post candidate failed")
		}
	})

	pc.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		if state == webrtc.ICEConnectionStateConnected || state == webrtc.ICEConnectionStateCompleted {
			c.set(func() { c.status = StatusConnected })
		}
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		if state == webrtc.PeerConnectionStateConnected {
			c.set(func() { c.status = StatusConnected })
		}
	})

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		c.mu.Lock()
		role := c.role
		c.mu.Unlock()
		if role != RoleViewer {
			return
		}
		if err := c.sink.PlayRemote(track); err != nil {
			c.log.Warn().Err(err).Msg("attach remote track failed")
			return
		}
		c.set(func() {
			c.hasRemote = true
			c.hadRemote = true
			c.stoppedOverlay = false
		})
	})

	pc.OnDataChannel(func(dc *webrtc.DataChannel) {
		if dc.Label() != rtc.ControlChannelLabel {
			return
		}
		rtc.OnHeartbeat(dc, func(rtc.HeartbeatPayload) {
			c.set(func() { c.lastHeartbeat = time.Now() })
		})
	})

	c.mu.Lock()
	c.pc = pc
	c.mu.Unlock()
	return pc, nil
}

// teardownTransport releases the stream, the heartbeat and the peer
// connection. Tolerates resources that were never created; closing an
// already-closed connection is swallowed.
func (c *Controller) teardownTransport() {
	c.mu.Lock()
	stream := c.stream
	pc := c.pc
	stopHB := c.stopHeartbeat
	c.stream = nil
	c.pc = nil
	c.stopHeartbeat = nil
	c.controlOpen = false
	c.mu.Unlock()

	if stopHB != nil {
		stopHB()
	}
	if stream != nil {
		if err := stream.Close(); err != nil {
			c.log.Debug().Err(err).Msg("stream close")
		}
	}
	if pc != nil {
		if err := pc.Close(); err != nil {
			c.log.Debug().Err(err).Msg("peer connection close")
		}
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Role:               c.role,
		Mode:               c.mode,
		Room:               c.room,
		Joined:             c.joined,
		Status:             c.status,
		Paused:             c.paused,
		Stopped:            c.stopped,
		HasRemote:          c.hasRemote,
		ShowStoppedOverlay: c.stoppedOverlay,
		PictureInPicture:   c.pip,
		LastHeartbeat:      c.lastHeartbeat,
	}
}

// set runs fn under the lock and notifies the observer afterwards.
func (c *Controller) set(fn func()) {
	c.mu.Lock()
	fn()
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)
}

func (c *Controller) emit(snap Snapshot) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
