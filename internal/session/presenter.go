package session

import (
	"context"
	"errors"
	"time"

	"github.com/hasanasadov/hasscreen/internal/media"
	"github.com/hasanasadov/hasscreen/internal/rtc"
	"github.com/hasanasadov/hasscreen/internal/signaling"
)

// StartPresenting acquires a capture stream, publishes an offer for
// the configured room and begins polling for the viewer's answer and
// candidates. The controller becomes the room's presenter; a second
// start without an intervening Leave is rejected.
func (c *Controller) StartPresenting(ctx context.Context) error {
	c.mu.Lock()
	if c.role != "" {
		c.mu.Unlock()
		return WrapError("start presenting", ErrRoleAssigned, string(c.role))
	}
	if c.room == "" {
		c.mu.Unlock()
		return NewError("start presenting", ErrRoomRequired)
	}
	c.role = RolePresenter
	c.status = StatusStarting
	mode := c.mode
	room := c.room
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)

	if err := c.startCapture(ctx, room, mode); err != nil {
		c.set(func() { c.role = "" })
		return err
	}

	c.startPolls(room, RolePresenter)
	return nil
}

// ResumePresenting re-acquires capture and publishes a fresh offer in
// the same room after StopPresenting. The room's revision advances,
// so a viewer still holding the previous offer re-answers cleanly.
func (c *Controller) ResumePresenting(ctx context.Context) error {
	c.mu.Lock()
	if c.role != RolePresenter {
		c.mu.Unlock()
		return WrapError("resume presenting", ErrRoleAssigned, string(c.role))
	}
	if !c.stopped {
		c.mu.Unlock()
		return nil
	}
	mode := c.mode
	room := c.room
	c.mu.Unlock()

	if err := c.startCapture(ctx, room, mode); err != nil {
		return err
	}

	c.startPolls(room, RolePresenter)
	return nil
}

// StopPresenting ends the current share but keeps the presenter role
// and the room, so the share can be resumed in place. The relay is
// told to clear the room; the viewer sees the stopped flag on its
// next poll.
func (c *Controller) StopPresenting(ctx context.Context) {
	c.mu.Lock()
	if c.role != RolePresenter || c.stopped {
		c.mu.Unlock()
		return
	}
	room := c.room
	c.mu.Unlock()

	c.stopPolls()
	c.teardownTransport()

	if err := c.client.Close(ctx, room); err != nil {
		c.log.Warn().Err(err).Str("room", room).Msg("close room failed")
	}

	c.set(func() {
		c.stopped = true
		c.paused = false
		c.answerCandIdx = 0
		c.status = StatusStopped
	})
}

// startCapture performs the acquire → publish-offer sequence shared
// by StartPresenting and ResumePresenting.
func (c *Controller) startCapture(ctx context.Context, room string, mode Mode) error {
	stream, err := c.source.Acquire(ctx, media.AcquireOptions{Extend: mode == ModeExtend})
	if err != nil {
		status := StatusFailedToStart
		if errors.Is(err, media.ErrPermissionDenied) {
			status = StatusShareCancelled
		}
		c.set(func() { c.status = status })
		return WrapError("start capture", err, room)
	}

	stream.OnEnded(func() { c.handleCaptureEnded() })

	if err := c.sink.PlayLocal(stream); err != nil {
		c.log.Debug().Err(err).Msg("local preview unavailable")
	}

	pc, err := c.ensurePC()
	if err != nil {
		_ = stream.Close()
		c.set(func() { c.status = StatusFailedToStart })
		return WrapError("start capture", err, room)
	}

	// Drop any senders from a previous capture before attaching the
	// new tracks.
	for _, sender := range pc.GetSenders() {
		if err := pc.RemoveTrack(sender); err != nil {
			c.log.Debug().Err(err).Msg("remove stale sender")
		}
	}

	for _, track := range stream.Tracks() {
		if _, err := pc.AddTrack(track); err != nil {
			_ = stream.Close()
			c.set(func() { c.status = StatusFailedToStart })
			return WrapError("add track", err, room)
		}
	}

	// The control channel rides the same connection; the viewer uses
	// its heartbeats as a liveness signal only.
	dc, err := pc.CreateDataChannel(rtc.ControlChannelLabel, nil)
	if err != nil {
		_ = stream.Close()
		c.set(func() { c.status = StatusFailedToStart })
		return WrapError("create control channel", err, room)
	}
	stopHB := rtc.Heartbeat(dc)

	offer, err := rtc.CreateOffer(pc)
	if err != nil {
		stopHB()
		_ = stream.Close()
		c.set(func() { c.status = StatusFailedToStart })
		return WrapError("create offer", err, room)
	}

	postCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.client.PostOffer(postCtx, room, rtc.DescriptionToWire(offer)); err != nil {
		stopHB()
		_ = stream.Close()
		c.set(func() { c.status = StatusFailedToStart })
		return WrapError("publish offer", err, room)
	}

	status := StatusSharingMirror
	if mode == ModeExtend {
		status = StatusSharingExtend
	}
	c.set(func() {
		c.stream = stream
		c.stopHeartbeat = stopHB
		c.joined = true
		c.stopped = false
		c.paused = false
		c.hasRemote = false
		c.answerCandIdx = 0
		c.status = status
	})
	return nil
}

// handleCaptureEnded runs when the capture stream ends on its own,
// outside StopPresenting. Treated exactly like a stop: the room is
// closed so the viewer learns about it.
func (c *Controller) handleCaptureEnded() {
	c.mu.Lock()
	active := c.role == RolePresenter && !c.stopped && c.stream != nil
	c.mu.Unlock()
	if !active {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.StopPresenting(ctx)
}

// pollAnswer is the presenter's poll body: adopt the viewer's answer
// once, then keep draining answer-side candidates.
func (c *Controller) pollAnswer(ctx context.Context) {
	c.mu.Lock()
	room := c.room
	pc := c.pc
	stopped := c.stopped
	c.mu.Unlock()
	if pc == nil || stopped {
		return
	}

	if pc.RemoteDescription() == nil {
		resp, err := c.client.GetAnswer(ctx, room)
		if err != nil {
			c.log.Debug().Err(err).Msg("poll answer")
			return
		}
		if resp.SDP != nil {
			if err := pc.SetRemoteDescription(rtc.DescriptionFromWire(*resp.SDP)); err != nil {
				c.log.Warn().Err(err).Msg("apply answer failed")
				return
			}
		}
	}

	if pc.RemoteDescription() != nil {
		c.pollCandidates(ctx, room, pc, signaling.SideAnswer)
	}
}
