package session

import (
	"context"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/hasanasadov/hasscreen/internal/rtc"
	"github.com/hasanasadov/hasscreen/internal/signaling"
)

// StartViewing joins the configured room as the viewer and begins
// polling for the presenter's offer. A second start without an
// intervening Leave is rejected.
func (c *Controller) StartViewing(ctx context.Context) error {
	c.mu.Lock()
	if c.role != "" {
		c.mu.Unlock()
		return WrapError("start viewing", ErrRoleAssigned, string(c.role))
	}
	if c.room == "" {
		c.mu.Unlock()
		return NewError("start viewing", ErrRoomRequired)
	}
	c.role = RoleViewer
	c.joined = true
	c.status = StatusWaitingForOffer
	room := c.room
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)

	if _, err := c.ensurePC(); err != nil {
		c.set(func() {
			c.role = ""
			c.joined = false
			c.status = StatusFailedToJoin
		})
		return WrapError("start viewing", err, room)
	}

	c.startPolls(room, RoleViewer)
	return nil
}

// offerAction is the outcome of evaluating one offer poll response.
type offerAction int

const (
	offerSkip offerAction = iota
	offerApply
	offerShowStopped
)

// evaluateOffer decides what to do with an offer poll response given
// the revision last answered. An offer is applied at most once per
// relay revision; a cleared room shows the stopped overlay only when
// something was ever shared here.
func evaluateOffer(resp *signaling.OfferResponse, lastRev int, haveRev bool, hadRemote bool, status string) offerAction {
	if resp.SDP == nil {
		if resp.Stopped && (hadRemote || status == StatusConnected || status == StatusAnswerPosted) {
			return offerShowStopped
		}
		return offerSkip
	}
	if haveRev && resp.Revision == lastRev {
		return offerSkip
	}
	return offerApply
}

// pollOffer is the viewer's poll body: watch for a fresh offer (or
// the stopped flag), answer it, then keep draining offer-side
// candidates.
func (c *Controller) pollOffer(ctx context.Context) {
	c.mu.Lock()
	room := c.room
	pc := c.pc
	lastRev := c.lastOfferRev
	haveRev := c.haveOfferRev
	hadRemote := c.hadRemote
	status := c.status
	c.mu.Unlock()
	if pc == nil {
		return
	}

	resp, err := c.client.GetOffer(ctx, room)
	if err != nil {
		c.log.Debug().Err(err).Msg("poll offer")
		return
	}

	switch evaluateOffer(resp, lastRev, haveRev, hadRemote, status) {
	case offerShowStopped:
		c.set(func() {
			c.stoppedOverlay = true
			c.hasRemote = false
			c.status = StatusPresenterStopped
		})
	case offerApply:
		c.applyOffer(ctx, room, pc, resp)
	}

	if pc.RemoteDescription() != nil {
		c.pollCandidates(ctx, room, pc, signaling.SideOffer)
	}
}

// applyOffer answers a newly seen offer and records its revision so
// the same relay state is never answered twice.
func (c *Controller) applyOffer(ctx context.Context, room string, pc *webrtc.PeerConnection, resp *signaling.OfferResponse) {
	answer, err := rtc.CreateAnswer(pc, rtc.DescriptionFromWire(*resp.SDP))
	if err != nil {
		c.log.Warn().Err(err).Msg("answer offer failed")
		return
	}

	postCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.client.PostAnswer(postCtx, room, rtc.DescriptionToWire(answer)); err != nil {
		c.log.Warn().Err(err).Msg("publish answer failed")
		return
	}

	c.set(func() {
		c.lastOfferRev = resp.Revision
		c.haveOfferRev = true
		c.offerCandIdx = 0
		c.stoppedOverlay = false
		c.status = StatusAnswerPosted
	})
}
