package session

import (
	"context"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/hasanasadov/hasscreen/internal/rtc"
	"github.com/hasanasadov/hasscreen/internal/signaling"
)

// startPolls launches the role's polling loop and, when enabled, the
// websocket update feed. Updates never replace the ticker; they only
// wake it early.
func (c *Controller) startPolls(room string, role Role) {
	ctx, cancel := context.WithCancel(context.Background())

	nudge := make(chan struct{}, 1)
	var watcher *signaling.Watcher
	if c.watch {
		w, err := signaling.Watch(c.client.BaseURL(), room)
		if err != nil {
			c.log.Debug().Err(err).Msg("update feed unavailable, polling only")
		} else {
			watcher = w
			c.pollWG.Add(1)
			go func() {
				defer c.pollWG.Done()
				for {
					select {
					case <-ctx.Done():
						return
					case _, ok := <-w.Updates():
						if !ok {
							return
						}
						select {
						case nudge <- struct{}{}:
						default:
						}
					}
				}
			}()
		}
	}

	c.mu.Lock()
	c.pollCancel = cancel
	c.watcher = watcher
	c.mu.Unlock()

	body := c.pollOffer
	candSide := signaling.SideOffer
	if role == RolePresenter {
		body = c.pollAnswer
		candSide = signaling.SideAnswer
	}

	c.pollWG.Add(1)
	go func() {
		defer c.pollWG.Done()
		sdpTick := time.NewTicker(c.cfg.OfferPollInterval)
		defer sdpTick.Stop()
		candTick := time.NewTicker(c.cfg.CandidatePollInterval)
		defer candTick.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sdpTick.C:
				body(ctx)
			case <-candTick.C:
				c.mu.Lock()
				pc := c.pc
				c.mu.Unlock()
				if pc != nil && pc.RemoteDescription() != nil {
					c.pollCandidates(ctx, room, pc, candSide)
				}
			case <-nudge:
				body(ctx)
			}
		}
	}()
}

// stopPolls tears the polling loop and update feed down and waits for
// both goroutines to exit. Safe to call with nothing running.
func (c *Controller) stopPolls() {
	c.mu.Lock()
	cancel := c.pollCancel
	watcher := c.watcher
	c.pollCancel = nil
	c.watcher = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if watcher != nil {
		watcher.Close()
	}
	c.pollWG.Wait()
}

// pollCandidates drains the given side's queue from the current
// cursor and feeds the candidates to the connection. The cursor only
// advances when it still matches the value this poll started from, so
// a reset to zero by a newly adopted offer is never clobbered by a
// poll that was already in flight.
func (c *Controller) pollCandidates(ctx context.Context, room string, pc *webrtc.PeerConnection, side signaling.Side) {
	c.mu.Lock()
	since := c.offerCandIdx
	if side == signaling.SideAnswer {
		since = c.answerCandIdx
	}
	c.mu.Unlock()

	resp, err := c.client.GetCandidates(ctx, room, side, since)
	if err != nil {
		c.log.Debug().Err(err).Str("side", string(side)).Msg("poll candidates")
		return
	}
	if len(resp.Items) == 0 {
		return
	}

	for _, cand := range resp.Items {
		if err := pc.AddICECandidate(rtc.CandidateFromWire(cand)); err != nil {
			c.log.Debug().Err(err).Msg("add candidate failed")
		}
	}

	c.mu.Lock()
	if side == signaling.SideAnswer {
		if c.answerCandIdx == since {
			c.answerCandIdx = resp.Next
		}
	} else {
		if c.offerCandIdx == since {
			c.offerCandIdx = resp.Next
		}
	}
	c.mu.Unlock()
}
