package rtc

import (
	"sync"
	"time"

	"github.com/pion/webrtc/v4"
)

const heartbeatInterval = 2 * time.Second

// Heartbeat starts the presenter side of the control channel: once
// the channel opens, a heartbeat goes out every couple of seconds
// until the channel or the returned stop function closes it. Send
// failures are ignored, liveness is best effort.
func Heartbeat(dc *webrtc.DataChannel) (stop func()) {
	done := make(chan struct{})
	var once sync.Once

	dc.OnOpen(func() {
		go func() {
			ticker := time.NewTicker(heartbeatInterval)
			defer ticker.Stop()

			var seq uint64
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					seq++
					msg, err := NewMessage(MessageTypeHeartbeat, HeartbeatPayload{
						Seq:    seq,
						SentAt: time.Now().UnixMilli(),
					})
					if err != nil {
						continue
					}
					raw, err := msg.Encode()
					if err != nil {
						continue
					}
					if err := dc.Send(raw); err != nil {
						return
					}
				}
			}
		}()
	})
	dc.OnClose(func() {
		once.Do(func() { close(done) })
	})

	return func() {
		once.Do(func() { close(done) })
	}
}

// OnHeartbeat wires the viewer side of the control channel: each
// decoded heartbeat invokes fn. Unknown or malformed frames are
// dropped.
func OnHeartbeat(dc *webrtc.DataChannel, fn func(HeartbeatPayload)) {
	dc.OnMessage(func(m webrtc.DataChannelMessage) {
		msg, err := DecodeMessage(m.Data)
		if err != nil || msg.Type != MessageTypeHeartbeat {
			return
		}
		var hb HeartbeatPayload
		if err := msg.DecodePayload(&hb); err != nil {
			return
		}
		fn(hb)
	})
}
