package signaling

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	watchWriteWait = 10 * time.Second
	watchPongWait  = 60 * time.Second
	watchPingEvery = (watchPongWait * 9) / 10
)

// Watcher subscribes to the server's websocket update feed for one
// room. Updates only nudge the pollers into an immediate poll, they
// carry no signaling data, so a dropped or absent watcher degrades to
// plain interval polling.
type Watcher struct {
	conn    *websocket.Conn
	updates chan Update
	done    chan struct{}
	once    sync.Once
}

// Watch connects to the update feed of the given room. baseURL is the
// signaling server's HTTP base URL; the scheme is rewritten to ws/wss.
func Watch(baseURL, room string) (*Watcher, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/ws")
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.RawQuery = "room=" + url.QueryEscape(room)

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	w := &Watcher{
		conn:    conn,
		updates: make(chan Update, 16),
		done:    make(chan struct{}),
	}

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(watchPongWait))
		return nil
	})

	go w.readPump()
	go w.pingPump()

	return w, nil
}

// Updates returns the channel of room updates. It is closed when the
// connection ends.
func (w *Watcher) Updates() <-chan Update {
	return w.updates
}

func (w *Watcher) readPump() {
	defer func() {
		w.conn.Close()
		close(w.updates)
	}()

	w.conn.SetReadDeadline(time.Now().Add(watchPongWait))

	for {
		var upd Update
		if err := w.conn.ReadJSON(&upd); err != nil {
			return
		}
		select {
		case w.updates <- upd:
		default:
			// Slow consumer: the next poll catches up anyway.
		}
	}
}

func (w *Watcher) pingPump() {
	ticker := time.NewTicker(watchPingEvery)
	defer func() {
		ticker.Stop()
		w.conn.Close()
	}()

	for {
		select {
		case <-ticker.C:
			w.conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-w.done:
			w.conn.SetWriteDeadline(time.Now().Add(watchWriteWait))
			w.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Close tears the subscription down. Safe to call more than once.
func (w *Watcher) Close() {
	w.once.Do(func() { close(w.done) })
}
