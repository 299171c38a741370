package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/hasanasadov/hasscreen/internal/signaling"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Rooms are unauthenticated shared secrets; the feed carries
		// no payload, only "something changed" nudges.
		return true
	},
}

// Hub fans room updates out to websocket subscribers. Subscribers get
// at-most-once nudges: a dropped update costs one poll interval of
// latency, nothing more, because delivery lives in the cursor-polling
// HTTP API.
type Hub struct {
	register   chan *subscriber
	unregister chan *subscriber
	updates    chan signaling.Update

	// rooms maps a room code to its current subscribers.
	rooms map[string]map[*subscriber]struct{}

	log zerolog.Logger
}

type subscriber struct {
	hub  *Hub
	room string
	conn *websocket.Conn
	send chan signaling.Update
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		updates:    make(chan signaling.Update, 64),
		rooms:      make(map[string]map[*subscriber]struct{}),
		log:        log,
	}
}

// Run is the hub's event loop; all subscriber state is owned by this
// single goroutine.
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.register:
			if h.rooms[sub.room] == nil {
				h.rooms[sub.room] = make(map[*subscriber]struct{})
			}
			h.rooms[sub.room][sub] = struct{}{}
			h.log.Debug().Str("room", sub.room).Msg("watcher subscribed")

		case sub := <-h.unregister:
			if subs, ok := h.rooms[sub.room]; ok {
				if _, ok := subs[sub]; ok {
					delete(subs, sub)
					close(sub.send)
					if len(subs) == 0 {
						delete(h.rooms, sub.room)
					}
				}
			}

		case upd := <-h.updates:
			for sub := range h.rooms[upd.Room] {
				select {
				case sub.send <- upd:
				default:
					// Slow subscriber; it still polls.
				}
			}
		}
	}
}

// Notify queues an update for the room's subscribers. Never blocks
// the request handler.
func (h *Hub) Notify(roomCode, kind string) {
	select {
	case h.updates <- signaling.Update{Room: roomCode, Kind: kind}:
	default:
	}
}

// ServeWS returns the handler for GET /ws?room=.
func ServeWS(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomCode := r.URL.Query().Get("room")
		if roomCode == "" {
			http.Error(w, "room required", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		sub := &subscriber{
			hub:  hub,
			room: roomCode,
			conn: conn,
			send: make(chan signaling.Update, 16),
		}
		hub.register <- sub

		go sub.writePump()
		go sub.readPump()
	}
}

// readPump discards inbound frames; its job is pong handling and
// noticing the peer went away.
func (s *subscriber) readPump() {
	defer func() {
		s.hub.unregister <- s
		s.conn.Close()
	}()

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case upd, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteJSON(upd); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
