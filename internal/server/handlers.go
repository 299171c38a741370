package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/hasanasadov/hasscreen/internal/room"
	"github.com/hasanasadov/hasscreen/internal/signaling"
)

// Handler serves the signaling API over a room store. The store is
// injected rather than global so tests can run against a fresh one.
type Handler struct {
	store *room.Store
	hub   *Hub
	log   zerolog.Logger
}

func NewHandler(store *room.Store, hub *Hub, log zerolog.Logger) *Handler {
	return &Handler{store: store, hub: hub, log: log}
}

// RegisterRoutes mounts the signaling endpoints on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/offer", h.handleOffer)
	mux.HandleFunc("/answer", h.handleAnswer)
	mux.HandleFunc("/candidate", h.handleCandidate)
	mux.HandleFunc("/close", h.handleClose)
	mux.HandleFunc("/health", h.handleHealth)
	if h.hub != nil {
		mux.HandleFunc("/ws", ServeWS(h.hub))
	}
}

func (h *Handler) handleOffer(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		roomCode := r.URL.Query().Get("room")
		if roomCode == "" {
			writeJSONError(w, "room required")
			return
		}
		writeJSON(w, h.store.Offer(roomCode))

	case http.MethodPost:
		var req signaling.PostSDPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Room == "" || req.SDP == nil || req.SDP.SDP == "" || req.SDP.Type == "" {
			http.Error(w, "room and sdp required", http.StatusBadRequest)
			return
		}
		h.store.SetOffer(req.Room, *req.SDP)
		h.notify(req.Room, signaling.UpdateOffer)
		writeJSON(w, signaling.OKResponse{OK: true})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		roomCode := r.URL.Query().Get("room")
		if roomCode == "" {
			writeJSONError(w, "room required")
			return
		}
		writeJSON(w, h.store.Answer(roomCode))

	case http.MethodPost:
		var req signaling.PostSDPRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Room == "" || req.SDP == nil || req.SDP.SDP == "" || req.SDP.Type == "" {
			http.Error(w, "room and sdp required", http.StatusBadRequest)
			return
		}
		h.store.SetAnswer(req.Room, *req.SDP)
		h.notify(req.Room, signaling.UpdateAnswer)
		writeJSON(w, signaling.OKResponse{OK: true})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCandidate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		roomCode := q.Get("room")
		side := signaling.Side(q.Get("side"))
		if roomCode == "" || !side.Valid() {
			writeJSONError(w, "room & side required")
			return
		}
		// Malformed cursors read as zero, same as a first poll.
		since, _ := strconv.Atoi(q.Get("since"))
		writeJSON(w, h.store.Candidates(roomCode, side, since))

	case http.MethodPost:
		var req signaling.PostCandidateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Room == "" || !req.Side.Valid() || req.Candidate == nil {
			http.Error(w, "room, side, candidate required", http.StatusBadRequest)
			return
		}
		h.store.AddCandidate(req.Room, req.Side, *req.Candidate)
		h.notify(req.Room, signaling.UpdateCandidate)
		writeJSON(w, signaling.OKResponse{OK: true})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req signaling.CloseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Room == "" {
		http.Error(w, "room required", http.StatusBadRequest)
		return
	}
	h.store.Close(req.Room)
	h.notify(req.Room, signaling.UpdateClose)
	h.log.Info().Str("room", req.Room).Msg("room closed")
	writeJSON(w, signaling.OKResponse{OK: true})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, struct {
		OK   bool   `json:"ok"`
		Time string `json:"time"`
	}{OK: true, Time: time.Now().UTC().Format(time.RFC3339)})
}

func (h *Handler) notify(roomCode, kind string) {
	if h.hub != nil {
		h.hub.Notify(roomCode, kind)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
