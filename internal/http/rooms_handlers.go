package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"log/slog"

	"chat-relay/internal/chat"
	"chat-relay/internal/history"
)

type RoomsAPI struct {
	Registry *chat.Registry
	Store    history.Store
	Log      *slog.Logger
}

type roomsResponse struct {
	ActiveRooms map[string][]string `json:"active_rooms"`
}

type historyResponse struct {
	Room     string           `json:"room"`
	Messages []history.Record `json:"messages"`
}

// Rooms lists populated rooms and their member session ids. Rooms whose
// name is itself a session id are treated as private and hidden.
func (a *RoomsAPI) Rooms(w http.ResponseWriter, _ *http.Request) {
	active := map[string][]string{}
	for room, members := range a.Registry.ActiveRooms() {
		if _, err := uuid.Parse(room); err == nil {
			continue
		}
		active[room] = members
	}
	writeJSON(w, roomsResponse{ActiveRooms: active})
}

// History returns up to limit (default 50, capped at the store bound)
// recent messages for a room, oldest first. Store failures degrade to
// an empty list rather than an error status.
func (a *RoomsAPI) History(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	if room == "" {
		http.Error(w, "room required", http.StatusBadRequest)
		return
	}

	limit := history.DefaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > history.MaxPerRoom {
		limit = history.MaxPerRoom
	}

	recs, err := a.Store.Recent(r.Context(), room, limit)
	if err != nil {
		a.Log.Error("history.read", "room", room, "err", err)
		recs = nil
	}
	if recs == nil {
		recs = []history.Record{}
	}
	writeJSON(w, historyResponse{Room: room, Messages: recs})
}

// send JSON with proper headers
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
