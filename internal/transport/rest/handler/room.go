package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"dareroom/internal/cache"
	"dareroom/internal/model"
	"dareroom/internal/service"
	"dareroom/internal/transport/rest/middleware"
)

// RoomHandler handles room endpoints
type RoomHandler struct {
	roomSvc     *service.RoomService
	registry    *service.Registry
	leaderboard cache.LeaderboardCache
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(roomSvc *service.RoomService, registry *service.Registry, leaderboard cache.LeaderboardCache) *RoomHandler {
	return &RoomHandler{
		roomSvc:     roomSvc,
		registry:    registry,
		leaderboard: leaderboard,
	}
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Settings model.RoomSettings `json:"settings"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.roomSvc.CreateRoom(r.Context(), hostID, &req.Settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, room)
}

// Get handles GET /v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := h.roomSvc.GetRoom(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if room == nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// JoinRequest is the request body for joining a room
type JoinRequest struct {
	ProfileID   string `json:"profileId,omitempty"`
	DisplayName string `json:"displayName"`
}

// Join handles POST /v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.DisplayName == "" && req.ProfileID == "" {
		writeError(w, http.StatusBadRequest, "displayName is required")
		return
	}

	resp, err := h.roomSvc.JoinRoom(r.Context(), code, req.ProfileID, req.DisplayName)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// End handles POST /v1/rooms/{code}/end
func (h *RoomHandler) End(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	hostID := middleware.GetHostID(r.Context())

	if err := h.roomSvc.EndRoom(r.Context(), code, hostID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ENDED"})
}

// Session handles GET /v1/rooms/{code}/session, the resync snapshot
// for reconnecting clients.
func (h *RoomHandler) Session(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	actor, ok := h.registry.Get(code)
	if !ok {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	snap, err := actor.Snapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// Leaderboard handles GET /v1/rooms/{code}/leaderboard
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	topStr := r.URL.Query().Get("top")
	top := 20
	if topStr != "" {
		if n, err := strconv.Atoi(topStr); err == nil && n > 0 {
			top = n
		}
	}

	entries, err := h.leaderboard.GetTop(r.Context(), code, top)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}
