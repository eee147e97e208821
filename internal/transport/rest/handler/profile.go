package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"dareroom/internal/model"
	"dareroom/internal/service"
	"dareroom/internal/transport/rest/middleware"
)

// ProfileHandler handles profile, history and replay endpoints
type ProfileHandler struct {
	profileSvc *service.ProfileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileSvc *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// Get handles GET /v1/profiles/{playerId}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]

	summary, err := h.profileSvc.GetProfile(r.Context(), playerID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// UpdateCustomization handles PUT /v1/profiles/me/customization. A
// player may only change their own loadout.
func (h *ProfileHandler) UpdateCustomization(w http.ResponseWriter, r *http.Request) {
	playerID := middleware.GetPlayerID(r.Context())
	if playerID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var c model.Customization
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.profileSvc.UpdateCustomization(r.Context(), playerID, c); err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			writeError(w, http.StatusNotFound, "profile not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// History handles GET /v1/profiles/{playerId}/history
func (h *ProfileHandler) History(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]
	limit := queryInt(r, "limit", 20)

	records, err := h.profileSvc.GetHistory(r.Context(), playerID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"history": records})
}

// ListReplays handles GET /v1/replays
func (h *ProfileHandler) ListReplays(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)

	entries, err := h.profileSvc.ListReplays(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"replays": entries})
}

// VoteReplay handles POST /v1/replays/{replayId}/vote
func (h *ProfileHandler) VoteReplay(w http.ResponseWriter, r *http.Request) {
	replayID := mux.Vars(r)["replayId"]
	playerID := middleware.GetPlayerID(r.Context())
	if playerID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.profileSvc.VoteReplay(r.Context(), replayID, playerID); err != nil {
		if errors.Is(err, service.ErrReplayNotFound) {
			writeError(w, http.StatusNotFound, "replay not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, name string, fallback int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
