package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"bet-tracker-go/internal/models"
)

func bettingCacheKey(userID int) string {
	return fmt.Sprintf("betting:%d", userID)
}

// GetBettingHandler returns the caller's betting data. Users who never saved
// anything get the documented default instead of an error. Route through
// RequireAuth.
func (h *Handler) GetBettingHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetCurrentUser(r)

	var data models.BettingData
	if h.Cache.GetJSON(r.Context(), bettingCacheKey(userID), &data) {
		writeJSON(w, http.StatusOK, data)
		return
	}

	data, err := h.Store.GetBettingData(r.Context(), userID)
	if err != nil {
		log.Printf("Failed to get betting data for user %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.Cache.SetJSON(r.Context(), bettingCacheKey(userID), data)
	writeJSON(w, http.StatusOK, data)
}

// PutBettingHandler replaces the caller's betting data wholesale. There is no
// partial patch: absent fields overwrite with their zero values.
func (h *Handler) PutBettingHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetCurrentUser(r)

	var req struct {
		ConfigJSON     json.RawMessage `json:"config_json"`
		PlanJSON       json.RawMessage `json:"plan_json"`
		CurrentBalance *float64        `json:"current_balance"`
		Theme          string          `json:"theme"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON"}})
		return
	}

	if req.Theme == "" {
		req.Theme = models.ThemeLight
	}
	if !models.ValidTheme(req.Theme) {
		writeValidationError(w, []fieldError{{Field: "theme", Message: "theme must be \"light\" or \"dark\""}})
		return
	}

	data := models.BettingData{
		UserID:         userID,
		ConfigJSON:     req.ConfigJSON,
		PlanJSON:       req.PlanJSON,
		CurrentBalance: req.CurrentBalance,
		Theme:          req.Theme,
	}

	if err := h.Store.PutBettingData(r.Context(), userID, data); err != nil {
		log.Printf("Failed to save betting data for user %d: %v", userID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.Cache.RemoveRaw(r.Context(), bettingCacheKey(userID))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// BettingHandler dispatches /api/betting by method.
func (h *Handler) BettingHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.GetBettingHandler(w, r)
	case http.MethodPut:
		h.PutBettingHandler(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
	}
}

// GetAchievementsHandler lists enabled achievements for the dashboard.
func (h *Handler) GetAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.Store.GetAchievements(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	visible := make([]models.Achievement, 0, len(achievements))
	for _, a := range achievements {
		if a.Enabled {
			visible = append(visible, a)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"achievements": visible})
}
