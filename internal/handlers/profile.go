package handlers

import (
	"encoding/json"
	"net/http"

	"bet-tracker-go/internal/models"
)

// ChangePasswordHandler lets an authenticated user change their own password.
func (h *Handler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	userID, _ := GetCurrentUser(r)

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON"}})
		return
	}

	if len(req.NewPassword) < 8 {
		writeValidationError(w, []fieldError{{Field: "new_password", Message: "password must be at least 8 characters"}})
		return
	}

	user, err := h.Store.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}

	if !user.CheckPassword(req.CurrentPassword) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials")
		return
	}

	hash, err := models.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := h.Store.UpdateUserPassword(r.Context(), userID, hash); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
