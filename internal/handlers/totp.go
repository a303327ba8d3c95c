package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"bet-tracker-go/internal/models"
)

const totpIssuer = "Bet Tracker"

// Generate2FAHandler generates a new TOTP secret and QR code for the caller.
func (h *Handler) Generate2FAHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	userID, _ := GetCurrentUser(r)
	user, err := h.Store.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}

	key, err := models.GenerateTOTPSecret(user.Username, totpIssuer)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate secret")
		return
	}

	qrCode, err := models.GenerateQRCode(key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate QR code")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"secret":  key.Secret(),
		"qr_code": "data:image/png;base64," + qrCode,
		"issuer":  totpIssuer,
		"account": user.Username,
	})
}

// Enable2FAHandler verifies the TOTP code and enables 2FA for the caller.
func (h *Handler) Enable2FAHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	userID, _ := GetCurrentUser(r)

	var req struct {
		Secret string `json:"secret"`
		Code   string `json:"code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON"}})
		return
	}

	if !models.VerifyTOTPCode(req.Secret, req.Code) {
		writeError(w, http.StatusUnauthorized, "invalid_verification_code")
		return
	}

	if err := h.Store.UpdateUser2FA(r.Context(), userID, req.Secret, true); err != nil {
		log.Printf("Failed to enable 2FA: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Verify2FALoginHandler completes a login that LoginHandler deferred because
// the account has 2FA enabled.
func (h *Handler) Verify2FALoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	var req struct {
		UserID int    `json:"user_id"`
		Code   string `json:"code"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON"}})
		return
	}

	user, err := h.Store.GetUser(r.Context(), req.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user_not_found")
		return
	}

	if !models.VerifyTOTPCode(user.TOTPSecret, req.Code) {
		writeError(w, http.StatusUnauthorized, "invalid_verification_code")
		return
	}

	session, _ := sessionStore.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	session.Values["username"] = user.Username
	session.Save(r, w)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

// AdminDisable2FAHandler lets an admin disable 2FA for any user, for account
// recovery.
func (h *Handler) AdminDisable2FAHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	var req struct {
		UserID int `json:"user_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON"}})
		return
	}

	if err := h.Store.Disable2FA(r.Context(), req.UserID); err != nil {
		log.Printf("Failed to disable 2FA: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if actorID, _ := GetCurrentUser(r); actorID != 0 {
		_ = h.Store.InsertAudit(r.Context(), actorID, "disable_2fa", "user", req.UserID, "{}")
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
