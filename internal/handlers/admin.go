package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// === User Management ===

func (h *Handler) GetUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.GetUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *Handler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON"}})
		return
	}

	var fields []fieldError
	if req.Username == "" {
		fields = append(fields, fieldError{Field: "username", Message: "username is required"})
	}
	if req.Password == "" {
		fields = append(fields, fieldError{Field: "password", Message: "password is required"})
	}
	if req.Role != "admin" && req.Role != "user" {
		fields = append(fields, fieldError{Field: "role", Message: "role must be \"admin\" or \"user\""})
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	user, err := h.Store.CreateUser(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if actorID, _ := GetCurrentUser(r); actorID != 0 {
		meta, _ := json.Marshal(map[string]any{"username": req.Username, "role": req.Role})
		_ = h.Store.InsertAudit(r.Context(), actorID, "create_user", "user", user.ID, string(meta))
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (h *Handler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/admin/users/")
	if err != nil {
		writeValidationError(w, []fieldError{{Field: "id", Message: "invalid id"}})
		return
	}

	var req struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON"}})
		return
	}

	var fields []fieldError
	if req.Username == "" {
		fields = append(fields, fieldError{Field: "username", Message: "username is required"})
	}
	if req.Role != "admin" && req.Role != "user" {
		fields = append(fields, fieldError{Field: "role", Message: "role must be \"admin\" or \"user\""})
	}
	if len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	if err := h.Store.UpdateUser(r.Context(), id, req.Username, req.Role); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if actorID, _ := GetCurrentUser(r); actorID != 0 {
		meta, _ := json.Marshal(map[string]any{"username": req.Username, "role": req.Role})
		_ = h.Store.InsertAudit(r.Context(), actorID, "update_user", "user", id, string(meta))
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/admin/users/")
	if err != nil {
		writeValidationError(w, []fieldError{{Field: "id", Message: "invalid id"}})
		return
	}

	if err := h.Store.DeleteUser(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The account is gone; its cached betting data must not outlive it.
	h.Cache.RemoveRaw(r.Context(), bettingCacheKey(id))

	if actorID, _ := GetCurrentUser(r); actorID != 0 {
		_ = h.Store.InsertAudit(r.Context(), actorID, "delete_user", "user", id, "{}")
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// === Achievements Configuration ===

func (h *Handler) AdminGetAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.Store.GetAchievements(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"achievements": achievements})
}

type achievementRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Threshold   float64 `json:"threshold"`
	Enabled     *bool   `json:"enabled"`
}

func (req achievementRequest) validate() []fieldError {
	var fields []fieldError
	if req.Title == "" {
		fields = append(fields, fieldError{Field: "title", Message: "title is required"})
	}
	if req.Threshold < 0 {
		fields = append(fields, fieldError{Field: "threshold", Message: "threshold must not be negative"})
	}
	return fields
}

func (h *Handler) CreateAchievementHandler(w http.ResponseWriter, r *http.Request) {
	var req achievementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON"}})
		return
	}

	if fields := req.validate(); len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	achievement, err := h.Store.CreateAchievement(r.Context(), req.Title, req.Description, req.Threshold, enabled)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if actorID, _ := GetCurrentUser(r); actorID != 0 {
		meta, _ := json.Marshal(map[string]any{"title": req.Title, "threshold": req.Threshold})
		_ = h.Store.InsertAudit(r.Context(), actorID, "create_achievement", "achievement", achievement.ID, string(meta))
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "achievement": achievement})
}

func (h *Handler) UpdateAchievementHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/admin/achievements/")
	if err != nil {
		writeValidationError(w, []fieldError{{Field: "id", Message: "invalid id"}})
		return
	}

	var req achievementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON"}})
		return
	}

	if fields := req.validate(); len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	if err := h.Store.UpdateAchievement(r.Context(), id, req.Title, req.Description, req.Threshold, enabled); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if actorID, _ := GetCurrentUser(r); actorID != 0 {
		meta, _ := json.Marshal(map[string]any{"title": req.Title, "threshold": req.Threshold, "enabled": enabled})
		_ = h.Store.InsertAudit(r.Context(), actorID, "update_achievement", "achievement", id, string(meta))
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) DeleteAchievementHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r.URL.Path, "/api/admin/achievements/")
	if err != nil {
		writeValidationError(w, []fieldError{{Field: "id", Message: "invalid id"}})
		return
	}

	if err := h.Store.DeleteAchievement(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if actorID, _ := GetCurrentUser(r); actorID != 0 {
		_ = h.Store.InsertAudit(r.Context(), actorID, "delete_achievement", "achievement", id, "{}")
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// === Audit listing ===

func (h *Handler) GetAuditLogsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	logs, err := h.Store.ListAudit(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func pathID(path, prefix string) (int, error) {
	return strconv.Atoi(strings.TrimPrefix(path, prefix))
}
