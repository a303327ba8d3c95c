package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"bet-tracker-go/internal/authz"
	"bet-tracker-go/internal/notify"
	"bet-tracker-go/internal/store"
)

// Error codes returned in the "error" field. Statuses follow the same
// taxonomy: 401 unauthorized, 403 forbidden, 400 validation, 500 internal or
// misconfigured.
const (
	errUnauthorized     = "unauthorized"
	errForbidden        = "forbidden"
	errValidation       = "validation_failed"
	errMisconfigured    = "server_misconfigured"
	errMethodNotAllowed = "method_not_allowed"
)

// Cache is the best-effort layer the handlers consult before the store.
// *store.Cache is the shipped implementation.
type Cache interface {
	GetJSON(ctx context.Context, key string, out interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{})
	RemoveRaw(ctx context.Context, key string)
}

type Handler struct {
	Store    store.Store
	Cache    Cache
	Auth     authz.Authorizer
	Notifier *notify.Broadcaster
}

func NewHandler(s store.Store, cache Cache, auth authz.Authorizer, notifier *notify.Broadcaster) *Handler {
	return &Handler{
		Store:    s,
		Cache:    cache,
		Auth:     auth,
		Notifier: notifier,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// fieldError names one invalid field in a request body.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeValidationError reports every invalid field, not just the first.
func writeValidationError(w http.ResponseWriter, fields []fieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  errValidation,
		"fields": fields,
	})
}
