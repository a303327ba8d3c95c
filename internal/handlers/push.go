package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"bet-tracker-go/internal/notify"
	"bet-tracker-go/internal/store"
)

// GetVAPIDKeyHandler returns the public VAPID key browsers need to subscribe.
// A deployment without keys cannot do push at all, so the absence is reported
// as a misconfiguration rather than an empty key.
func (h *Handler) GetVAPIDKeyHandler(w http.ResponseWriter, r *http.Request) {
	if h.Notifier == nil || h.Notifier.VAPIDPublicKey == "" {
		writeError(w, http.StatusInternalServerError, errMisconfigured)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"publicKey": h.Notifier.VAPIDPublicKey,
	})
}

type subscribeRequest struct {
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
}

func validateSubscription(req subscribeRequest) []fieldError {
	var fields []fieldError

	endpoint := req.Subscription.Endpoint
	if endpoint == "" {
		fields = append(fields, fieldError{Field: "subscription.endpoint", Message: "endpoint is required"})
	} else if u, err := url.Parse(endpoint); err != nil || !u.IsAbs() || u.Host == "" {
		fields = append(fields, fieldError{Field: "subscription.endpoint", Message: "endpoint must be an absolute URL"})
	}
	if req.Subscription.Keys.P256dh == "" {
		fields = append(fields, fieldError{Field: "subscription.keys.p256dh", Message: "p256dh key is required"})
	}
	if req.Subscription.Keys.Auth == "" {
		fields = append(fields, fieldError{Field: "subscription.keys.auth", Message: "auth key is required"})
	}

	return fields
}

// SubscribePushHandler upserts the caller's push subscription, keyed on
// endpoint. Re-subscribing after key rotation or a browser reinstall
// overwrites the old record instead of failing.
func (h *Handler) SubscribePushHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	// Session check comes before the body is even read.
	userID, _ := GetCurrentUser(r)
	if userID == 0 {
		writeError(w, http.StatusUnauthorized, errUnauthorized)
		return
	}

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON"}})
		return
	}

	if fields := validateSubscription(req); len(fields) > 0 {
		writeValidationError(w, fields)
		return
	}

	sub := req.Subscription
	if err := h.Store.SavePushSubscription(r.Context(), userID, sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth); err != nil {
		log.Printf("Failed to save subscription: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	subscriptionsRegistered.Inc()
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// countSubscribers is the two-step counting strategy: the exact count first,
// then the stored procedure when the primary mechanism yields nothing usable.
// A fallback that succeeds without a value counts as zero.
func countSubscribers(ctx context.Context, s store.Store) (int64, error) {
	count, ok, err := s.CountPushSubscriptions(ctx)
	if err == nil && ok {
		return count, nil
	}
	if err != nil {
		log.Printf("Primary subscription count failed: %v", err)
	}

	count, ok, err = s.CountPushSubscriptionsFallback(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return count, nil
}

// SubscriberCountHandler reports the total number of stored subscriptions.
// Admin only; route through RequireAuth and RequireAdmin.
func (h *Handler) SubscriberCountHandler(w http.ResponseWriter, r *http.Request) {
	count, err := countSubscribers(r.Context(), h.Store)
	if err != nil {
		log.Printf("Failed to count subscriptions: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// BroadcastPushHandler sends a notification to every subscriber. Admin only.
func (h *Handler) BroadcastPushHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
		return
	}

	var payload notify.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeValidationError(w, []fieldError{{Field: "body", Message: "invalid JSON"}})
		return
	}

	sent, failed, err := h.Notifier.Broadcast(r.Context(), payload)
	if err != nil {
		log.Printf("Broadcast failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	pushSent.Add(float64(sent))
	pushFailed.Add(float64(failed))

	if actorID, _ := GetCurrentUser(r); actorID != 0 {
		meta, _ := json.Marshal(map[string]any{"title": payload.Title, "sent": sent, "failed": failed})
		_ = h.Store.InsertAudit(r.Context(), actorID, "broadcast_push", "push", 0, string(meta))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"sent":   sent,
		"failed": failed,
	})
}
