package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"bet-tracker-go/internal/authz"
	"bet-tracker-go/internal/notify"
	"bet-tracker-go/internal/store"
)

// spyStore wraps the in-memory store so tests can observe calls and override
// the counting strategy.
type spyStore struct {
	*store.MemoryStore

	saveCalls int

	countFn         func(ctx context.Context) (int64, bool, error)
	countFallbackFn func(ctx context.Context) (int64, bool, error)
}

func newSpyStore() *spyStore {
	return &spyStore{MemoryStore: store.NewMemoryStore()}
}

func (s *spyStore) SavePushSubscription(ctx context.Context, userID int, endpoint, p256dh, auth string) error {
	s.saveCalls++
	return s.MemoryStore.SavePushSubscription(ctx, userID, endpoint, p256dh, auth)
}

func (s *spyStore) CountPushSubscriptions(ctx context.Context) (int64, bool, error) {
	if s.countFn != nil {
		return s.countFn(ctx)
	}
	return s.MemoryStore.CountPushSubscriptions(ctx)
}

func (s *spyStore) CountPushSubscriptionsFallback(ctx context.Context) (int64, bool, error) {
	if s.countFallbackFn != nil {
		return s.countFallbackFn(ctx)
	}
	return s.MemoryStore.CountPushSubscriptionsFallback(ctx)
}

// spyCache records removals so tests can assert cache invalidation.
type spyCache struct {
	removed []string
}

func (c *spyCache) GetJSON(ctx context.Context, key string, out interface{}) bool { return false }

func (c *spyCache) SetJSON(ctx context.Context, key string, value interface{}) {}

func (c *spyCache) RemoveRaw(ctx context.Context, key string) {
	c.removed = append(c.removed, key)
}

const testAdminID = 1

func newTestHandler(t *testing.T, s store.Store) *Handler {
	t.Helper()
	notifier := notify.NewBroadcaster(
		store.NewMemoryStore(),
		"test-public-key",
		"test-private-key",
		"mailto:test@example.com",
	)
	return NewHandler(s, store.NewCache(nil, 0), authz.NewStaticAuthorizer(testAdminID), notifier)
}

// authedRequest builds a request carrying a valid session cookie for userID.
func authedRequest(t *testing.T, method, path string, body []byte, userID int) *http.Request {
	t.Helper()

	seed := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	session, err := sessionStore.Get(seed, sessionName)
	require.NoError(t, err)
	session.Values["user_id"] = userID
	session.Values["username"] = "tester"
	require.NoError(t, session.Save(seed, rec))

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// fieldNames pulls the field paths out of a validation error response.
func fieldNames(t *testing.T, resp map[string]any) []string {
	t.Helper()
	raw, ok := resp["fields"].([]any)
	require.True(t, ok, "expected a fields array, got %v", resp)

	var names []string
	for _, f := range raw {
		m := f.(map[string]any)
		names = append(names, m["field"].(string))
	}
	return names
}
