package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newSpyStore()
	h := newTestHandler(t, s)

	_, err := s.CreateUser(context.Background(), "alice", "correct-password", "user")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"alice","password":"wrong"}`))
	h.LoginHandler(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_OpensSession(t *testing.T) {
	s := newSpyStore()
	h := newTestHandler(t, s)

	_, err := s.CreateUser(context.Background(), "alice", "correct-password", "user")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"alice","password":"correct-password"}`))
	h.LoginHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Result().Cookies(), "a session cookie must be set")

	// The session cookie must authenticate follow-up requests.
	follow := httptest.NewRequest(http.MethodGet, "/api/betting", nil)
	for _, c := range rec.Result().Cookies() {
		follow.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.RequireAuth(h.GetBettingHandler)(rec, follow)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_2FARequiredDefersSession(t *testing.T) {
	s := newSpyStore()
	h := newTestHandler(t, s)

	user, err := s.CreateUser(context.Background(), "alice", "correct-password", "user")
	require.NoError(t, err)
	require.NoError(t, s.UpdateUser2FA(context.Background(), user.ID, "SECRET", true))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"username":"alice","password":"correct-password"}`))
	h.LoginHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["requires_2fa"])
	require.EqualValues(t, user.ID, body["user_id"])
}

func TestRequireAuth_RejectsAnonymous(t *testing.T) {
	h := newTestHandler(t, newSpyStore())

	called := false
	rec := httptest.NewRecorder()
	h.RequireAuth(func(w http.ResponseWriter, r *http.Request) { called = true })(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, called)
}

func TestRequireAdmin_RejectsNonAdmin(t *testing.T) {
	h := newTestHandler(t, newSpyStore())

	called := false
	rec := httptest.NewRecorder()
	req := authedRequest(t, http.MethodGet, "/", nil, testAdminID+1)
	h.RequireAdmin(func(w http.ResponseWriter, r *http.Request) { called = true })(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, called)
}

func TestInitAdmin_BootstrapsOnce(t *testing.T) {
	s := newSpyStore()
	h := newTestHandler(t, s)
	ctx := context.Background()

	h.InitAdmin(ctx)
	users, err := s.GetUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "admin", users[0].Username)

	h.InitAdmin(ctx)
	users, err = s.GetUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1, "second boot must not create another admin")
}
