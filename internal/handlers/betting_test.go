package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"bet-tracker-go/internal/models"
)

func TestGetBetting_DefaultForNewUser(t *testing.T) {
	h := newTestHandler(t, newSpyStore())

	rec := httptest.NewRecorder()
	h.GetBettingHandler(rec, authedRequest(t, http.MethodGet, "/api/betting", nil, 9))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Nil(t, body["config_json"])
	require.Nil(t, body["plan_json"])
	require.Nil(t, body["current_balance"])
	require.Equal(t, models.ThemeLight, body["theme"])
}

func TestPutBetting_RoundTrip(t *testing.T) {
	h := newTestHandler(t, newSpyStore())

	put := `{"config_json":{"stake":10},"plan_json":[1,2],"current_balance":99.5,"theme":"dark"}`
	rec := httptest.NewRecorder()
	h.PutBettingHandler(rec, authedRequest(t, http.MethodPut, "/api/betting", []byte(put), 9))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetBettingHandler(rec, authedRequest(t, http.MethodGet, "/api/betting", nil, 9))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, models.ThemeDark, body["theme"])
	require.EqualValues(t, 99.5, body["current_balance"])
	require.NotNil(t, body["config_json"])
}

func TestPutBetting_FullReplaceNotMerge(t *testing.T) {
	h := newTestHandler(t, newSpyStore())

	first := `{"config_json":{"stake":10},"current_balance":50,"theme":"dark"}`
	rec := httptest.NewRecorder()
	h.PutBettingHandler(rec, authedRequest(t, http.MethodPut, "/api/betting", []byte(first), 9))
	require.Equal(t, http.StatusOK, rec.Code)

	// No config, no balance: the replace must clear them.
	second := `{"theme":"light"}`
	rec = httptest.NewRecorder()
	h.PutBettingHandler(rec, authedRequest(t, http.MethodPut, "/api/betting", []byte(second), 9))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetBettingHandler(rec, authedRequest(t, http.MethodGet, "/api/betting", nil, 9))
	body := decodeBody(t, rec)
	require.Nil(t, body["config_json"])
	require.Nil(t, body["current_balance"])
	require.Equal(t, models.ThemeLight, body["theme"])
}

func TestPutBetting_RejectsUnknownTheme(t *testing.T) {
	h := newTestHandler(t, newSpyStore())

	rec := httptest.NewRecorder()
	h.PutBettingHandler(rec, authedRequest(t, http.MethodPut, "/api/betting", []byte(`{"theme":"sepia"}`), 9))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, []string{"theme"}, fieldNames(t, decodeBody(t, rec)))
}

func TestBetting_UsersAreIsolated(t *testing.T) {
	h := newTestHandler(t, newSpyStore())

	rec := httptest.NewRecorder()
	h.PutBettingHandler(rec, authedRequest(t, http.MethodPut, "/api/betting", []byte(`{"theme":"dark"}`), 1))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.GetBettingHandler(rec, authedRequest(t, http.MethodGet, "/api/betting", nil, 2))
	body := decodeBody(t, rec)
	require.Equal(t, models.ThemeLight, body["theme"], "another user's write must not leak")
}
