package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"bet-tracker-go/internal/models"
)

func TestMemoryStore_GetBettingData_DefaultOnMiss(t *testing.T) {
	s := NewMemoryStore()

	data, err := s.GetBettingData(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, 42, data.UserID)
	require.Nil(t, data.ConfigJSON)
	require.Nil(t, data.PlanJSON)
	require.Nil(t, data.CurrentBalance)
	require.Equal(t, models.ThemeLight, data.Theme)
}

func TestMemoryStore_PutBettingData_FullReplace(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	balance := 150.5
	err := s.PutBettingData(ctx, 1, models.BettingData{
		ConfigJSON:     json.RawMessage(`{"stake":10}`),
		PlanJSON:       json.RawMessage(`[1,2,3]`),
		CurrentBalance: &balance,
		Theme:          models.ThemeDark,
	})
	require.NoError(t, err)

	// A second put with fewer fields replaces wholesale, no merging.
	err = s.PutBettingData(ctx, 1, models.BettingData{Theme: models.ThemeLight})
	require.NoError(t, err)

	data, err := s.GetBettingData(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, data.ConfigJSON)
	require.Nil(t, data.PlanJSON)
	require.Nil(t, data.CurrentBalance)
	require.Equal(t, models.ThemeLight, data.Theme)
}

func TestMemoryStore_SavePushSubscription_UpsertOnEndpoint(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	endpoint := "https://push.example.com/channel/abc"
	require.NoError(t, s.SavePushSubscription(ctx, 1, endpoint, "key-one", "auth-one"))
	require.NoError(t, s.SavePushSubscription(ctx, 2, endpoint, "key-two", "auth-two"))

	subs, err := s.GetPushSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1, "re-registering an endpoint must not create a second record")
	require.Equal(t, 2, subs[0].UserID)
	require.Equal(t, "key-two", subs[0].P256dh)
	require.Equal(t, "auth-two", subs[0].Auth)
}

func TestMemoryStore_CountPushSubscriptions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	count, ok, err := s.CountPushSubscriptions(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 0, count)

	require.NoError(t, s.SavePushSubscription(ctx, 1, "https://push.example.com/a", "p", "a"))
	require.NoError(t, s.SavePushSubscription(ctx, 1, "https://push.example.com/b", "p", "a"))

	count, ok, err = s.CountPushSubscriptions(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 2, count)
}

func TestMemoryStore_DeletePushSubscription(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.SavePushSubscription(ctx, 1, "https://push.example.com/a", "p", "a"))
	require.NoError(t, s.DeletePushSubscription(ctx, "https://push.example.com/a"))

	subs, err := s.GetPushSubscriptions(ctx)
	require.NoError(t, err)
	require.Empty(t, subs)
}

func TestMemoryStore_Users(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice", "password1", "user")
	require.NoError(t, err)
	require.Equal(t, 1, user.ID)

	_, err = s.CreateUser(ctx, "alice", "password2", "user")
	require.Error(t, err, "duplicate usernames must be rejected")

	got, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.True(t, got.CheckPassword("password1"))

	require.NoError(t, s.UpdateUser(ctx, user.ID, "alicia", "admin"))
	got, err = s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "alicia", got.Username)
	require.Equal(t, "admin", got.Role)

	require.NoError(t, s.DeleteUser(ctx, user.ID))
	_, err = s.GetUser(ctx, user.ID)
	require.Error(t, err)
}

func TestMemoryStore_Achievements(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	a, err := s.CreateAchievement(ctx, "First win", "Track your first profit", 10, true)
	require.NoError(t, err)

	require.NoError(t, s.UpdateAchievement(ctx, a.ID, "First win", "Updated", 20, false))

	achievements, err := s.GetAchievements(ctx)
	require.NoError(t, err)
	require.Len(t, achievements, 1)
	require.Equal(t, "Updated", achievements[0].Description)
	require.False(t, achievements[0].Enabled)

	require.NoError(t, s.DeleteAchievement(ctx, a.ID))
	achievements, err = s.GetAchievements(ctx)
	require.NoError(t, err)
	require.Empty(t, achievements)
}
