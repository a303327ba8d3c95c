package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticAuthorizer(t *testing.T) {
	a := NewStaticAuthorizer(7)

	require.True(t, a.IsAuthorized(7, ActionAdmin))
	require.False(t, a.IsAuthorized(8, ActionAdmin))
	require.False(t, a.IsAuthorized(0, ActionAdmin))
}

func TestNewFromEnv_Override(t *testing.T) {
	t.Setenv("ADMIN_USER_ID", "42")

	a := NewFromEnv()
	require.True(t, a.IsAuthorized(42, ActionAdmin))
	require.False(t, a.IsAuthorized(defaultAdminID, ActionAdmin))
}

func TestNewFromEnv_Default(t *testing.T) {
	t.Setenv("ADMIN_USER_ID", "")

	a := NewFromEnv()
	require.True(t, a.IsAuthorized(defaultAdminID, ActionAdmin))
}

func TestNewFromEnv_GarbageFallsBackToDefault(t *testing.T) {
	t.Setenv("ADMIN_USER_ID", "not-a-number")

	a := NewFromEnv()
	require.True(t, a.IsAuthorized(defaultAdminID, ActionAdmin))
}
