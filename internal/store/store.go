package store

import (
	"context"

	"bet-tracker-go/internal/models"
)

// Store is the persistence surface the handlers talk to. PostgresStore is the
// real implementation; MemoryStore stands in when no database is configured
// and in tests.
type Store interface {
	// User methods
	CreateUser(ctx context.Context, username, password, role string) (models.User, error)
	GetUser(ctx context.Context, id int) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, id int, username, role string) error
	DeleteUser(ctx context.Context, id int) error
	UpdateUserPassword(ctx context.Context, userID int, newPasswordHash string) error
	UpdateUser2FA(ctx context.Context, userID int, totpSecret string, enabled bool) error
	Disable2FA(ctx context.Context, userID int) error

	// Push subscription methods. SavePushSubscription upserts on endpoint:
	// re-registering an endpoint overwrites owner and key material.
	SavePushSubscription(ctx context.Context, userID int, endpoint, p256dh, auth string) error
	GetPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
	// CountPushSubscriptions is the exact count. ok=false means the primary
	// mechanism produced no usable count and the caller should try
	// CountPushSubscriptionsFallback.
	CountPushSubscriptions(ctx context.Context) (count int64, ok bool, err error)
	CountPushSubscriptionsFallback(ctx context.Context) (count int64, ok bool, err error)

	// Betting data methods. Get never reports "not found": unknown users
	// resolve to the documented default. Put is a full replace.
	GetBettingData(ctx context.Context, userID int) (models.BettingData, error)
	PutBettingData(ctx context.Context, userID int, data models.BettingData) error

	// Achievement methods
	CreateAchievement(ctx context.Context, title, description string, threshold float64, enabled bool) (models.Achievement, error)
	GetAchievements(ctx context.Context) ([]models.Achievement, error)
	UpdateAchievement(ctx context.Context, id int, title, description string, threshold float64, enabled bool) error
	DeleteAchievement(ctx context.Context, id int) error

	// Audit methods
	InsertAudit(ctx context.Context, actorID int, action, targetType string, targetID int, metadata string) error
	ListAudit(ctx context.Context, limit int) ([]models.AuditLog, error)
}
