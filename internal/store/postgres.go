package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"bet-tracker-go/internal/models"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// RunMigrations creates tables if they don't exist and applies schema updates
func (s *PostgresStore) RunMigrations(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return err
	}

	// Apply migrations for existing tables
	migrations := []string{
		`ALTER TABLE push_subscriptions ADD COLUMN IF NOT EXISTS updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW();`,
		`ALTER TABLE betting_data ADD COLUMN IF NOT EXISTS theme VARCHAR(10) NOT NULL DEFAULT 'light';`,
	}

	for _, migration := range migrations {
		if _, err := s.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// User methods

func (s *PostgresStore) CreateUser(ctx context.Context, username, password, role string) (models.User, error) {
	passwordHash, err := models.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, role, created_at)
		 VALUES ($1, $2, $3, NOW())
		 RETURNING id, username, password_hash, role, created_at`,
		username, passwordHash, role,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.CreatedAt)

	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id int) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, totp_secret, totp_enabled, created_at FROM users WHERE id = $1`,
		id,
	))
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, totp_secret, totp_enabled, created_at FROM users WHERE username = $1`,
		username,
	))
}

func (s *PostgresStore) scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var totpSecret sql.NullString

	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &totpSecret, &user.TOTPEnabled, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, errors.New("user not found")
	}
	if err != nil {
		return models.User{}, err
	}

	if totpSecret.Valid {
		user.TOTPSecret = totpSecret.String
	}

	return user, nil
}

func (s *PostgresStore) GetUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, password_hash, role, totp_secret, totp_enabled, created_at FROM users ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		var totpSecret sql.NullString

		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &totpSecret, &user.TOTPEnabled, &user.CreatedAt); err != nil {
			continue
		}

		if totpSecret.Valid {
			user.TOTPSecret = totpSecret.String
		}

		users = append(users, user)
	}

	return users, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, id int, username, role string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET username = $1, role = $2 WHERE id = $3`,
		username, role, id,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.New("user not found")
	}

	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) UpdateUserPassword(ctx context.Context, userID int, newPasswordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`,
		newPasswordHash, userID,
	)
	return err
}

// 2FA methods

func (s *PostgresStore) UpdateUser2FA(ctx context.Context, userID int, totpSecret string, enabled bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET totp_secret = $1, totp_enabled = $2 WHERE id = $3`,
		totpSecret, enabled, userID,
	)
	return err
}

func (s *PostgresStore) Disable2FA(ctx context.Context, userID int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET totp_secret = NULL, totp_enabled = FALSE WHERE id = $1`,
		userID,
	)
	return err
}

// Push subscription methods

func (s *PostgresStore) SavePushSubscription(ctx context.Context, userID int, endpoint, p256dh, auth string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NOW(), NOW())
		 ON CONFLICT (endpoint) DO UPDATE
		 SET user_id = EXCLUDED.user_id, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth, updated_at = NOW()`,
		userID, endpoint, p256dh, auth,
	)
	return err
}

func (s *PostgresStore) GetPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, endpoint, p256dh, auth, created_at, updated_at FROM push_subscriptions ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []models.PushSubscription
	for rows.Next() {
		var sub models.PushSubscription
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			continue
		}
		subs = append(subs, sub)
	}

	return subs, nil
}

func (s *PostgresStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE endpoint = $1`, endpoint)
	return err
}

func (s *PostgresStore) CountPushSubscriptions(ctx context.Context) (int64, bool, error) {
	var count sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM push_subscriptions`).Scan(&count)
	if err != nil {
		return 0, false, err
	}
	if !count.Valid {
		return 0, false, nil
	}
	return count.Int64, true, nil
}

func (s *PostgresStore) CountPushSubscriptionsFallback(ctx context.Context) (int64, bool, error) {
	var count sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT count_push_subscriptions()`).Scan(&count)
	if err != nil {
		return 0, false, err
	}
	if !count.Valid {
		return 0, false, nil
	}
	return count.Int64, true, nil
}

// Betting data methods

func (s *PostgresStore) GetBettingData(ctx context.Context, userID int) (models.BettingData, error) {
	var data models.BettingData
	var configJSON, planJSON []byte
	var balance sql.NullFloat64

	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, config_json, plan_json, current_balance, theme, updated_at FROM betting_data WHERE user_id = $1`,
		userID,
	).Scan(&data.UserID, &configJSON, &planJSON, &balance, &data.Theme, &data.UpdatedAt)

	if err == sql.ErrNoRows {
		return models.DefaultBettingData(userID), nil
	}
	if err != nil {
		return models.BettingData{}, err
	}

	data.ConfigJSON = json.RawMessage(configJSON)
	data.PlanJSON = json.RawMessage(planJSON)
	if balance.Valid {
		data.CurrentBalance = &balance.Float64
	}

	return data, nil
}

func (s *PostgresStore) PutBettingData(ctx context.Context, userID int, data models.BettingData) error {
	var balance sql.NullFloat64
	if data.CurrentBalance != nil {
		balance = sql.NullFloat64{Float64: *data.CurrentBalance, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO betting_data (user_id, config_json, plan_json, current_balance, theme, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (user_id) DO UPDATE
		 SET config_json = EXCLUDED.config_json, plan_json = EXCLUDED.plan_json,
		     current_balance = EXCLUDED.current_balance, theme = EXCLUDED.theme, updated_at = NOW()`,
		userID, []byte(data.ConfigJSON), []byte(data.PlanJSON), balance, data.Theme,
	)
	return err
}

// Achievement methods

func (s *PostgresStore) CreateAchievement(ctx context.Context, title, description string, threshold float64, enabled bool) (models.Achievement, error) {
	var a models.Achievement
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO achievements (title, description, threshold, enabled, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id, title, description, threshold, enabled, created_at`,
		title, description, threshold, enabled,
	).Scan(&a.ID, &a.Title, &a.Description, &a.Threshold, &a.Enabled, &a.CreatedAt)

	return a, err
}

func (s *PostgresStore) GetAchievements(ctx context.Context) ([]models.Achievement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, threshold, enabled, created_at FROM achievements ORDER BY threshold ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []models.Achievement
	for rows.Next() {
		var a models.Achievement
		if err := rows.Scan(&a.ID, &a.Title, &a.Description, &a.Threshold, &a.Enabled, &a.CreatedAt); err != nil {
			continue
		}
		achievements = append(achievements, a)
	}

	return achievements, nil
}

func (s *PostgresStore) UpdateAchievement(ctx context.Context, id int, title, description string, threshold float64, enabled bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE achievements SET title = $1, description = $2, threshold = $3, enabled = $4 WHERE id = $5`,
		title, description, threshold, enabled, id,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.New("achievement not found")
	}

	return nil
}

func (s *PostgresStore) DeleteAchievement(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM achievements WHERE id = $1`, id)
	return err
}

// Audit methods

func (s *PostgresStore) InsertAudit(ctx context.Context, actorID int, action, targetType string, targetID int, metadata string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_logs (actor_id, action, target_type, target_id, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())`,
		actorID, action, targetType, targetID, metadata,
	)
	return err
}

func (s *PostgresStore) ListAudit(ctx context.Context, limit int) ([]models.AuditLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, actor_id, action, target_type, COALESCE(target_id, 0), COALESCE(metadata, ''), created_at
		 FROM audit_logs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.AuditLog
	for rows.Next() {
		var l models.AuditLog
		if err := rows.Scan(&l.ID, &l.ActorID, &l.Action, &l.TargetType, &l.TargetID, &l.Metadata, &l.CreatedAt); err != nil {
			continue
		}
		logs = append(logs, l)
	}

	return logs, nil
}
