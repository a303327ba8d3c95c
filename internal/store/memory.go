package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"bet-tracker-go/internal/models"
)

// MemoryStore is a process-local Store used when no database is configured
// and as the test implementation. Last writer wins per key; nothing is
// durable across restarts and nothing is ever evicted.
type MemoryStore struct {
	mu sync.RWMutex

	nextUserID        int
	nextSubID         int
	nextAchievementID int
	nextAuditID       int

	users         map[int]models.User
	subscriptions map[string]models.PushSubscription // keyed by endpoint
	betting       map[int]models.BettingData
	achievements  map[int]models.Achievement
	audit         []models.AuditLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[int]models.User),
		subscriptions: make(map[string]models.PushSubscription),
		betting:       make(map[int]models.BettingData),
		achievements:  make(map[int]models.Achievement),
	}
}

// User methods

func (s *MemoryStore) CreateUser(ctx context.Context, username, password, role string) (models.User, error) {
	passwordHash, err := models.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return models.User{}, errors.New("username already exists")
		}
	}

	s.nextUserID++
	user := models.User{
		ID:           s.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[user.ID] = user

	return user, nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id int) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, errors.New("user not found")
	}
	return user, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, errors.New("user not found")
}

func (s *MemoryStore) GetUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, id int, username, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return errors.New("user not found")
	}
	user.Username = username
	user.Role = role
	s.users[id] = user

	return nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.users, id)
	delete(s.betting, id)
	return nil
}

func (s *MemoryStore) UpdateUserPassword(ctx context.Context, userID int, newPasswordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	user.PasswordHash = newPasswordHash
	s.users[userID] = user

	return nil
}

func (s *MemoryStore) UpdateUser2FA(ctx context.Context, userID int, totpSecret string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return errors.New("user not found")
	}
	user.TOTPSecret = totpSecret
	user.TOTPEnabled = enabled
	s.users[userID] = user

	return nil
}

func (s *MemoryStore) Disable2FA(ctx context.Context, userID int) error {
	return s.UpdateUser2FA(ctx, userID, "", false)
}

// Push subscription methods

func (s *MemoryStore) SavePushSubscription(ctx context.Context, userID int, endpoint, p256dh, auth string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.subscriptions[endpoint]; ok {
		existing.UserID = userID
		existing.P256dh = p256dh
		existing.Auth = auth
		existing.UpdatedAt = now
		s.subscriptions[endpoint] = existing
		return nil
	}

	s.nextSubID++
	s.subscriptions[endpoint] = models.PushSubscription{
		ID:        s.nextSubID,
		UserID:    userID,
		Endpoint:  endpoint,
		P256dh:    p256dh,
		Auth:      auth,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return nil
}

func (s *MemoryStore) GetPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := make([]models.PushSubscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })

	return subs, nil
}

func (s *MemoryStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.subscriptions, endpoint)
	return nil
}

func (s *MemoryStore) CountPushSubscriptions(ctx context.Context) (int64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.subscriptions)), true, nil
}

func (s *MemoryStore) CountPushSubscriptionsFallback(ctx context.Context) (int64, bool, error) {
	return s.CountPushSubscriptions(ctx)
}

// Betting data methods

func (s *MemoryStore) GetBettingData(ctx context.Context, userID int) (models.BettingData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.betting[userID]
	if !ok {
		return models.DefaultBettingData(userID), nil
	}
	return data, nil
}

func (s *MemoryStore) PutBettingData(ctx context.Context, userID int, data models.BettingData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data.UserID = userID
	data.UpdatedAt = time.Now().UTC()
	s.betting[userID] = data

	return nil
}

// Achievement methods

func (s *MemoryStore) CreateAchievement(ctx context.Context, title, description string, threshold float64, enabled bool) (models.Achievement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAchievementID++
	a := models.Achievement{
		ID:          s.nextAchievementID,
		Title:       title,
		Description: description,
		Threshold:   threshold,
		Enabled:     enabled,
		CreatedAt:   time.Now().UTC(),
	}
	s.achievements[a.ID] = a

	return a, nil
}

func (s *MemoryStore) GetAchievements(ctx context.Context) ([]models.Achievement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	achievements := make([]models.Achievement, 0, len(s.achievements))
	for _, a := range s.achievements {
		achievements = append(achievements, a)
	}
	sort.Slice(achievements, func(i, j int) bool { return achievements[i].Threshold < achievements[j].Threshold })

	return achievements, nil
}

func (s *MemoryStore) UpdateAchievement(ctx context.Context, id int, title, description string, threshold float64, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.achievements[id]
	if !ok {
		return errors.New("achievement not found")
	}
	a.Title = title
	a.Description = description
	a.Threshold = threshold
	a.Enabled = enabled
	s.achievements[id] = a

	return nil
}

func (s *MemoryStore) DeleteAchievement(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.achievements, id)
	return nil
}

// Audit methods

func (s *MemoryStore) InsertAudit(ctx context.Context, actorID int, action, targetType string, targetID int, metadata string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextAuditID++
	s.audit = append(s.audit, models.AuditLog{
		ID:         s.nextAuditID,
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	})

	return nil
}

func (s *MemoryStore) ListAudit(ctx context.Context, limit int) ([]models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]models.AuditLog, 0, limit)
	for i := len(s.audit) - 1; i >= 0 && len(logs) < limit; i-- {
		logs = append(logs, s.audit[i])
	}

	return logs, nil
}
