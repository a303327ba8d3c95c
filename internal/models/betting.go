package models

import (
	"encoding/json"
	"time"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// BettingData holds one user's tracker state. Config and plan are opaque JSON
// blobs owned by the client; the server stores them wholesale and never looks
// inside.
type BettingData struct {
	UserID         int             `json:"user_id"`
	ConfigJSON     json.RawMessage `json:"config_json"`
	PlanJSON       json.RawMessage `json:"plan_json"`
	CurrentBalance *float64        `json:"current_balance"`
	Theme          string          `json:"theme"`
	UpdatedAt      time.Time       `json:"updated_at,omitempty"`
}

// DefaultBettingData is what an account that never saved anything resolves to.
func DefaultBettingData(userID int) BettingData {
	return BettingData{
		UserID: userID,
		Theme:  ThemeLight,
	}
}

// ValidTheme reports whether theme is one of the supported values.
func ValidTheme(theme string) bool {
	return theme == ThemeLight || theme == ThemeDark
}
