package models

import "time"

// Achievement is an admin-configured milestone shown on the dashboard once a
// user's tracked profit crosses the threshold.
type Achievement struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Threshold   float64   `json:"threshold"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
}
