package models

import "time"

// AuditLog records one admin mutation: who did what to which target. The
// metadata field carries a JSON snapshot of the request that caused it.
type AuditLog struct {
	ID         int       `json:"id"`
	ActorID    int       `json:"actor_id"`
	Action     string    `json:"action"` // e.g. "create_user", "broadcast_push"
	TargetType string    `json:"target_type"`
	TargetID   int       `json:"target_id,omitempty"`
	Metadata   string    `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
