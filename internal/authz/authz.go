// Package authz holds the admin authorization gate. The policy is a single
// boolean predicate; callers never see how the decision is made.
package authz

import (
	"os"
	"strconv"
)

// Actions checked against the gate.
const (
	ActionAdmin = "admin"
)

// defaultAdminID is the bootstrap admin account created at first boot.
const defaultAdminID = 1

// Authorizer decides whether a user may perform an action.
type Authorizer interface {
	IsAuthorized(userID int, action string) bool
}

// StaticAuthorizer recognizes exactly one admin identity. No role hierarchy,
// no revocation flow.
type StaticAuthorizer struct {
	adminID int
}

func NewStaticAuthorizer(adminID int) *StaticAuthorizer {
	return &StaticAuthorizer{adminID: adminID}
}

// NewFromEnv reads ADMIN_USER_ID, falling back to the bootstrap admin id.
func NewFromEnv() *StaticAuthorizer {
	adminID := defaultAdminID
	if v := os.Getenv("ADMIN_USER_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			adminID = id
		}
	}
	return NewStaticAuthorizer(adminID)
}

func (a *StaticAuthorizer) IsAuthorized(userID int, action string) bool {
	return userID == a.adminID
}
