package models

import (
	"strings"
	"time"

	dErrors "passgate/pkg/domain-errors"
)

// UserStatus is the approval state of a self-registered user.
type UserStatus string

const (
	UserStatusPending  UserStatus = "pending"
	UserStatusActive   UserStatus = "active"
	UserStatusRejected UserStatus = "rejected"
)

func (s UserStatus) IsValid() bool {
	switch s {
	case UserStatusPending, UserStatusActive, UserStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the approval workflow may move a user from
// s to next. Only pending users are decided; decisions are final.
func (s UserStatus) CanTransitionTo(next UserStatus) bool {
	return s == UserStatusPending && (next == UserStatusActive || next == UserStatusRejected)
}

// ContactTypeEmail is the only contact type this flow produces.
const ContactTypeEmail = "email"

// User is the profile document written after a successful registration.
//
// Invariants:
//   - ID equals the identity provider's account id
//   - Contact is non-empty and ContactType is "email"
//   - AdminID references the admin whose passcode was used
//   - Status starts as pending
//   - FirstLoginTime, LastLoginTime and RegistrationDate start equal
//   - PlanIDs is never nil
type User struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Contact          string     `json:"contact"`
	ContactType      string     `json:"contactType"`
	Notes            string     `json:"notes"`
	PlanIDs          []string   `json:"planIds"`
	AdminID          string     `json:"adminId"`
	Status           UserStatus `json:"status"`
	FirstLoginTime   time.Time  `json:"firstLoginTime"`
	LastLoginTime    time.Time  `json:"lastLoginTime"`
	RegistrationDate time.Time  `json:"registrationDate"`
}

// NewPendingUser builds the profile for a freshly created account. Timestamps
// are truncated to milliseconds and stored in UTC.
func NewPendingUser(id, name, contact, adminID string, now time.Time) (*User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user id cannot be empty")
	}
	if strings.TrimSpace(contact) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "contact cannot be empty")
	}
	if strings.TrimSpace(adminID) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "admin id cannot be empty")
	}
	ts := now.UTC().Truncate(time.Millisecond)
	return &User{
		ID:               id,
		Name:             name,
		Contact:          contact,
		ContactType:      ContactTypeEmail,
		Notes:            "",
		PlanIDs:          []string{},
		AdminID:          adminID,
		Status:           UserStatusPending,
		FirstLoginTime:   ts,
		LastLoginTime:    ts,
		RegistrationDate: ts,
	}, nil
}

func (u *User) IsPending() bool {
	return u.Status == UserStatusPending
}
