package models

import (
	"strings"
	"time"

	dErrors "passgate/pkg/domain-errors"
)

// UnknownAdminName is reported when the matching admin record has no name.
const UnknownAdminName = "Unknown Admin"

// NormalizePasscode is the only form a passcode is compared or stored in:
// surrounding whitespace removed, upper-cased.
func NormalizePasscode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// AdminRecord is an administrator who can hand out a registration passcode.
//
// Invariants:
//   - ID is non-empty and store-assigned
//   - RegistrationPasscode is stored in normalized form and is non-empty
//   - Only Active records authorise registrations
//
// Several active records sharing a passcode is a data-integrity problem the
// core tolerates: lookups take the oldest record.
type AdminRecord struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	RegistrationPasscode string    `json:"registrationPasscode"`
	Active               bool      `json:"active"`
	CreatedAt            time.Time `json:"createdAt"`
}

// NewAdminRecord builds an active admin with a normalized passcode.
func NewAdminRecord(id, name, passcode string, now time.Time) (*AdminRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "admin id cannot be empty")
	}
	normalized := NormalizePasscode(passcode)
	if normalized == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "registration passcode cannot be empty")
	}
	return &AdminRecord{
		ID:                   id,
		Name:                 strings.TrimSpace(name),
		RegistrationPasscode: normalized,
		Active:               true,
		CreatedAt:            now,
	}, nil
}

// DisplayName returns Name, or UnknownAdminName when it is empty.
func (a *AdminRecord) DisplayName() string {
	if a.Name == "" {
		return UnknownAdminName
	}
	return a.Name
}
