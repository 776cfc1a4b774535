package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance,
	// such as account creation.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring and forensics:
	// rejected passcodes, rejected attestation, throttling, orphaned accounts.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Category  EventCategory
	Timestamp time.Time
	Action    string
	// UserID is the account id once the identity provider has issued one.
	UserID string
	// AdminID is the administrator whose passcode authorised the action.
	AdminID string
	// Subject is the entity the event is about when there is no user yet
	// (a masked email or a client IP).
	Subject   string
	Reason    string
	RequestID string
	ClientIP  string
	ClientOS  string
	AppID     string
}

type AuditEvent string

const (
	// Passcode events
	EventPasscodeValidated AuditEvent = "passcode_validated"
	EventPasscodeRejected  AuditEvent = "passcode_rejected"

	// Registration events
	EventUserRegistered             AuditEvent = "user_registered"
	EventRegistrationFailed         AuditEvent = "registration_failed"
	EventRegistrationPartialFailure AuditEvent = "registration_partial_failure"

	// Gateway events
	EventAttestationRejected AuditEvent = "attestation_rejected"
	EventRateLimitExceeded   AuditEvent = "rate_limit_exceeded"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventUserRegistered: CategoryCompliance,

	EventPasscodeRejected:           CategorySecurity,
	EventRegistrationPartialFailure: CategorySecurity,
	EventAttestationRejected:        CategorySecurity,
	EventRateLimitExceeded:          CategorySecurity,

	EventPasscodeValidated:  CategoryOperations,
	EventRegistrationFailed: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists or forwards audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
