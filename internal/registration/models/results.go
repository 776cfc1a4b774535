package models

import "time"

// PasscodeValidation is the outcome of a successful passcode check.
type PasscodeValidation struct {
	IsValid   bool   `json:"isValid"`
	AdminID   string `json:"adminId"`
	AdminName string `json:"adminName"`
}

// RegistrationResult is returned once the account and profile both exist.
type RegistrationResult struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// OrphanedAccount records an identity-provider account whose profile write
// failed. Reconciliation tooling resolves these out of band.
type OrphanedAccount struct {
	UserID     string     `json:"userId"`
	Email      string     `json:"email"`
	AdminID    string     `json:"adminId"`
	RequestID  string     `json:"requestId"`
	Reason     string     `json:"reason"`
	DetectedAt time.Time  `json:"detectedAt"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
}
