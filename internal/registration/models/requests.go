package models

import (
	"strings"

	dErrors "passgate/pkg/domain-errors"
)

// Client-facing messages. Mobile clients display these verbatim.
const (
	MsgPasscodeInvalidType  = "Please provide a valid registration passcode"
	MsgPasscodeEmpty        = "Please enter a registration passcode"
	MsgPasscodeNotFound     = "Invalid registration passcode"
	MsgPasscodeLookupFailed = "Error validating passcode"
	MsgRegisterMissing      = "Email, password, and passcode are required"
	MsgRegisterFailed       = "Registration failed"
	MsgRegisterSucceeded    = "Registration successful! Please wait for admin approval."
)

// ValidatePasscodeRequest is the payload of validateRegistrationPasscode.
// Passcode is a pointer so an absent field can be told apart from "".
type ValidatePasscodeRequest struct {
	Passcode *string `json:"passcode"`
}

func (r *ValidatePasscodeRequest) Validate() error {
	if r.Passcode == nil {
		return dErrors.New(dErrors.CodeInvalidArgument, MsgPasscodeInvalidType)
	}
	return nil
}

// RegisterRequest is the payload of createUserWithPasscode.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

// Normalize trims email and name. The passcode is left raw for the validator
// and the password is never altered.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

func (r *RegisterRequest) Validate() error {
	if r.Email == "" || r.Password == "" || strings.TrimSpace(r.Passcode) == "" {
		return dErrors.New(dErrors.CodeInvalidArgument, MsgRegisterMissing)
	}
	return nil
}
