package email

import (
	"net/mail"
	"strings"
)

// Normalize trims surrounding whitespace and lower-cases the address.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// IsValid reports whether address is a bare RFC 5322 address with a domain.
func IsValid(address string) bool {
	parsed, err := mail.ParseAddress(address)
	if err != nil || parsed.Address != address {
		return false
	}
	at := strings.LastIndexByte(address, '@')
	return at > 0 && at < len(address)-1
}

// Mask hides most of the local part so addresses can appear in logs.
//
//	Mask("jane.doe@example.com") // "j*******@example.com"
func Mask(address string) string {
	at := strings.IndexByte(address, '@')
	if at <= 0 {
		return "***"
	}
	local := []rune(address[:at])
	return string(local[0]) + strings.Repeat("*", len(local)-1) + address[at:]
}
