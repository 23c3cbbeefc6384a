package processor

import (
	"fmt"
	"strings"
)

type AuthErrorKind string

const (
	AuthMissingAPIKey       AuthErrorKind = "MISSING_API_KEY"
	AuthInvalidAPIKeyFormat AuthErrorKind = "INVALID_API_KEY_FORMAT"
	AuthUnregisteredAPIKey  AuthErrorKind = "UNREGISTERED_API_KEY"
)

// AuthError means the processor rejected our credentials. Fixing
// configuration is the only recovery; the call is never retried.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("pg auth failed (%s): %s", e.Kind, e.Message)
}

// authPattern maps case-insensitive substrings of the upstream 401 message to
// a verdict. Order matters: the first pattern set with any match wins, and an
// unmatched message falls back to UNREGISTERED_API_KEY.
type authPattern struct {
	substrings []string
	kind       AuthErrorKind
}

var authPatterns = []authPattern{
	{substrings: []string{"missing", "header"}, kind: AuthMissingAPIKey},
	{substrings: []string{"format", "uuid"}, kind: AuthInvalidAPIKeyFormat},
	{substrings: []string{"unregistered", "not found"}, kind: AuthUnregisteredAPIKey},
}

// ClassifyAuthMessage decides the AuthErrorKind for an upstream 401 message.
func ClassifyAuthMessage(message string) AuthErrorKind {
	lowered := strings.ToLower(message)
	for _, p := range authPatterns {
		for _, sub := range p.substrings {
			if strings.Contains(lowered, sub) {
				return p.kind
			}
		}
	}
	return AuthUnregisteredAPIKey
}

// ApprovalError means the processor rejected the transaction itself.
// Retrying a declined card is not meaningful, so no retry exists anywhere.
type ApprovalError struct {
	Code        int     // upstream HTTP status
	ErrorCode   string  // enumerated decline name or the raw upstream code
	Message     string
	ReferenceID *string
}

func (e *ApprovalError) Error() string {
	return fmt.Sprintf("pg approval failed (%d/%s): %s", e.Code, e.ErrorCode, e.Message)
}

type DeclineReason struct {
	Name        string
	Description string
}

// declineReasons is the processor's numeric decline-code domain for 422
// responses. Codes outside the table pass through unchanged.
var declineReasons = map[int]DeclineReason{
	1001: {Name: "STOLEN_OR_LOST", Description: "stolen or lost card"},
	1002: {Name: "INSUFFICIENT_LIMIT", Description: "credit limit exceeded"},
	1003: {Name: "EXPIRED_OR_BLOCKED", Description: "suspended or expired card"},
	1004: {Name: "TAMPERED_CARD", Description: "tampered/counterfeit card"},
	1005: {Name: "TAMPERED_CARD_NOT_ALLOWED", Description: "tampered/counterfeit card, not permitted"},
}

func LookupDecline(code int) (DeclineReason, bool) {
	reason, ok := declineReasons[code]
	return reason, ok
}
