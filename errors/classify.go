package errors

import "strings"

// FailureKind is the stable classification of a connection failure.
// The wire protocol only carries free-text reasons, so the fragile
// string matching on server wording is contained here and nowhere else.
type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureAuth                // invalid/expired credential, requires re-login
	FailureTimeout             // network timeout, worth retrying
	FailureChatDisabled
)

// authMarkers are the exact substrings the backend uses in its
// authentication middleware error messages.
var authMarkers = []string{
	"invalid signature",
	"Invalid token",
	"Token expired",
	"No token provided",
	"Authentication error",
	"jwt",
}

// Classify maps a raw failure reason to a FailureKind.
func Classify(reason string) FailureKind {
	for _, marker := range authMarkers {
		if strings.Contains(reason, marker) {
			return FailureAuth
		}
	}
	if strings.Contains(reason, "timeout") {
		return FailureTimeout
	}
	if strings.Contains(reason, "disabled") {
		return FailureChatDisabled
	}
	return FailureUnknown
}

// UserMessage returns the user-facing copy for a classified failure,
// with the raw reason appended for unknown kinds.
func UserMessage(reason string) string {
	switch Classify(reason) {
	case FailureAuth:
		return "Authentication failed. Please login again."
	case FailureTimeout:
		return "Connection timeout. Please check your internet connection."
	case FailureChatDisabled:
		return "Chat is disabled for this auction"
	default:
		return "Connection failed: " + reason
	}
}
