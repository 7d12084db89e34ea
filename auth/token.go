package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"auction-chat/domain"
	"auction-chat/errors"
)

// Claims defines the structure of the data stored inside the backend JWT.
type Claims struct {
	UserID       string `json:"userId"`
	Username     string `json:"username,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	jwt.RegisteredClaims
}

// ParseIdentity derives the user identity from the bearer credential.
// The signature is NOT verified here: the server is the authority and
// rejects bad signatures at connect time; the client only needs the
// claims for display and self-exclusion.
func ParseIdentity(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, errors.ErrNoCredential
	}
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		UserID:    claims.UserID,
		Username:  claims.Username,
		AvatarRef: claims.ProfileImage,
	}, nil
}

// Expired reports whether the credential's exp claim has passed.
// A token without an exp claim is treated as still valid.
func Expired(token string, now time.Time) bool {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}

// TokenFromCookies extracts the "token" cookie from a raw Cookie header
// string. Absence of the cookie means no connection is attempted.
func TokenFromCookies(raw string) (string, bool) {
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		value, found := strings.CutPrefix(part, "token=")
		if found && value != "" {
			return value, true
		}
	}
	return "", false
}
