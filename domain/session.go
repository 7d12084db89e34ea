package domain

// Identity is the user identity derived from the bearer credential.
type Identity struct {
	UserID    string
	Username  string
	AvatarRef string
}

// Session holds the bearer credential and the identity derived from it.
// A session is created on login and destroyed on logout or expiry; a
// connection built on an invalidated session is rebuilt, never repaired.
type Session struct {
	Token    string
	Identity Identity
}

func (s Session) HasCredential() bool {
	return s.Token != ""
}
