package session

const (
	// GuestToken is the sentinel bearer value of a guest session.
	GuestToken = "guest"
	guestName  = "guest"
)

// User is the identity shown by the client.
type User struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Session is the authenticated state. The zero value is the signed-out session.
// User and Token are either both set or both empty.
type Session struct {
	User  *User
	Token string
}

// GuestSession returns the offline guest session.
func GuestSession() Session {
	return Session{
		User:  &User{Name: guestName, Username: guestName, Role: guestName},
		Token: GuestToken,
	}
}

// Authenticated reports whether the session carries an identity and a credential.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// Guest reports whether s is the guest session.
func (s Session) Guest() bool {
	return s.Authenticated() && s.Token == GuestToken
}

// Valid reports whether s honours the both-or-neither invariant.
func (s Session) Valid() bool {
	return (s.User == nil) == (s.Token == "")
}

// Role returns the raw role claim, or "" when signed out.
func (s Session) Role() string {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Clone returns a deep copy so callers cannot mutate manager state.
func (s Session) Clone() Session {
	out := Session{Token: s.Token}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}

// Equal compares two sessions by value.
func (s Session) Equal(o Session) bool {
	if s.Token != o.Token {
		return false
	}
	if s.User == nil || o.User == nil {
		return s.User == nil && o.User == nil
	}
	return *s.User == *o.User
}
