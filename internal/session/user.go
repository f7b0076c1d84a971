package session

import "github.com/openpress/quill/internal/api"

// User is the in-memory representation of the logged-in identity,
// merged from token claims, the auth response, and (when fetched) the
// server profile. The role is redundantly encoded: UserType may be set
// on the user itself, on the nested profile, or on neither.
type User struct {
	ID       int          `json:"id"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	UserType string       `json:"user_type,omitempty"`
	Profile  *api.Profile `json:"profile,omitempty"`
}

// ProfileUserType returns the role signal carried by the fetched
// profile, empty when no profile is attached.
func (u *User) ProfileUserType() string {
	if u == nil || u.Profile == nil {
		return ""
	}
	return u.Profile.UserType
}

func fromAPIUser(src *api.User) *User {
	return &User{
		ID:       src.ID,
		Username: src.Username,
		Email:    src.Email,
		UserType: src.UserType,
	}
}
