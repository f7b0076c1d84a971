// Package roles derives a user's permission tier from the redundant
// role signals the API exposes: a user_type field that may appear on
// the user object or on the nested profile, plus a hardcoded username
// allow-list.
//
// The allow-list is a privilege-escalation hazard: any account that
// happens to claim one of these usernames gets elevated rights no
// matter what its role field says. It is kept because deployed gating
// depends on it; remove it once the server's user_type is the single
// authority.
package roles

import "github.com/openpress/quill/internal/session"

// Role values used by the API
const (
	RoleAdmin   = "admin"
	RoleAuthor  = "author"
	RoleRegular = "regular"
)

// adminAllowlist grants admin rights by username alone
var adminAllowlist = map[string]bool{
	"admin":    true,
	"oshri000": true,
}

// IsAdmin reports whether any role signal marks the user an admin
func IsAdmin(user *session.User) bool {
	if user == nil {
		return false
	}
	return user.UserType == RoleAdmin ||
		user.ProfileUserType() == RoleAdmin ||
		adminAllowlist[user.Username]
}

// IsAuthor reports whether the user may author articles. Admins and
// allow-listed usernames qualify implicitly.
func IsAuthor(user *session.User) bool {
	if user == nil {
		return false
	}
	return user.UserType == RoleAuthor ||
		user.ProfileUserType() == RoleAuthor ||
		IsAdmin(user)
}
