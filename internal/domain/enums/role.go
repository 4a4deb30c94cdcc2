package enums

type Role string

const (
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleFriend    Role = "friend"
)

// Unlimited reports whether the role bypasses every quota and points check.
// Unknown roles are never unlimited.
func (r Role) Unlimited() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleFriend:
		return true
	default:
		return false
	}
}
