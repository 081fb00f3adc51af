package identity

// Role is the caller's permission tier.
type Role string

const (
	RoleAdmin  Role = "administrator"
	RoleNormal Role = "guest"
)

// Identity describes the authenticated caller for a single request.
// A nil *Identity means the caller is anonymous. The value is built once
// by the auth middleware and never mutated afterwards.
type Identity struct {
	UID   uint
	Role  Role
	Email string
}

// IsAdmin reports whether the caller is an administrator.
// Safe to call on a nil receiver.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Owns reports whether the caller authored a row whose user_id is uid.
// Anonymous callers and rows without an author never match.
func (i *Identity) Owns(uid *uint) bool {
	return i != nil && uid != nil && *uid == i.UID
}
