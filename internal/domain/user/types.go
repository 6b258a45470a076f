package user

import "errors"

var ErrInvalidRole = errors.New("invalid role")

// Role is carried in the bearer token. Clients book, controllers scan
// access tokens at the venue, admins act for the venue and payment side.
type Role string

const (
	RoleClient     Role = "client"
	RoleController Role = "controller"
	RoleAdmin      Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleController, RoleAdmin:
		return true
	default:
		return false
	}
}

func NewRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", ErrInvalidRole
	}
	return role, nil
}

var roleRank = map[Role]int{
	RoleClient:     1,
	RoleController: 2,
	RoleAdmin:      3,
}

// AtLeast orders roles client < controller < admin.
func (r Role) AtLeast(required Role) bool {
	return roleRank[r] >= roleRank[required] && roleRank[r] > 0
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
