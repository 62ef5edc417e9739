package models

// Role is the ordered privilege level of an account: user < admin < owner.
// Every authorization check goes through HasAtLeast instead of comparing
// role strings ad hoc.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

var roleLevels = map[Role]int{
	RoleUser:  0,
	RoleAdmin: 1,
	RoleOwner: 2,
}

// Level returns the numeric privilege level; unknown roles rank below user.
func (r Role) Level() int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return -1
}

// HasAtLeast reports whether r grants the privileges of required.
func (r Role) HasAtLeast(required Role) bool {
	return r.Level() >= required.Level()
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleLevels[r]
	return ok
}
