package caller

// Role is the privilege level of an authenticated caller.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Caller is the identity an operation runs on behalf of.
type Caller struct {
	ID   string
	Role Role
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

func (c Caller) Authenticated() bool {
	return c.ID != ""
}
