package domain

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cajero"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleCashier }

// Session is replaced, never mutated, when a different user logs in.
type Session struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }
