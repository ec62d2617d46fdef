package auth

import "fmt"

// Role classifies what an account may do on the site.
type Role int

const (
	Customer Role = iota
	Employee
	Admin
)

func (r Role) String() string {
	switch r {
	case Customer:
		return "Customer"
	case Employee:
		return "Employee"
	case Admin:
		return "Admin"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Elevated reports whether the role may manage inventory.
func (r Role) Elevated() bool {
	switch r {
	case Employee, Admin:
		return true
	case Customer:
		return false
	}
	return false
}

func ParseRole(s string) (Role, error) {
	switch s {
	case "Customer":
		return Customer, nil
	case "Employee":
		return Employee, nil
	case "Admin":
		return Admin, nil
	}
	return Customer, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	if r < Customer || r > Admin {
		return nil, fmt.Errorf("unknown role %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	role, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = role
	return nil
}
