package enums

import "fmt"

// UserRole is the closed set of roles checked by the API role guard.
type UserRole string

const (
	RoleCustomer      UserRole = "customer"
	RoleDealerStaff   UserRole = "dealer_staff"
	RoleDealerManager UserRole = "dealer_manager"
	RoleEVMStaff      UserRole = "evm_staff"
	RoleAdmin         UserRole = "admin"
)

var validUserRoles = []UserRole{
	RoleCustomer,
	RoleDealerStaff,
	RoleDealerManager,
	RoleEVMStaff,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (u UserRole) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UserRole.
func (u UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == u {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role belongs to dealer or manufacturer staff.
func (u UserRole) IsStaff() bool {
	switch u {
	case RoleDealerStaff, RoleDealerManager, RoleEVMStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
