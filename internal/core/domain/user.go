package domain

import (
	"slices"
	"strings"
	"time"
)

// ResourceUsers is the resource name of user accounts.
const ResourceUsers = "users"

// Role is the permission level of a user account.
type Role string

// Known roles.
const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleViewer  Role = "viewer"
)

var knownRoles = []Role{RoleAdmin, RoleManager, RoleStaff, RoleViewer}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return slices.Contains(knownRoles, r)
}

// User is a back-office user account.
type User struct {
	ID          string     `json:"id"                    yaml:"id"`
	Email       string     `json:"email"                 yaml:"email"`
	FirstName   string     `json:"firstName"             yaml:"firstName"`
	LastName    string     `json:"lastName"              yaml:"lastName"`
	Role        Role       `json:"role"                  yaml:"role"`
	IsActive    bool       `json:"isActive"              yaml:"isActive"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" yaml:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"             yaml:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"             yaml:"updatedAt"`
}

// UserInput is the payload of a user creation.
type UserInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
	IsActive  *bool  `json:"isActive,omitempty"`
}

const minPasswordLength = 8

// Validate checks the payload before it is sent.
func (in UserInput) Validate() error {
	if !strings.Contains(in.Email, "@") {
		return NewValidationError("email", "must be a valid email address")
	}
	if len(in.Password) < minPasswordLength {
		return NewValidationError("password", "must be at least 8 characters")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return NewValidationError("firstName", "is required")
	}
	if !in.Role.Valid() {
		return NewValidationError("role", "must be one of admin, manager, staff, viewer")
	}
	return nil
}

// UserPatch is a partial user update. Only non-nil fields are sent.
type UserPatch struct {
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Role      *Role   `json:"role,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

// Validate checks the provided fields.
func (p UserPatch) Validate() error {
	if p.Email != nil && !strings.Contains(*p.Email, "@") {
		return NewValidationError("email", "must be a valid email address")
	}
	if p.Password != nil && len(*p.Password) < minPasswordLength {
		return NewValidationError("password", "must be at least 8 characters")
	}
	if p.Role != nil && !p.Role.Valid() {
		return NewValidationError("role", "must be one of admin, manager, staff, viewer")
	}
	return nil
}

// UserFilter selects users in a list.
type UserFilter struct {
	ListOptions
	Role     Role
	IsActive *bool
}

// Query implements ListFilter.
func (f UserFilter) Query(defaultLimit int) QueryParams {
	q := f.ListOptions.Query(defaultLimit)
	q.Add("role", string(f.Role))
	q.AddBool("isActive", f.IsActive)
	return q
}

// Set implements FilterSetter.
func (f *UserFilter) Set(field, value string) error {
	if ok, err := f.SetOption(field, value); ok {
		return err
	}
	switch field {
	case "role":
		f.Role = Role(value)
	case "isActive":
		b, err := parseBool(field, value)
		if err != nil {
			return err
		}
		f.IsActive = b
	default:
		return unknownFilter(field)
	}
	return nil
}

// Validate implements ListFilter.
func (f UserFilter) Validate() error {
	if f.Role != "" && !f.Role.Valid() {
		return NewValidationError("role", "must be one of admin, manager, staff, viewer")
	}
	return nil
}
