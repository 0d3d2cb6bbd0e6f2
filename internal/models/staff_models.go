package models

import "time"

// StaffMember represents an employee with a one-to-one login account,
// an opaque staff_id badge number, a required role and an optional department.
type StaffMember struct {
	ID           int64       `json:"id"`
	UserID       int64       `json:"user_id" db:"user_id"`
	StaffID      string      `json:"staff_id" db:"staff_id"`
	DepartmentID *int64      `json:"department_id,omitempty" db:"department_id"`
	RoleID       int64       `json:"role_id" db:"role_id"`
	PhoneNumber  *string     `json:"phone_number,omitempty" db:"phone_number"`
	Address      *string     `json:"address,omitempty" db:"address"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
	User         *User       `json:"user,omitempty"`       // Joined user details
	Department   *Department `json:"department,omitempty"` // Joined department details
	Role         *Role       `json:"role,omitempty"`       // Joined role details
}

// StaffFilters narrows staff member listings.
type StaffFilters struct {
	SearchTerm   *string
	DepartmentID *int64
	RoleID       *int64
	Page         int
	PageSize     int
}
