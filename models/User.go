package models

import "gorm.io/gorm"

// User roles.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
	RoleStaff      = "staff"
)

// User is an admin-console account. The public booking flow is anonymous;
// users exist only to gate the admin endpoints.
type User struct {
	gorm.Model
	Email     string `json:"email" gorm:"uniqueIndex;not null"`
	Password  string `json:"-" gorm:"not null"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" gorm:"type:varchar(20);default:'staff'"`
}
