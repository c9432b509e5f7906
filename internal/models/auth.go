package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles recognised by the RBAC layer.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleScheduler  UserRole = "SCHEDULER"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleStudent    UserRole = "STUDENT"
)

// CanEditTimetable reports whether the role may mutate lectures and reschedules.
func (r UserRole) CanEditTimetable() bool {
	return r == RoleAdmin || r == RoleScheduler
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
