package domain

import (
	"strings"
	"time"
)

// Accepted values for User.Year.
var ValidYears = []string{"1st Year", "2nd Year", "3rd Year", "4th Year", "Graduate"}

// DashboardData holds per-student dashboard counters. Currently placeholders.
type DashboardData struct {
	Marks      float64
	Attendance float64
}

// User is a portal account, either a student or an administrator.
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	Role             Role
	Phone            string
	Branch           string
	CGPA             string
	Year             string
	University       string
	Location         string
	Department       string
	ProfileCompleted bool
	Dashboard        DashboardData
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RequiredProfileFields returns the fields that must be non-empty for a complete profile.
func (u *User) RequiredProfileFields() map[string]string {
	return map[string]string{
		"name":       u.Name,
		"email":      u.Email,
		"university": u.University,
		"branch":     u.Branch,
		"year":       u.Year,
	}
}

// MissingProfileFields lists required profile fields that are blank, in a stable order.
func (u *User) MissingProfileFields() []string {
	fields := u.RequiredProfileFields()
	var missing []string
	for _, key := range []string{"name", "email", "university", "branch", "year"} {
		if strings.TrimSpace(fields[key]) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// RecomputeProfileCompleted derives ProfileCompleted from the required fields.
func (u *User) RecomputeProfileCompleted() {
	u.ProfileCompleted = len(u.MissingProfileFields()) == 0
}

// NormalizeEmail lower-cases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidYear reports whether year is one of ValidYears.
func IsValidYear(year string) bool {
	for _, y := range ValidYears {
		if y == year {
			return true
		}
	}
	return false
}
