package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/spec-kit/internship-portal/internal/domain"
)

// UpdateProfileRequest is a partial profile update; omitted fields stay unchanged.
// ProfileCompleted is accepted for compatibility and ignored.
type UpdateProfileRequest struct {
	Name             *string        `json:"name"`
	Email            *string        `json:"email"`
	Phone            *string        `json:"phone"`
	Branch           *string        `json:"branch"`
	CGPA             *NumericString `json:"cgpa"`
	Year             *string        `json:"year"`
	University       *string        `json:"university"`
	Location         *string        `json:"location"`
	Department       *string        `json:"department"`
	ProfileCompleted *bool          `json:"profileCompleted"`
}

// NumericString accepts either a JSON string or a JSON number.
type NumericString string

// UnmarshalJSON implements json.Unmarshaler.
func (n *NumericString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumericString(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = NumericString(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// SetRoleRequest payload for the admin role change.
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student admin"`
}

// DashboardResponse mirrors domain.DashboardData.
type DashboardResponse struct {
	Marks      float64 `json:"marks"`
	Attendance float64 `json:"attendance"`
}

// UserResponse is the public view of a user. The password hash is never included.
type UserResponse struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	Role             domain.Role       `json:"role"`
	Phone            string            `json:"phone"`
	Branch           string            `json:"branch"`
	CGPA             string            `json:"cgpa"`
	Year             string            `json:"year"`
	University       string            `json:"university"`
	Location         string            `json:"location"`
	Department       string            `json:"department,omitempty"`
	ProfileCompleted bool              `json:"profileCompleted"`
	DashboardData    DashboardResponse `json:"dashboardData"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// NewUserResponse builds the public view of user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Role:             user.Role,
		Phone:            user.Phone,
		Branch:           user.Branch,
		CGPA:             user.CGPA,
		Year:             user.Year,
		University:       user.University,
		Location:         user.Location,
		Department:       user.Department,
		ProfileCompleted: user.ProfileCompleted,
		DashboardData: DashboardResponse{
			Marks:      user.Dashboard.Marks,
			Attendance: user.Dashboard.Attendance,
		},
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
