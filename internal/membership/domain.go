// internal/membership/domain.go
package membership

import (
	"strings"
	"time"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/apperr"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

const (
	MinPasswordLength = 8

	DefaultRateLimitPerMinute = 5
	DefaultRateLimitBurst     = 5
)

const (
	actionRegistered  = "registered"
	actionRoleChanged = "role_changed"
)

// Registration is a self-service sign-up. Role defaults to student.
type Registration struct {
	Name     string     `json:"name"`
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

func (r *Registration) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
	if r.Role == "" {
		r.Role = model.RoleStudent
	}
}

func (r *Registration) validate() error {
	switch {
	case r.Name == "":
		return apperr.Invalid("name is required")
	case r.Email == "" || !strings.Contains(r.Email, "@"):
		return apperr.Invalid("a valid email is required")
	case len(r.Password) < MinPasswordLength:
		return apperr.Invalid("password must be at least %d characters", MinPasswordLength)
	case !r.Role.Valid():
		return apperr.Invalid("unknown role %q", r.Role)
	case r.Role.IsStaff():
		return apperr.Forbidden("staff accounts cannot be self-registered")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Session is returned by a successful login.
type Session struct {
	AccessToken string             `json:"access_token"`
	ExpiresAt   time.Time          `json:"expires_at"`
	User        *model.UserSummary `json:"user"`
}

type roleChanged struct {
	From model.Role `json:"from"`
	To   model.Role `json:"to"`
}
