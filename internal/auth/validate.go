package auth

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/AirLinkPros/airlink-backend/internal/utils"
)

const MinPasswordLength = 8

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Validate checks the sign-up form and canonicalizes Role, defaulting to
// HOMEOWNER. The first failing field is reported.
func (req *SignupRequest) Validate() error {
	if !validEmail(req.Email) {
		return utils.NewValidationError("email", "Invalid email")
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Password)) < MinPasswordLength {
		return utils.NewValidationError("password", "Password must be at least %d characters", MinPasswordLength)
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Name)) < 2 {
		return utils.NewValidationError("name", "Name is required")
	}

	switch role := strings.ToUpper(strings.TrimSpace(req.Role)); role {
	case "":
		req.Role = RoleHomeowner
	case RoleHomeowner, RoleContractor:
		req.Role = role
	default:
		return utils.NewValidationError("role", "Role must be HOMEOWNER or CONTRACTOR")
	}
	return nil
}

// validEmail accepts a bare address only; display-name forms are rejected.
func validEmail(s string) bool {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	return strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@"):], ".")
}
