package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AirLinkPros/airlink-backend/internal/utils"
)

func TestSignupRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     SignupRequest
		field   string
		message string
	}{
		{"bad email", SignupRequest{Email: "not-an-email", Password: "longenough", Name: "Ana"}, "email", "Invalid email"},
		{"display name email", SignupRequest{Email: "Ana <ana@example.com>", Password: "longenough", Name: "Ana"}, "email", "Invalid email"},
		{"short password", SignupRequest{Email: "ana@example.com", Password: "short", Name: "Ana"}, "password", "Password must be at least 8 characters"},
		{"padded short password", SignupRequest{Email: "ana@example.com", Password: "       a", Name: "Ana"}, "password", "Password must be at least 8 characters"},
		{"blank name", SignupRequest{Email: "ana@example.com", Password: "longenough", Name: "   "}, "name", "Name is required"},
		{"one letter name", SignupRequest{Email: "ana@example.com", Password: "longenough", Name: " A "}, "name", "Name is required"},
		{"bad role", SignupRequest{Email: "ana@example.com", Password: "longenough", Name: "Ana", Role: "admin"}, "role", "Role must be HOMEOWNER or CONTRACTOR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			var ve *utils.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.message, ve.Message)
		})
	}
}

func TestSignupRequest_ValidateRoles(t *testing.T) {
	req := SignupRequest{Email: "ana@example.com", Password: "longenough", Name: "Ana"}
	require.NoError(t, req.Validate())
	assert.Equal(t, RoleHomeowner, req.Role)

	req.Role = "contractor"
	require.NoError(t, req.Validate())
	assert.Equal(t, RoleContractor, req.Role)
}
