package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignupRequest_Validate(t *testing.T) {
	valid := SignupRequest{
		Email:           "alice@example.com",
		Password:        "secret1234",
		ConfirmPassword: "secret1234",
		Name:            "Alice",
		Role:            "customer",
	}

	t.Run("valid request", func(t *testing.T) {
		req := valid
		assert.NoError(t, req.Validate())
	})

	t.Run("invalid email", func(t *testing.T) {
		req := valid
		req.Email = "not-an-email"
		assert.Error(t, req.Validate())
	})

	t.Run("password too short", func(t *testing.T) {
		req := valid
		req.Password = "abc1"
		req.ConfirmPassword = "abc1"
		assert.ErrorIs(t, req.Validate(), errInvalidPassword)
	})

	t.Run("password without a number", func(t *testing.T) {
		req := valid
		req.Password = "secretpassword"
		req.ConfirmPassword = "secretpassword"
		assert.ErrorIs(t, req.Validate(), errInvalidPassword)
	})

	t.Run("password without a letter", func(t *testing.T) {
		req := valid
		req.Password = "1234567890"
		req.ConfirmPassword = "1234567890"
		assert.ErrorIs(t, req.Validate(), errInvalidPassword)
	})

	t.Run("confirm password mismatch", func(t *testing.T) {
		req := valid
		req.ConfirmPassword = "different1234"
		assert.ErrorIs(t, req.Validate(), errConfirmPasswordMismatch)
	})

	t.Run("unknown role", func(t *testing.T) {
		req := valid
		req.Role = "admin"
		assert.Error(t, req.Validate())
	})
}
