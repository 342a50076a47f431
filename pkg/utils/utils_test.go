package utils

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"0551234567", true},
		{"0661234567", true},
		{"0771234567", true},
		{"0451234567", false},
		{"055123456", false},
		{"05512345678", false},
		{"+213551234567", false},
		{"05512a4567", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidPhone(tt.phone))
		})
	}
}

func TestRegisterPhoneValidation(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterPhoneValidation(v))

	type input struct {
		Phone string `validate:"required,dzphone"`
	}

	assert.NoError(t, v.Struct(input{Phone: "0661234567"}))
	assert.Error(t, v.Struct(input{Phone: "0123"}))
}

func TestJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT("42", "admin")
	require.NoError(t, err)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	t.Setenv("JWT_SECRET", "another-secret")
	_, err = ParseJWT(token)
	assert.Error(t, err)
}
