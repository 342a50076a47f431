package rest

import (
	"testing"

	"codMarket/domain"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidator_PhoneTag(t *testing.T) {
	var v *validator.Validate
	require.NotPanics(t, func() { v = newValidator() })

	valid := GuestInfoRequest{Name: "Amina", Phone: "0551234567", Address: "1 rue", Wilaya: "Oran", Commune: "Bir El Djir"}
	assert.NoError(t, v.Struct(&valid))

	invalid := valid
	invalid.Phone = "0451234567"
	err := v.Struct(&invalid)
	require.Error(t, err)

	var verr *domain.ValidationError
	require.ErrorAs(t, validationError(err), &verr)
	require.Len(t, verr.Messages, 1)
	assert.Contains(t, verr.Messages[0], "phone")
}
