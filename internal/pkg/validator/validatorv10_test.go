package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registration struct {
	FullName     string `validate:"required,notblank"`
	Email        string `validate:"required,notblank"`
	FieldOfStudy string
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	t.Run("valid without optional field", func(t *testing.T) {
		assert.NoError(t, v.Validate(registration{FullName: "Ada Lovelace", Email: "ada@example.com"}))
	})

	t.Run("missing fields", func(t *testing.T) {
		err := v.Validate(registration{})

		var verr V10ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "FullName is a required field", verr.Values()["full_name"])
		assert.Equal(t, "Email is a required field", verr.Values()["email"])
		assert.NotContains(t, verr.Values(), "field_of_study")
	})

	t.Run("blank fields", func(t *testing.T) {
		err := v.Validate(registration{FullName: "   ", Email: "ada@example.com"})

		var verr V10ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "FullName must not be blank", verr.Values()["full_name"])
	})
}

func TestV10ValidationError_Error(t *testing.T) {
	assert.Equal(t, "validation error", V10ValidationError{}.Error())
	assert.JSONEq(t, `{"email":"Email is a required field"}`, V10ValidationError{"email": "Email is a required field"}.Error())
}
