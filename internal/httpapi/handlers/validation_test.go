package handlers

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8"`
	Count    int    `json:"count" validate:"max=3"`
	Code     string `json:"code" validate:"len=6"`
	Ignored  string `json:"-" validate:"omitempty,url"`
}

func TestFieldMessage(t *testing.T) {
	v := validator.New()
	err := v.Struct(sample{Email: "x", Password: "short", Count: 9, Code: "1"})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	got := map[string]string{}
	for _, fe := range verrs {
		got[fe.Field()] = fieldMessage(fe)
	}
	assert.Equal(t, map[string]string{
		"Email":    "Email must be a valid email address",
		"Password": "Password must be at least 8 characters",
		"Count":    "Count must be at most 3",
		"Code":     "Code must be exactly 6 characters",
	}, got)
}

func TestSixDigitCode(t *testing.T) {
	for range 50 {
		code, err := sixDigitCode()
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}
