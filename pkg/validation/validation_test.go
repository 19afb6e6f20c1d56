package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type credentials struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Password string `json:"password" validate:"required,min=6,max=30"`
}

type speedRange struct {
	MinSpeed *int `form:"minSpeed" validate:"omitempty,gte=0"`
	MaxSpeed *int `form:"maxSpeed" validate:"omitempty,gte=0"`
}

func TestValidateStruct_Valid(t *testing.T) {
	assert.NoError(t, ValidateStruct(&credentials{Username: "ash", Password: "pikachu"}))
}

func TestValidateStruct_FieldMessages(t *testing.T) {
	err := ValidateStruct(&credentials{Username: "al", Password: ""})
	require.Error(t, err)

	valErr, ok := err.(*ValidationError)
	require.True(t, ok)

	msg, found := valErr.GetFieldError("username")
	require.True(t, found)
	assert.Equal(t, "username must be at least 3 characters long", msg)

	msg, found = valErr.GetFieldError("password")
	require.True(t, found)
	assert.Equal(t, "password is required", msg)
	assert.True(t, valErr.HasErrors())
}

func TestValidateStruct_FormTagNames(t *testing.T) {
	neg := -1
	err := ValidateStruct(&speedRange{MinSpeed: &neg})
	require.Error(t, err)

	valErr := err.(*ValidationError)
	msg, found := valErr.GetFieldError("minSpeed")
	require.True(t, found)
	assert.Equal(t, "minSpeed must be greater than or equal to 0", msg)
}

func TestValidationError_AddError(t *testing.T) {
	v := &ValidationError{}
	assert.False(t, v.HasErrors())

	v.AddError("file", "file is required")
	assert.True(t, v.HasErrors())
	assert.Equal(t, "file: file is required", v.Error())
}
