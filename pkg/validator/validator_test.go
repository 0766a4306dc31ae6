package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string `json:"full_name" validate:"required,min=2"`
	Gender string `json:"gender" validate:"required,oneof=female male other"`
	Age    int    `json:"age" validate:"gte=0,lte=150"`
	Flag   *bool  `json:"flag" validate:"required"`
}

func TestFormatValidationErrors_UsesJSONNames(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&sample{Name: "A", Gender: "unknown", Age: 200})
	require.Error(t, err)

	errs := v.FormatValidationErrors(err)
	assert.Equal(t, "full_name must be at least 2 characters", errs["full_name"])
	assert.Equal(t, "gender must be one of: female male other", errs["gender"])
	assert.Equal(t, "age must be less than or equal to 150", errs["age"])
	assert.Equal(t, "flag is required", errs["flag"])
}

func TestValidate_OK(t *testing.T) {
	v := NewValidator()
	no := false

	assert.NoError(t, v.Validate(&sample{Name: "Ana", Gender: "female", Age: 30, Flag: &no}))
}
