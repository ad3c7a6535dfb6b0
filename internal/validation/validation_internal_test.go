package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestMustRegisterPanicsOnInvalidTag(t *testing.T) {
	v := validator.New()
	assert.Panics(t, func() {
		mustRegister(v, "", func(validator.FieldLevel) bool { return true })
	})
	assert.NotPanics(t, func() {
		mustRegister(v, "always", func(validator.FieldLevel) bool { return true })
	})
}
