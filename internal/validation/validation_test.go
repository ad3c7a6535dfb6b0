package validation_test

import (
	"errors"
	"testing"

	"storefront/internal/validation"

	"github.com/stretchr/testify/assert"
)

type contact struct {
	PinCode string `json:"pinCode" validate:"required,pincode"`
	Phone   string `json:"phone" validate:"required,phone"`
}

func TestCustomRules(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Struct(contact{PinCode: "54000", Phone: "+923001234567"}))
	assert.NoError(t, v.Struct(contact{PinCode: "SW1A 1AA", Phone: "03001234567"}))

	err := v.Struct(contact{PinCode: "12", Phone: "12345"})
	assert.Error(t, err)

	msgs := validation.Messages(err)
	assert.Contains(t, msgs, "pinCode")
	assert.Contains(t, msgs, "phone")
}

func TestMessages_NonValidationError(t *testing.T) {
	msgs := validation.Messages(errors.New("bad body"))
	assert.Equal(t, "bad body", msgs["_"])
}
