package validation

import (
	"fmt"
	"strings"
)

// Field identifies which rule set a raw input value is checked against.
type Field int

const (
	FieldEmail Field = iota + 1
	FieldPassword
	FieldName
	FieldPhone
	FieldAddress
	FieldConfirmPassword
	FieldMessage
	FieldPaymentMethod
)

var fieldNames = map[Field]string{
	FieldEmail:           "email",
	FieldPassword:        "password",
	FieldName:            "name",
	FieldPhone:           "phone",
	FieldAddress:         "address",
	FieldConfirmPassword: "confirmPassword",
	FieldMessage:         "message",
	FieldPaymentMethod:   "paymentMethod",
}

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField resolves a field name as used by forms and the HTTP API.
// Matching ignores case, dashes and underscores, so "confirm-password" and
// "confirm_password" both resolve to FieldConfirmPassword.
func ParseField(name string) (Field, error) {
	norm := strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(name))
	for f, n := range fieldNames {
		if strings.ToLower(n) == norm {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}
