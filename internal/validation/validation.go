// Package validation holds the storefront's field rules. Every check is a pure
// function of its input; rules that need the user directory are composed by
// the services package on top of these.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Verdict is the outcome of validating one field value.
type Verdict struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9]([a-zA-Z0-9.-]*[a-zA-Z0-9])?\.[a-zA-Z]{2,}$`)
	passwordChars = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]+$`)
	namePattern   = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	mobilePattern = regexp.MustCompile(`^(\+91)?[6-9]\d{9}$`)
)

const minPasswordLen = 8

type rule struct {
	tag      string
	messages map[string]string
}

var rules = map[Field]rule{
	FieldEmail: {
		tag: "required,store_email",
		messages: map[string]string{
			"required":    "Email is required",
			"store_email": "Invalid email format",
		},
	},
	FieldPassword: {
		tag: "required,store_password",
		messages: map[string]string{
			"required":       "Password is required",
			"store_password": "Password must be at least 8 characters and include uppercase, lowercase, and a number",
		},
	},
	FieldName: {
		tag: "required,min=2,max=50,person_name",
		messages: map[string]string{
			"required":    "Full name is required",
			"min":         "Name must be at least 2 characters",
			"max":         "Name must not exceed 50 characters",
			"person_name": "Name can only contain letters and spaces",
		},
	},
	FieldPhone: {
		tag: "omitempty,mobile",
		messages: map[string]string{
			"mobile": "Invalid Indian phone number",
		},
	},
	FieldAddress: {
		tag: "required,min=5",
		messages: map[string]string{
			"required": "Address is required",
			"min":      "Address must be at least 5 characters",
		},
	},
	FieldConfirmPassword: {
		tag: "required,eqcsfield",
		messages: map[string]string{
			"required":  "Confirm password is required",
			"eqcsfield": "Passwords do not match",
		},
	},
	FieldMessage: {
		tag: "required,min=10,max=500",
		messages: map[string]string{
			"required": "Message is required",
			"min":      "Message must be at least 10 characters",
			"max":      "Message must not exceed 500 characters",
		},
	},
	FieldPaymentMethod: {
		tag: "required,oneof=cod card upi netbanking",
		messages: map[string]string{
			"required": "Please select a payment method",
			"oneof":    "Unsupported payment method",
		},
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	must(v.RegisterValidation("store_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("store_password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	}))
	must(v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("mobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(stripSpaces(fl.Field().String()))
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Validator exposes the configured validator so request structs can use the
// storefront tags alongside the built-in ones.
func Validator() *validator.Validate { return validate }

// Check validates a raw input value. reference is only consulted by
// FieldConfirmPassword, where it is the password being confirmed.
func Check(field Field, value, reference string) Verdict {
	r, ok := rules[field]
	if !ok {
		return Verdict{Valid: true}
	}

	var err error
	if field == FieldConfirmPassword {
		err = validate.VarWithValue(value, reference, r.tag)
	} else {
		err = validate.Var(value, r.tag)
	}
	if err == nil {
		return Verdict{Valid: true}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := r.messages[verrs[0].Tag()]; ok {
			return Verdict{Message: msg}
		}
	}
	return Verdict{Message: "Invalid " + field.String()}
}

// IsStrongPassword reports whether pw has at least 8 characters drawn from
// letters, digits and @$!%*?&, including an upper case letter, a lower case
// letter and a digit.
func IsStrongPassword(pw string) bool {
	if len(pw) < minPasswordLen || !passwordChars.MatchString(pw) {
		return false
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
