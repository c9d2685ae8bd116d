package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"expertbook-backend/internal/models"
	"github.com/go-playground/validator/v10"
)

// emailPart excludes '@' and every character the browser treats as
// whitespace. RE2's \s only covers ASCII, so the set is spelled out.
const emailPart = `[^\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}@]+`

// emailPattern is intentionally loose: something@something.something with no
// whitespace. It must stay in sync with what the booking widget accepts.
var emailPattern = regexp.MustCompile(`^` + emailPart + `@` + emailPart + `\.` + emailPart + `$`)

var eventNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// IsEmail reports whether s (trimmed) looks like an e-mail address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// HasMinTrimmed reports whether s has at least n characters after trimming.
func HasMinTrimmed(s string, n int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= n
}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterValidation("emaillite", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return IsEmail(value)
	})

	v.RegisterValidation("trimmin", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return HasMinTrimmed(value, n)
	})

	v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, found := models.CategoryByKey(value)
		return found
	})

	v.RegisterValidation("eventname", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return eventNamePattern.MatchString(value)
	})

	return &Validator{v: v}
}

func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	if err == nil {
		return nil
	}
	if ve, ok := err.(validator.ValidationErrors); ok {
		return ve
	}
	return nil
}
