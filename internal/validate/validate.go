package validate

import (
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	rePhone = regexp.MustCompile(`^[0-9+() .\-]{7,20}$`)
)

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		_ = v.RegisterValidation("strongpw", func(fl validator.FieldLevel) bool {
			return Password(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return rePhone.MatchString(strings.TrimSpace(fl.Field().String()))
		})
	})
	return v
}

// Struct validates s by its `validate` tags and returns a message for the
// first failing field, or "" when s is valid.
func Struct(s any) string {
	err := instance().Struct(s)
	if err == nil {
		return ""
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "Please check the form and try again."
	}
	return message(verrs[0])
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required."
	case "email":
		return "Please enter a valid email address."
	case "max":
		return field + " is too long."
	case "min":
		return field + " is too short."
	case "strongpw":
		return "Password must be 8-20 characters with upper and lower case letters, a digit and a symbol."
	case "phone":
		return "Please enter a valid phone number."
	}
	return field + " is invalid."
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// maxQueryRunes caps a name filter; longer input is cut, not rejected.
const maxQueryRunes = 50

// Q validates a name filter: trims, caps the length in runes and rejects
// invalid UTF-8 or control characters. Punctuation is allowed.
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !utf8.ValidString(s) {
		return "", false
	}
	if r := []rune(s); len(r) > maxQueryRunes {
		s = strings.TrimSpace(string(r[:maxQueryRunes]))
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", false
		}
	}
	return s, true
}

// ID validates a simple resource identifier (product/category ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Color validates a #RRGGBB swatch.
func Color(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return strings.ToUpper(s), reColor.MatchString(s)
}

// Price parses a free-text, non-negative amount.
func Price(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// Stock parses a free-text, non-negative whole number.
func Stock(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Password enforces the length window and character classes used at sign-up
// and login.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 20 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
