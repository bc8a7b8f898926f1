// Package validation holds the pure form predicates shared by the HTTP layer and the domain services.
package validation

import (
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	PhoneLength   = 10
	PincodeLength = 6
)

// IsPhone reports whether s is exactly ten ASCII digits.
func IsPhone(s string) bool {
	return isDigits(s, PhoneLength)
}

// IsPincode reports whether s is exactly six ASCII digits.
func IsPincode(s string) bool {
	return isDigits(s, PincodeLength)
}

// Required reports whether s carries anything other than whitespace.
func Required(s string) bool {
	return strings.TrimSpace(s) != ""
}

// MissingFields returns the names of blank fields sorted alphabetically.
func MissingFields(fields map[string]string) []string {
	missing := make([]string, 0, len(fields))
	for name, value := range fields {
		if !Required(value) {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// AcceptDigits filters a keystroke: next is accepted when it is digits only and at most maxLen long,
// otherwise current is kept.
func AcceptDigits(current, next string, maxLen int) string {
	if len(next) > maxLen {
		return current
	}
	for i := 0; i < len(next); i++ {
		if next[i] < '0' || next[i] > '9' {
			return current
		}
	}
	return next
}

func AcceptPhoneInput(current, next string) string {
	return AcceptDigits(current, next, PhoneLength)
}

func AcceptPincodeInput(current, next string) string {
	return AcceptDigits(current, next, PincodeLength)
}

// RegisterTags installs the phone, pincode and notblank struct tags.
func RegisterTags(v *validator.Validate) error {
	tags := map[string]validator.Func{
		"phone":    stringRule(IsPhone),
		"pincode":  stringRule(IsPincode),
		"notblank": stringRule(Required),
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

func stringRule(rule func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				return true
			}
			field = field.Elem()
		}
		if field.Kind() != reflect.String {
			return false
		}
		return rule(field.String())
	}
}

func isDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
