package validation

import (
	"strings"
	"unicode"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

// Email only checks the local@domain shape; empty values are accepted.
func Email(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	at := strings.LastIndex(value, "@")
	if at <= 0 || at == len(value)-1 || !strings.Contains(value[at:], ".") {
		v[field] = "invalid_email"
	}
}

// Phone accepts 8 to 15 digits once spaces, dots, dashes and a leading + are removed.
func Phone(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		v[field] = "required"
		return
	}
	digits := PhoneDigits(value)
	if digits == "" || len(digits) < 8 || len(digits) > 15 {
		v[field] = "invalid_phone"
	}
}

// PhoneDigits strips the separators tolerated by Phone. It returns "" when any
// other character is present.
func PhoneDigits(value string) string {
	value = strings.TrimPrefix(strings.TrimSpace(value), "+")
	var b strings.Builder
	for _, r := range value {
		switch {
		case r == ' ' || r == '.' || r == '-':
			continue
		case unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			return ""
		}
	}
	return b.String()
}
