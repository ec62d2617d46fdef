package validation

import (
	"context"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$")

var digitsRegexp = regexp.MustCompile(`^\d+$`)

// Field builds a Rule.
func Field(field string, check Check, message string) Rule {
	return Rule{Field: field, Check: check, Message: message}
}

func plain(pred func(string) bool) Check {
	return func(_ context.Context, value string, _ url.Values) (bool, error) {
		return pred(value), nil
	}
}

// Present passes when the value is not empty.
func Present() Check {
	return plain(func(v string) bool { return v != "" })
}

// NotBlank passes when the value has something other than whitespace.
func NotBlank() Check {
	return plain(func(v string) bool { return strings.TrimSpace(v) != "" })
}

// Email passes for a syntactically valid address with a dotted domain.
func Email() Check {
	return plain(IsEmail)
}

func IsEmail(v string) bool {
	return len(v) <= 254 && emailRegexp.MatchString(v)
}

// Matches passes when re matches the whole value.
func Matches(re *regexp.Regexp) Check {
	return plain(re.MatchString)
}

// PositiveNumber passes for a finite decimal number greater than zero and
// below limit.
func PositiveNumber(limit float64) Check {
	return plain(func(v string) bool {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
		return f > 0 && f < limit
	})
}

// WholeNumber passes for an integer from zero to max written with digits
// only.
func WholeNumber(max int64) Check {
	return plain(func(v string) bool {
		v = strings.TrimSpace(v)
		if !digitsRegexp.MatchString(v) {
			return false
		}
		n, err := strconv.ParseInt(v, 10, 64)
		return err == nil && n <= max
	})
}

// PasswordPolicy sets the minimum composition of a strong password.
type PasswordPolicy struct {
	MinLength  int
	MinLower   int
	MinUpper   int
	MinDigits  int
	MinSymbols int
}

// DefaultPasswordPolicy requires 8 characters with at least one lowercase
// letter, one uppercase letter, one digit and one symbol.
var DefaultPasswordPolicy = PasswordPolicy{MinLength: 8, MinLower: 1, MinUpper: 1, MinDigits: 1, MinSymbols: 1}

func (p PasswordPolicy) Satisfied(password string) bool {
	if utf8.RuneCountInString(password) < p.MinLength {
		return false
	}

	var lower, upper, digits, symbols int
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower++
		case unicode.IsUpper(r):
			upper++
		case unicode.IsDigit(r):
			digits++
		case unicode.IsPunct(r), unicode.IsSymbol(r), unicode.IsSpace(r):
			symbols++
		}
	}
	return lower >= p.MinLower && upper >= p.MinUpper && digits >= p.MinDigits && symbols >= p.MinSymbols
}

// StrongPassword passes when the value satisfies p.
func StrongPassword(p PasswordPolicy) Check {
	return plain(p.Satisfied)
}
