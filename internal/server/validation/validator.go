// Package validation checks the shape of registration and login input before
// anything touches the account store or the password hasher. Rules run in a
// fixed order and the first violation wins.
package validation

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

const (
	MsgNameRequired       = "error_name_required"
	MsgNameLength         = "error_name_length"
	MsgEmailRequired      = "error_email_required"
	MsgEmailInvalid       = "error_email_invalid"
	MsgPasswordComplexity = "error_password_complexity"
	MsgPasswordLength     = "error_password_length"
	MsgPasswordRequired   = "error_password_required"
)

const (
	minNameLength     = 6
	maxNameLength     = 255
	minPasswordLength = 12
	maxPasswordLength = 1024
)

// RE2 has no lookahead, so each character class is its own rule.
var (
	hasUpper  = regexp.MustCompile(`[A-Z]`)
	hasLower  = regexp.MustCompile(`[a-z]`)
	hasDigit  = regexp.MustCompile(`[0-9]`)
	hasSymbol = regexp.MustCompile("[!@#$%^&*()_+=\\-\\[\\]{}|\\\\:;'<>,.?/~`]")
)

// RegisterInput is the raw registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput is the raw login request.
type LoginInput struct {
	Email    string
	Password string
}

type check struct {
	value interface{}
	rules []validation.Rule
}

// ValidateRegistration enforces name presence and length, email syntax and
// the password complexity policy.
func ValidateRegistration(in RegisterInput) error {
	return firstError(
		check{in.Name, []validation.Rule{
			validation.Required.Error(MsgNameRequired),
			validation.RuneLength(minNameLength, maxNameLength).Error(MsgNameLength),
		}},
		check{in.Email, []validation.Rule{
			validation.Required.Error(MsgEmailRequired),
			is.Email.Error(MsgEmailRequired),
		}},
		check{in.Password, []validation.Rule{
			validation.Required.Error(MsgPasswordComplexity),
			validation.RuneLength(minPasswordLength, 0).Error(MsgPasswordComplexity),
			validation.Match(hasUpper).Error(MsgPasswordComplexity),
			validation.Match(hasLower).Error(MsgPasswordComplexity),
			validation.Match(hasDigit).Error(MsgPasswordComplexity),
			validation.Match(hasSymbol).Error(MsgPasswordComplexity),
			validation.RuneLength(0, maxPasswordLength).Error(MsgPasswordLength),
		}},
	)
}

// ValidateLogin only checks email syntax and password presence; complexity
// is a registration concern.
func ValidateLogin(in LoginInput) error {
	return firstError(
		check{in.Email, []validation.Rule{
			validation.Required.Error(MsgEmailInvalid),
			is.Email.Error(MsgEmailInvalid),
		}},
		check{in.Password, []validation.Rule{
			validation.Required.Error(MsgPasswordRequired),
		}},
	)
}

func firstError(checks ...check) error {
	for _, c := range checks {
		if err := validation.Validate(c.value, c.rules...); err != nil {
			return common.NewValidationError(err.Error())
		}
	}
	return nil
}
