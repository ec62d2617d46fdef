package auth

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/jimiolaniyan/gomotors/validation"
)

// Form fields shared by the account views.
const (
	fieldFirstName = "account_firstname"
	fieldLastName  = "account_lastname"
	fieldEmail     = "account_email"
	fieldPassword  = "account_password"
	fieldAccountID = "account_id"
)

const (
	msgFirstName       = "First name is required."
	msgLastName        = "Last name is required."
	msgEmail           = "A valid email address is required."
	msgUpdateEmail     = "A valid email is required."
	msgEmailRegistered = "That email address is already registered."
	msgEmailInUse      = "That email address is already in use."
	msgWeakPassword    = "Password must be at least 8 characters and include upper, lower, number and special character."
	msgPassword        = "Password is required."
	msgAccountID       = "Account id is required."
)

// emailAvailable passes when no account uses the email. A malformed address is
// left to the syntax rule.
func emailAvailable(accounts Repository) validation.Check {
	return func(ctx context.Context, email string, _ url.Values) (bool, error) {
		if !validation.IsEmail(email) {
			return true, nil
		}
		_, err := accounts.FindByEmail(ctx, email)
		if errors.Is(err, ErrNotFound) {
			return true, nil
		}
		return false, err
	}
}

// emailUnchangedOrAvailable passes when the email still belongs to the account
// being updated or to nobody at all.
func emailUnchangedOrAvailable(accounts Repository) validation.Check {
	return func(ctx context.Context, email string, form url.Values) (bool, error) {
		if !validation.IsEmail(email) {
			return true, nil
		}
		acc, err := accounts.FindByEmail(ctx, email)
		if errors.Is(err, ErrNotFound) {
			return true, nil
		} else if err != nil {
			return false, err
		}
		id, err := strconv.Atoi(form.Get(fieldAccountID))
		return err == nil && ID(id) == acc.ID, nil
	}
}

func RegistrationValidator(accounts Repository) *validation.Validator {
	return validation.New("register",
		validation.Field(fieldFirstName, validation.Present(), msgFirstName),
		validation.Field(fieldLastName, validation.Present(), msgLastName),
		validation.Field(fieldEmail, validation.Email(), msgEmail),
		validation.Field(fieldEmail, emailAvailable(accounts), msgEmailRegistered),
		validation.Field(fieldPassword, validation.StrongPassword(validation.DefaultPasswordPolicy), msgWeakPassword),
	).Trimming(fieldFirstName, fieldLastName, fieldEmail, fieldPassword)
}

func LoginValidator() *validation.Validator {
	return validation.New("login",
		validation.Field(fieldEmail, validation.Email(), msgEmail),
		validation.Field(fieldPassword, validation.Present(), msgPassword),
	).Trimming(fieldEmail, fieldPassword)
}

func UpdateAccountValidator(accounts Repository) *validation.Validator {
	return validation.New("update-account",
		validation.Field(fieldFirstName, validation.Present(), msgFirstName),
		validation.Field(fieldLastName, validation.Present(), msgLastName),
		validation.Field(fieldEmail, validation.Email(), msgUpdateEmail),
		validation.Field(fieldEmail, emailUnchangedOrAvailable(accounts), msgEmailInUse),
		validation.Field(fieldAccountID, validation.Present(), msgAccountID),
	).Trimming(fieldFirstName, fieldLastName, fieldEmail, fieldAccountID)
}

func UpdatePasswordValidator() *validation.Validator {
	return validation.New("update-password",
		validation.Field(fieldPassword, validation.StrongPassword(validation.DefaultPasswordPolicy), msgWeakPassword),
		validation.Field(fieldAccountID, validation.Present(), msgAccountID),
	).Trimming(fieldAccountID, fieldPassword)
}
