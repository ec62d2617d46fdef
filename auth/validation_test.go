package auth

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimiolaniyan/gomotors/validation"
)

func seededAccounts(t *testing.T) Repository {
	t.Helper()
	accounts := NewAccountRepository()
	for _, email := range []string{"dup@x.com", "other@x.com"} {
		require.NoError(t, accounts.Store(context.Background(), &Account{FirstName: "F", LastName: "L", Email: email}))
	}
	return accounts
}

func registration(first, last, email, password string) url.Values {
	return url.Values{
		fieldFirstName: {first},
		fieldLastName:  {last},
		fieldEmail:     {email},
		fieldPassword:  {password},
	}
}

func TestRegistrationValidator(t *testing.T) {
	v := RegistrationValidator(seededAccounts(t))

	tests := []struct {
		name string
		form url.Values
		want []string
	}{
		{name: "valid", form: registration("Ada", "Lovelace", "a@x.com", "Str0ng!pass")},
		{name: "weak password", form: registration("Ada", "Lovelace", "a@x.com", "Weak1"), want: []string{msgWeakPassword}},
		{name: "email already registered", form: registration("Ada", "Lovelace", "dup@x.com", "Str0ng!pass"), want: []string{msgEmailRegistered}},
		{name: "trailing space is not a symbol", form: registration("Ada", "Lovelace", "a@x.com", "Str0ngpass1 "), want: []string{msgWeakPassword}},
		{name: "bad email is not looked up", form: registration("Ada", "Lovelace", "nope", "Str0ng!pass"), want: []string{msgEmail}},
		{
			name: "every failure is collected",
			form: registration("  ", "", "dup@x.com", "Weak1"),
			want: []string{msgFirstName, msgLastName, msgEmailRegistered, msgWeakPassword},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v.Sanitize(tt.form)
			out, err := v.Validate(context.Background(), tt.form)

			require.NoError(t, err)
			assert.Equal(t, tt.want, nilIfEmpty(out.Messages()))
		})
	}
}

func TestRegistrationValidator_StoreFailure(t *testing.T) {
	down := errors.New("connection refused")
	v := RegistrationValidator(failingRepository{err: down})

	_, err := v.Validate(context.Background(), registration("Ada", "Lovelace", "a@x.com", "Str0ng!pass"))
	assert.ErrorIs(t, err, down)
}

func TestLoginValidator(t *testing.T) {
	out, err := LoginValidator().Validate(context.Background(), url.Values{fieldEmail: {"bad"}, fieldPassword: {""}})

	require.NoError(t, err)
	assert.Equal(t, []string{msgEmail, msgPassword}, out.Messages())
}

func TestLoginValidator_BlankPassword(t *testing.T) {
	v := LoginValidator()
	form := url.Values{fieldEmail: {"ada@x.com"}, fieldPassword: {"   "}}
	v.Sanitize(form)

	out, err := v.Validate(context.Background(), form)

	require.NoError(t, err)
	assert.Equal(t, []string{msgPassword}, out.Messages())
}

func TestUpdateAccountValidator_Email(t *testing.T) {
	v := UpdateAccountValidator(seededAccounts(t))

	update := func(id, email string) url.Values {
		return url.Values{
			fieldFirstName: {"F"},
			fieldLastName:  {"L"},
			fieldEmail:     {email},
			fieldAccountID: {id},
		}
	}

	tests := []struct {
		name string
		form url.Values
		want []string
	}{
		{name: "unchanged", form: update("1", "dup@x.com")},
		{name: "unused", form: update("1", "fresh@x.com")},
		{name: "taken by another account", form: update("1", "other@x.com"), want: []string{msgEmailInUse}},
		{name: "syntax", form: update("1", "x@"), want: []string{msgUpdateEmail}},
		{name: "missing id", form: update("", "other@x.com"), want: []string{msgEmailInUse, msgAccountID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := v.Validate(context.Background(), tt.form)

			require.NoError(t, err)
			assert.Equal(t, tt.want, nilIfEmpty(out.Messages()))
		})
	}
}

func TestUpdatePasswordValidator(t *testing.T) {
	out, err := UpdatePasswordValidator().Validate(context.Background(), url.Values{fieldPassword: {"Weak1"}})

	require.NoError(t, err)
	assert.Equal(t, validation.Outcome{
		{Field: fieldPassword, Message: msgWeakPassword},
		{Field: fieldAccountID, Message: msgAccountID},
	}, out)
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
