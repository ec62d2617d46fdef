package auth

import (
	"errors"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type ID int

type Account struct {
	ID        ID
	FirstName string
	LastName  string
	Email     string
	// PasswordHash is the bcrypt hash; the plaintext is never stored.
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

var (
	ErrNotFound           = errors.New("account not found")
	ErrExistingEmail      = errors.New("email in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidID          = errors.New("invalid account id")
)

// Claim projects the account into the identity carried by a token.
func (a *Account) Claim() Claim {
	return Claim{
		ID:        a.ID,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
		Role:      a.Role,
	}
}

func ParseID(s string) (ID, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return ID(id), nil
}

func (id ID) String() string {
	return strconv.Itoa(int(id))
}

func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", errors.New("error hashing password")
	}
	return string(hash), nil
}

func hashMatchesPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
