package auth

import "context"

type Service interface {
	RegisterAccount(ctx context.Context, r registerAccountRequest) (ID, error)
	ValidateCredentials(ctx context.Context, r validateCredentialsRequest) (*Account, error)
	GetAccount(ctx context.Context, id ID) (*Account, error)
	UpdateAccount(ctx context.Context, r updateAccountRequest) (*Account, error)
	UpdatePassword(ctx context.Context, r updatePasswordRequest) error
}

// Repository persists accounts. Implementations enforce email uniqueness and
// report a clash as ErrExistingEmail.
type Repository interface {
	FindByID(ctx context.Context, id ID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Store(ctx context.Context, acc *Account) error
	UpdateProfile(ctx context.Context, id ID, firstName, lastName, email string) (*Account, error)
	UpdatePassword(ctx context.Context, id ID, hash string) error
}

type registerAccountRequest struct {
	FirstName, LastName, Email, Password string
}

type validateCredentialsRequest struct {
	Email, Password string
}

type updateAccountRequest struct {
	ID                         ID
	FirstName, LastName, Email string
}

type updatePasswordRequest struct {
	ID       ID
	Password string
}
