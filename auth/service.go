package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type service struct {
	accounts Repository
	cost     int
}

// NewService returns the account service. cost is the bcrypt work factor.
func NewService(accounts Repository, cost int) Service {
	return &service{accounts: accounts, cost: cost}
}

func (svc *service) RegisterAccount(ctx context.Context, r registerAccountRequest) (ID, error) {
	hash, err := hashPassword(r.Password, svc.cost)
	if err != nil {
		return 0, err
	}

	acc := &Account{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		PasswordHash: hash,
		Role:         Customer,
		CreatedAt:    time.Now().UTC(),
	}

	if err := svc.accounts.Store(ctx, acc); err != nil {
		if errors.Is(err, ErrExistingEmail) {
			return 0, ErrExistingEmail
		}
		return 0, fmt.Errorf("error saving account: %w", err)
	}

	return acc.ID, nil
}

func (svc *service) ValidateCredentials(ctx context.Context, r validateCredentialsRequest) (*Account, error) {
	acc, err := svc.accounts.FindByEmail(ctx, r.Email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}

	if !hashMatchesPassword(acc.PasswordHash, r.Password) {
		return nil, ErrInvalidCredentials
	}

	return acc, nil
}

func (svc *service) GetAccount(ctx context.Context, id ID) (*Account, error) {
	return svc.accounts.FindByID(ctx, id)
}

func (svc *service) UpdateAccount(ctx context.Context, r updateAccountRequest) (*Account, error) {
	return svc.accounts.UpdateProfile(ctx, r.ID, r.FirstName, r.LastName, r.Email)
}

func (svc *service) UpdatePassword(ctx context.Context, r updatePasswordRequest) error {
	hash, err := hashPassword(r.Password, svc.cost)
	if err != nil {
		return err
	}
	return svc.accounts.UpdatePassword(ctx, r.ID, hash)
}
