package auth

import (
	"context"
	"sync"
)

type accountRepository struct {
	mu       sync.RWMutex
	accounts map[ID]*Account
	lastID   ID
}

func NewAccountRepository() Repository {
	return &accountRepository{accounts: map[ID]*Account{}}
}

func (repo *accountRepository) Store(_ context.Context, acc *Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.emailTaken(acc.Email, 0) {
		return ErrExistingEmail
	}

	repo.lastID++
	acc.ID = repo.lastID
	stored := *acc
	repo.accounts[acc.ID] = &stored
	return nil
}

func (repo *accountRepository) FindByID(_ context.Context, id ID) (*Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if a, ok := repo.accounts[id]; ok {
		found := *a
		return &found, nil
	}
	return nil, ErrNotFound
}

func (repo *accountRepository) FindByEmail(_ context.Context, email string) (*Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, v := range repo.accounts {
		if v.Email == email {
			found := *v
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (repo *accountRepository) UpdateProfile(_ context.Context, id ID, firstName, lastName, email string) (*Account, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	a, ok := repo.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if repo.emailTaken(email, id) {
		return nil, ErrExistingEmail
	}

	a.FirstName, a.LastName, a.Email = firstName, lastName, email
	updated := *a
	return &updated, nil
}

func (repo *accountRepository) UpdatePassword(_ context.Context, id ID, hash string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	a, ok := repo.accounts[id]
	if !ok {
		return ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

// emailTaken must be called with mu held.
func (repo *accountRepository) emailTaken(email string, except ID) bool {
	for id, v := range repo.accounts {
		if id != except && v.Email == email {
			return true
		}
	}
	return false
}
