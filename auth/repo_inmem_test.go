package auth

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AccountRepositorySuite struct {
	suite.Suite
	repo Repository
	ctx  context.Context
}

func (s *AccountRepositorySuite) SetupTest() {
	s.repo = NewAccountRepository()
	s.ctx = context.Background()
}

func (s *AccountRepositorySuite) TestStoreAssignsSequentialIDs() {
	a := &Account{Email: "a@x.com"}
	b := &Account{Email: "b@x.com"}

	s.Require().NoError(s.repo.Store(s.ctx, a))
	s.Require().NoError(s.repo.Store(s.ctx, b))

	s.Equal(ID(1), a.ID)
	s.Equal(ID(2), b.ID)
}

func (s *AccountRepositorySuite) TestEmailIsUnique() {
	s.Require().NoError(s.repo.Store(s.ctx, &Account{Email: "a@x.com"}))

	s.Equal(ErrExistingEmail, s.repo.Store(s.ctx, &Account{Email: "a@x.com"}))
}

func (s *AccountRepositorySuite) TestEmailMatchIsCaseSensitive() {
	s.Require().NoError(s.repo.Store(s.ctx, &Account{Email: "a@x.com"}))

	s.NoError(s.repo.Store(s.ctx, &Account{Email: "A@x.com"}))
}

func (s *AccountRepositorySuite) TestReturnedAccountsAreCopies() {
	s.Require().NoError(s.repo.Store(s.ctx, &Account{FirstName: "Ada", Email: "a@x.com"}))

	acc, err := s.repo.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	acc.FirstName = "Changed"

	again, err := s.repo.FindByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal("Ada", again.FirstName)
}

func (s *AccountRepositorySuite) TestUpdateProfileKeepsOwnEmail() {
	s.Require().NoError(s.repo.Store(s.ctx, &Account{FirstName: "Ada", Email: "a@x.com"}))
	s.Require().NoError(s.repo.Store(s.ctx, &Account{FirstName: "Bob", Email: "b@x.com"}))

	acc, err := s.repo.UpdateProfile(s.ctx, 1, "Augusta", "King", "a@x.com")
	s.NoError(err)
	s.Equal("Augusta", acc.FirstName)

	_, err = s.repo.UpdateProfile(s.ctx, 1, "Augusta", "King", "b@x.com")
	s.Equal(ErrExistingEmail, err)

	_, err = s.repo.UpdateProfile(s.ctx, 5, "X", "Y", "c@x.com")
	s.Equal(ErrNotFound, err)
}

func (s *AccountRepositorySuite) TestUpdatePassword() {
	s.Require().NoError(s.repo.Store(s.ctx, &Account{Email: "a@x.com", PasswordHash: "old"}))

	s.NoError(s.repo.UpdatePassword(s.ctx, 1, "new"))
	acc, err := s.repo.FindByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("new", acc.PasswordHash)

	s.Equal(ErrNotFound, s.repo.UpdatePassword(s.ctx, 2, "new"))
}

func TestAccountRepositorySuite(t *testing.T) {
	suite.Run(t, new(AccountRepositorySuite))
}

func TestAccountRepository_ConcurrentRegistrationsOfOneEmail(t *testing.T) {
	repo := NewAccountRepository()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		stored  int
		clashes int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Store(context.Background(), &Account{Email: "race@x.com"})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				stored++
			} else {
				assert.Equal(t, ErrExistingEmail, err)
				clashes++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, stored)
	assert.Equal(t, 19, clashes)
}
