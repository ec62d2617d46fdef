package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type postgresAccountRepository struct {
	db *sql.DB
}

// NewPostgresAccountRepository stores accounts in the account table created by
// the migrations package.
func NewPostgresAccountRepository(db *sql.DB) Repository {
	return &postgresAccountRepository{db: db}
}

const selectAccount = `SELECT account_id, account_firstname, account_lastname, account_email, account_password, account_type, created_at
	FROM account`

func (repo *postgresAccountRepository) FindByID(ctx context.Context, id ID) (*Account, error) {
	return repo.findBy(ctx, selectAccount+` WHERE account_id = $1`, int(id))
}

func (repo *postgresAccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return repo.findBy(ctx, selectAccount+` WHERE account_email = $1`, email)
}

func (repo *postgresAccountRepository) findBy(ctx context.Context, query string, arg interface{}) (*Account, error) {
	var (
		a    Account
		role string
	)
	err := repo.db.QueryRowContext(ctx, query, arg).
		Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash, &role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if a.Role, err = ParseRole(role); err != nil {
		return nil, fmt.Errorf("account %d: %w", a.ID, err)
	}
	return &a, nil
}

func (repo *postgresAccountRepository) Store(ctx context.Context, acc *Account) error {
	query := `INSERT INTO account (account_firstname, account_lastname, account_email, account_password, account_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING account_id`

	err := repo.db.QueryRowContext(ctx, query,
		acc.FirstName, acc.LastName, acc.Email, acc.PasswordHash, acc.Role.String(), acc.CreatedAt).Scan(&acc.ID)
	if isUniqueViolation(err) {
		return ErrExistingEmail
	} else if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (repo *postgresAccountRepository) UpdateProfile(ctx context.Context, id ID, firstName, lastName, email string) (*Account, error) {
	query := `UPDATE account SET account_firstname = $1, account_lastname = $2, account_email = $3
		WHERE account_id = $4
		RETURNING account_id, account_firstname, account_lastname, account_email, account_password, account_type, created_at`

	var (
		a    Account
		role string
	)
	err := repo.db.QueryRowContext(ctx, query, firstName, lastName, email, int(id)).
		Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash, &role, &a.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNotFound
	case isUniqueViolation(err):
		return nil, ErrExistingEmail
	case err != nil:
		return nil, fmt.Errorf("db error: %w", err)
	}

	if a.Role, err = ParseRole(role); err != nil {
		return nil, fmt.Errorf("account %d: %w", a.ID, err)
	}
	return &a, nil
}

func (repo *postgresAccountRepository) UpdatePassword(ctx context.Context, id ID, hash string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE account SET account_password = $1 WHERE account_id = $2`, hash, int(id))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
