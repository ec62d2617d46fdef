package motors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type postgresInventoryRepository struct {
	db *sql.DB
}

// NewPostgresInventoryRepository reads and writes the classification and
// inventory tables created by the migrations package.
func NewPostgresInventoryRepository(db *sql.DB) Repository {
	return &postgresInventoryRepository{db: db}
}

const selectVehicle = `SELECT i.inv_id, i.inv_make, i.inv_model, i.inv_year, i.inv_description, i.inv_image,
	i.inv_thumbnail, i.inv_price, i.inv_miles, i.inv_color, c.classification_id, c.classification_name
	FROM inventory AS i
	JOIN classification AS c ON i.classification_id = c.classification_id`

func (repo *postgresInventoryRepository) Classifications(ctx context.Context) ([]Classification, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT classification_id, classification_name FROM classification ORDER BY classification_name`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []Classification{}
	for rows.Next() {
		var c Classification
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (repo *postgresInventoryRepository) ClassificationByID(ctx context.Context, id int) (*Classification, error) {
	var c Classification
	err := repo.db.QueryRowContext(ctx,
		`SELECT classification_id, classification_name FROM classification WHERE classification_id = $1`, id).
		Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &c, nil
}

func (repo *postgresInventoryRepository) AddClassification(ctx context.Context, name string) (*Classification, error) {
	var c Classification
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO classification (classification_name) VALUES ($1) RETURNING classification_id, classification_name`, name).
		Scan(&c.ID, &c.Name)
	if pgCode(err) == uniqueViolation {
		return nil, ErrExistingClassification
	} else if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &c, nil
}

func (repo *postgresInventoryRepository) AllVehicles(ctx context.Context) ([]Vehicle, error) {
	return repo.queryVehicles(ctx, selectVehicle+` ORDER BY i.inv_make, i.inv_model, i.inv_id`)
}

func (repo *postgresInventoryRepository) VehiclesByClassification(ctx context.Context, classificationID int) ([]Vehicle, error) {
	return repo.queryVehicles(ctx, selectVehicle+` WHERE i.classification_id = $1 ORDER BY i.inv_make, i.inv_model, i.inv_id`, classificationID)
}

func (repo *postgresInventoryRepository) Search(ctx context.Context, term string) ([]Vehicle, error) {
	query := selectVehicle + ` WHERE i.inv_make ILIKE $1
		OR i.inv_model ILIKE $1
		OR i.inv_description ILIKE $1
		OR c.classification_name ILIKE $1
		ORDER BY i.inv_make, i.inv_model, i.inv_id`
	return repo.queryVehicles(ctx, query, "%"+escapeLike(term)+"%")
}

func (repo *postgresInventoryRepository) VehicleByID(ctx context.Context, id int) (*Vehicle, error) {
	v, err := scanVehicle(repo.db.QueryRowContext(ctx, selectVehicle+` WHERE i.inv_id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &v, nil
}

func (repo *postgresInventoryRepository) AddVehicle(ctx context.Context, v *Vehicle) error {
	query := `INSERT INTO inventory (inv_make, inv_model, inv_year, inv_description, inv_image,
		inv_thumbnail, inv_price, inv_miles, inv_color, classification_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING inv_id`

	err := repo.db.QueryRowContext(ctx, query,
		v.Make, v.Model, v.Year, v.Description, v.Image,
		v.Thumbnail, v.Price, v.Miles, v.Color, v.ClassificationID).Scan(&v.ID)
	if pgCode(err) == foreignKeyViolation {
		return ErrUnknownClassification
	} else if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (repo *postgresInventoryRepository) queryVehicles(ctx context.Context, query string, args ...interface{}) ([]Vehicle, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []Vehicle{}
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanVehicle(s scanner) (Vehicle, error) {
	var v Vehicle
	err := s.Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.Description, &v.Image,
		&v.Thumbnail, &v.Price, &v.Miles, &v.Color, &v.ClassificationID, &v.ClassificationName)
	return v, err
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// escapeLike makes the ILIKE wildcards in term match literally.
func escapeLike(term string) string {
	out := make([]rune, 0, len(term))
	for _, r := range term {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
