package motors

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vehicleColumns = []string{"inv_id", "inv_make", "inv_model", "inv_year", "inv_description", "inv_image",
	"inv_thumbnail", "inv_price", "inv_miles", "inv_color", "classification_id", "classification_name"}

func newRepoWithMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresInventoryRepository(db), mock
}

func TestPostgresInventoryRepository_Classifications(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT classification_id, classification_name FROM classification ORDER BY classification_name$`).
		WillReturnRows(sqlmock.NewRows([]string{"classification_id", "classification_name"}).
			AddRow(1, "Custom").
			AddRow(4, "SUV"))

	got, err := repo.Classifications(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []Classification{{ID: 1, Name: "Custom"}, {ID: 4, Name: "SUV"}}, got)
}

func TestPostgresInventoryRepository_AddClassification(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	insert := `^INSERT INTO classification \(classification_name\) VALUES \(\$1\) RETURNING classification_id, classification_name$`

	mock.ExpectQuery(insert).WithArgs("Electric").
		WillReturnRows(sqlmock.NewRows([]string{"classification_id", "classification_name"}).AddRow(6, "Electric"))
	mock.ExpectQuery(insert).WithArgs("Electric").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	c, err := repo.AddClassification(context.Background(), "Electric")
	require.NoError(t, err)
	assert.Equal(t, &Classification{ID: 6, Name: "Electric"}, c)

	_, err = repo.AddClassification(context.Background(), "Electric")
	assert.Equal(t, ErrExistingClassification, err)
}

func TestPostgresInventoryRepository_VehicleByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	query := `(?s)^SELECT i\.inv_id, .+ FROM inventory AS i\s+JOIN classification AS c ON i\.classification_id = c\.classification_id WHERE i\.inv_id = \$1$`

	mock.ExpectQuery(query).WithArgs(1).
		WillReturnRows(sqlmock.NewRows(vehicleColumns).
			AddRow(1, "Batmobile", "Custom", "2007", "Superhero.", "/i.png", "/t.png", "65000.00", 29887, "Black", 1, "Custom"))
	mock.ExpectQuery(query).WithArgs(2).WillReturnError(sql.ErrNoRows)

	v, err := repo.VehicleByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, &Vehicle{
		ID: 1, Make: "Batmobile", Model: "Custom", Year: "2007", Description: "Superhero.",
		Image: "/i.png", Thumbnail: "/t.png", Price: 65000, Miles: 29887, Color: "Black",
		ClassificationID: 1, ClassificationName: "Custom",
	}, v)

	_, err = repo.VehicleByID(context.Background(), 2)
	assert.Equal(t, ErrNotFound, err)
}

func TestPostgresInventoryRepository_SearchEscapesWildcards(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)WHERE i\.inv_make ILIKE \$1.+ORDER BY i\.inv_make, i\.inv_model`).
		WithArgs(`%100\%%`).
		WillReturnRows(sqlmock.NewRows(vehicleColumns))

	got, err := repo.Search(context.Background(), "100%")

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPostgresInventoryRepository_AddVehicle(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	insert := `(?s)^INSERT INTO inventory .+ RETURNING inv_id$`

	mock.ExpectQuery(insert).
		WithArgs("Ford", "Bronco", "2022", "Rugged.", "/i.png", "/t.png", 45000.0, 12, "Green", 4).
		WillReturnRows(sqlmock.NewRows([]string{"inv_id"}).AddRow(10))
	mock.ExpectQuery(insert).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectQuery(insert).
		WillReturnError(errors.New("db down"))

	v := &Vehicle{Make: "Ford", Model: "Bronco", Year: "2022", Description: "Rugged.", Image: "/i.png",
		Thumbnail: "/t.png", Price: 45000, Miles: 12, Color: "Green", ClassificationID: 4}
	require.NoError(t, repo.AddVehicle(context.Background(), v))
	assert.Equal(t, 10, v.ID)

	assert.Equal(t, ErrUnknownClassification, repo.AddVehicle(context.Background(), &Vehicle{ClassificationID: 77}))
	assert.ErrorContains(t, repo.AddVehicle(context.Background(), &Vehicle{ClassificationID: 4}), "db down")
}

func TestPostgresInventoryRepository_QueryFailure(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`ORDER BY i\.inv_make`).WillReturnError(errors.New("db down"))

	_, err := repo.AllVehicles(context.Background())
	assert.ErrorContains(t, err, "db error: db down")
}
