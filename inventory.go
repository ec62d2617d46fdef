// Package motors is the dealership inventory: classifications, the vehicles
// filed under them, and the pages that browse, search and manage them.
package motors

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrExistingClassification = errors.New("classification exists")
	ErrUnknownClassification  = errors.New("unknown classification")
)

type Classification struct {
	ID   int
	Name string
}

type Vehicle struct {
	ID          int
	Make        string
	Model       string
	Year        string
	Description string
	Image       string
	Thumbnail   string
	Price       float64
	Miles       int
	Color       string

	ClassificationID   int
	ClassificationName string
}

// Title reads like "2019 Ford Mustang".
func (v Vehicle) Title() string {
	return fmt.Sprintf("%s %s %s", v.Year, v.Make, v.Model)
}

// matches reports whether term occurs, ignoring case, in the make, model,
// description or classification name.
func (v Vehicle) matches(term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{v.Make, v.Model, v.Description, v.ClassificationName} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Repository stores the inventory. Vehicle listings come back ordered by make
// then model, classifications by name.
type Repository interface {
	Classifications(ctx context.Context) ([]Classification, error)
	ClassificationByID(ctx context.Context, id int) (*Classification, error)
	// AddClassification fails with ErrExistingClassification when the name is
	// taken.
	AddClassification(ctx context.Context, name string) (*Classification, error)

	AllVehicles(ctx context.Context) ([]Vehicle, error)
	VehiclesByClassification(ctx context.Context, classificationID int) ([]Vehicle, error)
	VehicleByID(ctx context.Context, id int) (*Vehicle, error)
	AddVehicle(ctx context.Context, v *Vehicle) error
	Search(ctx context.Context, term string) ([]Vehicle, error)
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, ErrNotFound
	}
	return id, nil
}
