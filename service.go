package motors

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimiolaniyan/gomotors/web"
)

type Service interface {
	Classifications(ctx context.Context) ([]Classification, error)
	// VehiclesByClassification returns the classification with its vehicles.
	// An unknown classification is ErrNotFound.
	VehiclesByClassification(ctx context.Context, classificationID int) (*Classification, []Vehicle, error)
	Vehicle(ctx context.Context, id int) (*Vehicle, error)
	AllVehicles(ctx context.Context) ([]Vehicle, error)
	Search(ctx context.Context, term string) ([]Vehicle, error)
	AddClassification(ctx context.Context, name string) (*Classification, error)
	AddVehicle(ctx context.Context, req addVehicleRequest) (*Vehicle, error)

	web.NavSource
}

type service struct {
	inventory Repository
}

type addVehicleRequest struct {
	ClassificationID int
	Make             string
	Model            string
	Year             string
	Description      string
	Image            string
	Thumbnail        string
	Price            float64
	Miles            int
	Color            string
}

func NewService(inventory Repository) Service {
	return &service{inventory: inventory}
}

func (svc *service) Classifications(ctx context.Context) ([]Classification, error) {
	return svc.inventory.Classifications(ctx)
}

func (svc *service) VehiclesByClassification(ctx context.Context, classificationID int) (*Classification, []Vehicle, error) {
	c, err := svc.inventory.ClassificationByID(ctx, classificationID)
	if err != nil {
		return nil, nil, err
	}

	vehicles, err := svc.inventory.VehiclesByClassification(ctx, classificationID)
	if err != nil {
		return nil, nil, err
	}
	return c, vehicles, nil
}

func (svc *service) Vehicle(ctx context.Context, id int) (*Vehicle, error) {
	return svc.inventory.VehicleByID(ctx, id)
}

func (svc *service) AllVehicles(ctx context.Context) ([]Vehicle, error) {
	return svc.inventory.AllVehicles(ctx)
}

func (svc *service) Search(ctx context.Context, term string) ([]Vehicle, error) {
	return svc.inventory.Search(ctx, term)
}

func (svc *service) AddClassification(ctx context.Context, name string) (*Classification, error) {
	c, err := svc.inventory.AddClassification(ctx, name)
	if err != nil && !errors.Is(err, ErrExistingClassification) {
		return nil, fmt.Errorf("error saving classification: %w", err)
	}
	return c, err
}

func (svc *service) AddVehicle(ctx context.Context, req addVehicleRequest) (*Vehicle, error) {
	c, err := svc.inventory.ClassificationByID(ctx, req.ClassificationID)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrUnknownClassification
	} else if err != nil {
		return nil, err
	}

	v := &Vehicle{
		Make:               req.Make,
		Model:              req.Model,
		Year:               req.Year,
		Description:        req.Description,
		Image:              req.Image,
		Thumbnail:          req.Thumbnail,
		Price:              req.Price,
		Miles:              req.Miles,
		Color:              req.Color,
		ClassificationID:   c.ID,
		ClassificationName: c.Name,
	}
	if err := svc.inventory.AddVehicle(ctx, v); err != nil {
		return nil, fmt.Errorf("error saving vehicle: %w", err)
	}
	return v, nil
}

// NavLinks lists every classification for the navigation bar.
func (svc *service) NavLinks(ctx context.Context) ([]web.NavLink, error) {
	classifications, err := svc.inventory.Classifications(ctx)
	if err != nil {
		return nil, err
	}

	links := make([]web.NavLink, 0, len(classifications))
	for _, c := range classifications {
		links = append(links, web.NavLink{ID: c.ID, Name: c.Name})
	}
	return links, nil
}
