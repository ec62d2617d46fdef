package motors

import (
	"context"
	"sort"
	"sync"
)

type inventoryRepository struct {
	mu              sync.RWMutex
	classifications map[int]*Classification
	vehicles        map[int]*Vehicle
	lastClassID     int
	lastVehicleID   int
}

func NewInventoryRepository() Repository {
	return &inventoryRepository{
		classifications: map[int]*Classification{},
		vehicles:        map[int]*Vehicle{},
	}
}

func (repo *inventoryRepository) Classifications(_ context.Context) ([]Classification, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	out := make([]Classification, 0, len(repo.classifications))
	for _, c := range repo.classifications {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (repo *inventoryRepository) ClassificationByID(_ context.Context, id int) (*Classification, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if c, ok := repo.classifications[id]; ok {
		found := *c
		return &found, nil
	}
	return nil, ErrNotFound
}

func (repo *inventoryRepository) AddClassification(_ context.Context, name string) (*Classification, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, c := range repo.classifications {
		if c.Name == name {
			return nil, ErrExistingClassification
		}
	}

	repo.lastClassID++
	c := &Classification{ID: repo.lastClassID, Name: name}
	repo.classifications[c.ID] = c
	added := *c
	return &added, nil
}

func (repo *inventoryRepository) AllVehicles(_ context.Context) ([]Vehicle, error) {
	return repo.vehiclesWhere(func(Vehicle) bool { return true }), nil
}

func (repo *inventoryRepository) VehiclesByClassification(_ context.Context, classificationID int) ([]Vehicle, error) {
	return repo.vehiclesWhere(func(v Vehicle) bool { return v.ClassificationID == classificationID }), nil
}

func (repo *inventoryRepository) Search(_ context.Context, term string) ([]Vehicle, error) {
	return repo.vehiclesWhere(func(v Vehicle) bool { return v.matches(term) }), nil
}

func (repo *inventoryRepository) VehicleByID(_ context.Context, id int) (*Vehicle, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	v, ok := repo.vehicles[id]
	if !ok {
		return nil, ErrNotFound
	}
	found := repo.withClassification(*v)
	return &found, nil
}

func (repo *inventoryRepository) AddVehicle(_ context.Context, v *Vehicle) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.classifications[v.ClassificationID]; !ok {
		return ErrUnknownClassification
	}

	repo.lastVehicleID++
	v.ID = repo.lastVehicleID
	stored := *v
	repo.vehicles[v.ID] = &stored
	return nil
}

func (repo *inventoryRepository) vehiclesWhere(keep func(Vehicle) bool) []Vehicle {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	out := []Vehicle{}
	for _, v := range repo.vehicles {
		if candidate := repo.withClassification(*v); keep(candidate) {
			out = append(out, candidate)
		}
	}
	sortVehicles(out)
	return out
}

// withClassification must be called with mu held.
func (repo *inventoryRepository) withClassification(v Vehicle) Vehicle {
	if c, ok := repo.classifications[v.ClassificationID]; ok {
		v.ClassificationName = c.Name
	}
	return v
}

func sortVehicles(vs []Vehicle) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].Make != vs[j].Make {
			return vs[i].Make < vs[j].Make
		}
		if vs[i].Model != vs[j].Model {
			return vs[i].Model < vs[j].Model
		}
		return vs[i].ID < vs[j].ID
	})
}
