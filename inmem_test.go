package motors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type InventoryRepositorySuite struct {
	suite.Suite
	repo Repository
	ctx  context.Context
}

func (s *InventoryRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = NewInventoryRepository()
	s.Require().NoError(SeedDemo(s.ctx, s.repo))
}

func (s *InventoryRepositorySuite) TestAllVehiclesOrderedByMakeThenModel() {
	all, err := s.repo.AllVehicles(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 9)

	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		s.True(prev.Make < cur.Make || (prev.Make == cur.Make && prev.Model <= cur.Model),
			"%s before %s", prev.Title(), cur.Title())
	}
}

func (s *InventoryRepositorySuite) TestSearchIsCaseInsensitiveAcrossFields() {
	tests := []struct {
		term string
		want []string
	}{
		{term: "jeep", want: []string{"Jeep"}},
		{term: "CROWN", want: []string{"Ford"}},
		{term: "airplane", want: []string{"Aerocar"}},
		{term: "suv", want: []string{"Jeep"}},
		{term: "truck", want: []string{"Mechanic", "Monster"}},
		{term: "hovercraft", want: []string{}},
	}

	for _, tt := range tests {
		got, err := s.repo.Search(s.ctx, tt.term)
		s.Require().NoError(err)

		makes := []string{}
		for _, v := range got {
			makes = append(makes, v.Make)
		}
		s.Equal(tt.want, makes, tt.term)
	}
}

func (s *InventoryRepositorySuite) TestClassificationNamesAreUnique() {
	_, err := s.repo.AddClassification(s.ctx, "Sedan")
	s.Equal(ErrExistingClassification, err)

	c, err := s.repo.AddClassification(s.ctx, "sedan")
	s.NoError(err)
	s.Equal(6, c.ID)
}

func (s *InventoryRepositorySuite) TestAddVehicleNeedsKnownClassification() {
	err := s.repo.AddVehicle(s.ctx, &Vehicle{Make: "Ghost", ClassificationID: 42})
	s.Equal(ErrUnknownClassification, err)
}

func (s *InventoryRepositorySuite) TestVehicleByID() {
	v, err := s.repo.VehicleByID(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal("Batmobile", v.Make)
	s.Equal("Custom", v.ClassificationName)

	_, err = s.repo.VehicleByID(s.ctx, 100)
	s.Equal(ErrNotFound, err)
}

func (s *InventoryRepositorySuite) TestEmptyClassificationHasNoVehicles() {
	c, err := s.repo.AddClassification(s.ctx, "Electric")
	s.Require().NoError(err)

	vs, err := s.repo.VehiclesByClassification(s.ctx, c.ID)
	s.NoError(err)
	s.Empty(vs)
}

func TestInventoryRepositorySuite(t *testing.T) {
	suite.Run(t, new(InventoryRepositorySuite))
}
