package motors

import (
	"context"
	"errors"
	"fmt"
)

// demoInventory is the stock a fresh demo site starts with.
var demoInventory = map[string][]Vehicle{
	"Custom": {
		{Make: "Batmobile", Model: "Custom", Year: "2007", Description: "Ever want to be a superhero? Now you can with the Batmobile.", Price: 65000, Miles: 29887, Color: "Black"},
		{Make: "FBI", Model: "Surveillance Van", Year: "2016", Description: "Do you like police shows? You'll feel right at home driving this van.", Price: 20000, Miles: 19851, Color: "Brown"},
	},
	"Sedan": {
		{Make: "Chevy", Model: "Camaro", Year: "2018", Description: "If you want to look cool this is the car you need.", Price: 25000, Miles: 101222, Color: "Silver"},
		{Make: "Ford", Model: "Crown Victoria", Year: "2013", Description: "After the police force updated their fleet these cars are now available.", Price: 10000, Miles: 108247, Color: "White"},
	},
	"Sport": {
		{Make: "Lamborghini", Model: "Adventador", Year: "2016", Description: "This V-12 engine packs a punch in this sporty car.", Price: 417650, Miles: 71632, Color: "Blue"},
		{Make: "Aerocar", Model: "International", Year: "1963", Description: "Are you sick of rush hour traffic? This car converts to an airplane.", Price: 700000, Miles: 18956, Color: "Red"},
	},
	"SUV": {
		{Make: "Jeep", Model: "Wrangler", Year: "2019", Description: "The Jeep Wrangler is small and compact with enough power to get you where you want to go.", Price: 28045, Miles: 41205, Color: "Yellow"},
	},
	"Truck": {
		{Make: "Monster", Model: "Truck", Year: "1995", Description: "Most trucks are for working, this one is for fun.", Price: 150000, Miles: 3689, Color: "Purple"},
		{Make: "Mechanic", Model: "Special", Year: "1964", Description: "Not sure where this car came from. However, with a little tender loving care it will run as good a new.", Price: 100, Miles: 200125, Color: "Rust"},
	},
}

// SeedDemo fills an empty repository with demo stock. A repository that
// already has classifications is left alone.
func SeedDemo(ctx context.Context, repo Repository) error {
	existing, err := repo.Classifications(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, name := range []string{"Custom", "Sedan", "Sport", "SUV", "Truck"} {
		c, err := repo.AddClassification(ctx, name)
		if err != nil && !errors.Is(err, ErrExistingClassification) {
			return fmt.Errorf("seed classification %s: %w", name, err)
		}
		if c == nil {
			continue
		}

		for _, v := range demoInventory[name] {
			v := v
			v.ClassificationID = c.ID
			v.Image = defaultImage
			v.Thumbnail = defaultThumbnail
			if err := repo.AddVehicle(ctx, &v); err != nil {
				return fmt.Errorf("seed vehicle %s: %w", v.Title(), err)
			}
		}
	}
	return nil
}
