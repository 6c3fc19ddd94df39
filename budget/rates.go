package budget

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"itinera/models"
)

// MealRates are default prices of one meal at a dining category.
type MealRates struct {
	Breakfast int64 `yaml:"breakfast"`
	Lunch     int64 `yaml:"lunch"`
	Dinner    int64 `yaml:"dinner"`
}

// Rates are the default price tables used when a stop has no manual cost.
type Rates struct {
	TransportPerKm  map[string]int64     `yaml:"transport_per_km"`
	Dining          map[string]MealRates `yaml:"dining"`
	Activities      map[string]int64     `yaml:"activities"`
	DefaultActivity int64                `yaml:"default_activity"`
}

func DefaultRates() Rates {
	return Rates{
		TransportPerKm: map[string]int64{
			string(models.ModeDriving):         3000,
			string(models.ModePublicTransport): 1000,
			string(models.ModeWalking):         0,
			string(models.ModeFlight):          2000,
			string(models.ModeBoat):            1500,
		},
		Dining: map[string]MealRates{
			models.CategoryRestaurant: {Breakfast: 100000, Lunch: 150000, Dinner: 200000},
			models.CategoryBarPub:     {Breakfast: 100000, Lunch: 150000, Dinner: 200000},
			models.CategoryCafe:       {Breakfast: 50000, Lunch: 80000, Dinner: 100000},
			models.CategoryStreetFood: {Breakfast: 30000, Lunch: 50000, Dinner: 70000},
		},
		Activities: map[string]int64{
			models.CategorySightseeing: 150000,
			models.CategoryHiking:      50000,
			models.CategoryTour:        300000,
			models.CategoryExperience:  300000,
			models.CategoryAdventure:   500000,
			models.CategoryHotel:       0,
			models.CategoryRestaurant:  0,
			models.CategoryTransport:   0,
			models.CategoryHealth:      0,
			models.CategoryFinance:     0,
			models.CategoryConvenience: 0,
			models.CategoryLaundry:     0,
		},
		DefaultActivity: 100000,
	}
}

// LoadRates overlays the entries of a YAML file on the defaults. An empty path returns the defaults.
func LoadRates(path string) (Rates, error) {
	rates := DefaultRates()
	if path == "" {
		return rates, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return rates, errors.Wrapf(err, "read rates file %s", path)
	}
	return mergeRates(rates, raw)
}

func mergeRates(rates Rates, raw []byte) (Rates, error) {
	var override Rates
	if err := yaml.UnmarshalStrict(raw, &override); err != nil {
		return rates, errors.Wrap(err, "parse rates file")
	}
	for k, v := range override.TransportPerKm {
		rates.TransportPerKm[k] = v
	}
	for k, v := range override.Dining {
		rates.Dining[k] = v
	}
	for k, v := range override.Activities {
		rates.Activities[k] = v
	}
	if override.DefaultActivity > 0 {
		rates.DefaultActivity = override.DefaultActivity
	}
	return rates, nil
}

func (r Rates) meal(category, meal string) int64 {
	m, ok := r.Dining[category]
	if !ok {
		m = r.Dining[models.CategoryRestaurant]
	}
	switch meal {
	case MealBreakfast:
		return m.Breakfast
	case MealLunch:
		return m.Lunch
	default:
		return m.Dinner
	}
}

func (r Rates) activity(category string) int64 {
	if v, ok := r.Activities[category]; ok {
		return v
	}
	return r.DefaultActivity
}

func (r Rates) perKm(mode models.TransitMode) int64 {
	if v, ok := r.TransportPerKm[string(mode)]; ok {
		return v
	}
	return r.TransportPerKm[string(models.ModeDriving)]
}
