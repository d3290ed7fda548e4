// internal/models/geography.go
package models

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed geography.yaml
var geographyYAML []byte

// Country is one entry of the setup geography catalog.
type Country struct {
	Name   string  `yaml:"name" json:"name"`
	States []State `yaml:"states" json:"states"`
}

// State groups the cities available under a country subdivision.
type State struct {
	Name   string   `yaml:"name" json:"name"`
	Cities []string `yaml:"cities" json:"cities"`
}

type geography struct {
	Countries []Country `yaml:"countries"`
}

var (
	geo     geography
	geoOnce sync.Once
	geoErr  error
)

func loadGeography() {
	geoOnce.Do(func() {
		if err := yaml.Unmarshal(geographyYAML, &geo); err != nil {
			geoErr = fmt.Errorf("parse embedded geography catalog: %w", err)
		}
	})
}

// Geography returns the full setup catalog.
func Geography() ([]Country, error) {
	loadGeography()
	return geo.Countries, geoErr
}

// ValidateBirthplace checks that the country/state/city triple exists in
// the catalog.
func ValidateBirthplace(country, state, city string) error {
	loadGeography()
	if geoErr != nil {
		return geoErr
	}
	for _, c := range geo.Countries {
		if c.Name != country {
			continue
		}
		for _, s := range c.States {
			if s.Name != state {
				continue
			}
			for _, candidate := range s.Cities {
				if candidate == city {
					return nil
				}
			}
			return fmt.Errorf("unknown city %q in %s, %s", city, state, country)
		}
		return fmt.Errorf("unknown state %q in %s", state, country)
	}
	return fmt.Errorf("unknown country %q", country)
}
