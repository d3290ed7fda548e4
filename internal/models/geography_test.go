// internal/models/geography_test.go
package models

import (
	"strings"
	"testing"
)

func TestGeographyLoads(t *testing.T) {
	countries, err := Geography()
	if err != nil {
		t.Fatalf("Geography() error: %v", err)
	}
	if len(countries) == 0 {
		t.Fatal("Geography() returned no countries")
	}
	for _, c := range countries {
		if c.Name == "" || len(c.States) == 0 {
			t.Errorf("country %+v is incomplete", c)
		}
	}
}

func TestValidateBirthplace(t *testing.T) {
	if err := ValidateBirthplace("USA", "California", "Los Angeles"); err != nil {
		t.Errorf("valid birthplace rejected: %v", err)
	}

	tests := []struct {
		country, state, city string
		wantSubstr           string
	}{
		{"Atlantis", "California", "Los Angeles", "unknown country"},
		{"USA", "Bavaria", "Los Angeles", "unknown state"},
		{"USA", "California", "Springfield", "unknown city"},
	}
	for _, tt := range tests {
		err := ValidateBirthplace(tt.country, tt.state, tt.city)
		if err == nil {
			t.Errorf("ValidateBirthplace(%q, %q, %q) accepted invalid input", tt.country, tt.state, tt.city)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantSubstr) {
			t.Errorf("error %q does not mention %q", err, tt.wantSubstr)
		}
	}
}

func TestPlatformCatalog(t *testing.T) {
	catalog := PlatformCatalog()
	if len(catalog) != len(AllPlatforms) {
		t.Fatalf("catalog has %d entries, want %d", len(catalog), len(AllPlatforms))
	}

	adult := 0
	for _, info := range catalog {
		if info.Name == "" || info.FollowerLabel == "" || len(info.ContentTypes) == 0 {
			t.Errorf("catalog entry %s is incomplete: %+v", info.ID, info)
		}
		if info.Adult {
			adult++
		}
	}
	if adult != 2 {
		t.Errorf("adult platform count = %d, want 2", adult)
	}

	if !IsAdultPlatform(PlatformOnlyFans) || IsAdultPlatform(PlatformYouTube) {
		t.Error("adult platform classification wrong")
	}
}

func TestSupportsContent(t *testing.T) {
	info, ok := LookupPlatform("youtube")
	if !ok {
		t.Fatal("youtube missing from catalog")
	}
	if !info.SupportsContent("video") {
		t.Error("youtube should support video")
	}
	if info.SupportsContent("podcast") {
		t.Error("youtube should not support podcast")
	}

	if _, ok := LookupPlatform("myspace"); ok {
		t.Error("unknown platform accepted")
	}
}
