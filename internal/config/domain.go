package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Domain is the immutable domain configuration injected into the
// pipeline and handlers at call time: inspection categories (one registry
// sheet each), visit statuses that do not count as a visit, the sector
// map, source column names, and the user table. Production exports carry
// Arabic sheet and column headers; they are configured here rather than
// baked into code.
type Domain struct {
	Categories    []string `yaml:"categories"`
	BlockStatuses []string `yaml:"block_statuses"`
	Sectors       []Sector `yaml:"sectors"`
	VisitsSheet   string   `yaml:"visits_sheet"`
	Columns       Columns  `yaml:"columns"`
	Users         []User   `yaml:"users"`
}

// Sector is a named, fixed set of municipalities.
type Sector struct {
	Key            string   `yaml:"key"`
	Label          string   `yaml:"label"`
	Municipalities []string `yaml:"municipalities"`
}

// Columns names the identifier, status, and municipality columns in the
// two source workbooks.
type Columns struct {
	VisitLicense    string `yaml:"visit_license"`
	VisitStatus     string `yaml:"visit_status"`
	UniverseLicense string `yaml:"universe_license"`
	Municipality    string `yaml:"municipality"`
}

// User is an API account. Role is "admin" or "sector"; sector users only
// see their listed sectors. PasswordHash is a bcrypt hash.
type User struct {
	Name         string   `yaml:"name"`
	PasswordHash string   `yaml:"password_hash"`
	Role         string   `yaml:"role"`
	Sectors      []string `yaml:"sectors"`
}

// DefaultDomain returns compiled-in defaults so the service and its tests
// run without a domain file.
func DefaultDomain() Domain {
	return Domain{
		Categories: []string{
			"health", "buildings", "markets", "revenues", "excavations", "group_housing",
		},
		BlockStatuses: []string{
			"awaiting inspection", "cancelled", "deleted by supervisor",
		},
		VisitsSheet: "visits",
		Columns: Columns{
			VisitLicense:    "license_no",
			VisitStatus:     "visit_status",
			UniverseLicense: "license_id",
			Municipality:    "MUNICIPALITY_EN",
		},
	}
}

// LoadDomain reads and validates the YAML domain file. Fields left empty
// fall back to the compiled-in defaults.
func LoadDomain(path string) (Domain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Domain{}, err
	}
	domain := DefaultDomain()
	if err := yaml.Unmarshal(data, &domain); err != nil {
		return Domain{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := domain.validate(); err != nil {
		return Domain{}, fmt.Errorf("%s: %w", path, err)
	}
	return domain, nil
}

func (d Domain) validate() error {
	if len(d.Categories) == 0 {
		return fmt.Errorf("categories must not be empty")
	}
	if d.VisitsSheet == "" {
		return fmt.Errorf("visits_sheet must be set")
	}
	seen := map[string]struct{}{}
	for _, s := range d.Sectors {
		if s.Key == "" {
			return fmt.Errorf("sector with empty key")
		}
		if _, dup := seen[s.Key]; dup {
			return fmt.Errorf("duplicate sector key %q", s.Key)
		}
		seen[s.Key] = struct{}{}
	}
	for _, u := range d.Users {
		if u.Role != "admin" && u.Role != "sector" {
			return fmt.Errorf("user %q: unknown role %q", u.Name, u.Role)
		}
	}
	return nil
}

// Sector looks a sector up by key.
func (d Domain) Sector(key string) (Sector, bool) {
	for _, s := range d.Sectors {
		if s.Key == key {
			return s, true
		}
	}
	return Sector{}, false
}

// SectorOf returns the key of the sector containing the municipality.
func (d Domain) SectorOf(municipality string) (string, bool) {
	for _, s := range d.Sectors {
		for _, m := range s.Municipalities {
			if m == municipality {
				return s.Key, true
			}
		}
	}
	return "", false
}

// User looks an account up by name.
func (d Domain) User(name string) (User, bool) {
	for _, u := range d.Users {
		if u.Name == name {
			return u, true
		}
	}
	return User{}, false
}
