// Package auth authenticates configured accounts and decides which
// reporting scopes they may read.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"visit_coverage/internal/config"
)

const (
	RoleAdmin  = "admin"
	RoleSector = "sector"
)

// Scope identifies what a request wants to read. The zero value is the
// whole region; Sector selects one sector, Municipality one municipality.
type Scope struct {
	Sector       string
	Municipality string
}

// Region reports whether the scope covers the whole region.
func (s Scope) Region() bool { return s.Sector == "" && s.Municipality == "" }

// Authenticate verifies a name/password pair against the configured user
// table. Passwords are stored as bcrypt hashes.
func Authenticate(d config.Domain, name, password string) (config.User, bool) {
	u, ok := d.User(name)
	if !ok {
		return config.User{}, false
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return config.User{}, false
	}
	return u, true
}

// CanAccess is the single authorization predicate applied before any
// aggregation or export call. Admins see everything. Sector users see
// their sectors and those sectors' municipalities; region-wide scopes are
// admin-only. An unknown municipality is visible only to admins.
func CanAccess(u config.User, d config.Domain, s Scope) bool {
	if u.Role == RoleAdmin {
		return true
	}
	if u.Role != RoleSector {
		return false
	}
	if s.Region() {
		return false
	}
	sector := s.Sector
	if s.Municipality != "" {
		key, ok := d.SectorOf(s.Municipality)
		if !ok {
			return false
		}
		sector = key
	}
	for _, allowed := range u.Sectors {
		if allowed == sector {
			return true
		}
	}
	return false
}
