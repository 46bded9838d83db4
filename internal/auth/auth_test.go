package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"visit_coverage/internal/config"
)

func testDomain(t *testing.T) config.Domain {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	d := config.DefaultDomain()
	d.Sectors = []config.Sector{
		{Key: "abha", Label: "Abha Sector", Municipalities: []string{"Abha", "Ahad Rufaidah"}},
		{Key: "khamis", Label: "Khamis Sector", Municipalities: []string{"Khamis Mushait"}},
	}
	d.Users = []config.User{
		{Name: "chief", PasswordHash: string(hash), Role: RoleAdmin},
		{Name: "abha-lead", PasswordHash: string(hash), Role: RoleSector, Sectors: []string{"abha"}},
	}
	return d
}

func TestAuthenticate(t *testing.T) {
	d := testDomain(t)

	u, ok := Authenticate(d, "chief", "s3cret")
	if !ok || u.Role != RoleAdmin {
		t.Fatalf("valid admin login rejected: ok=%v user=%+v", ok, u)
	}
	if _, ok := Authenticate(d, "chief", "wrong"); ok {
		t.Fatalf("wrong password accepted")
	}
	if _, ok := Authenticate(d, "nobody", "s3cret"); ok {
		t.Fatalf("unknown user accepted")
	}
}

func TestCanAccess(t *testing.T) {
	d := testDomain(t)
	admin, _ := d.User("chief")
	lead, _ := d.User("abha-lead")

	cases := []struct {
		name  string
		user  config.User
		scope Scope
		want  bool
	}{
		{"admin region", admin, Scope{}, true},
		{"admin any sector", admin, Scope{Sector: "khamis"}, true},
		{"admin unknown municipality", admin, Scope{Municipality: "Nowhere"}, true},
		{"sector own sector", lead, Scope{Sector: "abha"}, true},
		{"sector other sector", lead, Scope{Sector: "khamis"}, false},
		{"sector region denied", lead, Scope{}, false},
		{"sector own municipality", lead, Scope{Municipality: "Ahad Rufaidah"}, true},
		{"sector foreign municipality", lead, Scope{Municipality: "Khamis Mushait"}, false},
		{"sector unknown municipality", lead, Scope{Municipality: "Nowhere"}, false},
	}
	for _, tc := range cases {
		if got := CanAccess(tc.user, d, tc.scope); got != tc.want {
			t.Errorf("%s: CanAccess = %v, want %v", tc.name, got, tc.want)
		}
	}
}
