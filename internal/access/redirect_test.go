package access

import (
	"testing"

	"github.com/wichananm65/carehub-backend/internal/auth"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		role     auth.Role
		want     string
		redirect bool
	}{
		{"anonymous home", "/", "", "", false},
		{"anonymous listing", "/requests", "", "", false},
		{"anonymous dashboard", "/dashboard/user", "", "/sign-in?next=%2Fdashboard%2Fuser", true},
		{"anonymous profile", "/profile", "", "/sign-in?next=%2Fprofile", true},
		{"anonymous profiles is not profile", "/profiles", "", "", false},
		{"anonymous new request", "/requests/new", "", "/sign-in?next=%2Frequests%2Fnew", true},
		{"anonymous sign-in", "/sign-in", "", "", false},
		{"user on sign-in", "/sign-in", auth.RoleUser, "/dashboard/user", true},
		{"assistant on sign-up", "/sign-up", auth.RoleAssistant, "/dashboard/assistant", true},
		{"bare dashboard user", "/dashboard", auth.RoleUser, "/dashboard/user", true},
		{"bare dashboard assistant", "/dashboard/", auth.RoleAssistant, "/dashboard/assistant", true},
		{"bare dashboard admin", "/dashboard", auth.RoleAdmin, "/dashboard/admin", true},
		{"user own dashboard", "/dashboard/user/offers", auth.RoleUser, "", false},
		{"user on assistant dashboard", "/dashboard/assistant", auth.RoleUser, "/dashboard/user", true},
		{"assistant on user dashboard", "/dashboard/user/requests", auth.RoleAssistant, "/dashboard/assistant", true},
		{"assistant on admin dashboard", "/dashboard/admin", auth.RoleAssistant, "/dashboard/assistant", true},
		{"admin anywhere", "/dashboard/assistant", auth.RoleAdmin, "", false},
		{"assistant cannot post", "/requests/new", auth.RoleAssistant, "/dashboard/assistant", true},
		{"user can post", "/requests/new", auth.RoleUser, "", false},
		{"query string ignored", "/dashboard?tab=1", auth.RoleUser, "/dashboard/user", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, redirect := Resolve(tc.path, tc.role)
			if redirect != tc.redirect || got != tc.want {
				t.Fatalf("Resolve(%q, %q) = (%q, %v), want (%q, %v)", tc.path, tc.role, got, redirect, tc.want, tc.redirect)
			}
		})
	}
}

func TestHome(t *testing.T) {
	if Home(auth.Role("")) != "/dashboard/user" {
		t.Fatalf("unknown role should land on the user dashboard")
	}
}
