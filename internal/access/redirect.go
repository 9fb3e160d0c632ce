package access

import (
	"net/url"
	"strings"

	"github.com/wichananm65/carehub-backend/internal/auth"
)

// Pages that need a signed-in caller.
var protectedPrefixes = []string{"/dashboard", "/profile", "/requests/new", "/applications"}

var authPages = []string{"/sign-in", "/sign-up"}

// Home returns the dashboard a role lands on.
func Home(role auth.Role) string {
	switch role {
	case auth.RoleAssistant:
		return "/dashboard/assistant"
	case auth.RoleAdmin:
		return "/dashboard/admin"
	default:
		return "/dashboard/user"
	}
}

// Resolve applies the page access rule. An empty role means the caller is
// anonymous. It returns the redirect target and true, or "" and false when
// the page may be served as requested.
func Resolve(path string, role auth.Role) (string, bool) {
	path = cleanPath(path)

	if role == "" {
		if hasAnyPrefix(path, protectedPrefixes) {
			return "/sign-in?next=" + url.QueryEscape(path), true
		}
		return "", false
	}

	if hasAnyPrefix(path, authPages) {
		return Home(role), true
	}

	if path == "/dashboard" {
		return Home(role), true
	}

	if strings.HasPrefix(path, "/dashboard/") && role != auth.RoleAdmin {
		if !underPrefix(path, Home(role)) {
			return Home(role), true
		}
	}

	if role == auth.RoleAssistant && underPrefix(path, "/requests/new") {
		return Home(role), true
	}

	return "", false
}

func cleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	return p
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if underPrefix(path, p) {
			return true
		}
	}
	return false
}

// underPrefix matches whole path segments so /profile does not cover /profiles.
func underPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
