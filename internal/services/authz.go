package services

import (
	"strings"

	"goldengate/internal/domain"
)

type Resource string

const (
	ResourceLogin        Resource = "login"
	ResourceDashboard    Resource = "dashboard"
	ResourceInventory    Resource = "inventory"
	ResourceFinancing    Resource = "financing"
	ResourceReports      Resource = "reports"
	ResourceDeleteRecord Resource = "delete-record"
)

var adminOnly = map[Resource]bool{
	ResourceReports:      true,
	ResourceDeleteRecord: true,
}

// Authorize is the access rule: admin-only resources need the admin role,
// everything else just needs a session. The login screen is always reachable.
func Authorize(s *domain.Session, r Resource) bool {
	if r == ResourceLogin {
		return true
	}
	if s == nil {
		return false
	}
	if adminOnly[r] {
		return s.IsAdmin()
	}
	return true
}

// ResourceFor maps a screen path to the resource it shows.
func ResourceFor(path string) Resource {
	path = strings.TrimSuffix(path, "/")
	switch {
	case path == PathLogin:
		return ResourceLogin
	case path == PathDashboard+"/inventory" || strings.HasPrefix(path, PathDashboard+"/inventory/"):
		return ResourceInventory
	case path == PathDashboard+"/financing" || strings.HasPrefix(path, PathDashboard+"/financing/"):
		return ResourceFinancing
	case path == PathDashboard+"/reports" || strings.HasPrefix(path, PathDashboard+"/reports/"):
		return ResourceReports
	default:
		return ResourceDashboard
	}
}

// Navigation is the outcome of checking a screen request against the gate.
type Navigation struct {
	Wait     bool   // session not read yet; render nothing
	Redirect string // non-empty: go there instead
}

func (n Navigation) Allowed() bool { return !n.Wait && n.Redirect == "" }

// Navigate decides what happens when the user asks for path.
func (g *Gate) Navigate(path string) Navigation {
	state := g.State()
	sess := g.Current()

	if state == StateLoading {
		return Navigation{Wait: true}
	}
	if p := strings.TrimSuffix(path, "/"); p == "" {
		if sess != nil {
			return Navigation{Redirect: PathDashboard}
		}
		return Navigation{Redirect: PathLogin}
	}

	res := ResourceFor(path)
	switch {
	case res == ResourceLogin && sess != nil:
		return Navigation{Redirect: PathDashboard}
	case res == ResourceLogin:
		return Navigation{}
	case sess == nil:
		return Navigation{Redirect: PathLogin}
	case !Authorize(sess, res):
		return Navigation{Redirect: PathDashboard}
	}
	return Navigation{}
}

// NavItem is one sidebar entry.
type NavItem struct {
	Href      string `json:"href"`
	Label     string `json:"label"`
	AdminOnly bool   `json:"adminOnly"`
}

var navItems = []NavItem{
	{Href: PathDashboard, Label: "Panel de Control"},
	{Href: PathDashboard + "/inventory", Label: "Inventario"},
	{Href: PathDashboard + "/financing", Label: "Financiamiento"},
	{Href: PathDashboard + "/reports", Label: "Reportes", AdminOnly: true},
}

// NavItems returns the sidebar entries the session may open.
func NavItems(s *domain.Session) []NavItem {
	out := make([]NavItem, 0, len(navItems))
	for _, it := range navItems {
		if Authorize(s, ResourceFor(it.Href)) {
			out = append(out, it)
		}
	}
	return out
}
