// Package router holds the declarative route table and the guard that
// gates navigation against the session's permission set.
package router

// Mode selects how a route's required permission codes combine.
type Mode string

const (
	// ModeAny allows navigation when the session grants at least one of
	// the required codes. It is the default when a route declares none.
	ModeAny Mode = "any"
	// ModeAll requires every declared code.
	ModeAll Mode = "all"
)

// Route is one navigable target with its declarative access requirements.
type Route struct {
	Path         string
	Name         string
	RequiresAuth bool
	Permissions  []string
	Mode         Mode
}

// Table resolves paths to routes.
type Table struct {
	byPath map[string]Route
}

func NewTable(routes ...Route) *Table {
	t := &Table{byPath: make(map[string]Route, len(routes))}
	for _, r := range routes {
		t.byPath[r.Path] = r
	}
	return t
}

func (t *Table) Resolve(path string) (Route, bool) {
	r, ok := t.byPath[path]
	return r, ok
}

// Paths for the fixed navigation targets.
const (
	LoginPath     = "/auth/login"
	DashboardPath = "/admin/dashboard"
)

// AdminRoutes is the default route table of the administration area. The
// dashboard and personal settings are open to any authenticated user;
// management areas declare their permission codes.
func AdminRoutes() *Table {
	return NewTable(
		Route{Path: DashboardPath, Name: "dashboard", RequiresAuth: true},
		Route{Path: "/admin/settings", Name: "settings", RequiresAuth: true},
		Route{Path: "/admin/users", Name: "users", RequiresAuth: true,
			Permissions: []string{"user.*", "user.view"}},
		Route{Path: "/admin/roles", Name: "roles", RequiresAuth: true,
			Permissions: []string{"role.*", "role.view"}},
		Route{Path: "/admin/permissions", Name: "permissions", RequiresAuth: true,
			Permissions: []string{"permission.*", "permission.view"}},
		Route{Path: "/admin/workspaces", Name: "workspaces", RequiresAuth: true,
			Permissions: []string{"workspace.*", "workspace.view"}},
		Route{Path: "/admin/clients", Name: "clients", RequiresAuth: true,
			Permissions: []string{"client.*", "client.view"}},
		Route{Path: "/admin/quotations", Name: "quotations", RequiresAuth: true,
			Permissions: []string{"quotation.*", "quotation.view"}},
		Route{Path: "/admin/audits", Name: "audits", RequiresAuth: true,
			Permissions: []string{"audit.view", "audit.*"}, Mode: ModeAny},
		Route{Path: LoginPath, Name: "login"},
	)
}
