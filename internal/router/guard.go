package router

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/core/session"
)

// Decision is the guard's verdict for one navigation attempt. A denied
// attempt carries the redirect target and, for permission denials, the
// diagnostic query parameters instead of failing silently.
type Decision struct {
	Allowed    bool
	RedirectTo string
	Query      url.Values
}

// Guard evaluates route requirements against the session store before
// navigation proceeds.
type Guard struct {
	session   *session.Store
	loginPath string
	homePath  string
	log       *zap.Logger
}

func NewGuard(sess *session.Store, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{
		session:   sess,
		loginPath: LoginPath,
		homePath:  DashboardPath,
		log:       log,
	}
}

// Check gates one route: authentication first, then the declared permission
// codes under the route's ANY/ALL mode.
func (g *Guard) Check(route Route) Decision {
	if !route.RequiresAuth && len(route.Permissions) == 0 {
		return Decision{Allowed: true}
	}

	if !g.session.ValidateSession() {
		g.log.Info("navigation_denied",
			zap.String("path", route.Path),
			zap.String("reason", "no_valid_session"),
		)
		return Decision{RedirectTo: g.loginPath}
	}

	if len(route.Permissions) == 0 {
		return Decision{Allowed: true}
	}
	if g.session.IsSuperAdmin() {
		return Decision{Allowed: true}
	}

	granted := false
	switch route.Mode {
	case ModeAll:
		granted = g.session.HasAllPermissions(route.Permissions)
	default:
		granted = g.session.HasAnyPermission(route.Permissions)
	}
	if granted {
		return Decision{Allowed: true}
	}

	g.log.Info("navigation_denied",
		zap.String("path", route.Path),
		zap.Strings("required_permissions", route.Permissions),
	)
	return Decision{
		RedirectTo: g.homePath,
		Query: url.Values{
			"error":                []string{"insufficient_permissions"},
			"attempted_route":      []string{route.Path},
			"required_permissions": []string{strings.Join(route.Permissions, ",")},
		},
	}
}

// CheckPath resolves path in the table and gates it. Unknown paths are not
// the guard's concern and pass through.
func (g *Guard) CheckPath(table *Table, path string) Decision {
	route, ok := table.Resolve(path)
	if !ok {
		return Decision{Allowed: true}
	}
	return g.Check(route)
}
