package router_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/apitest"
	"github.com/kmulambia/qgen-client/internal/core/session"
	"github.com/kmulambia/qgen-client/internal/router"
	"github.com/kmulambia/qgen-client/internal/transport"
)

func sessionWith(t *testing.T, permissions ...string) *session.Store {
	t.Helper()

	backend := apitest.NewServer()
	backend.SeedUser(apitest.SeedUser{
		Email:       "ada@example.com",
		Password:    "pa55word!",
		RoleName:    "manager",
		Permissions: permissions,
	})

	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	tr, err := transport.New(srv.URL, 5*time.Second, zap.NewNop())
	require.NoError(t, err)

	store := session.NewStore(zap.NewNop())
	store.SetService(session.NewService(tr))
	_, err = store.Login(context.Background(), session.Credentials{
		Email: "ada@example.com", Password: "pa55word!",
	})
	require.NoError(t, err)
	return store
}

func anonymousSession(t *testing.T) *session.Store {
	t.Helper()
	return session.NewStore(zap.NewNop())
}

func TestPublicRouteAlwaysAllowed(t *testing.T) {
	guard := router.NewGuard(anonymousSession(t), zap.NewNop())

	decision := guard.Check(router.Route{Path: "/auth/login", Name: "login"})
	assert.True(t, decision.Allowed)
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	guard := router.NewGuard(anonymousSession(t), zap.NewNop())

	decision := guard.Check(router.Route{
		Path: "/admin/users", RequiresAuth: true,
		Permissions: []string{"user.view"},
	})
	assert.False(t, decision.Allowed)
	assert.Equal(t, router.LoginPath, decision.RedirectTo)
}

func TestAuthOnlyRouteNeedsNoPermissions(t *testing.T) {
	guard := router.NewGuard(sessionWith(t), zap.NewNop())

	decision := guard.Check(router.Route{Path: "/admin/dashboard", RequiresAuth: true})
	assert.True(t, decision.Allowed)
}

func TestAnyModeGrantsOnOneMatch(t *testing.T) {
	guard := router.NewGuard(sessionWith(t, "user.view"), zap.NewNop())

	decision := guard.Check(router.Route{
		Path: "/admin/users", RequiresAuth: true,
		Permissions: []string{"user.*", "user.view"},
	})
	assert.True(t, decision.Allowed)
}

func TestAllModeNeedsEveryCode(t *testing.T) {
	sess := sessionWith(t, "report.view")
	guard := router.NewGuard(sess, zap.NewNop())

	route := router.Route{
		Path: "/admin/reports/export", RequiresAuth: true,
		Permissions: []string{"report.view", "report.export"},
		Mode:        router.ModeAll,
	}
	assert.False(t, guard.Check(route).Allowed)

	sess = sessionWith(t, "report.view", "report.export")
	guard = router.NewGuard(sess, zap.NewNop())
	assert.True(t, guard.Check(route).Allowed)
}

func TestWildcardHoldSatisfiesRoute(t *testing.T) {
	guard := router.NewGuard(sessionWith(t, "user.*"), zap.NewNop())

	decision := guard.Check(router.Route{
		Path: "/admin/users", RequiresAuth: true,
		Permissions: []string{"user.view"},
	})
	assert.True(t, decision.Allowed)
}

func TestSuperAdminBypassesPermissionCheck(t *testing.T) {
	guard := router.NewGuard(sessionWith(t, "*"), zap.NewNop())

	decision := guard.Check(router.Route{
		Path: "/admin/audits", RequiresAuth: true,
		Permissions: []string{"audit.view"},
		Mode:        router.ModeAll,
	})
	assert.True(t, decision.Allowed)
}

func TestDenialCarriesDiagnostics(t *testing.T) {
	guard := router.NewGuard(sessionWith(t, "client.view"), zap.NewNop())

	decision := guard.Check(router.Route{
		Path: "/admin/users", RequiresAuth: true,
		Permissions: []string{"user.*", "user.view"},
	})
	require.False(t, decision.Allowed)
	assert.Equal(t, router.DashboardPath, decision.RedirectTo)
	assert.Equal(t, "insufficient_permissions", decision.Query.Get("error"))
	assert.Equal(t, "/admin/users", decision.Query.Get("attempted_route"))
	assert.Equal(t, "user.*,user.view", decision.Query.Get("required_permissions"))
}

func TestCheckPathResolvesTable(t *testing.T) {
	table := router.AdminRoutes()
	guard := router.NewGuard(sessionWith(t, "user.view"), zap.NewNop())

	assert.True(t, guard.CheckPath(table, "/admin/users").Allowed)
	assert.False(t, guard.CheckPath(table, "/admin/roles").Allowed)

	// Paths outside the table are not the guard's concern.
	assert.True(t, guard.CheckPath(table, "/totally/unknown").Allowed)
}
