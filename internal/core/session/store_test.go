package session_test

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/apierror"
	"github.com/kmulambia/qgen-client/internal/apitest"
	"github.com/kmulambia/qgen-client/internal/core/session"
	"github.com/kmulambia/qgen-client/internal/transport"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "pa55word!"
)

func newSessionStore(t *testing.T, backend *apitest.Server) *session.Store {
	t.Helper()

	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)

	tr, err := transport.New(srv.URL, 5*time.Second, zap.NewNop())
	require.NoError(t, err)

	store := session.NewStore(zap.NewNop())
	store.SetService(session.NewService(tr))
	tr.SetTokenSource(store)
	tr.SetUnauthorizedHandler(store.ClearSession)
	return store
}

func seedBackend(permissions ...string) *apitest.Server {
	backend := apitest.NewServer()
	backend.SeedUser(apitest.SeedUser{
		FirstName:   "Ada",
		LastName:    "Banda",
		Email:       testEmail,
		Password:    testPassword,
		RoleName:    "manager",
		Permissions: permissions,
	})
	return backend
}

func login(t *testing.T, store *session.Store) {
	t.Helper()
	_, err := store.Login(context.Background(), session.Credentials{
		Email: testEmail, Password: testPassword,
	})
	require.NoError(t, err)
}

func TestLoginInstallsSession(t *testing.T) {
	store := newSessionStore(t, seedBackend("user.view"))

	require.False(t, store.IsLoggedIn())
	login(t, store)

	assert.True(t, store.IsLoggedIn())
	assert.True(t, store.ValidateSession())
	assert.Equal(t, testEmail, store.Email())
	assert.NotEmpty(t, store.AccessToken())
	assert.False(t, store.IsTokenExpired())

	user := store.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "Ada", user.FirstName)

	role := store.UserRole()
	require.NotNil(t, role)
	assert.Equal(t, "manager", role.Name)

	header := store.AuthorizationHeader()
	assert.Contains(t, header, "Bearer ")
}

func TestLoginFailureLeavesStateUntouched(t *testing.T) {
	store := newSessionStore(t, seedBackend())

	_, err := store.Login(context.Background(), session.Credentials{
		Email: testEmail, Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindUnauthorized, apierror.KindOf(err))
	assert.False(t, store.IsLoggedIn())
	assert.NotEmpty(t, store.Err())
	assert.False(t, store.Loading())
}

func TestLoginWithoutServiceIsConfigurationError(t *testing.T) {
	store := session.NewStore(zap.NewNop())

	_, err := store.Login(context.Background(), session.Credentials{
		Email: testEmail, Password: testPassword,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsConfiguration(err))
}

func TestLogoutClearsEverything(t *testing.T) {
	store := newSessionStore(t, seedBackend("user.view"))
	login(t, store)

	store.Logout()
	assert.False(t, store.IsLoggedIn())
	assert.False(t, store.ValidateSession())
	assert.Empty(t, store.AccessToken())
	assert.Empty(t, store.Email())
	assert.Nil(t, store.CurrentUser())
	assert.False(t, store.HasPermission("user.view"))
}

func TestExpiredSessionLogsOutOnValidate(t *testing.T) {
	backend := seedBackend("user.view")
	backend.SetTokenTTL(-time.Minute)
	store := newSessionStore(t, backend)
	login(t, store)

	assert.True(t, store.IsTokenExpired())
	assert.False(t, store.ValidateSession())
	// The expired session was cleared, not left half-valid.
	assert.False(t, store.IsLoggedIn())
}

func TestExpiringSoon(t *testing.T) {
	backend := seedBackend()
	backend.SetTokenTTL(2 * time.Minute)
	store := newSessionStore(t, backend)
	login(t, store)

	assert.False(t, store.IsTokenExpired())
	assert.True(t, store.IsTokenExpiringSoon())
}

func TestPermissionChecks(t *testing.T) {
	store := newSessionStore(t, seedBackend("user.*", "client.view"))
	login(t, store)

	assert.True(t, store.HasPermission("user.update"))
	assert.True(t, store.HasPermission("client.view"))
	assert.False(t, store.HasPermission("clients.view"))
	assert.False(t, store.HasPermission("client.update"))

	assert.True(t, store.HasAnyPermission([]string{"quotation.view", "user.delete"}))
	assert.False(t, store.HasAnyPermission([]string{"quotation.view", "audit.view"}))
	assert.False(t, store.HasAnyPermission(nil))

	assert.True(t, store.HasAllPermissions([]string{"user.view", "user.update", "client.view"}))
	assert.False(t, store.HasAllPermissions([]string{"user.view", "client.update"}))
	assert.False(t, store.HasAllPermissions(nil))
}

func TestSuperAdmin(t *testing.T) {
	store := newSessionStore(t, seedBackend("*"))
	login(t, store)

	assert.True(t, store.IsSuperAdmin())
	assert.True(t, store.HasPermission("anything.at.all"))
	assert.True(t, store.HasAnyPermission([]string{"whatever"}))

	// Empty inputs stay unsatisfied even for the universal permission.
	assert.False(t, store.HasAnyPermission([]string{}))
	assert.False(t, store.HasAllPermissions([]string{}))
}

func TestRoleChecks(t *testing.T) {
	store := newSessionStore(t, seedBackend("user.view"))
	login(t, store)

	assert.True(t, store.HasRole("manager"))
	assert.False(t, store.HasRole("admin"))
	assert.True(t, store.HasAnyRole([]string{"admin", "manager"}))
	assert.False(t, store.HasAnyRole([]string{"admin"}))
}

func TestPermissionsByGroup(t *testing.T) {
	store := newSessionStore(t, seedBackend("user.view"))
	login(t, store)

	// Seeded permissions carry no group, so they land in the default
	// bucket.
	groups := store.PermissionsByGroup()
	assert.Len(t, groups["uncategorized"], 1)
}

func TestPersistAndRestore(t *testing.T) {
	backend := seedBackend("user.view")
	path := filepath.Join(t.TempDir(), "session.json")

	first := newSessionStore(t, backend)
	first.SetPersister(session.NewFilePersister(path))
	login(t, first)

	second := newSessionStore(t, backend)
	second.SetPersister(session.NewFilePersister(path))
	require.True(t, second.Restore())

	assert.True(t, second.IsLoggedIn())
	assert.Equal(t, testEmail, second.Email())
	assert.True(t, second.HasPermission("user.view"))
}

func TestRestoreWithoutFile(t *testing.T) {
	store := newSessionStore(t, seedBackend())
	store.SetPersister(session.NewFilePersister(filepath.Join(t.TempDir(), "missing.json")))
	assert.False(t, store.Restore())
}

func TestLogoutClearsPersistedFile(t *testing.T) {
	backend := seedBackend()
	path := filepath.Join(t.TempDir(), "session.json")

	store := newSessionStore(t, backend)
	store.SetPersister(session.NewFilePersister(path))
	login(t, store)
	store.Logout()

	fresh := newSessionStore(t, backend)
	fresh.SetPersister(session.NewFilePersister(path))
	assert.False(t, fresh.Restore())
}

func TestSelfRegisterThenLogin(t *testing.T) {
	backend := apitest.NewServer()
	store := newSessionStore(t, backend)

	user, err := store.SelfRegister(context.Background(), session.SelfRegister{
		FirstName: "New",
		LastName:  "Person",
		Email:     "new@example.com",
		Password:  "secret123!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	_, err = store.Login(context.Background(), session.Credentials{
		Email: "new@example.com", Password: "secret123!",
	})
	require.NoError(t, err)
	assert.True(t, store.IsLoggedIn())
}

func TestPasswordResetFlow(t *testing.T) {
	backend := seedBackend()
	store := newSessionStore(t, backend)
	ctx := context.Background()

	require.NoError(t, store.RequestOTP(ctx, session.OTPRequest{
		Email: testEmail, OTPType: session.OTPPasswordReset,
	}))
	require.NoError(t, store.ResetPassword(ctx, session.PasswordReset{
		Email: testEmail, Code: "000000", NewPassword: "brand-new-pw1!",
	}))

	_, err := store.Login(ctx, session.Credentials{Email: testEmail, Password: testPassword})
	require.Error(t, err)

	_, err = store.Login(ctx, session.Credentials{Email: testEmail, Password: "brand-new-pw1!"})
	require.NoError(t, err)
}
