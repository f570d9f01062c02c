package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/kmulambia/qgen-client/internal/apierror"
)

// expirySoonWindow is how far ahead of the absolute expiry a token counts
// as expiring soon.
const expirySoonWindow = 5 * time.Minute

// defaultSessionTTL applies when the server supplies no usable expiry.
const defaultSessionTTL = 24 * time.Hour

// State is the persistable part of the store: everything needed to resume
// an authenticated session after a restart.
type State struct {
	Session   *Session  `json:"session"`
	Email     string    `json:"email"`
	LoggedIn  bool      `json:"is_logged_in"`
	LoginAt   time.Time `json:"login_timestamp"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Persister saves and restores session state across process restarts.
type Persister interface {
	Save(state State) error
	Load() (*State, error)
	Clear() error
}

// Store holds the single process-wide authenticated identity and answers
// the permission queries used by the route guard and UI.
type Store struct {
	log *zap.Logger

	mu      sync.RWMutex
	svc     *Service
	persist Persister
	state   State
	loading bool
	lastErr string

	now func() time.Time
}

func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{log: log, now: time.Now}
}

// SetService assigns the authentication service, completing the two-phase
// lifecycle shared with the entity stores.
func (s *Store) SetService(svc *Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.svc = svc
	s.lastErr = ""
}

// SetPersister wires optional persistence; Restore picks up a saved session.
func (s *Store) SetPersister(p Persister) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persist = p
}

func (s *Store) Configured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.svc != nil
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Login authenticates and installs the returned session. A failed login
// leaves the current state unchanged and surfaces the error.
func (s *Store) Login(ctx context.Context, creds Credentials) (*Session, error) {
	s.mu.Lock()
	if s.svc == nil {
		err := apierror.Configuration("authentication service not initialized, call SetService first")
		s.lastErr = err.Message
		s.mu.Unlock()
		return nil, err
	}
	svc := s.svc
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	sess, err := svc.Login(ctx, creds)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
		s.log.Warn("login_failed", zap.String("email", creds.Email), zap.Error(err))
		return nil, err
	}

	now := s.now()
	s.state = State{
		Session:   sess,
		Email:     creds.Email,
		LoggedIn:  true,
		LoginAt:   now,
		ExpiresAt: s.tokenExpiry(sess, now),
	}
	s.saveLocked()
	return sess, nil
}

// tokenExpiry resolves the absolute expiry: the token's declared timestamp,
// then the JWT exp claim, then a default TTL.
func (s *Store) tokenExpiry(sess *Session, now time.Time) time.Time {
	if sess.Token != nil {
		if sess.Token.ExpiresAt != "" {
			if t, err := time.Parse(time.RFC3339, sess.Token.ExpiresAt); err == nil {
				return t
			}
		}
		if sess.Token.JWT != "" {
			parser := jwt.NewParser()
			claims := jwt.RegisteredClaims{}
			if _, _, err := parser.ParseUnverified(sess.Token.JWT, &claims); err == nil && claims.ExpiresAt != nil {
				return claims.ExpiresAt.Time
			}
		}
	}
	return now.Add(defaultSessionTTL)
}

// Logout clears all session data from any state.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
	s.lastErr = ""
	if s.persist != nil {
		if err := s.persist.Clear(); err != nil {
			s.log.Warn("session_clear_failed", zap.Error(err))
		}
	}
}

// ClearSession is an alias for Logout, used as the transport's 401 hook.
func (s *Store) ClearSession() {
	s.Logout()
}

// Restore loads a persisted session and validates it; an expired or absent
// session leaves the store anonymous.
func (s *Store) Restore() bool {
	s.mu.Lock()
	if s.persist == nil {
		s.mu.Unlock()
		return false
	}
	state, err := s.persist.Load()
	if err != nil || state == nil {
		s.mu.Unlock()
		return false
	}
	s.state = *state
	s.mu.Unlock()
	return s.ValidateSession()
}

// ValidateSession reports whether a live session is present. An expired
// token triggers a logout as a side effect.
func (s *Store) ValidateSession() bool {
	s.mu.RLock()
	loggedIn := s.state.LoggedIn && s.state.Session != nil
	expired := s.isExpiredLocked()
	s.mu.RUnlock()

	if !loggedIn {
		return false
	}
	if expired {
		s.Logout()
		return false
	}
	return true
}

func (s *Store) isExpiredLocked() bool {
	if s.state.ExpiresAt.IsZero() {
		return true
	}
	return !s.now().Before(s.state.ExpiresAt)
}

func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LoggedIn
}

func (s *Store) IsTokenExpired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isExpiredLocked()
}

func (s *Store) IsTokenExpiringSoon() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.ExpiresAt.IsZero() {
		return true
	}
	return !s.now().Add(expirySoonWindow).Before(s.state.ExpiresAt)
}

func (s *Store) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ExpiresAt
}

func (s *Store) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Email
}

func (s *Store) Session() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Session
}

func (s *Store) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Session == nil {
		return nil
	}
	return s.state.Session.User
}

func (s *Store) UserRole() *Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Session == nil {
		return nil
	}
	return s.state.Session.Role
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Session == nil || s.state.Session.Token == nil {
		return ""
	}
	return s.state.Session.Token.JWT
}

// AuthorizationHeader implements transport.TokenSource; empty when no
// complete token is present.
func (s *Store) AuthorizationHeader() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Session == nil || s.state.Session.Token == nil {
		return ""
	}
	token := s.state.Session.Token
	if token.TokenType == "" || token.JWT == "" {
		return ""
	}
	return token.TokenType + " " + token.JWT
}

func (s *Store) Permissions() []Permission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Session == nil {
		return nil
	}
	out := make([]Permission, len(s.state.Session.Permissions))
	copy(out, s.state.Session.Permissions)
	return out
}

func (s *Store) PermissionCodes() []string {
	perms := s.Permissions()
	codes := make([]string, len(perms))
	for i, p := range perms {
		codes[i] = p.Code
	}
	return codes
}

func (s *Store) PermissionsByGroup() map[string][]Permission {
	groups := make(map[string][]Permission)
	for _, p := range s.Permissions() {
		group := p.Group
		if group == "" {
			group = "uncategorized"
		}
		groups[group] = append(groups[group], p)
	}
	return groups
}

// IsSuperAdmin reports whether the session holds the universal code.
func (s *Store) IsSuperAdmin() bool {
	for _, p := range s.Permissions() {
		if p.Code == Universal {
			return true
		}
	}
	return false
}

// checkable reports whether permission checks may succeed at all:
// unauthenticated or expired sessions fail every check.
func (s *Store) checkable() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LoggedIn && s.state.Session != nil && !s.isExpiredLocked()
}

// HasPermission checks one required code against the held set: universal
// short-circuit, then exact match, then wildcard prefix match.
func (s *Store) HasPermission(code string) bool {
	if !s.checkable() {
		return false
	}
	return MatchAny(s.PermissionCodes(), code)
}

// HasAnyPermission is a logical OR across codes. An empty input is never
// satisfied, even for the universal permission.
func (s *Store) HasAnyPermission(codes []string) bool {
	if len(codes) == 0 || !s.checkable() {
		return false
	}
	if s.IsSuperAdmin() {
		return true
	}
	held := s.PermissionCodes()
	for _, code := range codes {
		if MatchAny(held, code) {
			return true
		}
	}
	return false
}

// HasAllPermissions is a logical AND across codes.
func (s *Store) HasAllPermissions(codes []string) bool {
	if len(codes) == 0 || !s.checkable() {
		return false
	}
	if s.IsSuperAdmin() {
		return true
	}
	held := s.PermissionCodes()
	for _, code := range codes {
		if !MatchAny(held, code) {
			return false
		}
	}
	return true
}

// HasGroupPermission reports whether any held permission belongs to group.
func (s *Store) HasGroupPermission(group string) bool {
	if !s.checkable() {
		return false
	}
	if s.IsSuperAdmin() {
		return true
	}
	for _, p := range s.Permissions() {
		if p.Group == group {
			return true
		}
	}
	return false
}

func (s *Store) GroupPermissions(group string) []Permission {
	if !s.checkable() {
		return nil
	}
	var out []Permission
	for _, p := range s.Permissions() {
		if p.Group == group {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) HasRole(name string) bool {
	role := s.UserRole()
	return s.checkable() && role != nil && role.Name == name
}

func (s *Store) HasAnyRole(names []string) bool {
	role := s.UserRole()
	if !s.checkable() || role == nil {
		return false
	}
	for _, name := range names {
		if role.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) IsSystemRole() bool {
	role := s.UserRole()
	return s.checkable() && role != nil && role.IsSystem
}

// SelfRegister, RequestOTP, ResetPassword and ChangePassword forward to the
// authentication service with the store's bookkeeping; none of them touch
// the current session.
func (s *Store) SelfRegister(ctx context.Context, reg SelfRegister) (*User, error) {
	var user *User
	err := s.run(func(svc *Service) error {
		var opErr error
		user, opErr = svc.SelfRegister(ctx, reg)
		return opErr
	})
	return user, err
}

func (s *Store) RequestOTP(ctx context.Context, req OTPRequest) error {
	return s.run(func(svc *Service) error {
		return svc.RequestOTP(ctx, req)
	})
}

func (s *Store) ResetPassword(ctx context.Context, reset PasswordReset) error {
	return s.run(func(svc *Service) error {
		return svc.ResetPassword(ctx, reset)
	})
}

func (s *Store) ChangePassword(ctx context.Context, change PasswordChange) error {
	return s.run(func(svc *Service) error {
		return svc.ChangePassword(ctx, change)
	})
}

func (s *Store) run(op func(svc *Service) error) error {
	s.mu.Lock()
	if s.svc == nil {
		err := apierror.Configuration("authentication service not initialized, call SetService first")
		s.lastErr = err.Message
		s.mu.Unlock()
		return err
	}
	svc := s.svc
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	err := op(svc)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
	}
	s.mu.Unlock()
	return err
}

func (s *Store) saveLocked() {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(s.state); err != nil {
		s.log.Warn("session_save_failed", zap.Error(err))
	}
}
