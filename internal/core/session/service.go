package session

import (
	"context"
	"net/http"

	"github.com/kmulambia/qgen-client/internal/transport"
)

// Service is the authentication API client. Authentication is not a CRUD
// resource, so it does not go through the generic resource client.
type Service struct {
	http     *transport.Client
	endpoint string
}

func NewService(http *transport.Client) *Service {
	return &Service{http: http, endpoint: "/auth"}
}

func (s *Service) Login(ctx context.Context, creds Credentials) (*Session, error) {
	var sess Session
	if err := s.http.Do(ctx, http.MethodPost, s.endpoint+"/login", nil, creds, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Service) SelfRegister(ctx context.Context, reg SelfRegister) (*User, error) {
	var user User
	if err := s.http.Do(ctx, http.MethodPost, s.endpoint+"/self-register", nil, reg, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) RequestOTP(ctx context.Context, req OTPRequest) error {
	return s.http.Do(ctx, http.MethodPost, s.endpoint+"/request-otp", nil, req, nil)
}

func (s *Service) ResetPassword(ctx context.Context, reset PasswordReset) error {
	return s.http.Do(ctx, http.MethodPost, s.endpoint+"/reset-password", nil, reset, nil)
}

func (s *Service) ChangePassword(ctx context.Context, change PasswordChange) error {
	return s.http.Do(ctx, http.MethodPost, s.endpoint+"/change-password", nil, change, nil)
}
