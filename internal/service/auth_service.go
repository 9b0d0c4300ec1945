package service

import (
	"context"

	"inventory-service/internal/identity"
	"inventory-service/internal/util"

	"go.uber.org/zap"
)

// Authenticator is the identity collaborator
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*identity.Principal, error)
	SignUp(ctx context.Context, email, password, displayName string) (*identity.Principal, error)
}

// AuthService relays credentials to the identity service
type AuthService struct {
	auth   Authenticator
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(auth Authenticator) *AuthService {
	return &AuthService{
		auth:   auth,
		logger: util.GetLogger(),
	}
}

// Login signs a user in with email and password
func (s *AuthService) Login(ctx context.Context, email, password string) (*identity.Principal, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	p, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		util.AuthAttemptsTotal.WithLabelValues("login", resultOf(err)).Inc()
		s.logger.Warn("Login failed", zap.String("code", identity.CodeOf(err)), zap.Error(err))
		return nil, err
	}

	util.AuthAttemptsTotal.WithLabelValues("login", "ok").Inc()
	s.logger.Info("User logged in", zap.String("uid", p.UID))
	return p, nil
}

// Register creates an account; name becomes the display name
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*identity.Principal, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Register")
	defer span.End()

	p, err := s.auth.SignUp(ctx, email, password, name)
	if err != nil {
		util.AuthAttemptsTotal.WithLabelValues("register", resultOf(err)).Inc()
		s.logger.Warn("Registration failed", zap.String("code", identity.CodeOf(err)), zap.Error(err))
		return nil, err
	}

	util.AuthAttemptsTotal.WithLabelValues("register", "ok").Inc()
	s.logger.Info("User registered", zap.String("uid", p.UID))
	return p, nil
}

func resultOf(err error) string {
	if code := identity.CodeOf(err); code != "" {
		return code
	}
	return "error"
}
