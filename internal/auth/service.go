package auth

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/tortaquiz/internal/auth/jwt"
)

var (
	// ErrAdminDisabled means no secret or password hash is configured.
	ErrAdminDisabled = errors.New("admin access disabled")
	// ErrInvalidCredentials is returned for a wrong admin password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const adminSubject = "admin"

// ServiceOptions configures the admin auth service.
type ServiceOptions struct {
	TokenConfig  jwt.TokenConfig
	PasswordHash string
}

// Service issues and validates admin tokens for pool maintenance endpoints.
type Service struct {
	tokenMgr     *jwt.Manager
	hasSecret    bool
	passwordHash string
	logger       zerolog.Logger
}

// NewService creates the admin auth service.
func NewService(opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		tokenMgr:     jwt.NewManager(opts.TokenConfig),
		hasSecret:    len(opts.TokenConfig.Secret) > 0,
		passwordHash: opts.PasswordHash,
		logger:       logger.With().Str("component", "admin_auth").Logger(),
	}
}

// Enabled reports whether admin login can succeed at all.
func (s *Service) Enabled() bool {
	return s.hasSecret && s.passwordHash != ""
}

// Login exchanges the admin password for a bearer token.
func (s *Service) Login(req LoginRequest) (*TokenResponse, error) {
	if !s.Enabled() {
		return nil, ErrAdminDisabled
	}
	if err := VerifyPassword(s.passwordHash, req.Password); err != nil {
		s.logger.Warn().Msg("admin login rejected")
		return nil, ErrInvalidCredentials
	}

	resp, err := s.IssueToken()
	if err != nil {
		return nil, err
	}
	s.logger.Info().Msg("admin logged in")
	return resp, nil
}

// IssueToken signs a token without a password check; used by the admin CLI.
func (s *Service) IssueToken() (*TokenResponse, error) {
	token, _, err := s.tokenMgr.GenerateAdminToken(adminSubject)
	if err != nil {
		if errors.Is(err, jwt.ErrNoSecret) {
			return nil, ErrAdminDisabled
		}
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenMgr.TTL().Seconds()),
	}, nil
}

// ValidateToken validates an admin access token and returns its claims.
func (s *Service) ValidateToken(token string) (*jwt.Claims, error) {
	return s.tokenMgr.Validate(token)
}
