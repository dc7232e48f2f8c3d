package auth

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/event-mate/backend/internal/config"
	"github.com/event-mate/backend/internal/domain/session"
	"github.com/event-mate/backend/internal/microservice"
)

// Service orchestrates the session lifecycle: login mints a token pair and
// a new session, refresh rotates an existing session in place, logout
// revokes one best-effort.
type Service struct {
	cfg        *config.AuthConfig
	codec      *TokenCodec
	repo       Repository
	sessions   session.Service
	identities microservice.IdentityResolver
}

// NewService creates a new auth service
func NewService(
	cfg *config.AuthConfig,
	codec *TokenCodec,
	repo Repository,
	sessions session.Service,
	identities microservice.IdentityResolver,
) *Service {
	return &Service{
		cfg:        cfg,
		codec:      codec,
		repo:       repo,
		sessions:   sessions,
		identities: identities,
	}
}

// Login authenticates an email/password pair and returns a fresh token
// pair. Unknown emails and wrong passwords are indistinguishable from the
// outside so the endpoint cannot be used to enumerate accounts.
func (s *Service) Login(email, password string) (*TokenPair, error) {
	id, err := s.identities.ResolveEmail(email)
	if err != nil {
		if errors.Is(err, microservice.ErrIdentityNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to authenticate user: %w", err)
	}

	a, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if !VerifyPassword(password, a.Password) {
		return nil, ErrUnauthenticated
	}

	access, err := s.codec.Sign(a.ID, a.Role, s.cfg.AccessTTL())
	if err != nil {
		return nil, err
	}

	refresh, err := s.createRefreshToken(a)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// createRefreshToken mints a refresh token with a fresh jti and records the
// matching session, letting the session service evict the oldest ones
// beyond the cap.
func (s *Service) createRefreshToken(a *Auth) (string, error) {
	jti := uuid.NewString()

	token, err := s.codec.Sign(a.ID, a.Role, s.cfg.RefreshTTL(), jti)
	if err != nil {
		return "", err
	}

	if _, err := s.sessions.Create(a.ID, jti); err != nil {
		return "", err
	}

	return token, nil
}

// Refresh verifies the presented refresh token against its session record
// and rotates the record in place, returning a new token pair. Absent,
// revoked and overdue sessions all produce the same ErrUnauthenticated so
// the endpoint is not a revocation oracle.
func (s *Service) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return nil, err
	}

	// no jti means someone presented an access token here
	if claims.JTI == "" {
		return nil, ErrUnauthenticated
	}

	a, err := s.repo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if _, err := s.sessions.Validate(a.ID, claims.JTI); err != nil {
		if errors.Is(err, session.ErrInvalidSession) || errors.Is(err, session.ErrExpiredSession) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	newJTI := uuid.NewString()

	refresh, err := s.codec.Sign(a.ID, a.Role, s.cfg.RefreshTTL(), newJTI)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Rotate(a.ID, claims.JTI, newJTI); err != nil {
		// a concurrent refresh consumed the presented token first
		if errors.Is(err, session.ErrRotationConflict) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	access, err := s.codec.Sign(a.ID, a.Role, s.cfg.AccessTTL())
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Logout revokes the session behind a refresh token, best effort. Invalid
// tokens, tokens without a jti and unknown sessions are silently ignored;
// logging out twice must succeed quietly. Unexpected verification errors
// still propagate so they get logged upstream.
func (s *Service) Logout(refreshToken string) error {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return nil
		}
		return err
	}

	if claims.JTI == "" {
		return nil
	}

	return s.sessions.Revoke(claims.UserID, claims.JTI)
}

// Register creates the credential profile for an identity minted by the
// user service.
func (s *Service) Register(id, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	a := &Auth{ID: id, Password: hash, Role: RoleUser}

	if err := s.repo.Create(a); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrProfileExists
		}
		return err
	}

	return nil
}
