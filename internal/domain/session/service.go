package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/event-mate/backend/internal/cache"
)

var (
	// ErrInvalidSession is returned when no record matches the presented jti
	ErrInvalidSession = errors.New("invalid session")
	// ErrExpiredSession is returned when the session is revoked or past its
	// validity window
	ErrExpiredSession = errors.New("session expired")
	// ErrRotationConflict is returned when an in-place rotation matched no
	// row, i.e. a concurrent refresh already consumed the presented token
	ErrRotationConflict = errors.New("session rotation conflict")
)

// Service owns the per-user collection of refresh sessions: creation with
// the max-active cap, in-place rotation and revocation. It keeps no state
// between calls; everything lives in the repository.
type Service interface {
	Create(userID, jti string) (*Session, error)
	Validate(userID, jti string) (*Session, error)
	Rotate(userID, oldJTI, newJTI string) error
	Revoke(userID, jti string) error
}

type service struct {
	repo            Repository
	revocationCache *cache.SessionRevocationCache
	ttl             time.Duration
	maxActive       int
}

// NewService creates a session Service without a revocation cache
func NewService(repo Repository, ttl time.Duration, maxActive int) Service {
	return &service{repo: repo, ttl: ttl, maxActive: maxActive}
}

// NewServiceWithCache creates a Service that additionally records revoked
// jtis in the given cache. A nil cache behaves like NewService.
func NewServiceWithCache(repo Repository, revocationCache *cache.SessionRevocationCache, ttl time.Duration, maxActive int) Service {
	return &service{repo: repo, revocationCache: revocationCache, ttl: ttl, maxActive: maxActive}
}

// Create appends a new session record and then revokes every non-revoked
// record beyond the configured cap, newest-first. The two writes are
// intentionally separate operations: a crash in between leaves at most one
// record above the cap, which the next Create corrects.
func (s *service) Create(userID, jti string) (*Session, error) {
	now := time.Now().UTC()

	sess := &Session{
		UserID:     userID,
		JTI:        jti,
		IssuedAt:   now,
		ValidUntil: now.Add(s.ttl),
	}

	if err := s.repo.Append(sess); err != nil {
		return nil, err
	}

	active, err := s.repo.ActiveByUser(userID)
	if err != nil {
		return nil, err
	}

	if len(active) > s.maxActive {
		surplus := active[s.maxActive:]
		ids := make([]uint, 0, len(surplus))
		for _, old := range surplus {
			ids = append(ids, old.ID)
		}

		if err := s.repo.RevokeByIDs(userID, ids, now); err != nil {
			return nil, err
		}

		for _, old := range surplus {
			s.cacheRevocation(old.JTI, old.ValidUntil)
		}
	}

	return sess, nil
}

// Validate looks up the record matching the presented jti and checks that
// it is still usable. Absent, revoked and overdue records are reported with
// distinct errors for the caller to collapse into one uniform signal.
func (s *service) Validate(userID, jti string) (*Session, error) {
	if s.revocationCache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		revoked, err := s.revocationCache.IsRevoked(ctx, jti)
		cancel()
		if err != nil {
			slog.Warn("revocation cache lookup failed, falling back to database", "error", err)
		} else if revoked {
			return nil, ErrExpiredSession
		}
	}

	sess, err := s.repo.FindByJTI(userID, jti)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if !sess.Active(time.Now().UTC()) {
		return nil, ErrExpiredSession
	}

	return sess, nil
}

// Rotate replaces the record identified by oldJTI in place. No record is
// appended and none evicted, so the active-session count of the user does
// not change. The compare-and-swap on the old jti guarantees at most one
// successful rotation per presented refresh token.
func (s *service) Rotate(userID, oldJTI, newJTI string) error {
	now := time.Now().UTC()

	ok, err := s.repo.Rotate(userID, oldJTI, newJTI, now, now.Add(s.ttl))
	if err != nil {
		return err
	}
	if !ok {
		return ErrRotationConflict
	}

	return nil
}

// Revoke marks the record matching jti as revoked. Revoking a missing or
// already-revoked session succeeds quietly.
func (s *service) Revoke(userID, jti string) error {
	now := time.Now().UTC()

	if err := s.repo.Revoke(userID, jti, now); err != nil {
		return err
	}

	s.cacheRevocation(jti, now.Add(s.ttl))
	return nil
}

// cacheRevocation records a revoked jti in redis, best effort. The cache
// entry only needs to outlive the token, so the TTL is the remaining
// session validity.
func (s *service) cacheRevocation(jti string, validUntil time.Time) {
	if s.revocationCache == nil {
		return
	}

	ttl := time.Until(validUntil)
	if ttl <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.revocationCache.Revoke(ctx, jti, ttl); err != nil {
		slog.Warn("failed to store session revocation in cache", "error", err, "jti", jti)
	}
}
