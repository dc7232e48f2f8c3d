package session

import (
	"time"

	"gorm.io/gorm"
)

// Repository is the persistence contract of the session store. All writes
// are targeted updates keyed by user and jti so that concurrent requests of
// the same user never clobber each other's records.
type Repository interface {
	Append(sess *Session) error
	FindByJTI(userID, jti string) (*Session, error)
	// ActiveByUser returns the non-revoked sessions of a user, newest first
	ActiveByUser(userID string) ([]Session, error)
	// RevokeByIDs marks the given records revoked in one bulk update
	RevokeByIDs(userID string, ids []uint, at time.Time) error
	// Revoke marks a single record revoked; missing records are a no-op
	Revoke(userID, jti string, at time.Time) error
	// Rotate replaces jti, issued_at and valid_until in place, keyed by the
	// old jti. It reports false when no row matched, meaning the presented
	// token lost a rotation race or was revoked in the meantime.
	Rotate(userID, oldJTI, newJTI string, issuedAt, validUntil time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a session repository backed by the given database
func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Append(sess *Session) error {
	return r.db.Create(sess).Error
}

func (r *repository) FindByJTI(userID, jti string) (*Session, error) {
	var sess Session
	err := r.db.Where("user_id = ? AND jti = ?", userID, jti).First(&sess).Error
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (r *repository) ActiveByUser(userID string) ([]Session, error) {
	var sessions []Session
	err := r.db.
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Order("issued_at DESC, id DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repository) RevokeByIDs(userID string, ids []uint, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&Session{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Update("revoked_at", at).Error
}

func (r *repository) Revoke(userID, jti string, at time.Time) error {
	return r.db.Model(&Session{}).
		Where("user_id = ? AND jti = ? AND revoked_at IS NULL", userID, jti).
		Update("revoked_at", at).Error
}

func (r *repository) Rotate(userID, oldJTI, newJTI string, issuedAt, validUntil time.Time) (bool, error) {
	res := r.db.Model(&Session{}).
		Where("user_id = ? AND jti = ? AND revoked_at IS NULL", userID, oldJTI).
		Updates(map[string]any{
			"jti":         newJTI,
			"issued_at":   issuedAt,
			"valid_until": validUntil,
			"revoked_at":  nil,
		})

	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected == 1, nil
}
