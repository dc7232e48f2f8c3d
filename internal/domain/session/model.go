package session

import "time"

// Session is the persisted counterpart of a refresh token. A refresh token
// is only usable while the record sharing its jti is present, not revoked
// and not past its validity window.
//
// The numeric primary key deliberately stays an autoincrement: eviction
// orders by issued_at with the insert order as tie-break, which the
// sequence gives us for free.
type Session struct {
	ID         uint       `gorm:"primaryKey"`
	UserID     string     `gorm:"column:user_id;type:uuid;not null;index"`
	JTI        string     `gorm:"column:jti;not null;uniqueIndex"`
	IssuedAt   time.Time  `gorm:"column:issued_at;not null"`
	ValidUntil time.Time  `gorm:"column:valid_until;not null"`
	RevokedAt  *time.Time `gorm:"column:revoked_at"`
}

func (Session) TableName() string {
	return "auth_sessions"
}

// Active reports whether the session is usable at the given instant
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ValidUntil)
}
