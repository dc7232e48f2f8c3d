package auth

import "time"

// Role of an authenticated user
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether the role is one of the known values
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// Auth is the credential profile of an identity. The ID is minted by the
// user service and shared across services, so there is no generated key here.
type Auth struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey"`
	Password  string    `gorm:"column:password;not null"`
	Role      Role      `gorm:"column:role;type:text;not null;default:user"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Auth) TableName() string {
	return "auth_profiles"
}

// Identity is the verified caller attached to a request by the login guard
type Identity struct {
	UserID string
	Role   Role
}

// TokenPair is the result of a successful login or refresh
type TokenPair struct {
	Access  string `json:"access_token"`
	Refresh string `json:"refresh_token"`
}
