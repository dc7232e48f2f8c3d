package user

import "github.com/event-mate/backend/internal/database"

// User is the public profile of an identity. Credentials live in the auth
// service; the two share the same id.
type User struct {
	database.BaseModel
	Username string  `gorm:"column:username;unique;not null" json:"username"`
	Email    string  `gorm:"column:email;unique;not null" json:"email"`
	Name     string  `gorm:"column:name;not null" json:"name"`
	Surname  string  `gorm:"column:surname;not null" json:"surname"`
	Bio      *string `gorm:"column:bio;type:text" json:"bio,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// RegistrationRequest is the signup request body
type RegistrationRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the profile update request body
type UpdateProfileRequest struct {
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Surname  string  `json:"surname"`
	Bio      *string `json:"bio"`
}

// Availability reports which of the requested credentials are still free
type Availability struct {
	Email    *bool `json:"email,omitempty"`
	Username *bool `json:"username,omitempty"`
}
