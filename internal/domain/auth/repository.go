package auth

import "gorm.io/gorm"

// Repository persists the credential profiles of the auth service
type Repository interface {
	Create(a *Auth) error
	FindByID(id string) (*Auth, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new auth repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(a *Auth) error {
	return r.db.Create(a).Error
}

func (r *repository) FindByID(id string) (*Auth, error) {
	var a Auth
	if err := r.db.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}
