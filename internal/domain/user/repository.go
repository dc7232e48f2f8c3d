package user

import "gorm.io/gorm"

// Repository interface for user profile operations
type Repository interface {
	Create(u *User) error
	FindByID(id string) (*User, error)
	FindByEmail(email string) (*User, error)
	EmailExists(email string) (bool, error)
	// UsernameExists checks for the username, optionally ignoring one user
	// (the caller renaming themselves)
	UsernameExists(username, excludeID string) (bool, error)
	Update(u *User) error
	Delete(id string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new user repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(u *User) error {
	return r.db.Create(u).Error
}

func (r *repository) FindByID(id string) (*User, error) {
	var u User
	if err := r.db.Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByEmail(email string) (*User, error) {
	var u User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *repository) UsernameExists(username, excludeID string) (bool, error) {
	q := r.db.Model(&User{}).Where("username = ?", username)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(u *User) error {
	return r.db.Save(u).Error
}

func (r *repository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&User{}).Error
}
