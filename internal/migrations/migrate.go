package migrations

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/event-mate/backend/internal/domain/auth"
	"github.com/event-mate/backend/internal/domain/session"
	"github.com/event-mate/backend/internal/domain/user"
)

// RunAuthMigrations migrates the tables owned by the auth service
func RunAuthMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&auth.Auth{}, &session.Session{}); err != nil {
		return fmt.Errorf("failed to make migrations: %w", err)
	}
	return nil
}

// RunUserMigrations migrates the tables owned by the user service
func RunUserMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&user.User{}); err != nil {
		return fmt.Errorf("failed to make migrations: %w", err)
	}
	return nil
}
