package user

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/event-mate/backend/internal/microservice"
)

var (
	// ErrUserNotFound is returned when no profile matches the lookup
	ErrUserNotFound = errors.New("user not found")
	// ErrCredentialsInUse is returned when the email or username is taken
	ErrCredentialsInUse = errors.New("the email or username is already in use")
)

// Service implements the profile operations of the user service, including
// the identity resolution consumed by auth login.
type Service struct {
	repo      Repository
	registrar microservice.CredentialRegistrar
}

// NewService creates a new user service
func NewService(repo Repository, registrar microservice.CredentialRegistrar) *Service {
	return &Service{repo: repo, registrar: registrar}
}

// GetUser returns a profile by id
func (s *Service) GetUser(id string) (*User, error) {
	u, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// IdentityByEmail resolves a login email to the profile id. This is the
// identity endpoint the auth service calls during login.
func (s *Service) IdentityByEmail(email string) (string, error) {
	u, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	return u.ID.String(), nil
}

// CheckAvailability reports whether the given email and/or username are
// still free. Empty arguments are skipped.
func (s *Service) CheckAvailability(email, username string) (*Availability, error) {
	av := &Availability{}

	if email != "" {
		exists, err := s.repo.EmailExists(email)
		if err != nil {
			return nil, err
		}
		free := !exists
		av.Email = &free
	}

	if username != "" {
		exists, err := s.repo.UsernameExists(username, "")
		if err != nil {
			return nil, err
		}
		free := !exists
		av.Username = &free
	}

	return av, nil
}

// Register creates a profile and pushes the credentials to the auth
// service. When the auth service rejects them the profile is rolled back so
// the two stores stay consistent.
func (s *Service) Register(req RegistrationRequest) (*User, error) {
	av, err := s.CheckAvailability(req.Email, req.Username)
	if err != nil {
		return nil, err
	}
	if av.Email == nil || !*av.Email || av.Username == nil || !*av.Username {
		return nil, ErrCredentialsInUse
	}

	u := &User{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Surname:  req.Surname,
	}

	if err := s.repo.Create(u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCredentialsInUse
		}
		return nil, err
	}

	if err := s.registrar.RegisterCredentials(u.ID.String(), req.Password); err != nil {
		if delErr := s.repo.Delete(u.ID.String()); delErr != nil {
			slog.Warn("failed to roll back profile after registration failure",
				"error", delErr, "user_id", u.ID.String())
		}
		return nil, fmt.Errorf("failed to register the user in the auth service: %w", err)
	}

	return u, nil
}

// UpdateProfile updates the mutable profile fields of a user
func (s *Service) UpdateProfile(id string, req UpdateProfileRequest) (*User, error) {
	u, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}

	if req.Username != "" && req.Username != u.Username {
		taken, err := s.repo.UsernameExists(req.Username, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrCredentialsInUse
		}
		u.Username = req.Username
	}

	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Surname != "" {
		u.Surname = req.Surname
	}
	u.Bio = req.Bio

	if err := s.repo.Update(u); err != nil {
		return nil, err
	}

	return u, nil
}
