package microservice

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/event-mate/backend/internal/config"
)

// ErrIdentityNotFound is returned when the user service knows no identity
// for the given email
var ErrIdentityNotFound = errors.New("identity not found")

type responseEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		ID string `json:"id"`
	} `json:"data"`
}

// IdentityResolver resolves a login email to the stable identity id owned
// by the user service
type IdentityResolver interface {
	ResolveEmail(email string) (string, error)
}

// IdentityClient is the HTTP IdentityResolver talking to the user service
type IdentityClient struct {
	cfg    *config.ServicesConfig
	client *http.Client
}

// NewIdentityClient creates an identity client for the configured user service
func NewIdentityClient(cfg *config.ServicesConfig) *IdentityClient {
	return &IdentityClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// ResolveEmail fetches the identity id behind an email address. A 404 from
// the user service maps to ErrIdentityNotFound; every other failure is a
// server fault of the calling service.
func (c *IdentityClient) ResolveEmail(email string) (string, error) {
	target, err := URL(c.cfg, "user", "v1/identity/"+url.PathEscape(email), nil)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	if err := setServiceHeaders(req, c.cfg.Secret); err != nil {
		return "", err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach the user service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrIdentityNotFound
	}

	var body responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode identity response: %w", err)
	}

	if !body.Success || body.Data.ID == "" {
		return "", fmt.Errorf("failed retrieval of identity: %s", body.Message)
	}

	return body.Data.ID, nil
}

// CredentialRegistrar pushes freshly minted credentials to the auth service
type CredentialRegistrar interface {
	RegisterCredentials(id, password string) error
}

// AuthClient is the HTTP CredentialRegistrar talking to the auth service
type AuthClient struct {
	cfg    *config.ServicesConfig
	client *http.Client
}

// NewAuthClient creates an auth client for the configured auth service
func NewAuthClient(cfg *config.ServicesConfig) *AuthClient {
	return &AuthClient{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterCredentials creates the auth profile for a new identity
func (c *AuthClient) RegisterCredentials(id, password string) error {
	target, err := URL(c.cfg, "auth", "v1/registration", nil)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]string{"id": id, "password": password})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if err := setServiceHeaders(req, c.cfg.Secret); err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach the auth service: %w", err)
	}
	defer resp.Body.Close()

	var body responseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode registration response: %w", err)
	}

	if !body.Success {
		return fmt.Errorf("registration rejected by the auth service: %s", body.Message)
	}

	return nil
}

func setServiceHeaders(req *http.Request, secret string) error {
	if secret == "" {
		return ErrMissingSecret
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Apikey "+secret)
	return nil
}
