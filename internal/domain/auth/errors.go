package auth

import "errors"

var (
	// ErrInvalidToken is returned when a token fails cryptographic or
	// claims verification: bad signature, wrong issuer, expired, not yet
	// active, or missing the uid/role claims. It always means the caller
	// has to authenticate again and is never a server fault.
	ErrInvalidToken = errors.New("the provided token is either invalid or expired")

	// ErrUnauthenticated is the uniform business-level authentication
	// failure. Wrong password, unknown identity and revoked/expired/missing
	// sessions all map onto it so that responses leak nothing about which
	// check failed.
	ErrUnauthenticated = errors.New("please check your login credentials")

	// ErrProfileExists is returned when registering credentials for an
	// identity that already has an auth profile.
	ErrProfileExists = errors.New("credentials for this identity already exist")
)
