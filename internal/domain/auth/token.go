package auth

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

// ClockSkewTolerance is applied to the nbf boundary during verification so
// that tokens minted by a peer with a slightly fast clock are not rejected.
// Expiry is checked strictly: an expired token is never accepted.
const ClockSkewTolerance = 5 * time.Second

// TokenCodec signs and verifies the RS256 tokens of the auth realm.
// Access tokens carry {uid, role}, refresh tokens additionally carry the
// session id in the jti claim.
type TokenCodec struct {
	keys   *KeyMaterial
	issuer string
}

// Claims are the verified claims of a token
type Claims struct {
	UserID string
	Role   Role
	JTI    string
}

// NewTokenCodec creates a codec bound to the given keys and issuer
func NewTokenCodec(keys *KeyMaterial, issuer string) *TokenCodec {
	return &TokenCodec{keys: keys, issuer: issuer}
}

// Sign issues a token for the given subject and role with the given
// lifetime. An optional jti turns it into a refresh token tied to a session.
func (c *TokenCodec) Sign(userID string, role Role, lifetime time.Duration, jti ...string) (string, error) {
	if !c.keys.CanSign() {
		return "", fmt.Errorf("private key is not loaded, this codec can only verify tokens")
	}

	now := time.Now()

	builder := jwt.NewBuilder().
		Issuer(c.issuer).
		IssuedAt(now).
		Expiration(now.Add(lifetime)).
		Claim("uid", userID).
		Claim("role", string(role))

	if len(jti) > 0 && jti[0] != "" {
		builder = builder.JwtID(jti[0])
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256(), c.keys.private))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// Verify parses and verifies a token string. Signature, issuer and claim
// failures all surface as ErrInvalidToken; anything unexpected (such as
// missing key material) propagates as-is and must be treated as a server
// fault by the caller.
func (c *TokenCodec) Verify(raw string) (*Claims, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.RS256(), c.keys.public),
		jwt.WithIssuer(c.issuer),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(ClockSkewTolerance),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	// the skew option above also relaxes the exp check, so re-check it
	// strictly here: a token past its expiry is invalid, full stop
	exp, _ := token.Expiration()
	if exp.IsZero() || time.Now().After(exp) {
		return nil, fmt.Errorf("%w: token expired", ErrInvalidToken)
	}

	var uidAny any
	if err := token.Get("uid", &uidAny); err != nil {
		return nil, fmt.Errorf("%w: missing uid claim", ErrInvalidToken)
	}
	uid, ok := uidAny.(string)
	if !ok || uid == "" {
		return nil, fmt.Errorf("%w: missing uid claim", ErrInvalidToken)
	}

	var roleAny any
	if err := token.Get("role", &roleAny); err != nil {
		return nil, fmt.Errorf("%w: missing role claim", ErrInvalidToken)
	}
	roleStr, ok := roleAny.(string)
	if !ok || !Role(roleStr).Valid() {
		return nil, fmt.Errorf("%w: missing or unknown role claim", ErrInvalidToken)
	}

	jti, _ := token.JwtID()

	return &Claims{UserID: uid, Role: Role(roleStr), JTI: jti}, nil
}
