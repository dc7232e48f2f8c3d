package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "event-mate:auth"

// writeTestKeys generates an RSA key pair and writes both PEM files into a
// temp directory, returning their paths.
func writeTestKeys(t *testing.T) (string, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private-key.pem")
	pubPath := filepath.Join(dir, "public-key.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0o600))

	return privPath, pubPath
}

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()

	privPath, pubPath := writeTestKeys(t)
	keys, err := LoadKeyMaterial(privPath, pubPath)
	require.NoError(t, err)

	return NewTokenCodec(keys, testIssuer)
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Sign("u1", RoleUser, 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, RoleUser, claims.Role)
	assert.Empty(t, claims.JTI, "access tokens carry no session id")
}

func TestTokenCodec_RoundTripWithJTI(t *testing.T) {
	codec := newTestCodec(t)
	jti := uuid.NewString()

	token, err := codec.Sign("u1", RoleAdmin, time.Hour, jti)
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, jti, claims.JTI)
}

func TestTokenCodec_ExpiredToken(t *testing.T) {
	codec := newTestCodec(t)

	// already expired at issuance; the skew tolerance covers clock drift,
	// not genuinely past expiries
	token, err := codec.Sign("u1", RoleUser, -1*time.Second)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_TamperedSignature(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.Sign("u1", RoleUser, 15*time.Minute)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	sig := []byte(parts[2])
	if sig[10] == 'A' {
		sig[10] = 'B'
	} else {
		sig[10] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = codec.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_WrongIssuer(t *testing.T) {
	privPath, pubPath := writeTestKeys(t)
	keys, err := LoadKeyMaterial(privPath, pubPath)
	require.NoError(t, err)

	signer := NewTokenCodec(keys, "someone-else")
	verifier := NewTokenCodec(keys, testIssuer)

	token, err := signer.Sign("u1", RoleUser, 15*time.Minute)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_ForeignKey(t *testing.T) {
	codec := newTestCodec(t)
	other := newTestCodec(t)

	token, err := other.Sign("u1", RoleUser, 15*time.Minute)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_MissingClaims(t *testing.T) {
	codec := newTestCodec(t)

	// a well-formed, correctly signed token that lacks the uid claim
	tok, err := jwt.NewBuilder().
		Issuer(testIssuer).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Claim("role", string(RoleUser)).
		Build()
	require.NoError(t, err)

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256(), codec.keys.private))
	require.NoError(t, err)

	_, err = codec.Verify(string(signed))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_UnknownRole(t *testing.T) {
	codec := newTestCodec(t)

	tok, err := jwt.NewBuilder().
		Issuer(testIssuer).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Claim("uid", "u1").
		Claim("role", "superuser").
		Build()
	require.NoError(t, err)

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256(), codec.keys.private))
	require.NoError(t, err)

	_, err = codec.Verify(string(signed))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_GarbageInput(t *testing.T) {
	codec := newTestCodec(t)

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := codec.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
	}
}

func TestTokenCodec_VerifyOnlyCannotSign(t *testing.T) {
	_, pubPath := writeTestKeys(t)

	keys, err := LoadVerificationKey(pubPath)
	require.NoError(t, err)

	codec := NewTokenCodec(keys, testIssuer)
	_, err = codec.Sign("u1", RoleUser, time.Minute)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidToken)
}

func TestLoadKeyMaterial_MissingFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadKeyMaterial(filepath.Join(dir, "nope.pem"), filepath.Join(dir, "nope-pub.pem"))
	require.Error(t, err)

	privPath, pubPath := writeTestKeys(t)

	_, err = LoadKeyMaterial(filepath.Join(dir, "nope.pem"), pubPath)
	require.Error(t, err)

	_, err = LoadVerificationKey(privPath)
	require.Error(t, err, "a private key is not a valid verification key")
}
