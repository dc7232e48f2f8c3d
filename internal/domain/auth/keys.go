package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// KeyMaterial carries the signing and verification keys of the auth realm.
// The private key is only present in the auth service itself; every other
// service loads the public half and can merely verify.
type KeyMaterial struct {
	private jwk.Key
	public  jwk.Key
}

// LoadKeyMaterial reads both RSA keys from the configured PEM files. It is
// called once at process start and any failure is fatal: a service must not
// come up without the keys it needs for token operations.
func LoadKeyMaterial(privateKeyPath, publicKeyPath string) (*KeyMaterial, error) {
	km, err := LoadVerificationKey(publicKeyPath)
	if err != nil {
		return nil, err
	}

	privData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf(
			"private key must exist in order to sign new tokens: cannot read %s: %w",
			privateKeyPath, err,
		)
	}

	priv, err := parsePrivateKeyPEM(privData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key %s: %w", privateKeyPath, err)
	}

	privKey, err := jwk.Import(priv)
	if err != nil {
		return nil, fmt.Errorf("failed to convert private key to JWK: %w", err)
	}
	if err := privKey.Set(jwk.AlgorithmKey, jwa.RS256()); err != nil {
		return nil, fmt.Errorf("failed to set algorithm: %w", err)
	}

	km.private = privKey
	return km, nil
}

// LoadVerificationKey reads only the public key. Services that consume the
// login guard without issuing tokens use this variant.
func LoadVerificationKey(publicKeyPath string) (*KeyMaterial, error) {
	pubData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf(
			"public key must exist in order to verify incoming tokens: cannot read %s: %w",
			publicKeyPath, err,
		)
	}

	pub, err := parsePublicKeyPEM(pubData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key %s: %w", publicKeyPath, err)
	}

	pubKey, err := jwk.Import(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to convert public key to JWK: %w", err)
	}
	if err := pubKey.Set(jwk.AlgorithmKey, jwa.RS256()); err != nil {
		return nil, fmt.Errorf("failed to set algorithm: %w", err)
	}

	return &KeyMaterial{public: pubKey}, nil
}

// CanSign reports whether the private key is loaded
func (km *KeyMaterial) CanSign() bool {
	return km.private != nil
}

func parsePrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	if priv, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return priv, nil
	}

	pkcs8Key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	rsaKey, ok := pkcs8Key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key is not an RSA private key")
	}

	return rsaKey, nil
}

func parsePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found")
	}

	if pub, err := x509.ParsePKCS1PublicKey(block.Bytes); err == nil {
		return pub, nil
	}

	pkixKey, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}

	rsaKey, ok := pkixKey.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("key is not an RSA public key")
	}

	return rsaKey, nil
}
