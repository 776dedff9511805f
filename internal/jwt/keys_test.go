package jwt

import (
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-jose/go-jose/v4"
	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPEMFile(t *testing.T) {
	key := rsaKey(t)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "oauth-public.key")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))

	ks, err := LoadPEMFile(path, "")
	require.NoError(t, err)

	_, err = NewParser(ks, ParseOptions{}).Parse(sign(t, jwtv5.SigningMethodRS256, key, "", jwtv5.MapClaims{}))
	assert.NoError(t, err)
}

func TestLoadPEMFile_Errors(t *testing.T) {
	_, err := LoadPEMFile(filepath.Join(t.TempDir(), "missing.key"), "")
	assert.Error(t, err)

	_, err = ParsePublicKeyPEM([]byte("not pem"))
	assert.Error(t, err)
}

func TestParseJWKS(t *testing.T) {
	// Given: un JWKS con una clave de firma y otra de cifrado
	sigKey := rsaKey(t)
	encKey := rsaKey(t)
	raw, err := json.Marshal(jose.JSONWebKeySet{Keys: []jose.JSONWebKey{
		{Key: &sigKey.PublicKey, KeyID: "sig-1", Use: "sig", Algorithm: "RS256"},
		{Key: &encKey.PublicKey, KeyID: "enc-1", Use: "enc", Algorithm: "RSA-OAEP"},
	}})
	require.NoError(t, err)

	// When
	ks, err := ParseJWKS(raw)

	// Then
	require.NoError(t, err)
	p := NewParser(ks, ParseOptions{})
	_, err = p.Parse(sign(t, jwtv5.SigningMethodRS256, sigKey, "sig-1", jwtv5.MapClaims{}))
	assert.NoError(t, err)
	_, err = p.Parse(sign(t, jwtv5.SigningMethodRS256, encKey, "enc-1", jwtv5.MapClaims{}))
	assert.ErrorIs(t, err, ErrUnknownKID)
}

func TestParseJWKS_Errors(t *testing.T) {
	_, err := ParseJWKS([]byte("{"))
	assert.Error(t, err)

	_, err = ParseJWKS([]byte(`{"keys":[]}`))
	assert.ErrorIs(t, err, ErrNoKeys)
}

func TestLoadJWKSFile(t *testing.T) {
	key := rsaKey(t)
	raw, err := json.Marshal(jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{Key: &key.PublicKey, KeyID: "k1", Use: "sig"}}})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "jwks.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	ks, err := LoadJWKSFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"RS256", "PS256"}, ks.Algorithms())
}
