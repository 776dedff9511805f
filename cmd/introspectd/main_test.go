package main

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellojohn-introspect/internal/security/secrethash"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--env-file", ""))
	err := root.Execute()
	return out.String(), err
}

func TestHashSecret(t *testing.T) {
	out, err := run(t, "s3cret\n", "hash-secret")
	require.NoError(t, err)
	assert.True(t, secrethash.Verify("s3cret", strings.TrimSpace(out)))

	out, err = run(t, "s3cret", "hash-secret", "--alg", "argon2id")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "$argon2id$"))
}

func TestVerify(t *testing.T) {
	// Given: config + clave + seed en un directorio temporal
	dir := t.TempDir()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pub.pem"), pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed.yaml"), []byte("tokens:\n  - id: t1\nclients:\n  - id: c1\nusers:\n  - id: u1\n    email: u1@example.com\n"), 0o600))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
storage:
  driver: memory
  seed_path: seed.yaml
cache:
  kind: none
jwt:
  public_key_path: pub.pem
auth:
  mode: bearer
`), 0o600))

	tok := jwtv5.NewWithClaims(jwtv5.SigningMethodRS256, jwtv5.MapClaims{
		"jti": "t1", "sub": "u1", "aud": "c1", "exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString(key)
	require.NoError(t, err)

	// When
	out, err := run(t, "", "verify", "--config", cfgPath, "--token", raw)

	// Then
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, true, body["active"])
	assert.Equal(t, "u1@example.com", body["username"])

	out, err = run(t, "", "verify", "--config", cfgPath, "--token", raw+"x")
	require.NoError(t, err)
	assert.JSONEq(t, `{"active":false}`, out)
}

func TestVerify_RequiresToken(t *testing.T) {
	_, err := run(t, "", "verify", "--token", "")
	assert.Error(t, err)
}
