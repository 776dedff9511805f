package jwt

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rsaKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return k
}

func sign(t *testing.T, m jwtv5.SigningMethod, key any, kid string, claims jwtv5.MapClaims) string {
	t.Helper()
	tok := jwtv5.NewWithClaims(m, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	raw, err := tok.SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestParser_ValidToken(t *testing.T) {
	// Given
	key := rsaKey(t)
	ks, err := NewKeySet(Key{ID: "k1", Public: &key.PublicKey})
	require.NoError(t, err)
	p := NewParser(ks, ParseOptions{})
	exp := time.Now().Add(time.Hour).Unix()

	// When
	claims, err := p.Parse(sign(t, jwtv5.SigningMethodRS256, key, "k1", jwtv5.MapClaims{"sub": 7, "exp": exp}))

	// Then: los números llegan como json.Number
	require.NoError(t, err)
	assert.Equal(t, json.Number("7"), claims["sub"])
}

func TestParser_Rejections(t *testing.T) {
	key := rsaKey(t)
	other := rsaKey(t)
	ks, err := NewKeySet(Key{ID: "k1", Public: &key.PublicKey})
	require.NoError(t, err)
	now := time.Unix(1_700_000_000, 0)
	p := NewParser(ks, ParseOptions{Now: func() time.Time { return now }})

	valid := jwtv5.MapClaims{"exp": now.Add(time.Minute).Unix()}

	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"garbage", "a.b", jwtv5.ErrTokenMalformed},
		{"wrong key", sign(t, jwtv5.SigningMethodRS256, other, "k1", valid), jwtv5.ErrTokenSignatureInvalid},
		{"unknown kid", sign(t, jwtv5.SigningMethodRS256, key, "k9", valid), jwtv5.ErrTokenUnverifiable},
		{"hmac", sign(t, jwtv5.SigningMethodHS256, []byte("secret"), "k1", valid), jwtv5.ErrTokenSignatureInvalid},
		{"expired", sign(t, jwtv5.SigningMethodRS256, key, "k1", jwtv5.MapClaims{"exp": now.Unix()}), jwtv5.ErrTokenExpired},
		{"not before", sign(t, jwtv5.SigningMethodRS256, key, "k1", jwtv5.MapClaims{"nbf": now.Add(time.Minute).Unix()}), jwtv5.ErrTokenNotValidYet},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Parse(tc.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestParser_Leeway(t *testing.T) {
	key := rsaKey(t)
	ks, err := NewKeySet(Key{Public: &key.PublicKey})
	require.NoError(t, err)
	now := time.Unix(1_700_000_000, 0)
	raw := sign(t, jwtv5.SigningMethodRS256, key, "", jwtv5.MapClaims{"exp": now.Add(-10 * time.Second).Unix()})

	strict := NewParser(ks, ParseOptions{Now: func() time.Time { return now }})
	_, err = strict.Parse(raw)
	assert.ErrorIs(t, err, jwtv5.ErrTokenExpired)

	lenient := NewParser(ks, ParseOptions{Leeway: 30 * time.Second, Now: func() time.Time { return now }})
	_, err = lenient.Parse(raw)
	assert.NoError(t, err)
}

func TestKeySet_Selection(t *testing.T) {
	k1 := rsaKey(t)
	k2 := rsaKey(t)
	ec, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	ks, err := NewKeySet(
		Key{ID: "k1", Public: &k1.PublicKey},
		Key{ID: "k2", Public: &k2.PublicKey},
		Key{ID: "e1", Public: &ec.PublicKey},
	)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"RS256", "PS256", "ES256"}, ks.Algorithms())
	p := NewParser(ks, ParseOptions{})

	_, err = p.Parse(sign(t, jwtv5.SigningMethodRS256, k2, "k2", jwtv5.MapClaims{}))
	assert.NoError(t, err)
	_, err = p.Parse(sign(t, jwtv5.SigningMethodES256, ec, "e1", jwtv5.MapClaims{}))
	assert.NoError(t, err)

	// Sin kid y con varias claves no hay forma de elegir.
	_, err = p.Parse(sign(t, jwtv5.SigningMethodRS256, k1, "", jwtv5.MapClaims{}))
	assert.ErrorIs(t, err, ErrAmbiguousKey)

	// Un kid RSA no sirve para un token ES256.
	_, err = p.Parse(sign(t, jwtv5.SigningMethodES256, ec, "k1", jwtv5.MapClaims{}))
	assert.ErrorIs(t, err, ErrAlgorithmMismatch)
}

func TestNewKeySet_Errors(t *testing.T) {
	_, err := NewKeySet()
	assert.ErrorIs(t, err, ErrNoKeys)

	ec, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)
	_, err = NewKeySet(Key{Public: &ec.PublicKey})
	assert.ErrorIs(t, err, ErrUnsupportedKey)

	_, err = NewKeySet(Key{Public: []byte("secret")})
	assert.ErrorIs(t, err, ErrUnsupportedKey)
}
