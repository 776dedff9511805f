package jwt

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-jose/go-jose/v4"
)

// ParseJWKS construye un KeySet con las claves públicas de firma de un JWKS.
// Las claves con use distinto de "sig" se ignoran.
func ParseJWKS(raw []byte) (*KeySet, error) {
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("jwt: decode jwks: %w", err)
	}

	keys := make([]Key, 0, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.Use != "" && jwk.Use != "sig" {
			continue
		}
		pub := jwk.Public()
		if !pub.Valid() {
			return nil, fmt.Errorf("jwt: invalid jwk %q", jwk.KeyID)
		}
		keys = append(keys, Key{ID: jwk.KeyID, Public: pub.Key})
	}
	return NewKeySet(keys...)
}

// LoadJWKSFile lee un JWKS desde disco.
func LoadJWKSFile(path string) (*KeySet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jwt: read jwks: %w", err)
	}
	return ParseJWKS(b)
}
