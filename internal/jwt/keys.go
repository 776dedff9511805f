package jwt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoKeys            = errors.New("jwt: key set is empty")
	ErrUnknownKID        = errors.New("jwt: unknown kid")
	ErrAmbiguousKey      = errors.New("jwt: token has no kid and key set holds more than one key")
	ErrUnsupportedKey    = errors.New("jwt: unsupported public key type")
	ErrAlgorithmMismatch = errors.New("jwt: key does not match token algorithm")
)

// Key es una clave pública de verificación con su kid opcional.
type Key struct {
	ID     string
	Public crypto.PublicKey
}

// KeySource entrega la clave de verificación para un token ya decodificado.
// Se carga una sola vez al arrancar y es de solo lectura.
type KeySource interface {
	Keyfunc() jwtv5.Keyfunc
	Algorithms() []string
}

// KeySet es un KeySource inmutable. Es seguro para uso concurrente porque nunca
// se modifica después de NewKeySet.
type KeySet struct {
	byKID map[string]crypto.PublicKey
	keys  []crypto.PublicKey
	algs  []string
}

// NewKeySet construye un KeySet. Las claves RSA habilitan RS256/PS256 y las
// ECDSA P-256 habilitan ES256.
func NewKeySet(keys ...Key) (*KeySet, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	ks := &KeySet{byKID: make(map[string]crypto.PublicKey, len(keys))}
	seen := map[string]bool{}
	for _, k := range keys {
		algs, err := algorithmsFor(k.Public)
		if err != nil {
			return nil, err
		}
		for _, a := range algs {
			if !seen[a] {
				seen[a] = true
				ks.algs = append(ks.algs, a)
			}
		}
		if k.ID != "" {
			ks.byKID[k.ID] = k.Public
		}
		ks.keys = append(ks.keys, k.Public)
	}
	return ks, nil
}

// Algorithms retorna los algoritmos aceptados por las claves del set.
func (ks *KeySet) Algorithms() []string {
	out := make([]string, len(ks.algs))
	copy(out, ks.algs)
	return out
}

// Len retorna la cantidad de claves del set.
func (ks *KeySet) Len() int { return len(ks.keys) }

// Keyfunc resuelve la clave por kid; sin kid solo vale si hay una única clave.
func (ks *KeySet) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		var pub crypto.PublicKey
		if kid, _ := t.Header["kid"].(string); kid != "" {
			k, ok := ks.byKID[kid]
			if !ok {
				if len(ks.keys) != 1 || len(ks.byKID) != 0 {
					return nil, fmt.Errorf("%w: %s", ErrUnknownKID, kid)
				}
				k = ks.keys[0]
			}
			pub = k
		} else {
			if len(ks.keys) != 1 {
				return nil, ErrAmbiguousKey
			}
			pub = ks.keys[0]
		}

		algs, err := algorithmsFor(pub)
		if err != nil {
			return nil, err
		}
		alg := t.Method.Alg()
		for _, a := range algs {
			if a == alg {
				return pub, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrAlgorithmMismatch, alg)
	}
}

func algorithmsFor(pub crypto.PublicKey) ([]string, error) {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return []string{"RS256", "PS256"}, nil
	case *ecdsa.PublicKey:
		if k.Curve.Params().BitSize != 256 {
			return nil, fmt.Errorf("%w: ecdsa curve %s", ErrUnsupportedKey, k.Curve.Params().Name)
		}
		return []string{"ES256"}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKey, pub)
	}
}

// ParsePublicKeyPEM acepta una clave pública RSA o EC en PEM (PKIX, PKCS1 o certificado).
func ParsePublicKeyPEM(pemBytes []byte) (crypto.PublicKey, error) {
	if k, err := jwtv5.ParseRSAPublicKeyFromPEM(pemBytes); err == nil {
		return k, nil
	}
	k, err := jwtv5.ParseECPublicKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("jwt: parse public key pem: %w", err)
	}
	return k, nil
}

// LoadPEMFile lee la clave pública desde disco (ej: oauth-public.key).
func LoadPEMFile(path, kid string) (*KeySet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jwt: read public key: %w", err)
	}
	pub, err := ParsePublicKeyPEM(b)
	if err != nil {
		return nil, err
	}
	return NewKeySet(Key{ID: kid, Public: pub})
}
