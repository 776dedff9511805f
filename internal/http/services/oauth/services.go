// Package oauth contiene los services del dominio OAuth2: verificación del
// token, normalización de claims e introspección (RFC 7662).
package oauth

import (
	"github.com/dropDatabas3/hellojohn-introspect/internal/domain/repository"
)

// Deps contiene las dependencias para crear los services OAuth.
type Deps struct {
	Parser        TokenParser
	AccessTokens  repository.AccessTokenRepository
	Clients       repository.ClientRepository
	Users         repository.UserRepository
	UsernameField string
}

// Services agrupa todos los services del dominio OAuth.
type Services struct {
	Verifier   *Verifier
	Normalizer *Normalizer
	Introspect IntrospectService
}

// NewServices crea el agregador de services OAuth.
func NewServices(d Deps) Services {
	verifier := NewVerifier(VerifierDeps{
		Parser:       d.Parser,
		AccessTokens: d.AccessTokens,
		Clients:      d.Clients,
	})
	normalizer := NewNormalizer(NormalizerDeps{
		Users:         d.Users,
		UsernameField: d.UsernameField,
	})
	return Services{
		Verifier:   verifier,
		Normalizer: normalizer,
		Introspect: NewIntrospectService(IntrospectDeps{
			Verifier:   verifier,
			Normalizer: normalizer,
		}),
	}
}
