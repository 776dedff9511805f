package oauth

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/hellojohn-introspect/internal/domain/repository"
	dto "github.com/dropDatabas3/hellojohn-introspect/internal/http/dto/oauth"
)

// DefaultUsernameField es la propiedad del usuario expuesta como "username".
const DefaultUsernameField = "email"

// NormalizerDeps contains dependencies for the normalizer.
type NormalizerDeps struct {
	Users         repository.UserRepository
	UsernameField string // email | name | id
}

// Normalizer turns a VerifiedToken into the active introspection response.
type Normalizer struct {
	users         repository.UserRepository
	usernameField string
}

// NewNormalizer creates a new Normalizer.
func NewNormalizer(deps NormalizerDeps) *Normalizer {
	field := strings.ToLower(strings.TrimSpace(deps.UsernameField))
	if field == "" {
		field = DefaultUsernameField
	}
	return &Normalizer{users: deps.Users, usernameField: field}
}

// Normalize resolves the subject and builds the active shape.
// A missing user is reported as a *Failure (inactive). Any other directory
// error is returned as is and ends up as a 500.
func (n *Normalizer) Normalize(ctx context.Context, vt *VerifiedToken) (*dto.IntrospectResponse, error) {
	user, err := n.users.FindByID(ctx, vt.SubjectID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fail(ReasonUserNotFound, err)
		}
		return nil, fmt.Errorf("user directory: %w", err)
	}
	if user == nil {
		return nil, fail(ReasonUserNotFound, nil)
	}

	return dto.Active(dto.ActiveClaims{
		Scope:    strings.TrimSpace(strings.Join(vt.Scopes, " ")),
		ClientID: vt.Audience,
		Username: user.Field(n.usernameField),
		Exp:      vt.ExpiresAt,
		Iat:      vt.IssuedAt,
		Nbf:      vt.NotBefore,
		Sub:      vt.Subject,
		Aud:      vt.Audience,
		Jti:      vt.ID,
	}), nil
}
