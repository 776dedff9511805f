package auth

import (
	"context"
	"net/http"
	"strings"
)

// TokenChecker valida el access token propio del caller y retorna el client
// al que pertenece. El Verifier de introspección lo implementa.
type TokenChecker interface {
	CheckBearer(ctx context.Context, raw string) (clientID string, ok bool)
}

// Bearer autentica al caller por su propio access token (resource server).
type Bearer struct {
	checker TokenChecker
}

// NewBearer creates a Bearer authenticator.
func NewBearer(checker TokenChecker) *Bearer {
	return &Bearer{checker: checker}
}

func (b *Bearer) Name() string { return "bearer" }

func (b *Bearer) Supports(r *http.Request) bool {
	_, ok := bearerToken(r)
	return ok
}

func (b *Bearer) Authenticate(r *http.Request) (*Caller, *Error) {
	raw, ok := bearerToken(r)
	if !ok {
		return nil, ErrInvalidToken("missing bearer token")
	}
	clientID, ok := b.checker.CheckBearer(r.Context(), raw)
	if !ok {
		return nil, ErrInvalidToken("the access token is invalid")
	}
	return &Caller{ClientID: clientID, Method: b.Name()}, nil
}

func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[7:])
	return tok, tok != ""
}
