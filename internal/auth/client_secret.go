package auth

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/hellojohn-introspect/internal/domain/repository"
	"github.com/dropDatabas3/hellojohn-introspect/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-introspect/internal/security/secrethash"
)

// ClientSecret autentica clientes confidenciales contra el client store:
// HTTP Basic (client_secret_basic) o client_id/client_secret en el form
// (client_secret_post).
type ClientSecret struct {
	clients repository.ClientCredentialRepository
}

// NewClientSecret creates a ClientSecret authenticator.
func NewClientSecret(clients repository.ClientCredentialRepository) *ClientSecret {
	return &ClientSecret{clients: clients}
}

func (c *ClientSecret) Name() string { return "client_secret" }

func (c *ClientSecret) Supports(r *http.Request) bool {
	if _, _, ok := r.BasicAuth(); ok {
		return true
	}
	id, _ := formCredentials(r)
	return id != ""
}

func (c *ClientSecret) Authenticate(r *http.Request) (*Caller, *Error) {
	id, secret, ok := r.BasicAuth()
	if !ok {
		id, secret = formCredentials(r)
	}
	if id == "" || secret == "" {
		return nil, ErrInvalidClient("missing client credentials")
	}

	ctx := r.Context()
	client, err := c.clients.GetClient(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidClient("invalid client credentials")
		}
		logger.From(ctx).Error("client lookup failed",
			logger.Layer("auth"), logger.ClientID(id), logger.Err(err))
		return nil, ErrServerError()
	}
	if client == nil || client.Revoked || !secrethash.Verify(secret, client.SecretHash) {
		return nil, ErrInvalidClient("invalid client credentials")
	}
	return &Caller{ClientID: client.ID, Method: c.Name()}, nil
}

// formCredentials lee client_id/client_secret de un body form-encoded.
// Para otros content types no consume el body.
func formCredentials(r *http.Request) (string, string) {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		return "", ""
	}
	if err := r.ParseForm(); err != nil {
		return "", ""
	}
	return r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
}
