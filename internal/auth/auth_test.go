package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dropDatabas3/hellojohn-introspect/internal/domain/repository"
	"github.com/dropDatabas3/hellojohn-introspect/internal/security/secrethash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clientsStub map[string]*repository.Client

func (s clientsStub) GetClient(_ context.Context, id string) (*repository.Client, error) {
	if id == "broken" {
		return nil, errors.New("connection refused")
	}
	c, ok := s[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

type checkerStub struct{ valid map[string]string }

func (c checkerStub) CheckBearer(_ context.Context, raw string) (string, bool) {
	id, ok := c.valid[raw]
	return id, ok
}

func newClients(t *testing.T) clientsStub {
	t.Helper()
	hash, err := secrethash.Hash(secrethash.Bcrypt, "s3cret")
	require.NoError(t, err)
	return clientsStub{
		"rs-1":    {ID: "rs-1", SecretHash: hash},
		"revoked": {ID: "revoked", SecretHash: hash, Revoked: true},
	}
}

func formRequest(vals url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/oauth/introspect", strings.NewReader(vals.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestStaticBasic(t *testing.T) {
	a := NewStaticBasic("introspector", "pw")

	cases := []struct {
		name string
		user string
		pass string
		ok   bool
	}{
		{"valid", "introspector", "pw", true},
		{"wrong pass", "introspector", "nope", false},
		{"wrong user", "other", "pw", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := formRequest(url.Values{"token": {"x"}})
			r.SetBasicAuth(tc.user, tc.pass)

			caller, err := a.Authenticate(r)

			if tc.ok {
				require.Nil(t, err)
				assert.Equal(t, "introspector", caller.ClientID)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, http.StatusUnauthorized, err.Status)
			assert.Equal(t, "invalid_client", err.Code)
		})
	}
}

func TestStaticBasic_EmptyConfigRejects(t *testing.T) {
	r := formRequest(nil)
	r.SetBasicAuth("", "")

	_, err := NewStaticBasic("", "").Authenticate(r)
	require.NotNil(t, err)
}

func TestClientSecret_Basic(t *testing.T) {
	// Given.
	a := NewClientSecret(newClients(t))
	r := formRequest(url.Values{"token": {"x"}})
	r.SetBasicAuth("rs-1", "s3cret")

	// When.
	caller, err := a.Authenticate(r)

	// Then.
	require.Nil(t, err)
	assert.Equal(t, "rs-1", caller.ClientID)
	assert.Equal(t, "client_secret", caller.Method)
}

func TestClientSecret_Post(t *testing.T) {
	a := NewClientSecret(newClients(t))
	r := formRequest(url.Values{"token": {"x"}, "client_id": {"rs-1"}, "client_secret": {"s3cret"}})

	require.True(t, a.Supports(r))
	caller, err := a.Authenticate(r)

	require.Nil(t, err)
	assert.Equal(t, "rs-1", caller.ClientID)
	assert.Equal(t, "x", r.PostForm.Get("token"), "form stays readable after authentication")
}

func TestClientSecret_Rejections(t *testing.T) {
	a := NewClientSecret(newClients(t))

	cases := []struct {
		name       string
		id         string
		secret     string
		wantStatus int
	}{
		{"wrong secret", "rs-1", "nope", http.StatusUnauthorized},
		{"unknown client", "ghost", "s3cret", http.StatusUnauthorized},
		{"revoked client", "revoked", "s3cret", http.StatusUnauthorized},
		{"store failure", "broken", "s3cret", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := formRequest(nil)
			r.SetBasicAuth(tc.id, tc.secret)

			_, err := a.Authenticate(r)

			require.NotNil(t, err)
			assert.Equal(t, tc.wantStatus, err.Status)
		})
	}
}

func TestBearer(t *testing.T) {
	a := NewBearer(checkerStub{valid: map[string]string{"good": "rs-1"}})

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("Authorization", "Bearer good")
	caller, err := a.Authenticate(r)
	require.Nil(t, err)
	assert.Equal(t, "rs-1", caller.ClientID)

	r.Header.Set("Authorization", "Bearer bad")
	_, err = a.Authenticate(r)
	require.NotNil(t, err)
	assert.Equal(t, "invalid_token", err.Code)
	assert.Contains(t, err.Header.Get("WWW-Authenticate"), `error="invalid_token"`)
}

func TestComposite(t *testing.T) {
	a := NewComposite(
		NewBearer(checkerStub{valid: map[string]string{"good": "rs-2"}}),
		NewClientSecret(newClients(t)),
	)

	t.Run("falls through to the authenticator that supports the request", func(t *testing.T) {
		r := formRequest(nil)
		r.SetBasicAuth("rs-1", "s3cret")

		caller, err := a.Authenticate(r)

		require.Nil(t, err)
		assert.Equal(t, "rs-1", caller.ClientID)
	})

	t.Run("no credentials", func(t *testing.T) {
		_, err := a.Authenticate(formRequest(nil))

		require.NotNil(t, err)
		assert.Equal(t, "invalid_client", err.Code)
	})
}

func TestError_Write(t *testing.T) {
	rec := httptest.NewRecorder()

	ErrInvalidClient("invalid client credentials").Write(rec)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="introspect"`, rec.Header().Get("WWW-Authenticate"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_client", body["error"])
	assert.Equal(t, "invalid client credentials", body["error_description"])
}
