package auth

import (
	"crypto/subtle"
	"net/http"
)

// StaticBasic acepta un único usuario/clave configurado (auth.introspect_basic_*).
type StaticBasic struct {
	User string
	Pass string
}

// NewStaticBasic creates a StaticBasic authenticator.
func NewStaticBasic(user, pass string) *StaticBasic {
	return &StaticBasic{User: user, Pass: pass}
}

func (b *StaticBasic) Name() string { return "basic" }

func (b *StaticBasic) Supports(r *http.Request) bool {
	_, _, ok := r.BasicAuth()
	return ok
}

func (b *StaticBasic) Authenticate(r *http.Request) (*Caller, *Error) {
	user, pass, ok := r.BasicAuth()
	if !ok {
		return nil, ErrInvalidClient("missing client credentials")
	}
	if b.User == "" || b.Pass == "" {
		return nil, ErrInvalidClient("invalid client credentials")
	}
	// Ambas comparaciones siempre se evalúan.
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(b.User))
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(b.Pass))
	if userOK&passOK != 1 {
		return nil, ErrInvalidClient("invalid client credentials")
	}
	return &Caller{ClientID: user, Method: b.Name()}, nil
}
