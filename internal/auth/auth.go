// Package auth autentica al caller del endpoint de introspección.
//
// Sólo un cliente confidencial autenticado puede introspectar tokens. Los
// errores de autenticación se escriben tal cual (status, headers y body
// propios) y nunca se colapsan en {"active": false}.
package auth

import (
	"encoding/json"
	"net/http"
)

// Caller es la identidad autenticada que hace la introspección.
type Caller struct {
	ClientID string
	Method   string // basic | client_secret | bearer
}

// Authenticator verifica las credenciales del caller.
type Authenticator interface {
	// Name identifica al authenticator en logs.
	Name() string

	// Supports indica si el request trae credenciales que este authenticator entiende.
	Supports(r *http.Request) bool

	// Authenticate retorna el Caller o un *Error listo para escribir.
	Authenticate(r *http.Request) (*Caller, *Error)
}

// Error es la respuesta del authenticator ante credenciales inválidas.
// Body sigue RFC 6749 §5.2 (o RFC 6750 §3 para bearer).
type Error struct {
	Status      int
	Code        string
	Description string
	Header      http.Header
}

func (e *Error) Error() string {
	if e.Description != "" {
		return e.Code + ": " + e.Description
	}
	return e.Code
}

// Write escribe el error verbatim: headers propios, status y body JSON.
func (e *Error) Write(w http.ResponseWriter) {
	for k, vs := range e.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description,omitempty"`
	}{e.Code, e.Description})
}

const realm = "introspect"

// ErrInvalidClient construye el 401 invalid_client con challenge Basic.
func ErrInvalidClient(desc string) *Error {
	h := http.Header{}
	h.Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
	return &Error{Status: http.StatusUnauthorized, Code: "invalid_client", Description: desc, Header: h}
}

// ErrInvalidToken construye el 401 invalid_token con challenge Bearer.
func ErrInvalidToken(desc string) *Error {
	h := http.Header{}
	h.Set("WWW-Authenticate", `Bearer realm="`+realm+`", error="invalid_token"`)
	return &Error{Status: http.StatusUnauthorized, Code: "invalid_token", Description: desc, Header: h}
}

// ErrServerError se usa cuando el client store falla durante la autenticación.
func ErrServerError() *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "server_error", Description: "authentication backend unavailable"}
}
