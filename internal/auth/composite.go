package auth

import "net/http"

// Composite prueba authenticators en orden y retorna el primer éxito.
// Si ninguno soporta el request responde invalid_client.
type Composite struct {
	authenticators []Authenticator
}

// NewComposite creates a composite authenticator.
func NewComposite(auths ...Authenticator) *Composite {
	return &Composite{authenticators: auths}
}

func (c *Composite) Name() string { return "composite" }

func (c *Composite) Supports(r *http.Request) bool {
	for _, a := range c.authenticators {
		if a.Supports(r) {
			return true
		}
	}
	return false
}

func (c *Composite) Authenticate(r *http.Request) (*Caller, *Error) {
	var last *Error
	for _, a := range c.authenticators {
		if !a.Supports(r) {
			continue
		}
		caller, err := a.Authenticate(r)
		if err == nil {
			return caller, nil
		}
		// Un fallo del backend no se enmascara con el siguiente authenticator.
		if err.Status >= http.StatusInternalServerError {
			return nil, err
		}
		last = err
	}
	if last != nil {
		return nil, last
	}
	return nil, ErrInvalidClient("missing client credentials")
}

var _ Authenticator = (*Composite)(nil)
