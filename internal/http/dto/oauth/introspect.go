package oauth

// TokenTypeAccessToken es el único token_type_hint soportado.
const TokenTypeAccessToken = "access_token"

// IntrospectRequest holds the body parameters for POST /oauth/introspect.
// HintPresent distingue un hint ausente (default "access_token") de uno vacío.
type IntrospectRequest struct {
	Token         string `json:"token"`
	TokenTypeHint string `json:"token_type_hint"`
	HintPresent   bool   `json:"-"`
}

// EffectiveHint retorna el hint aplicando el default de RFC 7662.
func (r IntrospectRequest) EffectiveHint() string {
	if !r.HintPresent {
		return TokenTypeAccessToken
	}
	return r.TokenTypeHint
}

// InactiveResponse is the only shape returned for tokens that are not active.
type InactiveResponse struct {
	Active bool `json:"active"`
}

// Inactive builds {"active": false}.
func Inactive() InactiveResponse {
	return InactiveResponse{Active: false}
}

// IntrospectResponse is the active shape (RFC 7662 §2.2).
// Sub, Aud, ClientID and Jti keep the native JSON type of the claim (number or string).
type IntrospectResponse struct {
	Active    bool    `json:"active"`
	Scope     string  `json:"scope"`
	ClientID  any     `json:"client_id"`
	Username  *string `json:"username"`
	TokenType string  `json:"token_type"`
	Exp       int64   `json:"exp"`
	Iat       int64   `json:"iat"`
	Nbf       int64   `json:"nbf"`
	Sub       any     `json:"sub"`
	Aud       any     `json:"aud"`
	Jti       any     `json:"jti"`
}

// ActiveClaims are the normalized values that go into an active response.
type ActiveClaims struct {
	Scope    string
	ClientID any
	Username *string
	Exp      int64
	Iat      int64
	Nbf      int64
	Sub      any
	Aud      any
	Jti      any
}

// Active builds the active shape. token_type is always "access_token".
func Active(c ActiveClaims) *IntrospectResponse {
	return &IntrospectResponse{
		Active:    true,
		Scope:     c.Scope,
		ClientID:  c.ClientID,
		Username:  c.Username,
		TokenType: TokenTypeAccessToken,
		Exp:       c.Exp,
		Iat:       c.Iat,
		Nbf:       c.Nbf,
		Sub:       c.Sub,
		Aud:       c.Aud,
		Jti:       c.Jti,
	}
}
