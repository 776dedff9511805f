package jwt

import (
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// ParseOptions ajusta la validación temporal del parser.
type ParseOptions struct {
	// Leeway es la tolerancia de reloj para exp/nbf. Default: 0.
	Leeway time.Duration
	// Now reemplaza time.Now (tests).
	Now func() time.Time
}

// Parser decodifica un JWT compacto, verifica la firma contra el KeySource y
// valida exp/nbf. Los números de las claims se preservan como json.Number.
type Parser struct {
	src    KeySource
	parser *jwtv5.Parser
}

// NewParser construye un Parser inmutable.
func NewParser(src KeySource, opts ParseOptions) *Parser {
	popts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods(src.Algorithms()),
		jwtv5.WithJSONNumber(),
	}
	if opts.Leeway > 0 {
		popts = append(popts, jwtv5.WithLeeway(opts.Leeway))
	}
	if opts.Now != nil {
		popts = append(popts, jwtv5.WithTimeFunc(opts.Now))
	}
	return &Parser{src: src, parser: jwtv5.NewParser(popts...)}
}

// Parse retorna las claims sólo si firma y ventana temporal son válidas.
// Los errores son los de golang-jwt (ErrTokenMalformed, ErrTokenSignatureInvalid,
// ErrTokenExpired, ...), envueltos.
func (p *Parser) Parse(raw string) (jwtv5.MapClaims, error) {
	claims := jwtv5.MapClaims{}
	tok, err := p.parser.ParseWithClaims(raw, claims, p.src.Keyfunc())
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwtv5.ErrTokenUnverifiable
	}
	return claims, nil
}
