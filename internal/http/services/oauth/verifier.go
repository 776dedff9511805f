package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dropDatabas3/hellojohn-introspect/internal/domain/repository"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// TokenParser decodes a compact JWT and checks signature and exp/nbf.
// *jwt.Parser satisfies it.
type TokenParser interface {
	Parse(raw string) (jwtv5.MapClaims, error)
}

// VerifiedToken holds claims that passed every verification gate. Nothing else
// in the pipeline ever sees unverified claims.
type VerifiedToken struct {
	Claims    jwtv5.MapClaims
	ID        any    // native jti value
	JTI       string // string form, used for the token store
	Subject   any    // native claim value (json.Number or string)
	SubjectID string // string form, used for the user directory
	Audience  any    // native claim value
	ClientID  string // string form, used for the client store
	Scopes    []string
	ExpiresAt int64
	IssuedAt  int64
	NotBefore int64
}

// VerifierDeps contains dependencies for the verifier.
type VerifierDeps struct {
	Parser       TokenParser
	AccessTokens repository.AccessTokenRepository
	Clients      repository.ClientRepository
}

// Verifier runs parse -> signature -> temporal -> token revocation -> client
// revocation. It holds no mutable state and is safe for concurrent use.
type Verifier struct {
	deps VerifierDeps
}

// NewVerifier creates a new Verifier.
func NewVerifier(deps VerifierDeps) *Verifier {
	return &Verifier{deps: deps}
}

// Verify returns a VerifiedToken only when all five gates pass. Any collaborator
// error becomes a verification_error failure, never an active result.
func (v *Verifier) Verify(ctx context.Context, raw string) (*VerifiedToken, *Failure) {
	claims, err := v.deps.Parser.Parse(raw)
	if err != nil {
		return nil, classifyParseError(err)
	}

	vt, f := extractClaims(claims)
	if f != nil {
		return nil, f
	}

	revoked, err := v.deps.AccessTokens.IsRevoked(ctx, vt.JTI)
	if err != nil {
		return nil, fail(ReasonVerificationError, fmt.Errorf("access token store: %w", err))
	}
	if revoked {
		return nil, fail(ReasonTokenRevoked, nil)
	}

	revoked, err = v.deps.Clients.IsRevoked(ctx, vt.ClientID)
	if err != nil {
		return nil, fail(ReasonVerificationError, fmt.Errorf("client store: %w", err))
	}
	if revoked {
		return nil, fail(ReasonClientRevoked, nil)
	}

	return vt, nil
}

// classifyParseError maps golang-jwt errors onto failure reasons. Temporal
// errors are checked first because golang-jwt joins them with ErrTokenInvalidClaims.
func classifyParseError(err error) *Failure {
	switch {
	case errors.Is(err, jwtv5.ErrTokenExpired),
		errors.Is(err, jwtv5.ErrTokenNotValidYet),
		errors.Is(err, jwtv5.ErrTokenUsedBeforeIssued):
		return fail(ReasonTemporal, err)
	case errors.Is(err, jwtv5.ErrTokenSignatureInvalid),
		errors.Is(err, jwtv5.ErrTokenUnverifiable):
		return fail(ReasonInvalidSignature, err)
	case errors.Is(err, jwtv5.ErrTokenMalformed),
		errors.Is(err, jwtv5.ErrTokenInvalidClaims):
		return fail(ReasonMalformed, err)
	default:
		return fail(ReasonVerificationError, err)
	}
}

var (
	errMissingJTI      = errors.New("missing jti claim")
	errMissingSubject  = errors.New("missing sub claim")
	errMissingAudience = errors.New("missing aud claim")
	errMultiAudience   = errors.New("aud claim holds more than one client")
	errBadTimestamp    = errors.New("non-numeric timestamp claim")
)

func extractClaims(claims jwtv5.MapClaims) (*VerifiedToken, *Failure) {
	vt := &VerifiedToken{Claims: claims}

	vt.ID = claims["jti"]
	jti, ok := claimID(vt.ID)
	if !ok {
		return nil, fail(ReasonMalformed, errMissingJTI)
	}
	vt.JTI = jti

	vt.Subject = claims["sub"]
	if vt.SubjectID, ok = claimID(vt.Subject); !ok {
		return nil, fail(ReasonMalformed, errMissingSubject)
	}

	aud := claims["aud"]
	if list, isList := aud.([]any); isList {
		switch len(list) {
		case 0:
			return nil, fail(ReasonMalformed, errMissingAudience)
		case 1:
			aud = list[0]
		default:
			return nil, fail(ReasonMalformed, errMultiAudience)
		}
	}
	vt.Audience = aud
	if vt.ClientID, ok = claimID(aud); !ok {
		return nil, fail(ReasonMalformed, errMissingAudience)
	}

	for name, dst := range map[string]*int64{"exp": &vt.ExpiresAt, "iat": &vt.IssuedAt, "nbf": &vt.NotBefore} {
		v, present := claims[name]
		if !present {
			continue
		}
		n, ok := numericClaim(v)
		if !ok {
			return nil, fail(ReasonMalformed, fmt.Errorf("%w: %s", errBadTimestamp, name))
		}
		*dst = n
	}

	vt.Scopes = scopesFrom(claims)
	return vt, nil
}

// claimID returns the string form of an identifier claim without coercing
// its type: "7" and 7 both yield "7".
func claimID(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case json.Number:
		return t.String(), t != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

func numericClaim(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, true
		}
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return int64(f), true
	case float64:
		return int64(t), true
	}
	return 0, false
}

// scopesFrom reads the "scopes" array; a space-delimited "scope" string is
// accepted when the array is absent.
func scopesFrom(claims jwtv5.MapClaims) []string {
	switch raw := claims["scopes"].(type) {
	case []any:
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case json.Number:
				out = append(out, s.String())
			}
		}
		return out
	case []string:
		return raw
	case string:
		return strings.Fields(raw)
	}
	if s, ok := claims["scope"].(string); ok {
		return strings.Fields(s)
	}
	return nil
}

// CheckBearer authenticates a caller by its own access token. It runs the
// same gates as Verify and reports the token's client.
func (v *Verifier) CheckBearer(ctx context.Context, raw string) (string, bool) {
	vt, f := v.Verify(ctx, raw)
	if f != nil {
		return "", false
	}
	return vt.ClientID, true
}
