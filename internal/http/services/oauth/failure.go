package oauth

import "fmt"

// FailureReason identifica por qué un token no está activo. Todas las razones
// se colapsan en {"active": false} hacia afuera; sólo se usan en logs y métricas.
type FailureReason string

const (
	ReasonMalformed         FailureReason = "malformed"
	ReasonInvalidSignature  FailureReason = "invalid_signature"
	ReasonTemporal          FailureReason = "expired_or_not_yet_valid"
	ReasonTokenRevoked      FailureReason = "token_revoked"
	ReasonClientRevoked     FailureReason = "client_revoked"
	ReasonUserNotFound      FailureReason = "user_not_found"
	ReasonVerificationError FailureReason = "verification_error"
)

// Failure is the explicit "fail closed" result of the verification pipeline.
type Failure struct {
	Reason FailureReason
	Err    error
}

func fail(reason FailureReason, err error) *Failure {
	return &Failure{Reason: reason, Err: err}
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("token inactive: %s: %v", f.Reason, f.Err)
	}
	return "token inactive: " + string(f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }
