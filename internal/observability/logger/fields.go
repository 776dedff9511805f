package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// =================================================================================
// INTROSPECCIÓN
// =================================================================================

// JTI crea un campo para el identificador del access token.
func JTI(v string) zap.Field { return zap.String("jti", v) }

// ClientID crea un campo para el ID del cliente OAuth (aud del token).
func ClientID(v string) zap.Field { return zap.String("client_id", v) }

// Reason crea un campo para la razón de inactividad (malformed, token_revoked, ...).
func Reason(v string) zap.Field { return zap.String("reason", v) }

// Outcome crea un campo para el resultado del request (active, inactive, unauthorized, error).
func Outcome(v string) zap.Field { return zap.String("outcome", v) }

// Caller crea un campo para la identidad del caller autenticado.
// Nunca loguear el token ni el secreto.
func Caller(v string) zap.Field { return zap.String("caller", v) }

// =================================================================================
// SISTEMA
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }

func Op(v string) zap.Field { return zap.String("op", v) }

// Layer crea un campo para la capa (handler, service, repository).
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func Driver(v string) zap.Field { return zap.String("driver", v) }

func Key(v string) zap.Field { return zap.String("key", v) }
