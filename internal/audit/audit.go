// Package audit emite eventos de auditoría por el logger "audit": quién
// introspectó y con qué resultado. Nunca incluye el token.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/hellojohn-introspect/internal/observability/logger"
)

// Event names.
const (
	EventIntrospect = "introspect"
)

// Log writes a structured audit event.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	logger.From(ctx).Named("audit").Info(event, append(fields, zap.String("event", event))...)
}

// Introspection registra el resultado de una introspección.
func Introspection(ctx context.Context, caller, outcome, jti string) {
	fields := []zap.Field{logger.Caller(caller), logger.Outcome(outcome)}
	if jti != "" {
		fields = append(fields, logger.JTI(jti))
	}
	Log(ctx, EventIntrospect, fields...)
}
