package oauth

import (
	"context"
	"errors"

	dto "github.com/dropDatabas3/hellojohn-introspect/internal/http/dto/oauth"
	"github.com/dropDatabas3/hellojohn-introspect/internal/metrics"
	"github.com/dropDatabas3/hellojohn-introspect/internal/observability/logger"
	"go.uber.org/zap"
)

// IntrospectService defines operations for token introspection.
type IntrospectService interface {
	// Introspect returns the active response, or (nil, nil) when the token is
	// not active. A non-nil error means the service could not decide.
	Introspect(ctx context.Context, token string) (*dto.IntrospectResponse, error)
}

// IntrospectDeps contains dependencies for the introspect service.
type IntrospectDeps struct {
	Verifier   *Verifier
	Normalizer *Normalizer
}

type introspectService struct {
	deps IntrospectDeps
}

// NewIntrospectService creates a new IntrospectService.
func NewIntrospectService(deps IntrospectDeps) IntrospectService {
	return &introspectService{deps: deps}
}

// Service errors
var (
	ErrIntrospectTokenEmpty = errors.New("token is empty")
)

func (s *introspectService) Introspect(ctx context.Context, token string) (*dto.IntrospectResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("oauth.introspect"),
		logger.Op("Introspect"),
	)

	if token == "" {
		return nil, ErrIntrospectTokenEmpty
	}

	vt, f := s.deps.Verifier.Verify(ctx, token)
	if f != nil {
		inactive(log, f)
		return nil, nil
	}

	resp, err := s.deps.Normalizer.Normalize(ctx, vt)
	if err != nil {
		var nf *Failure
		if errors.As(err, &nf) {
			inactive(log, nf)
			return nil, nil
		}
		log.Error("user lookup failed", logger.JTI(vt.JTI), logger.Err(err))
		return nil, err
	}

	log.Debug("token active", logger.JTI(vt.JTI), logger.ClientID(vt.ClientID))
	return resp, nil
}

// inactive logs and counts the reason; the caller only ever sees active=false.
func inactive(log *zap.Logger, f *Failure) {
	fields := []zap.Field{logger.Reason(string(f.Reason))}
	if f.Err != nil {
		fields = append(fields, logger.Err(f.Err))
	}
	if f.Reason == ReasonVerificationError {
		log.Warn("token verification error", fields...)
	} else {
		log.Debug("token inactive", fields...)
	}
	metrics.RecordFailure(string(f.Reason))
}
