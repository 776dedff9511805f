package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Introspection metrics. They live in a standalone package so the service layer
// and the HTTP layer can both record without importing each other.

// Outcome labels for IntrospectRequests.
const (
	OutcomeActive       = "active"
	OutcomeInactive     = "inactive"
	OutcomeUnauthorized = "unauthorized"
	OutcomeError        = "error"
)

var (
	IntrospectRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hellojohn_introspect_requests_total",
		Help: "Requests de introspección por resultado",
	}, []string{"outcome"}) // active|inactive|unauthorized|error

	IntrospectFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hellojohn_introspect_failures_total",
		Help: "Tokens reportados como inactivos, por razón",
	}, []string{"reason"})

	RevocationCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hellojohn_revocation_cache_lookups_total",
		Help: "Lookups al cache de revocación (hit|miss)",
	}, []string{"kind", "result"})
)

// RegisterIntrospect registers the introspection metrics on the given registry (or default if nil).
func RegisterIntrospect(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{IntrospectRequests, IntrospectFailures, RevocationCacheLookups} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// RecordOutcome counts one introspection request.
func RecordOutcome(outcome string) {
	IntrospectRequests.WithLabelValues(outcome).Inc()
}

// RecordFailure counts one inactive verdict by reason.
func RecordFailure(reason string) {
	IntrospectFailures.WithLabelValues(reason).Inc()
}

// RecordCacheLookup counts a revocation cache hit or miss.
func RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	RevocationCacheLookups.WithLabelValues(kind, result).Inc()
}
