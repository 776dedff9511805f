package health

import "time"

// HealthResponse is the body of GET /readyz.
type HealthResponse struct {
	Status     string                  `json:"status"` // ready | degraded | unavailable
	Version    string                  `json:"version,omitempty"`
	Components map[string]HealthStatus `json:"components,omitempty"`
	Timestamp  time.Time               `json:"timestamp"`
}

// HealthStatus is the state of one dependency.
type HealthStatus struct {
	Status  string `json:"status"` // ok | error | disabled
	Message string `json:"message,omitempty"`
}
