package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates the engine answers.
	Healthy Status = "ok"
	// Degraded indicates the engine is configured but does not answer.
	Degraded Status = "degraded"
	// Unhealthy indicates no engine is configured at all.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const engineCheck = "search_engine"

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	engine EnginePinger
}

// New creates a Service. engine can be nil when no engine is configured.
func New(engine EnginePinger) *Service {
	return &Service{engine: engine}
}

// Check pings the engine.
func (s *Service) Check(ctx context.Context) Report {
	if s.engine == nil {
		return Report{Status: Unhealthy, Checks: map[string]CheckResult{engineCheck: CheckError}}
	}
	if err := s.engine.Ping(ctx); err != nil {
		return Report{Status: Degraded, Checks: map[string]CheckResult{engineCheck: CheckError}}
	}
	return Report{Status: Healthy, Checks: map[string]CheckResult{engineCheck: CheckOK}}
}
