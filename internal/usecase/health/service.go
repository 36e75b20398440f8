package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
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

// Component names in Report.Checks.
const (
	ComponentRecords = "records"
	ComponentSearch  = "search"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	// LastSync is the completion time of the last projection sync, nil if unknown.
	LastSync *time.Time
}

// Service coordinates health checks.
type Service struct {
	records Pinger
	search  Pinger
	sync    SyncStater
}

// New creates a Service. sync can be nil.
func New(records, search Pinger, sync SyncStater) *Service {
	return &Service{records: records, search: search, sync: sync}
}

// Check pings the record store and the search engine.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		ComponentRecords: ping(ctx, s.records),
		ComponentSearch:  ping(ctx, s.search),
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	r := Report{Status: status, Checks: checks}
	if s.sync != nil && checks[ComponentSearch] == CheckOK {
		if st, ok, err := s.sync.State(ctx); err == nil && ok {
			at := st.SyncedAt
			r.LastSync = &at
		}
	}
	return r
}

func ping(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
