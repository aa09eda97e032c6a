package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	domain "github.com/ramitaha13/KamelStore/internal/domain"
	"github.com/ramitaha13/KamelStore/internal/repositories"
)

// BuildInfo is the release metadata reported by the health endpoints.
type BuildInfo struct {
	Version     string
	CommitSHA   string
	Environment string
	StartedAt   time.Time
}

// SystemServiceDeps bundles collaborators required to construct a system service.
type SystemServiceDeps struct {
	HealthRepository repositories.HealthRepository
	Clock            func() time.Time
	Build            BuildInfo
	// CacheTTL reuses a successful probe run for this long. Zero probes on every call.
	CacheTTL time.Duration
}

type systemService struct {
	probes   repositories.HealthRepository
	now      func() time.Time
	build    BuildInfo
	cacheTTL time.Duration

	mu       sync.Mutex
	cached   domain.SystemHealthReport
	cachedAt time.Time
}

var _ SystemService = (*systemService)(nil)

// NewSystemService assembles the readiness reporting service.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.HealthRepository == nil {
		return nil, errors.New("system service: health repository is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	svc := &systemService{
		probes:   deps.HealthRepository,
		now:      func() time.Time { return clock().UTC() },
		build:    deps.Build,
		cacheTTL: deps.CacheTTL,
	}
	if svc.build.StartedAt.IsZero() {
		svc.build.StartedAt = svc.now()
	}
	return svc, nil
}

func (s *systemService) HealthReport(ctx context.Context) (SystemHealthReport, error) {
	if ctx == nil {
		return SystemHealthReport{}, errors.New("system service: context is required")
	}
	now := s.now()

	report, ok := s.fromCache(now)
	if !ok {
		collected, err := s.probes.Collect(ctx)
		if err != nil {
			return SystemHealthReport{}, err
		}
		report = collected
		if report.GeneratedAt.IsZero() {
			report.GeneratedAt = now
		}
		s.store(report, now)
	}

	if report.Version == "" {
		report.Version = s.build.Version
	}
	if report.CommitSHA == "" {
		report.CommitSHA = s.build.CommitSHA
	}
	if report.Environment == "" {
		report.Environment = s.build.Environment
	}
	report.Uptime = now.Sub(s.build.StartedAt)
	if report.Checks == nil {
		report.Checks = map[string]domain.SystemHealthCheck{}
	}
	if strings.TrimSpace(report.Status) == "" {
		report.Status = overallStatus(report.Checks)
	}
	return report, nil
}

func (s *systemService) fromCache(now time.Time) (domain.SystemHealthReport, bool) {
	if s.cacheTTL <= 0 {
		return domain.SystemHealthReport{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cachedAt.IsZero() || now.Sub(s.cachedAt) >= s.cacheTTL {
		return domain.SystemHealthReport{}, false
	}
	report := s.cached
	report.Checks = make(map[string]domain.SystemHealthCheck, len(s.cached.Checks))
	for name, check := range s.cached.Checks {
		report.Checks[name] = check
	}
	return report, true
}

func (s *systemService) store(report domain.SystemHealthReport, now time.Time) {
	if s.cacheTTL <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = report
	s.cachedAt = now
}

// overallStatus is error when any probe errored, degraded when any probe is not ok, ok otherwise.
func overallStatus(checks map[string]domain.SystemHealthCheck) string {
	status := domain.HealthStatusOK
	for _, check := range checks {
		switch check.Status {
		case domain.HealthStatusOK, "":
		case domain.HealthStatusError:
			return domain.HealthStatusError
		default:
			status = domain.HealthStatusDegraded
		}
	}
	return status
}
