package service

import (
	"time"

	"github.com/okian/dynasty/internal/domain/combine"
	"github.com/okian/dynasty/internal/domain/provenance"
	"github.com/okian/dynasty/internal/domain/scoring"
	"github.com/okian/dynasty/pkg/logger"
	"github.com/okian/dynasty/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets the logger the service and its stages write to.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager. The global manager is the default.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithMetricsTextfile writes the metrics to path after every run.
func WithMetricsTextfile(path string) Option {
	return func(s *Service) {
		s.textfile = path
	}
}

// WithClock replaces time.Now for run timestamps and stage timings.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithProvenanceOptions passes options to the pick tracker.
func WithProvenanceOptions(opts ...provenance.Option) Option {
	return func(s *Service) {
		s.provenanceOpts = append(s.provenanceOpts, opts...)
	}
}

// WithScoringOptions passes options to the player grader.
func WithScoringOptions(opts ...scoring.Option) Option {
	return func(s *Service) {
		s.scoringOpts = append(s.scoringOpts, opts...)
	}
}

// WithCombineOptions passes options to the grade combiner.
func WithCombineOptions(opts ...combine.Option) Option {
	return func(s *Service) {
		s.combineOpts = append(s.combineOpts, opts...)
	}
}
