package ranker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/vikor/internal/config"
	"github.com/MikeSquared-Agency/vikor/internal/hermes"
	"github.com/MikeSquared-Agency/vikor/internal/report"
	"github.com/MikeSquared-Agency/vikor/internal/vikor"
)

// Error kinds reported in failed-run events and API responses.
const (
	KindInvalidInput = "invalid_input"
	KindDegenerate   = "degenerate_criterion"
	KindCanceled     = "canceled"
	KindInternal     = "internal"
)

const requestQueue = "vikor-rankers"

// Run is one completed computation.
type Run struct {
	ID         uuid.UUID                `json:"run_id"`
	RequestID  string                   `json:"request_id,omitempty"`
	V          float64                  `json:"v"`
	Scores     []vikor.Score            `json:"scores"`
	Compromise vikor.CompromiseSolution `json:"compromise"`
	Frontier   []string                 `json:"frontier"`
	Report     *report.Report           `json:"tables"`
	DurationMs float64                  `json:"duration_ms"`
	CreatedAt  time.Time                `json:"created_at"`
}

// BatchItem holds the outcome of one problem in a batch, in input order.
type BatchItem struct {
	Index int    `json:"index"`
	Run   *Run   `json:"run,omitempty"`
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// Stats are in-process counters since start.
type Stats struct {
	Completed int64      `json:"completed"`
	Failed    int64      `json:"failed"`
	LastRunID string     `json:"last_run_id,omitempty"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
}

// Service runs rankings and reports them through metrics, logs and events.
type Service struct {
	engine      *vikor.Engine
	hermes      hermes.Client
	limits      config.LimitsConfig
	maxParallel int
	logger      *slog.Logger

	statsMu sync.Mutex
	stats   Stats
}

// New creates a Service. h may be nil, in which case no events are published.
func New(engine *vikor.Engine, h hermes.Client, cfg *config.Config, logger *slog.Logger) *Service {
	maxParallel := cfg.Engine.MaxParallel
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Service{
		engine:      engine,
		hermes:      h,
		limits:      cfg.Limits,
		maxParallel: maxParallel,
		logger:      logger,
	}
}

// DefaultV is the compromise weight used when a problem does not set one.
func (s *Service) DefaultV() float64 { return s.engine.Options().V }

// Rank validates and computes one problem. No partial run is returned on error.
func (s *Service) Rank(ctx context.Context, p Problem) (*Run, error) {
	id := uuid.New()
	start := time.Now()

	run, err := s.rank(ctx, id, p)
	elapsed := time.Since(start)
	runDuration.Observe(elapsed.Seconds())

	if err != nil {
		kind := ErrorKind(err)
		runsTotal.WithLabelValues(kind).Inc()
		s.record(id, false)
		s.logger.Warn("run failed", "run_id", id, "request_id", p.RequestID, "kind", kind, "error", err)
		s.publish(hermes.SubjectRunFailed(id.String()), hermes.RunFailedEvent{
			RunID:     id.String(),
			RequestID: p.RequestID,
			Kind:      kind,
			Error:     err.Error(),
			Timestamp: time.Now().UTC(),
		})
		return nil, err
	}

	run.DurationMs = float64(elapsed.Microseconds()) / 1000
	runsTotal.WithLabelValues("completed").Inc()
	runAlternatives.Observe(float64(len(run.Scores)))
	s.record(id, true)

	best := bestScore(run.Scores)
	s.logger.Info("run completed",
		"run_id", id,
		"request_id", p.RequestID,
		"alternatives", len(run.Scores),
		"criteria", len(p.Criteria),
		"best", best.Alternative,
		"duration_ms", run.DurationMs,
	)
	s.publish(hermes.SubjectRunCompleted(id.String()), hermes.RunCompletedEvent{
		RunID:        id.String(),
		RequestID:    p.RequestID,
		Alternatives: len(run.Scores),
		Criteria:     len(p.Criteria),
		V:            run.V,
		Best:         best.Alternative,
		BestQ:        best.Q,
		Compromise:   run.Compromise.Alternatives,
		Frontier:     run.Frontier,
		DurationMs:   run.DurationMs,
		Timestamp:    run.CreatedAt,
	})
	return run, nil
}

func (s *Service) rank(ctx context.Context, id uuid.UUID, p Problem) (*Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.checkLimits(p); err != nil {
		return nil, err
	}

	v := s.DefaultV()
	if p.V != nil {
		v = *p.V
	}

	matrix, specs := p.Inputs()
	res, err := s.engine.ComputeWithV(matrix, specs, v)
	if err != nil {
		return nil, err
	}

	return &Run{
		ID:         id,
		RequestID:  p.RequestID,
		V:          res.V,
		Scores:     res.Scores,
		Compromise: vikor.Compromise(res),
		Frontier:   vikor.Frontier(res),
		Report:     report.Build(matrix, res),
		CreatedAt:  time.Now().UTC(),
	}, nil
}

func (s *Service) checkLimits(p Problem) error {
	if n := len(p.Matrix); n > s.limits.MaxAlternatives {
		return &vikor.InvalidInputError{Field: "matrix", Row: -1, Column: -1,
			Reason: fmt.Sprintf("%d alternatives exceed the limit of %d", n, s.limits.MaxAlternatives)}
	}
	if n := len(p.Criteria); n > s.limits.MaxCriteria {
		return &vikor.InvalidInputError{Field: "criteria", Row: -1, Column: -1,
			Reason: fmt.Sprintf("%d criteria exceed the limit of %d", n, s.limits.MaxCriteria)}
	}
	return nil
}

// RankBatch computes independent problems concurrently, at most maxParallel at
// a time. Each item succeeds or fails on its own.
func (s *Service) RankBatch(ctx context.Context, problems []Problem) []BatchItem {
	items := make([]BatchItem, len(problems))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallel)
	for i, p := range problems {
		g.Go(func() error {
			items[i].Index = i
			run, err := s.Rank(gctx, p)
			if err != nil {
				items[i].Error = err.Error()
				items[i].Kind = ErrorKind(err)
				return nil
			}
			items[i].Run = run
			return nil
		})
	}
	_ = g.Wait()
	return items
}

// SetupSubscriptions serves rank requests arriving on NATS. Results are
// delivered through the run events.
func (s *Service) SetupSubscriptions(ctx context.Context) error {
	if s.hermes == nil {
		return nil
	}
	return s.hermes.QueueSubscribe(hermes.SubjectRankRequest, requestQueue, func(subject string, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("rank request handler panicked", "subject", subject, "panic", r)
			}
		}()

		var p Problem
		if err := json.Unmarshal(data, &p); err != nil {
			id := uuid.New()
			runsTotal.WithLabelValues(KindInvalidInput).Inc()
			s.record(id, false)
			s.logger.Warn("invalid rank request", "run_id", id, "error", err)
			s.publish(hermes.SubjectRunFailed(id.String()), hermes.RunFailedEvent{
				RunID:     id.String(),
				Kind:      KindInvalidInput,
				Error:     fmt.Sprintf("decode request: %v", err),
				Timestamp: time.Now().UTC(),
			})
			return
		}
		_, _ = s.Rank(ctx, p)
	})
}

// Stats returns a snapshot of the run counters.
func (s *Service) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

func (s *Service) record(id uuid.UUID, ok bool) {
	now := time.Now().UTC()
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	if ok {
		s.stats.Completed++
	} else {
		s.stats.Failed++
	}
	s.stats.LastRunID = id.String()
	s.stats.LastRunAt = &now
}

func (s *Service) publish(subject string, event interface{}) {
	if s.hermes == nil {
		return
	}
	if err := s.hermes.Publish(subject, event); err != nil {
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

// bestScore returns the rank 1 score.
func bestScore(scores []vikor.Score) vikor.Score {
	for _, sc := range scores {
		if sc.Rank == 1 {
			return sc
		}
	}
	return scores[0]
}

// ErrorKind classifies an error returned by Rank.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, vikor.ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, vikor.ErrDegenerateCriterion):
		return KindDegenerate
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
