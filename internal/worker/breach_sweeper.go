package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nebuladesk/helpdesk/internal/domain"
	"github.com/nebuladesk/helpdesk/internal/events"
	"github.com/nebuladesk/helpdesk/internal/observability"
)

const sweepLockKey = "sla:sweep:lock"

// TicketSweepStore is the slice of ticket persistence the sweeper needs.
type TicketSweepStore interface {
	ListOverdue(ctx context.Context, now time.Time, cursor string, limit int) ([]domain.Ticket, error)
	MarkBreached(ctx context.Context, id string) (bool, error)
}

// Locker guards against overlapping sweeps across processes. Optional: the
// sweep predicate already makes concurrent runs idempotent, the lock only
// avoids redundant work.
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}

// SweepResult summarizes one sweep for monitoring.
type SweepResult struct {
	Processed int
	Errors    int
}

// BreachSweeper periodically marks overdue non-terminal tickets as breached.
type BreachSweeper struct {
	store      TicketSweepStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	locker     Locker
	batchSize  int
	lockTTL    time.Duration
}

// SweeperOptions bundles construction parameters.
type SweeperOptions struct {
	Store      TicketSweepStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Locker     Locker
	BatchSize  int
	LockTTL    time.Duration
}

// NewBreachSweeper constructs a sweeper.
func NewBreachSweeper(opts SweeperOptions) *BreachSweeper {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	return &BreachSweeper{
		store:      opts.Store,
		dispatcher: opts.Dispatcher,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		locker:     opts.Locker,
		batchSize:  batchSize,
		lockTTL:    opts.LockTTL,
	}
}

// Run executes sweeps on a fixed interval until the context is cancelled.
func (s *BreachSweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("breach sweeper started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("breach sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("breach sweep failed", zap.Error(err))
			}
		}
	}
}

// RunOnce performs a single sweep over all eligible tickets in bounded
// batches. Each ticket's update commits independently: a failing row is
// logged and counted, never aborting the sweep. Cancelling the context stops
// the sweep between batches; work already done stays committed.
func (s *BreachSweeper) RunOnce(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	if s.locker != nil {
		acquired, err := s.locker.AcquireLock(ctx, sweepLockKey, s.lockTTL)
		if err != nil {
			// Lock service down: proceed, the per-row conditional update
			// keeps overlapping sweeps correct.
			s.logger.Warn("sweep lock unavailable, proceeding without it", zap.Error(err))
		} else if !acquired {
			s.logger.Info("sweep already running elsewhere, skipping")
			return result, nil
		} else {
			defer func() {
				if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), sweepLockKey); err != nil {
					s.logger.Warn("failed to release sweep lock", zap.Error(err))
				}
			}()
		}
	}

	now := time.Now()
	s.logger.Info("breach sweep starting")

	cursor := ""
	for {
		if err := ctx.Err(); err != nil {
			s.logger.Warn("breach sweep cancelled",
				zap.Int("processed", result.Processed), zap.Int("errors", result.Errors))
			return result, err
		}

		batch, err := s.store.ListOverdue(ctx, now, cursor, s.batchSize)
		if err != nil {
			s.metrics.RecordSweep(result.Errors + 1)
			return result, err
		}
		if len(batch) == 0 {
			break
		}

		for _, ticket := range batch {
			cursor = ticket.ID
			updated, err := s.store.MarkBreached(ctx, ticket.ID)
			if err != nil {
				result.Errors++
				s.logger.Error("failed to mark ticket breached",
					zap.String("ticket_id", ticket.ID), zap.Error(err))
				continue
			}
			if !updated {
				// Lost the race to a concurrent status transition; its own
				// evaluation already decided the flag.
				continue
			}
			result.Processed++
			s.metrics.RecordBreach()
			s.logger.Info("ticket sla breached",
				zap.String("ticket_id", ticket.ID),
				zap.String("organization_id", ticket.OrganizationID),
				zap.Timep("sla_due_date", ticket.SLADueDate))
			s.publishBreach(ctx, ticket)
		}

		if len(batch) < s.batchSize {
			break
		}
	}

	s.metrics.RecordSweep(result.Errors)
	s.logger.Info("breach sweep finished",
		zap.Int("processed", result.Processed), zap.Int("errors", result.Errors))
	return result, nil
}

func (s *BreachSweeper) publishBreach(ctx context.Context, ticket domain.Ticket) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketSLABreached,
		TicketID:  ticket.ID,
		Timestamp: time.Now(),
		Payload: events.TicketSLABreachedPayload{
			OrganizationID: ticket.OrganizationID,
			SLADueDate:     ticket.SLADueDate,
			DetectedBy:     "sweep",
		},
	})
}
