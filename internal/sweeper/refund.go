package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-crowdfund/internal/adapter"
	"github.com/feral-file/ff-crowdfund/internal/domain"
	"github.com/feral-file/ff-crowdfund/internal/ledger"
	"github.com/feral-file/ff-crowdfund/internal/logger"
	"github.com/feral-file/ff-crowdfund/internal/store"
)

const (
	SWEEP_CYCLE_INTERVAL = 15 * time.Minute // Time to sleep between sweep cycles
)

var (
	// errRefundIncomplete marks a refund pass that left failed transfers behind
	errRefundIncomplete = errors.New("refund pass incomplete")
	// errRefundUnconfirmed marks a refund pass blocked on transfers an admin must resolve
	errRefundUnconfirmed = errors.New("refund pass blocked on unconfirmed transfers")
)

// RefundSweeperConfig holds configuration for the refund sweeper
type RefundSweeperConfig struct {
	WorkerPoolSize       int           // Concurrent project workers
	QueueSize            int           // Projects queued per cycle before Submit blocks
	CycleInterval        time.Duration // Sleep between cycles, SWEEP_CYCLE_INTERVAL when zero
	RetryInitialInterval time.Duration // First refund retry delay
	RetryMaxElapsedTime  time.Duration // Total time spent retrying one token refund
	PurgeExpired         bool          // Delete expired ledger entries at the end of a cycle
}

// CycleResult counts what one sweep cycle did
type CycleResult struct {
	Projects        int32
	Tallied         int32
	Finalized       int32
	TokensRefunded  int32
	RefundFailures  int32
	EntriesPurged   int64
	ProjectFailures int32
}

// refundSweeper drives projects through their time-based transitions and refunds
type refundSweeper struct {
	config    *RefundSweeperConfig
	ledger    ledger.Ledger
	store     store.Store
	clock     adapter.Clock

	// mu guards the channels of the current run; both are nil while stopped
	mu        sync.Mutex
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// RefundSweeper is a Sweeper that can also run a single cycle on demand
type RefundSweeper interface {
	Sweeper

	// RunOnce runs one sweep cycle without sleeping afterwards
	RunOnce(ctx context.Context) (*CycleResult, error)
}

// NewRefundSweeper creates a new refund sweeper
func NewRefundSweeper(
	config *RefundSweeperConfig,
	l ledger.Ledger,
	st store.Store,
	clock adapter.Clock,
) RefundSweeper {
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 100
	}
	if config.CycleInterval <= 0 {
		config.CycleInterval = SWEEP_CYCLE_INTERVAL
	}
	if config.RetryInitialInterval <= 0 {
		config.RetryInitialInterval = 15 * time.Second
	}
	if config.RetryMaxElapsedTime <= 0 {
		config.RetryMaxElapsedTime = 10 * time.Minute
	}

	return &refundSweeper{
		config: config,
		ledger: l,
		store:  st,
		clock:  clock,
	}
}

// Name returns the sweeper's name
func (s *refundSweeper) Name() string {
	return "refund-sweeper"
}

// Start begins the sweeper's main loop. A stopped sweeper can be started again.
func (s *refundSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stoppedCh != nil {
		s.mu.Unlock()
		return fmt.Errorf("sweeper already running")
	}
	stop, stopped := make(chan struct{}), make(chan struct{})
	s.stopChan, s.stoppedCh = stop, stopped
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.stopChan, s.stoppedCh = nil, nil
		s.mu.Unlock()
		close(stopped)
	}()

	logger.InfoCtx(ctx, "Starting refund sweeper",
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
		zap.Duration("cycle_interval", s.config.CycleInterval),
	)

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Refund sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-stop:
			logger.InfoCtx(ctx, "Refund sweeper stop requested")
			return nil
		default:
			if _, err := s.RunOnce(ctx); err != nil {
				if !errors.Is(err, context.Canceled) {
					logger.ErrorCtx(ctx, err)
				}
			}
			if !s.sleep(ctx, stop, s.config.CycleInterval) {
				return nil
			}
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *refundSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	stop, stopped := s.stopChan, s.stoppedCh
	// a concurrent Stop must not close stop twice
	s.stopChan = nil
	s.mu.Unlock()
	if stop == nil {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping refund sweeper")
	close(stop)

	select {
	case <-stopped:
		logger.InfoCtx(ctx, "Refund sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Refund sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

func (s *refundSweeper) RunOnce(ctx context.Context) (*CycleResult, error) {
	startTime := s.clock.Now()
	logger.InfoCtx(ctx, "Starting sweep cycle")

	ids, err := s.ledger.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	var (
		result                                    CycleResult
		tallied, finalized, refunded, refundFails atomic.Int32
		projectFails                              atomic.Int32
	)
	result.Projects = int32(len(ids))

	// each cycle owns its pool, so RunOnce may run alongside the Start loop
	pool := pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.QueueSize),
		pond.WithContext(ctx),
	)
	for _, id := range ids {
		pool.Submit(func() {
			c, err := s.sweepProject(ctx, id)
			if err != nil {
				projectFails.Add(1)
				logger.ErrorCtx(ctx, err, zap.String("project_id", id))
			}
			tallied.Add(c.tallied)
			finalized.Add(c.finalized)
			refunded.Add(c.refunded)
			refundFails.Add(c.refundFailures)
		})
	}
	pool.StopAndWait()

	result.Tallied = tallied.Load()
	result.Finalized = finalized.Load()
	result.TokensRefunded = refunded.Load()
	result.RefundFailures = refundFails.Load()
	result.ProjectFailures = projectFails.Load()

	if s.config.PurgeExpired && ctx.Err() == nil {
		purged, err := s.store.PurgeExpired(ctx)
		if err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to purge expired entries: %w", err))
		} else {
			result.EntriesPurged = purged
		}
	}

	logger.InfoCtx(ctx, "Sweep cycle completed",
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int32("projects", result.Projects),
		zap.Int32("tallied", result.Tallied),
		zap.Int32("finalized", result.Finalized),
		zap.Int32("tokens_refunded", result.TokensRefunded),
		zap.Int32("refund_failures", result.RefundFailures),
		zap.Int64("entries_purged", result.EntriesPurged),
	)

	return &result, ctx.Err()
}

type projectCounts struct {
	tallied        int32
	finalized      int32
	refunded       int32
	refundFailures int32
}

// sweepProject applies whichever time-based transition the project is due for,
// then refunds it when it became refundable
func (s *refundSweeper) sweepProject(ctx context.Context, id string) (projectCounts, error) {
	var counts projectCounts

	project, err := s.ledger.GetProject(ctx, id)
	if err != nil {
		return counts, fmt.Errorf("failed to get project: %w", err)
	}

	now := uint64(s.clock.Now().Unix())
	switch {
	case project.Closed():
	case project.Status == domain.ProjectStatusVoting && (now > project.VotingDeadline || len(project.Votes) > 0):
		status, err := s.ledger.TallyVotes(ctx, id)
		switch {
		case errors.Is(err, domain.ErrInvalidOperation):
			// voting still open
		case err != nil:
			return counts, fmt.Errorf("failed to tally votes: %w", err)
		default:
			counts.tallied++
			project.Status = status
			logger.InfoCtx(ctx, "Votes tallied", zap.String("project_id", id), zap.Stringer("status", status))
		}
	case project.Status == domain.ProjectStatusFunding && now > project.FundingDeadline:
		if err := s.ledger.FinalizeFunding(ctx, id); err != nil {
			if !errors.Is(err, domain.ErrInvalidOperation) {
				return counts, fmt.Errorf("failed to finalize funding: %w", err)
			}
		} else {
			counts.finalized++
			project.Status = domain.ProjectStatusFailed
			logger.InfoCtx(ctx, "Funding finalized as failed", zap.String("project_id", id))
		}
	}

	if !project.Refundable() || project.RefundProcessed || len(project.Backers) == 0 {
		return counts, nil
	}

	pending, err := s.pendingTokens(ctx, id)
	if err != nil {
		return counts, err
	}
	for _, token := range pending {
		if err := s.refundWithRetry(ctx, id, token); err != nil {
			counts.refundFailures++
			logger.ErrorCtx(ctx, fmt.Errorf("CRITICAL: refund failed after retries: %w", err),
				zap.String("project_id", id),
				zap.String("token", token.Hex()),
			)
			continue
		}
		counts.refunded++
	}

	return counts, nil
}

// pendingTokens lists whitelisted tokens that have not completed their refund
func (s *refundSweeper) pendingTokens(ctx context.Context, id string) ([]common.Address, error) {
	whitelist, err := s.ledger.GetWhitelistedTokens(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get whitelisted tokens: %w", err)
	}
	done, err := s.ledger.GetRefundedTokens(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get refunded tokens: %w", err)
	}

	refunded := make(map[common.Address]bool, len(done))
	for _, t := range done {
		refunded[t] = true
	}
	var pending []common.Address
	for _, t := range whitelist {
		if !refunded[t] {
			pending = append(pending, t)
		}
	}
	return pending, nil
}

// refundWithRetry repeats the refund of one token until a pass leaves no failed transfer
func (s *refundSweeper) refundWithRetry(ctx context.Context, id string, token common.Address) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.config.RetryInitialInterval
	b.MaxInterval = 10 * s.config.RetryInitialInterval
	b.MaxElapsedTime = s.config.RetryMaxElapsedTime
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.5

	backoffWithContext := backoff.WithContext(b, ctx)

	operation := func() error {
		report, err := s.ledger.Refund(ctx, id, token)
		if err != nil {
			if errors.Is(err, domain.ErrRefundAlreadyProcessed) {
				return nil
			}
			if retryableRefundError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		if len(report.Unconfirmed) > 0 {
			// only an admin resolution unblocks these; resending could pay twice
			return backoff.Permanent(fmt.Errorf("%w: %d awaiting resolution", errRefundUnconfirmed, len(report.Unconfirmed)))
		}
		if len(report.Failed) > 0 {
			return fmt.Errorf("%w: %d of %d transfers failed", errRefundIncomplete, len(report.Failed), len(report.Failed)+len(report.Refunded))
		}
		return nil
	}

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Refund pass failed, retrying",
			zap.Error(err),
			zap.String("project_id", id),
			zap.String("token", token.Hex()),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	if err := backoff.RetryNotify(operation, backoffWithContext, notifyOnError); err != nil {
		return fmt.Errorf("failed after %d attempts: %w", attemptCount+1, err)
	}

	if attemptCount > 0 {
		logger.InfoCtx(ctx, "Refund succeeded after retries",
			zap.String("project_id", id),
			zap.Int("total_attempts", attemptCount+1),
		)
	}
	return nil
}

// retryableRefundError reports whether a rejected refund may succeed later.
// An internal error is safe to retry: transfers journaled by the failed pass
// are reported as unconfirmed instead of being sent again.
func retryableRefundError(err error) bool {
	return errors.Is(err, domain.ErrBalanceCheckFailed) ||
		errors.Is(err, domain.ErrInsufficientFunds) ||
		errors.Is(err, domain.ErrInternalError)
}

// sleep sleeps for the given duration but can be interrupted by context cancellation
// Returns true if sleep completed normally, false if interrupted
func (s *refundSweeper) sleep(ctx context.Context, stop <-chan struct{}, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-stop:
		return false
	}
}
