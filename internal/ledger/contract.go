package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-crowdfund/internal/adapter"
	"github.com/feral-file/ff-crowdfund/internal/auth"
	"github.com/feral-file/ff-crowdfund/internal/domain"
	"github.com/feral-file/ff-crowdfund/internal/events"
	"github.com/feral-file/ff-crowdfund/internal/logger"
	"github.com/feral-file/ff-crowdfund/internal/store"
	"github.com/feral-file/ff-crowdfund/internal/token"
)

// Config holds the ledger policy
type Config struct {
	VotingPeriod  time.Duration
	FundingPeriod time.Duration

	// A milestone count must be in (MilestoneCountMin, MilestoneCountMax]
	MilestoneCountMin uint32
	MilestoneCountMax uint32

	// VoteQuorum is the minimum number of votes before a tally can pass
	VoteQuorum uint32

	EntryTTLBump      time.Duration
	EntryTTLThreshold time.Duration

	// CustodyAddress holds the pooled funds of every project
	CustodyAddress common.Address
}

// DefaultConfig returns the default ledger policy for a custody address
func DefaultConfig(custody common.Address) Config {
	return Config{
		VotingPeriod:      domain.DEFAULT_VOTING_PERIOD,
		FundingPeriod:     domain.DEFAULT_FUNDING_PERIOD,
		MilestoneCountMin: domain.DEFAULT_MILESTONE_COUNT_MIN,
		MilestoneCountMax: domain.DEFAULT_MILESTONE_COUNT_MAX,
		VoteQuorum:        domain.DEFAULT_VOTE_QUORUM,
		EntryTTLBump:      domain.DEFAULT_ENTRY_TTL_BUMP,
		EntryTTLThreshold: domain.DEFAULT_ENTRY_TTL_THRESHOLD,
		CustodyAddress:    custody,
	}
}

// Validate checks that the policy is usable
func (c Config) Validate() error {
	if c.VotingPeriod <= 0 || c.FundingPeriod <= 0 {
		return errors.New("voting and funding periods must be positive")
	}
	if c.MilestoneCountMax <= c.MilestoneCountMin {
		return fmt.Errorf("milestone count bounds (%d, %d] are empty", c.MilestoneCountMin, c.MilestoneCountMax)
	}
	if c.EntryTTLBump <= 0 || c.EntryTTLThreshold > c.EntryTTLBump {
		return errors.New("entry TTL threshold must not exceed a positive bump")
	}
	if c.CustodyAddress == (common.Address{}) {
		return errors.New("custody address is required")
	}
	return nil
}

var _ Ledger = (*Contract)(nil)

// Contract implements Ledger on top of the storage, authorization,
// token and event collaborators
type Contract struct {
	config Config
	store  store.Store
	locker store.Locker
	auth   auth.Authorizer
	tokens token.Client
	sink   events.Sink
	clock  adapter.Clock
	codec  adapter.Codec
}

// New creates a ledger contract
func New(
	cfg Config,
	st store.Store,
	locker store.Locker,
	authorizer auth.Authorizer,
	tokens token.Client,
	sink events.Sink,
	clock adapter.Clock,
	codec adapter.Codec,
) *Contract {
	return &Contract{
		config: cfg,
		store:  st,
		locker: locker,
		auth:   authorizer,
		tokens: tokens,
		sink:   sink,
		clock:  clock,
		codec:  codec,
	}
}

// mutate runs fn as one serialized call. The writes and events of fn are
// committed only when it returns nil, except what fn flushed before failing.
func (c *Contract) mutate(ctx context.Context, operation, projectID string, fn func(t *txn) error) error {
	ctx = logger.WithOperation(ctx, operation, projectID)

	unlock, err := c.locker.Lock(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to acquire ledger lock: %v", domain.ErrInternalError, err)
	}
	defer unlock()

	t := c.begin(ctx)
	if err := fn(t); err != nil {
		logger.DebugCtx(ctx, "Ledger call rejected", zap.Error(err), zap.Uint32("code", domain.ErrorCode(err)))
		if t.durable > 0 {
			logger.WarnCtx(ctx, "Ledger call failed after a partial commit", zap.Int("writes", t.flushed))
			c.deliver(context.WithoutCancel(ctx), t.events[:t.durable])
		}
		return err
	}

	// Token transfers may already have happened, so the commit outlives the caller
	commitCtx := context.WithoutCancel(ctx)
	if err := t.commit(commitCtx); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to commit ledger call"))
		return fmt.Errorf("%w: failed to commit: %v", domain.ErrInternalError, err)
	}

	logger.InfoCtx(ctx, "Ledger call committed", zap.Int("writes", t.flushed+len(t.order)), zap.Int("events", len(t.events)))
	c.deliver(commitCtx, t.events)
	return nil
}

// read runs fn as a serialized read-only call
func (c *Contract) read(ctx context.Context, fn func(t *txn) error) error {
	unlock, err := c.locker.Lock(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed to acquire ledger lock: %v", domain.ErrInternalError, err)
	}
	defer unlock()

	return fn(c.begin(ctx))
}

// deliver hands committed events to the sink. Sink failures never fail the call.
func (c *Contract) deliver(ctx context.Context, evts []domain.Event) {
	for _, event := range evts {
		if err := c.sink.Publish(ctx, event); err != nil {
			logger.WarnCtx(ctx, "Failed to publish ledger event",
				zap.Error(err),
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
			)
		}
	}
}
