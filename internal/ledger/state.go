package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-crowdfund/internal/domain"
	"github.com/feral-file/ff-crowdfund/internal/events"
	"github.com/feral-file/ff-crowdfund/internal/store"
)

// projectRecord is the stored core of a project.
// Votes, milestones and the contribution log live under their own keys.
type projectRecord struct {
	ID               string                     `json:"id"`
	Creator          common.Address             `json:"creator"`
	MetadataURI      string                     `json:"metadata_uri"`
	FundingTarget    uint64                     `json:"funding_target"`
	MilestoneCount   uint32                     `json:"milestone_count"`
	CurrentMilestone uint32                     `json:"current_milestone"`
	TotalFunded      uint64                     `json:"total_funded"`
	Backers          []domain.BackerAggregate   `json:"backers"`
	Validated        bool                       `json:"validated"`
	IsSuccessful     bool                       `json:"is_successful"`
	IsClosed         bool                       `json:"is_closed"`
	RefundProcessed  bool                       `json:"refund_processed"`
	CreatedAt        uint64                     `json:"created_at"`
	VotingDeadline   uint64                     `json:"voting_deadline"`
	FundingDeadline  uint64                     `json:"funding_deadline"`
	Status           domain.ProjectStatus       `json:"status"`
	Releases         []domain.MilestoneRelease  `json:"releases"`
	Approvals        []domain.MilestoneApproval `json:"approvals"`
}

func (p *projectRecord) closed() bool {
	return p.IsClosed
}

func (p *projectRecord) refundable() bool {
	return p.Status == domain.ProjectStatusFailed || p.IsClosed
}

type backerKey struct {
	backer common.Address
	token  common.Address
}

func backerKeyOf(a domain.BackerAggregate) backerKey {
	return backerKey{backer: a.Backer, token: a.Token}
}

func voterOf(v domain.Vote) common.Address {
	return v.Voter
}

// backers returns the per (backer, token) running totals of p
func (p *projectRecord) backers() *ordered[backerKey, domain.BackerAggregate] {
	return newOrdered(backerKeyOf, p.Backers)
}

// txn buffers the reads and writes of one ledger call.
// Nothing reaches the store until commit.
type txn struct {
	ctx    context.Context
	c      *Contract
	now    time.Time
	writes map[string][]byte
	order  []string
	reads  map[string]bool
	events []domain.Event

	// durable counts the events whose writes a flush already committed
	durable int
	flushed int
}

func (c *Contract) begin(ctx context.Context) *txn {
	return &txn{
		ctx:    ctx,
		c:      c,
		now:    c.clock.Now(),
		writes: make(map[string][]byte),
		reads:  make(map[string]bool),
	}
}

// timestamp is the ledger time of the call in unix seconds
func (t *txn) timestamp() uint64 {
	return uint64(t.now.Unix())
}

// get decodes key into v and reports whether the key exists
func (t *txn) get(key string, v interface{}) (bool, error) {
	data, ok := t.writes[key]
	if !ok {
		var err error
		data, ok, err = t.c.store.Get(t.ctx, key)
		if err != nil {
			return false, fmt.Errorf("%w: failed to read %s: %v", domain.ErrInternalError, key, err)
		}
		if !ok {
			return false, nil
		}
		t.reads[key] = true
	}

	if err := t.c.codec.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: failed to decode %s: %v", domain.ErrInternalError, key, err)
	}
	return true, nil
}

func (t *txn) has(key string) (bool, error) {
	if _, ok := t.writes[key]; ok {
		return true, nil
	}
	ok, err := t.c.store.Has(t.ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: failed to read %s: %v", domain.ErrInternalError, key, err)
	}
	return ok, nil
}

func (t *txn) put(key string, v interface{}) error {
	data, err := t.c.codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: failed to encode %s: %v", domain.ErrInternalError, key, err)
	}
	if _, ok := t.writes[key]; !ok {
		t.order = append(t.order, key)
	}
	t.writes[key] = data
	return nil
}

func (t *txn) emit(eventType domain.EventType, projectID string, data interface{}) {
	t.events = append(t.events, domain.Event{
		ID:        events.NewID(t.now),
		Type:      eventType,
		ProjectID: projectID,
		Timestamp: t.now.UTC(),
		Data:      data,
	})
}

// commit writes the buffered values and extends every entry read by the call
func (t *txn) commit(ctx context.Context) error {
	if len(t.writes) == 0 {
		return nil
	}

	ttl := t.c.config
	writes := make([]store.Write, 0, len(t.order)+len(t.reads))
	for _, key := range t.order {
		writes = append(writes, store.Write{
			Key:       key,
			Value:     t.writes[key],
			Threshold: ttl.EntryTTLThreshold,
			ExtendTo:  ttl.EntryTTLBump,
		})
	}
	for key := range t.reads {
		if _, ok := t.writes[key]; ok {
			continue
		}
		writes = append(writes, store.Write{
			Key:       key,
			Threshold: ttl.EntryTTLThreshold,
			ExtendTo:  ttl.EntryTTLBump,
		})
	}

	return t.c.store.Apply(ctx, writes)
}

// flush commits the writes buffered so far ahead of an external side effect.
// Flushed writes stay committed even when the call fails afterwards.
func (t *txn) flush() error {
	if err := t.commit(context.WithoutCancel(t.ctx)); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", domain.ErrInternalError, err)
	}
	t.flushed += len(t.order)
	t.writes = make(map[string][]byte)
	t.order = nil
	t.reads = make(map[string]bool)
	t.durable = len(t.events)
	return nil
}

// Instance state

func (t *txn) initialized() (bool, error) {
	var initialized bool
	if _, err := t.get(keyInitialized, &initialized); err != nil {
		return false, err
	}
	return initialized, nil
}

func (t *txn) loadAdmin() (common.Address, error) {
	var admin common.Address
	ok, err := t.get(keyAdmin, &admin)
	if err != nil {
		return common.Address{}, err
	}
	if !ok {
		return common.Address{}, fmt.Errorf("%w: admin", domain.ErrNotFound)
	}
	return admin, nil
}

func (t *txn) loadVersion() (uint32, error) {
	var version uint32
	if _, err := t.get(keyVersion, &version); err != nil {
		return 0, err
	}
	return version, nil
}

// requireAdmin checks that identity signed the call and is the stored admin
func (t *txn) requireAdmin(identity common.Address) error {
	if err := t.c.auth.RequireAuth(t.ctx, identity); err != nil {
		return err
	}
	admin, err := t.loadAdmin()
	if err != nil {
		return err
	}
	if admin != identity {
		return fmt.Errorf("%w: %s is not the admin", domain.ErrUnauthorized, identity.Hex())
	}
	return nil
}

func (t *txn) loadProjectIndex() ([]string, error) {
	var ids []string
	if _, err := t.get(keyProjects, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Project state

func (t *txn) loadProject(id string) (*projectRecord, error) {
	var p projectRecord
	ok, err := t.get(projectKey(id), &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: project %s", domain.ErrNotFound, id)
	}
	return &p, nil
}

func (t *txn) saveProject(p *projectRecord) error {
	return t.put(projectKey(p.ID), p)
}

func (t *txn) loadVotes(id string) (*ordered[common.Address, domain.Vote], error) {
	var votes []domain.Vote
	if _, err := t.get(votesKey(id), &votes); err != nil {
		return nil, err
	}
	return newOrdered(voterOf, votes), nil
}

func (t *txn) saveVotes(id string, votes *ordered[common.Address, domain.Vote]) error {
	return t.put(votesKey(id), votes.list())
}

func (t *txn) loadMilestones(id string) ([]domain.Milestone, error) {
	var milestones []domain.Milestone
	if _, err := t.get(milestonesKey(id), &milestones); err != nil {
		return nil, err
	}
	return milestones, nil
}

func (t *txn) saveMilestones(id string, milestones []domain.Milestone) error {
	return t.put(milestonesKey(id), milestones)
}

func (t *txn) loadContributions(id string) ([]domain.BackerContribution, error) {
	var log []domain.BackerContribution
	if _, err := t.get(contributionsKey(id), &log); err != nil {
		return nil, err
	}
	return log, nil
}

func (t *txn) saveContributions(id string, log []domain.BackerContribution) error {
	return t.put(contributionsKey(id), log)
}

func (t *txn) loadTokens(key string) ([]common.Address, error) {
	var tokens []common.Address
	if _, err := t.get(key, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (t *txn) loadRefundReceipts(id string) (map[uint32]bool, error) {
	var indices []uint32
	if _, err := t.get(refundReceiptsKey(id), &indices); err != nil {
		return nil, err
	}
	receipts := make(map[uint32]bool, len(indices))
	for _, i := range indices {
		receipts[i] = true
	}
	return receipts, nil
}

func (t *txn) saveRefundReceipts(id string, receipts map[uint32]bool, count int) error {
	indices := make([]uint32, 0, len(receipts))
	for i := 0; i < count; i++ {
		if receipts[uint32(i)] {
			indices = append(indices, uint32(i))
		}
	}
	return t.put(refundReceiptsKey(id), indices)
}

func (t *txn) loadPendingTransfers(id string) (*pendingTransfers, error) {
	var pending pendingTransfers
	if _, err := t.get(pendingTransfersKey(id), &pending); err != nil {
		return nil, err
	}
	return &pending, nil
}

func (t *txn) savePendingTransfers(id string, pending *pendingTransfers) error {
	return t.put(pendingTransfersKey(id), pending)
}

func containsToken(tokens []common.Address, token common.Address) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}

// view assembles the read model of a project
func (t *txn) view(p *projectRecord) (*domain.Project, error) {
	votes, err := t.loadVotes(p.ID)
	if err != nil {
		return nil, err
	}
	milestones, err := t.loadMilestones(p.ID)
	if err != nil {
		return nil, err
	}

	return &domain.Project{
		ID:               p.ID,
		Creator:          p.Creator,
		MetadataURI:      p.MetadataURI,
		FundingTarget:    p.FundingTarget,
		MilestoneCount:   p.MilestoneCount,
		CurrentMilestone: p.CurrentMilestone,
		TotalFunded:      p.TotalFunded,
		Backers:          nonNil(p.Backers),
		Votes:            nonNil(votes.list()),
		Validated:        p.Validated,
		IsSuccessful:     p.IsSuccessful,
		IsClosed:         p.IsClosed,
		RefundProcessed:  p.RefundProcessed,
		CreatedAt:        p.CreatedAt,
		VotingDeadline:   p.VotingDeadline,
		FundingDeadline:  p.FundingDeadline,
		Status:           p.Status,
		Milestones:       nonNil(milestones),
		Releases:         nonNil(p.Releases),
		Approvals:        nonNil(p.Approvals),
	}, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
