package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-crowdfund/internal/domain"
	"github.com/feral-file/ff-crowdfund/internal/logger"
)

// pendingTransfers journals the token transfers of a project whose outcome
// is not booked yet. An entry is committed before its transfer is sent, so a
// call that dies between the transfer and its bookkeeping leaves it behind
// instead of losing track of moved funds.
type pendingTransfers struct {
	NextSeq uint32                   `json:"next_seq"`
	Items   []domain.PendingTransfer `json:"items"`
}

func (p *pendingTransfers) add(transfer domain.PendingTransfer) domain.PendingTransfer {
	p.NextSeq++
	transfer.Seq = p.NextSeq
	p.Items = append(p.Items, transfer)
	return transfer
}

func (p *pendingTransfers) find(seq uint32) (int, bool) {
	for i, item := range p.Items {
		if item.Seq == seq {
			return i, true
		}
	}
	return 0, false
}

func (p *pendingTransfers) remove(seq uint32) {
	if i, ok := p.find(seq); ok {
		p.Items = append(p.Items[:i], p.Items[i+1:]...)
	}
}

func (p *pendingTransfers) setError(seq uint32, msg string) domain.PendingTransfer {
	i, _ := p.find(seq)
	p.Items[i].Error = msg
	return p.Items[i]
}

// refunding returns the contribution indices with a refund in flight
func (p *pendingTransfers) refunding() map[uint32]bool {
	indices := make(map[uint32]bool)
	for _, item := range p.Items {
		if item.Kind == domain.TransferKindRefund {
			indices[item.Contribution] = true
		}
	}
	return indices
}

// ofToken returns the entries of token in journal order
func (p *pendingTransfers) ofToken(token common.Address) []domain.PendingTransfer {
	items := []domain.PendingTransfer{}
	for _, item := range p.Items {
		if item.Token == token {
			items = append(items, item)
		}
	}
	return items
}

// checkCredit computes the project total and backer aggregate after crediting units
func checkCredit(p *projectRecord, backer, token common.Address, units uint64) (uint64, uint64, error) {
	total, ok := addUint64(p.TotalFunded, units)
	if !ok {
		return 0, 0, fmt.Errorf("%w: total funded overflows", domain.ErrInvalidOperation)
	}
	aggregate, _ := p.backers().get(backerKey{backer: backer, token: token})
	amount, ok := addUint64(aggregate.Amount, units)
	if !ok {
		return 0, 0, fmt.Errorf("%w: backer total overflows", domain.ErrInvalidOperation)
	}
	return total, amount, nil
}

// credit books a settled contribution on p. The caller saves p.
func (t *txn) credit(p *projectRecord, backer, token common.Address, units, timestamp uint64) error {
	total, amount, err := checkCredit(p, backer, token, units)
	if err != nil {
		return err
	}

	backers := p.backers()
	backers.put(domain.BackerAggregate{Backer: backer, Token: token, Amount: amount})
	p.Backers = backers.list()
	p.TotalFunded = total

	contributions, err := t.loadContributions(p.ID)
	if err != nil {
		return err
	}
	contributions = append(contributions, domain.BackerContribution{
		Backer:    backer,
		Token:     token,
		Amount:    units,
		Timestamp: timestamp,
	})
	if err := t.saveContributions(p.ID, contributions); err != nil {
		return err
	}

	t.emit(domain.EventTypeContributionReceived, p.ID, domain.ContributionData{Backer: backer, Token: token, Amount: units})

	if p.Status == domain.ProjectStatusFunding && p.TotalFunded >= p.FundingTarget {
		p.Status = domain.ProjectStatusFunded
		p.IsSuccessful = true
		logger.InfoCtx(t.ctx, "Project reached its funding target", zap.Uint64("total_funded", p.TotalFunded))
		t.emit(domain.EventTypeProjectFunded, p.ID, domain.ProjectStatusData{
			Status:       p.Status,
			TotalFunded:  p.TotalFunded,
			IsSuccessful: true,
		})
	}
	return nil
}

// ListPendingTransfers returns the transfers of project id awaiting resolution
func (c *Contract) ListPendingTransfers(ctx context.Context, id string) ([]domain.PendingTransfer, error) {
	var items []domain.PendingTransfer
	err := c.read(ctx, func(t *txn) error {
		if _, err := t.loadProject(id); err != nil {
			return err
		}
		pending, err := t.loadPendingTransfers(id)
		if err != nil {
			return err
		}
		items = pending.Items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return nonNil(items), nil
}

// ResolvePendingTransfer books the outcome of a journaled transfer once the
// admin has checked it on the token contract. A settled contribution is
// credited to the backer; a settled refund marks its contribution refunded.
// An unsettled entry is dropped, which makes a refund eligible to be sent again.
func (c *Contract) ResolvePendingTransfer(ctx context.Context, admin common.Address, id string, seq uint32, settled bool) error {
	return c.mutate(ctx, "resolve_pending_transfer", id, func(t *txn) error {
		if err := t.requireAdmin(admin); err != nil {
			return err
		}
		p, err := t.loadProject(id)
		if err != nil {
			return err
		}
		pending, err := t.loadPendingTransfers(id)
		if err != nil {
			return err
		}
		i, ok := pending.find(seq)
		if !ok {
			return fmt.Errorf("%w: pending transfer %d", domain.ErrNotFound, seq)
		}
		transfer := pending.Items[i]

		if settled {
			switch transfer.Kind {
			case domain.TransferKindContribution:
				if err := t.credit(p, transfer.Backer, transfer.Token, transfer.Amount, transfer.CreatedAt); err != nil {
					return err
				}
				if err := t.saveProject(p); err != nil {
					return err
				}
			case domain.TransferKindRefund:
				contributions, err := t.loadContributions(id)
				if err != nil {
					return err
				}
				receipts, err := t.loadRefundReceipts(id)
				if err != nil {
					return err
				}
				receipts[transfer.Contribution] = true
				if err := t.saveRefundReceipts(id, receipts, len(contributions)); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: unknown transfer kind %q", domain.ErrInternalError, transfer.Kind)
			}
		}

		pending.remove(seq)
		if err := t.savePendingTransfers(id, pending); err != nil {
			return err
		}

		t.emit(domain.EventTypeTransferResolved, id, domain.TransferResolutionData{
			Transfer: transfer,
			Settled:  settled,
			Admin:    admin,
		})
		return nil
	})
}
