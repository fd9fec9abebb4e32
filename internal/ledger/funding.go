package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-crowdfund/internal/domain"
	"github.com/feral-file/ff-crowdfund/internal/logger"
	"github.com/feral-file/ff-crowdfund/internal/token"
)

// FundProject moves amount of token from funder into custody and credits project id.
//
// The contribution is journaled as a pending transfer and committed before the
// transfer is sent; the credit and the journal removal commit together after
// it succeeded. A transfer whose outcome is unknown stays journaled until an
// admin resolves it.
func (c *Contract) FundProject(ctx context.Context, id string, amount *big.Int, funder common.Address, tokenAddr common.Address) error {
	return c.mutate(ctx, "fund_project", id, func(t *txn) error {
		if amount == nil || amount.Sign() <= 0 {
			return fmt.Errorf("%w: amount must be positive", domain.ErrInsufficientFunds)
		}
		if err := c.auth.RequireAuth(t.ctx, funder); err != nil {
			return err
		}

		p, err := t.loadProject(id)
		if err != nil {
			return err
		}
		if p.Status != domain.ProjectStatusFunding {
			return fmt.Errorf("%w: project is %s", domain.ErrInvalidOperation, p.Status)
		}
		if p.closed() {
			return domain.ErrProjectClosed
		}
		if t.timestamp() > p.FundingDeadline {
			return domain.ErrFundingPeriodEnded
		}

		whitelist, err := t.loadTokens(whitelistKey(id))
		if err != nil {
			return err
		}
		if !containsToken(whitelist, tokenAddr) {
			return fmt.Errorf("%w: %s is not whitelisted", domain.ErrInvalidTokenContract, tokenAddr.Hex())
		}

		if !amount.IsUint64() {
			return fmt.Errorf("%w: amount %s exceeds accounting range", domain.ErrInvalidOperation, amount)
		}
		units := amount.Uint64()
		if _, _, err := checkCredit(p, funder, tokenAddr, units); err != nil {
			return err
		}

		pending, err := t.loadPendingTransfers(id)
		if err != nil {
			return err
		}
		transfer := pending.add(domain.PendingTransfer{
			Kind:      domain.TransferKindContribution,
			Backer:    funder,
			Token:     tokenAddr,
			Amount:    units,
			CreatedAt: t.timestamp(),
		})
		if err := t.savePendingTransfers(id, pending); err != nil {
			return err
		}
		if err := t.flush(); err != nil {
			return err
		}

		if err := c.tokens.Transfer(t.ctx, tokenAddr, funder, c.config.CustodyAddress, amount); err != nil {
			if errors.Is(err, token.ErrTransferUnconfirmed) {
				logger.WarnCtx(t.ctx, "Contribution transfer unconfirmed, left pending",
					zap.Error(err),
					zap.Uint32("seq", transfer.Seq),
				)
				transfer = pending.setError(transfer.Seq, err.Error())
				if err := t.savePendingTransfers(id, pending); err != nil {
					return err
				}
				t.emit(domain.EventTypeTransferUnconfirmed, id, transfer)
				if err := t.flush(); err != nil {
					return err
				}
				return fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
			}

			pending.remove(transfer.Seq)
			if err := t.savePendingTransfers(id, pending); err != nil {
				return err
			}
			if err := t.flush(); err != nil {
				return err
			}
			return fmt.Errorf("%w: %v", domain.ErrTransferFailed, err)
		}

		pending.remove(transfer.Seq)
		if err := t.savePendingTransfers(id, pending); err != nil {
			return err
		}
		if err := t.credit(p, funder, tokenAddr, units, t.timestamp()); err != nil {
			return err
		}
		return t.saveProject(p)
	})
}

func addUint64(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// FinalizeFunding fails a project whose funding window closed below target
func (c *Contract) FinalizeFunding(ctx context.Context, id string) error {
	return c.mutate(ctx, "finalize_funding", id, func(t *txn) error {
		p, err := t.loadProject(id)
		if err != nil {
			return err
		}
		if p.Status != domain.ProjectStatusFunding {
			return fmt.Errorf("%w: project is %s", domain.ErrInvalidOperation, p.Status)
		}
		if t.timestamp() <= p.FundingDeadline {
			return fmt.Errorf("%w: funding still open", domain.ErrInvalidOperation)
		}
		if p.TotalFunded >= p.FundingTarget {
			return fmt.Errorf("%w: funding target reached", domain.ErrInvalidOperation)
		}

		p.Status = domain.ProjectStatusFailed
		if err := t.saveProject(p); err != nil {
			return err
		}

		t.emit(domain.EventTypeProjectFailed, id, domain.ProjectStatusData{Status: p.Status, TotalFunded: p.TotalFunded})
		return nil
	})
}

func (c *Contract) GetWhitelistedTokens(ctx context.Context, id string) ([]common.Address, error) {
	return c.projectTokens(ctx, id, whitelistKey(id))
}

func (c *Contract) GetRefundedTokens(ctx context.Context, id string) ([]common.Address, error) {
	return c.projectTokens(ctx, id, refundedTokensKey(id))
}

func (c *Contract) projectTokens(ctx context.Context, id, key string) ([]common.Address, error) {
	var tokens []common.Address
	err := c.read(ctx, func(t *txn) error {
		if _, err := t.loadProject(id); err != nil {
			return err
		}
		var err error
		tokens, err = t.loadTokens(key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(tokens), nil
}

// GetProjectFunding returns (total funded, funding target)
func (c *Contract) GetProjectFunding(ctx context.Context, id string) (*domain.ProjectFunding, error) {
	var funding *domain.ProjectFunding
	err := c.read(ctx, func(t *txn) error {
		p, err := t.loadProject(id)
		if err != nil {
			return err
		}
		funding = &domain.ProjectFunding{TotalFunded: p.TotalFunded, FundingTarget: p.FundingTarget}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return funding, nil
}

// GetBackerContribution returns the running total of backer in a single token:
// the first per-token aggregate the backer opened on the project. Contributions
// in other tokens are not added in, since amounts of different tokens do not
// share a unit. It returns 0 when backer never funded the project.
func (c *Contract) GetBackerContribution(ctx context.Context, id string, backer common.Address) (uint64, error) {
	var amount uint64
	err := c.read(ctx, func(t *txn) error {
		p, err := t.loadProject(id)
		if err != nil {
			return err
		}
		for _, a := range p.Backers {
			if a.Backer == backer {
				amount = a.Amount
				break
			}
		}
		return nil
	})
	return amount, err
}

// ListContributions returns the contribution log of project id
func (c *Contract) ListContributions(ctx context.Context, id string) ([]domain.BackerContribution, error) {
	var log []domain.BackerContribution
	err := c.read(ctx, func(t *txn) error {
		if _, err := t.loadProject(id); err != nil {
			return err
		}
		var err error
		log, err = t.loadContributions(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(log), nil
}
