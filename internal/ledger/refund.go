package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/feral-file/ff-crowdfund/internal/domain"
	"github.com/feral-file/ff-crowdfund/internal/logger"
	"github.com/feral-file/ff-crowdfund/internal/token"
)

// Refund runs one refund pass of token for project id.
//
// Every contribution of token not yet refunded gets its own transfer out of
// custody. The transfers of a pass are journaled and committed before the first
// one is sent, so a pass that dies midway never sends the same refund twice. A
// failed transfer is reported and left for the next pass; the successful ones
// are committed either way. A transfer with an unknown outcome stays journaled
// and is reported as unconfirmed until an admin resolves it. The token is marked
// refunded once no contribution of it remains and none is pending.
func (c *Contract) Refund(ctx context.Context, id string, tokenAddr common.Address) (*domain.RefundReport, error) {
	var report *domain.RefundReport
	err := c.mutate(ctx, "refund", id, func(t *txn) error {
		p, err := t.loadProject(id)
		if err != nil {
			return err
		}
		if !p.refundable() {
			return fmt.Errorf("%w: project is %s and not closed", domain.ErrInvalidOperation, p.Status)
		}
		if len(p.Backers) == 0 {
			return domain.ErrNoBackerContributions
		}

		refunded, err := t.loadTokens(refundedTokensKey(id))
		if err != nil {
			return err
		}
		if p.RefundProcessed || containsToken(refunded, tokenAddr) {
			return domain.ErrRefundAlreadyProcessed
		}

		whitelist, err := t.loadTokens(whitelistKey(id))
		if err != nil {
			return err
		}
		if !containsToken(whitelist, tokenAddr) {
			return fmt.Errorf("%w: %s is not whitelisted", domain.ErrInvalidTokenContract, tokenAddr.Hex())
		}

		contributions, err := t.loadContributions(id)
		if err != nil {
			return err
		}
		receipts, err := t.loadRefundReceipts(id)
		if err != nil {
			return err
		}
		pending, err := t.loadPendingTransfers(id)
		if err != nil {
			return err
		}

		var (
			due  []uint32
			owed uint64
		)
		inFlight := pending.refunding()
		for i, contribution := range contributions {
			if contribution.Token != tokenAddr || receipts[uint32(i)] || inFlight[uint32(i)] {
				continue
			}
			var ok bool
			if owed, ok = addUint64(owed, contribution.Amount); !ok {
				return fmt.Errorf("%w: owed sum overflows", domain.ErrInternalError)
			}
			due = append(due, uint32(i))
		}

		if owed > 0 {
			balance, err := c.tokens.Balance(t.ctx, tokenAddr, c.config.CustodyAddress)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrBalanceCheckFailed, err)
			}
			if balance.Cmp(token.FromUint64(owed)) < 0 {
				return fmt.Errorf("%w: custody holds %s of %s owed", domain.ErrInsufficientFunds, balance, token.FromUint64(owed))
			}
		}

		report = &domain.RefundReport{
			ProjectID:   id,
			Token:       tokenAddr,
			Owed:        owed,
			Refunded:    []domain.RefundTransfer{},
			Failed:      []domain.RefundTransfer{},
			Unconfirmed: pending.ofToken(tokenAddr),
		}

		seqs := make(map[uint32]uint32, len(due))
		for _, i := range due {
			contribution := contributions[i]
			journaled := pending.add(domain.PendingTransfer{
				Kind:         domain.TransferKindRefund,
				Backer:       contribution.Backer,
				Token:        tokenAddr,
				Amount:       contribution.Amount,
				Contribution: i,
				CreatedAt:    t.timestamp(),
			})
			seqs[i] = journaled.Seq
		}
		if len(due) > 0 {
			if err := t.savePendingTransfers(id, pending); err != nil {
				return err
			}
			if err := t.flush(); err != nil {
				return err
			}
		}

		for _, i := range due {
			contribution := contributions[i]
			transfer := domain.RefundTransfer{Index: i, Backer: contribution.Backer, Amount: contribution.Amount}
			data := domain.ContributionData{Backer: contribution.Backer, Token: tokenAddr, Amount: contribution.Amount}

			err := c.tokens.Transfer(t.ctx, tokenAddr, c.config.CustodyAddress, contribution.Backer, token.FromUint64(contribution.Amount))
			switch {
			case err == nil:
				receipts[i] = true
				pending.remove(seqs[i])
				report.Refunded = append(report.Refunded, transfer)
				t.emit(domain.EventTypeRefundProcessed, id, data)
			case errors.Is(err, token.ErrTransferUnconfirmed):
				logger.WarnCtx(t.ctx, "Refund transfer unconfirmed, left pending",
					zap.Error(err),
					zap.Uint32("contribution", i),
					zap.Uint32("seq", seqs[i]),
				)
				unconfirmed := pending.setError(seqs[i], err.Error())
				report.Unconfirmed = append(report.Unconfirmed, unconfirmed)
				t.emit(domain.EventTypeTransferUnconfirmed, id, unconfirmed)
			default:
				logger.WarnCtx(t.ctx, "Refund transfer failed",
					zap.Error(err),
					zap.Uint32("contribution", i),
					zap.String("backer", contribution.Backer.Hex()),
				)
				pending.remove(seqs[i])
				transfer.Error = err.Error()
				data.Error = err.Error()
				report.Failed = append(report.Failed, transfer)
				t.emit(domain.EventTypeRefundFailed, id, data)
			}
		}

		if len(report.Refunded) > 0 {
			if err := t.saveRefundReceipts(id, receipts, len(contributions)); err != nil {
				return err
			}
		}
		if len(due) > 0 {
			if err := t.savePendingTransfers(id, pending); err != nil {
				return err
			}
		}

		if len(report.Failed) == 0 && len(report.Unconfirmed) == 0 {
			report.TokenCompleted = true
			refunded = append(refunded, tokenAddr)
			if err := t.put(refundedTokensKey(id), refunded); err != nil {
				return err
			}

			if allRefunded(whitelist, refunded) {
				p.RefundProcessed = true
				report.RefundProcessed = true
				if err := t.saveProject(p); err != nil {
					return err
				}
			}
		}

		t.emit(domain.EventTypeRefundPass, id, report)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func allRefunded(whitelist, refunded []common.Address) bool {
	for _, addr := range whitelist {
		if !containsToken(refunded, addr) {
			return false
		}
	}
	return true
}
