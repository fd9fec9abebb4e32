package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-crowdfund/internal/domain"
)

// loadMilestoneForDecision runs the shared guards of the admin milestone decisions
func (t *txn) loadMilestoneForDecision(admin common.Address, id string, number uint32) (*projectRecord, []domain.Milestone, int, error) {
	if err := t.requireAdmin(admin); err != nil {
		return nil, nil, 0, err
	}

	p, err := t.loadProject(id)
	if err != nil {
		return nil, nil, 0, err
	}
	if p.Status == domain.ProjectStatusVoting || p.Status == domain.ProjectStatusFunding || p.closed() {
		return nil, nil, 0, fmt.Errorf("%w: milestones are not actionable while %s", domain.ErrInvalidOperation, p.Status)
	}
	if admin == p.Creator {
		return nil, nil, 0, fmt.Errorf("%w: creator cannot judge own milestones", domain.ErrInvalidOperation)
	}

	milestones, err := t.loadMilestones(id)
	if err != nil {
		return nil, nil, 0, err
	}
	i, err := milestoneIndex(milestones, number)
	if err != nil {
		return nil, nil, 0, err
	}
	return p, milestones, i, nil
}

// milestoneIndex maps a 1-based milestone number to its slice index
func milestoneIndex(milestones []domain.Milestone, number uint32) (int, error) {
	if number == 0 || int(number) > len(milestones) {
		return 0, fmt.Errorf("%w: milestone %d out of range 1..%d", domain.ErrInvalidOperation, number, len(milestones))
	}
	return int(number) - 1, nil
}

// ReleaseMilestone submits a pending or rejected milestone for review
func (c *Contract) ReleaseMilestone(ctx context.Context, admin common.Address, id string, number uint32) error {
	return c.mutate(ctx, "release_milestone", id, func(t *txn) error {
		p, milestones, i, err := t.loadMilestoneForDecision(admin, id, number)
		if err != nil {
			return err
		}

		m := &milestones[i]
		switch m.Status {
		case domain.MilestoneStatusReleased:
			return domain.ErrMilestoneAlreadyReleased
		case domain.MilestoneStatusApproved:
			return domain.ErrMilestoneAlreadyApproved
		}

		now := t.timestamp()
		m.Status = domain.MilestoneStatusReleased
		m.ReleasedAt = &now
		m.CompletedAt = nil
		p.Releases = append(p.Releases, domain.MilestoneRelease{Number: number, Timestamp: now})

		if err := t.saveMilestones(id, milestones); err != nil {
			return err
		}
		if err := t.saveProject(p); err != nil {
			return err
		}

		t.emit(domain.EventTypeMilestoneReleased, id, domain.MilestoneData{Number: number, Amount: m.Amount, Admin: admin})
		return nil
	})
}

// ApproveMilestone accepts a released milestone and advances the project
func (c *Contract) ApproveMilestone(ctx context.Context, admin common.Address, id string, number uint32) error {
	return c.mutate(ctx, "approve_milestone", id, func(t *txn) error {
		p, milestones, i, err := t.loadMilestoneForDecision(admin, id, number)
		if err != nil {
			return err
		}

		m := &milestones[i]
		if err := checkReleased(m); err != nil {
			return err
		}

		now := t.timestamp()
		m.Status = domain.MilestoneStatusApproved
		m.CompletedAt = &now
		p.Approvals = append(p.Approvals, domain.MilestoneApproval{Number: number, Approver: admin, Timestamp: now})
		if number > p.CurrentMilestone {
			p.CurrentMilestone = number
		}

		if err := t.saveMilestones(id, milestones); err != nil {
			return err
		}
		if err := t.saveProject(p); err != nil {
			return err
		}

		t.emit(domain.EventTypeMilestoneApproved, id, domain.MilestoneData{Number: number, Amount: m.Amount, Admin: admin})
		return nil
	})
}

// RejectMilestone turns a released milestone down. It may be released again.
func (c *Contract) RejectMilestone(ctx context.Context, admin common.Address, id string, number uint32) error {
	return c.mutate(ctx, "reject_milestone", id, func(t *txn) error {
		_, milestones, i, err := t.loadMilestoneForDecision(admin, id, number)
		if err != nil {
			return err
		}

		m := &milestones[i]
		if err := checkReleased(m); err != nil {
			return err
		}

		now := t.timestamp()
		m.Status = domain.MilestoneStatusRejected
		m.CompletedAt = &now

		if err := t.saveMilestones(id, milestones); err != nil {
			return err
		}

		t.emit(domain.EventTypeMilestoneRejected, id, domain.MilestoneData{Number: number, Amount: m.Amount, Admin: admin})
		return nil
	})
}

func checkReleased(m *domain.Milestone) error {
	switch m.Status {
	case domain.MilestoneStatusReleased:
		return nil
	case domain.MilestoneStatusApproved:
		return domain.ErrMilestoneAlreadyApproved
	case domain.MilestoneStatusRejected:
		return domain.ErrMilestoneAlreadyRejected
	default:
		return fmt.Errorf("%w: milestone %d is %s", domain.ErrInvalidOperation, m.Number, m.Status)
	}
}

func (c *Contract) GetMilestone(ctx context.Context, id string, number uint32) (*domain.Milestone, error) {
	var milestone *domain.Milestone
	err := c.read(ctx, func(t *txn) error {
		if _, err := t.loadProject(id); err != nil {
			return err
		}
		milestones, err := t.loadMilestones(id)
		if err != nil {
			return err
		}
		i, err := milestoneIndex(milestones, number)
		if err != nil {
			return err
		}
		milestone = &milestones[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return milestone, nil
}

func (c *Contract) GetMilestoneStatus(ctx context.Context, id string, number uint32) (domain.MilestoneStatus, error) {
	m, err := c.GetMilestone(ctx, id, number)
	if err != nil {
		return "", err
	}
	return m.Status, nil
}

func (c *Contract) GetProjectMilestones(ctx context.Context, id string) ([]domain.Milestone, error) {
	var milestones []domain.Milestone
	err := c.read(ctx, func(t *txn) error {
		if _, err := t.loadProject(id); err != nil {
			return err
		}
		var err error
		milestones, err = t.loadMilestones(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(milestones), nil
}
