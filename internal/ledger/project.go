package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-crowdfund/internal/domain"
)

// CreateProject registers a project in the Voting phase together with its milestones
func (c *Contract) CreateProject(ctx context.Context, id string, creator common.Address, metadataURI string, fundingTarget uint64, milestoneCount uint32) error {
	return c.mutate(ctx, "create_project", id, func(t *txn) error {
		if id == "" {
			return fmt.Errorf("%w: empty project id", domain.ErrInvalidOperation)
		}

		exists, err := t.has(projectKey(id))
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: project %s", domain.ErrAlreadyExists, id)
		}
		if fundingTarget == 0 {
			return domain.ErrInvalidFundingTarget
		}
		if err := c.checkMilestoneCount(milestoneCount); err != nil {
			return err
		}
		if err := c.auth.RequireAuth(t.ctx, creator); err != nil {
			return err
		}

		now := t.timestamp()
		p := &projectRecord{
			ID:             id,
			Creator:        creator,
			MetadataURI:    metadataURI,
			FundingTarget:  fundingTarget,
			MilestoneCount: milestoneCount,
			CreatedAt:      now,
			VotingDeadline: now + uint64(c.config.VotingPeriod.Seconds()),
			Status:         domain.ProjectStatusVoting,
		}
		if err := t.saveProject(p); err != nil {
			return err
		}
		if err := t.saveMilestones(id, planMilestones(fundingTarget, milestoneCount)); err != nil {
			return err
		}

		index, err := t.loadProjectIndex()
		if err != nil {
			return err
		}
		if !containsID(index, id) {
			if err := t.put(keyProjects, append(index, id)); err != nil {
				return err
			}
		}

		t.emit(domain.EventTypeProjectCreated, id, domain.ProjectCreatedData{
			Creator:        creator,
			FundingTarget:  fundingTarget,
			MilestoneCount: milestoneCount,
			VotingDeadline: p.VotingDeadline,
		})
		return nil
	})
}

func (c *Contract) checkMilestoneCount(count uint32) error {
	if count <= c.config.MilestoneCountMin || count > c.config.MilestoneCountMax {
		return fmt.Errorf("%w: count %d outside (%d, %d]",
			domain.ErrInvalidMilestone, count, c.config.MilestoneCountMin, c.config.MilestoneCountMax)
	}
	return nil
}

// planMilestones splits target evenly over count milestones.
// The last milestone takes the remainder so the amounts sum to target.
func planMilestones(target uint64, count uint32) []domain.Milestone {
	share := target / uint64(count)
	milestones := make([]domain.Milestone, count)
	for i := range milestones {
		number := uint32(i + 1)
		milestones[i] = domain.Milestone{
			Number:      number,
			Description: fmt.Sprintf("Milestone %d", number),
			Amount:      share,
			Status:      domain.MilestoneStatusPending,
		}
	}
	milestones[count-1].Amount += target % uint64(count)
	return milestones
}

func containsID(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

func (c *Contract) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var project *domain.Project
	err := c.read(ctx, func(t *txn) error {
		p, err := t.loadProject(id)
		if err != nil {
			return err
		}
		project, err = t.view(p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// GetProjectStatus returns the stored status. A closed project keeps its status.
func (c *Contract) GetProjectStatus(ctx context.Context, id string) (domain.ProjectStatus, error) {
	var status domain.ProjectStatus
	err := c.read(ctx, func(t *txn) error {
		p, err := t.loadProject(id)
		if err != nil {
			return err
		}
		status = p.Status
		return nil
	})
	return status, err
}

func (c *Contract) GetProjectStats(ctx context.Context, id string) (*domain.ProjectStats, error) {
	var stats *domain.ProjectStats
	err := c.read(ctx, func(t *txn) error {
		p, err := t.loadProject(id)
		if err != nil {
			return err
		}
		stats = &domain.ProjectStats{
			FundingTarget:  p.FundingTarget,
			TotalFunded:    p.TotalFunded,
			MilestoneCount: p.MilestoneCount,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ListProjects returns every project id in creation order
func (c *Contract) ListProjects(ctx context.Context) ([]string, error) {
	var ids []string
	err := c.read(ctx, func(t *txn) error {
		var err error
		ids, err = t.loadProjectIndex()
		return err
	})
	if err != nil {
		return nil, err
	}
	return nonNil(ids), nil
}

// loadOwnedProject loads project id after checking caller signed and created it
func (t *txn) loadOwnedProject(id string, caller common.Address) (*projectRecord, error) {
	if err := t.c.auth.RequireAuth(t.ctx, caller); err != nil {
		return nil, err
	}
	p, err := t.loadProject(id)
	if err != nil {
		return nil, err
	}
	if p.Creator != caller {
		return nil, fmt.Errorf("%w: %s is not the creator", domain.ErrUnauthorized, caller.Hex())
	}
	return p, nil
}

func (c *Contract) UpdateProjectMetadata(ctx context.Context, id string, caller common.Address, metadataURI string) error {
	return c.mutate(ctx, "update_project_metadata", id, func(t *txn) error {
		p, err := t.loadOwnedProject(id, caller)
		if err != nil {
			return err
		}

		p.MetadataURI = metadataURI
		if err := t.saveProject(p); err != nil {
			return err
		}

		t.emit(domain.EventTypeProjectUpdated, id, nil)
		return nil
	})
}

// UpdateProjectMilestoneCount changes the declared count only.
// Existing milestone records are kept as created.
func (c *Contract) UpdateProjectMilestoneCount(ctx context.Context, id string, caller common.Address, milestoneCount uint32) error {
	return c.mutate(ctx, "update_project_milestone_count", id, func(t *txn) error {
		p, err := t.loadOwnedProject(id, caller)
		if err != nil {
			return err
		}
		if err := c.checkMilestoneCount(milestoneCount); err != nil {
			return err
		}

		p.MilestoneCount = milestoneCount
		if err := t.saveProject(p); err != nil {
			return err
		}

		t.emit(domain.EventTypeProjectUpdated, id, domain.ProjectCreatedData{
			Creator:        p.Creator,
			FundingTarget:  p.FundingTarget,
			MilestoneCount: milestoneCount,
			VotingDeadline: p.VotingDeadline,
		})
		return nil
	})
}

// CloseProject marks a project in the Voting phase as closed.
// The stored status is left untouched.
func (c *Contract) CloseProject(ctx context.Context, id string, caller common.Address) error {
	return c.mutate(ctx, "close_project", id, func(t *txn) error {
		p, err := t.loadOwnedProject(id, caller)
		if err != nil {
			return err
		}
		if p.Status != domain.ProjectStatusVoting || p.closed() {
			return fmt.Errorf("%w: project is %s", domain.ErrInvalidOperation, p.Status)
		}

		p.IsClosed = true
		if err := t.saveProject(p); err != nil {
			return err
		}

		t.emit(domain.EventTypeProjectClosed, id, domain.ProjectStatusData{Status: p.Status, TotalFunded: p.TotalFunded})
		return nil
	})
}
