package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-crowdfund/internal/domain"
)

// loadVotingProject loads project id and checks that its voting window is open to voter
func (t *txn) loadVotingProject(id string, voter common.Address) (*projectRecord, error) {
	p, err := t.loadProject(id)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.ProjectStatusVoting || p.closed() {
		return nil, fmt.Errorf("%w: project is not open for voting", domain.ErrInvalidOperation)
	}
	if t.timestamp() > p.VotingDeadline {
		return nil, domain.ErrVotingPeriodEnded
	}
	if voter == p.Creator {
		return nil, fmt.Errorf("%w: creator cannot vote on own project", domain.ErrInvalidOperation)
	}
	return p, nil
}

// VoteProject records the single vote of voter on project id
func (c *Contract) VoteProject(ctx context.Context, id string, voter common.Address, value domain.VoteValue) error {
	return c.mutate(ctx, "vote_project", id, func(t *txn) error {
		if err := c.auth.RequireAuth(t.ctx, voter); err != nil {
			return err
		}
		if _, err := t.loadVotingProject(id, voter); err != nil {
			return err
		}

		votes, err := t.loadVotes(id)
		if err != nil {
			return err
		}
		if votes.has(voter) {
			return domain.ErrAlreadyVoted
		}
		if !value.Valid() {
			return fmt.Errorf("%w: %d", domain.ErrInvalidVote, value)
		}

		votes.put(domain.Vote{Voter: voter, Value: value, Timestamp: t.timestamp()})
		if err := t.saveVotes(id, votes); err != nil {
			return err
		}

		t.emit(domain.EventTypeVoted, id, domain.VoteData{Voter: voter, Value: value})
		return nil
	})
}

// WithdrawVote removes the vote of voter from project id
func (c *Contract) WithdrawVote(ctx context.Context, id string, voter common.Address) error {
	return c.mutate(ctx, "withdraw_vote", id, func(t *txn) error {
		if err := c.auth.RequireAuth(t.ctx, voter); err != nil {
			return err
		}
		if _, err := t.loadVotingProject(id, voter); err != nil {
			return err
		}

		votes, err := t.loadVotes(id)
		if err != nil {
			return err
		}
		if !votes.remove(voter) {
			return domain.ErrNotVoted
		}
		if err := t.saveVotes(id, votes); err != nil {
			return err
		}

		t.emit(domain.EventTypeVoteWithdrawn, id, domain.VoteData{Voter: voter})
		return nil
	})
}

func (c *Contract) HasVoted(ctx context.Context, id string, voter common.Address) (bool, error) {
	var voted bool
	err := c.read(ctx, func(t *txn) error {
		if _, err := t.loadProject(id); err != nil {
			return err
		}
		votes, err := t.loadVotes(id)
		if err != nil {
			return err
		}
		voted = votes.has(voter)
		return nil
	})
	return voted, err
}

// GetVote returns the vote of voter, or ErrNotVoted
func (c *Contract) GetVote(ctx context.Context, id string, voter common.Address) (*domain.Vote, error) {
	var vote *domain.Vote
	err := c.read(ctx, func(t *txn) error {
		if _, err := t.loadProject(id); err != nil {
			return err
		}
		votes, err := t.loadVotes(id)
		if err != nil {
			return err
		}
		v, ok := votes.get(voter)
		if !ok {
			return domain.ErrNotVoted
		}
		vote = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vote, nil
}

// TallyVotes decides the Voting phase of project id.
// A quorum with more approvals than rejections opens funding; an expired
// window without one fails the project.
func (c *Contract) TallyVotes(ctx context.Context, id string) (domain.ProjectStatus, error) {
	var status domain.ProjectStatus
	err := c.mutate(ctx, "tally_votes", id, func(t *txn) error {
		p, err := t.loadProject(id)
		if err != nil {
			return err
		}
		if p.Status != domain.ProjectStatusVoting || p.closed() {
			return fmt.Errorf("%w: project is not in voting", domain.ErrInvalidOperation)
		}

		votes, err := t.loadVotes(id)
		if err != nil {
			return err
		}
		var approvals, rejections uint32
		for _, v := range votes.list() {
			if v.Value == domain.VoteApprove {
				approvals++
			} else {
				rejections++
			}
		}

		now := t.timestamp()
		switch {
		case uint32(votes.size()) >= c.config.VoteQuorum && approvals > rejections:
			p.Status = domain.ProjectStatusFunding
			p.Validated = true
			p.FundingDeadline = now + uint64(c.config.FundingPeriod.Seconds())
			t.emit(domain.EventTypeVotingPassed, id, domain.ProjectStatusData{
				Status:          p.Status,
				FundingDeadline: p.FundingDeadline,
			})
		case now > p.VotingDeadline:
			p.Status = domain.ProjectStatusFailed
			t.emit(domain.EventTypeProjectFailed, id, domain.ProjectStatusData{Status: p.Status})
		default:
			return fmt.Errorf("%w: voting still open (%d approvals, %d rejections)", domain.ErrInvalidOperation, approvals, rejections)
		}

		status = p.Status
		return t.saveProject(p)
	})
	if err != nil {
		return 0, err
	}
	return status, nil
}
