package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-crowdfund/internal/domain"
)

func TestVoteProject(t *testing.T) {
	l := setupTestLedger(t)
	l.createProject(t, "p1", 1000, 5)
	ctx := context.Background()

	require.NoError(t, l.contract.VoteProject(signed(voterA), "p1", voterA, domain.VoteApprove))

	voted, err := l.contract.HasVoted(ctx, "p1", voterA)
	require.NoError(t, err)
	assert.True(t, voted)

	vote, err := l.contract.GetVote(ctx, "p1", voterA)
	require.NoError(t, err)
	assert.Equal(t, &domain.Vote{Voter: voterA, Value: domain.VoteApprove, Timestamp: uint64(testStart.Unix())}, vote)

	voted, err = l.contract.HasVoted(ctx, "p1", voterB)
	require.NoError(t, err)
	assert.False(t, voted)

	_, err = l.contract.GetVote(ctx, "p1", voterB)
	assert.ErrorIs(t, err, domain.ErrNotVoted)

	// Voting never changes the status by itself
	status, err := l.contract.GetProjectStatus(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusVoting, status)
}

func TestVoteProject_Errors(t *testing.T) {
	l := setupTestLedger(t)
	l.createProject(t, "p1", 1000, 5)
	require.NoError(t, l.contract.VoteProject(signed(voterA), "p1", voterA, domain.VoteApprove))

	tests := []struct {
		name     string
		id       string
		voter    common.Address
		value    domain.VoteValue
		expected error
	}{
		{name: "missing project", id: "nope", voter: voterB, value: domain.VoteApprove, expected: domain.ErrNotFound},
		{name: "creator self vote", id: "p1", voter: creatorAddr, value: domain.VoteApprove, expected: domain.ErrInvalidOperation},
		{name: "second vote", id: "p1", voter: voterA, value: domain.VoteReject, expected: domain.ErrAlreadyVoted},
		{name: "zero value", id: "p1", voter: voterB, value: 0, expected: domain.ErrInvalidVote},
		{name: "out of range value", id: "p1", voter: voterB, value: 2, expected: domain.ErrInvalidVote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.contract.VoteProject(signed(tt.voter), tt.id, tt.voter, tt.value)
			assert.ErrorIs(t, err, tt.expected)
		})
	}

	err := l.contract.VoteProject(signed(voterA), "p1", voterB, domain.VoteApprove)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVoteProject_AfterDeadline(t *testing.T) {
	l := setupTestLedger(t)
	l.createProject(t, "p1", 1000, 5)
	require.NoError(t, l.contract.VoteProject(signed(voterA), "p1", voterA, domain.VoteApprove))

	// The deadline itself is still inside the window
	l.clock.Advance(30 * day)
	require.NoError(t, l.contract.VoteProject(signed(voterB), "p1", voterB, domain.VoteApprove))

	l.clock.Advance(time.Second)
	assert.ErrorIs(t, l.contract.VoteProject(signed(voterC), "p1", voterC, domain.VoteApprove), domain.ErrVotingPeriodEnded)
	assert.ErrorIs(t, l.contract.WithdrawVote(signed(voterA), "p1", voterA), domain.ErrVotingPeriodEnded)
}

func TestVoteProject_ClosedProject(t *testing.T) {
	l := setupTestLedger(t)
	l.createProject(t, "p1", 1000, 5)
	require.NoError(t, l.contract.CloseProject(signed(creatorAddr), "p1", creatorAddr))

	err := l.contract.VoteProject(signed(voterA), "p1", voterA, domain.VoteApprove)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestCreatorCanNeverVote(t *testing.T) {
	l := setupTestLedger(t)
	l.createProject(t, "p1", 1000, 5)

	for _, value := range []domain.VoteValue{domain.VoteApprove, domain.VoteReject, 0} {
		err := l.contract.VoteProject(signed(creatorAddr), "p1", creatorAddr, value)
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	}
	assert.ErrorIs(t, l.contract.WithdrawVote(signed(creatorAddr), "p1", creatorAddr), domain.ErrInvalidOperation)
}

func TestWithdrawVote(t *testing.T) {
	l := setupTestLedger(t)
	l.createProject(t, "p1", 1000, 5)

	assert.ErrorIs(t, l.contract.WithdrawVote(signed(voterA), "p1", voterA), domain.ErrNotVoted)

	require.NoError(t, l.contract.VoteProject(signed(voterA), "p1", voterA, domain.VoteApprove))
	require.NoError(t, l.contract.VoteProject(signed(voterB), "p1", voterB, domain.VoteReject))
	require.NoError(t, l.contract.VoteProject(signed(voterC), "p1", voterC, domain.VoteApprove))

	require.NoError(t, l.contract.WithdrawVote(signed(voterB), "p1", voterB))

	p, err := l.contract.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, p.Votes, 2)
	assert.Equal(t, voterA, p.Votes[0].Voter)
	assert.Equal(t, voterC, p.Votes[1].Voter)

	assert.ErrorIs(t, l.contract.WithdrawVote(signed(voterB), "p1", voterB), domain.ErrNotVoted)

	// A withdrawn voter may vote again
	require.NoError(t, l.contract.VoteProject(signed(voterB), "p1", voterB, domain.VoteApprove))

	assert.Equal(t, []domain.EventType{
		domain.EventTypeProjectCreated,
		domain.EventTypeVoted,
		domain.EventTypeVoted,
		domain.EventTypeVoted,
		domain.EventTypeVoteWithdrawn,
		domain.EventTypeVoted,
	}, l.sink.Types())
}

func TestTallyVotes(t *testing.T) {
	tests := []struct {
		name     string
		votes    []domain.VoteValue
		advance  bool
		expected domain.ProjectStatus
		err      error
	}{
		{name: "majority approves", votes: []domain.VoteValue{domain.VoteApprove, domain.VoteApprove, domain.VoteReject}, expected: domain.ProjectStatusFunding},
		{name: "no votes while open", err: domain.ErrInvalidOperation},
		{name: "tie while open", votes: []domain.VoteValue{domain.VoteApprove, domain.VoteReject}, err: domain.ErrInvalidOperation},
		{name: "majority rejects after deadline", votes: []domain.VoteValue{domain.VoteReject}, advance: true, expected: domain.ProjectStatusFailed},
		{name: "no votes after deadline", advance: true, expected: domain.ProjectStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := setupTestLedger(t)
			l.createProject(t, "p1", 1000, 5)

			for i, value := range tt.votes {
				voter := []common.Address{voterA, voterB, voterC}[i]
				require.NoError(t, l.contract.VoteProject(signed(voter), "p1", voter, value))
			}
			if tt.advance {
				l.clock.Advance(31 * day)
			}

			status, err := l.contract.TallyVotes(context.Background(), "p1")
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, status)

			p, err := l.contract.GetProject(context.Background(), "p1")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p.Status)
			if tt.expected == domain.ProjectStatusFunding {
				assert.True(t, p.Validated)
				assert.Equal(t, l.clock.Now().Add(30*day).Unix(), int64(p.FundingDeadline))
			}
		})
	}
}

func TestTallyVotes_Quorum(t *testing.T) {
	l := setupTestLedger(t, func(c *Config) { c.VoteQuorum = 2 })
	l.createProject(t, "p1", 1000, 5)
	require.NoError(t, l.contract.VoteProject(signed(voterA), "p1", voterA, domain.VoteApprove))

	_, err := l.contract.TallyVotes(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	require.NoError(t, l.contract.VoteProject(signed(voterB), "p1", voterB, domain.VoteApprove))
	status, err := l.contract.TallyVotes(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusFunding, status)

	// Once decided the phase is over
	_, err = l.contract.TallyVotes(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	assert.ErrorIs(t, l.contract.VoteProject(signed(voterC), "p1", voterC, domain.VoteApprove), domain.ErrInvalidOperation)
}

func TestTallyVotes_ClosedProject(t *testing.T) {
	l := setupTestLedger(t)
	l.createProject(t, "p1", 1000, 5)
	require.NoError(t, l.contract.VoteProject(signed(voterA), "p1", voterA, domain.VoteApprove))
	require.NoError(t, l.contract.CloseProject(signed(creatorAddr), "p1", creatorAddr))

	_, err := l.contract.TallyVotes(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	_, err = l.contract.TallyVotes(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
