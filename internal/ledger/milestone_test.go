package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-crowdfund/internal/domain"
)

// fundedProject creates a fully funded project p1
func fundedProject(t *testing.T) *testLedger {
	t.Helper()
	l := setupTestLedger(t)
	l.initialize(t)
	l.fundingProject(t, "p1", 1000)
	l.fund(t, "p1", backerA, usdcToken, 1000)
	l.sink.Reset()
	return l
}

func TestMilestoneWorkflow(t *testing.T) {
	l := fundedProject(t)
	ctx := signed(adminAddr)

	require.NoError(t, l.contract.ReleaseMilestone(ctx, adminAddr, "p1", 1))

	m, err := l.contract.GetMilestone(context.Background(), "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.MilestoneStatusReleased, m.Status)
	require.NotNil(t, m.ReleasedAt)
	assert.Equal(t, uint64(testStart.Unix()), *m.ReleasedAt)
	assert.Nil(t, m.CompletedAt)

	l.clock.Advance(day)
	require.NoError(t, l.contract.ApproveMilestone(ctx, adminAddr, "p1", 1))

	status, err := l.contract.GetMilestoneStatus(context.Background(), "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.MilestoneStatusApproved, status)

	p, err := l.contract.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), p.CurrentMilestone)
	assert.Equal(t, []domain.MilestoneRelease{{Number: 1, Timestamp: uint64(testStart.Unix())}}, p.Releases)
	assert.Equal(t, []domain.MilestoneApproval{{Number: 1, Approver: adminAddr, Timestamp: uint64(testStart.Add(day).Unix())}}, p.Approvals)

	assert.ErrorIs(t, l.contract.ReleaseMilestone(ctx, adminAddr, "p1", 1), domain.ErrMilestoneAlreadyApproved)
	assert.ErrorIs(t, l.contract.ApproveMilestone(ctx, adminAddr, "p1", 1), domain.ErrMilestoneAlreadyApproved)
	assert.ErrorIs(t, l.contract.RejectMilestone(ctx, adminAddr, "p1", 1), domain.ErrMilestoneAlreadyApproved)

	assert.Equal(t, []domain.EventType{domain.EventTypeMilestoneReleased, domain.EventTypeMilestoneApproved}, l.sink.Types())
}

func TestMilestoneWorkflow_RejectAndRelease(t *testing.T) {
	l := fundedProject(t)
	ctx := signed(adminAddr)

	assert.ErrorIs(t, l.contract.RejectMilestone(ctx, adminAddr, "p1", 2), domain.ErrInvalidOperation)
	assert.ErrorIs(t, l.contract.ApproveMilestone(ctx, adminAddr, "p1", 2), domain.ErrInvalidOperation)

	require.NoError(t, l.contract.ReleaseMilestone(ctx, adminAddr, "p1", 2))
	assert.ErrorIs(t, l.contract.ReleaseMilestone(ctx, adminAddr, "p1", 2), domain.ErrMilestoneAlreadyReleased)

	require.NoError(t, l.contract.RejectMilestone(ctx, adminAddr, "p1", 2))
	assert.ErrorIs(t, l.contract.RejectMilestone(ctx, adminAddr, "p1", 2), domain.ErrMilestoneAlreadyRejected)
	assert.ErrorIs(t, l.contract.ApproveMilestone(ctx, adminAddr, "p1", 2), domain.ErrMilestoneAlreadyRejected)

	m, err := l.contract.GetMilestone(context.Background(), "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, domain.MilestoneStatusRejected, m.Status)
	assert.NotNil(t, m.CompletedAt)

	// A rejected milestone can be released again
	require.NoError(t, l.contract.ReleaseMilestone(ctx, adminAddr, "p1", 2))
	m, err = l.contract.GetMilestone(context.Background(), "p1", 2)
	require.NoError(t, err)
	assert.Equal(t, domain.MilestoneStatusReleased, m.Status)
	assert.Nil(t, m.CompletedAt)

	require.NoError(t, l.contract.ApproveMilestone(ctx, adminAddr, "p1", 2))

	p, err := l.contract.GetProject(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), p.CurrentMilestone)
	assert.Len(t, p.Releases, 2)
	assert.Len(t, p.Approvals, 1)
}

func TestMilestone_Guards(t *testing.T) {
	l := fundedProject(t)

	assert.ErrorIs(t, l.contract.ReleaseMilestone(signed(voterA), adminAddr, "p1", 1), domain.ErrUnauthorized)
	assert.ErrorIs(t, l.contract.ReleaseMilestone(signed(voterA), voterA, "p1", 1), domain.ErrUnauthorized)
	assert.ErrorIs(t, l.contract.ApproveMilestone(signed(voterA), voterA, "p1", 1), domain.ErrUnauthorized)
	assert.ErrorIs(t, l.contract.ReleaseMilestone(signed(adminAddr), adminAddr, "nope", 1), domain.ErrNotFound)

	for _, number := range []uint32{0, 6, 100} {
		assert.ErrorIs(t, l.contract.ReleaseMilestone(signed(adminAddr), adminAddr, "p1", number), domain.ErrInvalidOperation)
		_, err := l.contract.GetMilestone(context.Background(), "p1", number)
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
		_, err = l.contract.GetMilestoneStatus(context.Background(), "p1", number)
		assert.ErrorIs(t, err, domain.ErrInvalidOperation)
	}
}

func TestMilestone_NotActionableBeforeFunded(t *testing.T) {
	l := setupTestLedger(t)
	l.initialize(t)
	l.createProject(t, "voting", 1000, 5)
	l.fundingProject(t, "funding", 1000)

	for _, id := range []string{"voting", "funding"} {
		assert.ErrorIs(t, l.contract.ReleaseMilestone(signed(adminAddr), adminAddr, id, 1), domain.ErrInvalidOperation)
		assert.ErrorIs(t, l.contract.ApproveMilestone(signed(adminAddr), adminAddr, id, 1), domain.ErrInvalidOperation)
		assert.ErrorIs(t, l.contract.RejectMilestone(signed(adminAddr), adminAddr, id, 1), domain.ErrInvalidOperation)
	}
}

func TestMilestone_ActionableOnFailedProject(t *testing.T) {
	l := setupTestLedger(t)
	l.initialize(t)
	l.createProject(t, "p1", 1000, 5)
	l.clock.Advance(31 * day)
	_, err := l.contract.TallyVotes(context.Background(), "p1")
	require.NoError(t, err)

	assert.NoError(t, l.contract.ReleaseMilestone(signed(adminAddr), adminAddr, "p1", 1))
}

func TestMilestone_CreatorCannotJudgeOwnProject(t *testing.T) {
	l := setupTestLedger(t)
	require.NoError(t, l.contract.Initialize(signed(creatorAddr), creatorAddr))
	l.createProject(t, "p1", 1000, 5)
	l.forceProject(t, "p1", func(p *projectRecord) { p.Status = domain.ProjectStatusFunded })

	err := l.contract.ReleaseMilestone(signed(creatorAddr), creatorAddr, "p1", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestMilestone_ClosedProject(t *testing.T) {
	l := setupTestLedger(t)
	l.initialize(t)
	l.createProject(t, "p1", 1000, 5)
	require.NoError(t, l.contract.CloseProject(signed(creatorAddr), "p1", creatorAddr))
	l.forceProject(t, "p1", func(p *projectRecord) { p.Status = domain.ProjectStatusFunded })

	err := l.contract.ReleaseMilestone(signed(adminAddr), adminAddr, "p1", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestGetProjectMilestones(t *testing.T) {
	l := setupTestLedger(t)
	l.createProject(t, "p1", 1000, 8)

	milestones, err := l.contract.GetProjectMilestones(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, milestones, 8)
	assert.Equal(t, uint64(125), milestones[7].Amount)
}
