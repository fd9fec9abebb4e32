package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-crowdfund/internal/domain"
)

// Ledger is the crowdfunding contract surface.
// Every mutating call commits all of its writes or none of them.
//
//go:generate mockgen -source=ledger.go -destination=../mocks/ledger.go -package=mocks -mock_names=Ledger=MockLedger
type Ledger interface {
	// Admin registry
	Initialize(ctx context.Context, admin common.Address) error
	Upgrade(ctx context.Context, codeHash common.Hash) (uint32, error)
	GetAdmin(ctx context.Context) (common.Address, error)
	GetVersion(ctx context.Context) (uint32, error)
	GetContractInfo(ctx context.Context) (*domain.ContractInfo, error)

	// Project registry
	CreateProject(ctx context.Context, id string, creator common.Address, metadataURI string, fundingTarget uint64, milestoneCount uint32) error
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	GetProjectStatus(ctx context.Context, id string) (domain.ProjectStatus, error)
	GetProjectStats(ctx context.Context, id string) (*domain.ProjectStats, error)
	ListProjects(ctx context.Context) ([]string, error)
	UpdateProjectMetadata(ctx context.Context, id string, caller common.Address, metadataURI string) error
	UpdateProjectMilestoneCount(ctx context.Context, id string, caller common.Address, milestoneCount uint32) error
	CloseProject(ctx context.Context, id string, caller common.Address) error

	// Voting engine
	VoteProject(ctx context.Context, id string, voter common.Address, value domain.VoteValue) error
	WithdrawVote(ctx context.Context, id string, voter common.Address) error
	HasVoted(ctx context.Context, id string, voter common.Address) (bool, error)
	GetVote(ctx context.Context, id string, voter common.Address) (*domain.Vote, error)
	TallyVotes(ctx context.Context, id string) (domain.ProjectStatus, error)

	// Funding ledger
	FundProject(ctx context.Context, id string, amount *big.Int, funder common.Address, token common.Address) error
	WhitelistTokenContract(ctx context.Context, admin common.Address, id string, token common.Address) error
	GetWhitelistedTokens(ctx context.Context, id string) ([]common.Address, error)
	GetProjectFunding(ctx context.Context, id string) (*domain.ProjectFunding, error)
	GetBackerContribution(ctx context.Context, id string, backer common.Address) (uint64, error)
	ListContributions(ctx context.Context, id string) ([]domain.BackerContribution, error)
	FinalizeFunding(ctx context.Context, id string) error

	// Milestone workflow
	ReleaseMilestone(ctx context.Context, admin common.Address, id string, number uint32) error
	ApproveMilestone(ctx context.Context, admin common.Address, id string, number uint32) error
	RejectMilestone(ctx context.Context, admin common.Address, id string, number uint32) error
	GetMilestoneStatus(ctx context.Context, id string, number uint32) (domain.MilestoneStatus, error)
	GetMilestone(ctx context.Context, id string, number uint32) (*domain.Milestone, error)
	GetProjectMilestones(ctx context.Context, id string) ([]domain.Milestone, error)

	// Refund engine
	Refund(ctx context.Context, id string, token common.Address) (*domain.RefundReport, error)
	GetRefundedTokens(ctx context.Context, id string) ([]common.Address, error)

	// Pending transfer journal
	ListPendingTransfers(ctx context.Context, id string) ([]domain.PendingTransfer, error)
	ResolvePendingTransfer(ctx context.Context, admin common.Address, id string, seq uint32, settled bool) error
}
