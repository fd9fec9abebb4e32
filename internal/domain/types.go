package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ProjectStatus represents the lifecycle phase of a project
type ProjectStatus uint32

const (
	ProjectStatusFunding ProjectStatus = 1
	ProjectStatusVoting  ProjectStatus = 2
	ProjectStatusFunded  ProjectStatus = 3
	ProjectStatusFailed  ProjectStatus = 4
	ProjectStatusClosed  ProjectStatus = 5
)

var projectStatusNames = map[ProjectStatus]string{
	ProjectStatusFunding: "funding",
	ProjectStatusVoting:  "voting",
	ProjectStatusFunded:  "funded",
	ProjectStatusFailed:  "failed",
	ProjectStatusClosed:  "closed",
}

// Valid checks if the status is one of the known phases
func (s ProjectStatus) Valid() bool {
	_, ok := projectStatusNames[s]
	return ok
}

func (s ProjectStatus) String() string {
	if name, ok := projectStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint32(s))
}

// MarshalText encodes the status by name
func (s ProjectStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid project status: %d", uint32(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name
func (s *ProjectStatus) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for status, n := range projectStatusNames {
		if n == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("invalid project status: %q", string(text))
}

// MilestoneStatus represents the review state of a milestone
type MilestoneStatus string

const (
	MilestoneStatusPending  MilestoneStatus = "pending"
	MilestoneStatusReleased MilestoneStatus = "released"
	MilestoneStatusApproved MilestoneStatus = "approved"
	MilestoneStatusRejected MilestoneStatus = "rejected"
)

// Valid checks if the milestone status is valid
func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestoneStatusPending, MilestoneStatusReleased, MilestoneStatusApproved, MilestoneStatusRejected:
		return true
	default:
		return false
	}
}

// VoteValue is +1 for approval and -1 for rejection
type VoteValue int32

const (
	VoteApprove VoteValue = 1
	VoteReject  VoteValue = -1
)

// Valid checks if the vote value is exactly +1 or -1
func (v VoteValue) Valid() bool {
	return v == VoteApprove || v == VoteReject
}

// Vote is the single active vote of a voter on a project
type Vote struct {
	Voter     common.Address `json:"voter"`
	Value     VoteValue      `json:"value"`
	Timestamp uint64         `json:"timestamp"`
}

// Milestone is a pre-declared unit of work with its release amount
type Milestone struct {
	Number      uint32          `json:"number"`
	Description string          `json:"description"`
	Amount      uint64          `json:"amount"`
	Status      MilestoneStatus `json:"status"`
	ReleasedAt  *uint64         `json:"released_at,omitempty"`
	CompletedAt *uint64         `json:"completed_at,omitempty"`
}

// BackerContribution is an immutable log entry written by every successful funding call
type BackerContribution struct {
	Backer    common.Address `json:"backer"`
	Token     common.Address `json:"token"`
	Amount    uint64         `json:"amount"`
	Timestamp uint64         `json:"timestamp"`
}

// BackerAggregate is the running total of one backer in one token
type BackerAggregate struct {
	Backer common.Address `json:"backer"`
	Token  common.Address `json:"token"`
	Amount uint64         `json:"amount"`
}

// MilestoneRelease records when a milestone was released for review
type MilestoneRelease struct {
	Number    uint32 `json:"number"`
	Timestamp uint64 `json:"timestamp"`
}

// MilestoneApproval records an admin approval of a milestone
type MilestoneApproval struct {
	Number    uint32         `json:"number"`
	Approver  common.Address `json:"approver"`
	Timestamp uint64         `json:"timestamp"`
}

// Project is the full read view of a project
type Project struct {
	ID               string              `json:"id"`
	Creator          common.Address      `json:"creator"`
	MetadataURI      string              `json:"metadata_uri"`
	FundingTarget    uint64              `json:"funding_target"`
	MilestoneCount   uint32              `json:"milestone_count"`
	CurrentMilestone uint32              `json:"current_milestone"`
	TotalFunded      uint64              `json:"total_funded"`
	Backers          []BackerAggregate   `json:"backers"`
	Votes            []Vote              `json:"votes"`
	Validated        bool                `json:"validated"`
	IsSuccessful     bool                `json:"is_successful"`
	IsClosed         bool                `json:"is_closed"`
	RefundProcessed  bool                `json:"refund_processed"`
	CreatedAt        uint64              `json:"created_at"`
	VotingDeadline   uint64              `json:"voting_deadline"`
	FundingDeadline  uint64              `json:"funding_deadline"`
	Status           ProjectStatus       `json:"status"`
	Milestones       []Milestone         `json:"milestones"`
	Releases         []MilestoneRelease  `json:"releases"`
	Approvals        []MilestoneApproval `json:"approvals"`
}

// Closed reports whether the creator closed the project.
// A closed project keeps its stored status.
func (p *Project) Closed() bool {
	return p.IsClosed
}

// EffectiveStatus folds the closed flag into the status
func (p *Project) EffectiveStatus() ProjectStatus {
	if p.IsClosed {
		return ProjectStatusClosed
	}
	return p.Status
}

// Refundable reports whether backers may be refunded
func (p *Project) Refundable() bool {
	return p.Status == ProjectStatusFailed || p.IsClosed
}

// ProjectStats is the (target, funded, milestone count) summary of a project
type ProjectStats struct {
	FundingTarget  uint64 `json:"funding_target"`
	TotalFunded    uint64 `json:"total_funded"`
	MilestoneCount uint32 `json:"milestone_count"`
}

// ProjectFunding is the (funded, target) pair of a project
type ProjectFunding struct {
	TotalFunded   uint64 `json:"total_funded"`
	FundingTarget uint64 `json:"funding_target"`
}

// ContractInfo describes the admin registry
type ContractInfo struct {
	Admin       common.Address `json:"admin"`
	Version     uint32         `json:"version"`
	CodeHash    common.Hash    `json:"code_hash"`
	Initialized bool           `json:"initialized"`
}

// TransferKind tells what a pending transfer was meant to do
type TransferKind string

const (
	TransferKindContribution TransferKind = "contribution"
	TransferKindRefund       TransferKind = "refund"
)

// PendingTransfer is a token transfer whose outcome the ledger has not recorded yet.
// It is written before the transfer starts and removed once the outcome is booked.
type PendingTransfer struct {
	Seq    uint32         `json:"seq"`
	Kind   TransferKind   `json:"kind"`
	Backer common.Address `json:"backer"`
	Token  common.Address `json:"token"`
	Amount uint64         `json:"amount"`
	// Contribution is the refunded contribution log index of a refund transfer
	Contribution uint32 `json:"contribution"`
	CreatedAt    uint64 `json:"created_at"`
	Error        string `json:"error,omitempty"`
}

// RefundTransfer is the outcome of one backer transfer inside a refund pass
type RefundTransfer struct {
	Index  uint32         `json:"index"`
	Backer common.Address `json:"backer"`
	Amount uint64         `json:"amount"`
	Error  string         `json:"error,omitempty"`
}

// RefundReport is the per-item result of one refund pass
type RefundReport struct {
	ProjectID       string            `json:"project_id"`
	Token           common.Address    `json:"token"`
	Owed            uint64            `json:"owed"`
	Refunded        []RefundTransfer  `json:"refunded"`
	Failed          []RefundTransfer  `json:"failed"`
	Unconfirmed     []PendingTransfer `json:"unconfirmed"`
	TokenCompleted  bool              `json:"token_completed"`
	RefundProcessed bool              `json:"refund_processed"`
}

// NormalizeAddress parses a hex address, returning false for malformed input
func NormalizeAddress(address string) (common.Address, bool) {
	if !common.IsHexAddress(address) {
		return common.Address{}, false
	}
	return common.HexToAddress(address), true
}
