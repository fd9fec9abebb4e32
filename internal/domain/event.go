package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventType names a ledger notification
type EventType string

const (
	EventTypeInitialized          EventType = "initialized"
	EventTypeUpgraded             EventType = "upgraded"
	EventTypeProjectCreated       EventType = "project_created"
	EventTypeProjectUpdated       EventType = "project_updated"
	EventTypeProjectClosed        EventType = "project_closed"
	EventTypeVoted                EventType = "voted"
	EventTypeVoteWithdrawn        EventType = "vote_withdrawn"
	EventTypeVotingPassed         EventType = "voting_passed"
	EventTypeProjectFailed        EventType = "project_failed"
	EventTypeTokenWhitelisted     EventType = "token_whitelisted"
	EventTypeContributionReceived EventType = "contribution_received"
	EventTypeProjectFunded        EventType = "project_funded"
	EventTypeMilestoneReleased    EventType = "milestone_released"
	EventTypeMilestoneApproved    EventType = "milestone_approved"
	EventTypeMilestoneRejected    EventType = "milestone_rejected"
	EventTypeRefundProcessed      EventType = "refund_processed"
	EventTypeRefundFailed         EventType = "refund_failed"
	EventTypeRefundPass           EventType = "refund_pass"
	EventTypeTransferUnconfirmed  EventType = "transfer_unconfirmed"
	EventTypeTransferResolved     EventType = "transfer_resolved"
)

// Event is a fire-and-forget notification emitted after a call commits
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ProjectID string    `json:"project_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// ProjectCreatedData is the payload of project_created
type ProjectCreatedData struct {
	Creator        common.Address `json:"creator"`
	FundingTarget  uint64         `json:"funding_target"`
	MilestoneCount uint32         `json:"milestone_count"`
	VotingDeadline uint64         `json:"voting_deadline"`
}

// ProjectStatusData is the payload of status transitions
type ProjectStatusData struct {
	Status          ProjectStatus `json:"status"`
	TotalFunded     uint64        `json:"total_funded"`
	FundingDeadline uint64        `json:"funding_deadline,omitempty"`
	IsSuccessful    bool          `json:"is_successful"`
}

// VoteData is the payload of voted and vote_withdrawn
type VoteData struct {
	Voter common.Address `json:"voter"`
	Value VoteValue      `json:"value,omitempty"`
}

// ContributionData is the payload of contribution_received and refund events
type ContributionData struct {
	Backer common.Address `json:"backer"`
	Token  common.Address `json:"token"`
	Amount uint64         `json:"amount"`
	Error  string         `json:"error,omitempty"`
}

// MilestoneData is the payload of milestone events
type MilestoneData struct {
	Number uint32         `json:"number"`
	Amount uint64         `json:"amount"`
	Admin  common.Address `json:"admin"`
}

// RegistryData is the payload of admin registry and whitelist events
type RegistryData struct {
	Admin    common.Address  `json:"admin"`
	Version  uint32          `json:"version,omitempty"`
	CodeHash *common.Hash    `json:"code_hash,omitempty"`
	Token    *common.Address `json:"token,omitempty"`
}

// TransferResolutionData is the payload of transfer_resolved
type TransferResolutionData struct {
	Transfer PendingTransfer `json:"transfer"`
	Settled  bool            `json:"settled"`
	Admin    common.Address  `json:"admin"`
}
