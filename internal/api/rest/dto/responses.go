package dto

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/ff-crowdfund/internal/domain"
)

// ProjectResponse is a project with its closed flag folded into a status
type ProjectResponse struct {
	*domain.Project
	EffectiveStatus domain.ProjectStatus `json:"effective_status"`
}

// NewProjectResponse builds the response of a project
func NewProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{Project: p, EffectiveStatus: p.EffectiveStatus()}
}

// ProjectListResponse lists project ids in creation order
type ProjectListResponse struct {
	Projects []string `json:"projects"`
}

// StatusResponse carries a project status
type StatusResponse struct {
	Status domain.ProjectStatus `json:"status"`
}

// MilestoneStatusResponse carries a milestone status
type MilestoneStatusResponse struct {
	Number uint32                 `json:"number"`
	Status domain.MilestoneStatus `json:"status"`
}

// AdminResponse carries the contract admin
type AdminResponse struct {
	Admin common.Address `json:"admin"`
}

// VersionResponse carries the contract version
type VersionResponse struct {
	Version uint32 `json:"version"`
}

// HasVotedResponse reports whether a voter holds a vote on a project
type HasVotedResponse struct {
	Voter    common.Address `json:"voter"`
	HasVoted bool           `json:"has_voted"`
}

// BackerContributionResponse carries the contribution of a backer
type BackerContributionResponse struct {
	Backer common.Address `json:"backer"`
	Amount uint64         `json:"amount"`
}

// ContributionListResponse carries the contribution log of a project
type ContributionListResponse struct {
	Contributions []domain.BackerContribution `json:"contributions"`
}

// MilestoneListResponse carries the milestones of a project
type MilestoneListResponse struct {
	Milestones []domain.Milestone `json:"milestones"`
}

// PendingTransferListResponse carries the journaled transfers of a project
type PendingTransferListResponse struct {
	Transfers []domain.PendingTransfer `json:"transfers"`
}

// TokenListResponse carries a list of token contracts
type TokenListResponse struct {
	Tokens []common.Address `json:"tokens"`
}
