package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-crowdfund/internal/api/rest/dto"
	"github.com/feral-file/ff-crowdfund/internal/domain"
	"github.com/feral-file/ff-crowdfund/internal/ledger"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// Admin registry
	// POST /api/v1/contract/initialize
	Initialize(c *gin.Context)
	// POST /api/v1/contract/upgrade
	Upgrade(c *gin.Context)
	// GET /api/v1/contract
	GetContractInfo(c *gin.Context)
	// GET /api/v1/contract/admin
	GetAdmin(c *gin.Context)
	// GET /api/v1/contract/version
	GetVersion(c *gin.Context)

	// Project registry
	// POST /api/v1/projects
	CreateProject(c *gin.Context)
	// GET /api/v1/projects
	ListProjects(c *gin.Context)
	// GET /api/v1/projects/:id
	GetProject(c *gin.Context)
	// GET /api/v1/projects/:id/status
	GetProjectStatus(c *gin.Context)
	// GET /api/v1/projects/:id/stats
	GetProjectStats(c *gin.Context)
	// PATCH /api/v1/projects/:id/metadata
	UpdateProjectMetadata(c *gin.Context)
	// PATCH /api/v1/projects/:id/milestone-count
	UpdateProjectMilestoneCount(c *gin.Context)
	// POST /api/v1/projects/:id/close
	CloseProject(c *gin.Context)

	// Voting
	// POST /api/v1/projects/:id/votes
	VoteProject(c *gin.Context)
	// DELETE /api/v1/projects/:id/votes/:voter
	WithdrawVote(c *gin.Context)
	// GET /api/v1/projects/:id/votes/:voter
	GetVote(c *gin.Context)
	// GET /api/v1/projects/:id/votes/:voter/exists
	HasVoted(c *gin.Context)
	// POST /api/v1/projects/:id/tally
	TallyVotes(c *gin.Context)

	// Funding
	// POST /api/v1/projects/:id/fund
	FundProject(c *gin.Context)
	// POST /api/v1/projects/:id/tokens
	WhitelistToken(c *gin.Context)
	// GET /api/v1/projects/:id/tokens
	GetWhitelistedTokens(c *gin.Context)
	// GET /api/v1/projects/:id/funding
	GetProjectFunding(c *gin.Context)
	// GET /api/v1/projects/:id/backers/:backer
	GetBackerContribution(c *gin.Context)
	// GET /api/v1/projects/:id/contributions
	ListContributions(c *gin.Context)
	// POST /api/v1/projects/:id/finalize
	FinalizeFunding(c *gin.Context)

	// Milestones
	// POST /api/v1/projects/:id/milestones/:number/release
	ReleaseMilestone(c *gin.Context)
	// POST /api/v1/projects/:id/milestones/:number/approve
	ApproveMilestone(c *gin.Context)
	// POST /api/v1/projects/:id/milestones/:number/reject
	RejectMilestone(c *gin.Context)
	// GET /api/v1/projects/:id/milestones
	GetProjectMilestones(c *gin.Context)
	// GET /api/v1/projects/:id/milestones/:number
	GetMilestone(c *gin.Context)
	// GET /api/v1/projects/:id/milestones/:number/status
	GetMilestoneStatus(c *gin.Context)

	// Refunds
	// POST /api/v1/projects/:id/refunds
	Refund(c *gin.Context)
	// GET /api/v1/projects/:id/refunds
	GetRefundedTokens(c *gin.Context)

	// Pending transfers
	// GET /api/v1/projects/:id/transfers
	ListPendingTransfers(c *gin.Context)
	// POST /api/v1/projects/:id/transfers/:seq/resolve
	ResolvePendingTransfer(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// validator is a request body that checks and parses itself
type validator interface {
	Validate() error
}

// handler implements the Handler interface
type handler struct {
	ledger ledger.Ledger
}

// NewHandler creates a new REST API handler backed by the ledger
func NewHandler(l ledger.Ledger) Handler {
	return &handler{ledger: l}
}

// bindBody decodes and validates the JSON body into req, responding on failure
func bindBody(c *gin.Context, req validator) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return false
	}
	if err := req.Validate(); err != nil {
		respondValidationError(c, err)
		return false
	}
	return true
}

// milestoneNumber parses the :number path parameter
func milestoneNumber(c *gin.Context) (uint32, bool) {
	n, err := strconv.ParseUint(c.Param("number"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid milestone number", c.Param("number"))
		return 0, false
	}
	return uint32(n), true
}

// addressParam parses an address path parameter
func addressParam(c *gin.Context, name string) (common.Address, bool) {
	address, err := dto.ParseAddressParam(name, c.Param(name))
	if err != nil {
		respondValidationError(c, err)
		return common.Address{}, false
	}
	return address, true
}

func (h *handler) Initialize(c *gin.Context) {
	var req dto.InitializeRequest
	if !bindBody(c, &req) {
		return
	}
	if err := h.ledger.Initialize(c.Request.Context(), req.AdminAddress); err != nil {
		respondLedgerError(c, err, "initialize")
		return
	}
	c.JSON(http.StatusCreated, dto.AdminResponse{Admin: req.AdminAddress})
}

func (h *handler) Upgrade(c *gin.Context) {
	var req dto.UpgradeRequest
	if !bindBody(c, &req) {
		return
	}
	version, err := h.ledger.Upgrade(c.Request.Context(), req.Hash)
	if err != nil {
		respondLedgerError(c, err, "upgrade")
		return
	}
	c.JSON(http.StatusOK, dto.VersionResponse{Version: version})
}

func (h *handler) GetContractInfo(c *gin.Context) {
	info, err := h.ledger.GetContractInfo(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err, "get_contract_info")
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *handler) GetAdmin(c *gin.Context) {
	admin, err := h.ledger.GetAdmin(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err, "get_admin")
		return
	}
	c.JSON(http.StatusOK, dto.AdminResponse{Admin: admin})
}

func (h *handler) GetVersion(c *gin.Context) {
	version, err := h.ledger.GetVersion(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err, "get_version")
		return
	}
	c.JSON(http.StatusOK, dto.VersionResponse{Version: version})
}

func (h *handler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if !bindBody(c, &req) {
		return
	}

	ctx := c.Request.Context()
	err := h.ledger.CreateProject(ctx, req.ID, req.CreatorAddress, req.MetadataURI, req.FundingTarget, req.MilestoneCount)
	if err != nil {
		respondLedgerError(c, err, "create_project")
		return
	}

	project, err := h.ledger.GetProject(ctx, req.ID)
	if err != nil {
		respondLedgerError(c, err, "get_project")
		return
	}
	c.JSON(http.StatusCreated, dto.NewProjectResponse(project))
}

func (h *handler) ListProjects(c *gin.Context) {
	ids, err := h.ledger.ListProjects(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err, "list_projects")
		return
	}
	c.JSON(http.StatusOK, dto.ProjectListResponse{Projects: ids})
}

func (h *handler) GetProject(c *gin.Context) {
	project, err := h.ledger.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLedgerError(c, err, "get_project")
		return
	}
	c.JSON(http.StatusOK, dto.NewProjectResponse(project))
}

func (h *handler) GetProjectStatus(c *gin.Context) {
	status, err := h.ledger.GetProjectStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLedgerError(c, err, "get_project_status")
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: status})
}

func (h *handler) GetProjectStats(c *gin.Context) {
	stats, err := h.ledger.GetProjectStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLedgerError(c, err, "get_project_stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handler) UpdateProjectMetadata(c *gin.Context) {
	var req dto.UpdateMetadataRequest
	if !bindBody(c, &req) {
		return
	}
	if err := h.ledger.UpdateProjectMetadata(c.Request.Context(), c.Param("id"), req.CallerAddress, req.MetadataURI); err != nil {
		respondLedgerError(c, err, "update_project_metadata")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) UpdateProjectMilestoneCount(c *gin.Context) {
	var req dto.UpdateMilestoneCountRequest
	if !bindBody(c, &req) {
		return
	}
	if err := h.ledger.UpdateProjectMilestoneCount(c.Request.Context(), c.Param("id"), req.CallerAddress, req.MilestoneCount); err != nil {
		respondLedgerError(c, err, "update_project_milestone_count")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) CloseProject(c *gin.Context) {
	var req dto.CallerRequest
	if !bindBody(c, &req) {
		return
	}
	if err := h.ledger.CloseProject(c.Request.Context(), c.Param("id"), req.CallerAddress); err != nil {
		respondLedgerError(c, err, "close_project")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) VoteProject(c *gin.Context) {
	var req dto.VoteRequest
	if !bindBody(c, &req) {
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.ledger.VoteProject(ctx, id, req.VoterAddress, domain.VoteValue(req.Value)); err != nil {
		respondLedgerError(c, err, "vote_project")
		return
	}

	vote, err := h.ledger.GetVote(ctx, id, req.VoterAddress)
	if err != nil {
		respondLedgerError(c, err, "get_vote")
		return
	}
	c.JSON(http.StatusCreated, vote)
}

func (h *handler) WithdrawVote(c *gin.Context) {
	voter, ok := addressParam(c, "voter")
	if !ok {
		return
	}
	if err := h.ledger.WithdrawVote(c.Request.Context(), c.Param("id"), voter); err != nil {
		respondLedgerError(c, err, "withdraw_vote")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) GetVote(c *gin.Context) {
	voter, ok := addressParam(c, "voter")
	if !ok {
		return
	}
	vote, err := h.ledger.GetVote(c.Request.Context(), c.Param("id"), voter)
	if err != nil {
		respondLedgerError(c, err, "get_vote")
		return
	}
	c.JSON(http.StatusOK, vote)
}

func (h *handler) HasVoted(c *gin.Context) {
	voter, ok := addressParam(c, "voter")
	if !ok {
		return
	}
	voted, err := h.ledger.HasVoted(c.Request.Context(), c.Param("id"), voter)
	if err != nil {
		respondLedgerError(c, err, "has_voted")
		return
	}
	c.JSON(http.StatusOK, dto.HasVotedResponse{Voter: voter, HasVoted: voted})
}

func (h *handler) TallyVotes(c *gin.Context) {
	status, err := h.ledger.TallyVotes(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLedgerError(c, err, "tally_votes")
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: status})
}

func (h *handler) FundProject(c *gin.Context) {
	var req dto.FundRequest
	if !bindBody(c, &req) {
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.ledger.FundProject(ctx, id, req.AmountValue, req.FunderAddress, req.TokenAddress); err != nil {
		respondLedgerError(c, err, "fund_project")
		return
	}

	funding, err := h.ledger.GetProjectFunding(ctx, id)
	if err != nil {
		respondLedgerError(c, err, "get_project_funding")
		return
	}
	c.JSON(http.StatusOK, funding)
}

func (h *handler) WhitelistToken(c *gin.Context) {
	var req dto.WhitelistTokenRequest
	if !bindBody(c, &req) {
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.ledger.WhitelistTokenContract(ctx, req.AdminAddress, id, req.TokenAddress); err != nil {
		respondLedgerError(c, err, "whitelist_token_contract")
		return
	}

	tokens, err := h.ledger.GetWhitelistedTokens(ctx, id)
	if err != nil {
		respondLedgerError(c, err, "get_whitelisted_tokens")
		return
	}
	c.JSON(http.StatusCreated, dto.TokenListResponse{Tokens: tokens})
}

func (h *handler) GetWhitelistedTokens(c *gin.Context) {
	tokens, err := h.ledger.GetWhitelistedTokens(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLedgerError(c, err, "get_whitelisted_tokens")
		return
	}
	c.JSON(http.StatusOK, dto.TokenListResponse{Tokens: tokens})
}

func (h *handler) GetProjectFunding(c *gin.Context) {
	funding, err := h.ledger.GetProjectFunding(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLedgerError(c, err, "get_project_funding")
		return
	}
	c.JSON(http.StatusOK, funding)
}

func (h *handler) GetBackerContribution(c *gin.Context) {
	backer, ok := addressParam(c, "backer")
	if !ok {
		return
	}
	amount, err := h.ledger.GetBackerContribution(c.Request.Context(), c.Param("id"), backer)
	if err != nil {
		respondLedgerError(c, err, "get_backer_contribution")
		return
	}
	c.JSON(http.StatusOK, dto.BackerContributionResponse{Backer: backer, Amount: amount})
}

func (h *handler) ListContributions(c *gin.Context) {
	contributions, err := h.ledger.ListContributions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLedgerError(c, err, "list_contributions")
		return
	}
	c.JSON(http.StatusOK, dto.ContributionListResponse{Contributions: contributions})
}

func (h *handler) FinalizeFunding(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.ledger.FinalizeFunding(ctx, id); err != nil {
		respondLedgerError(c, err, "finalize_funding")
		return
	}

	status, err := h.ledger.GetProjectStatus(ctx, id)
	if err != nil {
		respondLedgerError(c, err, "get_project_status")
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: status})
}

// milestoneDecision runs one of the admin milestone transitions and returns the milestone
func (h *handler) milestoneDecision(c *gin.Context, operation string, decide func(ctx context.Context, admin common.Address, id string, number uint32) error) {
	number, ok := milestoneNumber(c)
	if !ok {
		return
	}
	var req dto.MilestoneDecisionRequest
	if !bindBody(c, &req) {
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	if err := decide(ctx, req.AdminAddress, id, number); err != nil {
		respondLedgerError(c, err, operation)
		return
	}

	milestone, err := h.ledger.GetMilestone(ctx, id, number)
	if err != nil {
		respondLedgerError(c, err, "get_milestone")
		return
	}
	c.JSON(http.StatusOK, milestone)
}

func (h *handler) ReleaseMilestone(c *gin.Context) {
	h.milestoneDecision(c, "release_milestone", h.ledger.ReleaseMilestone)
}

func (h *handler) ApproveMilestone(c *gin.Context) {
	h.milestoneDecision(c, "approve_milestone", h.ledger.ApproveMilestone)
}

func (h *handler) RejectMilestone(c *gin.Context) {
	h.milestoneDecision(c, "reject_milestone", h.ledger.RejectMilestone)
}

func (h *handler) GetProjectMilestones(c *gin.Context) {
	milestones, err := h.ledger.GetProjectMilestones(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLedgerError(c, err, "get_project_milestones")
		return
	}
	c.JSON(http.StatusOK, dto.MilestoneListResponse{Milestones: milestones})
}

func (h *handler) GetMilestone(c *gin.Context) {
	number, ok := milestoneNumber(c)
	if !ok {
		return
	}
	milestone, err := h.ledger.GetMilestone(c.Request.Context(), c.Param("id"), number)
	if err != nil {
		respondLedgerError(c, err, "get_milestone")
		return
	}
	c.JSON(http.StatusOK, milestone)
}

func (h *handler) GetMilestoneStatus(c *gin.Context) {
	number, ok := milestoneNumber(c)
	if !ok {
		return
	}
	status, err := h.ledger.GetMilestoneStatus(c.Request.Context(), c.Param("id"), number)
	if err != nil {
		respondLedgerError(c, err, "get_milestone_status")
		return
	}
	c.JSON(http.StatusOK, dto.MilestoneStatusResponse{Number: number, Status: status})
}

func (h *handler) Refund(c *gin.Context) {
	var req dto.RefundRequest
	if !bindBody(c, &req) {
		return
	}
	report, err := h.ledger.Refund(c.Request.Context(), c.Param("id"), req.TokenAddress)
	if err != nil {
		respondLedgerError(c, err, "refund")
		return
	}

	// a pass that left failed transfers is retried by calling again;
	// unconfirmed ones wait for an admin resolution
	status := http.StatusOK
	if len(report.Failed) > 0 || len(report.Unconfirmed) > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, report)
}

func (h *handler) GetRefundedTokens(c *gin.Context) {
	tokens, err := h.ledger.GetRefundedTokens(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLedgerError(c, err, "get_refunded_tokens")
		return
	}
	c.JSON(http.StatusOK, dto.TokenListResponse{Tokens: tokens})
}

func (h *handler) ListPendingTransfers(c *gin.Context) {
	transfers, err := h.ledger.ListPendingTransfers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondLedgerError(c, err, "list_pending_transfers")
		return
	}
	c.JSON(http.StatusOK, dto.PendingTransferListResponse{Transfers: transfers})
}

func (h *handler) ResolvePendingTransfer(c *gin.Context) {
	seq, err := strconv.ParseUint(c.Param("seq"), 10, 32)
	if err != nil {
		respondBadRequest(c, "Invalid transfer sequence", c.Param("seq"))
		return
	}
	var req dto.ResolveTransferRequest
	if !bindBody(c, &req) {
		return
	}
	if err := h.ledger.ResolvePendingTransfer(c.Request.Context(), req.AdminAddress, c.Param("id"), uint32(seq), req.Settled); err != nil {
		respondLedgerError(c, err, "resolve_pending_transfer")
		return
	}
	c.Status(http.StatusNoContent)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ff-crowdfund-api",
	})
}
