package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes.
// Reads are public; writes go through the given middleware, typically
// operator authentication followed by request signature verification.
func SetupRoutes(router *gin.Engine, handler Handler, write ...gin.HandlerFunc) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")

	// Public read access
	{
		v1.GET("/contract", handler.GetContractInfo)
		v1.GET("/contract/admin", handler.GetAdmin)
		v1.GET("/contract/version", handler.GetVersion)

		v1.GET("/projects", handler.ListProjects)
		v1.GET("/projects/:id", handler.GetProject)
		v1.GET("/projects/:id/status", handler.GetProjectStatus)
		v1.GET("/projects/:id/stats", handler.GetProjectStats)
		v1.GET("/projects/:id/votes/:voter", handler.GetVote)
		v1.GET("/projects/:id/votes/:voter/exists", handler.HasVoted)
		v1.GET("/projects/:id/tokens", handler.GetWhitelistedTokens)
		v1.GET("/projects/:id/funding", handler.GetProjectFunding)
		v1.GET("/projects/:id/backers/:backer", handler.GetBackerContribution)
		v1.GET("/projects/:id/contributions", handler.ListContributions)
		v1.GET("/projects/:id/milestones", handler.GetProjectMilestones)
		v1.GET("/projects/:id/milestones/:number", handler.GetMilestone)
		v1.GET("/projects/:id/milestones/:number/status", handler.GetMilestoneStatus)
		v1.GET("/projects/:id/refunds", handler.GetRefundedTokens)
		v1.GET("/projects/:id/transfers", handler.ListPendingTransfers)
	}

	// Writes
	w := v1.Group("", write...)
	{
		w.POST("/contract/initialize", handler.Initialize)
		w.POST("/contract/upgrade", handler.Upgrade)

		w.POST("/projects", handler.CreateProject)
		w.PATCH("/projects/:id/metadata", handler.UpdateProjectMetadata)
		w.PATCH("/projects/:id/milestone-count", handler.UpdateProjectMilestoneCount)
		w.POST("/projects/:id/close", handler.CloseProject)

		w.POST("/projects/:id/votes", handler.VoteProject)
		w.DELETE("/projects/:id/votes/:voter", handler.WithdrawVote)
		w.POST("/projects/:id/tally", handler.TallyVotes)

		w.POST("/projects/:id/fund", handler.FundProject)
		w.POST("/projects/:id/tokens", handler.WhitelistToken)
		w.POST("/projects/:id/finalize", handler.FinalizeFunding)

		w.POST("/projects/:id/milestones/:number/release", handler.ReleaseMilestone)
		w.POST("/projects/:id/milestones/:number/approve", handler.ApproveMilestone)
		w.POST("/projects/:id/milestones/:number/reject", handler.RejectMilestone)

		w.POST("/projects/:id/refunds", handler.Refund)
		w.POST("/projects/:id/transfers/:seq/resolve", handler.ResolvePendingTransfer)
	}
}
