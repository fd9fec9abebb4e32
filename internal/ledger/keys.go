package ledger

// Storage keys. Instance keys are global to the ledger;
// project keys are addressed under the project id.
const (
	keyVersion     = "Version"
	keyInitialized = "Initialized"
	keyAdmin       = "Admin"
	keyCodeHash    = "CodeHash"
	keyProjects    = "Projects"
)

func projectKey(id string) string {
	return "Project/" + id
}

// contributionsKey holds the append-only contribution log
func contributionsKey(id string) string {
	return "Backers/" + id
}

func votesKey(id string) string {
	return "Votes/" + id
}

func milestonesKey(id string) string {
	return "Milestones/" + id
}

func whitelistKey(id string) string {
	return "WhitelistedTokens/" + id
}

func refundedTokensKey(id string) string {
	return "RefundedTokens/" + id
}

// refundReceiptsKey holds the indices of refunded contribution log entries
func refundReceiptsKey(id string) string {
	return "RefundReceipts/" + id
}

// pendingTransfersKey holds the transfers started but not yet booked
func pendingTransfersKey(id string) string {
	return "PendingTransfers/" + id
}
