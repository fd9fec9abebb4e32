package domain

import "time"

const (
	// Lifecycle periods
	DEFAULT_VOTING_PERIOD  = 30 * 24 * time.Hour
	DEFAULT_FUNDING_PERIOD = 30 * 24 * time.Hour

	// Milestone count bounds: count must be in (MIN, MAX]
	DEFAULT_MILESTONE_COUNT_MIN = 4
	DEFAULT_MILESTONE_COUNT_MAX = 100

	// Minimum number of votes required before a tally can pass
	DEFAULT_VOTE_QUORUM = 1

	// Storage lifetime: entries are bumped to BUMP when less than THRESHOLD remains
	DEFAULT_ENTRY_TTL_BUMP      = 30 * 24 * time.Hour
	DEFAULT_ENTRY_TTL_THRESHOLD = DEFAULT_ENTRY_TTL_BUMP - 24*time.Hour
)
