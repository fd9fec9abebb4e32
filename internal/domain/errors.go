package domain

import "errors"

var (
	// ErrAlreadyInitialized is returned when initialize runs on an initialized ledger
	ErrAlreadyInitialized = errors.New("already initialized")

	// ErrUnauthorized is returned when the caller is not the identity the operation requires
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists is returned when a project id is already taken
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned when a project or registry record is absent
	ErrNotFound = errors.New("not found")

	ErrInvalidFundingTarget = errors.New("invalid funding target")
	ErrInvalidMilestone     = errors.New("invalid milestone")

	// ErrProjectClosed is returned when funding a project its creator has closed
	ErrProjectClosed = errors.New("project closed")

	ErrFundingPeriodEnded = errors.New("funding period ended")
	ErrVotingPeriodEnded  = errors.New("voting period ended")

	ErrAlreadyVoted = errors.New("already voted")
	ErrNotVoted     = errors.New("not voted")
	ErrInvalidVote  = errors.New("invalid vote")

	ErrMilestoneAlreadyReleased = errors.New("milestone already released")
	ErrMilestoneAlreadyApproved = errors.New("milestone already approved")
	ErrMilestoneAlreadyRejected = errors.New("milestone already rejected")

	// ErrInsufficientFunds covers non-positive amounts and short custody balances
	ErrInsufficientFunds = errors.New("insufficient funds")

	ErrRefundAlreadyProcessed = errors.New("refund already processed")

	// ErrInvalidOperation is returned when the project state does not allow the call
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInternalError wraps storage and encoding failures
	ErrInternalError = errors.New("internal error")

	ErrAlreadyWhitelisted    = errors.New("token already whitelisted")
	ErrInvalidTokenContract  = errors.New("invalid token contract")
	ErrNoBackerContributions = errors.New("no backer contributions")
	ErrTransferFailed        = errors.New("transfer failed")
	ErrBalanceCheckFailed    = errors.New("balance check failed")
)

// errorCodes assigns the stable numeric code of each ledger error
var errorCodes = []error{
	ErrAlreadyInitialized,
	ErrUnauthorized,
	ErrAlreadyExists,
	ErrNotFound,
	ErrInvalidFundingTarget,
	ErrInvalidMilestone,
	ErrProjectClosed,
	ErrFundingPeriodEnded,
	ErrVotingPeriodEnded,
	ErrAlreadyVoted,
	ErrNotVoted,
	ErrInvalidVote,
	ErrMilestoneAlreadyReleased,
	ErrMilestoneAlreadyApproved,
	ErrMilestoneAlreadyRejected,
	ErrInsufficientFunds,
	ErrRefundAlreadyProcessed,
	ErrInvalidOperation,
	ErrInternalError,
	ErrAlreadyWhitelisted,
	ErrInvalidTokenContract,
	ErrNoBackerContributions,
	ErrTransferFailed,
	ErrBalanceCheckFailed,
}

// ErrorCode returns the numeric code (1-24) of the ledger error wrapped by err.
// It returns 0 when err carries none of them.
func ErrorCode(err error) uint32 {
	if err == nil {
		return 0
	}
	for i, target := range errorCodes {
		if errors.Is(err, target) {
			return uint32(i + 1) //nolint:gosec,G115
		}
	}
	return 0
}

// ErrorByCode returns the ledger error with the given code, or nil
func ErrorByCode(code uint32) error {
	if code == 0 || int(code) > len(errorCodes) {
		return nil
	}
	return errorCodes[code-1]
}
