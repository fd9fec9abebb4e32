package dto

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	apierrors "github.com/feral-file/ff-crowdfund/internal/api/shared/errors"
	"github.com/feral-file/ff-crowdfund/internal/domain"
)

// MAX_PROJECT_ID_LENGTH bounds project ids accepted over HTTP
const MAX_PROJECT_ID_LENGTH = 64

// parseAddress validates a hex address field
func parseAddress(field, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, apierrors.NewValidationError(field + " is required")
	}
	address, ok := domain.NormalizeAddress(value)
	if !ok {
		return common.Address{}, apierrors.NewValidationError(fmt.Sprintf("invalid %s: %s", field, value))
	}
	return address, nil
}

// ParseAddressParam validates an address path parameter
func ParseAddressParam(field, value string) (common.Address, error) {
	return parseAddress(field, value)
}

// InitializeRequest represents the request body for initializing the contract
type InitializeRequest struct {
	Admin string `json:"admin"`

	AdminAddress common.Address `json:"-"`
}

// Validate validates the request body
func (r *InitializeRequest) Validate() error {
	var err error
	r.AdminAddress, err = parseAddress("admin", r.Admin)
	return err
}

// UpgradeRequest represents the request body for recording a code upgrade
type UpgradeRequest struct {
	CodeHash string `json:"code_hash"`

	Hash common.Hash `json:"-"`
}

// Validate validates the request body
func (r *UpgradeRequest) Validate() error {
	value := strings.TrimPrefix(r.CodeHash, "0x")
	if len(value) != 2*common.HashLength {
		return apierrors.NewValidationError("code_hash must be 32 hex bytes")
	}
	if _, ok := new(big.Int).SetString(value, 16); !ok {
		return apierrors.NewValidationError("code_hash must be hex")
	}
	r.Hash = common.HexToHash(r.CodeHash)
	return nil
}

// CreateProjectRequest represents the request body for creating a project
type CreateProjectRequest struct {
	ID             string `json:"id"`
	Creator        string `json:"creator"`
	MetadataURI    string `json:"metadata_uri"`
	FundingTarget  uint64 `json:"funding_target"`
	MilestoneCount uint32 `json:"milestone_count"`

	CreatorAddress common.Address `json:"-"`
}

// Validate validates the request body.
// Ledger rules on target and milestone count are left to the ledger.
func (r *CreateProjectRequest) Validate() error {
	if len(r.ID) > MAX_PROJECT_ID_LENGTH {
		return apierrors.NewValidationError(fmt.Sprintf("id must be at most %d characters", MAX_PROJECT_ID_LENGTH))
	}
	var err error
	r.CreatorAddress, err = parseAddress("creator", r.Creator)
	return err
}

// CallerRequest represents a request body carrying only the calling identity
type CallerRequest struct {
	Caller string `json:"caller"`

	CallerAddress common.Address `json:"-"`
}

// Validate validates the request body
func (r *CallerRequest) Validate() error {
	var err error
	r.CallerAddress, err = parseAddress("caller", r.Caller)
	return err
}

// UpdateMetadataRequest represents the request body for updating a project metadata URI
type UpdateMetadataRequest struct {
	CallerRequest
	MetadataURI string `json:"metadata_uri"`
}

// UpdateMilestoneCountRequest represents the request body for updating a project milestone count
type UpdateMilestoneCountRequest struct {
	CallerRequest
	MilestoneCount uint32 `json:"milestone_count"`
}

// VoteRequest represents the request body for voting on a project
type VoteRequest struct {
	Voter string `json:"voter"`
	Value int32  `json:"value"`

	VoterAddress common.Address `json:"-"`
}

// Validate validates the request body.
// The vote value itself is checked by the ledger.
func (r *VoteRequest) Validate() error {
	var err error
	r.VoterAddress, err = parseAddress("voter", r.Voter)
	return err
}

// FundRequest represents the request body for funding a project.
// Amount is a base-10 integer string so that values beyond 64 bits reach the ledger.
type FundRequest struct {
	Funder string `json:"funder"`
	Token  string `json:"token"`
	Amount string `json:"amount"`

	FunderAddress common.Address `json:"-"`
	TokenAddress  common.Address `json:"-"`
	AmountValue   *big.Int       `json:"-"`
}

// Validate validates the request body
func (r *FundRequest) Validate() error {
	var err error
	if r.FunderAddress, err = parseAddress("funder", r.Funder); err != nil {
		return err
	}
	if r.TokenAddress, err = parseAddress("token", r.Token); err != nil {
		return err
	}
	amount, ok := new(big.Int).SetString(strings.TrimSpace(r.Amount), 10)
	if !ok {
		return apierrors.NewValidationError(fmt.Sprintf("invalid amount: %q", r.Amount))
	}
	r.AmountValue = amount
	return nil
}

// WhitelistTokenRequest represents the request body for whitelisting a token on a project
type WhitelistTokenRequest struct {
	Admin string `json:"admin"`
	Token string `json:"token"`

	AdminAddress common.Address `json:"-"`
	TokenAddress common.Address `json:"-"`
}

// Validate validates the request body
func (r *WhitelistTokenRequest) Validate() error {
	var err error
	if r.AdminAddress, err = parseAddress("admin", r.Admin); err != nil {
		return err
	}
	r.TokenAddress, err = parseAddress("token", r.Token)
	return err
}

// MilestoneDecisionRequest represents the request body for releasing, approving or rejecting a milestone
type MilestoneDecisionRequest struct {
	Admin string `json:"admin"`

	AdminAddress common.Address `json:"-"`
}

// Validate validates the request body
func (r *MilestoneDecisionRequest) Validate() error {
	var err error
	r.AdminAddress, err = parseAddress("admin", r.Admin)
	return err
}

// ResolveTransferRequest represents the request body for resolving a pending transfer.
// Settled reports whether the transfer landed on the token contract.
type ResolveTransferRequest struct {
	Admin   string `json:"admin"`
	Settled bool   `json:"settled"`

	AdminAddress common.Address `json:"-"`
}

// Validate validates the request body
func (r *ResolveTransferRequest) Validate() error {
	var err error
	r.AdminAddress, err = parseAddress("admin", r.Admin)
	return err
}

// RefundRequest represents the request body for running a refund pass
type RefundRequest struct {
	Token string `json:"token"`

	TokenAddress common.Address `json:"-"`
}

// Validate validates the request body
func (r *RefundRequest) Validate() error {
	var err error
	r.TokenAddress, err = parseAddress("token", r.Token)
	return err
}
