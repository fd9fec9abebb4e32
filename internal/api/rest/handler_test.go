package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-crowdfund/internal/api/rest"
	apierrors "github.com/feral-file/ff-crowdfund/internal/api/shared/errors"
	"github.com/feral-file/ff-crowdfund/internal/domain"
	"github.com/feral-file/ff-crowdfund/internal/logger"
	"github.com/feral-file/ff-crowdfund/internal/mocks"
)

var (
	adminAddr   = common.HexToAddress("0x00000000000000000000000000000000000000ad")
	creatorAddr = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	voterAddr   = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	usdcToken   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
)

type testHandlerMocks struct {
	ctrl   *gomock.Controller
	ledger *mocks.MockLedger
	router *gin.Engine
}

func setupTestHandler(t *testing.T) *testHandlerMocks {
	err := logger.Initialize(logger.Config{Debug: true})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	tm := &testHandlerMocks{
		ctrl:   ctrl,
		ledger: mocks.NewMockLedger(ctrl),
		router: gin.New(),
	}
	rest.SetupRoutes(tm.router, rest.NewHandler(tm.ledger))
	return tm
}

func (tm *testHandlerMocks) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	tm.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.APIError {
	t.Helper()
	var apiErr apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func TestHealthCheck(t *testing.T) {
	tm := setupTestHandler(t)

	w := tm.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ff-crowdfund-api")
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		setup      func(*mocks.MockLedger)
		wantStatus int
		wantCode   apierrors.ErrorCode
	}{
		{
			name: "success",
			body: map[string]string{"admin": adminAddr.Hex()},
			setup: func(l *mocks.MockLedger) {
				l.EXPECT().Initialize(gomock.Any(), adminAddr).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing admin",
			body:       map[string]string{},
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.ErrCodeValidationFailed,
		},
		{
			name:       "malformed address",
			body:       map[string]string{"admin": "0x1234"},
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.ErrCodeValidationFailed,
		},
		{
			name:       "invalid json",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.ErrCodeBadRequest,
		},
		{
			name: "already initialized",
			body: map[string]string{"admin": adminAddr.Hex()},
			setup: func(l *mocks.MockLedger) {
				l.EXPECT().Initialize(gomock.Any(), adminAddr).Return(domain.ErrAlreadyInitialized)
			},
			wantStatus: http.StatusConflict,
			wantCode:   apierrors.ErrCodeConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestHandler(t)
			if tt.setup != nil {
				tt.setup(tm.ledger)
			}

			w := tm.do(http.MethodPost, "/api/v1/contract/initialize", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
			}
		})
	}
}

func TestUpgrade(t *testing.T) {
	tm := setupTestHandler(t)
	hash := common.HexToHash("0x0101010101010101010101010101010101010101010101010101010101010101")
	tm.ledger.EXPECT().Upgrade(gomock.Any(), hash).Return(uint32(2), nil)

	w := tm.do(http.MethodPost, "/api/v1/contract/upgrade", map[string]string{"code_hash": hash.Hex()})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"version":2}`, w.Body.String())

	w = tm.do(http.MethodPost, "/api/v1/contract/upgrade", map[string]string{"code_hash": "0x01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAdmin_NotInitialized(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().GetAdmin(gomock.Any()).Return(common.Address{}, domain.ErrNotFound)

	w := tm.do(http.MethodGet, "/api/v1/contract/admin", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, apierrors.ErrCodeNotFound, apiErr.Code)
	assert.Equal(t, domain.ErrorCode(domain.ErrNotFound), apiErr.LedgerCode)
}

func TestCreateProject(t *testing.T) {
	tm := setupTestHandler(t)

	project := &domain.Project{
		ID:             "p1",
		Creator:        creatorAddr,
		FundingTarget:  1000,
		MilestoneCount: 5,
		Status:         domain.ProjectStatusVoting,
	}
	gomock.InOrder(
		tm.ledger.EXPECT().CreateProject(gomock.Any(), "p1", creatorAddr, "ipfs://meta", uint64(1000), uint32(5)).Return(nil),
		tm.ledger.EXPECT().GetProject(gomock.Any(), "p1").Return(project, nil),
	)

	w := tm.do(http.MethodPost, "/api/v1/projects", map[string]any{
		"id":              "p1",
		"creator":         creatorAddr.Hex(),
		"metadata_uri":    "ipfs://meta",
		"funding_target":  1000,
		"milestone_count": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "p1", body["id"])
	assert.Equal(t, "voting", body["status"])
	assert.Equal(t, "voting", body["effective_status"])
}

func TestCreateProject_LedgerRejects(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"duplicate", domain.ErrAlreadyExists, http.StatusConflict},
		{"zero target", domain.ErrInvalidFundingTarget, http.StatusBadRequest},
		{"milestone count", domain.ErrInvalidMilestone, http.StatusBadRequest},
		{"unauthorized", fmt.Errorf("%w: creator did not sign", domain.ErrUnauthorized), http.StatusForbidden},
		{"storage", fmt.Errorf("%w: connection reset", domain.ErrInternalError), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestHandler(t)
			tm.ledger.EXPECT().CreateProject(gomock.Any(), "p1", creatorAddr, "", uint64(0), uint32(0)).Return(tt.err)

			w := tm.do(http.MethodPost, "/api/v1/projects", map[string]any{"id": "p1", "creator": creatorAddr.Hex()})
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, domain.ErrorCode(tt.err), decodeError(t, w).LedgerCode)
		})
	}
}

func TestGetProject_Closed(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().GetProject(gomock.Any(), "p1").Return(&domain.Project{
		ID:       "p1",
		Status:   domain.ProjectStatusVoting,
		IsClosed: true,
	}, nil)

	w := tm.do(http.MethodGet, "/api/v1/projects/p1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "voting", body["status"])
	assert.Equal(t, "closed", body["effective_status"])
	assert.Equal(t, true, body["is_closed"])
}

func TestListProjects(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().ListProjects(gomock.Any()).Return([]string{"a", "b"}, nil)

	w := tm.do(http.MethodGet, "/api/v1/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"projects":["a","b"]}`, w.Body.String())
}

func TestUpdateProjectMetadata(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().UpdateProjectMetadata(gomock.Any(), "p1", creatorAddr, "ipfs://new").Return(nil)

	w := tm.do(http.MethodPatch, "/api/v1/projects/p1/metadata", map[string]string{
		"caller":       creatorAddr.Hex(),
		"metadata_uri": "ipfs://new",
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUpdateProjectMilestoneCount(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().UpdateProjectMilestoneCount(gomock.Any(), "p1", creatorAddr, uint32(8)).Return(nil)

	w := tm.do(http.MethodPatch, "/api/v1/projects/p1/milestone-count", map[string]any{
		"caller":          creatorAddr.Hex(),
		"milestone_count": 8,
	})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCloseProject(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().CloseProject(gomock.Any(), "p1", voterAddr).Return(domain.ErrUnauthorized)

	w := tm.do(http.MethodPost, "/api/v1/projects/p1/close", map[string]string{"caller": voterAddr.Hex()})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apierrors.ErrCodeForbidden, decodeError(t, w).Code)
}

func TestVoteProject(t *testing.T) {
	tm := setupTestHandler(t)
	vote := &domain.Vote{Voter: voterAddr, Value: domain.VoteApprove, Timestamp: 100}
	gomock.InOrder(
		tm.ledger.EXPECT().VoteProject(gomock.Any(), "p1", voterAddr, domain.VoteApprove).Return(nil),
		tm.ledger.EXPECT().GetVote(gomock.Any(), "p1", voterAddr).Return(vote, nil),
	)

	w := tm.do(http.MethodPost, "/api/v1/projects/p1/votes", map[string]any{"voter": voterAddr.Hex(), "value": 1})
	require.Equal(t, http.StatusCreated, w.Code)

	var got domain.Vote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, *vote, got)
}

func TestVoteProject_InvalidValue(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().VoteProject(gomock.Any(), "p1", voterAddr, domain.VoteValue(2)).Return(domain.ErrInvalidVote)

	w := tm.do(http.MethodPost, "/api/v1/projects/p1/votes", map[string]any{"voter": voterAddr.Hex(), "value": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, uint32(12), decodeError(t, w).LedgerCode)
}

func TestWithdrawVote(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().WithdrawVote(gomock.Any(), "p1", voterAddr).Return(domain.ErrNotVoted)

	w := tm.do(http.MethodDelete, "/api/v1/projects/p1/votes/"+voterAddr.Hex(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = tm.do(http.MethodDelete, "/api/v1/projects/p1/votes/not-an-address", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHasVoted(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().HasVoted(gomock.Any(), "p1", voterAddr).Return(true, nil)

	w := tm.do(http.MethodGet, "/api/v1/projects/p1/votes/"+voterAddr.Hex()+"/exists", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["has_voted"])
}

func TestTallyVotes(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().TallyVotes(gomock.Any(), "p1").Return(domain.ProjectStatusFunding, nil)

	w := tm.do(http.MethodPost, "/api/v1/projects/p1/tally", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"funding"}`, w.Body.String())
}

func TestFundProject(t *testing.T) {
	tm := setupTestHandler(t)

	amountMatcher := gomock.AssignableToTypeOf(&big.Int{})
	gomock.InOrder(
		tm.ledger.EXPECT().FundProject(gomock.Any(), "p1", amountMatcher, voterAddr, usdcToken).
			DoAndReturn(func(_ context.Context, _ string, amount *big.Int, _ common.Address, _ common.Address) error {
				assert.Equal(t, "250", amount.String())
				return nil
			}),
		tm.ledger.EXPECT().GetProjectFunding(gomock.Any(), "p1").Return(&domain.ProjectFunding{TotalFunded: 250, FundingTarget: 1000}, nil),
	)

	w := tm.do(http.MethodPost, "/api/v1/projects/p1/fund", map[string]string{
		"funder": voterAddr.Hex(),
		"token":  usdcToken.Hex(),
		"amount": "250",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total_funded":250,"funding_target":1000}`, w.Body.String())
}

func TestFundProject_AmountBeyond64BitsReachesLedger(t *testing.T) {
	tm := setupTestHandler(t)

	tm.ledger.EXPECT().FundProject(gomock.Any(), "p1", gomock.Any(), voterAddr, usdcToken).
		DoAndReturn(func(_ context.Context, _ string, amount *big.Int, _ common.Address, _ common.Address) error {
			assert.False(t, amount.IsUint64())
			return domain.ErrInvalidOperation
		})

	w := tm.do(http.MethodPost, "/api/v1/projects/p1/fund", map[string]string{
		"funder": voterAddr.Hex(),
		"token":  usdcToken.Hex(),
		"amount": "340282366920938463463374607431768211455",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFundProject_InvalidAmount(t *testing.T) {
	tm := setupTestHandler(t)

	w := tm.do(http.MethodPost, "/api/v1/projects/p1/fund", map[string]string{
		"funder": voterAddr.Hex(),
		"token":  usdcToken.Hex(),
		"amount": "12.5",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrCodeValidationFailed, decodeError(t, w).Code)
}

func TestFundProject_TransferFailed(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().FundProject(gomock.Any(), "p1", gomock.Any(), voterAddr, usdcToken).
		Return(fmt.Errorf("%w: allowance too low", domain.ErrTransferFailed))

	w := tm.do(http.MethodPost, "/api/v1/projects/p1/fund", map[string]string{
		"funder": voterAddr.Hex(),
		"token":  usdcToken.Hex(),
		"amount": "10",
	})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, apierrors.ErrCodeServiceError, apiErr.Code)
	assert.Contains(t, apiErr.Details, "allowance too low")
}

func TestWhitelistToken(t *testing.T) {
	tm := setupTestHandler(t)
	gomock.InOrder(
		tm.ledger.EXPECT().WhitelistTokenContract(gomock.Any(), adminAddr, "p1", usdcToken).Return(nil),
		tm.ledger.EXPECT().GetWhitelistedTokens(gomock.Any(), "p1").Return([]common.Address{usdcToken}, nil),
	)

	w := tm.do(http.MethodPost, "/api/v1/projects/p1/tokens", map[string]string{
		"admin": adminAddr.Hex(),
		"token": usdcToken.Hex(),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Tokens []common.Address `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []common.Address{usdcToken}, body.Tokens)
}

func TestGetBackerContribution(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().GetBackerContribution(gomock.Any(), "p1", voterAddr).Return(uint64(75), nil)

	w := tm.do(http.MethodGet, "/api/v1/projects/p1/backers/"+voterAddr.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(75), body["amount"])
}

func TestListContributions(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().ListContributions(gomock.Any(), "p1").Return([]domain.BackerContribution{
		{Backer: voterAddr, Token: usdcToken, Amount: 5, Timestamp: 1},
	}, nil)

	w := tm.do(http.MethodGet, "/api/v1/projects/p1/contributions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"amount":5`)
}

func TestFinalizeFunding(t *testing.T) {
	tm := setupTestHandler(t)
	gomock.InOrder(
		tm.ledger.EXPECT().FinalizeFunding(gomock.Any(), "p1").Return(nil),
		tm.ledger.EXPECT().GetProjectStatus(gomock.Any(), "p1").Return(domain.ProjectStatusFailed, nil),
	)

	w := tm.do(http.MethodPost, "/api/v1/projects/p1/finalize", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"failed"}`, w.Body.String())
}

func TestMilestoneDecisions(t *testing.T) {
	released := &domain.Milestone{Number: 2, Description: "Milestone 2", Amount: 200, Status: domain.MilestoneStatusReleased}

	tests := []struct {
		name   string
		action string
		expect func(l *mocks.MockLedger) *gomock.Call
	}{
		{"release", "release", func(l *mocks.MockLedger) *gomock.Call {
			return l.EXPECT().ReleaseMilestone(gomock.Any(), adminAddr, "p1", uint32(2)).Return(nil)
		}},
		{"approve", "approve", func(l *mocks.MockLedger) *gomock.Call {
			return l.EXPECT().ApproveMilestone(gomock.Any(), adminAddr, "p1", uint32(2)).Return(nil)
		}},
		{"reject", "reject", func(l *mocks.MockLedger) *gomock.Call {
			return l.EXPECT().RejectMilestone(gomock.Any(), adminAddr, "p1", uint32(2)).Return(nil)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestHandler(t)
			gomock.InOrder(
				tt.expect(tm.ledger),
				tm.ledger.EXPECT().GetMilestone(gomock.Any(), "p1", uint32(2)).Return(released, nil),
			)

			w := tm.do(http.MethodPost, "/api/v1/projects/p1/milestones/2/"+tt.action, map[string]string{"admin": adminAddr.Hex()})
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), `"number":2`)
		})
	}
}

func TestMilestoneDecision_Errors(t *testing.T) {
	tm := setupTestHandler(t)

	w := tm.do(http.MethodPost, "/api/v1/projects/p1/milestones/abc/release", map[string]string{"admin": adminAddr.Hex()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	tm.ledger.EXPECT().ApproveMilestone(gomock.Any(), adminAddr, "p1", uint32(1)).Return(domain.ErrMilestoneAlreadyApproved)
	w = tm.do(http.MethodPost, "/api/v1/projects/p1/milestones/1/approve", map[string]string{"admin": adminAddr.Hex()})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, uint32(14), decodeError(t, w).LedgerCode)
}

func TestGetMilestoneStatus(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().GetMilestoneStatus(gomock.Any(), "p1", uint32(3)).Return(domain.MilestoneStatusPending, nil)

	w := tm.do(http.MethodGet, "/api/v1/projects/p1/milestones/3/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"number":3,"status":"pending"}`, w.Body.String())
}

func TestGetProjectMilestones(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().GetProjectMilestones(gomock.Any(), "p1").Return([]domain.Milestone{
		{Number: 1, Description: "Milestone 1", Amount: 10, Status: domain.MilestoneStatusPending},
	}, nil)

	w := tm.do(http.MethodGet, "/api/v1/projects/p1/milestones", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"description":"Milestone 1"`)
}

func TestRefund(t *testing.T) {
	tests := []struct {
		name       string
		report     *domain.RefundReport
		err        error
		wantStatus int
	}{
		{
			name: "complete pass",
			report: &domain.RefundReport{
				ProjectID:      "p1",
				Token:          usdcToken,
				Owed:           10,
				Refunded:       []domain.RefundTransfer{{Index: 0, Backer: voterAddr, Amount: 10}},
				Failed:         []domain.RefundTransfer{},
				TokenCompleted: true,
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "partial pass",
			report: &domain.RefundReport{
				ProjectID: "p1",
				Token:     usdcToken,
				Owed:      10,
				Refunded:  []domain.RefundTransfer{},
				Failed:    []domain.RefundTransfer{{Index: 0, Backer: voterAddr, Amount: 10, Error: "frozen"}},
			},
			wantStatus: http.StatusMultiStatus,
		},
		{
			name: "unconfirmed transfer",
			report: &domain.RefundReport{
				ProjectID: "p1",
				Token:     usdcToken,
				Refunded:  []domain.RefundTransfer{},
				Failed:    []domain.RefundTransfer{},
				Unconfirmed: []domain.PendingTransfer{{
					Seq: 1, Kind: domain.TransferKindRefund, Backer: voterAddr, Token: usdcToken, Amount: 10,
				}},
			},
			wantStatus: http.StatusMultiStatus,
		},
		{
			name:       "already processed",
			err:        domain.ErrRefundAlreadyProcessed,
			wantStatus: http.StatusConflict,
		},
		{
			name:       "balance check failed",
			err:        fmt.Errorf("%w: rpc timeout", domain.ErrBalanceCheckFailed),
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestHandler(t)
			tm.ledger.EXPECT().Refund(gomock.Any(), "p1", usdcToken).Return(tt.report, tt.err)

			w := tm.do(http.MethodPost, "/api/v1/projects/p1/refunds", map[string]string{"token": usdcToken.Hex()})
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGetRefundedTokens(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().GetRefundedTokens(gomock.Any(), "p1").Return([]common.Address{}, nil)

	w := tm.do(http.MethodGet, "/api/v1/projects/p1/refunds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tokens":[]}`, w.Body.String())
}

func TestListPendingTransfers(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().ListPendingTransfers(gomock.Any(), "p1").Return([]domain.PendingTransfer{{
		Seq:    3,
		Kind:   domain.TransferKindContribution,
		Backer: voterAddr,
		Token:  usdcToken,
		Amount: 25,
	}}, nil)

	w := tm.do(http.MethodGet, "/api/v1/projects/p1/transfers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"seq":3`)
	assert.Contains(t, w.Body.String(), `"kind":"contribution"`)
}

func TestResolvePendingTransfer(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       any
		setup      func(*mocks.MockLedger)
		wantStatus int
	}{
		{
			name: "settled",
			path: "/api/v1/projects/p1/transfers/2/resolve",
			body: map[string]any{"admin": adminAddr.Hex(), "settled": true},
			setup: func(l *mocks.MockLedger) {
				l.EXPECT().ResolvePendingTransfer(gomock.Any(), adminAddr, "p1", uint32(2), true).Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name: "unknown sequence",
			path: "/api/v1/projects/p1/transfers/9/resolve",
			body: map[string]any{"admin": adminAddr.Hex(), "settled": false},
			setup: func(l *mocks.MockLedger) {
				l.EXPECT().ResolvePendingTransfer(gomock.Any(), adminAddr, "p1", uint32(9), false).
					Return(fmt.Errorf("%w: pending transfer 9", domain.ErrNotFound))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "malformed sequence",
			path:       "/api/v1/projects/p1/transfers/x/resolve",
			body:       map[string]any{"admin": adminAddr.Hex(), "settled": true},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing admin",
			path:       "/api/v1/projects/p1/transfers/2/resolve",
			body:       map[string]any{"settled": true},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestHandler(t)
			if tt.setup != nil {
				tt.setup(tm.ledger)
			}

			w := tm.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestGetContractInfo(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().GetContractInfo(gomock.Any()).Return(&domain.ContractInfo{
		Admin:       adminAddr,
		Version:     1,
		Initialized: true,
	}, nil)

	w := tm.do(http.MethodGet, "/api/v1/contract", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"initialized":true`)
}

func TestUnknownErrorIsInternal(t *testing.T) {
	tm := setupTestHandler(t)
	tm.ledger.EXPECT().GetProjectStats(gomock.Any(), "p1").Return(nil, fmt.Errorf("boom"))

	w := tm.do(http.MethodGet, "/api/v1/projects/p1/stats", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	apiErr := decodeError(t, w)
	assert.Equal(t, apierrors.ErrCodeInternalError, apiErr.Code)
	assert.Empty(t, apiErr.Details)
}
