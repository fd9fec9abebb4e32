package server_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-crowdfund/internal/adapter"
	"github.com/feral-file/ff-crowdfund/internal/api/middleware"
	"github.com/feral-file/ff-crowdfund/internal/api/server"
	"github.com/feral-file/ff-crowdfund/internal/auth"
	"github.com/feral-file/ff-crowdfund/internal/domain"
	"github.com/feral-file/ff-crowdfund/internal/logger"
	"github.com/feral-file/ff-crowdfund/internal/mocks"
)

func newRouter(t *testing.T, auth middleware.AuthConfig) (*gin.Engine, *mocks.MockLedger) {
	require.NoError(t, logger.Initialize(logger.Config{Debug: true}))

	ctrl := gomock.NewController(t)
	l := mocks.NewMockLedger(ctrl)
	srv := server.New(server.Config{
		Auth:             auth,
		SignatureMaxSkew: 5 * time.Minute,
	}, l, adapter.NewManualClock(time.Unix(1_700_000_000, 0)))
	return srv.Router(), l
}

func TestRouter_ReadsArePublic(t *testing.T) {
	router, l := newRouter(t, middleware.AuthConfig{APIKeys: []string{"secret"}})
	l.EXPECT().ListProjects(gomock.Any()).Return([]string{}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.REQUEST_ID_HEADER))
}

func TestRouter_WritesRequireOperatorAuth(t *testing.T) {
	router, l := newRouter(t, middleware.AuthConfig{APIKeys: []string{"secret"}})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/tally", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	l.EXPECT().TallyVotes(gomock.Any(), "p1").Return(domain.ProjectStatusFunding, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/tally", nil)
	req.Header.Set("Authorization", "ApiKey secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_WritesOpenWithoutOperatorAuth(t *testing.T) {
	router, l := newRouter(t, middleware.AuthConfig{})
	l.EXPECT().TallyVotes(gomock.Any(), "p1").Return(domain.ProjectStatusFailed, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/tally", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RejectsBadSignatureBeforeLedger(t *testing.T) {
	router, _ := newRouter(t, middleware.AuthConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewBufferString(`{"id":"p1"}`))
	req.Header.Set(middleware.SIGNATURE_HEADER, "0x00")
	req.Header.Set(middleware.SIGNATURE_TIMESTAMP_HEADER, "1700000000")
	req.Header.Set(middleware.SIGNATURE_NONCE_HEADER, "n-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_ReplayedWriteReachesLedgerOnce(t *testing.T) {
	router, l := newRouter(t, middleware.AuthConfig{})
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	ts := int64(1_700_000_000)
	sig, err := auth.Sign(auth.SignedRequest{
		Method:    http.MethodPost,
		Path:      "/api/v1/projects/p1/tally",
		Timestamp: ts,
		Nonce:     "n-1",
	}, key)
	require.NoError(t, err)

	signed := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/p1/tally", nil)
		req.Header.Set(middleware.SIGNATURE_HEADER, sig)
		req.Header.Set(middleware.SIGNATURE_TIMESTAMP_HEADER, strconv.FormatInt(ts, 10))
		req.Header.Set(middleware.SIGNATURE_NONCE_HEADER, "n-1")
		return req
	}

	l.EXPECT().TallyVotes(gomock.Any(), "p1").Return(domain.ProjectStatusFunding, nil).Times(1)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, signed())
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, signed())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
