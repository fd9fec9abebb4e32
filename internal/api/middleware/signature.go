package middleware

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-crowdfund/internal/adapter"
	apierrors "github.com/feral-file/ff-crowdfund/internal/api/shared/errors"
	"github.com/feral-file/ff-crowdfund/internal/auth"
	"github.com/feral-file/ff-crowdfund/internal/logger"
	"github.com/feral-file/ff-crowdfund/internal/store"
)

const (
	// SIGNATURE_HEADER holds one or more comma-separated hex signatures
	SIGNATURE_HEADER = "X-Signature"
	// SIGNATURE_TIMESTAMP_HEADER holds the unix seconds covered by the signatures
	SIGNATURE_TIMESTAMP_HEADER = "X-Signature-Timestamp"
	// SIGNATURE_NONCE_HEADER holds the client nonce covered by the signatures
	SIGNATURE_NONCE_HEADER = "X-Signature-Nonce"

	MAX_SIGNED_BODY_SIZE = 1 << 20
	MAX_NONCE_LENGTH     = 128

	// DEFAULT_NONCE_TTL bounds how long a digest is remembered when freshness checks are off
	DEFAULT_NONCE_TTL = 24 * time.Hour
)

// NonceStore remembers the signed requests already accepted
type NonceStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// SignatureConfig holds request signature verification settings
type SignatureConfig struct {
	MaxSkew time.Duration
	Clock   adapter.Clock
	// Nonces records accepted digests; an in-process store is used when nil
	Nonces NonceStore
}

// nonceTTL keeps a digest for as long as its envelope could pass the freshness check
func (cfg SignatureConfig) nonceTTL() time.Duration {
	if cfg.MaxSkew <= 0 {
		return DEFAULT_NONCE_TTL
	}
	return 2 * cfg.MaxSkew
}

// Signatures returns a gin middleware that verifies the request signatures and
// records their signers as the identities that authorized the call.
// Every signed envelope is accepted once; a replay is rejected.
// Requests without signatures pass through with no signers.
func Signatures(cfg SignatureConfig) gin.HandlerFunc {
	if cfg.Nonces == nil {
		cfg.Nonces = store.NewMemoryStore(cfg.Clock)
	}
	ttl := cfg.nonceTTL()

	return func(c *gin.Context) {
		header := c.GetHeader(SIGNATURE_HEADER)
		if header == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, MAX_SIGNED_BODY_SIZE))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, apierrors.NewBadRequestError("Failed to read request body", err.Error()))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		timestamp, err := strconv.ParseInt(c.GetHeader(SIGNATURE_TIMESTAMP_HEADER), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError("Invalid signature", "missing or malformed "+SIGNATURE_TIMESTAMP_HEADER))
			return
		}
		nonce := c.GetHeader(SIGNATURE_NONCE_HEADER)
		if nonce == "" || len(nonce) > MAX_NONCE_LENGTH {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError("Invalid signature", "missing or oversized "+SIGNATURE_NONCE_HEADER))
			return
		}

		req := auth.SignedRequest{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			Timestamp: timestamp,
			Nonce:     nonce,
			Body:      bytes.TrimSpace(body),
		}
		if err := req.CheckFreshness(cfg.Clock.Now(), cfg.MaxSkew); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError("Invalid signature", err.Error()))
			return
		}

		signers, err := recoverSigners(req, header)
		if err != nil {
			logger.WarnCtx(c.Request.Context(), "Signature verification failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError("Invalid signature", err.Error()))
			return
		}

		digest, err := req.Digest()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError("Invalid signature", err.Error()))
			return
		}
		claimed, err := cfg.Nonces.Claim(c.Request.Context(), nonceKey(digest), ttl)
		if err != nil {
			logger.ErrorCtx(c.Request.Context(), fmt.Errorf("failed to record signed request: %w", err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, apierrors.NewServiceError("Signature replay check unavailable"))
			return
		}
		if !claimed {
			logger.WarnCtx(c.Request.Context(), "Signed request replayed",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierrors.NewUnauthorizedError("Invalid signature", auth.ErrReplayedRequest.Error()))
			return
		}

		logger.DebugCtx(c.Request.Context(), "Request signatures verified",
			zap.String("path", c.Request.URL.Path),
			zap.Int("signers", len(signers)),
		)
		c.Request = c.Request.WithContext(auth.WithSigners(c.Request.Context(), signers...))
		c.Next()
	}
}

// nonceKey is the storage key of an accepted digest
func nonceKey(digest []byte) string {
	return "Nonce/" + hex.EncodeToString(digest)
}

// recoverSigners recovers the signer of every signature in header
func recoverSigners(req auth.SignedRequest, header string) ([]common.Address, error) {
	var signers []common.Address
	for _, sig := range strings.Split(header, ",") {
		sig = strings.TrimSpace(sig)
		if sig == "" {
			continue
		}
		signer, err := auth.RecoverSigner(req, sig)
		if err != nil {
			return nil, err
		}
		signers = append(signers, signer)
	}
	if len(signers) == 0 {
		return nil, fmt.Errorf("%w: empty %s", auth.ErrInvalidSignature, SIGNATURE_HEADER)
	}
	return signers, nil
}
