package auth

import (
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/feral-file/ff-crowdfund/internal/adapter"
)

// SignedRequest is the envelope a signer authorizes.
// Its canonical JSON form is hashed with the EIP-191 personal message prefix.
// Nonce is chosen by the client so that two identical calls within the same
// second still produce distinct envelopes.
type SignedRequest struct {
	Method    string          `json:"method"`
	Path      string          `json:"path"`
	Timestamp int64           `json:"timestamp"`
	Nonce     string          `json:"nonce"`
	Body      json.RawMessage `json:"body"`
}

var (
	ErrInvalidSignature = errors.New("invalid signature")
	ErrStaleSignature   = errors.New("signature timestamp outside allowed window")
	ErrReplayedRequest  = errors.New("signed request already used")
)

// Digest returns the hash that signers sign
func (r SignedRequest) Digest() ([]byte, error) {
	if len(r.Body) == 0 {
		r.Body = json.RawMessage("null")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode signed request: %w", err)
	}
	canonical, err := adapter.Canonicalize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize signed request: %w", err)
	}
	return accounts.TextHash(canonical), nil
}

// CheckFreshness rejects envelopes whose timestamp is more than maxSkew away from now
func (r SignedRequest) CheckFreshness(now time.Time, maxSkew time.Duration) error {
	if maxSkew <= 0 {
		return nil
	}
	skew := now.Sub(time.Unix(r.Timestamp, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > maxSkew {
		return fmt.Errorf("%w: skew %s", ErrStaleSignature, skew)
	}
	return nil
}

// Sign produces a 65-byte signature with the wallet-style recovery id (27/28)
func Sign(req SignedRequest, key *ecdsa.PrivateKey) (string, error) {
	digest, err := req.Digest()
	if err != nil {
		return "", err
	}
	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return hexutil.Encode(sig), nil
}

// RecoverSigner returns the address that produced signature over req
func RecoverSigner(req SignedRequest, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, crypto.SignatureLength, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	digest, err := req.Digest()
	if err != nil {
		return common.Address{}, err
	}
	pub, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
