package token

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Client is the token transfer primitive.
// Amounts are signed 128-bit integers carried as big.Int.
//
//go:generate mockgen -source=token.go -destination=../mocks/token.go -package=mocks -mock_names=Client=MockTokenClient
type Client interface {
	// Transfer moves amount of token from one holder to another
	Transfer(ctx context.Context, token, from, to common.Address, amount *big.Int) error

	// Balance returns the token balance of holder
	Balance(ctx context.Context, token, holder common.Address) (*big.Int, error)
}

var (
	ErrUnknownToken        = errors.New("unknown token")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrAmountOutOfRange    = errors.New("amount outside the signed 128-bit range or not positive")
	ErrTransferReverted    = errors.New("transfer reverted")

	// ErrTransferUnconfirmed means the transfer was submitted but its outcome is unknown.
	// It may still settle, so callers must not resend it.
	ErrTransferUnconfirmed = errors.New("transfer outcome unknown")
)

var (
	// MaxAmount is the largest signed 128-bit value
	MaxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	// MinAmount is the smallest signed 128-bit value
	MinAmount = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// InRange reports whether amount fits in a signed 128-bit integer
func InRange(amount *big.Int) bool {
	return amount != nil && amount.Cmp(MinAmount) >= 0 && amount.Cmp(MaxAmount) <= 0
}

// ValidTransferAmount reports whether amount is positive and fits in 128 bits
func ValidTransferAmount(amount *big.Int) bool {
	return InRange(amount) && amount.Sign() > 0
}

// FromUint64 converts internal accounting units to a boundary amount
func FromUint64(v uint64) *big.Int {
	return new(big.Int).SetUint64(v)
}
