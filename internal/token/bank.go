package token

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Bank is an in-process multi-token ledger.
// It backs tests and local runs where no chain is available.
type Bank struct {
	mu          sync.Mutex
	balances    map[common.Address]map[common.Address]*big.Int
	frozen      map[common.Address]bool
	unconfirmed map[common.Address]bool
}

// NewBank creates a bank that knows the given tokens
func NewBank(tokens ...common.Address) *Bank {
	b := &Bank{
		balances:    make(map[common.Address]map[common.Address]*big.Int),
		frozen:      make(map[common.Address]bool),
		unconfirmed: make(map[common.Address]bool),
	}
	for _, t := range tokens {
		b.balances[t] = make(map[common.Address]*big.Int)
	}
	return b
}

// Register makes token known to the bank
func (b *Bank) Register(token common.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.balances[token]; !ok {
		b.balances[token] = make(map[common.Address]*big.Int)
	}
}

// Mint credits holder with amount of token, registering the token when needed
func (b *Bank) Mint(token, holder common.Address, amount *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	holders, ok := b.balances[token]
	if !ok {
		holders = make(map[common.Address]*big.Int)
		b.balances[token] = holders
	}
	holders[holder] = new(big.Int).Add(balanceOf(holders, holder), amount)
}

// Freeze makes every transfer touching holder fail until Unfreeze
func (b *Bank) Freeze(holder common.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frozen[holder] = true
}

// LoseReceipts makes transfers touching holder settle but report
// ErrTransferUnconfirmed, like a transaction mined after its receipt wait gave up
func (b *Bank) LoseReceipts(holder common.Address, lose bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if lose {
		b.unconfirmed[holder] = true
	} else {
		delete(b.unconfirmed, holder)
	}
}

// Unfreeze lifts a Freeze
func (b *Bank) Unfreeze(holder common.Address) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.frozen, holder)
}

func (b *Bank) Transfer(ctx context.Context, token, from, to common.Address, amount *big.Int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !ValidTransferAmount(amount) {
		return ErrAmountOutOfRange
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	holders, ok := b.balances[token]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, token.Hex())
	}
	if b.frozen[from] || b.frozen[to] {
		return fmt.Errorf("%w: account frozen", ErrTransferReverted)
	}
	unconfirmed := b.unconfirmed[from] || b.unconfirmed[to]

	fromBalance := balanceOf(holders, from)
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s holds %s, needs %s", ErrInsufficientBalance, from.Hex(), fromBalance, amount)
	}

	holders[from] = new(big.Int).Sub(fromBalance, amount)
	holders[to] = new(big.Int).Add(balanceOf(holders, to), amount)
	if unconfirmed {
		return fmt.Errorf("%w: receipt lost", ErrTransferUnconfirmed)
	}
	return nil
}

func (b *Bank) Balance(ctx context.Context, token, holder common.Address) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	holders, ok := b.balances[token]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownToken, token.Hex())
	}
	return new(big.Int).Set(balanceOf(holders, holder)), nil
}

func balanceOf(holders map[common.Address]*big.Int, holder common.Address) *big.Int {
	if v, ok := holders[holder]; ok {
		return v
	}
	return new(big.Int)
}
