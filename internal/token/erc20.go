package token

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/feral-file/ff-crowdfund/internal/adapter"
	"github.com/feral-file/ff-crowdfund/internal/logger"
)

const erc20ABI = `[
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"name":"transferFrom","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

// ERC20Config holds the settings of the ERC-20 token client
type ERC20Config struct {
	// CustodyKey signs every transaction; its address is the custody address
	CustodyKey *ecdsa.PrivateKey
	// GasMultiplier pads the estimated gas, 1.0 when zero
	GasMultiplier float64
	// ReceiptTimeout bounds how long a transfer waits to be mined
	ReceiptTimeout time.Duration
	// ReceiptPollInterval is the initial receipt polling interval
	ReceiptPollInterval time.Duration
}

type erc20Client struct {
	config  ERC20Config
	eth     adapter.EthClient
	abi     abi.ABI
	custody common.Address

	// sendMu serializes nonce allocation of the custody account
	sendMu  sync.Mutex
	chainID *big.Int
}

// NewERC20Client creates a token client that moves ERC-20 tokens from the custody account.
// Transfers out of custody use transfer; transfers into custody use transferFrom
// and require the funder to have approved the custody address beforehand.
func NewERC20Client(eth adapter.EthClient, cfg ERC20Config) (Client, error) {
	if cfg.CustodyKey == nil {
		return nil, errors.New("custody key is required")
	}
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC-20 ABI: %w", err)
	}
	if cfg.GasMultiplier <= 0 {
		cfg.GasMultiplier = 1.0
	}
	if cfg.ReceiptTimeout <= 0 {
		cfg.ReceiptTimeout = 2 * time.Minute
	}
	if cfg.ReceiptPollInterval <= 0 {
		cfg.ReceiptPollInterval = time.Second
	}

	return &erc20Client{
		config:  cfg,
		eth:     eth,
		abi:     parsed,
		custody: crypto.PubkeyToAddress(cfg.CustodyKey.PublicKey),
	}, nil
}

// CustodyAddress returns the address controlled by key
func CustodyAddress(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

func (c *erc20Client) Balance(ctx context.Context, token, holder common.Address) (*big.Int, error) {
	data, err := c.abi.Pack("balanceOf", holder)
	if err != nil {
		return nil, fmt.Errorf("failed to pack balanceOf: %w", err)
	}

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call balanceOf on %s: %w", token.Hex(), err)
	}

	values, err := c.abi.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack balanceOf: %w", err)
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("unexpected balanceOf output length: %d", len(values))
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf output type: %T", values[0])
	}

	return balance, nil
}

func (c *erc20Client) Transfer(ctx context.Context, token, from, to common.Address, amount *big.Int) error {
	if !ValidTransferAmount(amount) {
		return ErrAmountOutOfRange
	}

	var (
		data []byte
		err  error
	)
	if from == c.custody {
		data, err = c.abi.Pack("transfer", to, amount)
	} else {
		data, err = c.abi.Pack("transferFrom", from, to, amount)
	}
	if err != nil {
		return fmt.Errorf("failed to pack transfer: %w", err)
	}

	tx, err := c.send(ctx, token, data)
	if err != nil {
		return err
	}

	logger.DebugCtx(ctx, "Token transfer submitted",
		zap.String("token", token.Hex()),
		zap.String("from", from.Hex()),
		zap.String("to", to.Hex()),
		zap.String("amount", amount.String()),
		zap.String("tx_hash", tx.Hash().Hex()),
	)

	return c.waitMined(ctx, tx)
}

// send signs and submits a call to token from the custody account
func (c *erc20Client) send(ctx context.Context, token common.Address, data []byte) (*types.Transaction, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.chainID == nil {
		chainID, err := c.eth.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get chain id: %w", err)
		}
		c.chainID = chainID
	}

	nonce, err := c.eth.PendingNonceAt(ctx, c.custody)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	gas, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{From: c.custody, To: &token, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate gas: %w", err)
	}
	gas = uint64(float64(gas) * c.config.GasMultiplier)

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &token,
		Value:    new(big.Int),
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.config.CustodyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	return signed, nil
}

// waitMined polls for the receipt of tx and checks its status
func (c *erc20Client) waitMined(ctx context.Context, tx *types.Transaction) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.ReceiptPollInterval
	b.MaxInterval = 10 * c.config.ReceiptPollInterval
	b.MaxElapsedTime = c.config.ReceiptTimeout

	var receipt *types.Receipt
	operation := func() error {
		r, err := c.eth.TransactionReceipt(ctx, tx.Hash())
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				return err
			}
			return backoff.Permanent(err)
		}
		receipt = r
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("%w: no receipt for %s: %v", ErrTransferUnconfirmed, tx.Hash().Hex(), err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: tx %s", ErrTransferReverted, tx.Hash().Hex())
	}

	return nil
}
