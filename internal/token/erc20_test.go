package token_test

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-crowdfund/internal/mocks"
	"github.com/feral-file/ff-crowdfund/internal/token"
)

var (
	transferSelector     = crypto.Keccak256([]byte("transfer(address,uint256)"))[:4]
	transferFromSelector = crypto.Keccak256([]byte("transferFrom(address,address,uint256)"))[:4]
)

type testERC20Mocks struct {
	ctrl    *gomock.Controller
	eth     *mocks.MockEthClient
	client  token.Client
	custody common.Address
}

func setupTestERC20(t *testing.T) *testERC20Mocks {
	ctrl := gomock.NewController(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	eth := mocks.NewMockEthClient(ctrl)
	client, err := token.NewERC20Client(eth, token.ERC20Config{
		CustodyKey:          key,
		ReceiptTimeout:      time.Second,
		ReceiptPollInterval: time.Millisecond,
	})
	require.NoError(t, err)

	return &testERC20Mocks{
		ctrl:    ctrl,
		eth:     eth,
		client:  client,
		custody: token.CustodyAddress(key),
	}
}

func (m *testERC20Mocks) expectSend(selector []byte, onSend func(tx *types.Transaction)) {
	m.eth.EXPECT().ChainID(gomock.Any()).Return(big.NewInt(1337), nil)
	m.eth.EXPECT().PendingNonceAt(gomock.Any(), m.custody).Return(uint64(7), nil)
	m.eth.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1_000_000_000), nil)
	m.eth.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
			if msg.From != m.custody || !bytes.Equal(msg.Data[:4], selector) {
				return 0, errors.New("unexpected call")
			}
			return 60_000, nil
		})
	m.eth.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *types.Transaction) error {
			onSend(tx)
			return nil
		})
}

func TestERC20Client_TransferFromCustody(t *testing.T) {
	m := setupTestERC20(t)
	defer m.ctrl.Finish()

	var sent *types.Transaction
	m.expectSend(transferSelector, func(tx *types.Transaction) { sent = tx })
	m.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(nil, ethereum.NotFound)
	m.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).
		Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil)

	err := m.client.Transfer(context.Background(), usdc, m.custody, alice, big.NewInt(250000))
	require.NoError(t, err)

	require.NotNil(t, sent)
	assert.Equal(t, uint64(7), sent.Nonce())
	assert.Equal(t, usdc, *sent.To())
	assert.Equal(t, uint64(60_000), sent.Gas())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1337)), sent)
	require.NoError(t, err)
	assert.Equal(t, m.custody, sender)
}

func TestERC20Client_TransferIntoCustodyUsesTransferFrom(t *testing.T) {
	m := setupTestERC20(t)
	defer m.ctrl.Finish()

	var sent *types.Transaction
	m.expectSend(transferFromSelector, func(tx *types.Transaction) { sent = tx })
	m.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).
		Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil)

	err := m.client.Transfer(context.Background(), usdc, alice, m.custody, big.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, transferFromSelector, sent.Data()[:4])
}

func TestERC20Client_TransferReverted(t *testing.T) {
	m := setupTestERC20(t)
	defer m.ctrl.Finish()

	m.expectSend(transferSelector, func(*types.Transaction) {})
	m.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).
		Return(&types.Receipt{Status: types.ReceiptStatusFailed}, nil)

	err := m.client.Transfer(context.Background(), usdc, m.custody, alice, big.NewInt(10))
	assert.ErrorIs(t, err, token.ErrTransferReverted)
}

func TestERC20Client_TransferRejectsBadAmount(t *testing.T) {
	m := setupTestERC20(t)
	defer m.ctrl.Finish()

	err := m.client.Transfer(context.Background(), usdc, m.custody, alice, big.NewInt(0))
	assert.ErrorIs(t, err, token.ErrAmountOutOfRange)
}

func TestERC20Client_Balance(t *testing.T) {
	m := setupTestERC20(t)
	defer m.ctrl.Finish()

	m.eth.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
			assert.Equal(t, usdc, *msg.To)
			return common.LeftPadBytes(big.NewInt(500000).Bytes(), 32), nil
		})

	balance, err := m.client.Balance(context.Background(), usdc, m.custody)
	require.NoError(t, err)
	assert.Equal(t, int64(500000), balance.Int64())
}

func TestERC20Client_BalanceCallError(t *testing.T) {
	m := setupTestERC20(t)
	defer m.ctrl.Finish()

	m.eth.EXPECT().CallContract(gomock.Any(), gomock.Any(), nil).Return(nil, errors.New("rpc down"))

	_, err := m.client.Balance(context.Background(), usdc, m.custody)
	assert.Error(t, err)
}

func TestNewERC20Client_RequiresKey(t *testing.T) {
	_, err := token.NewERC20Client(nil, token.ERC20Config{})
	assert.Error(t, err)
}

func TestERC20Client_ReceiptTimeoutIsUnconfirmed(t *testing.T) {
	m := setupTestERC20(t)
	defer m.ctrl.Finish()

	m.expectSend(transferSelector, func(*types.Transaction) {})
	m.eth.EXPECT().TransactionReceipt(gomock.Any(), gomock.Any()).Return(nil, ethereum.NotFound).AnyTimes()

	err := m.client.Transfer(context.Background(), usdc, m.custody, alice, big.NewInt(250000))
	assert.ErrorIs(t, err, token.ErrTransferUnconfirmed)
	assert.NotErrorIs(t, err, token.ErrTransferReverted)
}
