package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-crowdfund/internal/adapter"
	"github.com/feral-file/ff-crowdfund/internal/auth"
	"github.com/feral-file/ff-crowdfund/internal/config"
	"github.com/feral-file/ff-crowdfund/internal/domain"
	"github.com/feral-file/ff-crowdfund/internal/events"
	"github.com/feral-file/ff-crowdfund/internal/ledger"
	"github.com/feral-file/ff-crowdfund/internal/logger"
	"github.com/feral-file/ff-crowdfund/internal/store"
	"github.com/feral-file/ff-crowdfund/internal/token"
)

// Options selects the backends of a ledger process
type Options struct {
	Storage  config.StorageConfig
	Database config.DatabaseConfig
	NATS     config.NATSConfig
	Token    config.TokenConfig
	Ethereum config.EthereumConfig
	Ledger   config.LedgerConfig
}

// Runtime is a ledger together with the backends it runs on
type Runtime struct {
	Ledger *ledger.Contract
	Store  store.Store
	Clock  adapter.Clock

	closers []func()
}

// Open connects the configured backends and builds the ledger.
// The returned runtime must be closed.
func Open(ctx context.Context, opts Options) (*Runtime, error) {
	rt := &Runtime{Clock: adapter.NewClock()}
	codec := adapter.NewCanonicalCodec()

	locker, err := rt.openStore(ctx, opts)
	if err != nil {
		rt.Close()
		return nil, err
	}

	tokens, custody, err := rt.openTokens(ctx, opts)
	if err != nil {
		rt.Close()
		return nil, err
	}

	sink, err := rt.openSink(ctx, opts, codec)
	if err != nil {
		rt.Close()
		return nil, err
	}

	ledgerConfig := ledger.Config{
		VotingPeriod:      opts.Ledger.VotingPeriod,
		FundingPeriod:     opts.Ledger.FundingPeriod,
		MilestoneCountMin: opts.Ledger.MilestoneCountMin,
		MilestoneCountMax: opts.Ledger.MilestoneCountMax,
		VoteQuorum:        opts.Ledger.VoteQuorum,
		EntryTTLBump:      opts.Ledger.EntryTTLBump,
		EntryTTLThreshold: opts.Ledger.EntryTTLThreshold,
		CustodyAddress:    custody,
	}
	rt.Ledger = ledger.New(ledgerConfig, rt.Store, locker, auth.NewContextAuthorizer(), tokens, sink, rt.Clock, codec)

	logger.InfoCtx(ctx, "Ledger ready",
		zap.String("storage", opts.Storage.Backend),
		zap.String("token_backend", opts.Token.Backend),
		zap.String("custody", custody.Hex()),
		zap.Duration("voting_period", opts.Ledger.VotingPeriod),
		zap.Duration("funding_period", opts.Ledger.FundingPeriod),
	)
	return rt, nil
}

// Close releases the backends in reverse opening order
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

func (r *Runtime) openStore(ctx context.Context, opts Options) (store.Locker, error) {
	switch opts.Storage.Backend {
	case config.StorageMemory:
		r.Store = store.NewMemoryStore(r.Clock)
		logger.WarnCtx(ctx, "Using in-memory ledger storage, state is lost on exit")
		return store.NewLocalLocker(), nil

	case config.StoragePostgres:
		db, err := gorm.Open(postgres.Open(opts.Database.DSN()), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			r.closers = append(r.closers, func() { _ = sqlDB.Close() })
		}

		dbCfg := opts.Database
		if err := store.ConfigureConnectionPool(db, dbCfg.MaxOpenConns, dbCfg.MaxIdleConns, dbCfg.ConnMaxLifetime, dbCfg.ConnMaxIdleTime); err != nil {
			return nil, fmt.Errorf("failed to configure connection pool: %w", err)
		}
		logger.InfoCtx(ctx, "Connected to database",
			zap.String("host", dbCfg.Host),
			zap.String("dbname", dbCfg.DBName),
			zap.Int("max_open_conns", dbCfg.MaxOpenConns),
			zap.Int("max_idle_conns", dbCfg.MaxIdleConns),
		)

		r.Store = store.NewPGStore(db, r.Clock)
		return store.NewPGLocker(db, dbCfg.AdvisoryLockKey), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", opts.Storage.Backend)
	}
}

func (r *Runtime) openTokens(ctx context.Context, opts Options) (token.Client, common.Address, error) {
	switch opts.Token.Backend {
	case config.TokenMemory:
		custody, ok := domain.NormalizeAddress(opts.Token.CustodyAddress)
		if !ok {
			return nil, common.Address{}, fmt.Errorf("invalid custody address: %s", opts.Token.CustodyAddress)
		}
		known := make([]common.Address, 0, len(opts.Token.Tokens))
		for _, t := range opts.Token.Tokens {
			address, ok := domain.NormalizeAddress(t)
			if !ok {
				return nil, common.Address{}, fmt.Errorf("invalid token address: %s", t)
			}
			known = append(known, address)
		}
		logger.WarnCtx(ctx, "Using in-memory token bank", zap.Int("tokens", len(known)))
		return token.NewBank(known...), custody, nil

	case config.TokenERC20:
		key, err := crypto.HexToECDSA(strings.TrimPrefix(opts.Ethereum.CustodyPrivateKey, "0x"))
		if err != nil {
			return nil, common.Address{}, errors.New("invalid custody private key")
		}

		eth, err := adapter.NewEthClientDialer().Dial(ctx, opts.Ethereum.RPCURL)
		if err != nil {
			return nil, common.Address{}, fmt.Errorf("failed to dial Ethereum RPC: %w", err)
		}
		r.closers = append(r.closers, eth.Close)

		client, err := token.NewERC20Client(eth, token.ERC20Config{
			CustodyKey:          key,
			GasMultiplier:       opts.Ethereum.GasMultiplier,
			ReceiptTimeout:      opts.Ethereum.ReceiptTimeout,
			ReceiptPollInterval: opts.Ethereum.ReceiptPollInterval,
		})
		if err != nil {
			return nil, common.Address{}, fmt.Errorf("failed to create ERC-20 client: %w", err)
		}
		custody := crypto.PubkeyToAddress(key.PublicKey)
		logger.InfoCtx(ctx, "Connected to Ethereum RPC", zap.String("custody", custody.Hex()))
		return client, custody, nil

	default:
		return nil, common.Address{}, fmt.Errorf("unknown token backend: %s", opts.Token.Backend)
	}
}

func (r *Runtime) openSink(ctx context.Context, opts Options, codec adapter.Codec) (events.Sink, error) {
	logSink := events.NewLogSink()
	if opts.NATS.URL == "" {
		logger.WarnCtx(ctx, "NATS URL not configured, ledger events are only logged")
		return logSink, nil
	}

	publisher, err := events.NewPublisher(ctx, events.Config{
		URL:            opts.NATS.URL,
		StreamName:     opts.NATS.StreamName,
		MaxReconnects:  opts.NATS.MaxReconnects,
		ReconnectWait:  opts.NATS.ReconnectWait,
		ConnectionName: opts.NATS.ConnectionName,
		MaxAge:         opts.NATS.MaxAge,
	}, adapter.NewNatsJetStream(), codec)
	if err != nil {
		return nil, err
	}
	r.closers = append(r.closers, publisher.Close)
	logger.InfoCtx(ctx, "Connected to NATS JetStream",
		zap.String("url", opts.NATS.URL),
		zap.String("stream", opts.NATS.StreamName),
	)

	return events.NewMultiSink(logSink, publisher), nil
}
