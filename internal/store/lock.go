package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/feral-file/ff-crowdfund/internal/logger"
)

// Locker serializes ledger calls. A call holds the lock from its first read
// until its writes are committed.
//
//go:generate mockgen -source=lock.go -destination=../mocks/lock.go -package=mocks -mock_names=Locker=MockLocker
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

type localLocker struct {
	sem chan struct{}
}

// NewLocalLocker creates a Locker for a single ledger process
func NewLocalLocker() Locker {
	return &localLocker{sem: make(chan struct{}, 1)}
}

func (l *localLocker) Lock(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type pgLocker struct {
	db  *gorm.DB
	key int64
}

// NewPGLocker creates a Locker backed by a PostgreSQL session advisory lock,
// shared by every process writing the same database
func NewPGLocker(db *gorm.DB, key int64) Locker {
	return &pgLocker{db: db, key: key}
}

func (l *pgLocker) Lock(ctx context.Context) (func(), error) {
	sqlDB, err := l.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Session locks belong to a connection, so the call pins one
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", l.key); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to acquire advisory lock: %w", err)
	}

	return func() {
		if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", l.key); err != nil {
			logger.Error(err, zap.String("message", "Failed to release advisory lock"))
		}
		_ = conn.Close()
	}, nil
}
