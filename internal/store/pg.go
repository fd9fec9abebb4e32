package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-crowdfund/internal/adapter"
	"github.com/feral-file/ff-crowdfund/internal/store/schema"
)

type pgStore struct {
	db    *gorm.DB
	clock adapter.Clock
}

// NewPGStore creates a PostgreSQL-backed ledger store.
// Expiry is evaluated against clock, not the database clock.
func NewPGStore(db *gorm.DB, clock adapter.Clock) Store {
	return &pgStore{db: db, clock: clock}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// If any of the pool settings are 0, the defaults of NormalizeConnectionPoolSettings apply.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 10
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 10
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

func (s *pgStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry schema.LedgerEntry
	err := s.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, s.clock.Now()).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return []byte(entry.Value), true, nil
}

func (s *pgStore) Has(ctx context.Context, key string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.LedgerEntry{}).
		Where("key = ? AND expires_at > ?", key, s.clock.Now()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check ledger entry: %w", err)
	}

	return count > 0, nil
}

func (s *pgStore) Set(ctx context.Context, key string, value []byte, extendTo time.Duration) error {
	return s.Apply(ctx, []Write{{Key: key, Value: value, Threshold: extendTo, ExtendTo: extendTo}})
}

func (s *pgStore) Extend(ctx context.Context, key string, threshold, extendTo time.Duration) error {
	return s.Apply(ctx, []Write{{Key: key, Threshold: threshold, ExtendTo: extendTo}})
}

func (s *pgStore) Apply(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}

	now := s.clock.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, w := range writes {
			var current schema.LedgerEntry
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("key = ?", w.Key).
				First(&current).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to lock ledger entry %s: %w", w.Key, err)
			}
			exists := err == nil && current.ExpiresAt.After(now)
			expiresAt := nextExpiry(now, current.ExpiresAt, exists, w.Threshold, w.ExtendTo)

			if w.Value == nil {
				if !exists {
					continue
				}
				if err := tx.Model(&schema.LedgerEntry{}).
					Where("key = ?", w.Key).
					Update("expires_at", expiresAt).Error; err != nil {
					return fmt.Errorf("failed to extend ledger entry %s: %w", w.Key, err)
				}
				continue
			}

			entry := schema.LedgerEntry{
				Key:       w.Key,
				Value:     datatypes.JSON(w.Value),
				ExpiresAt: expiresAt,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
			}).Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to upsert ledger entry %s: %w", w.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply ledger writes: %w", err)
	}

	return nil
}

// Claim inserts key, or takes over an expired row holding it.
// A live row leaves the upsert without effect.
func (s *pgStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := s.clock.Now()
	entry := schema.LedgerEntry{
		Key:       key,
		Value:     datatypes.JSON(claimValue),
		ExpiresAt: now.Add(ttl),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Lte{Column: clause.Column{Table: entry.TableName(), Name: "expires_at"}, Value: now},
		}},
	}).Create(&entry)
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim ledger entry %s: %w", key, result.Error)
	}

	return result.RowsAffected == 1, nil
}

func (s *pgStore) PurgeExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.clock.Now()).
		Delete(&schema.LedgerEntry{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge expired ledger entries: %w", result.Error)
	}

	return result.RowsAffected, nil
}
