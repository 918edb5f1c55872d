package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auction-bidding-go/internal/models"
	"auction-bidding-go/internal/store"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy store.Store.
var _ store.Store = (*Service)(nil)

// Postgres error codes the backend reacts to.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeSerializationFailed = "40001"
	codeDeadlockDetected    = "40P01"
	codeLockNotAvailable    = "55P03"
)

// Service implements store.Store on PostgreSQL. Writes that touch an
// auction lock its row with SELECT ... FOR UPDATE before the versioned update.
type Service struct {
	db          *sql.DB
	lockTimeout time.Duration
}

// NewService connects to PostgreSQL and creates the schema if needed.
func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("postgres backend requires DATABASE_URL")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Connecting to PostgreSQL")
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	lockTimeout := cfg.BusyTimeout
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}

	service := &Service{db: db, lockTimeout: lockTimeout}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	zap.L().Info("PostgreSQL service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// beginLocked opens a transaction with a bounded lock wait and locks the
// auction row. A missing row returns store.ErrNotFound.
func (s *Service) beginLocked(ctx context.Context, auctionId string) (*sql.Tx, int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", mapError(err))
	}
	if _, err := tx.ExecContext(ctx, lockTimeoutStatement(s.lockTimeout)); err != nil {
		_ = tx.Rollback()
		return nil, 0, fmt.Errorf("failed to set lock timeout: %w", mapError(err))
	}

	var version int64
	err = tx.QueryRowContext(ctx, queryLockAuction, auctionId).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		_ = tx.Rollback()
		return nil, 0, fmt.Errorf("auction %s: %w", auctionId, store.ErrNotFound)
	}
	if err != nil {
		_ = tx.Rollback()
		return nil, 0, fmt.Errorf("failed to lock auction: %w", mapError(err))
	}
	return tx, version, nil
}

func lockTimeoutStatement(d time.Duration) string {
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", d.Milliseconds())
}

// mapError translates PostgreSQL failures into store sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case codeLockNotAvailable:
		return fmt.Errorf("%w: %v", store.ErrBusy, err)
	case codeSerializationFailed, codeDeadlockDetected:
		return fmt.Errorf("%w: %v", store.ErrConcurrentModification, err)
	case codeUniqueViolation:
		switch pqErr.Constraint {
		case "idx_auctions_open_product":
			return fmt.Errorf("%w: %v", store.ErrProductHasOpenAuction, err)
		case "idx_bids_winning":
			return fmt.Errorf("%w: %v", store.ErrConcurrentModification, err)
		}
	case codeForeignKeyViolation:
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}
	return err
}

func checkVersioned(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s update failed - %w", what, store.ErrConcurrentModification)
	}
	return nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		zap.L().Warn("Failed to close rows", zap.Error(err))
	}
}
