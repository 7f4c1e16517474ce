package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tireserve/platform/internal/config"

	_ "github.com/lib/pq"
)

type Repository struct {
	DB *sql.DB
}

func New(cfg *config.Config) (*Repository, error) {
	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := initSchema(db); err != nil {
		return nil, err
	}

	return &Repository{DB: db}, nil
}

func (p *Repository) Close() error {
	return p.DB.Close()
}

// WithinTx runs fn inside a single database transaction. Any error from fn
// rolls the whole transaction back, so a failing step leaves no partial
// state behind.
func (p *Repository) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
