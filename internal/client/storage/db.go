// Package storage opens the local client database and applies its embedded
// migrations. The database plays the role of the browser's durable storage:
// it holds the "trust this device" flag and the API cookies, never the
// access token.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/pharmsim/internal/client/migrations"
	"github.com/dmitrijs2005/pharmsim/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/pharmsim/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pharmsim/internal/common"
	"github.com/dmitrijs2005/pharmsim/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	DB       *sql.DB
	Metadata metadata.Repository
	Cookies  cookies.Repository
}

// Close releases the underlying database handle.
func (r *Repositories) Close() error {
	return r.DB.Close()
}

// ForgetDevice removes the stored cookies and the persist flag in one
// transaction, so a later start neither holds a refresh cookie nor attempts
// a silent restore.
func (r *Repositories) ForgetDevice(ctx context.Context) error {
	return dbx.WithTx(ctx, r.DB, func(ctx context.Context, tx dbx.DBTX) error {
		if err := cookies.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return metadata.NewSQLiteRepository(tx).Delete(ctx, common.PersistMetadataKey)
	})
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// InitDatabase opens the SQLite database at dsn, migrates it and returns the
// repositories bound to it.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases coherent and serialises writers
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repositories{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
		Cookies:  cookies.NewSQLiteRepository(db),
	}, nil
}
