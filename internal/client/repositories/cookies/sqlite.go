package cookies

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/pharmsim/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, c Cookie) error {
	var expires int64
	if !c.Expires.IsZero() {
		expires = c.Expires.UTC().Unix()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cookies (host, name, value, path, domain, expires, secure, http_only)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(host, name) DO UPDATE SET
			value = excluded.value,
			path = excluded.path,
			domain = excluded.domain,
			expires = excluded.expires,
			secure = excluded.secure,
			http_only = excluded.http_only
	`, c.Host, c.Name, c.Value, c.Path, c.Domain, expires, c.Secure, c.HTTPOnly)
	if err != nil {
		return fmt.Errorf("failed to store cookie %s[%s]: %w", c.Host, c.Name, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, host, name string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cookies WHERE host = ? AND name = ?`, host, name); err != nil {
		return fmt.Errorf("failed to delete cookie %s[%s]: %w", host, name, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Cookie, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT host, name, value, path, domain, expires, secure, http_only
		FROM cookies ORDER BY host, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cookies: %w", err)
	}
	defer rows.Close()

	var result []Cookie
	for rows.Next() {
		var (
			c       Cookie
			expires sql.NullInt64
		)
		if err := rows.Scan(&c.Host, &c.Name, &c.Value, &c.Path, &c.Domain, &expires, &c.Secure, &c.HTTPOnly); err != nil {
			return nil, fmt.Errorf("failed to scan cookie row: %w", err)
		}
		if expires.Valid && expires.Int64 > 0 {
			c.Expires = time.Unix(expires.Int64, 0).UTC()
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cookie rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cookies`); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}
