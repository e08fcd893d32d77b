// Package store reads pending rows from, and deletes relayed rows in, the
// relational data store.
//
// Every operation opens its own connection and releases it before returning;
// nothing is pooled or shared across calls. The data store is the sole system
// of record: a row's absence is the only signal that it was processed.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"relaybot/internal/config"
	"relaybot/pkg/logx"
)

const connectTimeout = 10 * time.Second

type Store struct {
	cfg config.StoreConfig
	log logx.Logger
}

func New(cfg config.StoreConfig, log logx.Logger) *Store {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Store{cfg: cfg, log: log}
}

// open establishes a fresh connection and verifies it with a ping.
// The caller owns the returned handle and must close it.
func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	dsn, err := buildDSN(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	db, err := sql.Open(s.cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	// One fetch or delete per connection; no pooling across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)

	pctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	s.log.Debug("database connection established")
	return db, nil
}

// FetchPending reads all rows currently in the source view, in whatever
// order the store provides. The connection is released before returning,
// including on query failure.
func (s *Store) FetchPending(ctx context.Context) ([]Record, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := fmt.Sprintf("SELECT id, message_text, recipient, created_at FROM %s", s.cfg.View)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			id        int64
			text      sql.NullString
			recipient sql.NullString
			createdAt sql.NullTime
		)
		if err := rows.Scan(&id, &text, &recipient, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrQuery, err)
		}
		records = append(records, Record{
			ID:        id,
			Text:      text.String,
			Recipient: recipient.String,
			CreatedAt: createdAt.Time,
			Complete:  text.Valid && recipient.Valid && createdAt.Valid,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}

	s.log.Debug("fetched pending rows", logx.Int("count", len(records)))
	return records, nil
}

// DeleteByIDs removes the given rows from the target table in a single bulk
// statement. An empty id list is a no-op and touches no connection.
func (s *Store) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	db, err := s.open(ctx)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)", s.cfg.Table, placeholders(s.cfg.Driver, len(ids)))
	res, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDelete, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		// Deletion happened; only the count is unknown.
		deleted = int64(len(ids))
	}
	s.log.Debug("deleted processed rows", logx.Int64("count", deleted))
	return deleted, nil
}
