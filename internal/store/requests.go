package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"token-finder/internal/types"
)

// ErrNotFound is returned by Get when no record exists for a wallet address.
var ErrNotFound = errors.New("store: analyze request not found")

// RequestStore persists one AnalyzeRequest per wallet address. A later upsert
// for the same address replaces the earlier record wholesale; no history is
// kept.
type RequestStore struct {
	db *sql.DB
}

// OpenRequestStore opens (and if needed creates) the SQLite database at dbPath.
func OpenRequestStore(dbPath string) (*RequestStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// A single writer connection keeps concurrent upserts for the same
	// address serialized; readers never observe a partial row.
	db.SetMaxOpenConns(1)

	s := &RequestStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *RequestStore) Close() error {
	return s.db.Close()
}

func (s *RequestStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analyze_requests (
		wallet_address TEXT PRIMARY KEY,
		count INTEGER,
		text TEXT,
		engagement TEXT,
		prompt TEXT
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Upsert inserts the record or replaces the existing one for its address.
func (s *RequestStore) Upsert(ctx context.Context, r types.AnalyzeRequest) error {
	if r.WalletAddress == "" {
		return errors.New("store: wallet address must not be empty")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analyze_requests (wallet_address, count, text, engagement, prompt)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(wallet_address) DO UPDATE SET
			count = excluded.count,
			text = excluded.text,
			engagement = excluded.engagement,
			prompt = excluded.prompt
	`, r.WalletAddress, r.Count, r.Text, string(r.Engagement), r.Prompt)
	if err != nil {
		return fmt.Errorf("store: upsert analyze request: %w", err)
	}
	return nil
}

// Get returns the stored record for walletAddress, or ErrNotFound.
func (s *RequestStore) Get(ctx context.Context, walletAddress string) (types.AnalyzeRequest, error) {
	var r types.AnalyzeRequest
	var engagement string

	err := s.db.QueryRowContext(ctx, `
		SELECT wallet_address, count, text, engagement, prompt
		FROM analyze_requests
		WHERE wallet_address = ?
	`, walletAddress).Scan(&r.WalletAddress, &r.Count, &r.Text, &engagement, &r.Prompt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.AnalyzeRequest{}, ErrNotFound
	}
	if err != nil {
		return types.AnalyzeRequest{}, fmt.Errorf("store: get analyze request: %w", err)
	}

	r.Engagement = types.ParseEngagementFilter(engagement)
	return r, nil
}

// Delete removes the record for walletAddress. Deleting a missing record is
// not an error.
func (s *RequestStore) Delete(ctx context.Context, walletAddress string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM analyze_requests WHERE wallet_address = ?`, walletAddress)
	if err != nil {
		return fmt.Errorf("store: delete analyze request: %w", err)
	}
	return nil
}

// All returns every stored analyze request.
func (s *RequestStore) All(ctx context.Context) ([]types.AnalyzeRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT wallet_address, count, text, engagement, prompt
		FROM analyze_requests
		ORDER BY wallet_address
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list analyze requests: %w", err)
	}
	defer rows.Close()

	var out []types.AnalyzeRequest
	for rows.Next() {
		var r types.AnalyzeRequest
		var engagement string
		if err := rows.Scan(&r.WalletAddress, &r.Count, &r.Text, &engagement, &r.Prompt); err != nil {
			return nil, err
		}
		r.Engagement = types.ParseEngagementFilter(engagement)
		out = append(out, r)
	}
	return out, rows.Err()
}
