// Package shares stores diagrams that can be opened read-only by share ID.
package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/usediagram/internal/db"
	"github.com/ziadkadry99/usediagram/internal/render"
)

// Store provides access to shared diagrams.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// NewShareID returns a short random identifier.
func NewShareID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Create stores a share. If s.ShareID is empty one is generated.
func (s *Store) Create(ctx context.Context, sh Share) (*Share, error) {
	if !render.ValidKind(sh.Kind) {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalid, sh.Kind)
	}
	if strings.TrimSpace(sh.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalid)
	}
	if len(sh.Content) > MaxContentSize {
		return nil, fmt.Errorf("%w: content exceeds %d bytes", ErrInvalid, MaxContentSize)
	}
	if sh.ShareID == "" {
		sh.ShareID = NewShareID()
	}
	sh.CreatedAt = time.Now().UTC().Truncate(time.Second)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shares (share_id, kind, content, created_at) VALUES (?, ?, ?, ?)`,
		sh.ShareID, sh.Kind, sh.Content, sh.CreatedAt.Format(time.DateTime),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting share: %w", err)
	}
	return &sh, nil
}

// Get returns the share with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, shareID string) (*Share, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT share_id, kind, content, created_at FROM shares WHERE share_id = ?`, shareID)

	var (
		sh Share
		ts string
	)
	if err := row.Scan(&sh.ShareID, &sh.Kind, &sh.Content, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying share: %w", err)
	}
	sh.CreatedAt = parseTimestamp(ts)
	return &sh, nil
}

// Recent returns the newest shares, at most limit of them.
func (s *Store) Recent(ctx context.Context, limit int) ([]Share, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT share_id, kind, content, created_at FROM shares ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying shares: %w", err)
	}
	defer rows.Close()

	var out []Share
	for rows.Next() {
		var (
			sh Share
			ts string
		)
		if err := rows.Scan(&sh.ShareID, &sh.Kind, &sh.Content, &ts); err != nil {
			return nil, err
		}
		sh.CreatedAt = parseTimestamp(ts)
		out = append(out, sh)
	}
	return out, rows.Err()
}

// parseTimestamp accepts both the stored DATETIME text and the RFC 3339 form
// the driver produces when it decodes the column as a time.
func parseTimestamp(ts string) time.Time {
	if t, err := time.Parse(time.DateTime, ts); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return t.UTC()
	}
	return time.Time{}
}
