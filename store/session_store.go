// api/store/session_store.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SessionStore maintains the one mutable row per client-generated session
// identifier. All writes are single atomic statements so concurrent
// requests for the same session cannot lose updates.
type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// RecordPageView upserts the session row for a page view. A fresh session
// starts at page_count=1 with is_bounce=true; an existing one gets its
// counter incremented server-side and is_bounce dropped to false, where it
// stays for the life of the session (ever-bounced semantics). GREATEST
// keeps last_seen_at monotonic even when requests arrive out of order.
func (s *SessionStore) RecordPageView(ctx context.Context, sessionID string, now time.Time) error {
	query := `
		INSERT INTO sessions (session_id, first_seen_at, last_seen_at, page_count, is_bounce)
		VALUES ($1, $2, $2, 1, TRUE)
		ON CONFLICT (session_id) DO UPDATE
		SET page_count = sessions.page_count + 1,
		    last_seen_at = GREATEST(sessions.last_seen_at, EXCLUDED.last_seen_at),
		    is_bounce = FALSE;
	`
	if _, err := s.db.ExecContext(ctx, query, sessionID, now); err != nil {
		return fmt.Errorf("failed to upsert session %q: %w", sessionID, err)
	}
	return nil
}

// Touch bumps last_seen_at for a custom event. A custom event can legally
// arrive before the session's first page view; updating zero rows is fine
// and no session is created from an event alone.
func (s *SessionStore) Touch(ctx context.Context, sessionID string, now time.Time) error {
	query := `
		UPDATE sessions
		SET last_seen_at = GREATEST(last_seen_at, $2)
		WHERE session_id = $1;
	`
	if _, err := s.db.ExecContext(ctx, query, sessionID, now); err != nil {
		return fmt.Errorf("failed to touch session %q: %w", sessionID, err)
	}
	return nil
}

// LiveCount returns how many distinct sessions were last seen at or after
// the given instant.
func (s *SessionStore) LiveCount(ctx context.Context, since time.Time) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT session_id)
		FROM sessions
		WHERE last_seen_at >= $1;
	`
	var count int64
	if err := s.db.QueryRowContext(ctx, query, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count live sessions: %w", err)
	}
	return count, nil
}

// BounceStats returns the bounce count and total session count for
// sessions first seen at or after the given instant.
func (s *SessionStore) BounceStats(ctx context.Context, since time.Time) (bounces, total int64, err error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE is_bounce), COUNT(*)
		FROM sessions
		WHERE first_seen_at >= $1;
	`
	if err := s.db.QueryRowContext(ctx, query, since).Scan(&bounces, &total); err != nil {
		return 0, 0, fmt.Errorf("failed to query bounce stats: %w", err)
	}
	return bounces, total, nil
}
