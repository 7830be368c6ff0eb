// api/store/form_store.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"brightside/api/models"
)

// FormStore persists marketing form submissions in PostgreSQL. Submissions
// are immutable; the only mutable-looking concern is the duplicate window
// check, which is a read against recent rows, not an update.
type FormStore struct {
	db *sql.DB
}

func NewFormStore(db *sql.DB) *FormStore {
	return &FormStore{db: db}
}

// HasRecent reports whether the same email already submitted the same form
// type at or after the given instant. This is an anti-spam guard with
// rate-limit semantics, not a uniqueness constraint: the pair is accepted
// again once the window has passed.
func (s *FormStore) HasRecent(ctx context.Context, email, formType string, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM form_submissions
			WHERE email = $1 AND form_type = $2 AND created_at > $3
		);
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, email, formType, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for recent submission: %w", err)
	}
	return exists, nil
}

func (s *FormStore) Insert(ctx context.Context, sub models.FormSubmission) error {
	query := `
		INSERT INTO form_submissions (form_type, email, name, role, session_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	var metadata interface{}
	if len(sub.Metadata) > 0 {
		metadata = []byte(sub.Metadata)
	}
	_, err := s.db.ExecContext(ctx, query,
		sub.FormType,
		sub.Email,
		sub.Name,
		sub.Role,
		sub.SessionID,
		metadata,
		sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert form submission: %w", err)
	}
	return nil
}

// CountsByType returns submission counts grouped by form type within the
// lookback window.
func (s *FormStore) CountsByType(ctx context.Context, since time.Time) (map[string]int64, error) {
	query := `
		SELECT form_type, COUNT(*)
		FROM form_submissions
		WHERE created_at >= $1
		GROUP BY form_type;
	`
	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query submission counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var formType string
		var count int64
		if err := rows.Scan(&formType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan submission count row: %w", err)
		}
		counts[formType] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission count rows: %w", err)
	}

	return counts, nil
}

// Recent returns the newest submissions within the window, newest first.
func (s *FormStore) Recent(ctx context.Context, since time.Time, limit int) ([]models.SignupRecord, error) {
	query := `
		SELECT id, form_type, email, name, role, created_at
		FROM form_submissions
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2;
	`
	rows, err := s.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent submissions: %w", err)
	}
	defer rows.Close()

	return scanSignupRecords(rows)
}

// ListForExport returns every submission for the CSV export, newest first.
// formType "all" means no filter.
func (s *FormStore) ListForExport(ctx context.Context, formType string) ([]models.SignupRecord, error) {
	var rows *sql.Rows
	var err error

	if formType == "all" {
		query := `
			SELECT id, form_type, email, name, role, created_at
			FROM form_submissions
			ORDER BY created_at DESC;
		`
		rows, err = s.db.QueryContext(ctx, query)
	} else {
		query := `
			SELECT id, form_type, email, name, role, created_at
			FROM form_submissions
			WHERE form_type = $1
			ORDER BY created_at DESC;
		`
		rows, err = s.db.QueryContext(ctx, query, formType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions for export: %w", err)
	}
	defer rows.Close()

	return scanSignupRecords(rows)
}

func scanSignupRecords(rows *sql.Rows) ([]models.SignupRecord, error) {
	var records []models.SignupRecord
	for rows.Next() {
		var rec models.SignupRecord
		var name, role sql.NullString
		if err := rows.Scan(&rec.ID, &rec.FormType, &rec.Email, &name, &role, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		if name.Valid {
			rec.Name = &name.String
		}
		if role.Valid {
			rec.Role = &role.String
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission rows: %w", err)
	}

	return records, nil
}
