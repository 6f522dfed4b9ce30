package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/lu-zhengda/mailsweep/internal/domain"
)

// Attempt is one persisted unsubscribe attempt.
type Attempt struct {
	ID             int64                 `json:"id"`
	Domain         string                `json:"domain"`
	Link           string                `json:"link"`
	Success        bool                  `json:"success"`
	Classification domain.Classification `json:"classification"`
	Message        string                `json:"message"`
	CreatedAt      time.Time             `json:"created_at"`
}

// RecordAttempt persists the outcome of one unsubscribe attempt.
func (s *DB) RecordAttempt(ctx context.Context, res domain.UnsubscribeResult, link string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (domain, link, success, classification, message)
		 VALUES (?, ?, ?, ?, ?)`,
		res.Domain, link, res.Success, string(res.Classification), res.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// ListAttempts returns the most recent unsubscribe attempts, newest first.
func (s *DB) ListAttempts(ctx context.Context, limit int) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, domain, link, success, classification, message, created_at
		 FROM attempts ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.Domain, &a.Link, &a.Success, &a.Classification, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
