package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lu-zhengda/mailsweep/internal/domain"
)

// ScanRecord summarizes one persisted scan run.
type ScanRecord struct {
	ID        string    `json:"id"`
	Scanned   int       `json:"scanned"`
	Senders   int       `json:"senders"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveScan records a completed scan and its ranked opportunity list in one
// transaction.
func (s *DB) SaveScan(ctx context.Context, runID string, scanned int, opps []domain.Opportunity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scans (id, scanned, senders) VALUES (?, ?, ?)`,
		runID, scanned, len(opps),
	); err != nil {
		return fmt.Errorf("failed to insert scan: %w", err)
	}

	for i, opp := range opps {
		subjects, err := json.Marshal(opp.Subjects)
		if err != nil {
			return fmt.Errorf("failed to marshal subjects: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO opportunities (scan_id, domain, count, from_name, link, subjects, rank)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, opp.Domain, opp.Count, opp.From, opp.Link, string(subjects), i,
		); err != nil {
			return fmt.Errorf("failed to insert opportunity %s: %w", opp.Domain, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scan: %w", err)
	}
	return nil
}

// ListScans returns the most recent scan runs, newest first.
func (s *DB) ListScans(ctx context.Context, limit int) ([]ScanRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scanned, senders, created_at FROM scans ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var r ScanRecord
		if err := rows.Scan(&r.ID, &r.Scanned, &r.Senders, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// LatestOpportunities returns the opportunity list of the most recent scan
// in its original rank order.
func (s *DB) LatestOpportunities(ctx context.Context) ([]domain.Opportunity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT o.domain, o.count, o.from_name, o.link, o.subjects
		 FROM opportunities o
		 JOIN scans s ON s.id = o.scan_id
		 WHERE s.id = (SELECT id FROM scans ORDER BY created_at DESC, rowid DESC LIMIT 1)
		 ORDER BY o.rank`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var (
			opp      domain.Opportunity
			subjects string
		)
		if err := rows.Scan(&opp.Domain, &opp.Count, &opp.From, &opp.Link, &subjects); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if subjects != "" {
			if err := json.Unmarshal([]byte(subjects), &opp.Subjects); err != nil {
				return nil, fmt.Errorf("failed to unmarshal subjects: %w", err)
			}
		}
		opps = append(opps, opp)
	}
	return opps, rows.Err()
}
