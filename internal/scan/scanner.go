// Package scan turns a mailbox into a ranked list of unsubscribe
// opportunities. A scan runs in the background and publishes its progress
// through a mutex-guarded snapshot that the HTTP layer polls.
package scan

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/lu-zhengda/mailsweep/internal/domain"
	"github.com/lu-zhengda/mailsweep/internal/headers"
	"github.com/lu-zhengda/mailsweep/internal/provider"
	"go.uber.org/zap"
)

// metadataHeaderNames are the only headers a scan asks the provider for.
var metadataHeaderNames = []string{"From", "Subject", "List-Unsubscribe"}

// maxSubjectSamples caps how many example subjects each sender keeps.
const maxSubjectSamples = 3

// maxSubjectLen is the display length subjects are truncated to.
const maxSubjectLen = 60

// HistoryStore records completed scans. Persistence failures never fail
// the scan itself.
type HistoryStore interface {
	SaveScan(ctx context.Context, runID string, scanned int, opps []domain.Opportunity) error
}

// Scanner owns at most one in-flight scan at a time. Starting a new scan
// supersedes the previous one: a superseded run keeps executing until it
// notices, but none of its writes land.
type Scanner struct {
	fetcher provider.MetadataFetcher
	query   string
	history HistoryStore
	log     *zap.Logger

	mu      sync.Mutex
	gen     int
	status  domain.ScanState
	results []domain.Opportunity
}

// New creates a Scanner that lists messages with query. history may be nil.
func New(fetcher provider.MetadataFetcher, query string, history HistoryStore, log *zap.Logger) *Scanner {
	return &Scanner{
		fetcher: fetcher,
		query:   query,
		history: history,
		log:     log,
	}
}

// Start launches a background scan over at most limit messages. Results
// from any previous run stay visible until the new run completes.
func (s *Scanner) Start(ctx context.Context, limit int) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.status = domain.ScanState{Progress: 5, Message: "Connecting to Gmail API..."}
	s.mu.Unlock()

	go s.run(ctx, gen, limit)
}

// Status returns a snapshot of the current scan state.
func (s *Scanner) Status() domain.ScanState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Results returns a copy of the most recently completed scan's opportunities.
func (s *Scanner) Results() []domain.Opportunity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Opportunity, len(s.results))
	copy(out, s.results)
	return out
}

// Reset discards all results and returns the scanner to its idle state.
// Any in-flight run is superseded.
func (s *Scanner) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.status = domain.ScanState{}
	s.results = nil
}

// bucket accumulates one sender domain during a run.
type bucket struct {
	from     string
	link     string
	count    int
	subjects []string
	order    int
}

func (s *Scanner) run(ctx context.Context, gen, limit int) {
	ids, err := s.fetcher.ListMessageIDs(ctx, s.query, limit)
	if err != nil {
		s.fail(gen, fmt.Errorf("failed to list messages: %w", err))
		return
	}

	if len(ids) == 0 {
		s.complete(ctx, gen, 0, nil, "No emails found")
		return
	}

	if !s.publish(gen, 15, fmt.Sprintf("Found %d emails...", len(ids))) {
		return
	}

	buckets := make(map[string]*bucket)
	total := len(ids)
	processed := 0

	for start := 0; start < total; start += provider.MaxBatchSize {
		end := start + provider.MaxBatchSize
		if end > total {
			end = total
		}

		msgs, err := s.fetcher.FetchHeaders(ctx, ids[start:end], metadataHeaderNames)
		if err != nil {
			s.fail(gen, fmt.Errorf("failed to fetch headers: %w", err))
			return
		}

		for _, msg := range msgs {
			if msg.Err != nil {
				s.log.Warn("skipping message", zap.String("id", msg.ID), zap.Error(msg.Err))
				continue
			}
			s.accumulate(buckets, msg.Headers)
		}

		processed += end - start
		progress := 15 + 80*processed/total
		if !s.publish(gen, progress, fmt.Sprintf("Fetched %d/%d emails", processed, total)) {
			return
		}
	}

	opps := rank(buckets)
	s.complete(ctx, gen, total, opps, fmt.Sprintf("Done! Found %d senders", len(opps)))
}

// accumulate folds one message's headers into the per-domain buckets.
// Messages without an HTTP(S) unsubscribe link are discarded; mailto-only
// affordances cannot be exercised automatically and do not count.
func (s *Scanner) accumulate(buckets map[string]*bucket, hs []domain.Header) {
	aff := headers.Affordance(hs)
	if !aff.Actionable() {
		return
	}

	fromValue, _ := headers.Value(hs, "From")
	dom := headers.SenderDomain(fromValue)

	b, ok := buckets[dom]
	if !ok {
		b = &bucket{link: aff.Link, order: len(buckets)}
		buckets[dom] = b
	} else if aff.Link < b.link {
		// Lexicographically smallest link keeps output reproducible.
		b.link = aff.Link
	}

	name, email := headers.Sender(hs)
	if name == "Unknown" {
		name = email
	}
	b.from = name

	b.count++
	// The first samples are kept verbatim, duplicates included.
	if len(b.subjects) < maxSubjectSamples {
		b.subjects = append(b.subjects, headers.Truncate(headers.Subject(hs), maxSubjectLen))
	}
}

// rank converts buckets into an opportunity list ordered by message count
// descending, breaking ties by first appearance in the mailbox.
func rank(buckets map[string]*bucket) []domain.Opportunity {
	ordered := make([]*bucket, 0, len(buckets))
	domains := make(map[*bucket]string, len(buckets))
	for dom, b := range buckets {
		ordered = append(ordered, b)
		domains[b] = dom
	}

	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].order < ordered[j].order
	})
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].count > ordered[j].count
	})

	opps := make([]domain.Opportunity, 0, len(ordered))
	for _, b := range ordered {
		opps = append(opps, domain.Opportunity{
			Domain:   domains[b],
			Count:    b.count,
			From:     b.from,
			Link:     b.link,
			Subjects: b.subjects,
		})
	}
	return opps
}

// publish updates the status for a live run. It reports false when the run
// has been superseded, which tells the run to stop.
func (s *Scanner) publish(gen, progress int, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.status = domain.ScanState{Progress: progress, Message: message}
	return true
}

// fail marks a live run as failed. The previous results are left intact.
func (s *Scanner) fail(gen int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.log.Error("scan failed", zap.Error(err))
	s.status = domain.ScanState{Progress: s.status.Progress, Message: "Scan failed", Done: true, Error: err.Error()}
}

// complete publishes the finished opportunity list and final status in one
// step, then records the run in history.
func (s *Scanner) complete(ctx context.Context, gen, scanned int, opps []domain.Opportunity, message string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.results = opps
	s.status = domain.ScanState{Progress: 100, Message: message, Done: true}
	s.mu.Unlock()

	s.log.Info("scan complete", zap.Int("scanned", scanned), zap.Int("senders", len(opps)))

	if s.history == nil {
		return
	}
	runID := uuid.NewString()
	if err := s.history.SaveScan(ctx, runID, scanned, opps); err != nil {
		s.log.Warn("failed to record scan history", zap.String("run_id", runID), zap.Error(err))
	}
}
