package provider

import (
	"context"

	"github.com/lu-zhengda/mailsweep/internal/domain"
)

// MaxBatchSize is the provider-side ceiling on how many message ids one
// FetchHeaders call may carry. Exceeding it is a caller error, not
// something the provider silently splits.
const MaxBatchSize = 100

// MessageHeaders is the metadata fetched for a single message. Err is set
// when the provider failed for this message only; callers skip such
// entries without aborting the batch.
type MessageHeaders struct {
	ID      string
	Headers []domain.Header
	Err     error
}

// MetadataFetcher is the mail-provider capability the scan pipeline
// depends on.
type MetadataFetcher interface {
	// ListMessageIDs returns up to max message ids matching query, newest
	// first.
	ListMessageIDs(ctx context.Context, query string, max int) ([]string, error)

	// FetchHeaders fetches the named headers for up to MaxBatchSize ids.
	// The result preserves the order of ids; per-message failures are
	// reported in MessageHeaders.Err.
	FetchHeaders(ctx context.Context, ids []string, headerNames []string) ([]MessageHeaders, error)
}
