package gmail

import (
	"context"
	"fmt"

	"github.com/lu-zhengda/mailsweep/internal/domain"
	"github.com/lu-zhengda/mailsweep/internal/provider"
	"github.com/lu-zhengda/mailsweep/internal/store"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const userID = "me"

// fetchConcurrency bounds the parallel per-message fetches inside one
// batch, to stay clear of Gmail API rate limits.
const fetchConcurrency = 10

// Client implements the provider.MetadataFetcher interface for Gmail.
type Client struct {
	tokenStore *store.KeyringTokenStore
	accountID  string
	service    *gmailapi.Service
}

// New creates a new Gmail client for the given account.
func New(accountID string, tokenStore *store.KeyringTokenStore) *Client {
	return &Client{
		accountID:  accountID,
		tokenStore: tokenStore,
	}
}

// Authenticate runs the OAuth2 flow, saves the token, and initializes the
// Gmail service.
func (c *Client) Authenticate(ctx context.Context) error {
	token, err := authenticate(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate gmail: %w", err)
	}

	if err := c.tokenStore.SaveToken(c.accountID, token); err != nil {
		return fmt.Errorf("failed to save gmail token: %w", err)
	}

	srv, err := gmailapi.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return fmt.Errorf("failed to create gmail service: %w", err)
	}
	c.service = srv
	return nil
}

// IsAuthenticated reports whether a saved token exists for the account.
func (c *Client) IsAuthenticated() bool {
	if c.service != nil {
		return true
	}
	_, err := c.tokenStore.LoadToken(c.accountID)
	return err == nil
}

// initService loads the token from the keyring and creates the Gmail service.
func (c *Client) initService(ctx context.Context) error {
	token, err := c.tokenStore.LoadToken(c.accountID)
	if err != nil {
		return fmt.Errorf("failed to load gmail token: %w", err)
	}

	srv, err := gmailapi.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return fmt.Errorf("failed to create gmail service: %w", err)
	}
	c.service = srv
	return nil
}

// ensureService lazily initializes the Gmail service if not already done.
func (c *Client) ensureService(ctx context.Context) error {
	if c.service != nil {
		return nil
	}
	return c.initService(ctx)
}

// ListMessageIDs returns up to max message ids matching query, following
// result pages as needed. Gmail caps a single page well below the limits
// users pick for a scan.
func (c *Client) ListMessageIDs(ctx context.Context, query string, max int) ([]string, error) {
	if err := c.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	var (
		ids       []string
		pageToken string
	)
	for len(ids) < max {
		call := c.service.Users.Messages.List(userID).
			MaxResults(int64(max - len(ids)))
		if query != "" {
			call = call.Q(query)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list gmail messages: %w", err)
		}

		for _, m := range resp.Messages {
			ids = append(ids, m.Id)
			if len(ids) == max {
				break
			}
		}

		if resp.NextPageToken == "" || len(resp.Messages) == 0 {
			break
		}
		pageToken = resp.NextPageToken
	}

	return ids, nil
}

// FetchHeaders fetches the named headers for up to provider.MaxBatchSize
// messages in one logical batch, fanning out across the batch with bounded
// concurrency. The result preserves the order of ids; a failed individual
// fetch is reported in that entry's Err.
func (c *Client) FetchHeaders(ctx context.Context, ids []string, headerNames []string) ([]provider.MessageHeaders, error) {
	if len(ids) > provider.MaxBatchSize {
		return nil, fmt.Errorf("batch of %d ids exceeds provider maximum of %d", len(ids), provider.MaxBatchSize)
	}
	if err := c.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	type result struct {
		index int
		msg   provider.MessageHeaders
	}

	results := make(chan result, len(ids))
	sem := make(chan struct{}, fetchConcurrency)

	for i, id := range ids {
		go func(idx int, id string) {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results <- result{idx, provider.MessageHeaders{ID: id, Err: ctx.Err()}}
				return
			}

			msg, err := c.service.Users.Messages.Get(userID, id).
				Format("metadata").
				MetadataHeaders(headerNames...).
				Context(ctx).Do()
			if err != nil {
				results <- result{idx, provider.MessageHeaders{ID: id, Err: err}}
				return
			}
			results <- result{idx, provider.MessageHeaders{ID: id, Headers: mapHeaders(msg)}}
		}(i, id)
	}

	out := make([]provider.MessageHeaders, len(ids))
	for range ids {
		r := <-results
		out[r.index] = r.msg
	}
	return out, nil
}

// mapHeaders converts a Gmail API message's header list to domain Headers.
func mapHeaders(msg *gmailapi.Message) []domain.Header {
	if msg.Payload == nil {
		return nil
	}
	hs := make([]domain.Header, 0, len(msg.Payload.Headers))
	for _, h := range msg.Payload.Headers {
		hs = append(hs, domain.Header{Name: h.Name, Value: h.Value})
	}
	return hs
}

// Profile returns the authenticated user's email address.
func (c *Client) Profile(ctx context.Context) (string, error) {
	if err := c.ensureService(ctx); err != nil {
		return "", fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	profile, err := c.service.Users.GetProfile(userID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get gmail profile: %w", err)
	}
	return profile.EmailAddress, nil
}

// SignOut removes the saved token and drops the live service.
func (c *Client) SignOut() error {
	if err := c.tokenStore.DeleteToken(c.accountID); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	c.service = nil
	return nil
}

// Compile-time interface compliance check.
var _ provider.MetadataFetcher = (*Client)(nil)
