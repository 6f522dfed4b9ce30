// Package unsub performs unsubscribe attempts against the links a scan
// discovered. An attempt never returns an error: every outcome, including
// transport failures and rejected links, is folded into the result.
package unsub

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lu-zhengda/mailsweep/internal/domain"
	"go.uber.org/zap"
)

// requestTimeout bounds a single unsubscribe request end to end.
const requestTimeout = 10 * time.Second

// maxErrorLen caps how much of a transport error is surfaced to the user.
const maxErrorLen = 100

// DefaultUserAgent is sent when no user agent is configured. Some list
// endpoints refuse requests without a browser-looking agent.
const DefaultUserAgent = "Mozilla/5.0 (compatible; mailsweep/1.0)"

// oneClickBody is the form body RFC 8058 requires on the POST attempt.
const oneClickBody = "List-Unsubscribe=One-Click"

// Doer issues HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Validator is the safety gate every link passes before any request.
type Validator interface {
	Validate(ctx context.Context, raw string) (string, error)
}

// Executor attempts unsubscribes: a one-click POST first, then a plain GET
// when the endpoint rejects the POST.
type Executor struct {
	client    Doer
	validator Validator
	userAgent string
	log       *zap.Logger
}

// New creates an Executor with a client that never follows redirects, so
// that 301/302 answers can be classified rather than chased cross-origin.
// A non-positive timeout falls back to the 10 second default.
func New(validator Validator, userAgent string, timeout time.Duration, log *zap.Logger) *Executor {
	if timeout <= 0 {
		timeout = requestTimeout
	}
	client := &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return NewWithClient(client, validator, userAgent, log)
}

// NewWithClient is New with a caller-supplied HTTP client.
func NewWithClient(client Doer, validator Validator, userAgent string, log *zap.Logger) *Executor {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Executor{
		client:    client,
		validator: validator,
		userAgent: userAgent,
		log:       log,
	}
}

// Execute attempts to unsubscribe senderDomain via link. Links that are
// empty, mailto, or rejected by validation produce a result without any
// network traffic.
func (e *Executor) Execute(ctx context.Context, senderDomain, link string) domain.UnsubscribeResult {
	if link == "" {
		return e.result(senderDomain, domain.UnsubscribeResult{
			Classification: domain.ClassNoLink,
			Message:        "No unsubscribe link provided",
		})
	}

	if strings.HasPrefix(link, "mailto:") {
		return e.result(senderDomain, domain.UnsubscribeResult{
			Classification: domain.ClassMailto,
			Message:        "Unsubscribe requires sending an email manually",
		})
	}

	safe, err := e.validator.Validate(ctx, link)
	if err != nil {
		return e.result(senderDomain, domain.UnsubscribeResult{
			Classification: domain.ClassSecurityRejected,
			Message:        err.Error(),
		})
	}

	if res, ok := e.post(ctx, safe); ok {
		return e.result(senderDomain, res)
	}
	return e.result(senderDomain, e.get(ctx, safe))
}

// post issues the RFC 8058 one-click POST. ok is false when the outcome
// calls for the GET fallback.
func (e *Executor) post(ctx context.Context, link string) (domain.UnsubscribeResult, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, link, strings.NewReader(oneClickBody))
	if err != nil {
		return domain.UnsubscribeResult{}, false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.UnsubscribeResult{}, false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return domain.UnsubscribeResult{
			Success:        true,
			Classification: domain.ClassDone,
			Message:        "Unsubscribed successfully",
		}, true
	}
	return domain.UnsubscribeResult{}, false
}

// get issues the plain GET fallback and classifies the final outcome.
func (e *Executor) get(ctx context.Context, link string) domain.UnsubscribeResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return domain.UnsubscribeResult{
			Classification: domain.ClassNetworkError,
			Message:        "Failed to unsubscribe: " + truncateError(err),
		}
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return domain.UnsubscribeResult{
			Classification: domain.ClassNetworkError,
			Message:        "Failed to unsubscribe: " + truncateError(err),
		}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent:
		return domain.UnsubscribeResult{
			Success:        true,
			Classification: domain.ClassDone,
			Message:        "Unsubscribed (confirmation may be needed)",
		}
	case http.StatusMovedPermanently, http.StatusFound:
		return domain.UnsubscribeResult{
			Success:        true,
			Classification: domain.ClassRedirected,
			Message:        "Redirected to a confirmation page",
		}
	}
	return domain.UnsubscribeResult{
		Classification: domain.ClassHTTPError,
		Message:        fmt.Sprintf("Server returned status %d", resp.StatusCode),
	}
}

func (e *Executor) result(senderDomain string, res domain.UnsubscribeResult) domain.UnsubscribeResult {
	res.Domain = senderDomain
	e.log.Info("unsubscribe attempt",
		zap.String("domain", senderDomain),
		zap.String("classification", string(res.Classification)),
		zap.Bool("success", res.Success))
	return res
}

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > maxErrorLen {
		return msg[:maxErrorLen] + "..."
	}
	return msg
}
