package unsub

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/lu-zhengda/mailsweep/internal/domain"
	"go.uber.org/zap"
)

type fakeDoer struct {
	statuses []int
	err      error
	requests []*http.Request
	bodies   []string
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	body := ""
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		body = string(b)
	}
	f.requests = append(f.requests, req)
	f.bodies = append(f.bodies, body)
	if f.err != nil {
		return nil, f.err
	}
	status := f.statuses[len(f.requests)-1]
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

type allowAll struct{}

func (allowAll) Validate(_ context.Context, raw string) (string, error) { return raw, nil }

type rejectAll struct{}

func (rejectAll) Validate(_ context.Context, _ string) (string, error) {
	return "", errors.New("Security Error: blocked restricted address 10.0.0.1")
}

func newExecutor(d Doer, v Validator) *Executor {
	return NewWithClient(d, v, "", zap.NewNop())
}

func TestExecuteEmptyLink(t *testing.T) {
	d := &fakeDoer{}
	res := newExecutor(d, allowAll{}).Execute(context.Background(), "shop.example", "")

	if res.Success || res.Classification != domain.ClassNoLink {
		t.Errorf("result = %+v, want none_provided", res)
	}
	if len(d.requests) != 0 {
		t.Errorf("made %d requests, want 0", len(d.requests))
	}
	if res.Domain != "shop.example" {
		t.Errorf("domain = %q", res.Domain)
	}
}

func TestExecuteMailtoLink(t *testing.T) {
	d := &fakeDoer{}
	res := newExecutor(d, allowAll{}).Execute(context.Background(), "shop.example", "mailto:unsub@shop.example")

	if res.Success || res.Classification != domain.ClassMailto {
		t.Errorf("result = %+v, want mailto", res)
	}
	if len(d.requests) != 0 {
		t.Errorf("made %d requests, want 0", len(d.requests))
	}
}

func TestExecuteSecurityRejected(t *testing.T) {
	d := &fakeDoer{}
	res := newExecutor(d, rejectAll{}).Execute(context.Background(), "shop.example", "https://internal.shop.example/u")

	if res.Success || res.Classification != domain.ClassSecurityRejected {
		t.Errorf("result = %+v, want security_rejected", res)
	}
	if !strings.Contains(res.Message, "Security Error") {
		t.Errorf("message = %q, want validation reason surfaced", res.Message)
	}
	if len(d.requests) != 0 {
		t.Errorf("made %d requests, want 0", len(d.requests))
	}
}

func TestExecutePostSucceeds(t *testing.T) {
	for _, status := range []int{200, 201, 202, 204} {
		d := &fakeDoer{statuses: []int{status}}
		res := newExecutor(d, allowAll{}).Execute(context.Background(), "shop.example", "https://shop.example/u")

		if !res.Success || res.Classification != domain.ClassDone {
			t.Errorf("status %d: result = %+v, want done", status, res)
		}
		if len(d.requests) != 1 {
			t.Fatalf("status %d: made %d requests, want 1", status, len(d.requests))
		}

		req := d.requests[0]
		if req.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", req.Method)
		}
		if ct := req.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %q", ct)
		}
		if d.bodies[0] != "List-Unsubscribe=One-Click" {
			t.Errorf("body = %q", d.bodies[0])
		}
	}
}

func TestExecuteGetFallback(t *testing.T) {
	tests := []struct {
		name      string
		getStatus int
		success   bool
		class     domain.Classification
	}{
		{"get ok", 200, true, domain.ClassDone},
		{"moved permanently", 301, true, domain.ClassRedirected},
		{"found", 302, true, domain.ClassRedirected},
		{"see other not accepted", 303, false, domain.ClassHTTPError},
		{"temporary redirect not accepted", 307, false, domain.ClassHTTPError},
		{"not found", 404, false, domain.ClassHTTPError},
		{"server error", 500, false, domain.ClassHTTPError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDoer{statuses: []int{405, tt.getStatus}}
			res := newExecutor(d, allowAll{}).Execute(context.Background(), "shop.example", "https://shop.example/u")

			if res.Success != tt.success || res.Classification != tt.class {
				t.Errorf("result = %+v, want success=%v class=%s", res, tt.success, tt.class)
			}
			if len(d.requests) != 2 {
				t.Fatalf("made %d requests, want 2", len(d.requests))
			}
			if d.requests[1].Method != http.MethodGet {
				t.Errorf("fallback method = %s, want GET", d.requests[1].Method)
			}
		})
	}
}

func TestExecuteHTTPErrorMessageNamesStatus(t *testing.T) {
	d := &fakeDoer{statuses: []int{405, 404}}
	res := newExecutor(d, allowAll{}).Execute(context.Background(), "shop.example", "https://shop.example/u")

	if res.Message != "Server returned status 404" {
		t.Errorf("message = %q", res.Message)
	}
}

func TestExecuteTransportErrorTruncated(t *testing.T) {
	d := &fakeDoer{err: errors.New(strings.Repeat("x", 300))}
	res := newExecutor(d, allowAll{}).Execute(context.Background(), "shop.example", "https://shop.example/u")

	if res.Success || res.Classification != domain.ClassNetworkError {
		t.Errorf("result = %+v, want network_error", res)
	}
	if len(res.Message) > len("Failed to unsubscribe: ")+maxErrorLen+3 {
		t.Errorf("message not truncated: %d chars", len(res.Message))
	}
	if !strings.HasSuffix(res.Message, "...") {
		t.Errorf("message = %q, want ellipsis suffix", res.Message)
	}
}

func TestExecuteSendsUserAgent(t *testing.T) {
	d := &fakeDoer{statuses: []int{200}}
	e := NewWithClient(d, allowAll{}, "custom-agent/2.0", zap.NewNop())
	e.Execute(context.Background(), "shop.example", "https://shop.example/u")

	if ua := d.requests[0].Header.Get("User-Agent"); ua != "custom-agent/2.0" {
		t.Errorf("user agent = %q", ua)
	}
}

func TestDefaultUserAgentApplied(t *testing.T) {
	d := &fakeDoer{statuses: []int{200}}
	newExecutor(d, allowAll{}).Execute(context.Background(), "shop.example", "https://shop.example/u")

	if ua := d.requests[0].Header.Get("User-Agent"); ua != DefaultUserAgent {
		t.Errorf("user agent = %q, want default", ua)
	}
}
