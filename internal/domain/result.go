package domain

// Classification names the outcome of one unsubscribe attempt.
type Classification string

const (
	// ClassDone means the endpoint accepted the request.
	ClassDone Classification = "done"
	// ClassRedirected means the GET fallback answered 301 or 302, which
	// most providers use to land on a confirmation page.
	ClassRedirected Classification = "redirected"
	// ClassMailto means the link is a mailto: URI and cannot be automated.
	ClassMailto Classification = "mailto"
	// ClassNoLink means no link was provided at all.
	ClassNoLink Classification = "none_provided"
	// ClassHTTPError means the endpoint answered with an unexpected status.
	ClassHTTPError Classification = "http_error"
	// ClassNetworkError means the request failed at the transport level.
	ClassNetworkError Classification = "network_error"
	// ClassSecurityRejected means the link failed URL safety validation
	// and no network request was made.
	ClassSecurityRejected Classification = "security_rejected"
)

// UnsubscribeResult is the outcome of one unsubscribe attempt. Attempts
// never fail with an error; every outcome is captured here.
type UnsubscribeResult struct {
	Success        bool           `json:"success"`
	Message        string         `json:"message"`
	Classification Classification `json:"classification"`
	Domain         string         `json:"domain,omitempty"`
}
