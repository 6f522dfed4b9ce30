// Package headers extracts unsubscribe affordances, sender identity and
// subjects from raw message headers. All functions are pure and tolerate
// arbitrary, malformed input.
package headers

import (
	"regexp"
	"strings"

	"github.com/lu-zhengda/mailsweep/internal/domain"
)

var (
	httpLinkRe  = regexp.MustCompile(`<(https?://[^>]+)>`)
	mailtoRe    = regexp.MustCompile(`<(mailto:[^>]+)>`)
	namedAddrRe = regexp.MustCompile(`([^<]*)<([^>]+)>`)
	emailRe     = regexp.MustCompile(`[\w.+-]+@[\w.-]+`)
)

// Value performs a case-insensitive lookup for the first header with the
// given name.
func Value(hs []domain.Header, name string) (string, bool) {
	for _, h := range hs {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// Affordance extracts the unsubscribe affordance from a header sequence.
// Only the first List-Unsubscribe header is consulted, but one-click
// support is signaled by a List-Unsubscribe-Post header anywhere in the
// set, regardless of position.
func Affordance(hs []domain.Header) domain.Affordance {
	value, ok := Value(hs, "List-Unsubscribe")
	if !ok {
		return domain.Affordance{Mode: domain.ModeNone}
	}

	if m := httpLinkRe.FindStringSubmatch(value); m != nil {
		_, oneClick := Value(hs, "List-Unsubscribe-Post")
		if oneClick {
			return domain.Affordance{Link: m[1], Mode: domain.ModeOneClick}
		}
		return domain.Affordance{Link: m[1], Mode: domain.ModeManual}
	}

	if m := mailtoRe.FindStringSubmatch(value); m != nil {
		return domain.Affordance{Link: m[1], Mode: domain.ModeMailto}
	}

	return domain.Affordance{Mode: domain.ModeNone}
}

// Sender extracts the sender's display name and email address from the
// first From header. A "Name <email>" value yields the trimmed name with
// surrounding quotes stripped; a missing display name falls back to the
// email for both fields, and a value without angle brackets is returned
// verbatim as both fields. Without a From header it returns the
// ("Unknown", "unknown") sentinel pair.
func Sender(hs []domain.Header) (name, email string) {
	value, ok := Value(hs, "From")
	if !ok {
		return "Unknown", "unknown"
	}

	if m := namedAddrRe.FindStringSubmatch(value); m != nil {
		name = strings.Trim(strings.TrimSpace(m[1]), `"`)
		email = strings.TrimSpace(m[2])
		if name == "" {
			name = email
		}
		return name, email
	}
	return value, value
}

// Subject returns the first Subject header's value verbatim, or the
// "(No Subject)" sentinel if absent.
func Subject(hs []domain.Header) string {
	if value, ok := Value(hs, "Subject"); ok {
		return value
	}
	return "(No Subject)"
}

// Truncate shortens s to at most n runes for display.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// SenderDomain extracts the lower-cased domain portion of an email-shaped
// token in a raw From value. It never fails: malformed input degrades to
// the UnknownDomain sentinel.
func SenderDomain(fromValue string) string {
	addr := emailRe.FindString(fromValue)
	if addr == "" {
		return domain.UnknownDomain
	}
	at := strings.Index(addr, "@")
	host := addr[at+1:]
	if host == "" {
		return domain.UnknownDomain
	}
	return strings.ToLower(host)
}
