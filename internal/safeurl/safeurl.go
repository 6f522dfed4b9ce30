// Package safeurl gates unsubscribe URLs against SSRF before any network
// call is made.
package safeurl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"net/url"
)

// Validation failure kinds. Every failure returned by Validate wraps
// exactly one of these.
var (
	ErrInvalidFormat     = errors.New("invalid URL format")
	ErrDisallowedScheme  = errors.New("disallowed URL scheme")
	ErrNoHostname        = errors.New("no hostname")
	ErrRestrictedAddress = errors.New("restricted address")
	ErrResolutionFailure = errors.New("hostname resolution failed")
)

// Error is a security-validation failure. It carries a human-readable
// reason suitable for reporting to the user and unwraps to one of the
// sentinel kinds above.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string { return "Security Error: " + e.Reason }

func (e *Error) Unwrap() error { return e.Kind }

// LookupFunc resolves a hostname to all of its IPv4 and IPv6 addresses.
// It exists so tests can substitute a fixed resolver.
type LookupFunc func(ctx context.Context, host string) ([]netip.Addr, error)

// Validator validates candidate unsubscribe URLs. Use New or
// NewWithLookup; the zero value has no resolver.
type Validator struct {
	lookup LookupFunc
}

// New returns a Validator backed by the system resolver.
func New() *Validator {
	return NewWithLookup(func(ctx context.Context, host string) ([]netip.Addr, error) {
		return net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	})
}

// NewWithLookup returns a Validator using the given resolver.
func NewWithLookup(lookup LookupFunc) *Validator {
	return &Validator{lookup: lookup}
}

// Validate checks that raw is safe to request: the scheme is http or
// https, a hostname is present, and every resolved address of both
// families lies outside private, loopback, link-local and unspecified
// ranges. All records are checked because DNS rebinding relies on a
// validator inspecting one address while the request uses another.
//
// The check is point-in-time: DNS can change between validation and the
// actual request. Callers that need full protection must pin the resolved
// addresses or revalidate at connect time; this is defense-in-depth, not
// a complete guarantee.
//
// On success the original URL is returned unchanged; validation never
// rewrites or pins.
func (v *Validator) Validate(ctx context.Context, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", &Error{Kind: ErrInvalidFormat, Reason: "invalid URL format"}
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &Error{
			Kind:   ErrDisallowedScheme,
			Reason: fmt.Sprintf("URL scheme %q not allowed, only HTTP and HTTPS", u.Scheme),
		}
	}

	host := u.Hostname()
	if host == "" {
		return "", &Error{Kind: ErrNoHostname, Reason: "URL has no hostname"}
	}

	addrs, err := v.lookup(ctx, host)
	if err != nil {
		return "", &Error{
			Kind:   ErrResolutionFailure,
			Reason: fmt.Sprintf("could not resolve hostname %q", host),
		}
	}
	if len(addrs) == 0 {
		return "", &Error{
			Kind:   ErrResolutionFailure,
			Reason: fmt.Sprintf("no addresses resolved for hostname %q", host),
		}
	}

	for _, addr := range addrs {
		if restricted(addr) {
			return "", &Error{
				Kind:   ErrRestrictedAddress,
				Reason: fmt.Sprintf("blocked restricted address %s for hostname %q", addr, host),
			}
		}
	}

	return raw, nil
}

// restricted reports whether addr must never be the target of an
// unsubscribe request: private-use, loopback, link-local or the
// unspecified 0.0.0.0/:: class.
func restricted(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsUnspecified()
}
