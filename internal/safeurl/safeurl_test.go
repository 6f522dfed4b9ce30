package safeurl

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"
	"testing"
)

// fixedLookup returns a resolver that maps hostnames to fixed addresses.
func fixedLookup(table map[string][]string) LookupFunc {
	return func(_ context.Context, host string) ([]netip.Addr, error) {
		strs, ok := table[host]
		if !ok {
			return nil, fmt.Errorf("no such host: %s", host)
		}
		addrs := make([]netip.Addr, 0, len(strs))
		for _, s := range strs {
			addrs = append(addrs, netip.MustParseAddr(s))
		}
		return addrs, nil
	}
}

func TestValidate_Scheme(t *testing.T) {
	v := NewWithLookup(fixedLookup(map[string][]string{
		"example.com": {"93.184.216.34"},
	}))

	tests := []struct {
		name string
		url  string
		kind error
	}{
		{"https allowed", "https://example.com/unsub", nil},
		{"http allowed", "http://example.com/unsub", nil},
		{"file rejected", "file:///etc/passwd", ErrDisallowedScheme},
		{"ftp rejected", "ftp://example.com/x", ErrDisallowedScheme},
		{"javascript rejected", "javascript:alert(1)", ErrDisallowedScheme},
		{"scheme relative rejected", "//example.com/unsub", ErrDisallowedScheme},
		{"no hostname", "https:///path-only", ErrNoHostname},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(context.Background(), tt.url)
			if tt.kind == nil {
				if err != nil {
					t.Fatalf("Validate(%q) failed: %v", tt.url, err)
				}
				if got != tt.url {
					t.Errorf("Validate(%q) rewrote URL to %q", tt.url, got)
				}
				return
			}
			if !errors.Is(err, tt.kind) {
				t.Errorf("Validate(%q) error = %v, want kind %v", tt.url, err, tt.kind)
			}
		})
	}
}

func TestValidate_RestrictedAddresses(t *testing.T) {
	tests := []struct {
		name  string
		addrs []string
		safe  bool
	}{
		{"public v4", []string{"93.184.216.34"}, true},
		{"public v6", []string{"2606:2800:220:1::1"}, true},
		{"loopback", []string{"127.0.0.1"}, false},
		{"private 10/8", []string{"10.0.0.5"}, false},
		{"private 192.168/16", []string{"192.168.1.1"}, false},
		{"private 172.16/12", []string{"172.16.0.9"}, false},
		{"link local", []string{"169.254.169.254"}, false},
		{"unspecified v4", []string{"0.0.0.0"}, false},
		{"unspecified v6", []string{"::"}, false},
		{"v6 loopback", []string{"::1"}, false},
		{"v6 unique local", []string{"fd00::1"}, false},
		{"v6 link local", []string{"fe80::1"}, false},
		{"mapped private", []string{"::ffff:192.168.0.1"}, false},
		// One bad record among public ones fails the whole set: a
		// rebinding attacker controls which record the request uses.
		{"mixed public and private", []string{"93.184.216.34", "10.0.0.1"}, false},
		{"mixed families one bad", []string{"2606:2800:220:1::1", "127.0.0.1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewWithLookup(fixedLookup(map[string][]string{"host.example": tt.addrs}))
			_, err := v.Validate(context.Background(), "https://host.example/unsub")
			if tt.safe {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrRestrictedAddress) {
				t.Fatalf("error = %v, want ErrRestrictedAddress", err)
			}
		})
	}
}

func TestValidate_RestrictedNamesOffendingAddress(t *testing.T) {
	v := NewWithLookup(fixedLookup(map[string][]string{
		"host.example": {"93.184.216.34", "192.168.7.7"},
	}))
	_, err := v.Validate(context.Background(), "https://host.example/u")
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "192.168.7.7") {
		t.Errorf("error %q does not name the offending address", err)
	}
	if !strings.Contains(err.Error(), "Security") {
		t.Errorf("error %q is not identifiable as a security rejection", err)
	}
}

func TestValidate_ResolutionFailure(t *testing.T) {
	v := NewWithLookup(fixedLookup(map[string][]string{}))
	_, err := v.Validate(context.Background(), "https://nxdomain.example/u")
	if !errors.Is(err, ErrResolutionFailure) {
		t.Errorf("error = %v, want ErrResolutionFailure", err)
	}

	empty := NewWithLookup(func(context.Context, string) ([]netip.Addr, error) {
		return nil, nil
	})
	_, err = empty.Validate(context.Background(), "https://empty.example/u")
	if !errors.Is(err, ErrResolutionFailure) {
		t.Errorf("zero addresses: error = %v, want ErrResolutionFailure", err)
	}
}

func TestValidate_SchemeCheckedBeforeResolution(t *testing.T) {
	called := false
	v := NewWithLookup(func(context.Context, string) ([]netip.Addr, error) {
		called = true
		return nil, nil
	})
	_, err := v.Validate(context.Background(), "gopher://example.com/x")
	if !errors.Is(err, ErrDisallowedScheme) {
		t.Fatalf("error = %v, want ErrDisallowedScheme", err)
	}
	if called {
		t.Error("resolver consulted for a disallowed scheme")
	}
}
