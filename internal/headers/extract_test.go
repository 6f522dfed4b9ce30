package headers

import (
	"reflect"
	"testing"

	"github.com/lu-zhengda/mailsweep/internal/domain"
)

func TestAffordance(t *testing.T) {
	tests := []struct {
		name string
		hs   []domain.Header
		want domain.Affordance
	}{
		{
			name: "http link manual",
			hs: []domain.Header{
				{Name: "List-Unsubscribe", Value: "<https://news.example.com/unsub?id=1>"},
			},
			want: domain.Affordance{Link: "https://news.example.com/unsub?id=1", Mode: domain.ModeManual},
		},
		{
			name: "one-click when post header present",
			hs: []domain.Header{
				{Name: "List-Unsubscribe", Value: "<https://news.example.com/unsub?id=1>"},
				{Name: "List-Unsubscribe-Post", Value: "List-Unsubscribe=One-Click"},
			},
			want: domain.Affordance{Link: "https://news.example.com/unsub?id=1", Mode: domain.ModeOneClick},
		},
		{
			name: "post header before link header still counts",
			hs: []domain.Header{
				{Name: "List-Unsubscribe-Post", Value: "List-Unsubscribe=One-Click"},
				{Name: "List-Unsubscribe", Value: "<https://news.example.com/u>"},
			},
			want: domain.Affordance{Link: "https://news.example.com/u", Mode: domain.ModeOneClick},
		},
		{
			name: "case insensitive header names",
			hs: []domain.Header{
				{Name: "LIST-UNSUBSCRIBE", Value: "<http://example.com/u>"},
			},
			want: domain.Affordance{Link: "http://example.com/u", Mode: domain.ModeManual},
		},
		{
			name: "mailto fallback",
			hs: []domain.Header{
				{Name: "List-Unsubscribe", Value: "<mailto:leave@example.com>"},
			},
			want: domain.Affordance{Link: "mailto:leave@example.com", Mode: domain.ModeMailto},
		},
		{
			name: "http preferred over mailto in same value",
			hs: []domain.Header{
				{Name: "List-Unsubscribe", Value: "<mailto:leave@example.com>, <https://example.com/u>"},
			},
			want: domain.Affordance{Link: "https://example.com/u", Mode: domain.ModeManual},
		},
		{
			name: "first list-unsubscribe header wins",
			hs: []domain.Header{
				{Name: "List-Unsubscribe", Value: "<https://first.example.com/u>"},
				{Name: "List-Unsubscribe", Value: "<https://second.example.com/u>"},
			},
			want: domain.Affordance{Link: "https://first.example.com/u", Mode: domain.ModeManual},
		},
		{
			name: "no usable URI",
			hs: []domain.Header{
				{Name: "List-Unsubscribe", Value: "call us maybe"},
			},
			want: domain.Affordance{Mode: domain.ModeNone},
		},
		{
			name: "header absent",
			hs:   []domain.Header{{Name: "From", Value: "a@b.com"}},
			want: domain.Affordance{Mode: domain.ModeNone},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Affordance(tt.hs)
			if got != tt.want {
				t.Errorf("Affordance() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestAffordance_Idempotent(t *testing.T) {
	hs := []domain.Header{
		{Name: "List-Unsubscribe", Value: "<https://example.com/u>"},
		{Name: "List-Unsubscribe-Post", Value: "List-Unsubscribe=One-Click"},
	}
	first := Affordance(hs)
	second := Affordance(hs)
	if first != second {
		t.Errorf("extraction not idempotent: %+v vs %+v", first, second)
	}
}

func TestAffordance_Actionable(t *testing.T) {
	tests := []struct {
		mode domain.AffordanceMode
		want bool
	}{
		{domain.ModeOneClick, true},
		{domain.ModeManual, true},
		{domain.ModeMailto, false},
		{domain.ModeNone, false},
	}
	for _, tt := range tests {
		a := domain.Affordance{Mode: tt.mode}
		if got := a.Actionable(); got != tt.want {
			t.Errorf("Actionable() for %s = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestSender(t *testing.T) {
	tests := []struct {
		name      string
		hs        []domain.Header
		wantName  string
		wantEmail string
	}{
		{
			name:      "quoted display name",
			hs:        []domain.Header{{Name: "From", Value: `"Jane Doe" <jane@example.com>`}},
			wantName:  "Jane Doe",
			wantEmail: "jane@example.com",
		},
		{
			name:      "unquoted display name",
			hs:        []domain.Header{{Name: "From", Value: "Shop News <news@shop.example>"}},
			wantName:  "Shop News",
			wantEmail: "news@shop.example",
		},
		{
			name:      "angle brackets without name",
			hs:        []domain.Header{{Name: "From", Value: "<jane@example.com>"}},
			wantName:  "jane@example.com",
			wantEmail: "jane@example.com",
		},
		{
			name:      "bare email",
			hs:        []domain.Header{{Name: "From", Value: "jane@example.com"}},
			wantName:  "jane@example.com",
			wantEmail: "jane@example.com",
		},
		{
			name:      "no from header",
			hs:        []domain.Header{{Name: "Subject", Value: "hi"}},
			wantName:  "Unknown",
			wantEmail: "unknown",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, email := Sender(tt.hs)
			if name != tt.wantName || email != tt.wantEmail {
				t.Errorf("Sender() = (%q, %q), want (%q, %q)", name, email, tt.wantName, tt.wantEmail)
			}
		})
	}
}

func TestSubject(t *testing.T) {
	hs := []domain.Header{{Name: "subject", Value: "Weekly deals"}}
	if got := Subject(hs); got != "Weekly deals" {
		t.Errorf("Subject() = %q, want %q", got, "Weekly deals")
	}
	if got := Subject(nil); got != "(No Subject)" {
		t.Errorf("Subject(nil) = %q, want sentinel", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 60, "short"},
		{"abcdef", 3, "abc"},
		{"héllo", 2, "hé"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestSenderDomain(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"display name form", "Shop <news@Shop.Example>", "shop.example"},
		{"bare address", "news@shop.example", "shop.example"},
		{"uppercase lowered", "NEWS@SHOP.EXAMPLE", "shop.example"},
		{"no address", "not an address", "unknown"},
		{"empty", "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SenderDomain(tt.in); got != tt.want {
				t.Errorf("SenderDomain(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValue_FirstMatchWins(t *testing.T) {
	hs := []domain.Header{
		{Name: "From", Value: "first@example.com"},
		{Name: "from", Value: "second@example.com"},
	}
	got, ok := Value(hs, "FROM")
	if !ok || got != "first@example.com" {
		t.Errorf("Value() = (%q, %v), want first occurrence", got, ok)
	}
	if !reflect.DeepEqual(hs[1], domain.Header{Name: "from", Value: "second@example.com"}) {
		t.Error("input mutated")
	}
}
