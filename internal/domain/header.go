package domain

// Header is a single message header as returned by the mail provider.
// A message carries an ordered sequence of headers; duplicate names are
// possible and name matching is case-insensitive.
type Header struct {
	Name  string
	Value string
}

// AffordanceMode classifies how an unsubscribe affordance can be exercised.
type AffordanceMode string

const (
	// ModeOneClick indicates RFC 8058 one-click support: a companion
	// List-Unsubscribe-Post header is present and a single POST suffices.
	ModeOneClick AffordanceMode = "one-click"
	// ModeManual indicates a plain HTTP(S) unsubscribe link.
	ModeManual AffordanceMode = "manual"
	// ModeMailto indicates the only affordance is a mailto: URI.
	ModeMailto AffordanceMode = "mailto"
	// ModeNone indicates no usable unsubscribe affordance was found.
	ModeNone AffordanceMode = "none"
)

// Affordance is the unsubscribe affordance extracted from a message's
// headers. Link is empty when Mode is ModeNone.
type Affordance struct {
	Link string
	Mode AffordanceMode
}

// Actionable reports whether the affordance carries an HTTP(S) link that
// can be exercised automatically.
func (a Affordance) Actionable() bool {
	return a.Mode == ModeOneClick || a.Mode == ModeManual
}
