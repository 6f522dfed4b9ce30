package domain

// UnknownDomain is the sentinel grouping key for senders whose address
// cannot be parsed.
const UnknownDomain = "unknown"

// Opportunity is an aggregated, per-sender-domain summary of
// unsubscribe-eligible messages produced by a scan run.
type Opportunity struct {
	Domain   string   `json:"domain"`
	Count    int      `json:"count"`
	From     string   `json:"from"`
	Link     string   `json:"link"`
	Subjects []string `json:"subjects"`
}

// ScanState is the progress snapshot of a scan run. Progress is 0-100 and
// never decreases within one run. Error is set only on an aborted run, in
// which case Done is also true.
type ScanState struct {
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}
