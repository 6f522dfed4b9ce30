package cli

import (
	"time"

	"github.com/lu-zhengda/mailsweep/internal/domain"
	"github.com/lu-zhengda/mailsweep/internal/store/sqlite"
)

// ---------------------------------------------------------------------------
// Opportunity JSON types (scan)
// ---------------------------------------------------------------------------

type jsonOpportunity struct {
	Domain   string   `json:"domain"`
	Count    int      `json:"count"`
	From     string   `json:"from"`
	Link     string   `json:"link,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
}

func toJSONOpportunities(opps []domain.Opportunity) []jsonOpportunity {
	out := make([]jsonOpportunity, 0, len(opps))
	for _, opp := range opps {
		out = append(out, jsonOpportunity{
			Domain:   opp.Domain,
			Count:    opp.Count,
			From:     opp.From,
			Link:     opp.Link,
			Subjects: opp.Subjects,
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Attempt JSON types (history)
// ---------------------------------------------------------------------------

type jsonAttempt struct {
	Domain         string `json:"domain"`
	Link           string `json:"link,omitempty"`
	Success        bool   `json:"success"`
	Classification string `json:"classification"`
	Message        string `json:"message,omitempty"`
	CreatedAt      string `json:"created_at"`
}

func toJSONAttempts(attempts []sqlite.Attempt) []jsonAttempt {
	out := make([]jsonAttempt, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, jsonAttempt{
			Domain:         a.Domain,
			Link:           a.Link,
			Success:        a.Success,
			Classification: string(a.Classification),
			Message:        a.Message,
			CreatedAt:      a.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Auth and action JSON types (auth, signout)
// ---------------------------------------------------------------------------

type jsonAuthStatus struct {
	LoggedIn bool   `json:"logged_in"`
	Email    string `json:"email,omitempty"`
}

type jsonAction struct {
	OK     bool   `json:"ok"`
	Action string `json:"action"`
	Email  string `json:"email,omitempty"`
}
