package interview

import (
	"fmt"
	"strings"
)

// Summary is a short overview of a session for operators.
type Summary struct {
	SessionID   string    `json:"session_id"`
	Phase       Phase     `json:"phase"`
	Missing     []string  `json:"missing"`
	Answered    int       `json:"answered"`
	Total       int       `json:"total"`
	Turns       int       `json:"turns"`
	EndedReason EndReason `json:"ended_reason,omitempty"`
}

func Summarize(s *Session) Summary {
	missing := fieldNames(s.Profile.Missing())
	return Summary{
		SessionID:   s.ID,
		Phase:       s.Phase,
		Missing:     missing,
		Answered:    len(s.Assessment.Answers),
		Total:       len(s.Assessment.Questions),
		Turns:       len(s.History),
		EndedReason: s.EndedReason,
	}
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "session %s, phase %s", s.SessionID, s.Phase)
	if len(s.Missing) > 0 {
		fmt.Fprintf(&b, ", missing: %s", strings.Join(s.Missing, ", "))
	} else {
		b.WriteString(", profile complete")
	}
	if s.Total > 0 {
		fmt.Fprintf(&b, ", answered %d of %d questions", s.Answered, s.Total)
	}
	fmt.Fprintf(&b, ", %d messages", s.Turns)
	if s.EndedReason != "" {
		fmt.Fprintf(&b, ", ended: %s", s.EndedReason)
	}
	return b.String()
}
