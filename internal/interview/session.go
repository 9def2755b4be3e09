package interview

import (
	"fmt"
	"time"

	"github.com/spigell/hh-screener/internal/candidate"
	"github.com/spigell/hh-screener/internal/questions"
)

type Speaker string

const (
	SpeakerCandidate Speaker = "candidate"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one message of the transcript.
type Turn struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// Assessment tracks the technical questions. Questions are set once; answers are
// written once per index, in order.
type Assessment struct {
	Questions    []questions.Question
	Answers      map[int]string
	CurrentIndex int
}

// Pending returns the question awaiting an answer.
func (a *Assessment) Pending() (questions.Question, bool) {
	if a.CurrentIndex < 0 || a.CurrentIndex >= len(a.Questions) {
		return questions.Question{}, false
	}
	return a.Questions[a.CurrentIndex], true
}

// Session is the state of one interview. It is mutated only by Machine, one message at a time.
type Session struct {
	ID          string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	EndedAt     time.Time
	Phase       Phase
	Profile     candidate.Profile
	Assessment  Assessment
	History     []Turn
	EndedReason EndReason
	// Pending is the field the last prompt asked for, including clarifications.
	Pending candidate.Field

	trail []Phase
}

func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		CreatedAt:  now,
		UpdatedAt:  now,
		Phase:      PhaseGreeting,
		Assessment: Assessment{Answers: make(map[int]string)},
		trail:      []Phase{PhaseGreeting},
	}
}

// Trail returns the phases the session went through, starting with GREETING.
func (s *Session) Trail() []Phase {
	return append([]Phase(nil), s.trail...)
}

func (s *Session) record(speaker Speaker, text string, at time.Time) {
	s.History = append(s.History, Turn{Speaker: speaker, Text: text, At: at})
	s.UpdatedAt = at
}

// transcript renders the last n turns as "speaker: text" lines.
func (s *Session) transcript(n int) []string {
	start := 0
	if n > 0 && len(s.History) > n {
		start = len(s.History) - n
	}
	lines := make([]string, 0, len(s.History)-start)
	for _, turn := range s.History[start:] {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Speaker, turn.Text))
	}
	return lines
}

// check reports inconsistent state. It never repairs anything.
func (s *Session) check() error {
	fatal := func(format string, args ...any) error {
		return &FatalSessionError{SessionID: s.ID, Reason: fmt.Sprintf(format, args...)}
	}

	if !s.Phase.Valid() {
		return fatal("unknown phase %q", s.Phase)
	}

	a := &s.Assessment
	if a.CurrentIndex < 0 || a.CurrentIndex > len(a.Questions) {
		return fatal("question index %d out of range [0, %d]", a.CurrentIndex, len(a.Questions))
	}
	if len(a.Answers) != a.CurrentIndex {
		return fatal("%d answers recorded for question index %d", len(a.Answers), a.CurrentIndex)
	}
	for idx := range a.Answers {
		if idx < 0 || idx >= a.CurrentIndex {
			return fatal("answer recorded for question %d ahead of index %d", idx, a.CurrentIndex)
		}
	}

	switch s.Phase {
	case PhaseAssessing, PhaseClosing:
		if a.Answers == nil {
			return fatal("assessment has no answer storage")
		}
		if len(a.Questions) == 0 {
			return fatal("assessment started without questions")
		}
		if missing := s.Profile.Missing(); len(missing) > 0 {
			return fatal("assessment started with missing fields %v", missing)
		}
	case PhaseGreeting, PhaseCollecting, PhaseConfirming:
		if len(a.Questions) > 0 {
			return fatal("questions exist before the assessment in phase %s", s.Phase)
		}
	}

	return nil
}
