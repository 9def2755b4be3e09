package questions

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/hh-screener/internal/ai"

	"go.uber.org/zap"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
	last     ai.Request
}

func (s *stubCompleter) Complete(_ context.Context, req ai.Request) (string, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func assertDistinct(t *testing.T, qs []Question) {
	t.Helper()
	seen := make(map[string]bool)
	for _, q := range qs {
		key := normalizeText(q.Text)
		if q.Text == "" {
			t.Fatalf("empty question in %+v", qs)
		}
		if seen[key] {
			t.Fatalf("duplicate question %q", q.Text)
		}
		seen[key] = true
	}
}

func TestGenerateUsesServiceReply(t *testing.T) {
	stub := &stubCompleter{response: "```json\n" + `[
		{"question": "How do Python generators differ from lists?", "technology": "python", "difficulty": "easy"},
		{"question": "How would you structure state in a large React app?", "technology": "React", "difficulty": "intermediate"},
		{"question": "How do you keep Python dependencies reproducible across environments?"}
	]` + "\n```"}
	g := New(stub, 3, zap.NewNop())

	qs := g.Generate(context.Background(), Input{Stack: []string{"Python", "React"}, Years: 3, Position: "Backend Engineer"})

	if stub.calls != 1 {
		t.Fatalf("expected exactly one call, got %d", stub.calls)
	}
	if stub.last.Task != ai.TaskQuestions || !strings.Contains(stub.last.Prompt, "Python, React") {
		t.Fatalf("unexpected request: %+v", stub.last)
	}
	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
	if qs[0].Technology != "Python" || qs[0].Tier != TierFoundational || qs[0].Source != SourceService {
		t.Fatalf("unexpected first question: %+v", qs[0])
	}
	if qs[1].Technology != "React" || qs[1].Tier != TierApplied {
		t.Fatalf("unexpected second question: %+v", qs[1])
	}
	if qs[2].Technology != "Python" {
		t.Fatalf("expected technology from question text, got %+v", qs[2])
	}
	assertDistinct(t, qs)
}

func TestGenerateParsesNumberedList(t *testing.T) {
	stub := &stubCompleter{response: "Here are your questions:\n1. What is a goroutine and how is it scheduled?\n2) **How do you handle errors in Go?**\n3. How does Docker layer caching work?\nGood luck!"}
	g := New(stub, 3, zap.NewNop())

	qs := g.Generate(context.Background(), Input{Stack: []string{"Go", "Docker"}, Years: 1})

	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
	if qs[1].Text != "How do you handle errors in Go?" {
		t.Fatalf("unexpected markdown handling: %q", qs[1].Text)
	}
	if qs[2].Technology != "Docker" {
		t.Fatalf("unexpected technology: %+v", qs[2])
	}
	for _, q := range qs {
		if q.Source != SourceService {
			t.Fatalf("expected service questions, got %+v", q)
		}
	}
}

func TestGenerateFallsBackOnError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("service down")}
	g := New(stub, 4, zap.NewNop())

	qs := g.Generate(context.Background(), Input{Stack: []string{"Python", "React"}, Years: 1})

	if len(qs) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(qs))
	}
	for i, q := range qs {
		if q.Source != SourceBank {
			t.Fatalf("expected bank question, got %+v", q)
		}
		want := []string{"Python", "React"}[i%2]
		if q.Technology != want {
			t.Fatalf("question %d: expected %s, got %s", i, want, q.Technology)
		}
	}
	if qs[0].Tier != TierFoundational {
		t.Fatalf("expected foundational first question for a junior, got %s", qs[0].Tier)
	}
	assertDistinct(t, qs)
}

func TestGenerateFillsShortReply(t *testing.T) {
	stub := &stubCompleter{response: `["How do you test Go code that talks to a database?", "How do you test Go code that talks to a database?"]`}
	g := New(stub, 3, zap.NewNop())

	qs := g.Generate(context.Background(), Input{Stack: []string{"Go"}, Years: 8})

	if len(qs) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(qs))
	}
	if qs[0].Source != SourceService || qs[1].Source != SourceBank || qs[2].Source != SourceBank {
		t.Fatalf("unexpected sources: %+v", qs)
	}
	if qs[1].Tier != TierAdvanced {
		t.Fatalf("expected advanced question for a senior, got %s", qs[1].Tier)
	}
	assertDistinct(t, qs)
}

func TestGenerateGenericWhenStackUnknown(t *testing.T) {
	g := New(ai.Unavailable{}, 5, zap.NewNop())

	qs := g.Generate(context.Background(), Input{Stack: []string{"Elixir"}, Years: 4, Position: "Platform Engineer"})

	if len(qs) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(qs))
	}
	for _, q := range qs {
		if q.Source != SourceGeneric {
			t.Fatalf("expected generic question, got %+v", q)
		}
	}
	if !strings.Contains(qs[0].Text+qs[1].Text+qs[2].Text+qs[3].Text+qs[4].Text, "Platform Engineer") {
		t.Fatalf("expected role to be mentioned: %+v", qs)
	}
	assertDistinct(t, qs)
}

func TestGenerateRejectsSchemaViolations(t *testing.T) {
	stub := &stubCompleter{response: `[{"technology": "Go"}, 42]`}
	g := New(stub, 3, zap.NewNop())

	qs := g.Generate(context.Background(), Input{Stack: []string{"Go"}, Years: 2})

	for _, q := range qs {
		if q.Source == SourceService {
			t.Fatalf("schema violating reply must not be used: %+v", q)
		}
	}
}

func TestClampCount(t *testing.T) {
	t.Parallel()

	tests := map[int]int{0: 3, 1: 3, 3: 3, 4: 4, 5: 5, 9: 5, -2: 3}
	for in, want := range tests {
		if got := ClampCount(in); got != want {
			t.Fatalf("ClampCount(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		years float64
		count int
		want  []Tier
	}{
		{years: 0.5, count: 3, want: []Tier{TierFoundational, TierFoundational, TierApplied}},
		{years: 3, count: 4, want: []Tier{TierFoundational, TierApplied, TierApplied, TierFoundational}},
		{years: 10, count: 3, want: []Tier{TierApplied, TierAdvanced, TierAdvanced}},
	}

	for _, tt := range tests {
		got := Plan(tt.years, tt.count)
		if len(got) != len(tt.want) {
			t.Fatalf("unexpected plan length %d", len(got))
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("years %v: expected %v, got %v", tt.years, tt.want, got)
			}
		}
	}
}

func TestParseReplyWrappedObject(t *testing.T) {
	t.Parallel()

	items, err := parseReply(`{"questions": ["What is a closure in JavaScript?"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Question != "What is a closure in JavaScript?" {
		t.Fatalf("unexpected items: %+v", items)
	}

	if _, err := parseReply("no questions here"); err == nil {
		t.Fatalf("expected error for reply without questions")
	}
}
