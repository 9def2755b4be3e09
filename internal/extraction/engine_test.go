package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/candidate"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
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

func TestExtractNameWithoutService(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	engine := New(ai.Unavailable{}, zap.New(core))

	res := engine.Extract(context.Background(), Request{
		Text:   "Hi! My name is Jane Doe",
		Fields: candidate.Priority,
		Focus:  candidate.FieldName,
	})

	got, ok := res.Values[candidate.FieldName]
	if !ok || got.Raw != "Jane Doe" || got.Confidence != ConfidenceHigh {
		t.Fatalf("unexpected name value: %+v", got)
	}
	if !res.Offline || res.Failed || !res.Consulted {
		t.Fatalf("expected an offline consultation, got %+v", res)
	}
	if len(res.Low) == 0 {
		t.Fatalf("expected requested fields to be reported low")
	}
	if observed.Len() != 0 {
		t.Fatalf("expected no warnings without a configured service, got %d", observed.Len())
	}
}

func TestExtractContactPatterns(t *testing.T) {
	stub := &stubCompleter{response: `{}`}
	engine := New(stub, zap.NewNop())

	res := engine.Extract(context.Background(), Request{
		Text:   "Reach me at jane.doe@example.com or +1 (555) 123-4567, I have 6 years in the field",
		Fields: []candidate.Field{candidate.FieldEmail, candidate.FieldPhone, candidate.FieldExperience},
	})

	expect := map[candidate.Field]string{
		candidate.FieldEmail:      "jane.doe@example.com",
		candidate.FieldPhone:      "+1 (555) 123-4567",
		candidate.FieldExperience: "6 years",
	}
	for field, want := range expect {
		if got := res.Values[field].Raw; got != want {
			t.Fatalf("%s: expected %q, got %q", field, want, got)
		}
	}
	if stub.calls != 0 {
		t.Fatalf("expected no service call when patterns matched, got %d", stub.calls)
	}
}

func TestExtractSkipsYearRangesAsPhone(t *testing.T) {
	engine := New(nil, nil)

	res := engine.Extract(context.Background(), Request{
		Text:   "I worked there 2015-2020",
		Fields: []candidate.Field{candidate.FieldPhone},
	})
	if _, ok := res.Values[candidate.FieldPhone]; ok {
		t.Fatalf("year range must not be taken as phone: %+v", res.Values)
	}
}

func TestExtractBareNumberForFocusedExperience(t *testing.T) {
	engine := New(nil, nil)

	res := engine.Extract(context.Background(), Request{
		Text:   "5",
		Fields: []candidate.Field{candidate.FieldExperience},
		Focus:  candidate.FieldExperience,
	})
	if got := res.Values[candidate.FieldExperience]; got.Raw != "5" {
		t.Fatalf("unexpected experience value: %+v", got)
	}
}

func TestExtractUsesServiceForFreeFormFields(t *testing.T) {
	stub := &stubCompleter{response: "```json\n" + `{
		"desired_position": "Backend Engineer",
		"location": "Berlin",
		"tech_stack": ["Python", "react", "Celery"],
		"favourite_color": "green"
	}` + "\n```"}
	engine := New(stub, zap.NewNop(), WithBudget(&ai.Budget{}))

	res := engine.Extract(context.Background(), Request{
		Text:    "I'm after a Backend Engineer role in Berlin, mostly Python and React with celery",
		Fields:  []candidate.Field{candidate.FieldPosition, candidate.FieldLocation, candidate.FieldTechStack},
		History: []string{"assistant: What position are you applying for?"},
	})

	if stub.calls != 1 {
		t.Fatalf("expected one service call, got %d", stub.calls)
	}
	if stub.last.Task != ai.TaskExtract || stub.last.System == "" {
		t.Fatalf("unexpected request: %+v", stub.last)
	}
	if got := res.Values[candidate.FieldPosition]; got.Raw != "Backend Engineer" || got.Confidence != ConfidenceHigh {
		t.Fatalf("unexpected position: %+v", got)
	}
	if got := res.Values[candidate.FieldLocation]; got.Raw != "Berlin" {
		t.Fatalf("unexpected location: %+v", got)
	}
	tech := res.Values[candidate.FieldTechStack]
	if strings.Join(tech.Items, ",") != "Python,React,Celery" {
		t.Fatalf("unexpected tech stack: %+v", tech)
	}
	if res.Failed {
		t.Fatalf("did not expect failure")
	}
}

func TestExtractServiceTimeoutKeepsNothingFreeForm(t *testing.T) {
	stub := &stubCompleter{err: context.DeadlineExceeded}
	engine := New(stub, zap.NewNop())

	res := engine.Extract(context.Background(), Request{
		Text:   "I would like the staff engineer role in Lisbon",
		Fields: []candidate.Field{candidate.FieldPosition, candidate.FieldLocation},
	})

	if !res.Failed {
		t.Fatalf("expected failure")
	}
	if !res.Empty() {
		t.Fatalf("expected no values, got %+v", res.Values)
	}
	if len(res.Low) != 2 {
		t.Fatalf("expected both fields reported low, got %v", res.Low)
	}
}

func TestExtractServiceTimeoutDropsFocusGuess(t *testing.T) {
	stub := &stubCompleter{err: context.DeadlineExceeded}
	engine := New(stub, zap.NewNop())

	res := engine.Extract(context.Background(), Request{
		Text:   "Berlin",
		Fields: []candidate.Field{candidate.FieldLocation},
		Focus:  candidate.FieldLocation,
	})

	if !res.Failed || res.Offline {
		t.Fatalf("expected a failed consultation, got %+v", res)
	}
	if _, ok := res.Values[candidate.FieldLocation]; ok {
		t.Fatalf("expected no location after a failed call, got %+v", res.Values)
	}
}

func TestExtractFocusGuessWithoutService(t *testing.T) {
	engine := New(ai.Unavailable{}, zap.NewNop())

	res := engine.Extract(context.Background(), Request{
		Text:   "Berlin",
		Fields: []candidate.Field{candidate.FieldLocation},
		Focus:  candidate.FieldLocation,
	})

	got := res.Values[candidate.FieldLocation]
	if got.Raw != "Berlin" || got.Confidence != ConfidenceLow || got.Source != SourceFocus {
		t.Fatalf("unexpected location: %+v", got)
	}
}

func TestExtractSelfIntroduction(t *testing.T) {
	known := candidate.Profile{FullName: "Jane Doe"}

	tests := []struct {
		name     string
		text     string
		req      Request
		wantName string
		wantHigh bool
	}{
		{
			name:     "name missing",
			text:     "Hello, I'm Jane Doe",
			req:      Request{Fields: candidate.Priority},
			wantName: "Jane Doe",
			wantHigh: true,
		},
		{
			name: "name known, answering the position",
			text: "I am Python developer",
			req:  Request{Fields: []candidate.Field{candidate.FieldPosition}, Focus: candidate.FieldPosition, Known: known},
		},
		{
			name: "name known, listing tools",
			text: "This is React and Go",
			req:  Request{Fields: candidate.Priority, Known: known},
		},
		{
			name:     "explicit name while it was not asked for",
			text:     "My name is John Smith",
			req:      Request{Fields: []candidate.Field{candidate.FieldLocation}, Focus: candidate.FieldLocation, Known: known},
			wantName: "John Smith",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := New(ai.Unavailable{}, zap.NewNop())
			req := tt.req
			req.Text = tt.text

			res := engine.Extract(context.Background(), req)

			got, ok := res.Values[candidate.FieldName]
			if tt.wantName == "" {
				if ok {
					t.Fatalf("expected no name, got %+v", got)
				}
				return
			}
			if got.Raw != tt.wantName {
				t.Fatalf("expected name %q, got %+v", tt.wantName, got)
			}
			if (got.Confidence == ConfidenceHigh) != tt.wantHigh {
				t.Fatalf("unexpected confidence: %+v", got)
			}
		})
	}
}

func TestExtractPositionStripsSelfIntroduction(t *testing.T) {
	engine := New(ai.Unavailable{}, zap.NewNop())

	res := engine.Extract(context.Background(), Request{
		Text:   "I'm Senior Backend Engineer",
		Fields: []candidate.Field{candidate.FieldPosition},
		Focus:  candidate.FieldPosition,
		Known:  candidate.Profile{FullName: "Jane Doe"},
	})

	if got := res.Values[candidate.FieldPosition].Raw; got != "Senior Backend Engineer" {
		t.Fatalf("unexpected position: %q", got)
	}
}

func TestExtractTechOnlyWhenAskedFor(t *testing.T) {
	engine := New(ai.Unavailable{}, zap.NewNop())
	fields := []candidate.Field{candidate.FieldPosition, candidate.FieldTechStack}

	res := engine.Extract(context.Background(), Request{Text: "Python developer", Fields: fields, Focus: candidate.FieldPosition})
	if got, ok := res.Values[candidate.FieldTechStack]; ok {
		t.Fatalf("expected no tech stack from a position answer, got %+v", got)
	}

	res = engine.Extract(context.Background(), Request{Text: "Python developer", Fields: fields, Focus: candidate.FieldTechStack})
	got := res.Values[candidate.FieldTechStack]
	if strings.Join(got.Items, ",") != "Python" || got.Confidence != ConfidenceHigh {
		t.Fatalf("unexpected tech stack: %+v", got)
	}
}

func TestExtractPatternsOnlySkipsService(t *testing.T) {
	stub := &stubCompleter{response: `{"location": "Munich"}`}
	engine := New(stub, zap.NewNop())

	res := engine.Extract(context.Background(), Request{
		Text:         "Correct, 7 years experience though",
		Fields:       candidate.Priority,
		PatternsOnly: true,
	})

	if stub.calls != 0 || res.Consulted {
		t.Fatalf("expected no service call, got %d", stub.calls)
	}
	if got := res.Values[candidate.FieldExperience].Raw; got != "7 years" {
		t.Fatalf("unexpected experience: %q", got)
	}
}

func TestExtractLowConfidenceServiceValue(t *testing.T) {
	stub := &stubCompleter{response: `{"location": "Germany"}`}
	engine := New(stub, zap.NewNop())

	res := engine.Extract(context.Background(), Request{
		Text:   "I live in Munich",
		Fields: []candidate.Field{candidate.FieldLocation},
	})

	if got := res.Values[candidate.FieldLocation]; got.Confidence != ConfidenceLow {
		t.Fatalf("expected low confidence for paraphrased value, got %+v", got)
	}
}

func TestParseReplyDropsBoilerplateAndWrongTypes(t *testing.T) {
	t.Parallel()

	fields := []candidate.Field{candidate.FieldName, candidate.FieldLocation, candidate.FieldExperience, candidate.FieldPosition}
	found, err := ParseReply(`{"full_name": "null", "location": "Not provided", "years_experience": 4, "desired_position": {"title": "x"}}`, "4 years", fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected only experience, got %+v", found)
	}
	if got := found[candidate.FieldExperience]; got.Raw != "4" || got.Confidence != ConfidenceHigh {
		t.Fatalf("unexpected experience: %+v", got)
	}

	if _, err := ParseReply("I'm sorry, I can not help with that", "", fields); err == nil {
		t.Fatalf("expected error for non-JSON reply")
	}

	_, err = ParseReply(`{"full_name": "As an AI I cannot know that"}`, "", fields)
	if !errors.Is(err, errEmptyReply) {
		t.Fatalf("expected errEmptyReply, got %v", err)
	}
}

func TestBuildPromptIncludesContext(t *testing.T) {
	t.Parallel()

	known := candidate.Profile{FullName: "Jane Doe"}
	prompt := BuildPrompt("Berlin", []candidate.Field{candidate.FieldLocation}, known, []string{"assistant: Where are you located?"})

	for _, want := range []string{`"location"`, "full_name: Jane Doe", "Where are you located?", "Berlin"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected prompt to contain %q:\n%s", want, prompt)
		}
	}
}
