// Package interview drives one screening conversation from the greeting to the closing summary.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/hh-screener/internal/candidate"
	"github.com/spigell/hh-screener/internal/extraction"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/metrics"
	"github.com/spigell/hh-screener/internal/questions"
	"github.com/spigell/hh-screener/internal/utils"

	"go.uber.org/zap"
)

const (
	DefaultCompany        = "TalentScout"
	DefaultHistoryLines   = 12
	DefaultMaxInputLength = 1000

	// briefWords is the longest affirmative reply accepted without an extraction pass.
	briefWords = 6
)

// Extractor finds candidate fields in free text.
type Extractor interface {
	Extract(ctx context.Context, req extraction.Request) extraction.Result
}

// QuestionGenerator produces the assessment questions. It must always return at least one question.
type QuestionGenerator interface {
	Generate(ctx context.Context, in questions.Input) []questions.Question
}

type Config struct {
	Company        string
	ExitPhrases    []string
	HistoryLines   int
	MaxInputLength int
}

type Deps struct {
	Extractor Extractor
	Generator QuestionGenerator
	Validator *candidate.Validator
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	Now       func() time.Time
}

// Progress is the machine readable state shown next to each reply.
type Progress struct {
	Phase         Phase           `json:"phase"`
	Fields        map[string]bool `json:"fields"`
	QuestionIndex int             `json:"question_index"`
	QuestionTotal int             `json:"question_total"`
	Ended         bool            `json:"ended"`
	EndedReason   EndReason       `json:"ended_reason,omitempty"`
}

// Reply is one assistant utterance.
type Reply struct {
	Text     string   `json:"text"`
	Progress Progress `json:"progress"`
}

// Machine is stateless; every call works on the session passed in.
// Callers must not call Handle concurrently for the same session.
type Machine struct {
	cfg       Config
	extractor Extractor
	generator QuestionGenerator
	validator *candidate.Validator
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func New(cfg Config, deps Deps) (*Machine, error) {
	if deps.Extractor == nil {
		return nil, errors.New("interview: extractor is required")
	}
	if deps.Generator == nil {
		return nil, errors.New("interview: question generator is required")
	}

	if cfg.Company == "" {
		cfg.Company = DefaultCompany
	}
	if len(cfg.ExitPhrases) == 0 {
		cfg.ExitPhrases = DefaultExitPhrases
	}
	if cfg.HistoryLines <= 0 {
		cfg.HistoryLines = DefaultHistoryLines
	}
	if cfg.MaxInputLength <= 0 {
		cfg.MaxInputLength = DefaultMaxInputLength
	}

	m := &Machine{
		cfg:       cfg,
		extractor: deps.Extractor,
		generator: deps.Generator,
		validator: deps.Validator,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		now:       deps.Now,
	}
	if m.validator == nil {
		rules := candidate.DefaultRules()
		rules.Reserved = cfg.ExitPhrases
		m.validator = candidate.NewValidator(rules)
	}
	if m.logger == nil {
		m.logger = zap.NewNop()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m, nil
}

// Start greets the candidate of a fresh session. For a session that is
// already running it repeats the utterance the candidate is expected to answer.
func (m *Machine) Start(s *Session) Reply {
	if s.Phase != PhaseGreeting {
		return m.Prompt(s)
	}
	text, err := m.greet(s)
	if err != nil {
		reply, _ := m.fail(s, err)
		return reply
	}
	return m.say(s, text)
}

// Prompt returns the utterance awaiting an answer without changing the session.
func (m *Machine) Prompt(s *Session) Reply {
	var text string
	switch s.Phase {
	case PhaseGreeting:
		text = introText(m.cfg.Company)
	case PhaseCollecting:
		text = promptFor(m.nextField(s))
	case PhaseConfirming:
		if s.Pending != "" {
			text = promptFor(s.Pending)
		} else {
			text = confirmationText(&s.Profile)
		}
	case PhaseAssessing:
		if q, ok := s.Assessment.Pending(); ok {
			text = questionText(s.Assessment.CurrentIndex, len(s.Assessment.Questions), q)
		} else {
			text = nothingPendingText
		}
	default:
		text = sessionClosedText
	}
	return Reply{Text: text, Progress: progressOf(s)}
}

// Handle processes one candidate message. Only a *FatalSessionError is returned;
// every other problem is answered with an utterance.
func (m *Machine) Handle(ctx context.Context, s *Session, text string) (Reply, error) {
	text = utils.SanitizeInput(text, m.cfg.MaxInputLength)
	log := logger.WithSession(m.logger, s.ID, string(s.Phase))
	m.metrics.Turn(string(s.Phase))

	if s.Phase == PhaseEnded {
		log.Debug("message after the end of the interview", zap.Error(ErrProtocol))
		return Reply{Text: sessionClosedText, Progress: progressOf(s)}, nil
	}

	if containsExit(text, m.cfg.ExitPhrases) {
		s.record(SpeakerCandidate, text, m.now())
		if err := m.end(s, EndedCandidateExit); err != nil {
			return m.fail(s, err)
		}
		log.Info("candidate left the interview", zap.Int("answered", len(s.Assessment.Answers)))
		return m.say(s, farewellText(m.cfg.Company)), nil
	}

	if err := s.check(); err != nil {
		return m.fail(s, err)
	}

	if text == "" && s.Phase != PhaseGreeting {
		return m.Prompt(s), nil
	}

	if s.Phase == PhaseAssessing {
		if _, ok := s.Assessment.Pending(); !ok {
			log.Warn("answer without a pending question", zap.Error(ErrProtocol))
			return Reply{Text: nothingPendingText, Progress: progressOf(s)}, nil
		}
	}

	s.record(SpeakerCandidate, text, m.now())

	var (
		utterance string
		err       error
	)
	switch s.Phase {
	case PhaseGreeting:
		utterance, err = m.greet(s)
	case PhaseCollecting:
		utterance, err = m.collect(ctx, s, text, log)
	case PhaseConfirming:
		utterance, err = m.confirm(ctx, s, text, log)
	case PhaseAssessing:
		utterance, err = m.assess(s, text)
	case PhaseClosing:
		utterance, err = m.finish(s)
	}
	if err != nil {
		return m.fail(s, err)
	}

	return m.say(s, utterance), nil
}

func (m *Machine) greet(s *Session) (string, error) {
	if err := m.transition(s, PhaseCollecting); err != nil {
		return "", err
	}
	next := m.nextField(s)
	s.Pending = next
	return introText(m.cfg.Company) + "\n\n" + promptFor(next), nil
}

func (m *Machine) collect(ctx context.Context, s *Session, text string, log *zap.Logger) (string, error) {
	result := m.extract(ctx, s, text, s.Profile.Missing(), false, log)

	changed, issue := m.apply(s, result, log)
	if len(changed) > 0 {
		log.Debug("profile updated", zap.Strings("fields", fieldNames(changed)))
	}
	if issue != nil {
		s.Pending = issue.Field
		return clarifyText(issue), nil
	}
	return m.advance(s)
}

func (m *Machine) confirm(ctx context.Context, s *Session, text string, log *zap.Logger) (string, error) {
	affirmed := isAffirmative(text)
	// A brief affirmative only gets the pattern pass, so "yes, 7 years" still corrects.
	brief := affirmed && len(strings.Fields(words(text))) <= briefWords

	// Correction pass: every field may be updated, the profile is never cleared.
	result := m.extract(ctx, s, text, candidate.Priority, brief, log)
	changed, issue := m.apply(s, result, log)

	switch {
	case issue != nil:
		s.Pending = issue.Field
		return clarifyText(issue), nil
	case len(changed) > 0:
		log.Info("profile corrected", zap.Strings("fields", fieldNames(changed)))
		s.Pending = ""
		return m.advance(s)
	case affirmed:
		return m.startAssessment(ctx, s, log)
	case isNegative(text):
		return askChangeText, nil
	}
	if s.Pending != "" {
		return promptFor(s.Pending), nil
	}
	return confirmationText(&s.Profile), nil
}

func (m *Machine) assess(s *Session, text string) (string, error) {
	a := &s.Assessment
	a.Answers[a.CurrentIndex] = text
	a.CurrentIndex++

	if q, ok := a.Pending(); ok {
		return thanksText + "\n\n" + questionText(a.CurrentIndex, len(a.Questions), q), nil
	}

	if err := m.transition(s, PhaseClosing); err != nil {
		return "", err
	}
	return m.finish(s)
}

func (m *Machine) finish(s *Session) (string, error) {
	summary := closingText(m.cfg.Company, &s.Profile, s.Assessment.Questions)
	if err := m.end(s, EndedCompleted); err != nil {
		return "", err
	}
	return summary, nil
}

func (m *Machine) startAssessment(ctx context.Context, s *Session, log *zap.Logger) (string, error) {
	if len(s.Assessment.Questions) > 0 {
		return "", &FatalSessionError{SessionID: s.ID, Reason: "questions were already generated"}
	}
	if missing := s.Profile.Missing(); len(missing) > 0 {
		s.Pending = ""
		return m.advance(s)
	}

	qs := m.generator.Generate(ctx, questions.Input{
		Stack:    append([]string(nil), s.Profile.TechStack...),
		Years:    s.Profile.Years(),
		Position: s.Profile.DesiredPosition,
	})
	if len(qs) == 0 {
		return "", &FatalSessionError{SessionID: s.ID, Reason: "no questions available", Err: ErrGenerationFailed}
	}

	fallback := 0
	for _, q := range qs {
		if q.Source != questions.SourceService {
			fallback++
		}
	}
	if fallback > 0 {
		m.metrics.Fallback("questions")
		log.Warn("questions filled from the bank", zap.Int("fallback", fallback), zap.Int("total", len(qs)), zap.Error(ErrGenerationFailed))
	}

	s.Pending = ""
	s.Assessment.Questions = qs
	s.Assessment.CurrentIndex = 0
	if s.Assessment.Answers == nil {
		s.Assessment.Answers = make(map[int]string)
	}
	if err := m.transition(s, PhaseAssessing); err != nil {
		return "", err
	}

	return assessmentIntroText(len(qs)) + "\n\n" + questionText(0, len(qs), qs[0]), nil
}

// advance prompts for the next missing field or asks for confirmation when nothing is missing.
func (m *Machine) advance(s *Session) (string, error) {
	if missing := s.Profile.Missing(); len(missing) > 0 {
		if s.Phase == PhaseConfirming {
			if err := m.transition(s, PhaseCollecting); err != nil {
				return "", err
			}
		}
		s.Pending = missing[0]
		return promptFor(missing[0]), nil
	}

	s.Pending = ""
	if s.Phase == PhaseCollecting {
		if err := m.transition(s, PhaseConfirming); err != nil {
			return "", err
		}
	}
	return confirmationText(&s.Profile), nil
}

func (m *Machine) extract(ctx context.Context, s *Session, text string, fields []candidate.Field, patternsOnly bool, log *zap.Logger) extraction.Result {
	result := m.extractor.Extract(ctx, extraction.Request{
		Text:         text,
		Fields:       fields,
		Focus:        s.Pending,
		Known:        s.Profile.Clone(),
		History:      m.history(s),
		PatternsOnly: patternsOnly,
	})
	switch {
	case result.Failed:
		m.metrics.Fallback("extraction")
		log.Warn("extraction degraded to patterns",
			zap.Strings("low", fieldNames(result.Low)),
			zap.Error(ErrExtractionFailed),
		)
	case result.Offline:
		m.metrics.Fallback("extraction")
	}
	return result
}

// apply merges extracted values into the profile. Low confidence values never replace an
// existing value unless the field was asked for. Only values the candidate clearly meant
// produce a validation issue; the first such issue is returned.
func (m *Machine) apply(s *Session, result extraction.Result, log *zap.Logger) ([]candidate.Field, *candidate.ValidationError) {
	var (
		changed []candidate.Field
		issue   *candidate.ValidationError
	)

	for _, field := range candidate.Priority {
		value, ok := result.Values[field]
		if !ok {
			continue
		}

		trusted := value.Confidence == extraction.ConfidenceHigh || field == s.Pending
		if !trusted && s.Profile.Has(field) {
			continue
		}

		raw := value.Raw
		if len(value.Items) > 0 {
			raw = strings.Join(value.Items, ", ")
		}

		normalized, err := m.validator.Check(field, raw)
		if err != nil {
			log.Debug("rejected extracted value",
				zap.String("field", string(field)),
				zap.String("source", string(value.Source)),
				zap.Error(err),
			)
			var verr *candidate.ValidationError
			if trusted && issue == nil && errors.As(err, &verr) {
				issue = verr
			}
			continue
		}

		if s.Profile.Set(field, normalized) {
			changed = append(changed, field)
		}
	}

	return changed, issue
}

// nextField is the field the candidate is asked about in COLLECTING.
func (m *Machine) nextField(s *Session) candidate.Field {
	if s.Pending != "" {
		return s.Pending
	}
	if missing := s.Profile.Missing(); len(missing) > 0 {
		return missing[0]
	}
	return ""
}

// history is the transcript before the current message.
func (m *Machine) history(s *Session) []string {
	lines := s.transcript(m.cfg.HistoryLines + 1)
	if len(lines) > 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func (m *Machine) transition(s *Session, next Phase) error {
	from := s.Phase
	if !from.CanTransition(next) {
		return &FatalSessionError{SessionID: s.ID, Reason: fmt.Sprintf("illegal transition %s -> %s", from, next)}
	}
	s.Phase = next
	s.trail = append(s.trail, next)
	m.metrics.Transition(string(from), string(next))
	m.logger.Debug("phase changed",
		append(logger.SessionFields(s.ID, string(next)), zap.String("from", string(from)))...,
	)
	return nil
}

func (m *Machine) end(s *Session, reason EndReason) error {
	if err := m.transition(s, PhaseEnded); err != nil {
		return err
	}
	s.Pending = ""
	s.EndedReason = reason
	s.EndedAt = m.now()
	m.metrics.SessionEnded(string(reason))
	return nil
}

// fail terminates the session with reason error. The inconsistent state is left as is.
func (m *Machine) fail(s *Session, err error) (Reply, error) {
	var fatal *FatalSessionError
	if !errors.As(err, &fatal) {
		fatal = &FatalSessionError{SessionID: s.ID, Reason: "unexpected failure", Err: err}
	}

	logger.WithSession(m.logger, s.ID, string(s.Phase)).Error("session terminated", zap.Error(fatal))

	if s.Phase != PhaseEnded {
		s.Phase = PhaseEnded
		s.trail = append(s.trail, PhaseEnded)
	}
	s.Pending = ""
	s.EndedReason = EndedError
	s.EndedAt = m.now()
	m.metrics.SessionEnded(string(EndedError))

	return m.say(s, fatalText), fatal
}

func (m *Machine) say(s *Session, text string) Reply {
	s.record(SpeakerAssistant, text, m.now())
	return Reply{Text: text, Progress: progressOf(s)}
}

func progressOf(s *Session) Progress {
	return Progress{
		Phase:         s.Phase,
		Fields:        s.Profile.Snapshot(),
		QuestionIndex: s.Assessment.CurrentIndex,
		QuestionTotal: len(s.Assessment.Questions),
		Ended:         s.Phase == PhaseEnded,
		EndedReason:   s.EndedReason,
	}
}

func fieldNames(fields []candidate.Field) []string {
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = string(field)
	}
	return names
}
