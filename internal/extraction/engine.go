package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/candidate"
	"github.com/spigell/hh-screener/internal/utils"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const defaultMaxLogLength = 200

var errEmptyReply = errors.New("completion reply has no fields")

// boilerplate values a model returns instead of leaving a key out.
var boilerplate = map[string]bool{
	"": true, "null": true, "none": true, "nil": true, "n/a": true, "na": true, "-": true,
	"unknown": true, "not provided": true, "not mentioned": true, "not specified": true,
	"not available": true, "not stated": true,
}

var refusalMarkers = []string{"as an ai", "i'm sorry", "i am sorry", "i cannot", "i can't"}

// Engine turns free text into candidate field values.
type Engine struct {
	completer  ai.Completer
	budget     *ai.Budget
	strategies map[candidate.Field]fieldStrategy
	logger     *zap.Logger
	maxLogLen  int
}

type Option func(*Engine)

// WithBudget limits the transcript passed to the completion service.
func WithBudget(budget *ai.Budget) Option {
	return func(e *Engine) {
		e.budget = budget
	}
}

func WithMaxLogLength(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxLogLen = n
		}
	}
}

func New(completer ai.Completer, logger *zap.Logger, opts ...Option) *Engine {
	if completer == nil {
		completer = ai.Unavailable{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		completer:  completer,
		strategies: defaultStrategies(),
		logger:     logger,
		maxLogLen:  defaultMaxLogLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the fields found in the message. It never fails. When the
// service call fails only pattern matches are returned. When no service is
// configured the focus guesses stand in for it.
func (e *Engine) Extract(ctx context.Context, req Request) Result {
	result := Result{Values: make(map[candidate.Field]Value)}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return result
	}

	requested := make(map[candidate.Field]bool, len(req.Fields))
	for _, field := range req.Fields {
		requested[field] = true
	}

	hints := make(map[candidate.Field]Value)
	var ask []candidate.Field
	for _, field := range candidate.Priority {
		strategy, ok := e.strategies[field]
		if !ok {
			continue
		}

		value, matched := strategy.match(text, scope{
			focused:   field == req.Focus,
			requested: requested[field],
			known:     req.Known.Has(field),
		})
		if matched {
			if value.Confidence == ConfidenceHigh {
				result.Values[field] = value
			} else {
				hints[field] = value
			}
		}

		if requested[field] && strategy.consult(matched && value.Confidence == ConfidenceHigh, !req.Known.Has(field)) {
			ask = append(ask, field)
		}
	}

	if len(ask) > 0 && !req.PatternsOnly {
		result.Consulted = true
		found, err := e.consult(ctx, text, ask, req)
		switch {
		case errors.Is(err, ai.ErrUnavailable):
			e.logger.Debug("no completion service, using focus guesses", zap.Strings("fields", fieldNames(ask)))
			result.Offline = true
			result.Low = ask
		case err != nil:
			e.logger.Warn("extraction fell back to patterns",
				zap.Strings("fields", fieldNames(ask)),
				zap.Error(err),
			)
			result.Failed = true
			result.Low = ask
			clear(hints)
		default:
			for _, field := range ask {
				value, ok := found[field]
				if !ok {
					continue
				}
				if value.Confidence == ConfidenceLow {
					result.Low = append(result.Low, field)
				}
				result.Values[field] = merge(result.Values[field], value)
			}
		}
	}

	for field, hint := range hints {
		if _, ok := result.Values[field]; !ok {
			result.Values[field] = hint
		}
	}

	return result
}

// merge prefers a high-confidence pattern match over the service value, except
// for the tech stack where both lists are combined.
func merge(existing, incoming Value) Value {
	if existing.Raw == "" {
		return incoming
	}
	if len(existing.Items) > 0 || len(incoming.Items) > 0 {
		items := append(append([]string(nil), existing.Items...), incoming.Items...)
		items = candidate.CanonicalizeTech(items)
		existing.Items = items
		existing.Raw = strings.Join(items, ", ")
		return existing
	}
	return existing
}

func (e *Engine) consult(ctx context.Context, text string, fields []candidate.Field, req Request) (map[candidate.Field]Value, error) {
	history := req.History
	if e.budget != nil {
		history = e.budget.Tail(history)
	} else {
		history = nil
	}

	prompt := BuildPrompt(text, fields, req.Known, history)
	e.logger.Debug("asking completion service for fields",
		zap.Strings("fields", fieldNames(fields)),
		zap.String("prompt", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.completer.Complete(ctx, ai.Request{
		Task:   ai.TaskExtract,
		System: systemPrompt,
		Prompt: prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("complete extraction: %w", err)
	}

	found, err := ParseReply(raw, text, fields)
	if err != nil {
		e.logger.Debug("unusable extraction reply", zap.String("reply", utils.TruncateForLog(raw, e.maxLogLen)))
		return nil, err
	}
	return found, nil
}

// ParseReply decodes a JSON object reply. Keys outside fields, empty values,
// boilerplate and values of the wrong type are dropped.
func ParseReply(raw, text string, fields []candidate.Field) (map[candidate.Field]Value, error) {
	var payload map[string]any
	if err := json.Unmarshal([]byte(ai.ExtractJSON(raw)), &payload); err != nil {
		return nil, fmt.Errorf("decode extraction reply: %w", err)
	}

	allowed := make(map[candidate.Field]bool, len(fields))
	for _, field := range fields {
		allowed[field] = true
	}

	lowerText := strings.ToLower(text)
	found := make(map[candidate.Field]Value)
	for key, rawValue := range payload {
		field, ok := candidate.ParseField(key)
		if !ok || !allowed[field] || rawValue == nil {
			continue
		}

		switch field {
		case candidate.FieldTechStack:
			var items []string
			if err := mapstructure.WeakDecode(rawValue, &items); err != nil {
				continue
			}
			var cleaned []string
			for _, item := range items {
				for _, part := range candidate.SplitTech(item) {
					if !isBoilerplate(part) {
						cleaned = append(cleaned, part)
					}
				}
			}
			cleaned = candidate.CanonicalizeTech(cleaned)
			if len(cleaned) == 0 {
				continue
			}
			confidence := ConfidenceLow
			for _, item := range cleaned {
				if strings.Contains(lowerText, strings.ToLower(item)) {
					confidence = ConfidenceHigh
					break
				}
			}
			found[field] = Value{Raw: strings.Join(cleaned, ", "), Items: cleaned, Confidence: confidence, Source: SourceService}
		case candidate.FieldExperience:
			var value string
			if err := mapstructure.WeakDecode(rawValue, &value); err != nil {
				continue
			}
			if value = strings.TrimSpace(value); isBoilerplate(value) {
				continue
			}
			found[field] = Value{Raw: value, Confidence: confidenceOf(lowerText, value), Source: SourceService}
		default:
			value, ok := rawValue.(string)
			if !ok {
				continue
			}
			if value = strings.TrimSpace(value); isBoilerplate(value) {
				continue
			}
			found[field] = Value{Raw: value, Confidence: confidenceOf(lowerText, value), Source: SourceService}
		}
	}

	if len(found) == 0 && len(payload) > 0 && allBoilerplate(payload) {
		return nil, errEmptyReply
	}

	return found, nil
}

func confidenceOf(lowerText, value string) Confidence {
	if strings.Contains(lowerText, strings.ToLower(value)) {
		return ConfidenceHigh
	}
	return ConfidenceLow
}

func isBoilerplate(value string) bool {
	lower := strings.ToLower(strings.TrimSpace(value))
	if boilerplate[lower] {
		return true
	}
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func allBoilerplate(payload map[string]any) bool {
	for _, v := range payload {
		s, ok := v.(string)
		if !ok || !isBoilerplate(s) {
			return false
		}
	}
	return true
}

func fieldNames(fields []candidate.Field) []string {
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, string(field))
	}
	return names
}
