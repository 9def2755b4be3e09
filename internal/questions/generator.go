package questions

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/candidate"
	"github.com/spigell/hh-screener/internal/utils"

	"go.uber.org/zap"
)

//go:embed system.md
var systemPrompt string

const defaultMaxLogLength = 200

// Input describes the candidate the questions are generated for.
type Input struct {
	Stack    []string
	Years    float64
	Position string
}

type Generator struct {
	completer ai.Completer
	count     int
	logger    *zap.Logger
	maxLogLen int
}

// New returns a generator of count questions; count is clamped to [MinCount, MaxCount].
func New(completer ai.Completer, count int, logger *zap.Logger) *Generator {
	if completer == nil {
		completer = ai.Unavailable{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		completer: completer,
		count:     ClampCount(count),
		logger:    logger,
		maxLogLen: defaultMaxLogLength,
	}
}

func (g *Generator) Count() int {
	return g.count
}

// Generate makes exactly one completion call and always returns Count distinct questions.
// Whatever the service does not provide is filled from the static bank.
func (g *Generator) Generate(ctx context.Context, in Input) []Question {
	plan := Plan(in.Years, g.count)
	prompt := BuildPrompt(in, plan)

	raw, err := g.completer.Complete(ctx, ai.Request{
		Task:   ai.TaskQuestions,
		System: systemPrompt,
		Prompt: prompt,
	})

	var generated []Question
	switch {
	case err != nil:
		g.logger.Warn("question generation failed, using the question bank", zap.Error(err))
	default:
		items, perr := parseReply(raw)
		if perr != nil {
			g.logger.Warn("unusable question reply, using the question bank",
				zap.Error(perr),
				zap.String("reply", utils.TruncateForLog(raw, g.maxLogLen)),
			)
			break
		}
		generated = g.accept(items, in.Stack, plan)
	}

	if len(generated) < g.count {
		g.logger.Info("filling questions from the bank",
			zap.Int("generated", len(generated)),
			zap.Int("wanted", g.count),
		)
		fill := newFiller(in.Stack, in.Position, generated)
		for i := len(generated); i < g.count; i++ {
			generated = append(generated, fill.pick(plan[i]))
		}
	}

	return generated
}

// accept keeps distinct usable questions, up to the requested count.
func (g *Generator) accept(items []replyItem, stack []string, plan []Tier) []Question {
	seen := make(map[string]bool)
	var result []Question
	for _, item := range items {
		if len(result) == g.count {
			break
		}
		text := strings.TrimSpace(item.Question)
		key := normalizeText(text)
		if !usable(text) || seen[key] {
			continue
		}
		seen[key] = true

		i := len(result)
		tier, ok := ParseTier(item.Difficulty)
		if !ok {
			tier = plan[i]
		}
		result = append(result, Question{
			Text:       text,
			Technology: technologyOf(item, stack, i),
			Tier:       tier,
			Source:     SourceService,
		})
	}
	return result
}

// technologyOf resolves the technology of a generated question against the stack.
func technologyOf(item replyItem, stack []string, index int) string {
	if len(stack) == 0 {
		return strings.TrimSpace(item.Technology)
	}
	if item.Technology != "" {
		want := candidate.Canonical(item.Technology)
		for _, tech := range stack {
			if strings.EqualFold(tech, want) {
				return tech
			}
		}
	}
	lower := strings.ToLower(item.Question)
	for _, tech := range stack {
		if strings.Contains(lower, strings.ToLower(tech)) {
			return tech
		}
	}
	return stack[index%len(stack)]
}

// BuildPrompt describes the candidate and the difficulty of every question.
func BuildPrompt(in Input, plan []Tier) string {
	var sb strings.Builder

	stack := "not specified"
	if len(in.Stack) > 0 {
		stack = strings.Join(in.Stack, ", ")
	}
	position := strings.TrimSpace(in.Position)
	if position == "" {
		position = "not specified"
	}

	sb.WriteString(fmt.Sprintf("Generate exactly %d technical screening questions.\n\n", len(plan)))
	sb.WriteString(fmt.Sprintf("Candidate position: %s\n", position))
	sb.WriteString(fmt.Sprintf("Years of experience: %s\n", candidate.FormatYears(in.Years)))
	sb.WriteString(fmt.Sprintf("Tech stack: %s\n\n", stack))

	sb.WriteString("Difficulty of each question, in order:\n")
	for i, tier := range plan {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, tier))
	}
	sb.WriteString("\nSpread the questions across the technologies of the stack.\n")

	return sb.String()
}
