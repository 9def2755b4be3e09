package questions

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spigell/hh-screener/internal/ai"

	"github.com/xeipuuv/gojsonschema"
)

const replySchema = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "oneOf": [
      {"type": "string", "minLength": 1},
      {
        "type": "object",
        "required": ["question"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "technology": {"type": "string"},
          "difficulty": {"type": "string"}
        }
      }
    ]
  }
}`

const minQuestionRunes = 10

var (
	schemaLoader = gojsonschema.NewStringLoader(replySchema)

	listItem = regexp.MustCompile(`^\s*(?:\d+\s*[.):]|[-*•]|(?i:q(?:uestion)?\s*\d+\s*[.):]))\s*(.+)$`)
)

type replyItem struct {
	Question   string `json:"question"`
	Technology string `json:"technology"`
	Difficulty string `json:"difficulty"`
}

// parseReply reads questions from a JSON array (of strings or objects) or from a numbered list.
func parseReply(raw string) ([]replyItem, error) {
	payload := ai.ExtractJSON(raw)

	if strings.HasPrefix(payload, "{") {
		var wrapped struct {
			Questions json.RawMessage `json:"questions"`
		}
		if err := json.Unmarshal([]byte(payload), &wrapped); err == nil && len(wrapped.Questions) > 0 {
			payload = string(wrapped.Questions)
		}
	}

	if strings.HasPrefix(payload, "[") {
		items, err := parseJSON(payload)
		if err == nil {
			return items, nil
		}
	}

	items := parseList(raw)
	if len(items) == 0 {
		return nil, fmt.Errorf("no questions found in reply")
	}
	return items, nil
}

func parseJSON(payload string) ([]replyItem, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("validate questions reply: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("questions reply does not match schema: %s", strings.Join(problems, "; "))
	}

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, fmt.Errorf("decode questions reply: %w", err)
	}

	items := make([]replyItem, 0, len(entries))
	for _, entry := range entries {
		var text string
		if err := json.Unmarshal(entry, &text); err == nil {
			items = append(items, replyItem{Question: text})
			continue
		}
		var item replyItem
		if err := json.Unmarshal(entry, &item); err != nil {
			return nil, fmt.Errorf("decode question: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

func parseList(raw string) []replyItem {
	var items []replyItem
	for _, line := range strings.Split(raw, "\n") {
		m := listItem.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(strings.ReplaceAll(m[1], "**", ""))
		items = append(items, replyItem{Question: text})
	}
	return items
}

// usable reports whether text can be shown as a question.
func usable(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= minQuestionRunes
}
