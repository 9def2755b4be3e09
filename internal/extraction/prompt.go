package extraction

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/spigell/hh-screener/internal/candidate"
)

//go:embed system.md
var systemPrompt string

var fieldHints = map[candidate.Field]string{
	candidate.FieldName:       `string // full name`,
	candidate.FieldEmail:      `string // email address`,
	candidate.FieldPhone:      `string // phone number as written`,
	candidate.FieldExperience: `number // total years of professional experience`,
	candidate.FieldPosition:   `string // position(s) the candidate applies for`,
	candidate.FieldLocation:   `string // current city and/or country`,
	candidate.FieldTechStack:  `array of strings // technologies the candidate works with`,
}

// BuildPrompt assembles the user prompt for the requested fields.
func BuildPrompt(text string, fields []candidate.Field, known candidate.Profile, history []string) string {
	var sb strings.Builder

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range fields {
		sb.WriteString(fmt.Sprintf("  %q: %s", string(field), fieldHints[field]))
		if i < len(fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	var knownLines []string
	for _, field := range candidate.Priority {
		if value := known.Value(field); value != "" {
			knownLines = append(knownLines, fmt.Sprintf("- %s: %s", field, value))
		}
	}
	if len(knownLines) > 0 {
		sb.WriteString("Already known (include a key only if the message changes it):\n")
		sb.WriteString(strings.Join(knownLines, "\n"))
		sb.WriteString("\n\n")
	}

	if len(history) > 0 {
		sb.WriteString("Previous conversation:\n\"\"\"\n")
		sb.WriteString(strings.Join(history, "\n"))
		sb.WriteString("\n\"\"\"\n\n")
	}

	sb.WriteString("Latest candidate message:\n\"\"\"\n")
	sb.WriteString(text)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}
