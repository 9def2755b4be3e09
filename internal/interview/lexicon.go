package interview

import (
	"strings"
	"unicode"
)

// DefaultExitPhrases end the interview from any phase.
var DefaultExitPhrases = []string{"quit", "exit", "bye", "goodbye", "end the interview", "stop the interview"}

var affirmative = []string{
	"yes", "y", "yep", "yeah", "yup", "sure", "ok", "okay", "correct", "right", "confirm", "confirmed",
	"looks good", "all good", "that's right", "that is right", "absolutely", "perfect", "proceed",
	"go ahead", "let's go", "let's start", "of course", "exactly",
}

var negative = []string{
	"no", "n", "nope", "nah", "not", "incorrect", "wrong", "change", "fix", "update", "edit",
	"mistake", "actually", "isn't", "wasn't",
}

// containsExit reports whether any exit phrase occurs in the text as a
// case-insensitive substring. Runs of whitespace count as one space.
func containsExit(text string, phrases []string) bool {
	haystack := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	for _, phrase := range phrases {
		needle := strings.Join(strings.Fields(strings.ToLower(phrase)), " ")
		if needle != "" && strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

// containsPhrase matches phrases case-insensitively anywhere in the text, on word boundaries.
func containsPhrase(text string, phrases []string) bool {
	haystack := " " + words(text) + " "
	for _, phrase := range phrases {
		needle := words(phrase)
		if needle == "" {
			continue
		}
		if strings.Contains(haystack, " "+needle+" ") {
			return true
		}
	}
	return false
}

// words lower-cases text and replaces everything but letters, digits and apostrophes with single spaces.
func words(text string) string {
	text = strings.NewReplacer("’", "'", "‘", "'").Replace(strings.ToLower(text))
	return strings.Join(strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'')
	}), " ")
}

func isAffirmative(text string) bool {
	return containsPhrase(text, affirmative) && !containsPhrase(text, negative)
}

func isNegative(text string) bool {
	return containsPhrase(text, negative)
}
