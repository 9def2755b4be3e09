package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spigell/hh-screener/internal/candidate"
)

// scope describes how the current message relates to one field.
type scope struct {
	// focused is set when the previous prompt asked for the field.
	focused bool
	// requested is set when the caller listed the field.
	requested bool
	// known is set when the profile already holds a value.
	known bool
}

// fieldStrategy decides how one field is extracted.
type fieldStrategy interface {
	// match looks for the field without the completion service.
	match(text string, sc scope) (Value, bool)
	// consult reports whether the completion service has to be asked for the field.
	consult(matched, missing bool) bool
}

// patternStrategy handles fields with a fixed syntactic shape. The service is
// only asked when nothing matched and the field is still missing.
type patternStrategy struct {
	find func(text string, sc scope) (Value, bool)
}

func (p patternStrategy) match(text string, sc scope) (Value, bool) {
	return p.find(text, sc)
}

func (patternStrategy) consult(matched, missing bool) bool {
	return !matched && missing
}

// serviceStrategy handles free-form fields. The service is always asked; hint
// is an optional deterministic guess used when the service has nothing better.
type serviceStrategy struct {
	hint func(text string, sc scope) (Value, bool)
}

func (s serviceStrategy) match(text string, sc scope) (Value, bool) {
	if s.hint == nil {
		return Value{}, false
	}
	return s.hint(text, sc)
}

func (serviceStrategy) consult(bool, bool) bool {
	return true
}

func defaultStrategies() map[candidate.Field]fieldStrategy {
	return map[candidate.Field]fieldStrategy{
		candidate.FieldEmail:      patternStrategy{find: matchEmail},
		candidate.FieldPhone:      patternStrategy{find: matchPhone},
		candidate.FieldExperience: patternStrategy{find: matchExperience},
		candidate.FieldName:       serviceStrategy{hint: matchName},
		candidate.FieldPosition:   serviceStrategy{hint: focusText(candidate.FieldPosition)},
		candidate.FieldLocation:   serviceStrategy{hint: focusText(candidate.FieldLocation)},
		candidate.FieldTechStack:  serviceStrategy{hint: matchTech},
	}
}

var (
	emailPattern = regexp.MustCompile(`[^\s@<>(),;:"']+@[^\s@<>(),;:"']*`)
	phonePattern = regexp.MustCompile(`\+?\(?\d[\d\s\-().]{3,}\d`)
	yearRange    = regexp.MustCompile(`^(?:19|20)\d{2}\s*-\s*(?:19|20)\d{2}$`)

	experiencePattern = regexp.MustCompile(`(?i)(-?\d+(?:[.,]\d+)?)\s*\+?\s*(?:years?|yrs?)\b`)
	experienceWords   = regexp.MustCompile(`(?i)\b((?:twenty|thirty|forty|fifty)(?:[\s-](?:one|two|three|four|five|six|seven|eight|nine))?|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|a)\s+(?:years?|yrs?)\b`)
	bareNumber        = regexp.MustCompile(`^\s*-?\d+(?:[.,]\d+)?\s*\+?\s*$`)

	// explicitName matches phrases that state a name. selfIntro also matches "I'm Python developer".
	explicitName = regexp.MustCompile(`(?i:\b(?:my name is|my name's|call me|name:))\s+([\p{Lu}][\p{L}'\-]+(?:\s+[\p{Lu}][\p{L}'\-]+){0,3})`)
	selfIntro    = regexp.MustCompile(`(?i:\b(?:i am|i'm|im|this is))\s+([\p{Lu}][\p{L}'\-]+(?:\s+[\p{Lu}][\p{L}'\-]+){0,3})`)
	nameLead     = regexp.MustCompile(`(?i)^(?:hi|hello|hey)?[\s,!.]*(?:my name is|my name's|i am|i'm|im|it's|it is|this is|call me|name:)?\s*`)
	textLead     = map[candidate.Field]*regexp.Regexp{
		candidate.FieldPosition: regexp.MustCompile(`(?i)^(?:i(?:'m| am) (?:applying|looking) for (?:an? |the )?|i want to (?:be|work as) (?:an? )?|i(?:'m| am) (?:an? )?|(?:the )?position(?: is)?:?\s*|(?:an? )?)`),
		candidate.FieldLocation: regexp.MustCompile(`(?i)^(?:i(?:'m| am) (?:based|located|living) in |i live in |(?:currently )?in |based in |from |my location is |location:?\s*)`),
	}
)

const maxFocusWords = 8

func matchEmail(text string, _ scope) (Value, bool) {
	match := emailPattern.FindString(text)
	if match == "" {
		return Value{}, false
	}
	return Value{Raw: match, Confidence: ConfidenceHigh, Source: SourcePattern}, true
}

func matchPhone(text string, sc scope) (Value, bool) {
	text = emailPattern.ReplaceAllString(text, " ")
	for _, match := range phonePattern.FindAllString(text, -1) {
		match = strings.TrimSpace(match)
		if yearRange.MatchString(match) {
			continue
		}
		digits := 0
		for _, r := range match {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		// Short numbers only count as a phone when it was asked for.
		if digits < 5 || (!sc.focused && digits < 7) {
			continue
		}
		return Value{Raw: match, Confidence: ConfidenceHigh, Source: SourcePattern}, true
	}
	return Value{}, false
}

func matchExperience(text string, sc scope) (Value, bool) {
	if m := experiencePattern.FindString(text); m != "" {
		return Value{Raw: m, Confidence: ConfidenceHigh, Source: SourcePattern}, true
	}
	if m := experienceWords.FindString(text); m != "" {
		return Value{Raw: m, Confidence: ConfidenceHigh, Source: SourcePattern}, true
	}
	if !sc.focused {
		return Value{}, false
	}
	if bareNumber.MatchString(text) {
		return Value{Raw: strings.TrimSpace(text), Confidence: ConfidenceHigh, Source: SourceFocus}, true
	}
	if short(text) {
		return Value{Raw: strings.TrimSpace(text), Confidence: ConfidenceLow, Source: SourceFocus}, true
	}
	return Value{}, false
}

// matchName only trusts a self introduction when the name was asked for or is
// still missing. An explicit "my name is" outside that is kept at low confidence
// so it can fill an empty name but never replace one.
func matchName(text string, sc scope) (Value, bool) {
	if m := explicitName.FindStringSubmatch(text); m != nil {
		confidence := ConfidenceLow
		if sc.focused || sc.requested {
			confidence = ConfidenceHigh
		}
		return Value{Raw: m[1], Confidence: confidence, Source: SourcePattern}, true
	}
	if sc.focused || (sc.requested && !sc.known) {
		if m := selfIntro.FindStringSubmatch(text); m != nil {
			return Value{Raw: m[1], Confidence: ConfidenceHigh, Source: SourcePattern}, true
		}
	}
	if !sc.focused || !short(text) || strings.ContainsAny(text, "@0123456789") {
		return Value{}, false
	}
	name := strings.TrimSpace(nameLead.ReplaceAllString(strings.TrimSpace(text), ""))
	if name == "" {
		return Value{}, false
	}
	return Value{Raw: name, Confidence: ConfidenceLow, Source: SourceFocus}, true
}

func focusText(field candidate.Field) func(string, scope) (Value, bool) {
	lead := textLead[field]
	return func(text string, sc scope) (Value, bool) {
		if !sc.focused || !short(text) || strings.Contains(text, "@") {
			return Value{}, false
		}
		value := strings.TrimSpace(text)
		if lead != nil {
			value = strings.TrimSpace(lead.ReplaceAllString(value, ""))
		}
		if value == "" {
			return Value{}, false
		}
		return Value{Raw: value, Confidence: ConfidenceLow, Source: SourceFocus}, true
	}
}

// matchTech only reads technologies from an answer to the tech stack prompt.
// Elsewhere "Python developer" is a position, and the service decides.
func matchTech(text string, sc scope) (Value, bool) {
	if !sc.focused {
		return Value{}, false
	}
	if found := candidate.ScanTech(text); len(found) > 0 {
		return Value{Raw: strings.Join(found, ", "), Items: found, Confidence: ConfidenceHigh, Source: SourcePattern}, true
	}
	if utf8.RuneCountInString(text) > 300 {
		return Value{}, false
	}
	items := candidate.SplitTech(text)
	if len(items) == 0 {
		return Value{}, false
	}
	return Value{Raw: strings.Join(items, ", "), Items: items, Confidence: ConfidenceLow, Source: SourceFocus}, true
}

func short(text string) bool {
	words := strings.Fields(text)
	return len(words) > 0 && len(words) <= maxFocusWords
}
