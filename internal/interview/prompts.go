package interview

import (
	"fmt"
	"strings"

	"github.com/spigell/hh-screener/internal/candidate"
	"github.com/spigell/hh-screener/internal/questions"
)

const (
	sessionClosedText  = "This interview has already ended. Thank you for your time! Start a new session if you want to talk to us again."
	nothingPendingText = "There is no open question right now, so nothing was recorded."
	fatalText          = "Something went wrong on our side and this interview has to stop here. We are sorry for the inconvenience."
	askChangeText      = "What should I change? Tell me the field and the correct value, for example \"my location is Berlin\"."
	thanksText         = "Thank you."
)

var fieldPrompts = map[candidate.Field]string{
	candidate.FieldName:       "To get started, could you tell me your full name?",
	candidate.FieldEmail:      "What is the best email address to reach you?",
	candidate.FieldPhone:      "What phone number can we reach you at?",
	candidate.FieldExperience: "How many years of professional experience do you have?",
	candidate.FieldPosition:   "Which position are you applying for?",
	candidate.FieldLocation:   "Where are you currently located?",
	candidate.FieldTechStack:  "Which technologies do you work with? A list of languages, frameworks, databases and tools is fine.",
}

func introText(company string) string {
	return fmt.Sprintf("Hello! I'm the hiring assistant of %s. I'll collect a few details about you "+
		"and then ask a short set of technical questions based on your tech stack. "+
		"You can type \"quit\" at any time to end the interview.", company)
}

func promptFor(field candidate.Field) string {
	if prompt, ok := fieldPrompts[field]; ok {
		return prompt
	}
	return fmt.Sprintf("Could you tell me your %s?", field.Label())
}

func clarifyText(issue *candidate.ValidationError) string {
	return fmt.Sprintf("That doesn't look like a valid %s: %s. Could you resend it?", issue.Field.Label(), issue.Reason)
}

func confirmationText(p *candidate.Profile) string {
	var b strings.Builder
	b.WriteString("Here is what I have so far:\n")
	for _, field := range candidate.Priority {
		if field == candidate.FieldTechStack {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", capitalize(field.Label()), p.Value(field))
	}
	b.WriteString("- Tech stack:\n")
	for _, line := range techLines(p.TechStack) {
		fmt.Fprintf(&b, "  - %s\n", line)
	}
	b.WriteString("Is everything correct? Reply \"yes\" to start the technical questions, or tell me what to change.")
	return b.String()
}

// techLines renders the stack grouped by category in a stable order.
func techLines(stack []string) []string {
	groups := candidate.Categorize(stack)
	order := append(append([]string(nil), candidate.CategoryOrder...), "Other")
	var lines []string
	for _, category := range order {
		if techs := groups[category]; len(techs) > 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", category, strings.Join(techs, ", ")))
		}
	}
	return lines
}

func assessmentIntroText(total int) string {
	return fmt.Sprintf("Great, thank you for confirming! Now I'll ask you %d technical questions. "+
		"Answer in your own words, there are no trick questions.", total)
}

func questionText(index, total int, q questions.Question) string {
	topic := q.Technology
	if topic == "" {
		topic = "general"
	}
	return fmt.Sprintf("Question %d of %d (%s, %s): %s", index+1, total, topic, q.Tier, q.Text)
}

func closingText(company string, p *candidate.Profile, qs []questions.Question) string {
	var b strings.Builder
	b.WriteString("Thank you")
	if p.FullName != "" {
		b.WriteString(", " + p.FullName)
	}
	b.WriteString("! That completes the screening.\n")

	b.WriteString("Summary:\n")
	if p.YearsExperience != nil {
		fmt.Fprintf(&b, "- Experience: %s years\n", candidate.FormatYears(*p.YearsExperience))
	}
	if p.DesiredPosition != "" {
		fmt.Fprintf(&b, "- Position: %s\n", p.DesiredPosition)
	}
	if len(p.TechStack) > 0 {
		top := p.TechStack
		if len(top) > 5 {
			top = top[:5]
		}
		fmt.Fprintf(&b, "- Top technologies: %s\n", strings.Join(top, ", "))
	}
	if areas := coveredAreas(qs); len(areas) > 0 {
		fmt.Fprintf(&b, "- Areas covered: %s\n", strings.Join(areas, ", "))
	}

	contact := "the contact details you shared"
	if p.Email != "" {
		contact = p.Email
	}
	fmt.Fprintf(&b, "The %s recruiting team will review your answers and reach out via %s. Goodbye!", company, contact)
	return b.String()
}

func farewellText(company string) string {
	return fmt.Sprintf("Understood, the interview is over. Thank you for your time, and good luck from the %s team!", company)
}

func coveredAreas(qs []questions.Question) []string {
	var areas []string
	seen := make(map[string]bool)
	for _, q := range qs {
		area := q.Technology
		if area == "" {
			area = "general"
		}
		if !seen[area] {
			seen[area] = true
			areas = append(areas, area)
		}
	}
	return areas
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
