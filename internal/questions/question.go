package questions

import "strings"

// Tier is the difficulty of a question.
type Tier string

const (
	TierFoundational Tier = "foundational"
	TierApplied      Tier = "applied"
	TierAdvanced     Tier = "advanced"
)

// Source tells where a question came from.
type Source string

const (
	SourceService Source = "service"
	SourceBank    Source = "bank"
	SourceGeneric Source = "generic"
)

// Question is one technical question of the assessment.
type Question struct {
	Text       string `json:"text"`
	Technology string `json:"technology,omitempty"`
	Tier       Tier   `json:"tier"`
	Source     Source `json:"source"`
}

const (
	MinCount     = 3
	MaxCount     = 5
	DefaultCount = 3
)

// ClampCount keeps the number of questions within [MinCount, MaxCount].
func ClampCount(n int) int {
	switch {
	case n <= 0:
		return DefaultCount
	case n < MinCount:
		return MinCount
	case n > MaxCount:
		return MaxCount
	}
	return n
}

// Plan returns the difficulty of each question for the given experience.
func Plan(years float64, count int) []Tier {
	var pattern []Tier
	switch {
	case years < 2:
		pattern = []Tier{TierFoundational, TierFoundational, TierApplied, TierFoundational, TierApplied}
	case years <= 5:
		pattern = []Tier{TierFoundational, TierApplied, TierApplied, TierFoundational, TierApplied}
	default:
		pattern = []Tier{TierApplied, TierAdvanced, TierAdvanced, TierApplied, TierAdvanced}
	}
	count = ClampCount(count)
	return append([]Tier(nil), pattern[:count]...)
}

// ParseTier maps the words models use for difficulty to a tier.
func ParseTier(s string) (Tier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "foundational", "basic", "beginner", "easy", "junior", "entry":
		return TierFoundational, true
	case "applied", "intermediate", "medium", "mid", "middle":
		return TierApplied, true
	case "advanced", "hard", "expert", "senior", "difficult":
		return TierAdvanced, true
	}
	return "", false
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
