package candidate

import (
	"strconv"
	"strings"
)

// Profile is the structured data collected from one candidate.
// An empty string or nil pointer means the field was not provided yet.
type Profile struct {
	FullName        string   `json:"full_name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	YearsExperience *float64 `json:"years_experience"`
	DesiredPosition string   `json:"desired_position"`
	Location        string   `json:"location"`
	TechStack       []string `json:"tech_stack"`
}

// Has reports whether the field holds a value.
func (p *Profile) Has(field Field) bool {
	switch field {
	case FieldName:
		return p.FullName != ""
	case FieldEmail:
		return p.Email != ""
	case FieldPhone:
		return p.Phone != ""
	case FieldExperience:
		return p.YearsExperience != nil
	case FieldPosition:
		return p.DesiredPosition != ""
	case FieldLocation:
		return p.Location != ""
	case FieldTechStack:
		return len(p.TechStack) > 0
	}
	return false
}

// Missing returns the fields without a value, in Priority order.
func (p *Profile) Missing() []Field {
	var missing []Field
	for _, field := range Priority {
		if !p.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// Complete reports whether every field holds a value.
func (p *Profile) Complete() bool {
	return len(p.Missing()) == 0
}

// Value renders the field for display. Absent fields render as an empty string.
func (p *Profile) Value(field Field) string {
	switch field {
	case FieldName:
		return p.FullName
	case FieldEmail:
		return p.Email
	case FieldPhone:
		return p.Phone
	case FieldExperience:
		if p.YearsExperience == nil {
			return ""
		}
		return FormatYears(*p.YearsExperience)
	case FieldPosition:
		return p.DesiredPosition
	case FieldLocation:
		return p.Location
	case FieldTechStack:
		return strings.Join(p.TechStack, ", ")
	}
	return ""
}

// Years returns the experience or zero when absent.
func (p *Profile) Years() float64 {
	if p.YearsExperience == nil {
		return 0
	}
	return *p.YearsExperience
}

// Set stores an already validated value and reports whether the profile changed.
// The tech stack is merged, not replaced.
func (p *Profile) Set(field Field, normalized string) bool {
	if field == FieldTechStack {
		return len(p.MergeTech(SplitTech(normalized))) > 0
	}

	if p.Value(field) == normalized {
		return false
	}

	switch field {
	case FieldName:
		p.FullName = normalized
	case FieldEmail:
		p.Email = normalized
	case FieldPhone:
		p.Phone = normalized
	case FieldExperience:
		years, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			return false
		}
		p.YearsExperience = &years
	case FieldPosition:
		p.DesiredPosition = normalized
	case FieldLocation:
		p.Location = normalized
	default:
		return false
	}
	return true
}

// MergeTech appends technologies not yet in the stack and returns the added ones.
func (p *Profile) MergeTech(items []string) []string {
	var added []string
	for _, tech := range CanonicalizeTech(items) {
		if containsFold(p.TechStack, tech) {
			continue
		}
		p.TechStack = append(p.TechStack, tech)
		added = append(added, tech)
	}
	return added
}

// Snapshot reports which fields are filled, keyed by field name.
func (p *Profile) Snapshot() map[string]bool {
	snapshot := make(map[string]bool, len(Priority))
	for _, field := range Priority {
		snapshot[string(field)] = p.Has(field)
	}
	return snapshot
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	clone := p
	if p.YearsExperience != nil {
		years := *p.YearsExperience
		clone.YearsExperience = &years
	}
	if p.TechStack != nil {
		clone.TechStack = append([]string(nil), p.TechStack...)
	}
	return clone
}
