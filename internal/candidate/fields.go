package candidate

import "strings"

// Field identifies one piece of candidate data tracked by the profile.
type Field string

const (
	FieldName       Field = "full_name"
	FieldEmail      Field = "email"
	FieldPhone      Field = "phone"
	FieldExperience Field = "years_experience"
	FieldPosition   Field = "desired_position"
	FieldLocation   Field = "location"
	FieldTechStack  Field = "tech_stack"
)

// Priority is the order in which missing fields are asked for.
var Priority = []Field{
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldExperience,
	FieldPosition,
	FieldLocation,
	FieldTechStack,
}

var labels = map[Field]string{
	FieldName:       "full name",
	FieldEmail:      "email address",
	FieldPhone:      "phone number",
	FieldExperience: "years of experience",
	FieldPosition:   "desired position",
	FieldLocation:   "location",
	FieldTechStack:  "tech stack",
}

// aliases are the keys a completion service tends to use instead of ours.
var aliases = map[string]Field{
	"name":             FieldName,
	"fullname":         FieldName,
	"full_name":        FieldName,
	"email":            FieldEmail,
	"email_address":    FieldEmail,
	"phone":            FieldPhone,
	"phone_number":     FieldPhone,
	"experience":       FieldExperience,
	"experience_years": FieldExperience,
	"years_experience": FieldExperience,
	"position":         FieldPosition,
	"desired_position": FieldPosition,
	"role":             FieldPosition,
	"location":         FieldLocation,
	"city":             FieldLocation,
	"tech_stack":       FieldTechStack,
	"techstack":        FieldTechStack,
	"technologies":     FieldTechStack,
	"skills":           FieldTechStack,
}

// Label returns a human readable name of the field.
func (f Field) Label() string {
	if label, ok := labels[f]; ok {
		return label
	}
	return strings.ReplaceAll(string(f), "_", " ")
}

// IsText reports whether the field holds free-form text.
func (f Field) IsText() bool {
	return f == FieldName || f == FieldPosition || f == FieldLocation
}

// ParseField maps a loosely spelled key to a known field.
func ParseField(key string) (Field, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	field, ok := aliases[key]
	return field, ok
}
