package candidate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPhoneMinDigits = 7
	DefaultPhoneMaxDigits = 15
	DefaultMaxExperience  = 60
	DefaultMaxTextRunes   = 120
)

// ValidationError explains why a raw value was rejected.
// Reason is phrased so it can be shown to the candidate as is.
type ValidationError struct {
	Field  Field
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field Field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

var (
	validate = validator.New()

	domainPattern     = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?)*\.[A-Za-z]{2,}$`)
	phoneSeparators   = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "", "\t", "")
	experienceNumber  = regexp.MustCompile(`(-?\d+(?:[.,]\d+)?)`)
	experienceOnlyNum = regexp.MustCompile(`^\s*(-?\d+(?:[.,]\d+)?)\s*\+?\s*(?:(?:years?|yrs?|y)\b.*)?$`)
)

var numberWords = map[string]float64{
	"zero": 0, "no": 0, "none": 0, "one": 1, "a": 1, "an": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11,
	"twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15, "sixteen": 16,
	"seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20, "thirty": 30,
	"forty": 40, "fifty": 50,
}

// ValidateEmail checks the local@domain.tld shape and returns the address lower-cased.
func ValidateEmail(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	value = strings.Trim(value, "<>.,;")
	if value == "" {
		return "", invalid(FieldEmail, "the email address is empty")
	}

	at := strings.LastIndex(value, "@")
	if at <= 0 {
		return "", invalid(FieldEmail, "it is missing the @ sign or the part before it")
	}

	domain := value[at+1:]
	if domain == "" {
		return "", invalid(FieldEmail, "it is missing the domain after @")
	}
	if !domainPattern.MatchString(domain) {
		return "", invalid(FieldEmail, "the domain %q does not look like a real domain (e.g. example.com)", domain)
	}

	if err := validate.Var(value, "required,email"); err != nil {
		return "", invalid(FieldEmail, "it does not look like a valid email address (e.g. john@example.com)")
	}

	return strings.ToLower(value), nil
}

// ValidatePhone strips common separators and checks the digit count.
// A leading + is kept in the normalized value.
func ValidatePhone(raw string, minDigits, maxDigits int) (string, error) {
	if minDigits <= 0 {
		minDigits = DefaultPhoneMinDigits
	}
	if maxDigits < minDigits {
		maxDigits = DefaultPhoneMaxDigits
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return "", invalid(FieldPhone, "the phone number is empty")
	}

	plus := strings.HasPrefix(value, "+")
	digits := phoneSeparators.Replace(strings.TrimPrefix(value, "+"))
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return "", invalid(FieldPhone, "it should contain only digits and separators like spaces, dashes or brackets")
		}
	}

	switch n := len(digits); {
	case n < minDigits:
		return "", invalid(FieldPhone, "it has %d digits, at least %d are expected", n, minDigits)
	case n > maxDigits:
		return "", invalid(FieldPhone, "it has %d digits, at most %d are expected", n, maxDigits)
	}

	if plus {
		return "+" + digits, nil
	}
	return digits, nil
}

// ValidateExperience parses numbers like "3", "2.5 yrs", "5+" or "five years".
func ValidateExperience(raw string, maxYears float64) (float64, error) {
	if maxYears <= 0 {
		maxYears = DefaultMaxExperience
	}

	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return 0, invalid(FieldExperience, "the number of years is empty")
	}

	years, ok := parseYears(value)
	if !ok {
		return 0, invalid(FieldExperience, "please give the number of years as a number, e.g. 3 or 2.5")
	}

	switch {
	case years < 0:
		return 0, invalid(FieldExperience, "years of experience can not be negative")
	case years > maxYears:
		return 0, invalid(FieldExperience, "%s years is more than the allowed %s", FormatYears(years), FormatYears(maxYears))
	case math.IsNaN(years) || math.IsInf(years, 0):
		return 0, invalid(FieldExperience, "please give the number of years as a number, e.g. 3 or 2.5")
	}

	return years, nil
}

func parseYears(value string) (float64, bool) {
	if m := experienceOnlyNum.FindStringSubmatch(value); m != nil {
		return parseNumber(m[1])
	}

	words := strings.FieldsFunc(value, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '+'
	})
	for i, word := range words {
		n, ok := numberWords[word]
		if !ok {
			continue
		}
		// "twenty five"
		if n >= 20 && i+1 < len(words) {
			if unit, ok := numberWords[words[i+1]]; ok && unit < 10 {
				n += unit
			}
		}
		// bare articles only count when followed by a unit
		if word == "a" || word == "an" || word == "no" {
			if i+1 >= len(words) || !strings.HasPrefix(words[i+1], "year") {
				continue
			}
		}
		return n, true
	}

	if m := experienceNumber.FindStringSubmatch(value); m != nil {
		return parseNumber(m[1])
	}

	return 0, false
}

func parseNumber(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatYears renders years without a trailing ".0".
func FormatYears(years float64) string {
	return strconv.FormatFloat(years, 'f', -1, 64)
}

// ValidateText checks a free-form field. Whitespace is collapsed in the returned value.
// reserved holds phrases the value must not be equal to (the exit lexicon).
func ValidateText(field Field, raw string, reserved []string) (string, error) {
	value := strings.Join(strings.Fields(raw), " ")
	value = strings.Trim(value, ".,;:!?\"'`")
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid(field, "the %s is empty", field.Label())
	}

	if utf8.RuneCountInString(value) > DefaultMaxTextRunes {
		return "", invalid(field, "the %s is too long, please keep it under %d characters", field.Label(), DefaultMaxTextRunes)
	}

	hasLetter := false
	for _, r := range value {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return "", invalid(field, "the %s should contain letters", field.Label())
	}

	for _, phrase := range reserved {
		if phrase = strings.TrimSpace(phrase); phrase != "" && strings.EqualFold(value, phrase) {
			return "", invalid(field, "%q can not be used as the %s", value, field.Label())
		}
	}

	return value, nil
}

// Rules holds the configurable bounds used by Validator.
type Rules struct {
	PhoneMinDigits int
	PhoneMaxDigits int
	MaxExperience  float64
	Reserved       []string
}

// DefaultRules returns the bounds used when nothing is configured.
func DefaultRules() Rules {
	return Rules{
		PhoneMinDigits: DefaultPhoneMinDigits,
		PhoneMaxDigits: DefaultPhoneMaxDigits,
		MaxExperience:  DefaultMaxExperience,
	}
}

// Validator binds the pure validators to configured rules.
type Validator struct {
	rules Rules
}

func NewValidator(rules Rules) *Validator {
	defaults := DefaultRules()
	if rules.PhoneMinDigits <= 0 {
		rules.PhoneMinDigits = defaults.PhoneMinDigits
	}
	if rules.PhoneMaxDigits <= 0 {
		rules.PhoneMaxDigits = defaults.PhoneMaxDigits
	}
	if rules.MaxExperience <= 0 {
		rules.MaxExperience = defaults.MaxExperience
	}
	return &Validator{rules: rules}
}

// Check validates a scalar field and returns its normalized string form.
// Tech stack entries go through CanonicalizeTech instead.
func (v *Validator) Check(field Field, raw string) (string, error) {
	switch field {
	case FieldEmail:
		return ValidateEmail(raw)
	case FieldPhone:
		return ValidatePhone(raw, v.rules.PhoneMinDigits, v.rules.PhoneMaxDigits)
	case FieldExperience:
		years, err := ValidateExperience(raw, v.rules.MaxExperience)
		if err != nil {
			return "", err
		}
		return FormatYears(years), nil
	case FieldName, FieldPosition, FieldLocation:
		return ValidateText(field, raw, v.rules.Reserved)
	case FieldTechStack:
		items := CanonicalizeTech(SplitTech(raw))
		if len(items) == 0 {
			return "", invalid(field, "please list at least one technology")
		}
		return strings.Join(items, ", "), nil
	default:
		return "", invalid(field, "unknown field")
	}
}
