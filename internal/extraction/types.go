package extraction

import "github.com/spigell/hh-screener/internal/candidate"

// Confidence tells the caller how much an extracted value can be trusted.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// Source names where a value came from.
type Source string

const (
	SourcePattern Source = "pattern"
	SourceFocus   Source = "focus"
	SourceService Source = "service"
)

// Value is a raw, not yet validated, field value.
type Value struct {
	Raw        string
	Items      []string
	Confidence Confidence
	Source     Source
}

// Request is one candidate message to extract fields from.
type Request struct {
	Text string
	// Fields are the fields the caller is interested in; usually the missing set.
	Fields []candidate.Field
	// Focus is the field the previous prompt asked for, if any.
	Focus   candidate.Field
	Known   candidate.Profile
	History []string
	// PatternsOnly skips the completion service.
	PatternsOnly bool
}

// Result is a partial mapping of fields found in the message.
type Result struct {
	Values map[candidate.Field]Value
	// Low lists requested free-form fields the service could not resolve.
	Low []candidate.Field
	// Consulted is set when the completion service was called.
	Consulted bool
	// Failed is set when the completion service call or its reply failed.
	// Focus guesses are dropped then, only pattern matches remain.
	Failed bool
	// Offline is set when no completion service is configured.
	Offline bool
}

// Empty reports whether nothing was found.
func (r Result) Empty() bool {
	return len(r.Values) == 0
}
