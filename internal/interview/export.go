package interview

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spigell/hh-screener/internal/candidate"
	"github.com/spigell/hh-screener/internal/questions"
)

// Document is the archived form of a session. Every key is always present and
// ordered by the struct layout, so equal sessions encode to equal bytes.
type Document struct {
	SessionID      string             `json:"session_id"`
	Phase          Phase              `json:"phase"`
	EndedReason    EndReason          `json:"ended_reason"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	EndedAt        *time.Time         `json:"ended_at"`
	Candidate      candidate.Profile  `json:"candidate"`
	TechCategories []TechCategory     `json:"tech_categories"`
	Assessment     []ExportedQuestion `json:"assessment"`
	Transcript     []Turn             `json:"transcript"`
}

type TechCategory struct {
	Category     string   `json:"category"`
	Technologies []string `json:"technologies"`
}

// ExportedQuestion pairs a question with its answer. Answer is empty when unanswered.
type ExportedQuestion struct {
	Number     int              `json:"number"`
	Question   string           `json:"question"`
	Technology string           `json:"technology"`
	Tier       questions.Tier   `json:"tier"`
	Source     questions.Source `json:"source"`
	Answered   bool             `json:"answered"`
	Answer     string           `json:"answer"`
}

// Export builds the archive document of the session.
func Export(s *Session) Document {
	doc := Document{
		SessionID:      s.ID,
		Phase:          s.Phase,
		EndedReason:    s.EndedReason,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		Candidate:      s.Profile.Clone(),
		TechCategories: []TechCategory{},
		Assessment:     []ExportedQuestion{},
		Transcript:     append([]Turn{}, s.History...),
	}
	if !s.EndedAt.IsZero() {
		ended := s.EndedAt
		doc.EndedAt = &ended
	}
	if doc.Candidate.TechStack == nil {
		doc.Candidate.TechStack = []string{}
	}

	groups := candidate.Categorize(s.Profile.TechStack)
	for _, category := range append(append([]string(nil), candidate.CategoryOrder...), "Other") {
		if techs := groups[category]; len(techs) > 0 {
			doc.TechCategories = append(doc.TechCategories, TechCategory{Category: category, Technologies: techs})
		}
	}

	for i, q := range s.Assessment.Questions {
		answer, answered := s.Assessment.Answers[i]
		doc.Assessment = append(doc.Assessment, ExportedQuestion{
			Number:     i + 1,
			Question:   q.Text,
			Technology: q.Technology,
			Tier:       q.Tier,
			Source:     q.Source,
			Answered:   answered,
			Answer:     answer,
		})
	}

	return doc
}

// Encode writes the indented document.
func (d Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode session %s: %w", d.SessionID, err)
	}
	return nil
}

// WriteExport stores the session document in dir, or in the system temp directory
// when dir is empty, and returns the file name.
func WriteExport(s *Session, dir string) (string, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create export dir: %w", err)
		}
	}

	file, err := os.CreateTemp(dir, fmt.Sprintf("interview_%s_*.json", s.ID))
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	if err := Export(s).Encode(file); err != nil {
		return "", err
	}
	return file.Name(), nil
}
