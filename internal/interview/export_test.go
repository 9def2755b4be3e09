package interview

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportedSession() *Session {
	s := sessionIn(PhaseAssessing, 1)
	s.Assessment.Answers[0] = "Lists are mutable, tuples are not."
	s.Profile.TechStack = append(s.Profile.TechStack, "Docker", "Haskell")
	s.record(SpeakerAssistant, "Question 1 of 3", testNow)
	s.record(SpeakerCandidate, "Lists are mutable, tuples are not.", testNow)
	return s
}

func TestExportIsDeterministic(t *testing.T) {
	s := exportedSession()

	var first, second bytes.Buffer
	require.NoError(t, Export(s).Encode(&first))
	require.NoError(t, Export(s).Encode(&second))

	assert.Equal(t, first.String(), second.String())

	out := first.String()
	keys := []string{`"session_id"`, `"phase"`, `"ended_reason"`, `"created_at"`, `"updated_at"`, `"ended_at"`,
		`"candidate"`, `"tech_categories"`, `"assessment"`, `"transcript"`}
	last := -1
	for _, key := range keys {
		idx := strings.Index(out, key)
		require.NotEqual(t, -1, idx, "missing key %s", key)
		assert.Greater(t, idx, last, "key %s out of order", key)
		last = idx
	}
}

func TestExportContent(t *testing.T) {
	doc := Export(exportedSession())

	assert.Nil(t, doc.EndedAt)
	require.Len(t, doc.Assessment, 3)
	assert.True(t, doc.Assessment[0].Answered)
	assert.Equal(t, 1, doc.Assessment[0].Number)
	assert.Equal(t, "Lists are mutable, tuples are not.", doc.Assessment[0].Answer)
	assert.False(t, doc.Assessment[1].Answered)
	assert.Empty(t, doc.Assessment[1].Answer)

	assert.Equal(t, []TechCategory{
		{Category: "Programming Languages", Technologies: []string{"Python"}},
		{Category: "Frontend Frameworks", Technologies: []string{"React"}},
		{Category: "DevOps Tools", Technologies: []string{"Docker"}},
		{Category: "Other", Technologies: []string{"Haskell"}},
	}, doc.TechCategories)
	assert.Len(t, doc.Transcript, 2)
}

func TestExportOfFreshSessionHasEmptyLists(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(NewSession("fresh", testNow)).Encode(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, []any{}, decoded["assessment"])
	assert.Equal(t, []any{}, decoded["transcript"])
	assert.Equal(t, []any{}, decoded["tech_categories"])
	assert.Nil(t, decoded["ended_at"])
}

func TestWriteExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	s := exportedSession()

	name, err := WriteExport(s, dir)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(name))
	assert.True(t, strings.HasPrefix(filepath.Base(name), "interview_s-1_"))

	data, err := os.ReadFile(name)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "s-1", doc.SessionID)
	assert.Equal(t, "Jane Doe", doc.Candidate.FullName)
	assert.Len(t, doc.Assessment, 3)
}
