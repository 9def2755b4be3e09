package candidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"python":      "Python",
		"  JS ":       "JavaScript",
		"golang":      "Go",
		"k8s":         "Kubernetes",
		"Spring  Boot": "Spring Boot",
		"postgres":    "PostgreSQL",
		"c#":          "C#",
		"elixir":      "Elixir",
		"SvelteKit":   "SvelteKit",
		"":            "",
	}

	for input, want := range tests {
		assert.Equal(t, want, Canonical(input), "input %q", input)
	}
}

func TestSplitTech(t *testing.T) {
	t.Parallel()

	got := SplitTech("Python, React and Node.js; Docker/K8s | AWS & Terraform\nRedis.")
	assert.Equal(t, []string{"Python", "React", "Node.js", "Docker", "K8s", "AWS", "Terraform", "Redis"}, got)
}

func TestCanonicalizeTechDeduplicates(t *testing.T) {
	t.Parallel()

	got := CanonicalizeTech([]string{"Python", "python", "py", "React", "reactjs", "???"})
	assert.Equal(t, []string{"Python", "React"}, got)
}

func TestScanTechSkipsAmbiguousWords(t *testing.T) {
	t.Parallel()

	got := ScanTech("I go to the office and build services with Golang, PostgreSQL and React Native.")
	assert.Equal(t, []string{"Go", "PostgreSQL", "React Native"}, got)
}

func TestCategorize(t *testing.T) {
	t.Parallel()

	got := Categorize([]string{"Python", "React", "PostgreSQL", "Elixir"})
	assert.Equal(t, []string{"Python"}, got["Programming Languages"])
	assert.Equal(t, []string{"React"}, got["Frontend Frameworks"])
	assert.Equal(t, []string{"PostgreSQL"}, got["Databases"])
	assert.Equal(t, []string{"Elixir"}, got["Other"])
}
