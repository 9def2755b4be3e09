package candidate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// canonicalTech maps lower-cased spellings to the canonical technology name.
var canonicalTech = map[string]string{
	"python":        "Python",
	"py":            "Python",
	"python3":       "Python",
	"javascript":    "JavaScript",
	"js":            "JavaScript",
	"ecmascript":    "JavaScript",
	"typescript":    "TypeScript",
	"ts":            "TypeScript",
	"java":          "Java",
	"go":            "Go",
	"golang":        "Go",
	"rust":          "Rust",
	"ruby":          "Ruby",
	"php":           "PHP",
	"kotlin":        "Kotlin",
	"swift":         "Swift",
	"scala":         "Scala",
	"c#":            "C#",
	"csharp":        "C#",
	"c sharp":       "C#",
	"c++":           "C++",
	"cpp":           "C++",
	"c":             "C",
	"dart":          "Dart",
	"r":             "R",
	"react":         "React",
	"reactjs":       "React",
	"react.js":      "React",
	"angular":       "Angular",
	"angularjs":     "Angular",
	"vue":           "Vue.js",
	"vuejs":         "Vue.js",
	"vue.js":        "Vue.js",
	"svelte":        "Svelte",
	"next.js":       "Next.js",
	"nextjs":        "Next.js",
	"html":          "HTML",
	"css":           "CSS",
	"node":          "Node.js",
	"nodejs":        "Node.js",
	"node.js":       "Node.js",
	"express":       "Express.js",
	"expressjs":     "Express.js",
	"express.js":    "Express.js",
	"django":        "Django",
	"flask":         "Flask",
	"fastapi":       "FastAPI",
	"spring":        "Spring",
	"spring boot":   "Spring Boot",
	"springboot":    "Spring Boot",
	"rails":         "Ruby on Rails",
	"ruby on rails": "Ruby on Rails",
	"laravel":       "Laravel",
	".net":          ".NET",
	"dotnet":        ".NET",
	"asp.net":       "ASP.NET",
	"gin":           "Gin",
	"sql":           "SQL",
	"postgres":      "PostgreSQL",
	"postgresql":    "PostgreSQL",
	"psql":          "PostgreSQL",
	"mysql":         "MySQL",
	"sqlite":        "SQLite",
	"mongo":         "MongoDB",
	"mongodb":       "MongoDB",
	"redis":         "Redis",
	"elasticsearch": "Elasticsearch",
	"cassandra":     "Cassandra",
	"dynamodb":      "DynamoDB",
	"oracle":        "Oracle",
	"aws":           "AWS",
	"amazon web services": "AWS",
	"gcp":             "Google Cloud",
	"google cloud":    "Google Cloud",
	"azure":           "Microsoft Azure",
	"microsoft azure": "Microsoft Azure",
	"docker":          "Docker",
	"kubernetes":      "Kubernetes",
	"k8s":             "Kubernetes",
	"terraform":       "Terraform",
	"ansible":         "Ansible",
	"jenkins":         "Jenkins",
	"git":             "Git",
	"github actions":  "GitHub Actions",
	"gitlab ci":       "GitLab CI",
	"kafka":           "Kafka",
	"rabbitmq":        "RabbitMQ",
	"graphql":         "GraphQL",
	"react native":    "React Native",
	"flutter":         "Flutter",
	"android":         "Android",
	"ios":             "iOS",
	"linux":           "Linux",
}

// Categories groups canonical technologies. The order of keys in CategoryOrder is
// the order used when rendering.
var Categories = map[string][]string{
	"Programming Languages": {"Python", "JavaScript", "TypeScript", "Java", "Go", "Rust", "Ruby", "PHP", "Kotlin", "Swift", "Scala", "C#", "C++", "C", "Dart", "R", "SQL"},
	"Frontend Frameworks":   {"React", "Angular", "Vue.js", "Svelte", "Next.js", "HTML", "CSS"},
	"Backend Frameworks":    {"Node.js", "Express.js", "Django", "Flask", "FastAPI", "Spring", "Spring Boot", "Ruby on Rails", "Laravel", ".NET", "ASP.NET", "Gin", "GraphQL"},
	"Databases":             {"PostgreSQL", "MySQL", "SQLite", "MongoDB", "Redis", "Elasticsearch", "Cassandra", "DynamoDB", "Oracle"},
	"Cloud Platforms":       {"AWS", "Google Cloud", "Microsoft Azure"},
	"DevOps Tools":          {"Docker", "Kubernetes", "Terraform", "Ansible", "Jenkins", "Git", "GitHub Actions", "GitLab CI", "Kafka", "RabbitMQ", "Linux"},
	"Mobile Development":    {"React Native", "Flutter", "Android", "iOS"},
}

var CategoryOrder = []string{
	"Programming Languages",
	"Frontend Frameworks",
	"Backend Frameworks",
	"Databases",
	"Cloud Platforms",
	"DevOps Tools",
	"Mobile Development",
}

const otherCategory = "Other"

var categoryOf = func() map[string]string {
	index := make(map[string]string)
	for category, techs := range Categories {
		for _, tech := range techs {
			index[tech] = category
		}
	}
	return index
}()

// ambiguous spellings are plain English words and only count when listed explicitly.
var ambiguous = map[string]bool{
	"go": true, "c": true, "r": true, "express": true, "spring": true, "swift": true,
	"node": true, "rails": true, "oracle": true, "gin": true, "sql": true, "ts": true,
	"js": true, "py": true, "ios": true, "dart": true, "rust": true, "ruby": true,
}

var techSeparators = regexp.MustCompile(`(?i)\s*(?:,|;|/|\||&|\n|\band\b|\bplus\b)\s*`)

const maxTechItemRunes = 40

// SplitTech splits a free-text technology list into trimmed items.
func SplitTech(raw string) []string {
	parts := techSeparators.Split(raw, -1)
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(strings.TrimSpace(part), ".!?\"'`()[]")
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		items = append(items, part)
	}
	return items
}

// Canonical returns the canonical spelling of a technology.
// Unknown lower-case names get their first letter upper-cased; anything else is kept as typed.
func Canonical(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}

	if canonical, ok := canonicalTech[strings.ToLower(name)]; ok {
		return canonical
	}

	if name == strings.ToLower(name) && !strings.ContainsRune(name, ' ') {
		r, size := utf8.DecodeRuneInString(name)
		return string(unicode.ToUpper(r)) + name[size:]
	}

	return name
}

// CanonicalizeTech canonicalizes the items and drops case-insensitive duplicates,
// preserving the first occurrence order.
func CanonicalizeTech(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		canonical := Canonical(item)
		if canonical == "" || utf8.RuneCountInString(canonical) > maxTechItemRunes {
			continue
		}
		if !hasLetter(canonical) || containsFold(result, canonical) {
			continue
		}
		result = append(result, canonical)
	}
	return result
}

// ScanTech finds well-known technologies mentioned anywhere in the text.
// Spellings that double as English words are skipped.
func ScanTech(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.')
	})
	for i := range tokens {
		tokens[i] = strings.TrimRight(tokens[i], ".")
	}

	var found []string
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) {
			if canonical, ok := canonicalTech[tokens[i]+" "+tokens[i+1]]; ok {
				found = appendUnique(found, canonical)
				i++
				continue
			}
		}
		if ambiguous[tokens[i]] {
			continue
		}
		if canonical, ok := canonicalTech[tokens[i]]; ok {
			found = appendUnique(found, canonical)
		}
	}
	return found
}

// Category returns the category of a canonical technology name.
func Category(tech string) string {
	if category, ok := categoryOf[tech]; ok {
		return category
	}
	return otherCategory
}

// Categorize groups the stack by category; technologies outside the table land in "Other".
func Categorize(stack []string) map[string][]string {
	result := make(map[string][]string)
	for _, tech := range stack {
		category := Category(tech)
		result[category] = append(result[category], tech)
	}
	return result
}

func appendUnique(items []string, item string) []string {
	if containsFold(items, item) {
		return items
	}
	return append(items, item)
}

func containsFold(items []string, item string) bool {
	for _, existing := range items {
		if strings.EqualFold(existing, item) {
			return true
		}
	}
	return false
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
