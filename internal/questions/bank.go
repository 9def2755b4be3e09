package questions

import "strings"

// bank holds static questions keyed by canonical technology name.
var bank = map[string]map[Tier][]string{
	"Python": {
		TierFoundational: {
			"What is the difference between a list and a tuple in Python, and when would you use each?",
			"How do Python virtual environments work and why would you use one?",
		},
		TierApplied: {
			"How would you profile and speed up a slow Python function that processes a large file?",
			"Explain how decorators work in Python and describe one you have written.",
		},
		TierAdvanced: {
			"How does the GIL affect CPU-bound and IO-bound workloads, and how have you worked around it?",
			"Describe how you would structure a large Python codebase so that it stays testable and typed.",
		},
	},
	"JavaScript": {
		TierFoundational: {
			"What is the difference between let, const and var in JavaScript?",
			"Explain how `this` is determined in a JavaScript function.",
		},
		TierApplied: {
			"How do promises and async/await relate to each other? Describe how you handle errors with them.",
			"Explain event delegation and a situation where you used it.",
		},
		TierAdvanced: {
			"Walk through how the JavaScript event loop schedules microtasks and macrotasks.",
			"How would you find and fix a memory leak in a long-running JavaScript application?",
		},
	},
	"TypeScript": {
		TierFoundational: {
			"What is the difference between an interface and a type alias in TypeScript?",
		},
		TierApplied: {
			"How do you use generics and utility types to keep an API layer type-safe?",
		},
		TierAdvanced: {
			"Describe a case where you used conditional or mapped types to model a complex domain.",
		},
	},
	"Java": {
		TierFoundational: {
			"What is the difference between an abstract class and an interface in Java?",
		},
		TierApplied: {
			"How do equals and hashCode interact with HashMap, and what goes wrong if they disagree?",
		},
		TierAdvanced: {
			"How would you diagnose a Java service that suffers from long garbage collection pauses?",
		},
	},
	"Go": {
		TierFoundational: {
			"What is the difference between a slice and an array in Go?",
			"How do errors work in Go and how do you add context to them?",
		},
		TierApplied: {
			"How do you use context.Context to cancel work spread over several goroutines?",
			"When would you choose a channel over a mutex in Go?",
		},
		TierAdvanced: {
			"How would you track down a goroutine leak in a production Go service?",
			"Describe how you would design a worker pool with backpressure and graceful shutdown in Go.",
		},
	},
	"C#": {
		TierFoundational: {
			"What is the difference between a class and a struct in C#?",
		},
		TierApplied: {
			"How does async/await work in C#, and what causes deadlocks with it?",
		},
		TierAdvanced: {
			"How would you reduce allocations in a hot path of a .NET service?",
		},
	},
	"React": {
		TierFoundational: {
			"What is the difference between props and state in React?",
			"Why do list items in React need a key?",
		},
		TierApplied: {
			"How do you decide between local state, context and an external store in a React app?",
			"Explain the dependency array of useEffect and a bug you have seen caused by it.",
		},
		TierAdvanced: {
			"How would you find and fix unnecessary re-renders in a large React application?",
		},
	},
	"Vue.js": {
		TierFoundational: {
			"What is the difference between computed properties and watchers in Vue?",
		},
		TierApplied: {
			"How do you share state between components in a Vue application?",
		},
		TierAdvanced: {
			"Explain how Vue's reactivity system tracks dependencies.",
		},
	},
	"Angular": {
		TierFoundational: {
			"What is dependency injection in Angular and how do you provide a service?",
		},
		TierApplied: {
			"How do you manage subscriptions to observables to avoid leaks in Angular components?",
		},
		TierAdvanced: {
			"How does Angular change detection work and when would you switch to OnPush?",
		},
	},
	"Node.js": {
		TierFoundational: {
			"What does it mean that Node.js is single-threaded, and how does it still handle many requests?",
		},
		TierApplied: {
			"How do you handle errors and unhandled promise rejections in a Node.js service?",
		},
		TierAdvanced: {
			"How would you deal with a CPU-heavy task in a Node.js API without blocking other requests?",
		},
	},
	"Django": {
		TierFoundational: {
			"Describe the request/response cycle of a Django application.",
		},
		TierApplied: {
			"How do you find and fix N+1 queries in the Django ORM?",
		},
		TierAdvanced: {
			"How would you run a schema migration on a large Django table without downtime?",
		},
	},
	"Spring Boot": {
		TierFoundational: {
			"What does auto-configuration do in Spring Boot?",
		},
		TierApplied: {
			"How do transactions work with @Transactional, and when does it not apply?",
		},
		TierAdvanced: {
			"How would you make a Spring Boot service resilient to a slow downstream dependency?",
		},
	},
	"SQL": {
		TierFoundational: {
			"What is the difference between INNER JOIN and LEFT JOIN?",
		},
		TierApplied: {
			"How do you read a query plan to decide which index to add?",
		},
		TierAdvanced: {
			"Explain transaction isolation levels and an anomaly each one prevents.",
		},
	},
	"PostgreSQL": {
		TierFoundational: {
			"What types of indexes does PostgreSQL offer and when would you use a non-B-tree index?",
		},
		TierApplied: {
			"How would you investigate a PostgreSQL query that suddenly became slow?",
		},
		TierAdvanced: {
			"How do MVCC and VACUUM interact in PostgreSQL, and what happens when autovacuum falls behind?",
		},
	},
	"MySQL": {
		TierFoundational: {
			"What is the difference between the InnoDB and MyISAM storage engines?",
		},
		TierApplied: {
			"How do you design a composite index for a query that filters and sorts?",
		},
		TierAdvanced: {
			"How would you set up and monitor replication in MySQL, and how do you handle replication lag?",
		},
	},
	"MongoDB": {
		TierFoundational: {
			"When would you embed a document in MongoDB and when would you reference it?",
		},
		TierApplied: {
			"How do you design indexes for a MongoDB collection queried by several fields?",
		},
		TierAdvanced: {
			"How do you choose a shard key in MongoDB, and what problems does a bad one cause?",
		},
	},
	"Redis": {
		TierFoundational: {
			"What data structures does Redis provide and what is each typically used for?",
		},
		TierApplied: {
			"How would you implement a cache-aside strategy with Redis and handle invalidation?",
		},
		TierAdvanced: {
			"How would you implement a distributed lock with Redis and what are its failure modes?",
		},
	},
	"Docker": {
		TierFoundational: {
			"What is the difference between a Docker image and a container?",
		},
		TierApplied: {
			"How do you keep Docker images small and builds fast?",
		},
		TierAdvanced: {
			"How would you debug a container that works locally but crashes in production?",
		},
	},
	"Kubernetes": {
		TierFoundational: {
			"What is the difference between a Pod, a Deployment and a Service in Kubernetes?",
		},
		TierApplied: {
			"How do readiness and liveness probes differ, and how do you configure them?",
		},
		TierAdvanced: {
			"How would you roll out a risky change to a Kubernetes workload and roll it back safely?",
		},
	},
	"AWS": {
		TierFoundational: {
			"What is the difference between EC2, Lambda and ECS, and when would you pick each?",
		},
		TierApplied: {
			"How do you grant an application least-privilege access to S3 with IAM?",
		},
		TierAdvanced: {
			"How would you design a highly available service across AWS availability zones?",
		},
	},
}

// generic questions work for any role; {role} is replaced with the desired position.
var generic = []struct {
	tier Tier
	text string
}{
	{TierFoundational, "What does a typical working day look like for you as {role}?"},
	{TierFoundational, "Which tools and practices do you rely on to keep your code quality high?"},
	{TierApplied, "Describe a recent project you worked on as {role}. What was your part in it?"},
	{TierApplied, "Tell me about a bug that was hard to find. How did you track it down?"},
	{TierAdvanced, "Describe a technical decision you made that you would make differently today, and why."},
	{TierAdvanced, "How do you approach designing a system that has to grow ten times in load?"},
}

// Fallback returns a question for tech when the bank has nothing else.
func Fallback(tech string) string {
	return "Can you explain your experience with " + tech + " and describe a project where you used it?"
}

type filler struct {
	techs    []string
	next     int
	used     map[string]bool
	position string
}

func newFiller(stack []string, position string, existing []Question) *filler {
	f := &filler{used: make(map[string]bool), position: position}
	for _, tech := range stack {
		if _, ok := bank[tech]; ok {
			f.techs = append(f.techs, tech)
		}
	}
	for _, q := range existing {
		f.used[normalizeText(q.Text)] = true
	}
	return f
}

// pick returns the next unused question, rotating across technologies.
func (f *filler) pick(tier Tier) Question {
	for attempt := 0; attempt < len(f.techs); attempt++ {
		idx := (f.next + attempt) % len(f.techs)
		tech := f.techs[idx]
		if text, got, ok := f.fromTech(tech, tier); ok {
			f.next = (idx + 1) % len(f.techs)
			return Question{Text: text, Technology: tech, Tier: got, Source: SourceBank}
		}
	}
	return f.fromGeneric(tier)
}

func (f *filler) fromTech(tech string, tier Tier) (string, Tier, bool) {
	for _, t := range tierPreference(tier) {
		for _, text := range bank[tech][t] {
			if f.take(text) {
				return text, t, true
			}
		}
	}
	return "", "", false
}

func (f *filler) fromGeneric(tier Tier) Question {
	role := strings.TrimSpace(f.position)
	if role == "" {
		role = "an engineer"
	}
	for _, t := range tierPreference(tier) {
		for _, g := range generic {
			if g.tier != t {
				continue
			}
			text := strings.ReplaceAll(g.text, "{role}", role)
			if f.take(text) {
				return Question{Text: text, Tier: t, Source: SourceGeneric}
			}
		}
	}
	// Only reachable if more than len(generic) questions are needed.
	text := Fallback(role)
	f.take(text)
	return Question{Text: text, Tier: tier, Source: SourceGeneric}
}

func (f *filler) take(text string) bool {
	key := normalizeText(text)
	if f.used[key] {
		return false
	}
	f.used[key] = true
	return true
}

func tierPreference(tier Tier) []Tier {
	switch tier {
	case TierFoundational:
		return []Tier{TierFoundational, TierApplied, TierAdvanced}
	case TierAdvanced:
		return []Tier{TierAdvanced, TierApplied, TierFoundational}
	default:
		return []Tier{TierApplied, TierFoundational, TierAdvanced}
	}
}
