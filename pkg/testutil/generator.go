// Package testutil provides deterministic raw-issue fixture generators for
// pipeline tests. All generators are seeded so failures reproduce exactly.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/fixboard/pkg/jira"
)

// GeneratorConfig controls issue generation.
type GeneratorConfig struct {
	Seed       int64   // Random seed for determinism
	KeyPrefix  string  // Prefix for issue keys (default: "TEST")
	ProjectKey string  // Project key for every issue (default: KeyPrefix)
	FixVersion string  // Fix version for every issue (default: "1.0")
	MissingPct float64 // Probability per optional field of being absent
}

var issueTypes = []string{"Story", "Defect", "Epic", "Task"}

var statuses = []string{"Open", "In Progress", "Done", "Blocked"}

var catScopes = []string{"In Scope", "Out of Scope"}

// GenerateIssues produces n raw issues with the configured share of missing
// optional fields. The project reference is always present; the generator
// never produces rows that would degrade.
func GenerateIssues(n int, cfg GeneratorConfig) []jira.Issue {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "TEST"
	}
	if cfg.ProjectKey == "" {
		cfg.ProjectKey = cfg.KeyPrefix
	}
	if cfg.FixVersion == "" {
		cfg.FixVersion = "1.0"
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	issues := make([]jira.Issue, 0, n)
	for i := 0; i < n; i++ {
		fields := map[string]json.RawMessage{
			"project": rawJSON(map[string]any{"key": cfg.ProjectKey}),
		}
		if rng.Float64() >= cfg.MissingPct {
			fields["summary"] = rawJSON(fmt.Sprintf("Generated issue %d", i+1))
		}
		if rng.Float64() >= cfg.MissingPct {
			fields["issuetype"] = rawJSON(map[string]any{"name": pick(rng, issueTypes)})
		}
		if rng.Float64() >= cfg.MissingPct {
			fields["status"] = rawJSON(map[string]any{"name": pick(rng, statuses)})
		}
		if rng.Float64() >= cfg.MissingPct {
			fields["fixVersions"] = rawJSON([]map[string]any{{"name": cfg.FixVersion}})
		}
		if rng.Float64() >= cfg.MissingPct {
			fields[jira.FieldCATScope] = rawJSON(map[string]any{"value": pick(rng, catScopes)})
		}
		if rng.Float64() >= cfg.MissingPct {
			fields[jira.FieldITPortal] = rawJSON(fmt.Sprintf("SR-%d", rng.Intn(900)+100))
		}

		issues = append(issues, jira.Issue{
			Key:    fmt.Sprintf("%s-%d", cfg.KeyPrefix, i+1),
			Fields: fields,
		})
	}
	return issues
}

func rawJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}
