package report

import (
	"strings"
	"testing"

	"github.com/vanderheijden86/fixboard/pkg/model"
	"github.com/vanderheijden86/fixboard/pkg/testutil"
)

// TestNormalizeGeneratedCorpus runs a seeded corpus with a high missing-field
// rate through the normalizer and checks the row-level invariants hold
// everywhere: sentinels in place, one comment sentence per defaulted column,
// and no degraded rows since the generator always emits a project reference.
func TestNormalizeGeneratedCorpus(t *testing.T) {
	issues := testutil.GenerateIssues(200, testutil.GeneratorConfig{
		Seed:       42,
		KeyPrefix:  "OPS",
		MissingPct: 0.4,
	})

	for _, issue := range issues {
		row := Normalize(issue)

		if row.Key == model.UnknownKey {
			t.Fatalf("issue %s degraded unexpectedly: %q", issue.Key, row.Comments)
		}
		for _, col := range []model.Column{model.ColSummary, model.ColType,
			model.ColStatus, model.ColFixVersion, model.ColITPortal} {
			sentence := "Error: " + string(col) + " is missing. "
			defaulted := row.Get(col) == model.NotUpdated
			commented := strings.Contains(row.Comments, sentence)
			if defaulted != commented {
				t.Errorf("issue %s column %q: defaulted=%v commented=%v (comments %q)",
					issue.Key, col, defaulted, commented, row.Comments)
			}
		}
		if strings.Contains(row.Comments, string(model.ColCATScope)) {
			t.Errorf("issue %s: CAT Scope must never appear in comments: %q",
				issue.Key, row.Comments)
		}
	}
}

func BenchmarkNormalize(b *testing.B) {
	issues := testutil.GenerateIssues(100, testutil.GeneratorConfig{
		Seed:       7,
		KeyPrefix:  "OPS",
		MissingPct: 0.2,
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Normalize(issues[i%len(issues)])
	}
}
