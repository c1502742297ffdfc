package report

import (
	"context"

	"github.com/vanderheijden86/fixboard/pkg/debug"
	"github.com/vanderheijden86/fixboard/pkg/jira"
	"github.com/vanderheijden86/fixboard/pkg/metrics"
	"github.com/vanderheijden86/fixboard/pkg/model"
)

// Searcher is the one upstream operation the table builder needs. Satisfied
// by *jira.Client.
type Searcher interface {
	SearchIssues(ctx context.Context, projectKey, versionName string) ([]jira.Issue, error)
}

// Build assembles the issue table for the cross product of the given project
// keys and version names, both iterated in caller-supplied order (projects
// outer, versions inner). Rows keep each search's response order; there is no
// deduplication and no parallelism. A search failure aborts the build and
// propagates; a per-issue extraction failure only degrades that row.
func Build(ctx context.Context, s Searcher, projectKeys, versionNames []string) (model.Table, error) {
	defer metrics.Timer(metrics.BuildTable)()

	var table model.Table
	for _, projectKey := range projectKeys {
		for _, versionName := range versionNames {
			issues, err := s.SearchIssues(ctx, projectKey, versionName)
			if err != nil {
				return nil, err
			}
			debug.Log("search %s / %s: %d issues", projectKey, versionName, len(issues))
			for _, issue := range issues {
				table = append(table, Normalize(issue))
			}
		}
	}
	return table, nil
}
