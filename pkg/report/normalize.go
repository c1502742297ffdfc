// Package report flattens raw Jira search results into the fixed-schema
// issue table and derives the headline counts from it.
//
// Each field of a row is produced by an independent extractor with its own
// fallback, so a half-filled issue still yields a complete row; only an
// extraction failure (malformed structure where an object was expected)
// degrades the whole row.
package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/fixboard/pkg/debug"
	"github.com/vanderheijden86/fixboard/pkg/jira"
	"github.com/vanderheijden86/fixboard/pkg/metrics"
	"github.com/vanderheijden86/fixboard/pkg/model"
)

// degradedPrefix opens the Comments entry of a row whose extraction failed.
const degradedPrefix = "Error in normalization: "

func missingSentence(col model.Column) string {
	return fmt.Sprintf("Error: %s is missing. ", col)
}

// rawFields is the semi-structured field map of one issue.
type rawFields map[string]json.RawMessage

// present reports whether the key exists with a non-null value. Jira
// serializes unset fields either by omitting them or as explicit null.
func (f rawFields) present(key string) bool {
	raw, ok := f[key]
	if !ok {
		return false
	}
	return string(raw) != "null"
}

// stringField extracts a plain string field, falling back when absent.
func (f rawFields) stringField(key, fallback string) (string, bool, error) {
	if !f.present(key) {
		return fallback, true, nil
	}
	var s string
	if err := json.Unmarshal(f[key], &s); err != nil {
		return "", false, fmt.Errorf("field %s: %w", key, err)
	}
	return s, false, nil
}

// namedField extracts the "name" of a nested object field ({"name": ...}),
// falling back when the field or its name is absent.
func (f rawFields) namedField(key, fallback string) (string, bool, error) {
	if !f.present(key) {
		return fallback, true, nil
	}
	var obj struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(f[key], &obj); err != nil {
		return "", false, fmt.Errorf("field %s: %w", key, err)
	}
	if obj.Name == nil {
		return fallback, true, nil
	}
	return *obj.Name, false, nil
}

// firstFixVersion extracts the name of the first entry of the fixVersions
// list, falling back when the list is absent or empty. An entry without a
// name is malformed and fails the extraction.
func (f rawFields) firstFixVersion() (string, bool, error) {
	if !f.present("fixVersions") {
		return model.NotUpdated, true, nil
	}
	var versions []struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(f["fixVersions"], &versions); err != nil {
		return "", false, fmt.Errorf("field fixVersions: %w", err)
	}
	if len(versions) == 0 {
		return model.NotUpdated, true, nil
	}
	if versions[0].Name == nil {
		return "", false, errors.New("field fixVersions: first entry has no name")
	}
	return *versions[0].Name, false, nil
}

// projectKey extracts the project key. Unlike every other field this one has
// no fallback: an absent or malformed project reference fails the whole
// extraction, and a present-but-empty key passes through unchanged, which the
// sentinel check downstream will not catch. Deliberate, mirrors the
// historical behavior.
func (f rawFields) projectKey() (string, error) {
	if !f.present("project") {
		return "", errors.New("field project: missing")
	}
	var obj struct {
		Key *string `json:"key"`
	}
	if err := json.Unmarshal(f["project"], &obj); err != nil {
		return "", fmt.Errorf("field project: %w", err)
	}
	if obj.Key == nil {
		return "", errors.New("field project: no key")
	}
	return *obj.Key, nil
}

// catScope extracts the nested value of the CAT Scope custom field.
func (f rawFields) catScope() (string, bool, error) {
	if !f.present(jira.FieldCATScope) {
		return model.NotUpdated, true, nil
	}
	var obj struct {
		Value *string `json:"value"`
	}
	if err := json.Unmarshal(f[jira.FieldCATScope], &obj); err != nil {
		return "", false, fmt.Errorf("field %s: %w", jira.FieldCATScope, err)
	}
	if obj.Value == nil {
		return model.NotUpdated, true, nil
	}
	return *obj.Value, false, nil
}

// itPortal extracts the IT Portal / SR / CR custom field as-is, with no
// nested value unwrap. Non-string values are formatted verbatim.
func (f rawFields) itPortal() (string, bool, error) {
	if !f.present(jira.FieldITPortal) {
		return model.NotUpdated, true, nil
	}
	var v any
	if err := json.Unmarshal(f[jira.FieldITPortal], &v); err != nil {
		return "", false, fmt.Errorf("field %s: %w", jira.FieldITPortal, err)
	}
	if s, ok := v.(string); ok {
		return s, false, nil
	}
	return fmt.Sprintf("%v", v), false, nil
}

// Normalize flattens one raw issue into a row. Extraction never aborts the
// caller: a failure mid-extraction yields a degraded row carrying only the
// unknown-key sentinel and a Comments entry describing the failure.
func Normalize(issue jira.Issue) model.Row {
	defer metrics.Timer(metrics.Normalize)()

	row, err := extractRow(issue)
	if err != nil {
		return degradedRow(err)
	}
	return row
}

func extractRow(issue jira.Issue) (model.Row, error) {
	fields := rawFields(issue.Fields)

	key := issue.Key
	if key == "" {
		key = model.UnknownKey
	}

	summary, summaryDef, err := fields.stringField("summary", model.NotUpdated)
	if err != nil {
		return model.Row{}, err
	}
	issueType, typeDef, err := fields.namedField("issuetype", model.NotUpdated)
	if err != nil {
		return model.Row{}, err
	}
	status, statusDef, err := fields.namedField("status", model.NotUpdated)
	if err != nil {
		return model.Row{}, err
	}
	fixVersion, fixDef, err := fields.firstFixVersion()
	if err != nil {
		return model.Row{}, err
	}
	project, err := fields.projectKey()
	if err != nil {
		return model.Row{}, err
	}
	catScope, catDef, err := fields.catScope()
	if err != nil {
		return model.Row{}, err
	}
	itPortal, itDef, err := fields.itPortal()
	if err != nil {
		return model.Row{}, err
	}

	if debug.Enabled() {
		defaulted := 0
		for _, d := range []bool{summaryDef, typeDef, statusDef, fixDef, catDef, itDef} {
			if d {
				defaulted++
			}
		}
		debug.Log("normalize %s: %d defaulted fields", key, defaulted)
	}

	row := model.Row{
		Key:        key,
		Summary:    summary,
		Type:       issueType,
		Status:     status,
		FixVersion: fixVersion,
		Project:    project,
		CATScope:   catScope,
		ITPortal:   itPortal,
	}
	row.Comments = buildComments(row)
	return row, nil
}

// buildComments appends one error sentence per column stuck at its fallback
// sentinel, in fixed column order. CAT Scope is deliberately exempt from the
// check even though it can fall back.
func buildComments(row model.Row) string {
	var sb strings.Builder
	if row.Key == model.UnknownKey {
		sb.WriteString(missingSentence(model.ColKey))
	}
	if row.Summary == model.NotUpdated {
		sb.WriteString(missingSentence(model.ColSummary))
	}
	if row.Type == model.NotUpdated {
		sb.WriteString(missingSentence(model.ColType))
	}
	if row.Status == model.NotUpdated {
		sb.WriteString(missingSentence(model.ColStatus))
	}
	if row.FixVersion == model.NotUpdated {
		sb.WriteString(missingSentence(model.ColFixVersion))
	}
	if row.Project == model.NotUpdated {
		sb.WriteString(missingSentence(model.ColProject))
	}
	if row.ITPortal == model.NotUpdated {
		sb.WriteString(missingSentence(model.ColITPortal))
	}
	return sb.String()
}

// degradedRow is the complete-row fallback for a failed extraction. When the
// failure carries a structured upstream error payload, its message list is
// embedded instead of the raw error text.
func degradedRow(err error) model.Row {
	msg := err.Error()
	var httpErr *jira.HTTPError
	if errors.As(err, &httpErr) && len(httpErr.ErrorMessages) > 0 {
		msg = strings.Join(httpErr.ErrorMessages, ", ")
	}
	return model.Row{
		Key:      model.UnknownKey,
		Comments: degradedPrefix + msg,
	}
}
