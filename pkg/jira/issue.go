package jira

import (
	"github.com/goccy/go-json"
)

// Issue is one raw search result. Fields stays semi-structured because the
// set of populated fields varies per issue and per site (custom fields are
// keyed by internal IDs); the report package extracts what it needs with
// per-field fallbacks.
type Issue struct {
	Key    string                     `json:"key"`
	Fields map[string]json.RawMessage `json:"fields"`
}

// Custom field IDs used by the reporting schema.
const (
	FieldCATScope = "customfield_10079"
	FieldITPortal = "customfield_10065"
)
