package models

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// StringList is a list of strings that tolerates loosely-typed catalog input.
// Upstream catalogs deliver fields like genres and authors either as a
// comma-separated string or as a JSON array; both decode to a canonical
// ordered []string here so downstream code never re-checks shape.
type StringList []string

// UnmarshalJSON accepts a JSON array of strings, a single (possibly
// comma-separated) string, null, or a number. Anything else decodes to nil
// rather than failing the whole catalog load.
func (l *StringList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*l = nil

		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			*l = nil

			return nil //nolint:nilerr // malformed field normalizes to empty, never raises
		}

		out := make(StringList, 0, len(raw))
		for _, item := range raw {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				// Non-string element (number, object): keep its literal form.
				s = strings.Trim(string(item), `"`)
			}

			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}

		*l = out

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Bare number or other scalar.
		if f, ferr := strconv.ParseFloat(trimmed, 64); ferr == nil {
			*l = StringList{strconv.FormatFloat(f, 'f', -1, 64)}

			return nil
		}

		*l = nil

		return nil //nolint:nilerr // malformed field normalizes to empty, never raises
	}

	*l = SplitList(s)

	return nil
}

// SplitList splits a comma-separated string into trimmed non-empty parts.
func SplitList(s string) StringList {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make(StringList, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

// Book is an immutable catalog record. Produced by the ingestion pipeline,
// consumed read-only by the recommendation core.
type Book struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Authors     StringList `json:"authors"`
	Genres      StringList `json:"genres"`
	Description string     `json:"description"`
	Tags        StringList `json:"tags"`
	Rating      float64    `json:"rating"`

	// ClusterID is set only on the enriched copy owned by the cluster cache.
	ClusterID *int `json:"cluster_id,omitempty"`
}
