package collection

import (
	"maps"
	"slices"
	"strings"
)

// Collection is a schema definition with typed fields and validation rules.
type Collection struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	DisplayName string           `json:"displayName,omitempty"`
	Fields      map[string]Field `json:"fields,omitempty"`
	Rules       []string         `json:"rules,omitempty"`
}

// Title returns the display name if set, otherwise the resource name.
func (c Collection) Title() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

// RouteKey returns the last path segment of the resource name, which is the
// key the console routes on ("collections/users" -> "users").
func (c Collection) RouteKey() string {
	if i := strings.LastIndex(c.Name, "/"); i >= 0 {
		return c.Name[i+1:]
	}
	return c.Name
}

// Matches reports whether a reference fragment names this collection: the
// resource name contains it or the display name equals it.
func (c Collection) Matches(fragment string) bool {
	return strings.Contains(c.Name, fragment) || c.DisplayName == fragment
}

// FieldNames returns the field names in sorted order.
func (c Collection) FieldNames() []string {
	return slices.Sorted(maps.Keys(c.Fields))
}

// References returns the names of reference-typed fields in sorted order.
func (c Collection) References() []string {
	var refs []string
	for _, name := range c.FieldNames() {
		if c.Fields[name].IsReference() {
			refs = append(refs, name)
		}
	}
	return refs
}

// IDs extracts the ID of each collection, preserving order.
func IDs(cs []Collection) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}

// Dedupe drops collections with an empty ID or an ID that was already seen.
// The first occurrence wins and input order is preserved.
func Dedupe(cs []Collection) []Collection {
	seen := make(map[string]bool, len(cs))
	out := make([]Collection, 0, len(cs))
	for _, c := range cs {
		if c.ID == "" || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}
