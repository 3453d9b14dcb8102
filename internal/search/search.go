// Package search filters in-memory lists the way the list screens do: a
// case-insensitive substring query intersected with one categorical filter.
package search

import (
	"strings"

	"github.com/sadopc/bondvault/internal/store"
)

// All is the filter value that matches every category.
const All = "All"

func noFilter(f string) bool {
	return f == "" || f == All
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

// Contacts keeps contacts whose first name, last name or relation type
// contains query and whose relation type equals relation.
func Contacts(list []store.Contact, query, relation string) []store.Contact {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]store.Contact, 0, len(list))
	for _, c := range list {
		if !noFilter(relation) && c.RelationType != relation {
			continue
		}
		if q != "" && !contains(c.FirstName, q) && !contains(c.LastName, q) && !contains(c.RelationType, q) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Timeline keeps entries whose notes or contact name contain query and whose
// interaction type equals typ.
func Timeline(list []store.TimelineEntry, query, typ string) []store.TimelineEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]store.TimelineEntry, 0, len(list))
	for _, e := range list {
		if !noFilter(typ) && string(e.Type) != typ {
			continue
		}
		if q != "" && !contains(e.Notes, q) && !contains(e.ContactName(), q) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Relations returns the filter choices for a contact list: All, then the
// suggested relation types, then any custom labels found in list.
func Relations(list []store.Contact) []string {
	seen := map[string]bool{}
	out := []string{All}
	for _, r := range store.RelationTypes {
		seen[r] = true
		out = append(out, r)
	}
	for _, c := range list {
		if c.RelationType != "" && !seen[c.RelationType] {
			seen[c.RelationType] = true
			out = append(out, c.RelationType)
		}
	}
	return out
}
