package analytics

import (
	"sort"
	"strings"

	"costlens/internal/dataset"
)

// ClientNames returns the distinct non-null client names in ascending
// order, or nil when the table carries no Client column.
func ClientNames(t *dataset.Table) []string {
	c, ok := t.Column(dataset.ColClient)
	if !ok {
		return nil
	}
	seen := map[string]struct{}{}
	var names []string
	for i := 0; i < c.Len(); i++ {
		name, present := c.StringAt(i)
		if !present {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SearchClients filters a sorted name list by case-insensitive
// substring match. An empty query returns the list unfiltered.
func SearchClients(names []string, query string) []string {
	if query == "" {
		return names
	}
	q := strings.ToLower(query)
	var matched []string
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), q) {
			matched = append(matched, name)
		}
	}
	return matched
}
