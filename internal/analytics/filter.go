// Package analytics implements the filter and aggregation engine the
// dashboard recomputes on every interaction. All functions are pure:
// they read a table and produce fresh values, never mutating input.
package analytics

import (
	"strings"
	"time"

	"costlens/internal/dataset"
)

// Constraints is the explicit, immutable filter state threaded through
// every recomputation. A constraint whose column the table does not
// carry is ignored. Empty sets mean "no restriction", matching the
// dashboard's default-select-all behavior: nothing selected shows
// everything, never nothing.
type Constraints struct {
	DateFrom  *time.Time
	DateTo    *time.Time
	Providers []string
	Resources []string
	Client    string
}

// Empty reports whether the constraints restrict nothing.
func (c Constraints) Empty() bool {
	return c.DateFrom == nil && c.DateTo == nil &&
		len(c.Providers) == 0 && len(c.Resources) == 0 && c.Client == ""
}

// Filter returns a new table holding the rows that satisfy every
// applicable constraint, preserving row order. Date bounds are
// inclusive; rows with a null Date are excluded whenever a date
// constraint is active.
func Filter(t *dataset.Table, c Constraints) *dataset.Table {
	dateCol, hasDate := t.Column(dataset.ColDate)
	applyDate := hasDate && (c.DateFrom != nil || c.DateTo != nil)

	providerCol, hasProvider := t.Column(dataset.ColCloudProvider)
	providerSet := membershipSet(c.Providers)
	applyProvider := hasProvider && providerSet != nil

	resourceCol, hasResource := t.Column(dataset.ColResourceType)
	resourceSet := membershipSet(c.Resources)
	applyResource := hasResource && resourceSet != nil

	clientCol, hasClient := t.Column(dataset.ColClient)
	applyClient := hasClient && c.Client != ""

	keep := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		if applyDate && !dateInRange(dateCol, i, c.DateFrom, c.DateTo) {
			continue
		}
		if applyProvider && !inSet(providerCol, i, providerSet) {
			continue
		}
		if applyResource && !inSet(resourceCol, i, resourceSet) {
			continue
		}
		if applyClient && !cellEquals(clientCol, i, c.Client) {
			continue
		}
		keep = append(keep, i)
	}
	return t.Select(keep)
}

func membershipSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func dateInRange(col *dataset.Column, i int, from, to *time.Time) bool {
	ts, ok := col.Time(i)
	if !ok {
		return false
	}
	if from != nil && ts.Before(*from) {
		return false
	}
	if to != nil && ts.After(*to) {
		return false
	}
	return true
}

func inSet(col *dataset.Column, i int, set map[string]struct{}) bool {
	s, ok := col.StringAt(i)
	if !ok {
		return false
	}
	_, member := set[s]
	return member
}

func cellEquals(col *dataset.Column, i int, want string) bool {
	s, ok := col.StringAt(i)
	return ok && strings.EqualFold(s, want)
}
