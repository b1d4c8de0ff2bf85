package domain

import "sort"

// StarCounter is the star count table: repository identifier to the number of
// stargazers that starred it. Counts only grow for the lifetime of a run.
// The zero value is not usable; use NewStarCounter.
type StarCounter struct {
	counts map[string]int
	order  []string // first-seen order, used to break ties
}

// NewStarCounter returns an empty table.
func NewStarCounter() *StarCounter {
	return &StarCounter{counts: make(map[string]int)}
}

// Add increments the count of every given identifier by one.
func (c *StarCounter) Add(ids ...string) {
	for _, id := range ids {
		if _, ok := c.counts[id]; !ok {
			c.order = append(c.order, id)
		}
		c.counts[id]++
	}
}

// Count returns the current count for id.
func (c *StarCounter) Count(id string) int {
	return c.counts[id]
}

// Len returns the number of distinct identifiers seen.
func (c *StarCounter) Len() int {
	return len(c.order)
}

// MostCommon returns the n entries with the highest counts, highest first.
// Entries with equal counts keep the order in which they were first added.
// A non-positive n returns every entry.
func (c *StarCounter) MostCommon(n int) []RepoCount {
	entries := make([]RepoCount, 0, len(c.order))
	for _, id := range c.order {
		entries = append(entries, RepoCount{Name: id, Count: c.counts[id]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
