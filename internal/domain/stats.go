// Package domain contains the core data structures and domain logic for the application.
package domain

// RepoCount is one row of the ranking: a repository and how many of the
// analysed stargazers starred it.
type RepoCount struct {
	Name  string `json:"name"`
	Count int    `json:"stargazers"`
}

// Summary describes the starred-list sizes of the stargazers that were processed.
type Summary struct {
	Processed     int     `json:"processed"`
	MeanStarred   float64 `json:"mean_starred"`
	MedianStarred float64 `json:"median_starred"`
	MaxStarred    float64 `json:"max_starred"`
}

// Report is the result of a single run.
type Report struct {
	Repository string      `json:"repository"`
	Stargazers int         `json:"stargazers"`
	Top        []RepoCount `json:"top"`
	Summary    Summary     `json:"summary"`
	// Halted names the stargazer at which the run stopped early: its fetch failed
	// or the pause before it was interrupted.
	Halted string `json:"halted_at,omitempty"`
}
