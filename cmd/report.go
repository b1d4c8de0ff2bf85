package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/naka-gawa/github-constellation/internal/domain"
)

func writeText(w io.Writer, report *domain.Report, top int) {
	fmt.Fprintf(w, "\nTop %d most starred repositories by stargazers:\n", top)
	for _, entry := range report.Top {
		fmt.Fprintf(w, "%s: %d stargazers\n", entry.Name, entry.Count)
	}
	s := report.Summary
	fmt.Fprintf(w, "\nStargazers processed: %d of %d (starred repositories per stargazer: mean %.1f, median %.1f, max %.0f)\n",
		s.Processed, report.Stargazers, s.MeanStarred, s.MedianStarred, s.MaxStarred)
}

func writeJSON(w io.Writer, report *domain.Report) error {
	// Marshal the results into a pretty-printed JSON string.
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal results to JSON")
	}
	fmt.Fprintln(w, string(jsonData))
	return nil
}
