package usecase

import (
	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/github-constellation/internal/domain"
)

// summarize computes starred-list statistics. sizes holds one entry per
// processed stargazer.
func summarize(sizes []float64) domain.Summary {
	summary := domain.Summary{Processed: len(sizes)}
	if len(sizes) == 0 {
		return summary
	}
	data := stats.Float64Data(sizes)
	// The only error these return is for empty input, excluded above.
	summary.MeanStarred, _ = stats.Mean(data)
	summary.MedianStarred, _ = stats.Median(data)
	summary.MaxStarred, _ = stats.Max(data)
	return summary
}
