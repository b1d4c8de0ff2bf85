// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-constellation/internal/domain"
	"github.com/naka-gawa/github-constellation/internal/gateway"
)

// Options controls a single aggregation run.
type Options struct {
	// Limit caps both the stargazer list and every starred list. 0 means no limit.
	Limit int
	// Top is the number of ranked repositories in the report.
	Top int
	// Delay is the pause between two stargazers.
	Delay time.Duration
	// ExcludeSelf drops the analysed repository from the ranking.
	ExcludeSelf bool
}

// Aggregator is the use case for ranking the repositories starred by the
// stargazers of a repository. Stargazers are processed one at a time.
type Aggregator struct {
	fetcher gateway.Fetcher
	logger  *zap.SugaredLogger
	out     io.Writer
	opts    Options
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewAggregator creates a new Aggregator instance. Progress lines are written to out.
func NewAggregator(fetcher gateway.Fetcher, logger *zap.SugaredLogger, out io.Writer, opts Options) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		logger:  logger,
		out:     out,
		opts:    opts,
		sleep:   sleepContext,
	}
}

// Aggregate parses repoURL, lists its stargazers and counts the repositories
// each of them starred.
//
// A failure to list the stargazers aborts the run. A failure for a single
// stargazer, or a cancelled context during the pause, is reported, stops the
// loop, and the report is built from the stargazers processed before it.
func (a *Aggregator) Aggregate(ctx context.Context, repoURL string) (*domain.Report, error) {
	repo, err := domain.ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "Processing repository: %s\n", repo)

	stargazers, err := a.fetcher.ListStargazers(ctx, repo, a.opts.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch stargazers")
	}
	fmt.Fprintf(a.out, "Found %d stargazers for repository %s.\n", len(stargazers), repo)
	a.logger.Infow("stargazers fetched", "repo", repo.String(), "count", len(stargazers), "limit", a.opts.Limit)

	counter := domain.NewStarCounter()
	report := &domain.Report{
		Repository: repo.String(),
		Stargazers: len(stargazers),
	}
	var sizes []float64

	for i, user := range stargazers {
		if i > 0 {
			if err := a.sleep(ctx, a.opts.Delay); err != nil {
				fmt.Fprintf(a.out, "Stopped before %s: %v\n", user, err)
				a.logger.Errorw("stopping after interrupted pause", "user", user, "processed", i, "err", err)
				report.Halted = user
				break
			}
		}
		fmt.Fprintf(a.out, "Fetching starred repositories for %s...\n", user)
		starred, err := a.fetcher.ListStarred(ctx, user, a.opts.Limit)
		if err != nil {
			fmt.Fprintf(a.out, "Error fetching stars for %s: %v\n", user, err)
			a.logger.Errorw("stopping after failed fetch", "user", user, "processed", i, "err", err)
			report.Halted = user
			break
		}
		counter.Add(starred...)
		sizes = append(sizes, float64(len(starred)))
		fmt.Fprintf(a.out, "%s has starred %d repositories.\n", user, len(starred))
	}

	report.Top = a.rank(counter, repo)
	report.Summary = summarize(sizes)
	a.logger.Infow("aggregation complete", "repo", repo.String(), "distinct", counter.Len(), "processed", report.Summary.Processed)
	return report, nil
}

func (a *Aggregator) rank(counter *domain.StarCounter, repo domain.RepoID) []domain.RepoCount {
	if !a.opts.ExcludeSelf {
		return counter.MostCommon(a.opts.Top)
	}
	ranked := make([]domain.RepoCount, 0, a.opts.Top)
	for _, entry := range counter.MostCommon(0) {
		if entry.Name == repo.String() {
			continue
		}
		ranked = append(ranked, entry)
		if a.opts.Top > 0 && len(ranked) == a.opts.Top {
			break
		}
	}
	return ranked
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
