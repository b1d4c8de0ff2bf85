package usecase

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-constellation/internal/domain"
	"github.com/naka-gawa/github-constellation/internal/gateway"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) ListStargazers(ctx context.Context, repo domain.RepoID, limit int) ([]string, error) {
	args := m.Called(ctx, repo, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockFetcher) ListStarred(ctx context.Context, user string, limit int) ([]string, error) {
	args := m.Called(ctx, user, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

var testRepo = domain.RepoID{Owner: "alice", Name: "bob"}

func newTestAggregator(fetcher gateway.Fetcher, opts Options) (*Aggregator, *bytes.Buffer, *[]time.Duration) {
	out := &bytes.Buffer{}
	aggregator := NewAggregator(fetcher, zap.NewNop().Sugar(), out, opts)
	var pauses []time.Duration
	aggregator.sleep = func(_ context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}
	return aggregator, out, &pauses
}

func TestAggregator_Aggregate(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListStargazers", mock.Anything, testRepo, 100).Return([]string{"A", "B"}, nil)
	fetcher.On("ListStarred", mock.Anything, "A", 100).Return([]string{"X", "Y"}, nil)
	fetcher.On("ListStarred", mock.Anything, "B", 100).Return([]string{"Y", "Z"}, nil)

	aggregator, out, pauses := newTestAggregator(fetcher, Options{Limit: 100, Top: 10, Delay: time.Second})

	report, err := aggregator.Aggregate(context.Background(), "https://github.com/alice/bob")

	require.NoError(t, err)
	assert.Equal(t, &domain.Report{
		Repository: "alice/bob",
		Stargazers: 2,
		Top: []domain.RepoCount{
			{Name: "Y", Count: 2},
			{Name: "X", Count: 1},
			{Name: "Z", Count: 1},
		},
		Summary: domain.Summary{Processed: 2, MeanStarred: 2, MedianStarred: 2, MaxStarred: 2},
	}, report)
	assert.Equal(t, []time.Duration{time.Second}, *pauses, "pause only between stargazers")
	assert.Equal(t, "Processing repository: alice/bob\n"+
		"Found 2 stargazers for repository alice/bob.\n"+
		"Fetching starred repositories for A...\n"+
		"A has starred 2 repositories.\n"+
		"Fetching starred repositories for B...\n"+
		"B has starred 2 repositories.\n", out.String())
	fetcher.AssertExpectations(t)
}

func TestAggregator_Aggregate_InvalidURL(t *testing.T) {
	fetcher := new(mockFetcher)
	aggregator, out, _ := newTestAggregator(fetcher, Options{Top: 10})

	report, err := aggregator.Aggregate(context.Background(), "https://example.com/alice/bob")

	assert.Nil(t, report)
	assert.True(t, errors.Is(err, domain.ErrInvalidFormat))
	assert.Empty(t, out.String())
	fetcher.AssertNotCalled(t, "ListStargazers", mock.Anything, mock.Anything, mock.Anything)
}

func TestAggregator_Aggregate_StargazersNotFound(t *testing.T) {
	fetcher := new(mockFetcher)
	notFound := &gateway.FetchError{Identifier: "alice/bob", StatusCode: http.StatusNotFound}
	fetcher.On("ListStargazers", mock.Anything, testRepo, 0).Return(nil, notFound)

	aggregator, out, _ := newTestAggregator(fetcher, Options{Top: 10})

	report, err := aggregator.Aggregate(context.Background(), "https://github.com/alice/bob")

	assert.Nil(t, report)
	var fetchErr *gateway.FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
	assert.NotContains(t, out.String(), "Fetching starred repositories")
	fetcher.AssertNotCalled(t, "ListStarred", mock.Anything, mock.Anything, mock.Anything)
}

func TestAggregator_Aggregate_HaltsOnUserFailure(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListStargazers", mock.Anything, testRepo, 0).Return([]string{"u1", "u2", "u3", "u4", "u5"}, nil)
	fetcher.On("ListStarred", mock.Anything, "u1", 0).Return([]string{"r/a", "r/b"}, nil)
	fetcher.On("ListStarred", mock.Anything, "u2", 0).Return([]string{"r/b", "r/c", "r/d", "r/e"}, nil)
	fetcher.On("ListStarred", mock.Anything, "u3", 0).Return(nil, &gateway.FetchError{Identifier: "u3", StatusCode: http.StatusForbidden})

	aggregator, out, _ := newTestAggregator(fetcher, Options{Top: 10})

	report, err := aggregator.Aggregate(context.Background(), "https://github.com/alice/bob")

	require.NoError(t, err)
	assert.Equal(t, "u3", report.Halted)
	assert.Equal(t, 5, report.Stargazers)
	assert.Equal(t, []domain.RepoCount{
		{Name: "r/b", Count: 2},
		{Name: "r/a", Count: 1},
		{Name: "r/c", Count: 1},
		{Name: "r/d", Count: 1},
		{Name: "r/e", Count: 1},
	}, report.Top)
	assert.Equal(t, domain.Summary{Processed: 2, MeanStarred: 3, MedianStarred: 3, MaxStarred: 4}, report.Summary)
	assert.Contains(t, out.String(), "Error fetching stars for u3: failed to fetch u3: HTTP 403\n")
	fetcher.AssertNotCalled(t, "ListStarred", mock.Anything, "u4", mock.Anything)
	fetcher.AssertNotCalled(t, "ListStarred", mock.Anything, "u5", mock.Anything)
}

func TestAggregator_Aggregate_TopAndExcludeSelf(t *testing.T) {
	testCases := []struct {
		name     string
		opts     Options
		expected []domain.RepoCount
	}{
		{
			name:     "top 1 keeps the analysed repository",
			opts:     Options{Top: 1},
			expected: []domain.RepoCount{{Name: "alice/bob", Count: 3}},
		},
		{
			name: "exclude self",
			opts: Options{Top: 2, ExcludeSelf: true},
			expected: []domain.RepoCount{
				{Name: "x/y", Count: 2},
				{Name: "x/z", Count: 1},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			fetcher.On("ListStargazers", mock.Anything, testRepo, 0).Return([]string{"u1", "u2", "u3"}, nil)
			fetcher.On("ListStarred", mock.Anything, "u1", 0).Return([]string{"alice/bob", "x/y"}, nil)
			fetcher.On("ListStarred", mock.Anything, "u2", 0).Return([]string{"alice/bob", "x/y", "x/z"}, nil)
			fetcher.On("ListStarred", mock.Anything, "u3", 0).Return([]string{"alice/bob"}, nil)

			aggregator, _, _ := newTestAggregator(fetcher, tc.opts)

			report, err := aggregator.Aggregate(context.Background(), "https://github.com/alice/bob")

			require.NoError(t, err)
			assert.Equal(t, tc.expected, report.Top)
		})
	}
}

func TestAggregator_Aggregate_NoStargazers(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListStargazers", mock.Anything, testRepo, 0).Return([]string{}, nil)

	aggregator, _, pauses := newTestAggregator(fetcher, Options{Top: 10})

	report, err := aggregator.Aggregate(context.Background(), "https://github.com/alice/bob")

	require.NoError(t, err)
	assert.Empty(t, report.Top)
	assert.Equal(t, domain.Summary{}, report.Summary)
	assert.Empty(t, *pauses)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), 0))
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

func TestAggregator_Aggregate_KeepsPartialTableWhenPauseInterrupted(t *testing.T) {
	fetcher := new(mockFetcher)
	fetcher.On("ListStargazers", mock.Anything, testRepo, 0).Return([]string{"u1", "u2", "u3"}, nil)
	fetcher.On("ListStarred", mock.Anything, "u1", 0).Return([]string{"r/a", "r/b"}, nil)

	aggregator, out, _ := newTestAggregator(fetcher, Options{Top: 10, Delay: time.Second})
	aggregator.sleep = func(context.Context, time.Duration) error {
		return context.Canceled
	}

	report, err := aggregator.Aggregate(context.Background(), "https://github.com/alice/bob")

	require.NoError(t, err)
	assert.Equal(t, "u2", report.Halted)
	assert.Equal(t, []domain.RepoCount{{Name: "r/a", Count: 1}, {Name: "r/b", Count: 1}}, report.Top)
	assert.Equal(t, 1, report.Summary.Processed)
	assert.Contains(t, out.String(), "Stopped before u2: context canceled\n")
	fetcher.AssertNotCalled(t, "ListStarred", mock.Anything, "u2", mock.Anything)
	fetcher.AssertNotCalled(t, "ListStarred", mock.Anything, "u3", mock.Anything)
}
