// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/naka-gawa/github-constellation/internal/domain"
)

// Fetcher lists stargazers and starred repositories. A limit of 0 means no limit.
type Fetcher interface {
	ListStargazers(ctx context.Context, repo domain.RepoID, limit int) ([]string, error)
	ListStarred(ctx context.Context, user string, limit int) ([]string, error)
}

// Options configures the HTTP client and the API backend.
type Options struct {
	Token      string
	APIURL     string
	GraphQLURL string
	Timeout    time.Duration
	// GraphQL selects the GraphQL API instead of REST.
	GraphQL bool
	// WaitRateLimit sleeps through secondary rate limits instead of failing.
	WaitRateLimit bool
}

// New builds the Fetcher selected by opts.
func New(opts Options, logger *zap.SugaredLogger) (Fetcher, error) {
	httpClient, err := NewHTTPClient(opts.Token, opts.Timeout, opts.WaitRateLimit)
	if err != nil {
		return nil, err
	}
	if opts.GraphQL {
		endpoint := opts.GraphQLURL
		if endpoint == "" {
			endpoint = graphQLEndpoint(opts.APIURL)
		}
		return NewGraphQLGateway(httpClient, endpoint, logger), nil
	}
	return NewGitHubGateway(httpClient, opts.APIURL, logger)
}

// graphQLEndpoint derives the GraphQL endpoint from a REST base URL.
// GitHub Enterprise serves REST under /api/v3 and GraphQL at /api/graphql.
func graphQLEndpoint(apiURL string) string {
	base := strings.TrimSuffix(strings.TrimSuffix(apiURL, "/"), "/v3")
	return base + "/graphql"
}

// NewHTTPClient returns a client that sends token as a bearer credential on
// every request.
func NewHTTPClient(token string, timeout time.Duration, waitRateLimit bool) (*http.Client, error) {
	if token == "" {
		return nil, errors.New("token must not be empty")
	}
	var base http.RoundTripper = http.DefaultTransport
	if waitRateLimit {
		rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create rate limit waiter")
		}
		base = rateLimitWaiter
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Base:   base,
			Source: ts,
		},
	}, nil
}

// GitHubGateway is the REST implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient *github.Client
	logger     *zap.SugaredLogger
}

// NewGitHubGateway creates a REST gateway. An empty apiURL keeps the public API.
func NewGitHubGateway(httpClient *http.Client, apiURL string, logger *zap.SugaredLogger) (*GitHubGateway, error) {
	client := github.NewClient(httpClient)
	if apiURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(apiURL, "/") + "/")
		if err != nil {
			return nil, errors.Wrapf(err, "invalid API URL %q", apiURL)
		}
		client.BaseURL = baseURL
	}
	return &GitHubGateway{
		restClient: client,
		logger:     logger,
	}, nil
}

func (g *GitHubGateway) ListStargazers(ctx context.Context, repo domain.RepoID, limit int) ([]string, error) {
	endpoint := fmt.Sprintf("repos/%s/%s/stargazers", repo.Owner, repo.Name)
	return fetchRecords(ctx, g, repo.String(), endpoint, limit, (*github.User).GetLogin)
}

func (g *GitHubGateway) ListStarred(ctx context.Context, user string, limit int) ([]string, error) {
	endpoint := fmt.Sprintf("users/%s/starred", user)
	return fetchRecords(ctx, g, user, endpoint, limit, (*github.Repository).GetFullName)
}

// fetchRecords pages through a REST listing of T records and keeps one string
// field of each.
func fetchRecords[T any](ctx context.Context, g *GitHubGateway, identifier, endpoint string, limit int, field func(*T) string) ([]string, error) {
	return collect(ctx, limit, func(ctx context.Context, page int) ([]string, error) {
		g.logger.Debugw("fetching page", "endpoint", endpoint, "page", page)
		u := fmt.Sprintf("%s?per_page=%d&page=%d", endpoint, PageSize, page)
		req, err := g.restClient.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build request for %s", identifier)
		}
		var records []*T
		resp, err := g.restClient.Do(ctx, req, &records)
		if err != nil {
			return nil, newFetchError(identifier, resp, err)
		}
		items := make([]string, 0, len(records))
		for _, record := range records {
			items = append(items, field(record))
		}
		return items, nil
	})
}
