package gateway

import (
	"context"
	"net/http"

	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"

	"github.com/naka-gawa/github-constellation/internal/domain"
)

// GraphQLGateway is the GraphQL implementation of the Fetcher interface.
type GraphQLGateway struct {
	graphqlClient *githubv4.Client
	logger        *zap.SugaredLogger
}

type pageInfo struct {
	HasNextPage bool
	EndCursor   githubv4.String
}

type stargazersQuery struct {
	Repository struct {
		Stargazers struct {
			PageInfo pageInfo
			Nodes    []struct {
				Login string
			}
		} `graphql:"stargazers(first: $first, after: $cursor)"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

type starredQuery struct {
	User struct {
		StarredRepositories struct {
			PageInfo pageInfo
			Nodes    []struct {
				NameWithOwner string
			}
		} `graphql:"starredRepositories(first: $first, after: $cursor)"`
	} `graphql:"user(login: $login)"`
}

// NewGraphQLGateway creates a GraphQL gateway that talks to endpoint.
func NewGraphQLGateway(httpClient *http.Client, endpoint string, logger *zap.SugaredLogger) *GraphQLGateway {
	return &GraphQLGateway{
		graphqlClient: githubv4.NewEnterpriseClient(endpoint, httpClient),
		logger:        logger,
	}
}

func (g *GraphQLGateway) ListStargazers(ctx context.Context, repo domain.RepoID, limit int) ([]string, error) {
	return collect(ctx, limit, g.cursorPages(repo.String(), func(ctx context.Context, cursor *githubv4.String) ([]string, pageInfo, error) {
		var q stargazersQuery
		variables := map[string]interface{}{
			"owner":  githubv4.String(repo.Owner),
			"name":   githubv4.String(repo.Name),
			"first":  githubv4.Int(PageSize),
			"cursor": cursor,
		}
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, pageInfo{}, err
		}
		conn := q.Repository.Stargazers
		logins := make([]string, 0, len(conn.Nodes))
		for _, node := range conn.Nodes {
			logins = append(logins, node.Login)
		}
		return logins, conn.PageInfo, nil
	}))
}

func (g *GraphQLGateway) ListStarred(ctx context.Context, user string, limit int) ([]string, error) {
	return collect(ctx, limit, g.cursorPages(user, func(ctx context.Context, cursor *githubv4.String) ([]string, pageInfo, error) {
		var q starredQuery
		variables := map[string]interface{}{
			"login":  githubv4.String(user),
			"first":  githubv4.Int(PageSize),
			"cursor": cursor,
		}
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, pageInfo{}, err
		}
		conn := q.User.StarredRepositories
		names := make([]string, 0, len(conn.Nodes))
		for _, node := range conn.Nodes {
			names = append(names, node.NameWithOwner)
		}
		return names, conn.PageInfo, nil
	}))
}

// cursorPages adapts a cursor-paginated query to a pageFunc. Once the server
// reports no further pages, the next call yields an empty page.
func (g *GraphQLGateway) cursorPages(identifier string, query func(ctx context.Context, cursor *githubv4.String) ([]string, pageInfo, error)) pageFunc {
	var (
		cursor *githubv4.String
		done   bool
	)
	return func(ctx context.Context, page int) ([]string, error) {
		if done {
			return nil, nil
		}
		g.logger.Debugw("fetching page", "identifier", identifier, "page", page)
		items, info, err := query(ctx, cursor)
		if err != nil {
			return nil, &FetchError{Identifier: identifier, Err: err}
		}
		done = !info.HasNextPage
		cursor = githubv4.NewString(info.EndCursor)
		return items, nil
	}
}
