// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// MaxPageSize is the largest page the GitHub search API will return.
const MaxPageSize = 100

// RawPullRequest is a pull request exactly as the search API returned it.
// Pointer fields are nil when the source omitted the value.
type RawPullRequest struct {
	ID           string
	Number       *githubv4.Int
	Title        string
	URL          string
	State        githubv4.PullRequestState
	CreatedAt    *githubv4.DateTime
	UpdatedAt    *githubv4.DateTime
	MergedAt     *githubv4.DateTime
	ClosedAt     *githubv4.DateTime
	IsDraft      *githubv4.Boolean
	Additions    *githubv4.Int
	Deletions    *githubv4.Int
	ChangedFiles *githubv4.Int
	Comments     struct {
		TotalCount *githubv4.Int
	}
	Repository struct {
		Name  string
		URL   string
		Owner struct {
			Login string
		}
	}
}

// Page is one batch of search results.
// Records holds nil for result nodes that were null or not pull requests.
type Page struct {
	Records     []*RawPullRequest
	HasNextPage bool
	EndCursor   string
}

// PageSource fetches a single page of pull requests starting after cursor.
// A nil cursor requests the first page.
type PageSource interface {
	FetchPage(ctx context.Context, cursor *string) (*Page, error)
}

// Options configures a GitHubGateway.
type Options struct {
	Subject        string
	PageSize       int
	GraphQLURL     string
	RESTBaseURL    string
	RateLimitSleep time.Duration
}

// GitHubGateway is the concrete implementation of the PageSource interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	subject       string
	pageSize      int
	logger        *zap.SugaredLogger
}

var _ PageSource = (*GitHubGateway)(nil)

// prSearchQuery fetches every field of the canonical pull request in one search page.
type prSearchQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Nodes []struct {
			Typename    string         `graphql:"__typename"`
			PullRequest RawPullRequest `graphql:"... on PullRequest"`
		}
	} `graphql:"search(query: $query, type: ISSUE, first: $first, after: $cursor)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, opts Options, logger *zap.SugaredLogger) (*GitHubGateway, error) {
	if opts.Subject == "" {
		return nil, errors.New("subject handle is required")
	}
	if opts.PageSize <= 0 || opts.PageSize > MaxPageSize {
		return nil, fmt.Errorf("page size must be between 1 and %d, got %d", MaxPageSize, opts.PageSize)
	}
	sleepLimit := opts.RateLimitSleep
	if sleepLimit <= 0 {
		sleepLimit = time.Hour
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(sleepLimit, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}

	restClient := github.NewClient(httpClient)
	if opts.RESTBaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(opts.RESTBaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("failed to parse REST base URL: %w", err)
		}
		restClient.BaseURL = base
	}
	graphqlClient := githubv4.NewClient(httpClient)
	if opts.GraphQLURL != "" {
		graphqlClient = githubv4.NewEnterpriseClient(opts.GraphQLURL, httpClient)
	}

	return &GitHubGateway{
		restClient:    restClient,
		graphqlClient: graphqlClient,
		subject:       opts.Subject,
		pageSize:      opts.PageSize,
		logger:        logger,
	}, nil
}

// SearchQuery returns the search expression used to find the subject's pull requests.
func (g *GitHubGateway) SearchQuery() string {
	return fmt.Sprintf("is:pr author:%s", g.subject)
}

// FetchPage runs one search query. It never retries; see WithRetry.
func (g *GitHubGateway) FetchPage(ctx context.Context, cursor *string) (*Page, error) {
	variables := map[string]interface{}{
		"query":  githubv4.String(g.SearchQuery()),
		"first":  githubv4.Int(g.pageSize),
		"cursor": (*githubv4.String)(nil),
	}
	if cursor != nil {
		variables["cursor"] = githubv4.NewString(githubv4.String(*cursor))
	}

	var q prSearchQuery
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to execute GraphQL search query: %w", err)
	}

	page := &Page{
		Records:     make([]*RawPullRequest, 0, len(q.Search.Nodes)),
		HasNextPage: q.Search.PageInfo.HasNextPage,
		EndCursor:   string(q.Search.PageInfo.EndCursor),
	}
	for i := range q.Search.Nodes {
		node := &q.Search.Nodes[i]
		if node.Typename != "PullRequest" {
			// Null placeholder for a record that became inaccessible.
			page.Records = append(page.Records, nil)
			continue
		}
		page.Records = append(page.Records, &node.PullRequest)
	}
	return page, nil
}

// CheckRateLimit logs the remaining REST and GraphQL quota.
func (g *GitHubGateway) CheckRateLimit(ctx context.Context) error {
	limits, _, err := g.restClient.RateLimit.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch rate limits with REST API: %w", err)
	}
	if core := limits.GetCore(); core != nil {
		g.logger.Infow("REST rate limit", "remaining", core.Remaining, "limit", core.Limit, "reset", core.Reset.Time)
	}
	if gql := limits.GetGraphQL(); gql != nil {
		g.logger.Infow("GraphQL rate limit", "remaining", gql.Remaining, "limit", gql.Limit, "reset", gql.Reset.Time)
	}
	return nil
}
