// Package gateway provides a gateway to the GitHub API, abstracting away
// the underlying REST client.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/georgepearse/github-metrics/internal/domain"
)

// reposPerPage is the fixed page size for repository listing.
const reposPerPage = 100

// Fetcher defines the behavior of a gateway for fetching account metrics
// from GitHub.
type Fetcher interface {
	FetchUserInfo(ctx context.Context) (domain.GitHubUser, error)
	FetchAllRepos(ctx context.Context, onlyPublic bool) ([]domain.GitHubRepo, error)
	FetchTotalStars(ctx context.Context, onlyPublic bool) (int, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	client   *github.Client
	username string
	logger   *zap.Logger
}

// NewGitHubGateway creates a gateway for the given account. The token is
// optional; without it requests run against the lower unauthenticated
// rate limits.
func NewGitHubGateway(username, token string, logger *zap.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}

	httpClient := &http.Client{Transport: rateLimitWaiter}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient.Transport = &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		}
	}

	return &GitHubGateway{
		client:   github.NewClient(httpClient),
		username: username,
		logger:   logger,
	}, nil
}

// FetchUserInfo fetches the account profile and returns its follower
// count. A single request, no retries.
func (g *GitHubGateway) FetchUserInfo(ctx context.Context) (domain.GitHubUser, error) {
	g.logger.Debug("fetching user info", zap.String("user", g.username))
	user, _, err := g.client.Users.Get(ctx, g.username)
	if err != nil {
		return domain.GitHubUser{}, fmt.Errorf("failed to fetch user %s: %w", g.username, err)
	}
	return domain.GitHubUser{
		Username:  g.username,
		Followers: user.GetFollowers(),
	}, nil
}

// FetchAllRepos lists every repository of the account, paginating until
// an empty page comes back. With onlyPublic set, private repositories
// are filtered out client-side.
func (g *GitHubGateway) FetchAllRepos(ctx context.Context, onlyPublic bool) ([]domain.GitHubRepo, error) {
	opts := &github.RepositoryListByUserOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{Page: 1, PerPage: reposPerPage},
	}

	var repos []domain.GitHubRepo
	for {
		page, _, err := g.client.Repositories.ListByUser(ctx, g.username, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repos for %s (page %d): %w", g.username, opts.Page, err)
		}
		if len(page) == 0 {
			break
		}
		for _, repo := range page {
			if onlyPublic && repo.GetPrivate() {
				continue
			}
			repos = append(repos, domain.GitHubRepo{
				Name:     repo.GetName(),
				Stars:    repo.GetStargazersCount(),
				IsPublic: !repo.GetPrivate(),
			})
		}
		opts.Page++
		g.logger.Debug("fetching next page of repos", zap.Int("page", opts.Page))
	}
	g.logger.Debug("completed fetching repos", zap.Int("count", len(repos)))
	return repos, nil
}

// FetchTotalStars sums the star counts over all fetched repositories.
func (g *GitHubGateway) FetchTotalStars(ctx context.Context, onlyPublic bool) (int, error) {
	repos, err := g.FetchAllRepos(ctx, onlyPublic)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, repo := range repos {
		total += repo.Stars
	}
	return total, nil
}
