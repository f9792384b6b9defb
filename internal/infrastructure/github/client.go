// Package github fetches issue records used to seed execution plans.
package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/workbench/pkg/domain/execution"
	gh "github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub API for one owner/repo pair.
type Client struct {
	api   *gh.Client
	owner string
	repo  string
}

// NewClient builds a client. An empty token yields unauthenticated access,
// which is enough for public repositories.
func NewClient(owner, repo, token string) *Client {
	var httpClient *http.Client
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), src)
	}
	return &Client{api: gh.NewClient(httpClient), owner: owner, repo: repo}
}

// FetchIssues retrieves the given issue numbers as plan metadata records.
// Each fetch is retried with exponential backoff; a number that still fails
// aborts the whole fetch so a plan is never generated against partial data.
func (c *Client) FetchIssues(ctx context.Context, numbers []int) ([]execution.IssueRecord, error) {
	r := retry.New[*gh.Issue](retry.Config{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		BackoffPolicy: retry.BackoffExponential,
	})

	records := make([]execution.IssueRecord, 0, len(numbers))
	for _, number := range numbers {
		issue, err := r.Do(ctx, func(ctx context.Context) (*gh.Issue, error) {
			issue, _, err := c.api.Issues.Get(ctx, c.owner, c.repo, number)
			return issue, err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch issue #%d from %s/%s: %w", number, c.owner, c.repo, err)
		}
		records = append(records, toIssueRecord(issue))
	}
	return records, nil
}

func toIssueRecord(issue *gh.Issue) execution.IssueRecord {
	rec := execution.IssueRecord{
		Number: issue.GetNumber(),
		Title:  issue.GetTitle(),
		Body:   issue.GetBody(),
		State:  issue.GetState(),
		URL:    issue.GetHTMLURL(),
	}
	for _, label := range issue.Labels {
		rec.Labels = append(rec.Labels, label.GetName())
	}
	return rec
}
