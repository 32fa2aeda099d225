package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"algocamp_backend/internal/models"
)

// LeetCodeClient queries the LeetCode GraphQL endpoint. One query returns
// accepted-submission counts per difficulty plus profile ranking and
// reputation.
type LeetCodeClient struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	baseDelay  time.Duration
}

func NewLeetCodeClient(baseURL string, timeout time.Duration, maxRetries int, baseDelay time.Duration) *LeetCodeClient {
	return &LeetCodeClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

const userProfileQuery = `
query userProfile($username: String!) {
  matchedUser(username: $username) {
    username
    profile {
      ranking
      reputation
    }
    submitStatsGlobal {
      acSubmissionNum {
        difficulty
        count
      }
    }
  }
}`

type lcGraphQLRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

type lcGraphQLResponse struct {
	Data struct {
		MatchedUser *struct {
			Username string `json:"username"`
			Profile  struct {
				Ranking    int `json:"ranking"`
				Reputation int `json:"reputation"`
			} `json:"profile"`
			SubmitStatsGlobal struct {
				AcSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStatsGlobal"`
		} `json:"matchedUser"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchStats returns the solved total (the "All" difficulty bucket) and
// profile ranking/reputation for a handle. Transient failures are retried
// with linear backoff; an unknown user is a non-retryable error.
func (c *LeetCodeClient) FetchStats(ctx context.Context, handle string) (*models.LeetCodeStats, error) {
	payload, err := json.Marshal(lcGraphQLRequest{
		Query:     userProfileQuery,
		Variables: map[string]string{"username": handle},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	resp, err := doWithRetry(ctx, c.httpClient, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, c.maxRetries, c.baseDelay, "leetcode")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body lcGraphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode graphql response: %w", err)
	}
	if len(body.Errors) > 0 {
		return nil, fmt.Errorf("leetcode query failed for %q: %s", handle, body.Errors[0].Message)
	}
	if body.Data.MatchedUser == nil {
		return nil, fmt.Errorf("leetcode user %q not found", handle)
	}

	user := body.Data.MatchedUser
	stats := &models.LeetCodeStats{
		Handle:     user.Username,
		Ranking:    user.Profile.Ranking,
		Reputation: user.Profile.Reputation,
	}
	for _, bucket := range user.SubmitStatsGlobal.AcSubmissionNum {
		if bucket.Difficulty == "All" {
			stats.TotalSolved = bucket.Count
			break
		}
	}
	return stats, nil
}
