package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"algocamp_backend/internal/models"
)

// submissionHistoryLimit caps the user.status lookup at the most recent
// submissions; solved problems are deduplicated from this window.
const submissionHistoryLimit = 10000

// CodeforcesClient queries the Codeforces REST API. A full stats fetch is
// two sequential calls: user.info for rating, then user.status for the
// submission history the solved count is derived from.
type CodeforcesClient struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	baseDelay  time.Duration
}

func NewCodeforcesClient(baseURL string, timeout time.Duration, maxRetries int, baseDelay time.Duration) *CodeforcesClient {
	return &CodeforcesClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

type cfUserInfoResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  []struct {
		Handle    string `json:"handle"`
		Rating    int    `json:"rating"`
		MaxRating int    `json:"maxRating"`
		Rank      string `json:"rank"`
	} `json:"result"`
}

type cfUserStatusResponse struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  []struct {
		Verdict string `json:"verdict"`
		Problem struct {
			ContestID int    `json:"contestId"`
			Index     string `json:"index"`
		} `json:"problem"`
	} `json:"result"`
}

// FetchStats returns rating info and the distinct solved-problem count for
// a handle. Transient failures (5xx including 503, timeouts) are retried
// with linear backoff before giving up.
func (c *CodeforcesClient) FetchStats(ctx context.Context, handle string) (*models.CodeforcesStats, error) {
	info, err := c.fetchUserInfo(ctx, handle)
	if err != nil {
		return nil, err
	}

	solved, err := c.fetchSolvedCount(ctx, handle)
	if err != nil {
		return nil, err
	}

	info.TotalSolved = solved
	return info, nil
}

func (c *CodeforcesClient) fetchUserInfo(ctx context.Context, handle string) (*models.CodeforcesStats, error) {
	endpoint := fmt.Sprintf("%s/user.info?handles=%s", c.baseURL, url.QueryEscape(handle))

	resp, err := doWithRetry(ctx, c.httpClient, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}, c.maxRetries, c.baseDelay, "codeforces")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body cfUserInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode user.info response: %w", err)
	}
	if body.Status != "OK" || len(body.Result) == 0 {
		return nil, fmt.Errorf("codeforces user.info failed for %q: %s", handle, body.Comment)
	}

	u := body.Result[0]
	return &models.CodeforcesStats{
		Handle:    u.Handle,
		Rating:    u.Rating,
		MaxRating: u.MaxRating,
		Rank:      u.Rank,
	}, nil
}

func (c *CodeforcesClient) fetchSolvedCount(ctx context.Context, handle string) (int, error) {
	endpoint := fmt.Sprintf("%s/user.status?handle=%s&from=1&count=%d",
		c.baseURL, url.QueryEscape(handle), submissionHistoryLimit)

	resp, err := doWithRetry(ctx, c.httpClient, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}, c.maxRetries, c.baseDelay, "codeforces")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var body cfUserStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode user.status response: %w", err)
	}
	if body.Status != "OK" {
		return 0, fmt.Errorf("codeforces user.status failed for %q: %s", handle, body.Comment)
	}

	// Distinct accepted problems, keyed by (contestId, problemIndex).
	solved := make(map[string]struct{})
	for _, sub := range body.Result {
		if sub.Verdict != "OK" {
			continue
		}
		key := fmt.Sprintf("%d-%s", sub.Problem.ContestID, sub.Problem.Index)
		solved[key] = struct{}{}
	}
	return len(solved), nil
}
