package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lcProfileBody = `{
	"data": {
		"matchedUser": {
			"username": "neal_wu",
			"profile": {"ranking": 42, "reputation": 1500},
			"submitStatsGlobal": {
				"acSubmissionNum": [
					{"difficulty": "All", "count": 321},
					{"difficulty": "Easy", "count": 100},
					{"difficulty": "Medium", "count": 150},
					{"difficulty": "Hard", "count": 71}
				]
			}
		}
	}
}`

func newLeetCodeTestServer(t *testing.T, handler http.HandlerFunc) *LeetCodeClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewLeetCodeClient(server.URL, 2*time.Second, 3, time.Millisecond)
}

func TestLeetCodeFetchStats_Success(t *testing.T) {
	client := newLeetCodeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var req lcGraphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "neal_wu", req.Variables["username"])

		fmt.Fprint(w, lcProfileBody)
	})

	stats, err := client.FetchStats(context.Background(), "neal_wu")
	require.NoError(t, err)
	assert.Equal(t, "neal_wu", stats.Handle)
	assert.Equal(t, 321, stats.TotalSolved)
	assert.Equal(t, 42, stats.Ranking)
	assert.Equal(t, 1500, stats.Reputation)
}

func TestLeetCodeFetchStats_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	client := newLeetCodeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, lcProfileBody)
	})

	stats, err := client.FetchStats(context.Background(), "neal_wu")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 321, stats.TotalSolved)
}

func TestLeetCodeFetchStats_UnknownUser(t *testing.T) {
	var calls atomic.Int32
	client := newLeetCodeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"data": {"matchedUser": null}}`)
	})

	_, err := client.FetchStats(context.Background(), "ghost")
	assert.Error(t, err)
	// A 200 with a null user is final, not retryable.
	assert.Equal(t, int32(1), calls.Load())
}
