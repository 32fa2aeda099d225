package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"algocamp_backend/internal/logger"
)

// requestFactory builds a fresh request per attempt so that bodies can be
// replayed safely on retry.
type requestFactory func(ctx context.Context) (*http.Request, error)

// doWithRetry executes the request, retrying on transport errors, timeouts
// and server-side (5xx, including 503) responses. Delay grows linearly:
// attempt number times the base delay. Non-retryable responses and
// successes are returned immediately.
func doWithRetry(ctx context.Context, client *http.Client, build requestFactory, maxRetries int, baseDelay time.Duration, service string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * baseDelay
			logger.Warn("retrying external service call",
				"service", service, "attempt", attempt, "delay", delay.String())
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := build(ctx)
		if err != nil {
			return nil, err
		}

		resp, err := client.Do(req)
		if err != nil {
			// Transport failure or timeout: retryable.
			lastErr = err
			continue
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			resp.Body.Close()
			lastErr = fmt.Errorf("%s returned status %d", service, resp.StatusCode)
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("%s unavailable after %d attempts: %w", service, maxRetries+1, lastErr)
}
