package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

const maxBodyBytes = 8 << 20

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("⚠️  %s circuit breaker %s -> %s", name, from, to)
		},
	})
}

type httpResult struct {
	status int
	body   []byte
}

// fetch sends req through cb and returns the body of a 2xx response.
// Transport failures, 429 and 5xx count against the breaker; other 4xx
// responses are returned as ErrUpstream without tripping it.
func fetch(cb *gobreaker.CircuitBreaker, client *http.Client, req *http.Request) ([]byte, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %s", ErrRateLimited, snippet(body))
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w (%d): %s", ErrUpstream, resp.StatusCode, snippet(body))
		}
		return httpResult{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", ErrCircuitOpen, cb.Name(), err)
		}
		return nil, err
	}

	res := out.(httpResult)
	if res.status < 200 || res.status >= 300 {
		return nil, fmt.Errorf("%w (%d): %s", ErrUpstream, res.status, snippet(res.body))
	}
	return res.body, nil
}

func snippet(body []byte) string {
	const n = 300
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}
