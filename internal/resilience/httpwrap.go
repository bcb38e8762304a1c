package resilience

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPClient wraps an http.Client with timeout, retry and circuit-breaker logic.
// Responses with a 5xx status count as failures and are retried; everything
// else is handed back to the caller.
type HTTPClient struct {
	Client      *http.Client
	Breaker     *Breaker
	BaseBackoff time.Duration
	MaxAttempts int
	Jitter      float64
	Timeout     time.Duration
	Target      string
	Logger      *zerolog.Logger
}

// StatusError reports a non-2xx answer from a collaborator.
type StatusError struct {
	Target string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("resilience: %s responded %d: %s", e.Target, e.Status, e.Body)
}

// Do sends req, retrying with jittered backoff up to MaxAttempts. The body is
// buffered so it can be replayed. Only use it for idempotent requests.
func (cl HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	attempts := cl.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	return cl.do(ctx, req, attempts)
}

// DoOnce sends req a single time through the breaker and timeout, for
// requests that must not be replayed.
func (cl HTTPClient) DoOnce(ctx context.Context, req *http.Request) (*http.Response, error) {
	return cl.do(ctx, req, 1)
}

func (cl HTTPClient) do(ctx context.Context, req *http.Request, attempts int) (*http.Response, error) {
	if cl.Client == nil {
		return nil, errors.New("resilience: http client not configured")
	}
	breaker := cl.Breaker
	if breaker == nil {
		breaker = NewBreaker(1, 1, time.Second)
	}
	base := cl.BaseBackoff
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if !breaker.Allow(ctx) {
			lastErr = ErrOpenCircuit
			break
		}
		resp, err := cl.once(ctx, req, body)
		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			breaker.Report(ctx, true)
			cl.count("ok")
			return resp, nil
		}
		if err == nil {
			lastErr = drainStatus(cl.target(), resp)
		} else {
			lastErr = err
		}
		breaker.Report(ctx, false)
		cl.count("error")
		cl.logger().Warn().Err(lastErr).Str("target", cl.target()).Int("attempt", attempt).Msg("outbound_attempt_failed")
		if attempt == attempts {
			break
		}
		timer := time.NewTimer(Backoff(base, attempt, cl.Jitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if errors.Is(lastErr, ErrOpenCircuit) {
		cl.count("rejected")
	}
	return nil, lastErr
}

// PostJSON posts in as JSON to url and decodes a 2xx answer into out (when
// out is non-nil). Non-2xx answers surface as *StatusError. Failed attempts
// are retried, so the endpoint must be idempotent.
func (cl HTTPClient) PostJSON(ctx context.Context, url string, in, out any) error {
	return cl.postJSON(ctx, url, in, out, cl.Do)
}

// PostJSONOnce is PostJSON without retries, for writes a collaborator may
// already have applied when the answer is lost.
func (cl HTTPClient) PostJSONOnce(ctx context.Context, url string, in, out any) error {
	return cl.postJSON(ctx, url, in, out, cl.DoOnce)
}

func (cl HTTPClient) postJSON(ctx context.Context, url string, in, out any, send func(context.Context, *http.Request) (*http.Response, error)) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("resilience: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := send(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return drainStatus(cl.target(), resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("resilience: decode %s response: %w", cl.target(), err)
	}
	return nil
}

func (cl HTTPClient) once(ctx context.Context, req *http.Request, body []byte) (*http.Response, error) {
	timeout := cl.Timeout
	if timeout <= 0 {
		timeout = cl.Client.Timeout
	}
	var (
		callCtx context.Context
		cancel  context.CancelFunc
	)
	if timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	attempt := req.Clone(callCtx)
	if body != nil {
		attempt.Body = io.NopCloser(bytes.NewReader(body))
		attempt.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}
	resp, err := cl.Client.Do(attempt)
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (cl HTTPClient) target() string {
	if cl.Target == "" {
		return "default"
	}
	return cl.Target
}

func (cl HTTPClient) logger() *zerolog.Logger {
	if cl.Logger != nil {
		return cl.Logger
	}
	nop := zerolog.Nop()
	return &nop
}

func (cl HTTPClient) count(result string) {
	if OutboundRequests != nil {
		OutboundRequests.WithLabelValues(cl.target(), result).Inc()
	}
}

// cancelOnClose keeps the per-attempt context alive until the body is consumed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	src := req.Body
	if req.GetBody != nil {
		fresh, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		src = fresh
	}
	defer func() { _ = src.Close() }()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func drainStatus(target string, resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{Target: target, Status: resp.StatusCode, Body: string(bytes.TrimSpace(snippet))}
}
