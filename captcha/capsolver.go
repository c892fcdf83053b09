package captcha

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	capsolverAPI     = "https://api.capsolver.com"
	balanceWarnLevel = 5.0
)

// Capsolver implements Solver on top of the Capsolver task API.
type Capsolver struct {
	apiKey       string
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	solveTimeout time.Duration
}

// Option configures a Capsolver.
type Option func(*Capsolver)

// WithHTTPClient routes Capsolver calls through hc, typically the client
// built from the resolved proxy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Capsolver) { c.client = hc }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Capsolver) { c.baseURL = u }
}

// WithPolling sets the result poll interval and the overall solve deadline.
func WithPolling(interval, timeout time.Duration) Option {
	return func(c *Capsolver) {
		c.pollInterval = interval
		c.solveTimeout = timeout
	}
}

// NewCapsolver creates a Capsolver client for apiKey.
func NewCapsolver(apiKey string, opts ...Option) *Capsolver {
	c := &Capsolver{
		apiKey:       apiKey,
		baseURL:      capsolverAPI,
		client:       &http.Client{Timeout: 10 * time.Second},
		pollInterval: 3 * time.Second,
		solveTimeout: 2 * time.Minute,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// apiStatus is the error envelope every Capsolver response carries.
type apiStatus struct {
	ErrorID          int    `json:"errorId"`
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`
}

func (s apiStatus) err(op string) error {
	if s.ErrorID == 0 {
		return nil
	}
	return fmt.Errorf("capsolver %s error %s: %s", op, s.ErrorCode, s.ErrorDescription)
}

// Solve submits a FunCaptcha task and polls until it is solved.
func (c *Capsolver) Solve(ctx context.Context, siteKey, pageURL string) (string, error) {
	if bal, err := c.Balance(ctx); err == nil && bal < balanceWarnLevel {
		slog.Warn("capsolver balance low", slog.Float64("balance", bal))
	}

	var created struct {
		apiStatus
		TaskID string `json:"taskId"`
	}
	err := c.post(ctx, "/createTask", map[string]any{
		"clientKey": c.apiKey,
		"task": map[string]any{
			"type":             "FunCaptchaTaskProxyLess",
			"websiteURL":       pageURL,
			"websitePublicKey": siteKey,
		},
	}, &created)
	if err != nil {
		return "", fmt.Errorf("capsolver createTask: %w", err)
	}
	if err := created.err("createTask"); err != nil {
		return "", err
	}
	if created.TaskID == "" {
		return "", fmt.Errorf("capsolver: empty taskId in response")
	}
	slog.Debug("captcha task created", slog.String("task", created.TaskID))

	ctx, cancel := context.WithTimeout(ctx, c.solveTimeout)
	defer cancel()
	return c.poll(ctx, created.TaskID)
}

func (c *Capsolver) poll(ctx context.Context, taskID string) (string, error) {
	req := map[string]any{"clientKey": c.apiKey, "taskId": taskID}
	for {
		var res struct {
			apiStatus
			Status   string `json:"status"`
			Solution struct {
				Token string `json:"token"`
			} `json:"solution"`
		}
		if err := c.post(ctx, "/getTaskResult", req, &res); err != nil {
			return "", fmt.Errorf("capsolver getTaskResult: %w", err)
		}
		if err := res.err("getTaskResult"); err != nil {
			return "", err
		}

		switch res.Status {
		case "ready":
			if res.Solution.Token == "" {
				return "", fmt.Errorf("capsolver: ready but empty token")
			}
			slog.Debug("captcha solved", slog.String("task", taskID))
			return res.Solution.Token, nil
		case "idle", "processing":
		default:
			return "", fmt.Errorf("capsolver: unexpected status %q", res.Status)
		}

		select {
		case <-time.After(c.pollInterval):
		case <-ctx.Done():
			return "", fmt.Errorf("capsolver task %s: %w", taskID, ctx.Err())
		}
	}
}

// Balance returns the Capsolver account balance in USD.
func (c *Capsolver) Balance(ctx context.Context) (float64, error) {
	var resp struct {
		apiStatus
		Balance float64 `json:"balance"`
	}
	if err := c.post(ctx, "/getBalance", map[string]any{"clientKey": c.apiKey}, &resp); err != nil {
		return 0, err
	}
	if err := resp.err("getBalance"); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// post sends payload as JSON to path and decodes the reply into result.
func (c *Capsolver) post(ctx context.Context, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("capsolver HTTP %d: %s", resp.StatusCode, string(data[:min(200, len(data))]))
	}
	return json.Unmarshal(data, result)
}
