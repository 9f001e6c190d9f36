// Package judge runs submissions on a remote Judge0-compatible service.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/blindcode/internal/catalog"
	"github.com/verte-zerg/blindcode/internal/model"
)

// Defaults for the judge client.
const (
	DefaultBaseURL        = "https://judge0-ce.p.rapidapi.com"
	DefaultPollInterval   = time.Second
	DefaultMaxWait        = 60 * time.Second
	DefaultRequestTimeout = 15 * time.Second
)

// Judge0 status ids that are not terminal.
const (
	statusInQueue    = 1
	statusProcessing = 2
)

// Executor runs source code and returns a normalized outcome.
type Executor interface {
	Execute(ctx context.Context, code string, lang model.Language, stdin string) model.Outcome
}

// Config configures a Client.
type Config struct {
	BaseURL        string
	Host           string
	APIKey         string
	PollInterval   time.Duration
	MaxWait        time.Duration
	RequestTimeout time.Duration
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

// Client talks to the judge over HTTP.
type Client struct {
	baseURL      string
	host         string
	apiKey       string
	pollInterval time.Duration
	maxWait      time.Duration
	http         *http.Client
	log          *zap.Logger
}

type createRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
	Stdin      string `json:"stdin"`
}

type createResponse struct {
	Token string `json:"token"`
}

type submissionStatus struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type submissionResult struct {
	Status        submissionStatus `json:"status"`
	Stdout        string           `json:"stdout"`
	Stderr        string           `json:"stderr"`
	CompileOutput string           `json:"compile_output"`
}

type upstreamError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// New returns a Client with defaults applied.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		host:         cfg.Host,
		apiKey:       cfg.APIKey,
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
		http:         cfg.HTTPClient,
		log:          cfg.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.host == "" {
		if u, err := url.Parse(c.baseURL); err == nil {
			c.host = u.Host
		}
	}
	if c.pollInterval <= 0 {
		c.pollInterval = DefaultPollInterval
	}
	if c.maxWait < 0 {
		c.maxWait = 0
	}
	if c.http == nil {
		timeout := cfg.RequestTimeout
		if timeout <= 0 {
			timeout = DefaultRequestTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Execute submits code, polls until the run is terminal and maps the result.
// Every failure is returned as an Outcome with Error set.
func (c *Client) Execute(ctx context.Context, code string, lang model.Language, stdin string) model.Outcome {
	if c.apiKey == "" {
		c.log.Error("judge api key not found")
		return configError(MsgMissingAPIKey).outcome()
	}
	langID, ok := catalog.LanguageID(lang)
	if !ok {
		c.log.Error("unsupported language", zap.String("language", string(lang)))
		return configError(fmt.Sprintf("Unsupported language: %s", lang)).outcome()
	}

	if c.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.maxWait)
		defer cancel()
	}

	result, err := c.run(ctx, code, langID, stdin)
	if err != nil {
		gerr := c.classify(ctx, err)
		c.log.Error("judge execution failed",
			zap.String("language", string(lang)),
			zap.String("kind", gerr.Kind.String()),
			zap.Error(err))
		return gerr.outcome()
	}
	return mapResult(result)
}

func (c *Client) run(ctx context.Context, code string, langID int, stdin string) (submissionResult, error) {
	token, err := c.create(ctx, createRequest{SourceCode: code, LanguageID: langID, Stdin: stdin})
	if err != nil {
		return submissionResult{}, err
	}
	c.log.Debug("judge submission created", zap.String("token", token), zap.Int("language_id", langID))

	for attempt := 1; ; attempt++ {
		if err := wait(ctx, c.pollInterval); err != nil {
			return submissionResult{}, err
		}
		result, err := c.poll(ctx, token)
		if err != nil {
			return submissionResult{}, err
		}
		c.log.Debug("judge submission polled",
			zap.String("token", token),
			zap.Int("attempt", attempt),
			zap.Int("status_id", result.Status.ID))
		if !pending(result.Status.ID) {
			return result, nil
		}
	}
}

func (c *Client) create(ctx context.Context, payload createRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode submission: %w", err)
	}
	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/submissions", body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", transportError(MsgUnexpected, errors.New("judge returned an empty token"))
	}
	return resp.Token, nil
}

func (c *Client) poll(ctx context.Context, token string) (submissionResult, error) {
	var result submissionResult
	if err := c.do(ctx, http.MethodGet, "/submissions/"+url.PathEscape(token), nil, &result); err != nil {
		return submissionResult{}, err
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return transportError(upstreamMessage(data), fmt.Errorf("unexpected judge status: %s", resp.Status))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode judge response: %w", err)
	}
	return nil
}

func (c *Client) classify(ctx context.Context, err error) *Error {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return timeoutError(fmt.Sprintf("Execution timed out after %s.", c.maxWait), err)
	}
	return transportError(MsgUnexpected, err)
}

func upstreamMessage(body []byte) string {
	var ue upstreamError
	if err := json.Unmarshal(body, &ue); err != nil {
		return ""
	}
	if ue.Message != "" {
		return ue.Message
	}
	return ue.Error
}

func mapResult(result submissionResult) model.Outcome {
	status := result.Status.Description
	switch {
	case result.Stdout != "":
		return model.Outcome{Output: result.Stdout, Status: status}
	case result.Stderr != "":
		return model.Outcome{Error: result.Stderr, Status: status, Failure: model.FailureRuntime}
	case result.CompileOutput != "":
		return model.Outcome{Error: CompilationPrefix + result.CompileOutput, Status: status, Failure: model.FailureCompilation}
	default:
		return model.Outcome{Output: status, Status: status}
	}
}

func pending(statusID int) bool {
	return statusID == statusInQueue || statusID == statusProcessing
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
