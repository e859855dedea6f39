// Package aiplan asks a language model served by Ollama for a week plan and
// turns its answer into scheduled slots.
package aiplan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/julianstephens/cadence/internal/logger"
)

var (
	// ErrInvalidResponse means the model did not answer with a JSON array.
	ErrInvalidResponse = errors.New("AI response is not a JSON array")
	// ErrEmptyPlan means no usable entries were found in the response.
	ErrEmptyPlan = errors.New("no valid schedule entries in AI response")
)

const (
	DefaultModel  = "llama3.2:3b"
	DefaultNumCtx = 4000
)

type Options struct {
	BaseURL           string
	Model             string
	NumCtx            int
	RequestsPerSecond float64
	Timeout           time.Duration
	HTTPClient        *http.Client
}

// Client calls the Ollama generate endpoint.
type Client struct {
	baseURL string
	model   string
	numCtx  int
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	c := &Client{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		model:   opts.Model,
		numCtx:  opts.NumCtx,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.numCtx <= 0 {
		c.numCtx = DefaultNumCtx
	}
	return c
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	NumCtx int `json:"num_ctx"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends prompt to the model and returns its raw text answer.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Options: generateOptions{NumCtx: c.numCtx},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("AI request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read AI response: %w", err)
	}
	logger.Debug("AI generate", "model", c.model, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = fmt.Sprintf("AI request failed with status %d", resp.StatusCode)
		}
		return "", errors.New(msg)
	}

	var out generateResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("failed to decode AI response: %w", err)
	}
	return out.Response, nil
}

// Ping checks that the Ollama server answers on its tags endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("AI service unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("AI service returned status %d", resp.StatusCode)
	}
	return nil
}
