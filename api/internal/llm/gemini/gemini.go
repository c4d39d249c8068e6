package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"study-helper/api/internal/llm"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"

	maxErrorBody = 1 << 20
)

// Engine talks to the generateContent REST endpoint directly.
type Engine struct {
	APIKey  string
	Model   string
	baseURL string
	httpc   *http.Client
}

type Option func(*Engine)

// WithBaseURL points the engine at another host (tests, proxies).
func WithBaseURL(u string) Option {
	return func(e *Engine) {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			e.baseURL = u
		}
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) {
		if c != nil {
			e.httpc = c
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.httpc = &http.Client{Timeout: d}
		}
	}
}

func New(key, model string, opts ...Option) *Engine {
	e := &Engine{
		APIKey:  strings.TrimSpace(key),
		Model:   strings.TrimSpace(model),
		baseURL: DefaultBaseURL,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
	if e.Model == "" {
		e.Model = DefaultModel
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Name() string          { return "gemini" }
func (e *Engine) GetModel() string      { return e.Model }
func (e *Engine) SetModel(model string) { e.Model = strings.TrimSpace(model) }

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate issues exactly one POST. Non-2xx answers come back as *llm.APIError;
// a body that is not JSON is a plain decode error.
func (e *Engine) Generate(ctx context.Context, prompt string) (string, error) {
	if e.APIKey == "" {
		return "", llm.ErrCredentialMissing
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s:generateContent?key=%s",
		e.baseURL, url.PathEscape(e.Model), url.QueryEscape(e.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", redactURLError(err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", redactURLError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", readAPIError(resp)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", llm.ErrEmptyResponse
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", llm.ErrEmptyResponse
	}
	return text, nil
}

func readAPIError(resp *http.Response) *llm.APIError {
	ae := &llm.APIError{
		Status:     resp.StatusCode,
		StatusText: strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))),
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Error != nil {
		ae.Message = strings.TrimSpace(er.Error.Message)
	}
	return ae
}

// redactURLError drops the query string (it carries the API key) from
// *url.Error messages while keeping the underlying cause for errors.As.
func redactURLError(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u := ue.URL
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	return &url.Error{Op: ue.Op, URL: u, Err: ue.Err}
}
