package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"study-helper/api/internal/llm"
)

const defaultModel = "gemini-2.5-flash"

// Engine goes through the official generative-ai-go SDK instead of raw REST.
type Engine struct {
	APIKey string
	Model  string
	opts   []option.ClientOption
}

// New accepts extra client options (endpoint, http client) after the key.
func New(apiKey, model string, opts ...option.ClientOption) *Engine {
	e := &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		opts:   opts,
	}
	if e.Model == "" {
		e.Model = defaultModel
	}
	return e
}

func (e *Engine) Name() string          { return "genai" }
func (e *Engine) GetModel() string      { return e.Model }
func (e *Engine) SetModel(model string) { e.Model = strings.TrimSpace(model) }

func (e *Engine) Generate(ctx context.Context, prompt string) (string, error) {
	if e.APIKey == "" {
		return "", llm.ErrCredentialMissing
	}
	opts := append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("genai: new client: %w", err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("genai: model is nil")
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", mapError(err)
	}
	return responseText(resp)
}

// responseText is firstText with blank answers reported as llm.ErrEmptyResponse.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", llm.ErrEmptyResponse
	}
	return txt, nil
}

func mapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &llm.APIError{
			Status:     gerr.Code,
			StatusText: http.StatusText(gerr.Code),
			Message:    strings.TrimSpace(gerr.Message),
		}
	}
	var berr *genai.BlockedError
	if errors.As(err, &berr) {
		return fmt.Errorf("%w: %v", llm.ErrEmptyResponse, berr)
	}
	return err
}

// firstText returns the first candidate's first part when it is text.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil || len(c.Content.Parts) == 0 {
		return ""
	}
	if t, ok := c.Content.Parts[0].(genai.Text); ok {
		return string(t)
	}
	return ""
}
