package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrCredentialMissing = errors.New("credential missing")
	ErrEmptyResponse     = errors.New("no response from API")
)

// Engine sends one prompt to a text-generation backend and returns the first
// candidate's text. Engines do not retry; retry policy belongs to the caller.
type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// APIError is a non-2xx answer from the generation endpoint.
type APIError struct {
	Status     int
	StatusText string
	// Message is error.message from the response body, when present.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.Status, e.Detail())
}

// Detail is the human-readable part: the API's message, or the status text.
func (e *APIError) Detail() string {
	if m := strings.TrimSpace(e.Message); m != "" {
		return m
	}
	if s := strings.TrimSpace(e.StatusText); s != "" {
		return s
	}
	return http.StatusText(e.Status)
}

func (e *APIError) HTTPStatusCode() int { return e.Status }

// IsRateLimited reports whether err carries an HTTP 429.
func IsRateLimited(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Status == http.StatusTooManyRequests
}

type Engines struct {
	Gemini Engine
	GenAI  Engine

	// Default names the engine picked for an empty name; "" means gemini.
	Default string
}

func (e *Engines) GetEngine(name string) (Engine, error) {
	var eng Engine
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = strings.ToLower(e.Default)
	}
	switch name {
	case "", "gemini":
		eng = e.Gemini
	case "genai":
		eng = e.GenAI
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
	if eng == nil {
		return nil, fmt.Errorf("engine %q is not configured", name)
	}
	return eng, nil
}
