// Package explain turns a topic into an explanation outcome: it builds the
// prompt, calls a generation engine and retries on rate limiting.
package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"study-helper/api/internal/llm"
	"study-helper/api/internal/logger"
)

const promptTemplate = "Explain %s simply and clearly for a student."

const (
	msgCredentialMissing = "credential missing: set GEMINI_API_KEY in the environment or a .env file"
	msgRateLimited       = "rate limit exceeded, please try again later"
	msgEmptyResponse     = "no response from API"
)

// Prompt wraps a topic into the fixed instruction sent to the model.
func Prompt(topic string) string {
	return fmt.Sprintf(promptTemplate, topic)
}

// Policy bounds the rate-limit retry loop. Only HTTP 429 is retried.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Delay: 2 * time.Second}
}

type Explainer struct {
	engine llm.Engine
	policy Policy
	log    *logger.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

type Option func(*Explainer)

func WithPolicy(p Policy) Option {
	return func(x *Explainer) {
		if p.MaxAttempts < 1 {
			p.MaxAttempts = 1
		}
		if p.Delay < 0 {
			p.Delay = 0
		}
		x.policy = p
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(x *Explainer) {
		if l != nil {
			x.log = l
		}
	}
}

// WithSleep replaces the wait between rate-limited attempts.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(x *Explainer) {
		if fn != nil {
			x.sleep = fn
		}
	}
}

func New(engine llm.Engine, opts ...Option) *Explainer {
	x := &Explainer{
		engine: engine,
		policy: DefaultPolicy(),
		log:    logger.Nop(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *Explainer) Engine() llm.Engine { return x.engine }

func (x *Explainer) Policy() Policy { return x.policy }

// Explain runs one explanation request. A blank topic is a no-op and yields
// the zero Outcome. Safe for concurrent use; it holds no per-call state.
func (x *Explainer) Explain(ctx context.Context, topic string) Outcome {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Outcome{}
	}
	prompt := Prompt(topic)
	out := Outcome{Topic: topic}
	log := x.log.With("engine", x.engine.Name(), "model", x.engine.GetModel())

	for attempt := 1; attempt <= x.policy.MaxAttempts; attempt++ {
		out.Attempts = attempt
		start := time.Now()
		text, err := x.engine.Generate(ctx, prompt)
		if err == nil && strings.TrimSpace(text) == "" {
			err = llm.ErrEmptyResponse
		}
		if err == nil {
			out.Text = text
			log.Info("explanation ready", "topic", topic, "attempts", attempt, "chars", len(text), "elapsed", time.Since(start))
			return out
		}

		if !llm.IsRateLimited(err) {
			out.Failure = classify(err)
			if out.Failure.Kind == CredentialMissing {
				out.Attempts = attempt - 1
			}
			log.Warn("explanation failed", "topic", topic, "attempt", attempt, "kind", out.Failure.Kind.String(), "error", out.Failure.Message)
			return out
		}

		if attempt == x.policy.MaxAttempts {
			break
		}
		log.Debug("rate limited, waiting", "topic", topic, "attempt", attempt, "delay", x.policy.Delay)
		if serr := x.sleep(ctx, x.policy.Delay); serr != nil {
			out.Failure = &Failure{Kind: NetworkFault, Message: serr.Error(), Err: serr}
			return out
		}
	}

	out.Failure = &Failure{Kind: RateLimited, Status: 429, Message: msgRateLimited}
	log.Warn("explanation failed", "topic", topic, "attempts", out.Attempts, "kind", RateLimited.String())
	return out
}

func classify(err error) *Failure {
	var ae *llm.APIError
	switch {
	case errors.Is(err, llm.ErrCredentialMissing):
		return &Failure{Kind: CredentialMissing, Message: msgCredentialMissing, Err: err}
	case errors.Is(err, llm.ErrEmptyResponse):
		return &Failure{Kind: EmptyResponse, Message: msgEmptyResponse, Err: err}
	case errors.As(err, &ae):
		return &Failure{Kind: APIError, Status: ae.Status, Message: ae.Error(), Err: err}
	default:
		return &Failure{Kind: NetworkFault, Message: err.Error(), Err: err}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
