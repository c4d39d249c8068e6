package explain

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-helper/api/internal/llm"
	"study-helper/api/internal/llm/gemini"
)

type scriptedEngine struct {
	mu      sync.Mutex
	results []error
	text    string
	prompts []string
}

func (s *scriptedEngine) Name() string     { return "scripted" }
func (s *scriptedEngine) GetModel() string { return "test" }
func (s *scriptedEngine) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	if len(s.results) > 0 {
		err := s.results[0]
		s.results = s.results[1:]
		if err != nil {
			return "", err
		}
	}
	return s.text, nil
}

func (s *scriptedEngine) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestPrompt(t *testing.T) {
	assert.Equal(t, "Explain black holes simply and clearly for a student.", Prompt("black holes"))
}

func TestExplainBlankTopicIsNoop(t *testing.T) {
	eng := &scriptedEngine{text: "unused"}
	x := New(eng)

	for _, topic := range []string{"", "   ", "\n\t"} {
		out := x.Explain(context.Background(), topic)
		assert.True(t, out.IsZero())
		assert.False(t, out.OK())
	}
	assert.Zero(t, eng.calls())
}

func TestExplainSuccessTrimsTopic(t *testing.T) {
	eng := &scriptedEngine{text: "Hello **world**"}
	out := New(eng).Explain(context.Background(), "  photosynthesis ")

	require.True(t, out.OK())
	assert.Equal(t, "Hello **world**", out.Text)
	assert.Equal(t, "photosynthesis", out.Topic)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, []string{"Explain photosynthesis simply and clearly for a student."}, eng.prompts)
}

func TestExplainRetriesRateLimitThenSucceeds(t *testing.T) {
	rl := &llm.APIError{Status: http.StatusTooManyRequests}
	eng := &scriptedEngine{results: []error{rl, rl}, text: "ok"}

	var waits []time.Duration
	x := New(eng, WithSleep(func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}))
	out := x.Explain(context.Background(), "tides")

	require.True(t, out.OK())
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, waits)
}

func TestExplainRateLimitExhausted(t *testing.T) {
	rl := &llm.APIError{Status: http.StatusTooManyRequests}
	eng := &scriptedEngine{results: []error{rl, rl, rl, rl}}
	out := New(eng, WithSleep(noSleep)).Explain(context.Background(), "tides")

	require.NotNil(t, out.Failure)
	assert.Equal(t, RateLimited, out.Failure.Kind)
	assert.Contains(t, out.Failure.Message, "rate limit exceeded")
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 3, eng.calls())
}

func TestExplainCustomPolicy(t *testing.T) {
	rl := &llm.APIError{Status: http.StatusTooManyRequests}
	eng := &scriptedEngine{results: []error{rl, rl, rl, rl, rl}}
	out := New(eng, WithSleep(noSleep), WithPolicy(Policy{MaxAttempts: 1})).Explain(context.Background(), "x")

	assert.Equal(t, RateLimited, out.Failure.Kind)
	assert.Equal(t, 1, eng.calls())
}

func TestExplainFailureKinds(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		kind     Kind
		message  string
		attempts int
	}{
		{"credential", llm.ErrCredentialMissing, CredentialMissing, msgCredentialMissing, 0},
		{"empty", llm.ErrEmptyResponse, EmptyResponse, "no response from API", 1},
		{"api", &llm.APIError{Status: 400, StatusText: "Bad Request", Message: "API key not valid"}, APIError, "API error: 400 - API key not valid", 1},
		{"network", errors.New("dial tcp: lookup example: no such host"), NetworkFault, "dial tcp: lookup example: no such host", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			eng := &scriptedEngine{results: []error{tc.err, tc.err, tc.err}}
			out := New(eng, WithSleep(noSleep)).Explain(context.Background(), "x")

			require.NotNil(t, out.Failure)
			assert.Equal(t, tc.kind, out.Failure.Kind)
			assert.Equal(t, tc.message, out.Failure.Message)
			assert.Equal(t, tc.message, out.Message())
			assert.Equal(t, tc.attempts, out.Attempts)
			assert.Equal(t, 1, eng.calls(), "non-429 failures are not retried")
			assert.ErrorIs(t, out.Failure, tc.err)
		})
	}
}

func TestExplainCancelledDuringWait(t *testing.T) {
	rl := &llm.APIError{Status: http.StatusTooManyRequests}
	eng := &scriptedEngine{results: []error{rl, rl, rl}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := New(eng).Explain(ctx, "x")
	require.NotNil(t, out.Failure)
	assert.Equal(t, NetworkFault, out.Failure.Kind)
	assert.ErrorIs(t, out.Failure, context.Canceled)
	assert.Equal(t, 1, eng.calls())
}

func TestExplainAgainstRESTEngine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello **world**"}]}}]}`))
	}))
	defer server.Close()

	x := New(gemini.New("k", "", gemini.WithBaseURL(server.URL)))
	out := x.Explain(context.Background(), "greetings")
	require.True(t, out.OK())
	assert.Equal(t, "Hello **world**", out.Text)
}

func TestExplainBlankTextIsEmptyResponse(t *testing.T) {
	eng := &scriptedEngine{text: "  \n\n  "}
	out := New(eng, WithSleep(noSleep)).Explain(context.Background(), "x")

	require.NotNil(t, out.Failure)
	assert.Equal(t, EmptyResponse, out.Failure.Kind)
	assert.Equal(t, "no response from API", out.Message())
	assert.Equal(t, 1, eng.calls())
}

func TestExplainUndecodableBodyKeepsParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	}))
	defer server.Close()

	out := New(gemini.New("k", "", gemini.WithBaseURL(server.URL))).Explain(context.Background(), "x")
	require.NotNil(t, out.Failure)
	assert.Equal(t, NetworkFault, out.Failure.Kind)
	assert.Contains(t, out.Message(), "decode response")
}

func TestExplainRESTRateLimitTiming(t *testing.T) {
	var (
		mu    sync.Mutex
		times []time.Time
		calls int32
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	delay := 30 * time.Millisecond
	x := New(gemini.New("k", "", gemini.WithBaseURL(server.URL)), WithPolicy(Policy{MaxAttempts: 3, Delay: delay}))
	out := x.Explain(context.Background(), "x")

	require.NotNil(t, out.Failure)
	assert.Equal(t, RateLimited, out.Failure.Kind)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, times, 3)
	for i := 1; i < len(times); i++ {
		assert.GreaterOrEqual(t, times[i].Sub(times[i-1]), delay)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "rate_limited", RateLimited.String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}
