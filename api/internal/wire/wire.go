package wire

import (
	"study-helper/api/internal/config"
	"study-helper/api/internal/explain"
	"study-helper/api/internal/llm"
	"study-helper/api/internal/llm/gemini"
	"study-helper/api/internal/llm/genai"
	"study-helper/api/internal/logger"
)

// App aggregates the services every front end needs.
type App struct {
	Cfg     *config.Config
	Log     *logger.Logger
	Engines *llm.Engines
}

// BuildApp validates cfg and wires engines and the logger from it.
// A missing API key is not an error here; it surfaces on the first explanation.
func BuildApp(cfg *config.Config) (*App, error) {
	if err := cfg.CheckValidity(); err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	return &App{Cfg: cfg, Log: log, Engines: NewEngines(cfg)}, nil
}

func NewEngines(cfg *config.Config) *llm.Engines {
	opts := []gemini.Option{gemini.WithTimeout(cfg.HTTPTimeout)}
	if cfg.GeminiBaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.GeminiBaseURL))
	}
	return &llm.Engines{
		Gemini:  gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel, opts...),
		GenAI:   genai.New(cfg.GeminiAPIKey, cfg.GeminiModel),
		Default: cfg.Engine,
	}
}

// ExplainOptions carries the configured retry policy and logger.
func (a *App) ExplainOptions() []explain.Option {
	return []explain.Option{
		explain.WithPolicy(explain.Policy{MaxAttempts: a.Cfg.RetryMaxAttempts, Delay: a.Cfg.RetryDelay}),
		explain.WithLogger(a.Log),
	}
}

// Explainer builds an explainer for the named engine ("" is the configured default).
func (a *App) Explainer(engine string) (*explain.Explainer, error) {
	eng, err := a.Engines.GetEngine(engine)
	if err != nil {
		return nil, err
	}
	return explain.New(eng, a.ExplainOptions()...), nil
}

// DefaultEngine is the configured engine; BuildApp has already validated its name.
func (a *App) DefaultEngine() llm.Engine {
	eng, _ := a.Engines.GetEngine("")
	return eng
}
