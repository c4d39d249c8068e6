package handle

import (
	"encoding/json"
	"net/http"

	"study-helper/api/internal/explain"
	"study-helper/api/internal/llm"
	"study-helper/api/internal/logger"
)

type Handle struct {
	engs *llm.Engines
	opts []explain.Option
	log  *logger.Logger
}

// New wires handlers to the engine registry. opts are applied to the
// explainer built for every request.
func New(engs *llm.Engines, log *logger.Logger, opts ...explain.Option) *Handle {
	if log == nil {
		log = logger.Nop()
	}
	return &Handle{
		engs: engs,
		opts: append([]explain.Option{explain.WithLogger(log)}, opts...),
		log:  log,
	}
}

// Register mounts every route on mux.
func (h *Handle) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.Healthz)
	mux.HandleFunc("/v1/explain", h.Explain)
	mux.HandleFunc("/", h.Index)
}

func (h *Handle) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handle) explainer(name string) (*explain.Explainer, error) {
	eng, err := h.engs.GetEngine(name)
	if err != nil {
		return nil, err
	}
	return explain.New(eng, h.opts...), nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
