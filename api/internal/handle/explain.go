package handle

import (
	"encoding/json"
	"net/http"
	"strings"

	"study-helper/api/internal/explain"
	"study-helper/api/internal/markup"
	"study-helper/api/internal/render"
)

type ExplainRequest struct {
	Topic  string `json:"topic"`
	Engine string `json:"engine,omitempty"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Status  int    `json:"status,omitempty"`
	Message string `json:"message"`
}

type ExplainResponse struct {
	OK       bool           `json:"ok"`
	Topic    string         `json:"topic"`
	Text     string         `json:"text,omitempty"`
	Blocks   []markup.Block `json:"blocks,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Attempts int            `json:"attempts"`
	Error    *ErrorBody     `json:"error,omitempty"`
}

func (h *Handle) Explain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req ExplainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		http.Error(w, "topic is required", http.StatusBadRequest)
		return
	}

	x, err := h.explainer(req.Engine)
	if err != nil {
		http.Error(w, "engine error: "+err.Error(), http.StatusBadRequest)
		return
	}

	out := x.Explain(r.Context(), req.Topic)
	resp := ExplainResponse{OK: out.OK(), Topic: out.Topic, Attempts: out.Attempts}
	if f := out.Failure; f != nil {
		resp.Error = &ErrorBody{Kind: f.Kind.String(), Status: f.Status, Message: f.Message}
		writeJSON(w, failureStatus(f), resp)
		return
	}
	resp.Text = out.Text
	resp.Blocks = markup.FormatOrLiteral(out.Text)
	resp.HTML = render.HTML(resp.Blocks)
	writeJSON(w, http.StatusOK, resp)
}

func failureStatus(f *explain.Failure) int {
	switch f.Kind {
	case explain.RateLimited:
		return http.StatusTooManyRequests
	case explain.CredentialMissing:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
