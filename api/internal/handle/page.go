package handle

import (
	"html/template"
	"net/http"
	"strings"

	"study-helper/api/internal/markup"
	"study-helper/api/internal/render"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>AI Study Helper</title>
<style>
body{font-family:system-ui,sans-serif;background:#0a0a0a;color:#d1d5db;max-width:48rem;margin:2rem auto;padding:0 1rem}
h1,h2,h3{font-family:Georgia,serif;color:#d8b4fe}
input{width:70%;padding:.75rem;border-radius:.75rem;border:2px solid #374151;background:#1f2937;color:#f3f4f6}
button{padding:.75rem 1.5rem;border-radius:.75rem;border:0;background:#6366f1;color:#fff}
.result{margin-top:1.5rem;padding:1.5rem;border-radius:1rem;border:1px solid #1f2937;background:#111827}
.error{border-color:#ef4444;color:#fca5a5}
.summary{padding:1rem;border-left:4px solid #a855f7;background:rgba(88,28,135,.2);font-style:italic}
</style>
</head>
<body>
<header><h1>AI Study Helper</h1><p>Ask anything, learn everything</p></header>
<form method="post" action="/">
<input type="text" name="topic" value="{{.Topic}}" placeholder="What would you like to learn about?" aria-label="Enter topic to learn about" autofocus>
<button type="submit">Generate</button>
</form>
{{if .Error}}<section class="result error"><h2>Error</h2><p>{{.Error}}</p></section>{{end}}
{{if .Body}}<section class="result"><h2>Here's what I found:</h2>{{.Body}}</section>{{end}}
</body>
</html>
`))

type pageData struct {
	Topic string
	Error string
	Body  template.HTML
}

// Index serves the form and, on POST, the rendered explanation.
func (h *Handle) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	var data pageData
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		data.Topic = strings.TrimSpace(r.FormValue("topic"))
		if data.Topic == "" {
			break
		}
		x, err := h.explainer(r.FormValue("engine"))
		if err != nil {
			data.Error = err.Error()
			break
		}
		out := x.Explain(r.Context(), data.Topic)
		if out.Failure != nil {
			data.Error = out.Failure.Message
			break
		}
		// render.HTML escapes all model text
		data.Body = template.HTML(render.HTML(markup.FormatOrLiteral(out.Text)))
	default:
		http.Error(w, "GET or POST only", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		h.log.Error("render page", "error", err)
	}
}
