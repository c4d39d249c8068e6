package render

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/glamour"

	"study-helper/api/internal/markup"
)

var (
	mdEscaper      = strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", `\<`)
	reMdBlockStart = regexp.MustCompile(`^(\s*)([#>+\-]|\d+\.)`)
)

// Markdown turns blocks back into normalized CommonMark. Literal markup
// characters in the text are escaped; summaries become blockquotes.
func Markdown(blocks []markup.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, bl := range blocks {
		switch bl.Kind {
		case markup.Heading:
			parts = append(parts, strings.Repeat("#", bl.Level)+" "+mdInline(bl.Text))
		case markup.Paragraph:
			s := mdInline(bl.Text)
			if bl.Summary {
				s = "> " + strings.ReplaceAll(s, "\n", "\n> ")
			}
			parts = append(parts, s)
		case markup.OrderedList:
			lines := make([]string, 0, len(bl.Items))
			for i, it := range bl.Items {
				marker := fmt.Sprintf("%d. ", i+1)
				lines = append(lines, marker+indentContinuation(mdInline(it), len(marker)))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		case markup.UnorderedList:
			lines := make([]string, 0, len(bl.Items))
			for _, it := range bl.Items {
				lines = append(lines, "- "+indentContinuation(mdInline(it), 2))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// Terminal renders blocks for a terminal through glamour. style is a glamour
// standard style name ("dark", "light", "dracula", "notty"...).
func Terminal(blocks []markup.Block, width int, style string) (string, error) {
	if style == "" {
		style = "dracula"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(Markdown(blocks))
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}

func mdInline(in markup.Inline) string {
	var b strings.Builder
	for _, s := range in {
		t := escapeLines(s.Text)
		switch {
		case s.Style.Has(markup.Bold) && s.Style.Has(markup.Italic):
			t = wrapEmphasis(t, "**_", "_**")
		case s.Style.Has(markup.Bold):
			t = wrapEmphasis(t, "**", "**")
		case s.Style.Has(markup.Italic):
			t = wrapEmphasis(t, "_", "_")
		}
		b.WriteString(t)
	}
	return b.String()
}

func escapeLines(s string) string {
	lines := strings.Split(mdEscaper.Replace(s), "\n")
	for i, l := range lines {
		if m := reMdBlockStart.FindStringSubmatchIndex(l); m != nil {
			// escape the last character of the marker: "\#", "1\."
			cut := m[5] - 1
			lines[i] = l[:cut] + `\` + l[cut:]
		}
	}
	return strings.Join(lines, "\n")
}

// wrapEmphasis keeps surrounding whitespace outside the delimiters, since
// "** x**" is not emphasis in CommonMark.
func wrapEmphasis(s, open, close string) string {
	core := strings.TrimFunc(s, unicode.IsSpace)
	if core == "" {
		return s
	}
	lead := s[:strings.Index(s, core)]
	trail := s[len(lead)+len(core):]
	return lead + open + core + close + trail
}

func indentContinuation(s string, n int) string {
	return strings.ReplaceAll(s, "\n", "\n"+strings.Repeat(" ", n))
}
