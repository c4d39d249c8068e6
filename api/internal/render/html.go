package render

import (
	"fmt"
	"html"
	"strings"

	"study-helper/api/internal/markup"
)

// HTML renders blocks as an escaped HTML fragment. Emphasis becomes
// <strong>/<em>; no text from the model is ever emitted unescaped.
func HTML(blocks []markup.Block) string {
	var b strings.Builder
	for _, bl := range blocks {
		switch bl.Kind {
		case markup.Heading:
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", bl.Level, htmlInline(bl.Text), bl.Level)
		case markup.Paragraph:
			if bl.Summary {
				fmt.Fprintf(&b, "<p class=\"summary\">%s</p>\n", htmlInline(bl.Text))
			} else {
				fmt.Fprintf(&b, "<p>%s</p>\n", htmlInline(bl.Text))
			}
		case markup.OrderedList, markup.UnorderedList:
			tag := "ul"
			if bl.Kind == markup.OrderedList {
				tag = "ol"
			}
			fmt.Fprintf(&b, "<%s>\n", tag)
			for _, it := range bl.Items {
				fmt.Fprintf(&b, "<li>%s</li>\n", htmlInline(it))
			}
			fmt.Fprintf(&b, "</%s>\n", tag)
		}
	}
	return b.String()
}

func htmlInline(in markup.Inline) string {
	var b strings.Builder
	for _, s := range in {
		t := html.EscapeString(s.Text)
		if s.Style.Has(markup.Italic) {
			t = "<em>" + t + "</em>"
		}
		if s.Style.Has(markup.Bold) {
			t = "<strong>" + t + "</strong>"
		}
		b.WriteString(t)
	}
	return b.String()
}
