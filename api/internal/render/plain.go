package render

import (
	"fmt"
	"strings"

	"study-helper/api/internal/markup"
)

// Plain drops all emphasis and keeps only list markers.
func Plain(blocks []markup.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, bl := range blocks {
		switch bl.Kind {
		case markup.Heading, markup.Paragraph:
			parts = append(parts, bl.Text.Text())
		case markup.OrderedList:
			lines := make([]string, 0, len(bl.Items))
			for i, it := range bl.Items {
				lines = append(lines, fmt.Sprintf("%d. %s", i+1, it.Text()))
			}
			parts = append(parts, strings.Join(lines, "\n"))
		case markup.UnorderedList:
			lines := make([]string, 0, len(bl.Items))
			for _, it := range bl.Items {
				lines = append(lines, "- "+it.Text())
			}
			parts = append(parts, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}
