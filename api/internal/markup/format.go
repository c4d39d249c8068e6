// Package markup converts the markdown-like dialect returned by the model into
// presentation-free blocks. It never fails: anything it does not recognise is
// kept as literal text.
package markup

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reParagraphBreak = regexp.MustCompile(`\n{2,}`)
	reNumbered       = regexp.MustCompile(`^\d+\.\s`)
	reBullet         = regexp.MustCompile(`^[-*]\s`)
	reHeadingRun     = regexp.MustCompile(`^#+`)
	reBold           = regexp.MustCompile(`\*\*(.*?)\*\*`)
	// "In short:", "**Summary**:", "in summary：" ...
	reSummary = regexp.MustCompile(`(?i)^[*_]*(in short|summary|to summarize|in summary)[*_]*[:：]`)
)

const maxHeadingLevel = 3

// Format splits text into paragraphs on blank lines and classifies each one.
// Output order follows input order; blank results are dropped.
func Format(text string) []Block {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var blocks []Block
	for _, para := range reParagraphBreak.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if b, ok := classify(para); ok {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// FormatOrLiteral is Format for display: text that is not blank but formats to
// no blocks at all (a bare "####") comes back as one literal paragraph.
func FormatOrLiteral(text string) []Block {
	if blocks := Format(text); len(blocks) > 0 {
		return blocks
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return []Block{{Kind: Paragraph, Text: Inline{{Text: text}}}}
}

func classify(para string) (Block, bool) {
	switch {
	case reNumbered.MatchString(para):
		return list(OrderedList, para, reNumbered)
	case reBullet.MatchString(para) && !strings.HasPrefix(para, "**"):
		return list(UnorderedList, para, reBullet)
	case strings.HasPrefix(para, "#"):
		run := len(reHeadingRun.FindString(para))
		text := strings.TrimLeftFunc(para[run:], unicode.IsSpace)
		if text == "" {
			return Block{}, false
		}
		return Block{Kind: Heading, Level: min(run, maxHeadingLevel), Text: ParseInline(text)}, true
	default:
		return Block{Kind: Paragraph, Text: ParseInline(para), Summary: IsSummary(para)}, true
	}
}

func list(kind Kind, para string, marker *regexp.Regexp) (Block, bool) {
	var items []Inline
	for _, raw := range splitItems(para, marker) {
		item := strings.TrimSpace(marker.ReplaceAllString(raw, ""))
		if item == "" {
			continue
		}
		items = append(items, ParseInline(item))
	}
	if len(items) == 0 {
		return Block{}, false
	}
	return Block{Kind: kind, Items: items}, true
}

// splitItems breaks a list paragraph before every line that opens a new item.
// Lines that do not start with a marker continue the current item.
func splitItems(para string, marker *regexp.Regexp) []string {
	lines := strings.Split(para, "\n")
	var (
		items []string
		cur   strings.Builder
	)
	for i, line := range lines {
		candidate := line
		if i < len(lines)-1 {
			candidate += "\n"
		}
		if i > 0 && marker.MatchString(candidate) {
			items = append(items, cur.String())
			cur.Reset()
		} else if i > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	return append(items, cur.String())
}

// IsSummary reports whether a paragraph opens with a summary marker phrase.
func IsSummary(para string) bool {
	return reSummary.MatchString(strings.TrimSpace(para))
}

// ParseInline splits text into bold and italic spans. **x** is bold. A pair of
// single * is italic when neither asterisk touches another one outside a bold
// span; the pair may wrap bold text, which then becomes bold italic. Italic
// pairs never cross a line break. Unbalanced markers stay in the text.
func ParseInline(s string) Inline {
	style := make([]Style, len(s))
	drop := make([]bool, len(s))
	// region is -1 outside bold, -2 on a ** marker, k inside the k-th bold span
	region := make([]int, len(s))
	for i := range region {
		region[i] = -1
	}

	for k, b := range boldSpans(s) {
		for i := b[0]; i < b[1]; i++ {
			drop[i], region[i] = true, -2
		}
		for i := b[1]; i < b[2]; i++ {
			style[i] |= Bold
			region[i] = k
		}
		for i := b[2]; i < b[3]; i++ {
			drop[i], region[i] = true, -2
		}
	}

	open := map[int]int{}
	for i := 0; i < len(s); i++ {
		if !isItalicMarker(s, region, i) {
			continue
		}
		g := region[i]
		o, ok := open[g]
		if !ok || strings.IndexByte(s[o:i], '\n') >= 0 {
			open[g] = i
			continue
		}
		delete(open, g)
		drop[o], drop[i] = true, true
		for p := o + 1; p < i; p++ {
			style[p] |= Italic
		}
	}

	var out Inline
	for i := 0; i < len(s); {
		if drop[i] {
			i++
			continue
		}
		j := i + 1
		for j < len(s) && !drop[j] && style[j] == style[i] {
			j++
		}
		out = appendSpan(out, s[i:j], style[i])
		i = j
	}
	return out
}

// boldSpans returns [open, textStart, textEnd, close) for every **x** match.
func boldSpans(s string) [][4]int {
	var spans [][4]int
	for _, m := range reBold.FindAllStringSubmatchIndex(s, -1) {
		b := [4]int{m[0], m[2], m[3], m[1]}
		// ***x***: the lazy match swallows the italic opener into the bold text
		if b[2]-b[1] > 1 && s[b[1]] == '*' && b[3] < len(s) && s[b[3]] == '*' {
			b[0]++
			b[1]++
		}
		spans = append(spans, b)
	}
	return spans
}

func isItalicMarker(s string, region []int, i int) bool {
	if s[i] != '*' || region[i] == -2 {
		return false
	}
	if i > 0 && s[i-1] == '*' && region[i-1] == region[i] {
		return false
	}
	return i+1 >= len(s) || s[i+1] != '*' || region[i+1] != region[i]
}

func appendSpan(out Inline, text string, style Style) Inline {
	if text == "" {
		return out
	}
	if n := len(out); n > 0 && out[n-1].Style == style {
		out[n-1].Text += text
		return out
	}
	return append(out, Span{Text: text, Style: style})
}
