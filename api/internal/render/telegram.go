package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"study-helper/api/internal/markup"
)

// TelegramLimit keeps chunks under Telegram's 4096 character message cap.
const TelegramLimit = 4000

// Telegram renders blocks for ParseMode HTML.
func Telegram(blocks []markup.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, bl := range blocks {
		parts = append(parts, telegramBlock(bl))
	}
	return strings.Join(parts, "\n\n")
}

// TelegramChunk is one message: HTML for ParseMode HTML and the same content
// as plain text, for when Telegram rejects the markup.
type TelegramChunk struct {
	HTML  string
	Plain string
}

// TelegramChunks groups rendered blocks into messages no longer than limit
// characters. A block too large on its own is sent as escaped plain text,
// split on rune boundaries, so no chunk ever cuts through a tag.
func TelegramChunks(blocks []markup.Block, limit int) []string {
	msgs := TelegramMessages(blocks, limit)
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.HTML)
	}
	return out
}

// TelegramMessages is TelegramChunks with a plain twin for every chunk. The
// plain text never exceeds its HTML, so it fits the same limit.
func TelegramMessages(blocks []markup.Block, limit int) []TelegramChunk {
	if limit <= 0 {
		limit = TelegramLimit
	}
	var (
		chunks []TelegramChunk
		cur    strings.Builder
		group  []markup.Block
	)
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, TelegramChunk{HTML: cur.String(), Plain: Plain(group)})
			cur.Reset()
			group = nil
		}
	}
	for _, bl := range blocks {
		s := telegramBlock(bl)
		if utf8.RuneCountInString(s) > limit {
			flush()
			chunks = append(chunks, splitEscaped(Plain([]markup.Block{bl}), limit)...)
			continue
		}
		if cur.Len() > 0 && utf8.RuneCountInString(cur.String())+2+utf8.RuneCountInString(s) > limit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n\n")
		}
		cur.WriteString(s)
		group = append(group, bl)
	}
	flush()
	return chunks
}

func telegramBlock(bl markup.Block) string {
	switch bl.Kind {
	case markup.Heading:
		return "<b>" + telegramInline(bl.Text) + "</b>"
	case markup.Paragraph:
		if bl.Summary {
			return "<blockquote>" + telegramInline(bl.Text) + "</blockquote>"
		}
		return telegramInline(bl.Text)
	case markup.OrderedList:
		lines := make([]string, 0, len(bl.Items))
		for i, it := range bl.Items {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, telegramInline(it)))
		}
		return strings.Join(lines, "\n")
	case markup.UnorderedList:
		lines := make([]string, 0, len(bl.Items))
		for _, it := range bl.Items {
			lines = append(lines, "• "+telegramInline(it))
		}
		return strings.Join(lines, "\n")
	default:
		return ""
	}
}

func telegramInline(in markup.Inline) string {
	var b strings.Builder
	for _, s := range in {
		t := tgbotapi.EscapeText(tgbotapi.ModeHTML, s.Text)
		if s.Style.Has(markup.Italic) {
			t = "<i>" + t + "</i>"
		}
		if s.Style.Has(markup.Bold) {
			t = "<b>" + t + "</b>"
		}
		b.WriteString(t)
	}
	return b.String()
}

// splitEscaped cuts plain text into pieces whose escaped form fits limit.
func splitEscaped(text string, limit int) []TelegramChunk {
	var (
		out      []TelegramChunk
		esc, raw strings.Builder
		n        int
	)
	for _, r := range text {
		e := tgbotapi.EscapeText(tgbotapi.ModeHTML, string(r))
		w := utf8.RuneCountInString(e)
		if n+w > limit && esc.Len() > 0 {
			out = append(out, TelegramChunk{HTML: esc.String(), Plain: raw.String()})
			esc.Reset()
			raw.Reset()
			n = 0
		}
		esc.WriteString(e)
		raw.WriteRune(r)
		n += w
	}
	if esc.Len() > 0 {
		out = append(out, TelegramChunk{HTML: esc.String(), Plain: raw.String()})
	}
	return out
}
