package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-helper/api/internal/markup"
)

const sample = "# Photosynthesis\n\nPlants use **light** and *water*.\n\n1. Absorb\n2. Convert\n\n- CO2\n- H2O\n\nIn short: plants make food."

func TestHTML(t *testing.T) {
	got := HTML(markup.Format(sample))
	want := "<h1>Photosynthesis</h1>\n" +
		"<p>Plants use <strong>light</strong> and <em>water</em>.</p>\n" +
		"<ol>\n<li>Absorb</li>\n<li>Convert</li>\n</ol>\n" +
		"<ul>\n<li>CO2</li>\n<li>H2O</li>\n</ul>\n" +
		"<p class=\"summary\">In short: plants make food.</p>\n"
	assert.Equal(t, want, got)
}

func TestHTMLEscapesModelText(t *testing.T) {
	got := HTML(markup.Format("<script>alert(1)</script> **<b>x</b>**"))
	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, got, "<strong>&lt;b&gt;x&lt;/b&gt;</strong>")
}

func TestTelegram(t *testing.T) {
	got := Telegram(markup.Format(sample))
	want := "<b>Photosynthesis</b>\n\n" +
		"Plants use <b>light</b> and <i>water</i>.\n\n" +
		"1. Absorb\n2. Convert\n\n" +
		"• CO2\n• H2O\n\n" +
		"<blockquote>In short: plants make food.</blockquote>"
	assert.Equal(t, want, got)
}

func TestTelegramEscapes(t *testing.T) {
	got := Telegram(markup.Format("a < b & c > d"))
	assert.Equal(t, "a &lt; b &amp; c &gt; d", got)
}

func TestTelegramChunks(t *testing.T) {
	var paras []string
	for i := 0; i < 30; i++ {
		paras = append(paras, strings.Repeat("word ", 40))
	}
	blocks := markup.Format(strings.Join(paras, "\n\n"))

	chunks := TelegramChunks(blocks, 500)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 500)
	}
	assert.Equal(t, Telegram(blocks), strings.Join(chunks, "\n\n"))
}

func TestTelegramChunksOversizedBlock(t *testing.T) {
	blocks := markup.Format("**" + strings.Repeat("<", 300) + "**")
	chunks := TelegramChunks(blocks, 100)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 100)
		assert.NotContains(t, c, "<b>")
		assert.Equal(t, strings.Count(c, "&lt;")*4, utf8.RuneCountInString(c), "entities are never cut")
	}
}

func TestTelegramMessagesPlainTwin(t *testing.T) {
	var paras []string
	for i := 0; i < 12; i++ {
		paras = append(paras, "**Part** "+strings.Repeat("a&b ", 15))
	}
	blocks := markup.Format(strings.Join(paras, "\n\n") + "\n\n" + strings.Repeat("<", 250))

	msgs := TelegramMessages(blocks, 200)
	require.Greater(t, len(msgs), 2)
	var plains []string
	for _, m := range msgs {
		assert.LessOrEqual(t, utf8.RuneCountInString(m.Plain), utf8.RuneCountInString(m.HTML))
		assert.NotContains(t, m.Plain, "<b>")
		assert.NotContains(t, m.Plain, "&amp;")
		plains = append(plains, m.Plain)
	}
	last := msgs[len(msgs)-1]
	assert.Equal(t, strings.Repeat("&lt;", utf8.RuneCountInString(last.Plain)), last.HTML)

	joined := strings.Join(plains, "")
	assert.Equal(t, 12, strings.Count(joined, "Part "))
	assert.Equal(t, 250, strings.Count(joined, "<"))
	assert.Equal(t, TelegramChunks(blocks, 200), func() []string {
		var out []string
		for _, m := range msgs {
			out = append(out, m.HTML)
		}
		return out
	}())
}

func TestMarkdown(t *testing.T) {
	got := Markdown(markup.Format(sample))
	want := "# Photosynthesis\n\n" +
		"Plants use **light** and _water_.\n\n" +
		"1. Absorb\n2. Convert\n\n" +
		"- CO2\n- H2O\n\n" +
		"> In short: plants make food.\n"
	assert.Equal(t, want, got)
}

func TestMarkdownEscapesLiterals(t *testing.T) {
	blocks := []markup.Block{
		{Kind: markup.Paragraph, Text: markup.Inline{{Text: "# not a heading and 2 * 3 _x_"}}},
		{Kind: markup.Paragraph, Text: markup.Inline{{Text: "1. not a list"}}},
		{Kind: markup.Paragraph, Text: markup.Inline{{Text: "see ", Style: 0}, {Text: " spaced ", Style: markup.Bold}}},
	}
	got := Markdown(blocks)
	assert.Contains(t, got, `\# not a heading and 2 \* 3 \_x\_`)
	assert.Contains(t, got, `1\. not a list`)
	assert.Contains(t, got, "see  **spaced** ")
}

func TestTerminal(t *testing.T) {
	out, err := Terminal(markup.Format(sample), 60, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Photosynthesis")
	assert.Contains(t, out, "Absorb")
	assert.Contains(t, out, "plants make food")
}

func TestPlain(t *testing.T) {
	got := Plain(markup.Format(sample))
	want := "Photosynthesis\n\nPlants use light and water.\n\n1. Absorb\n2. Convert\n\n- CO2\n- H2O\n\nIn short: plants make food."
	assert.Equal(t, want, got)
}
