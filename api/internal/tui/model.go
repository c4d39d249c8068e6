package tui

import (
	"context"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"study-helper/api/internal/explain"
	"study-helper/api/internal/logger"
	"study-helper/api/internal/markup"
	"study-helper/api/internal/render"
)

// copiedFor is how long the "copied" indicator stays up.
const copiedFor = 2 * time.Second

var clipboardWrite = clipboard.WriteAll

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("105"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// explainResultMsg carries a finished explanation back to Update.
type explainResultMsg struct {
	out explain.Outcome
	dur time.Duration
}

// copiedExpiredMsg clears the copied indicator set by the copy with the same seq.
type copiedExpiredMsg struct{ seq int }

type model struct {
	ctx   context.Context
	x     *explain.Explainer
	log   *logger.Logger
	style string

	input   textinput.Model
	spinner spinner.Model
	vp      viewport.Model

	width, height int

	loading   bool
	lastText  string
	lastErr   string
	copied    bool
	copiedSeq int
}

func newModel(ctx context.Context, x *explain.Explainer, log *logger.Logger, style string) model {
	in := textinput.New()
	in.Placeholder = "Enter a topic, e.g. photosynthesis"
	in.Prompt = "› "
	in.CharLimit = 200
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if log == nil {
		log = logger.Nop()
	}
	return model{
		ctx:     ctx,
		x:       x,
		log:     log,
		style:   style,
		input:   in,
		spinner: sp,
		vp:      viewport.New(80, 20),
		width:   80,
		height:  24,
	}
}

// Run starts the interactive explainer and blocks until the user quits.
func Run(ctx context.Context, x *explain.Explainer, log *logger.Logger, style string) error {
	p := tea.NewProgram(newModel(ctx, x, log, style), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case explainResultMsg:
		m.loading = false
		m.input.Focus()
		m.lastText, m.lastErr = "", ""
		if msg.out.Failure != nil {
			m.lastErr = msg.out.Failure.Message
			m.log.Warn("explain failed", "kind", msg.out.Failure.Kind.String(), "attempts", msg.out.Attempts, "dur", msg.dur)
		} else {
			m.lastText = msg.out.Text
			m.log.Debug("explain done", "topic", msg.out.Topic, "attempts", msg.out.Attempts, "dur", msg.dur)
		}
		m.refresh()
		m.vp.GotoTop()
		return m, nil

	case copiedExpiredMsg:
		if msg.seq == m.copiedSeq {
			m.copied = false
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		return m.submit()
	case "ctrl+y":
		return m.copy()
	case "ctrl+l":
		if m.loading {
			return m, nil
		}
		m.input.SetValue("")
		m.lastText, m.lastErr = "", ""
		m.copied = false
		m.refresh()
		return m, nil
	case "pgup", "pgdown", "up", "down":
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(key)
		return m, cmd
	}
	if m.loading {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

func (m model) submit() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	topic := strings.TrimSpace(m.input.Value())
	if topic == "" {
		return m, nil
	}
	m.loading = true
	m.copied = false
	m.input.Blur()
	return m, tea.Batch(m.spinner.Tick, explainCmd(m.ctx, m.x, topic))
}

func (m model) copy() (tea.Model, tea.Cmd) {
	if m.lastText == "" {
		return m, nil
	}
	if err := clipboardWrite(m.lastText); err != nil {
		m.log.Warn("clipboard write failed", "error", err)
		return m, nil
	}
	m.copied = true
	m.copiedSeq++
	seq := m.copiedSeq
	return m, tea.Tick(copiedFor, func(time.Time) tea.Msg { return copiedExpiredMsg{seq: seq} })
}

func explainCmd(ctx context.Context, x *explain.Explainer, topic string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		out := x.Explain(ctx, topic)
		return explainResultMsg{out: out, dur: time.Since(start)}
	}
}

func (m *model) resize() {
	w := max(m.width-4, 20)
	// title, input, status and hint lines plus the box border
	h := max(m.height-8, 3)
	m.vp.Width = w
	m.vp.Height = h
	m.input.Width = max(w-4, 10)
}

// refresh re-renders the result pane for the current width.
func (m *model) refresh() {
	switch {
	case m.lastErr != "":
		m.vp.SetContent(errorStyle.Render(m.lastErr))
	case m.lastText != "":
		blocks := markup.FormatOrLiteral(m.lastText)
		out, err := render.Terminal(blocks, m.vp.Width, m.style)
		if err != nil {
			m.log.Warn("terminal render failed", "error", err)
			out = render.Plain(blocks)
		}
		m.vp.SetContent(out)
	default:
		m.vp.SetContent(hintStyle.Render("Your explanation will appear here."))
	}
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("📚 AI Study Helper"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " Thinking…")
	case m.copied:
		b.WriteString(okStyle.Render("✓ copied"))
	}
	b.WriteString("\n")

	b.WriteString(boxStyle.Render(m.vp.View()))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("enter explain • ctrl+y copy • ctrl+l clear • esc quit"))
	return b.String()
}
