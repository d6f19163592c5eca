// Package tui is the interactive ask-and-vote surface. One TUI run is one
// experiment session: the variant is assigned at startup and fixed until
// exit, and every answered question is logged to the event store.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdfqa/internal/events"
	"pdfqa/internal/experiment"
	"pdfqa/internal/rag"
)

// Answerer is the pipeline surface the TUI drives.
type Answerer interface {
	Answer(ctx context.Context, question string, topK int) (*rag.Result, error)
}

// Appender is the event-store surface the TUI writes to.
type Appender interface {
	Append(ctx context.Context, ev events.Event) error
}

// Model is the Bubble Tea model for the ask-and-vote session.
type Model struct {
	pipeline   Answerer
	store      Appender
	session    experiment.Session
	experiment string
	summary    string

	input    textinput.Model
	viewport viewport.Model
	status   string
	ready    bool

	lastEvent *events.Event
}

// New creates a new TUI model instance.
func New(pipeline Answerer, store Appender, session experiment.Session, experimentName, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		pipeline:   pipeline,
		store:      store,
		session:    session,
		experiment: experimentName,
		summary:    summary,
		input:      ti,
		viewport:   vp,
		status:     "Index loaded. Ask away.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + summary, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				m.ask(q)
				return m, nil
			}
		case "ctrl+g":
			m.vote("up")
			return m, nil
		case "ctrl+b":
			m.vote("down")
			return m, nil
		case "pgup":
			m.viewport.LineUp(5)
			return m, nil
		case "pgdown":
			m.viewport.LineDown(5)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) ask(question string) {
	ctx := context.Background()
	res, err := m.pipeline.Answer(ctx, question, m.session.TopK)
	if err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	ev := events.Event{
		SessionID:   m.session.ID,
		Experiment:  m.experiment,
		Variant:     m.session.Variant,
		Question:    question,
		TopK:        m.session.TopK,
		LatencyMS:   res.Elapsed.Milliseconds(),
		Citations:   res.Citations,
		SourcePages: res.SourcePages,
		Answer:      res.Answer,
	}
	if err := m.store.Append(ctx, ev); err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	m.lastEvent = &ev
	m.viewport.SetContent(renderResult(res))
	m.viewport.GotoTop()
	m.status = fmt.Sprintf("Latency: %.2fs | ctrl+g 👍 / ctrl+b 👎", res.Elapsed.Seconds())
	m.input.SetValue("")
}

// vote re-appends the last result as a new event carrying the feedback.
func (m *Model) vote(direction string) {
	if m.lastEvent == nil {
		m.status = "Nothing to rate yet."
		return
	}
	ev := *m.lastEvent
	ev.UserVote = direction
	if err := m.store.Append(context.Background(), ev); err != nil {
		m.status = "Error: " + err.Error()
		return
	}
	if direction == "up" {
		m.status = "Logged 👍"
	} else {
		m.status = "Logged 👎"
	}
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("PDF Q&A (A/B top_k)")
	caption := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(fmt.Sprintf(
		"Experiment: %s | Session: %.8s | Variant: %s | top_k=%d",
		m.experiment, m.session.ID, m.session.Variant, m.session.TopK))
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + caption + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func renderResult(res *rag.Result) string {
	var b strings.Builder
	b.WriteString("Answer\n\n")
	b.WriteString(res.Answer)
	b.WriteString("\n\n")
	b.WriteString(res.Citations)
	b.WriteString("\n\nSources\n")
	for i, s := range res.Sources {
		page := "?"
		if s.Page != nil {
			page = fmt.Sprintf("%d", *s.Page)
		}
		b.WriteString(fmt.Sprintf("\n%d. Page %s | %s\n", i+1, page, s.Snippet))
	}
	return b.String()
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
