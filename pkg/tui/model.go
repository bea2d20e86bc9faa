// Package tui is the terminal front end: category buttons, a character map,
// the result list, a status line and the emergency contacts popup.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/kass/emergency-locator/pkg/search"
	"github.com/kass/emergency-locator/pkg/session"
)

// Width of the result list, border excluded
const listWidth = 36

type locatedMsg struct {
	err error
}

type startedMsg struct{}

type searchDoneMsg struct {
	ticket  session.Ticket
	outcome search.Outcome
}

// Model is the bubbletea model wrapping one session
type Model struct {
	ctx        context.Context
	sess       *session.Session
	canvas     *Canvas
	categories []search.Category

	spinner  spinner.Model
	help     help.Model
	locating bool
	pending  uint64

	cursor        int
	contactCursor int
	notice        string

	width  int
	height int
}

// New builds the model. canvas must be the one the session draws on.
func New(ctx context.Context, sess *session.Session, canvas *Canvas) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return Model{
		ctx:        ctx,
		sess:       sess,
		canvas:     canvas,
		categories: search.Categories(),
		spinner:    s,
		help:       help.New(),
		width:      100,
		height:     30,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.start())
}

func (m Model) start() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		sess.Start(ctx)
		return startedMsg{}
	}
}

func (m Model) locate() tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		_, err := sess.AcquireLocation(ctx)
		return locatedMsg{err: err}
	}
}

func (m Model) run(t session.Ticket) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		return searchDoneMsg{ticket: t, outcome: sess.Run(ctx, t)}
	}
}

func (m Model) busy() bool {
	return m.locating || m.pending != 0
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case startedMsg:
		return m, nil

	case locatedMsg:
		m.locating = false
		return m, nil

	case searchDoneMsg:
		m.sess.Complete(msg.ticket, msg.outcome)
		if msg.ticket.Seq == m.pending {
			m.pending = 0
			m.cursor = 0
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		return m, tea.Quit
	}

	popup := m.sess.Popup()
	if popup.Visible() {
		return m.handlePopupKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Emergency):
		popup.Toggle()
		m.contactCursor = 0
		m.notice = ""

	case key.Matches(msg, keys.Locate):
		if m.locating {
			return m, nil
		}
		m.locating = true
		return m, m.locate()

	case key.Matches(msg, keys.Category):
		i := int(msg.String()[0] - '1')
		if i < 0 || i >= len(m.categories) {
			return m, nil
		}
		t, ok := m.sess.Begin(m.categories[i].Key)
		if !ok {
			return m, nil
		}
		m.pending = t.Seq
		m.cursor = 0
		return m, m.run(t)

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.sess.Results())-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Focus):
		if m.sess.FocusResult(m.cursor) {
			m.sess.OpenInfo(m.cursor)
		}

	case key.Matches(msg, keys.ZoomIn):
		m.canvas.Zoom(1)

	case key.Matches(msg, keys.ZoomOut):
		m.canvas.Zoom(-1)
	}

	return m, nil
}

func (m Model) handlePopupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	popup := m.sess.Popup()
	contacts := popup.Contacts()

	switch {
	case key.Matches(msg, keys.Emergency):
		popup.Toggle()
	case key.Matches(msg, keys.Close):
		popup.Close()
	case key.Matches(msg, keys.Up):
		if m.contactCursor > 0 {
			m.contactCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.contactCursor < len(contacts)-1 {
			m.contactCursor++
		}
	case key.Matches(msg, keys.Focus):
		uri, err := popup.Call(m.contactCursor)
		if err != nil {
			m.notice = err.Error()
		} else {
			m.notice = "Dial " + uri
		}
	default:
		// Any other key counts as a click outside the popup
		popup.ClickOutside(false)
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🚨 Emergency Locator"))
	b.WriteString("\n\n")
	b.WriteString(m.renderButtons())
	b.WriteString("\n")

	if m.sess.Popup().Visible() {
		b.WriteString(m.renderPopup())
	} else {
		mapWidth := m.width - listWidth - 6
		if mapWidth < 20 {
			mapWidth = 20
		}
		mapHeight := m.height - 12
		if mapHeight < 8 {
			mapHeight = 8
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			mapStyle.Render(m.canvas.Render(mapWidth, mapHeight)),
			listStyle.Width(listWidth).Render(m.renderResults(listWidth-listStyle.GetHorizontalPadding())),
		))
		if info, ok := m.canvas.Info(); ok {
			b.WriteString("\n")
			b.WriteString(infoStyle.Render(info.String()))
		}
	}

	b.WriteString("\n")
	status := m.sess.Status()
	if m.busy() {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))

	return b.String()
}

func (m Model) renderButtons() string {
	enabled := m.sess.ControlsEnabled()
	active := m.sess.ActiveCategory()

	buttons := make([]string, 0, len(m.categories))
	for i, c := range m.categories {
		label := fmt.Sprintf("%d %s", i+1, c.Label)
		switch {
		case !enabled:
			buttons = append(buttons, disabledButtonStyle.Render(label))
		case c.Key == active:
			buttons = append(buttons, activeButtonStyle.Render(label))
		default:
			buttons = append(buttons, buttonStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, buttons...)
}

// renderResults draws the list so that no line is wider than width
func (m Model) renderResults(width int) string {
	results := m.sess.Results()
	if len(results) == 0 {
		return dimStyle.Render("No results yet")
	}

	var b strings.Builder
	n := 0
	for i, e := range results {
		if e.Place == nil {
			b.WriteString(lipgloss.NewStyle().Width(width).Render(e.Text))
			b.WriteString("\n")
			continue
		}
		n++
		label := markerLabel(n) + " "
		text := runewidth.Truncate(e.Text, width-2-len(label), "…")
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> " + label + text))
		} else {
			b.WriteString("  " + label + text)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderPopup() string {
	var b strings.Builder
	b.WriteString(errorStyle.Render("Emergency contacts"))
	b.WriteString("\n\n")
	for i, c := range m.sess.Popup().Contacts() {
		line := fmt.Sprintf("%-18s %s", c.Name, c.Number)
		if i == m.contactCursor {
			line = cursorStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.notice))
	}
	return popupStyle.Render(b.String())
}
