package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sagtrack/internal/i18n"
	"github.com/five82/sagtrack/internal/sagapi"
)

// commentSubmitMsg asks the model to post a comment.
type commentSubmitMsg struct {
	ts   int64
	text string
}

// commentForm collects one comment for an event.
type commentForm struct {
	event sagapi.Event
	input textinput.Model
	blank bool
}

func newCommentForm(ev sagapi.Event) commentForm {
	ti := textinput.New()
	ti.CharLimit = CommentLimit
	ti.Width = 56
	ti.Prompt = "> "
	ti.Focus()
	return commentForm{event: ev, input: ti}
}

func (f commentForm) Update(msg tea.Msg, _ keyMap) (Modal, tea.Cmd, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil, false
	}
	switch keyMsg.Type {
	case tea.KeyEsc:
		return f, nil, true
	case tea.KeyEnter:
		text := strings.TrimSpace(f.input.Value())
		if text == "" {
			f.blank = true
			return f, nil, false
		}
		out := commentSubmitMsg{ts: f.event.TS, text: text}
		return f, func() tea.Msg { return out }, true
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(keyMsg)
	f.blank = false
	return f, cmd, false
}

func (f commentForm) View(theme Theme, tr *i18n.Translator, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.MutedText.Render(formatEventTime(f.event.Time())))
	b.WriteString("\n\n")
	for _, line := range commentLines(f.event.Comments) {
		b.WriteString(styles.Text.Render(line))
		b.WriteString("\n")
	}
	if len(f.event.Comments) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(f.input.View())
	b.WriteString("\n\n")
	if f.blank {
		b.WriteString(styles.WarningText.Render(tr.T("comment.empty")))
		b.WriteString("\n")
	}
	b.WriteString(styles.MutedText.Render(tr.T("comment.hint")))

	return renderModal(theme, tr.T("comment.title"), b.String(), 64, width, height)
}

// commentLines renders a thread as "<time> — <text>" lines, oldest first.
func commentLines(comments []sagapi.Comment) []string {
	out := make([]string, 0, len(comments))
	for _, c := range comments {
		out = append(out, formatEventTime(c.Time())+" — "+c.Text)
	}
	return out
}
