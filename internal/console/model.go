// Package console is a terminal chat with the same conversation the
// Telegram bot runs, for a single configured owner.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/remindme/internal/chat"
	"github.com/sandeepkv93/remindme/internal/commands"
	"github.com/sandeepkv93/remindme/internal/views"
)

const maxTranscript = 40

const helpMarkdown = `# remindme

Type a task, e.g. *buy milk by 4* or *call mom tomorrow at 7 evening*.

- **ctrl+l** show tasks, **ctrl+r** archive
- **ctrl+x** delete a task, **ctrl+o** mark one done
- type the **number** of an option to press it
- **/edit** edit a task, **/cancel** stop editing
- **esc** or **ctrl+c** quit
`

type StatusBar struct {
	Text    string
	IsError bool
}

// Menu shortcuts stand in for the reply keyboard.
var menuKeys = map[string]string{
	"ctrl+l": views.ButtonShowTasks,
	"ctrl+x": views.ButtonDeleteTask,
	"ctrl+o": views.ButtonMarkDone,
	"ctrl+r": views.ButtonArchive,
}

type Model struct {
	Transcript []views.Line
	Choices    [][]commands.Choice
	Status     StatusBar
	Width      int
	Quitting   bool

	ctx    context.Context
	conv   *chat.Conversation
	owner  int64
	events <-chan tea.Msg
	input  textinput.Model
}

func NewModel(ctx context.Context, conv *chat.Conversation, owner int64, events <-chan tea.Msg) Model {
	input := textinput.New()
	input.Placeholder = "buy milk by 4"
	input.CharLimit = 512
	input.Prompt = "> "
	input.Focus()

	m := Model{ctx: ctx, conv: conv, owner: owner, events: events, input: input}
	m.show(views.SpeakerBot, conv.Start(""))
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForInboxCmd(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = typed.Width
		return m, nil
	case ReminderDueMsg:
		m.show(views.SpeakerReminder, chat.ReminderReply(typed.Event))
		return m, waitForInboxCmd(m.events)
	case DigestDueMsg:
		m.show(views.SpeakerReminder, m.conv.DigestReply(typed.Tasks))
		return m, waitForInboxCmd(m.events)
	case tea.KeyMsg:
		key := typed.String()
		if label, ok := menuKeys[key]; ok {
			m.say(label)
			return m, nil
		}
		switch key {
		case "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit
		case "enter":
			raw := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			return m.submit(raw)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = "error: " + m.Status.Text
		} else {
			status = m.Status.Text
		}
	}
	return views.RenderChat(views.ChatFrame{
		Header:     "remindme",
		Transcript: m.Transcript,
		Choices:    m.choiceLabels(),
		Input:      m.input.View(),
		StatusLine: status,
		Footer:     "keys: ctrl+l tasks | ctrl+x delete | ctrl+o done | ctrl+r archive | /help | esc quit",
		Width:      m.Width,
	})
}

func (m Model) submit(raw string) (tea.Model, tea.Cmd) {
	if raw == "" {
		return m, nil
	}
	switch raw {
	case "/quit":
		m.Quitting = true
		return m, tea.Quit
	case "/help":
		m.Transcript = append(m.Transcript, views.Line{From: views.SpeakerBot, Text: views.RenderMarkdown(helpMarkdown)})
		m.trim()
		return m, nil
	}
	if choice, ok := m.pickChoice(raw); ok {
		m.press(choice)
		return m, nil
	}
	m.say(raw)
	return m, nil
}

func (m *Model) say(text string) {
	m.Transcript = append(m.Transcript, views.Line{From: views.SpeakerUser, Text: text})
	m.Status = StatusBar{}
	m.show(views.SpeakerBot, m.conv.HandleText(m.ctx, m.owner, text))
}

func (m *Model) press(choice commands.Choice) {
	m.Transcript = append(m.Transcript, views.Line{From: views.SpeakerUser, Text: choice.Label})
	reply, ok := m.conv.HandleToken(m.ctx, m.owner, choice.Token())
	if !ok {
		m.Choices = nil
		m.Status = StatusBar{Text: "that option is no longer available", IsError: true}
		return
	}
	m.Status = StatusBar{}
	m.show(views.SpeakerBot, reply)
}

func (m *Model) show(from views.Speaker, reply chat.Reply) {
	if reply.Empty() {
		return
	}
	m.Transcript = append(m.Transcript, views.Line{From: from, Text: reply.Text})
	m.Choices = reply.Choices
	m.trim()
}

func (m *Model) trim() {
	if over := len(m.Transcript) - maxTranscript; over > 0 {
		m.Transcript = append([]views.Line(nil), m.Transcript[over:]...)
	}
}

// pickChoice resolves a typed option number against the visible choices.
func (m Model) pickChoice(raw string) (commands.Choice, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return commands.Choice{}, false
	}
	flat := m.flatChoices()
	if n < 1 || n > len(flat) {
		return commands.Choice{}, false
	}
	return flat[n-1], true
}

func (m Model) flatChoices() []commands.Choice {
	out := make([]commands.Choice, 0)
	for _, row := range m.Choices {
		out = append(out, row...)
	}
	return out
}

func (m Model) choiceLabels() []string {
	flat := m.flatChoices()
	labels := make([]string, 0, len(flat))
	for i, c := range flat {
		labels = append(labels, fmt.Sprintf("[%d] %s", i+1, c.Label))
	}
	return labels
}
