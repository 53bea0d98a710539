// Package views turns tasks and reminder outcomes into user-facing text. The
// plain messages are shared by every transport; the styled frame is for the
// terminal chat.
package views

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type Speaker int

const (
	SpeakerUser Speaker = iota
	SpeakerBot
	SpeakerReminder
)

type Line struct {
	From Speaker
	Text string
}

// ChatFrame is everything the terminal chat draws in one frame.
type ChatFrame struct {
	Header     string
	Transcript []Line
	Choices    []string
	Input      string
	StatusLine string
	Footer     string
	Width      int
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	userStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	botStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	reminderStyle = botStyle.BorderForeground(lipgloss.Color("11"))
	choiceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func RenderChat(frame ChatFrame) string {
	width := frame.Width
	if width <= 0 {
		width = 72
	}

	lines := []string{headerStyle.Render(frame.Header)}
	for _, l := range frame.Transcript {
		lines = append(lines, renderLine(l, width))
	}
	if len(frame.Choices) > 0 {
		choices := make([]string, 0, len(frame.Choices))
		for _, c := range frame.Choices {
			choices = append(choices, choiceStyle.Render(c))
		}
		lines = append(lines, strings.Join(choices, "\n"))
	}
	lines = append(lines, frame.Input)

	if frame.StatusLine != "" {
		status := statusStyle.Render(frame.StatusLine)
		if strings.Contains(strings.ToLower(frame.StatusLine), "error") {
			status = errorStyle.Render(frame.StatusLine)
		}
		lines = append(lines, status)
	}
	if frame.Footer != "" {
		lines = append(lines, footerStyle.Render(frame.Footer))
	}
	return strings.Join(lines, "\n")
}

func renderLine(l Line, width int) string {
	switch l.From {
	case SpeakerUser:
		return userStyle.Render("> " + l.Text)
	case SpeakerReminder:
		return reminderStyle.Width(width - 4).Render(l.Text)
	default:
		return botStyle.Width(width - 4).Render(l.Text)
	}
}

func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}
