package views

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rhystmorgan/onboardTerm/internal/profile"
	"rhystmorgan/onboardTerm/internal/utils"
)

const (
	noticeDuration = 6 * time.Second
	// Server messages longer than this are cut to keep the box on screen.
	maxNoticeLen = 160
)

type FeedbackMessage struct {
	Type     FeedbackType
	Title    string
	Message  string
	Duration time.Duration
	ShowTime time.Time
}

type FeedbackType string

const (
	FeedbackSuccess FeedbackType = "success"
	FeedbackError   FeedbackType = "error"
	FeedbackInfo    FeedbackType = "info"
)

// FeedbackTimeoutMsg dismisses the feedback shown at ShowTime.
type FeedbackTimeoutMsg struct {
	ShowTime time.Time
}

func newFeedback(feedbackType FeedbackType, title, message string) *FeedbackMessage {
	return &FeedbackMessage{
		Type:     feedbackType,
		Title:    title,
		Message:  utils.TruncateString(message, maxNoticeLen),
		Duration: noticeDuration,
		ShowTime: time.Now(),
	}
}

func feedbackFromNotice(n profile.Notice) *FeedbackMessage {
	feedbackType := FeedbackError
	if n.Kind == profile.NoticeSuccess {
		feedbackType = FeedbackSuccess
	}
	return newFeedback(feedbackType, n.Title, n.Message)
}

func dismissFeedback(f *FeedbackMessage) tea.Cmd {
	shown := f.ShowTime
	return tea.Tick(f.Duration, func(time.Time) tea.Msg {
		return FeedbackTimeoutMsg{ShowTime: shown}
	})
}

func renderFeedbackMessage(f *FeedbackMessage) string {
	if f == nil {
		return ""
	}

	var color string
	switch f.Type {
	case FeedbackSuccess:
		color = utils.Colours.Green
	case FeedbackError:
		color = utils.Colours.Red
	case FeedbackInfo:
		color = utils.Colours.Blue
	default:
		color = utils.Colours.Text
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Padding(0, 1)

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(true)

	messageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Text))

	return boxStyle.Render(titleStyle.Render(f.Title) + "\n" + messageStyle.Render(f.Message))
}
