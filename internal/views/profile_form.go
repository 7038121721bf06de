package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"rhystmorgan/onboardTerm/internal/form"
	"rhystmorgan/onboardTerm/internal/i18n"
	"rhystmorgan/onboardTerm/internal/profile"
	"rhystmorgan/onboardTerm/internal/utils"
	"rhystmorgan/onboardTerm/internal/validation"
)

type LookupResultMsg struct {
	Ticket form.Ticket
	Result validation.ValidationResult
	Err    error
}

// SubmitLookupMsg and SubmitDoneMsg carry the sequence number of the submit
// that issued them; a reset starts a new sequence.
type SubmitLookupMsg struct {
	Seq    int
	Plan   form.SubmitPlan
	Result validation.ValidationResult
	Err    error
}

type SubmitDoneMsg struct {
	Seq    int
	Notice profile.Notice
}

type ProfileFormModel struct {
	ctx        context.Context
	controller *form.Controller
	lookup     form.CorporationValidator
	submitter  *profile.Submitter
	translator *i18n.Translator
	log        *zap.SugaredLogger

	inputs  []textinput.Model
	focused int
	spinner spinner.Model

	submitting      bool
	submitSeq       int
	feedbackMessage *FeedbackMessage
	width           int
}

func NewProfileFormModel(
	ctx context.Context,
	controller *form.Controller,
	lookup form.CorporationValidator,
	submitter *profile.Submitter,
	translator *i18n.Translator,
	log *zap.SugaredLogger,
) *ProfileFormModel {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Mauve))

	m := &ProfileFormModel{
		ctx:        ctx,
		controller: controller,
		lookup:     lookup,
		submitter:  submitter,
		translator: translator,
		log:        log,
		spinner:    s,
	}

	for _, field := range validation.Fields {
		input := textinput.New()
		input.Prompt = "› "
		input.Cursor.SetMode(cursor.CursorStatic)
		input.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Blue))
		input.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(utils.Colours.Text))
		if field == validation.FieldFirstName || field == validation.FieldLastName {
			input.CharLimit = 50
		}
		m.inputs = append(m.inputs, input)
	}
	m.refreshPlaceholders()
	m.inputs[0].Focus()

	return m
}

func (m *ProfileFormModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Busy reports whether a lookup or a submission is in flight; submit is
// disabled meanwhile.
func (m *ProfileFormModel) Busy() bool {
	return m.submitting || m.controller.LookupPending()
}

func (m *ProfileFormModel) Update(msg tea.Msg) (*ProfileFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return m, m.moveFocus(1)
		case "shift+tab", "up":
			return m, m.moveFocus(-1)
		case "enter":
			if m.focused == len(m.inputs)-1 {
				return m, m.submit()
			}
			return m, m.moveFocus(1)
		case "ctrl+s":
			return m, m.submit()
		case "ctrl+r":
			m.reset()
			return m, nil
		case "ctrl+l":
			return m, m.toggleLocale()
		}
		return m, m.updateFocusedInput(msg)

	case LookupResultMsg:
		m.controller.ApplyLookup(msg.Ticket, msg.Result, msg.Err)
		return m, nil

	case SubmitLookupMsg:
		if msg.Seq != m.submitSeq {
			m.log.Debugw("discarding lookup from an abandoned submit", "seq", msg.Seq)
			return m, nil
		}
		data, ok := m.controller.CompleteSubmit(msg.Plan, msg.Result, msg.Err)
		if !ok {
			m.submitting = false
			return m, nil
		}
		return m, m.postProfile(msg.Seq, data)

	case SubmitDoneMsg:
		if msg.Seq != m.submitSeq {
			m.log.Debugw("discarding result of an abandoned submit", "seq", msg.Seq)
			return m, nil
		}
		m.submitting = false
		m.feedbackMessage = feedbackFromNotice(msg.Notice)
		return m, dismissFeedback(m.feedbackMessage)

	case FeedbackTimeoutMsg:
		if m.feedbackMessage != nil && m.feedbackMessage.ShowTime.Equal(msg.ShowTime) {
			m.feedbackMessage = nil
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.updateFocusedInput(msg)
}

func (m *ProfileFormModel) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)

	field := validation.Fields[m.focused]
	raw := m.inputs[m.focused].Value()
	if raw == m.controller.Values().Get(field) {
		return cmd
	}

	if formatted := m.controller.Change(field, raw); formatted != raw {
		m.inputs[m.focused].SetValue(formatted)
		m.inputs[m.focused].CursorEnd()
	}
	return cmd
}

// moveFocus blurs the focused field, which may start a corporation-number
// lookup, and focuses its neighbour.
func (m *ProfileFormModel) moveFocus(delta int) tea.Cmd {
	cmd := m.blurFocused()

	m.inputs[m.focused].Blur()
	m.focused = (m.focused + delta + len(m.inputs)) % len(m.inputs)
	return tea.Batch(cmd, m.inputs[m.focused].Focus())
}

func (m *ProfileFormModel) blurFocused() tea.Cmd {
	field := validation.Fields[m.focused]
	m.controller.Touch(field)
	if field != validation.FieldCorporationNumber {
		return nil
	}

	ticket, ok := m.controller.BeginLookup()
	if !ok {
		return nil
	}
	return m.lookupCorporation(ticket)
}

func (m *ProfileFormModel) lookupCorporation(ticket form.Ticket) tea.Cmd {
	ctx, lookup := m.ctx, m.lookup
	return func() tea.Msg {
		result, err := lookup.ValidateCorporationNumber(ctx, ticket.Value)
		return LookupResultMsg{Ticket: ticket, Result: result, Err: err}
	}
}

func (m *ProfileFormModel) submit() tea.Cmd {
	if m.Busy() {
		return nil
	}

	plan, ok := m.controller.PrepareSubmit()
	if !ok {
		return nil
	}
	m.submitting = true
	m.submitSeq++
	m.feedbackMessage = nil
	seq := m.submitSeq

	if !plan.NeedsLookup {
		data, ok := m.controller.CompleteSubmit(plan, validation.ValidationResult{}, nil)
		if !ok {
			m.submitting = false
			return nil
		}
		return m.postProfile(seq, data)
	}

	ctx, lookup := m.ctx, m.lookup
	return func() tea.Msg {
		result, err := lookup.ValidateCorporationNumber(ctx, plan.Ticket.Value)
		return SubmitLookupMsg{Seq: seq, Plan: plan, Result: result, Err: err}
	}
}

func (m *ProfileFormModel) postProfile(seq int, data validation.ProfileFormData) tea.Cmd {
	ctx, submitter := m.ctx, m.submitter
	return func() tea.Msg {
		return SubmitDoneMsg{Seq: seq, Notice: submitter.Submit(ctx, data)}
	}
}

func (m *ProfileFormModel) reset() {
	m.controller.Reset()
	for i := range m.inputs {
		m.inputs[i].Reset()
		m.inputs[i].Blur()
	}
	m.focused = 0
	m.inputs[0].Focus()
	m.submitting = false
	m.submitSeq++
	m.feedbackMessage = nil
}

func (m *ProfileFormModel) toggleLocale() tea.Cmd {
	locale := m.translator.Toggle()
	m.controller.Revalidate()
	m.refreshPlaceholders()
	m.log.Infow("locale changed", "locale", locale)

	// A pending submission notice takes precedence.
	if m.submitting {
		return nil
	}
	m.feedbackMessage = newFeedback(FeedbackInfo, m.translator.T("alerts.locale.title"), m.translator.T("alerts.locale.message"))
	return dismissFeedback(m.feedbackMessage)
}

func (m *ProfileFormModel) refreshPlaceholders() {
	for i, field := range validation.Fields {
		m.inputs[i].Placeholder = m.translator.T(fieldKey(field, "placeholder"))
	}
}

func fieldKey(field validation.Field, leaf string) string {
	return "profileForm.fields." + string(field) + "." + leaf
}

func (m *ProfileFormModel) View() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Blue)).
		Bold(true).
		Padding(1, 0)

	localeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0))

	var content strings.Builder

	locale := m.translator.Locale()
	header := titleStyle.Render(m.translator.T("app.title")) + "  " +
		localeStyle.Render(utils.FlagEmoji(i18n.CountryCode(locale))+" "+strings.ToUpper(string(locale)))
	content.WriteString(header)
	content.WriteString("\n\n")

	for i, field := range validation.Fields {
		content.WriteString(m.renderField(i, field))
		content.WriteString("\n")
	}

	content.WriteString(m.renderSubmit())
	content.WriteString("\n\n")
	content.WriteString(m.renderStatus())

	if m.feedbackMessage != nil {
		content.WriteString("\n\n")
		content.WriteString(renderFeedbackMessage(m.feedbackMessage))
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Subtext0)).
		Italic(true)
	content.WriteString("\n\n")
	content.WriteString(helpStyle.Render(m.translator.T("app.help")))

	return content.String()
}

func (m *ProfileFormModel) renderField(i int, field validation.Field) string {
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Text)).
		Bold(true)

	borderColour := utils.Colours.Surface1
	if i == m.focused {
		borderColour = utils.Colours.Blue
	}

	errMsg := m.controller.DisplayedError(field)
	if errMsg != "" {
		borderColour = utils.Colours.Red
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(borderColour)).
		Padding(0, 1).
		Width(44)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Red))

	var b strings.Builder
	b.WriteString(labelStyle.Render(m.translator.T(fieldKey(field, "label"))))
	b.WriteString("\n")

	input := inputStyle.Render(m.inputs[i].View())
	if field == validation.FieldCorporationNumber && m.controller.LookupPending() {
		input = lipgloss.JoinHorizontal(lipgloss.Center, input, " "+m.spinner.View())
	}
	b.WriteString(input)
	b.WriteString("\n")

	if errMsg != "" {
		b.WriteString(errorStyle.Render("✗ " + errMsg))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *ProfileFormModel) renderSubmit() string {
	buttonStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Base)).
		Background(lipgloss.Color(utils.Colours.Green)).
		Bold(true).
		Padding(0, 2)

	if m.Busy() {
		buttonStyle = buttonStyle.
			Foreground(lipgloss.Color(utils.Colours.Overlay1)).
			Background(lipgloss.Color(utils.Colours.Surface0))
	}

	label := m.translator.T("app.submit")
	if m.submitting {
		label = m.spinner.View() + " " + m.translator.T("app.submitting")
	}
	return buttonStyle.Render(label)
}

func (m *ProfileFormModel) renderStatus() string {
	if m.controller.LookupPending() {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Mauve)).
			Render(m.translator.T("app.validating"))
	}

	if m.controller.IsValid() {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Green)).
			Render("✓ " + m.translator.T("app.formValid"))
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(utils.Colours.Yellow)).
		Render("• " + m.translator.T("app.formInvalid"))
}
