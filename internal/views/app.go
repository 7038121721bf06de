package views

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"rhystmorgan/onboardTerm/internal/form"
	"rhystmorgan/onboardTerm/internal/i18n"
	"rhystmorgan/onboardTerm/internal/profile"
	"rhystmorgan/onboardTerm/internal/utils"
	"rhystmorgan/onboardTerm/internal/validation"
)

// Backend is what the app needs from the onboarding API.
type Backend interface {
	form.CorporationValidator
	profile.ProfileClient
}

type AppModel struct {
	width  int
	height int

	log         *zap.SugaredLogger
	profileForm *ProfileFormModel

	err error
}

type ErrorMsg struct {
	Err error
}

func NewAppModel(ctx context.Context, backend Backend, translator *i18n.Translator, log *zap.SugaredLogger) (*AppModel, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if translator == nil {
		return nil, fmt.Errorf("translator is required")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	controller := form.NewController(form.Options{
		Schema:    validation.NewSchema(translator),
		Validator: backend,
		Log:       log,
		OnValidationChange: func(valid bool) {
			log.Debugw("form validity changed", "valid", valid)
		},
	})
	submitter := profile.NewSubmitter(backend, translator, log)

	return &AppModel{
		log:         log,
		profileForm: NewProfileFormModel(ctx, controller, backend, submitter, translator, log),
	}, nil
}

func (m AppModel) Init() tea.Cmd {
	return m.profileForm.Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.log.Infow("quit requested")
			return m, tea.Quit
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	m.profileForm, cmd = m.profileForm.Update(msg)
	return m, cmd
}

func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	content := m.profileForm.View()

	if m.err != nil {
		errorStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color(utils.Colours.Red)).
			Bold(true).
			Padding(1)
		content += "\n" + errorStyle.Render(fmt.Sprintf("Error: %s", m.err.Error()))
	}

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Padding(0, 2).
		Render(content)
}
