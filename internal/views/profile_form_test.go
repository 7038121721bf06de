package views

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"rhystmorgan/onboardTerm/internal/api"
	"rhystmorgan/onboardTerm/internal/i18n"
	"rhystmorgan/onboardTerm/internal/profile"
	"rhystmorgan/onboardTerm/internal/validation"
)

type fakeBackend struct {
	mu      sync.Mutex
	result  validation.ValidationResult
	err     error
	postErr error
	lookups []string
	posts   []api.ProfileInput
}

func (f *fakeBackend) ValidateCorporationNumber(ctx context.Context, value string) (validation.ValidationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, value)
	return f.result, f.err
}

func (f *fakeBackend) PostProfile(ctx context.Context, input api.ProfileInput) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, input)
	return f.postErr
}

func newTestForm(t *testing.T, backend *fakeBackend) *ProfileFormModel {
	t.Helper()

	app, err := NewAppModel(context.Background(), backend, i18n.MustTranslator(i18n.English), nil)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
	return app.profileForm
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func typeText(m *ProfileFormModel, text string) *ProfileFormModel {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// press sends k and runs the resulting commands synchronously, feeding
// lookup and submission results back into the model.
func press(m *ProfileFormModel, k tea.KeyMsg) *ProfileFormModel {
	m, cmd := m.Update(k)
	return run(m, cmd)
}

func run(m *ProfileFormModel, cmd tea.Cmd) *ProfileFormModel {
	if cmd == nil {
		return m
	}

	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = run(m, c)
		}
	case LookupResultMsg, SubmitLookupMsg:
		var next tea.Cmd
		m, next = m.Update(msg)
		m = run(m, next)
	case SubmitDoneMsg:
		// the returned dismissal timer is not run
		m, _ = m.Update(msg)
	}
	return m
}

func fillForm(m *ProfileFormModel, first, last, phone, corp string) *ProfileFormModel {
	m = typeText(m, first)
	m = press(m, key(tea.KeyTab))
	m = typeText(m, last)
	m = press(m, key(tea.KeyTab))
	m = typeText(m, phone)
	m = press(m, key(tea.KeyTab))
	return typeText(m, corp)
}

func TestProfileFormSubmitsProfile(t *testing.T) {
	backend := &fakeBackend{result: validation.ValidationResult{Valid: true}}
	m := newTestForm(t, backend)

	m = fillForm(m, "John", "Doe", "2345678901", "123456789")
	m = press(m, key(tea.KeyCtrlS))

	want := []api.ProfileInput{{
		FirstName:         "John",
		LastName:          "Doe",
		Phone:             "+12345678901",
		CorporationNumber: "123456789",
	}}
	if diff := cmp.Diff(want, backend.posts); diff != "" {
		t.Errorf("Posted profiles mismatch (-want +got):\n%s", diff)
	}
	if len(backend.lookups) != 1 {
		t.Errorf("Expected one pre-submit lookup, got %d", len(backend.lookups))
	}
	if m.feedbackMessage == nil || m.feedbackMessage.Type != FeedbackSuccess {
		t.Fatalf("Expected success feedback, got %+v", m.feedbackMessage)
	}
	if m.feedbackMessage.Message != "Profile submitted successfully!" {
		t.Errorf("Expected success message, got %q", m.feedbackMessage.Message)
	}
	if m.Busy() {
		t.Error("Expected form to be idle after submission")
	}
}

func TestProfileFormEnterOnLastFieldSubmits(t *testing.T) {
	backend := &fakeBackend{result: validation.ValidationResult{Valid: true}}
	m := newTestForm(t, backend)

	m = fillForm(m, "Jane", "Roe", "+15555550100", "987654321")
	m = press(m, key(tea.KeyEnter))

	if len(backend.posts) != 1 {
		t.Errorf("Expected enter on the last field to submit, got %d posts", len(backend.posts))
	}
}

func TestProfileFormBlocksInvalidSubmit(t *testing.T) {
	backend := &fakeBackend{result: validation.ValidationResult{Valid: true}}
	m := newTestForm(t, backend)

	m = typeText(m, "John")
	m = press(m, key(tea.KeyCtrlS))

	if len(backend.posts) != 0 || len(backend.lookups) != 0 {
		t.Errorf("Expected nothing sent, got %d posts and %d lookups", len(backend.posts), len(backend.lookups))
	}
	if !strings.Contains(m.View(), "Last name is required") {
		t.Error("Expected field errors to be shown after a blocked submit")
	}
}

func TestProfileFormFormatsPhoneInput(t *testing.T) {
	m := newTestForm(t, &fakeBackend{})

	m = press(m, key(tea.KeyTab))
	m = press(m, key(tea.KeyTab))
	m = typeText(m, "(234) 567-8901")

	if got := m.inputs[2].Value(); got != "+12345678901" {
		t.Errorf("Expected formatted phone in the input, got %q", got)
	}
}

func TestProfileFormBlurLookupShowsError(t *testing.T) {
	backend := &fakeBackend{result: validation.ValidationResult{Valid: false, Message: "Corporation is dissolved"}}
	m := newTestForm(t, backend)

	m = fillForm(m, "John", "Doe", "2345678901", "123456789")
	m = press(m, key(tea.KeyTab))

	if len(backend.lookups) != 1 {
		t.Fatalf("Expected blur to run one lookup, got %d", len(backend.lookups))
	}
	if !strings.Contains(m.View(), "Corporation is dissolved") {
		t.Error("Expected the lookup message under the corporation number")
	}
	if m.focused != 0 {
		t.Errorf("Expected focus to wrap to the first field, got %d", m.focused)
	}
}

func TestProfileFormSubmitDisabledWhileLookupPending(t *testing.T) {
	backend := &fakeBackend{result: validation.ValidationResult{Valid: true}}
	m := newTestForm(t, backend)

	m = fillForm(m, "John", "Doe", "2345678901", "123456789")

	// blur without delivering the lookup result
	m, _ = m.Update(key(tea.KeyTab))
	if !m.Busy() {
		t.Fatal("Expected a pending lookup")
	}

	if _, cmd := m.Update(key(tea.KeyCtrlS)); cmd != nil {
		t.Error("Expected submit to be ignored while a lookup is pending")
	}
}

func TestProfileFormSubmitFailureNotice(t *testing.T) {
	backend := &fakeBackend{
		result:  validation.ValidationResult{Valid: true},
		postErr: api.NewStatusError("profile submission", 400, "Phone already registered"),
	}
	m := newTestForm(t, backend)

	m = fillForm(m, "John", "Doe", "2345678901", "123456789")
	m = press(m, key(tea.KeyCtrlS))

	if m.feedbackMessage == nil || m.feedbackMessage.Type != FeedbackError {
		t.Fatalf("Expected error feedback, got %+v", m.feedbackMessage)
	}
	if m.feedbackMessage.Message != "Phone already registered" {
		t.Errorf("Expected server message, got %q", m.feedbackMessage.Message)
	}
}

func TestProfileFormReset(t *testing.T) {
	m := newTestForm(t, &fakeBackend{})

	m = fillForm(m, "John", "Doe", "2345678901", "12345")
	m = press(m, key(tea.KeyCtrlR))

	for i, input := range m.inputs {
		if input.Value() != "" {
			t.Errorf("Expected input %d to be cleared, got %q", i, input.Value())
		}
	}
	if m.focused != 0 {
		t.Errorf("Expected focus on the first field, got %d", m.focused)
	}
	if diff := cmp.Diff(validation.ProfileFormData{}, m.controller.Values()); diff != "" {
		t.Errorf("Expected empty form values (-want +got):\n%s", diff)
	}
}

func TestProfileFormToggleLocale(t *testing.T) {
	m := newTestForm(t, &fakeBackend{})

	m = press(m, key(tea.KeyTab))
	if !strings.Contains(m.View(), "First name is required") {
		t.Fatal("Expected English error before toggling")
	}

	m, _ = m.Update(key(tea.KeyCtrlL))
	view := m.View()

	if !strings.Contains(view, "Formulaire d'inscription") {
		t.Error("Expected French title after toggling")
	}
	if !strings.Contains(view, "\U0001F1EB\U0001F1F7") {
		t.Error("Expected the French flag in the header")
	}
	if strings.Contains(view, "First name is required") {
		t.Error("Expected field errors to be re-localized")
	}
}

func TestProfileFormResetDiscardsInFlightSubmit(t *testing.T) {
	backend := &fakeBackend{result: validation.ValidationResult{Valid: true}}
	m := newTestForm(t, backend)
	m = fillForm(m, "John", "Doe", "2345678901", "123456789")

	m, lookup := m.Update(key(tea.KeyCtrlS))
	m, post := m.Update(lookup())
	if post == nil || !m.Busy() {
		t.Fatal("Expected a pending submission")
	}

	m = press(m, key(tea.KeyCtrlR))
	m, _ = m.Update(post())

	if m.feedbackMessage != nil {
		t.Errorf("Expected no notice from the abandoned submit, got %+v", m.feedbackMessage)
	}
	if m.Busy() {
		t.Error("Expected the reset form to be idle")
	}

	m = fillForm(m, "Jane", "Roe", "2345678901", "123456789")
	m, lookup = m.Update(key(tea.KeyCtrlS))
	m, _ = m.Update(SubmitDoneMsg{Seq: m.submitSeq - 1, Notice: profile.Notice{Kind: profile.NoticeSuccess}})
	if !m.submitting {
		t.Error("Expected a stale result to leave the new submit pending")
	}
	m = run(m, lookup)
	if m.feedbackMessage == nil || m.feedbackMessage.Type != FeedbackSuccess {
		t.Errorf("Expected success for the new submit, got %+v", m.feedbackMessage)
	}
}

func TestProfileFormToggleLocaleShowsNotice(t *testing.T) {
	m := newTestForm(t, &fakeBackend{})

	m, cmd := m.Update(key(tea.KeyCtrlL))
	if cmd == nil {
		t.Error("Expected a dismissal timer for the notice")
	}
	if m.feedbackMessage == nil || m.feedbackMessage.Type != FeedbackInfo {
		t.Fatalf("Expected info feedback, got %+v", m.feedbackMessage)
	}
	if m.feedbackMessage.Message != "Interface en français" {
		t.Errorf("Expected French notice, got %q", m.feedbackMessage.Message)
	}
}

func TestFeedbackTruncatesLongMessages(t *testing.T) {
	f := feedbackFromNotice(profile.Notice{Kind: profile.NoticeError, Message: strings.Repeat("x", 500)})

	if got := len([]rune(f.Message)); got != maxNoticeLen {
		t.Errorf("Expected message cut to %d runes, got %d", maxNoticeLen, got)
	}
	if !strings.HasSuffix(f.Message, "...") {
		t.Errorf("Expected ellipsis, got %q", f.Message)
	}
}

func TestAppModelQuit(t *testing.T) {
	app, err := NewAppModel(context.Background(), &fakeBackend{}, i18n.MustTranslator(i18n.English), nil)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}

	_, cmd := app.Update(key(tea.KeyCtrlC))
	if cmd == nil {
		t.Fatal("Expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}
}

func TestNewAppModelRequiresBackend(t *testing.T) {
	if _, err := NewAppModel(context.Background(), nil, i18n.MustTranslator(i18n.English), nil); err == nil {
		t.Error("Expected error without a backend")
	}
}
