// Package tui drives a local demo from the terminal.
package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"he-demo/config"
	"he-demo/logging"
	"he-demo/models"
	"he-demo/render"
	"he-demo/service"
)

const (
	tickInterval = 100 * time.Millisecond
	// toastTicks is how long a notification stays on the status line
	toastTicks = 30
	// framesPerStep slows the processing animation to one frame per 500ms
	framesPerStep = 5
)

type tickMsg time.Time

type toast struct {
	note    models.Notification
	expires int
}

// Model is the Bubble Tea model for one demo
type Model struct {
	demo   *service.Demo
	styles styles
	state  models.DemoState

	selected int
	editBuf  string
	keyBuf   string
	errMsg   string

	toasts []toast
	ticks  int
	width  int
}

func New(demo *service.Demo, theme config.Theme) *Model {
	m := &Model{
		demo:   demo,
		styles: newStyles(theme),
	}
	m.refresh()
	m.editBuf = m.currentValueText()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tickMsg:
		m.ticks++
		m.refresh()
		return m, tick()
	}
	return m, nil
}

// refresh pulls the controller snapshot and pending notifications
func (m *Model) refresh() {
	m.state = m.demo.Snapshot()
	for _, n := range m.demo.Notifications() {
		m.toasts = append(m.toasts, toast{note: n, expires: m.ticks + toastTicks})
	}

	live := m.toasts[:0]
	for _, t := range m.toasts {
		if t.expires > m.ticks {
			live = append(live, t)
		}
	}
	m.toasts = live

	if m.selected >= len(m.state.Values) {
		m.selected = len(m.state.Values) - 1
		m.editBuf = m.currentValueText()
	}
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+r":
		m.apply(m.demo.Reset())
		m.keyBuf = ""
		m.editBuf = m.currentValueText()
		return m, nil
	}

	switch m.state.Step {
	case models.StepInput:
		return m, m.handleEditorKey(msg)
	case models.StepComplete:
		m.handleDecryptKey(msg)
	default:
		if key == "q" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) tea.Cmd {
	switch key := msg.String(); key {
	case "up", "k":
		m.selectValue(m.selected - 1)
	case "down", "j":
		m.selectValue(m.selected + 1)
	case "a":
		if m.apply(m.demo.AddValue()) {
			m.selectValue(len(m.state.Values) - 1)
		}
	case "x":
		if m.apply(m.demo.RemoveValue(m.selected)) {
			m.selectValue(m.selected)
		}
	case "backspace":
		if r := []rune(m.editBuf); len(r) > 0 {
			m.setValueText(string(r[:len(r)-1]))
		}
	case "enter":
		m.apply(m.demo.Run())
	case "q":
		return tea.Quit
	default:
		if isNumericInput(msg) {
			m.setValueText(m.editBuf + key)
		}
	}
	return nil
}

func (m *Model) handleDecryptKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "tab":
		m.apply(m.demo.ToggleKeyVisibility())
	case "ctrl+g":
		if m.apply(m.demo.UseGeneratedKey()) {
			m.keyBuf, _ = m.demo.CandidateKey()
		}
	case "backspace":
		if r := []rune(m.keyBuf); len(r) > 0 {
			m.setKeyText(string(r[:len(r)-1]))
		}
	case "enter":
		if strings.TrimSpace(m.keyBuf) == "" || m.state.Aggregate == "" {
			return
		}
		if _, err := m.demo.Decrypt(); err != nil {
			logging.Debugf("decrypt failed: %v", err)
		}
		m.refresh()
	case " ":
		m.setKeyText(m.keyBuf + " ")
	default:
		if msg.Type == tea.KeyRunes {
			m.setKeyText(m.keyBuf + string(msg.Runes))
		}
	}
}

func isNumericInput(msg tea.KeyMsg) bool {
	if msg.Type != tea.KeyRunes {
		return false
	}
	for _, r := range msg.Runes {
		if (r < '0' || r > '9') && r != '.' && r != '-' && r != 'e' && r != '+' {
			return false
		}
	}
	return true
}

func (m *Model) selectValue(i int) {
	if i < 0 || i >= len(m.state.Values) {
		if len(m.state.Values) == 0 {
			return
		}
		i = min(max(i, 0), len(m.state.Values)-1)
	}
	m.selected = i
	m.editBuf = m.currentValueText()
}

func (m *Model) setValueText(text string) {
	m.editBuf = text
	m.apply(m.demo.UpdateValue(m.selected, text))
}

func (m *Model) setKeyText(text string) {
	m.keyBuf = text
	m.apply(m.demo.SetCandidateKey(text))
}

func (m *Model) currentValueText() string {
	if m.selected < 0 || m.selected >= len(m.state.Values) {
		return ""
	}
	return render.FormatValue(m.state.Values[m.selected])
}

// apply records err for the status line and refreshes the snapshot.
// It reports whether the operation succeeded.
func (m *Model) apply(err error) bool {
	m.refresh()
	if err != nil {
		m.errMsg = err.Error()
		return false
	}
	m.errMsg = ""
	return true
}
