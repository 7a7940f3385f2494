package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"he-demo/config"
	"he-demo/models"
	"he-demo/render"
)

const cardWidth = 68

type styles struct {
	card      lipgloss.Style
	accent    lipgloss.Style
	title     lipgloss.Style
	heading   lipgloss.Style
	primary   lipgloss.Style
	highlight lipgloss.Style
	muted     lipgloss.Style
	cipher    lipgloss.Style
	errText   lipgloss.Style
	result    lipgloss.Style
	toast     lipgloss.Style
}

func newStyles(theme config.Theme) styles {
	primary := lipgloss.Color(theme.Primary)
	accent := lipgloss.Color(theme.Accent)
	muted := lipgloss.Color("#7b8a99")

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primary).
		Padding(0, 1).
		Width(cardWidth)

	return styles{
		card:      card,
		accent:    card.BorderForeground(accent),
		title:     lipgloss.NewStyle().Foreground(muted).Faint(true),
		heading:   lipgloss.NewStyle().Bold(true),
		primary:   lipgloss.NewStyle().Foreground(primary),
		highlight: lipgloss.NewStyle().Foreground(accent).Bold(true),
		muted:     lipgloss.NewStyle().Foreground(muted),
		cipher:    lipgloss.NewStyle().Foreground(primary).Faint(true),
		errText:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6b75")),
		result: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(primary).
			Foreground(primary).
			Bold(true).
			Padding(0, 2),
		toast: lipgloss.NewStyle().Foreground(accent),
	}
}

func (m *Model) View() string {
	header := m.styles.heading.Render("Lattigo ") +
		m.styles.primary.Bold(true).Render("HE") +
		m.styles.heading.Render(" Demo") +
		m.styles.muted.Render("  simulating "+m.state.Scheme)

	cards := []string{m.clientCard(), m.serverCard(), m.decryptCard()}
	var body string
	if m.width > 0 && m.width < 3*(cardWidth+4) {
		body = lipgloss.JoinVertical(lipgloss.Left, cards...)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", m.statusLine())
}

func (m *Model) clientCard() string {
	st := m.state
	lines := []string{
		m.styles.title.Render(render.CardTitle(0)),
		m.styles.heading.Render("1 Client-Side Encryption"),
		"",
	}

	for i, v := range st.Values {
		text := render.FormatValue(v)
		cursor := "  "
		if st.EditorEnabled && i == m.selected {
			text = m.editBuf
			cursor = m.styles.highlight.Render("> ")
		}
		lines = append(lines, fmt.Sprintf("%sx%d: %s", cursor, i+1, text))
	}
	lines = append(lines, "", "Plaintext Sum: "+m.styles.primary.Bold(true).Render(render.FormatAmount(st.PlaintextSum)))

	if st.Step == models.StepInput {
		hints := []string{"[enter] Generate Keys & Encrypt"}
		if st.CanAddValue {
			hints = append(hints, "[a] add")
		}
		if st.CanRemoveValue {
			hints = append(hints, "[x] remove")
		}
		lines = append(lines, "", m.styles.muted.Render(strings.Join(hints, "  ")))
	}

	if st.PublicKey != "" {
		lines = append(lines, "", m.styles.muted.Render("Public Key (truncated):"),
			m.styles.cipher.Render(render.Truncate(st.PublicKey, render.PublicKeyWidth)))
	}

	if len(st.EncryptedValues) > 0 {
		lines = append(lines, "", m.styles.muted.Render("Encrypted Values:"))
		for _, ev := range st.EncryptedValues {
			lines = append(lines,
				render.EncLabel(ev.Plaintext),
				m.styles.cipher.Render(render.Truncate(string(ev.Ciphertext), render.CiphertextWidth)))
		}
	}

	return m.styles.card.Render(strings.Join(lines, "\n"))
}

func (m *Model) serverCard() string {
	st := m.state
	lines := []string{
		m.styles.title.Render(render.CardTitle(1)),
		m.styles.highlight.Render("2") + m.styles.heading.Render(" Server-Side Processing"),
		"",
		m.styles.muted.Render("func AddEncrypted(ct1, ct2) {"),
		m.styles.primary.Render("    // Server NEVER sees plaintext"),
		m.styles.muted.Render("    return evaluator.Add(ct1, ct2)"),
		m.styles.muted.Render("}"),
		"",
	}

	switch {
	case render.ProcessingActive(st.Step):
		lines = append(lines, m.styles.primary.Render(render.ProcessingFrame(m.ticks/framesPerStep)))
	case st.Step == models.StepComplete && st.Aggregate != "":
		lines = append(lines,
			m.styles.muted.Render("Encrypted Sum Result"),
			m.styles.cipher.Render(render.Truncate(string(st.Aggregate), render.AggregateWidth)),
			"",
			m.styles.muted.Render("Server computed Σ Enc(xᵢ) without decryption"))
	case st.Step == models.StepInput:
		lines = append(lines, m.styles.muted.Render("Awaiting encrypted data..."))
	}

	return m.styles.accent.Render(strings.Join(lines, "\n"))
}

func (m *Model) decryptCard() string {
	st := m.state
	lines := []string{
		m.styles.title.Render(render.CardTitle(2)),
		m.styles.heading.Render("3 Client-Side Decryption"),
		"",
	}

	panel := st.Panel
	if panel == nil {
		lines = append(lines, m.styles.muted.Render(render.StageMessage(st.Step)))
		return m.styles.card.Render(strings.Join(lines, "\n"))
	}

	key := panel.CandidateKey
	if key == "" {
		key = m.styles.muted.Render("Enter your private key...")
	}
	lines = append(lines,
		"Private Key: "+key+m.styles.highlight.Render("_"),
		m.styles.muted.Render("[tab] show/hide  [ctrl+g] use generated key"),
	)
	if panel.CanDecrypt {
		lines = append(lines, m.styles.muted.Render("[enter] Decrypt Result"))
	}

	if panel.Error != "" {
		lines = append(lines, "", m.styles.errText.Render(panel.Error))
	}
	if panel.Result != nil {
		lines = append(lines, "",
			m.styles.muted.Render("Decryption Successful"),
			m.styles.result.Render(render.FormatAmount(*panel.Result)),
			m.styles.muted.Render("Sum of encrypted values"))
	}

	return m.styles.card.Render(strings.Join(lines, "\n"))
}

func (m *Model) statusLine() string {
	var parts []string
	if n := len(m.toasts); n > 0 {
		last := m.toasts[n-1].note
		parts = append(parts, m.styles.toast.Render(last.Title+": "+last.Description))
	}
	if m.errMsg != "" {
		parts = append(parts, m.styles.errText.Render(m.errMsg))
	}

	keys := "[ctrl+c] quit"
	if m.state.Step != models.StepInput {
		keys = "[ctrl+r] Reset Demo  " + keys
	}
	parts = append(parts, m.styles.muted.Render(keys))
	return strings.Join(parts, "\n")
}
