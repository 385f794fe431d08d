package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jwulff/voicememo/internal/memo"
	"github.com/jwulff/voicememo/internal/ui"
)

// Placeholder shown in the detail panel when nothing is selected.
const (
	PlaceholderSelect = "Select a recording to view its transcript and chat with AI."
	PlaceholderRecord = "Or, press Space to create a new recording."
)

func (m Model) contentVisibleLines() int {
	if m.height == 0 {
		return 20
	}
	// Reserve: header(1) + status(1) + dividers(2) + error(1) + footer(1) + padding
	reserved := 8
	return max(5, m.height-reserved)
}

func (m Model) listPanelWidth() int {
	if m.width == 0 {
		return 30
	}
	return max(24, m.width*35/100)
}

func (m Model) detailPanelWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(30, m.width-m.listPanelWidth()-1)
}

// View renders the full TUI.
func (m Model) View() string {
	if m.configErr != nil {
		return m.renderConfigError()
	}
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	// Main content: recordings | detail
	sections = append(sections, m.renderMainContent())

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	}

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("VOICE MEMO AI ASSISTANT")
	if m.chatModel == "" {
		return title
	}
	return title + ui.DimStyle.Render("  Powered by "+m.chatModel)
}

func (m Model) renderStatusBar() string {
	var dot string
	if m.recording {
		dot = ui.RecordingDotStyle.Render("● REC")
	} else {
		dot = ui.IdleDotStyle.Render("○ IDLE")
	}

	var levels string
	if m.recording {
		levels = "  " + ui.TimestampStyle.Render(formatDuration(m.elapsed)) +
			"  " + renderLevelMeter("MIC", m.micLevel)
	}

	var processing string
	if m.busy() {
		processing = "  " + ui.SpinnerStyle.Render("⟳ AI")
	}

	var status string
	if m.statusText != "" {
		status = "  " + ui.StatusStyle.Render(m.statusText)
	}

	return dot + levels + processing + status
}

func renderLevelMeter(label string, level float32) string {
	const barLen = 8
	filled := int(level * barLen)
	if filled > barLen {
		filled = barLen
	}

	var bar string
	for i := 0; i < barLen; i++ {
		if i < filled {
			pct := float32(i) / float32(barLen)
			if pct > 0.6 {
				bar += ui.LevelYellowStyle.Render("█")
			} else {
				bar += ui.LevelGreenStyle.Render("█")
			}
		} else {
			bar += ui.LevelGrayStyle.Render("░")
		}
	}
	return ui.MicLabelStyle.Render(label) + " " + bar
}

func (m Model) renderMainContent() string {
	listW := m.listPanelWidth()
	detailW := m.detailPanelWidth()
	contentH := m.contentVisibleLines()

	listPanel := m.renderListPanel(listW, contentH)
	detailPanel := m.renderDetailPanel(detailW, contentH)

	divider := ui.DividerStyle.Render("│")

	listLines := strings.Split(listPanel, "\n")
	detailLines := strings.Split(detailPanel, "\n")

	for len(listLines) < contentH {
		listLines = append(listLines, strings.Repeat(" ", listW))
	}

	var rows []string
	for i := 0; i < contentH; i++ {
		dl := ""
		if i < len(detailLines) {
			dl = detailLines[i]
		}
		rows = append(rows, listLines[i]+divider+dl)
	}

	return strings.Join(rows, "\n")
}

func (m Model) renderListPanel(width, height int) string {
	recs := m.store.AllRecordings()

	title := fmt.Sprintf("RECORDINGS (%d)", len(recs))
	var header string
	if m.focusedPanel == FocusList {
		header = ui.PanelTitleActiveStyle.Render(title)
	} else {
		header = ui.PanelTitleStyle.Render(title)
	}

	lines := []string{header}

	if len(recs) == 0 {
		lines = append(lines, ui.DimStyle.Render("  No recordings yet"))
		lines = append(lines, ui.DimStyle.Render("  Press Space to record"))
	} else {
		selected := selectedIndex(m.store, recs)

		// Keep the selected row visible.
		rows := height - 1
		start := 0
		if selected >= rows {
			start = selected - rows + 1
		}

		for i := start; i < len(recs) && i-start < rows; i++ {
			r := recs[i]
			label := truncateToWidth(r.Name, max(4, width-12))
			meta := " " + formatDuration(r.Duration()) + " " + m.transcriptMarker(r)

			if i == selected {
				lines = append(lines, ui.SelectedStyle.Render("> "+label)+ui.DimStyle.Render(meta))
			} else {
				lines = append(lines, "  "+label+ui.DimStyle.Render(meta))
			}
		}
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, l := range lines {
		lines[i] = padRight(l, width)
	}

	return strings.Join(lines, "\n")
}

func (m Model) transcriptMarker(r memo.Recording) string {
	switch {
	case !r.Transcript.IsPending():
		return ui.DoneBadgeStyle.Render("✓")
	case m.transcribing[r.ID]:
		return ui.PendingTextStyle.Render("…")
	default:
		return ui.ErrorTextStyle.Render("!")
	}
}

func (m Model) renderDetailPanel(width, height int) string {
	sel, ok := m.store.CurrentSelection()
	if !ok {
		lines := []string{
			"",
			ui.DimStyle.Render("  " + PlaceholderSelect),
			ui.DimStyle.Render("  " + PlaceholderRecord),
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
		return strings.Join(lines[:height], "\n")
	}

	textW := max(10, width-4)

	// Title and transcript
	var top []string
	top = append(top, "  "+ui.PanelTitleStyle.Render(sel.Name)+
		ui.DimStyle.Render("  "+sel.CreatedAt.Format("2006-01-02 15:04")+" · "+formatDuration(sel.Duration())))
	top = append(top, "")
	top = append(top, "  "+ui.PanelTitleStyle.Render("TRANSCRIPT"))

	transcriptMax := max(3, (height-6)/2)
	var transcript []string
	if text, ok := sel.Transcript.Text(); ok && strings.TrimSpace(text) != "" {
		transcript = wrapText(text, textW)
	} else if ok {
		transcript = []string{ui.DimStyle.Render("(no speech detected)")}
	} else if m.transcribing[sel.ID] {
		transcript = []string{ui.PendingTextStyle.Render("Transcribing...")}
	} else {
		transcript = []string{ui.DimStyle.Render("No transcript available.")}
	}
	if len(transcript) > transcriptMax {
		transcript = append(transcript[:transcriptMax-1], "…")
	}
	for _, l := range transcript {
		top = append(top, "  "+l)
	}

	top = append(top, "")
	if m.focusedPanel == FocusChat {
		top = append(top, "  "+ui.PanelTitleActiveStyle.Render("CHAT"))
	} else {
		top = append(top, "  "+ui.PanelTitleStyle.Render("CHAT"))
	}

	// Chat, bottom-anchored above the input line
	chat := m.renderChatLines(sel, textW)
	chatRows := height - len(top) - 1
	if chatRows < 0 {
		chatRows = 0
	}
	if len(chat) > chatRows {
		chat = chat[len(chat)-chatRows:]
	}

	lines := append(top, chat...)
	for len(lines) < height-1 {
		lines = append(lines, "")
	}
	if len(lines) > height-1 {
		lines = lines[:max(0, height-1)]
	}
	lines = append(lines, m.renderInputLine(width))

	return strings.Join(lines, "\n")
}

func (m Model) renderChatLines(sel memo.Recording, width int) []string {
	var lines []string
	if len(sel.ChatHistory) == 0 && !m.replying[sel.ID] {
		if sel.Transcript.IsPending() {
			lines = append(lines, "  "+ui.DimStyle.Render("Chat opens once the transcript is ready."))
		} else {
			lines = append(lines, "  "+ui.DimStyle.Render("Ask the assistant about this recording."))
		}
		return lines
	}

	const labelW = 5
	indent := strings.Repeat(" ", labelW)
	for _, msg := range sel.ChatHistory {
		var label string
		if msg.Sender == memo.SenderAssistant {
			label = ui.AssistantLabelStyle.Render("AI:  ")
		} else {
			label = ui.UserLabelStyle.Render("You: ")
		}
		wrapped := wrapText(msg.Text, max(10, width-labelW))
		lines = append(lines, "  "+label+wrapped[0])
		for _, wl := range wrapped[1:] {
			lines = append(lines, "  "+indent+wl)
		}
	}
	if m.replying[sel.ID] {
		lines = append(lines, "  "+ui.SpinnerStyle.Render("AI is thinking..."))
	}
	return lines
}

func (m Model) renderInputLine(width int) string {
	if m.focusedPanel != FocusChat {
		return "  " + ui.DimStyle.Render("> Press Tab to chat")
	}
	input := m.input
	// Show the tail of long input.
	if room := width - 5; room > 0 {
		if r := []rune(input); len(r) > room {
			input = string(r[len(r)-room:])
		}
	}
	return "  " + ui.SelectedStyle.Render("> ") + ui.InputStyle.Render(input+"▌")
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
}

func (m Model) renderFooter() string {
	var parts []string

	if m.focusedPanel == FocusChat {
		parts = append(parts, ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Send"))
		parts = append(parts, ui.FooterKeyStyle.Render("Tab")+ui.FooterDescStyle.Render(" Recordings"))
		parts = append(parts, ui.FooterKeyStyle.Render("ctrl+c")+ui.FooterDescStyle.Render(" Quit"))
		return strings.Join(parts, "  ")
	}

	if m.recording {
		parts = append(parts, ui.FooterKeyStyle.Render("Space")+ui.FooterDescStyle.Render(" Stop"))
	} else {
		parts = append(parts, ui.FooterKeyStyle.Render("Space")+ui.FooterDescStyle.Render(" Record"))
	}
	parts = append(parts, ui.FooterKeyStyle.Render("j/k")+ui.FooterDescStyle.Render(" Select"))
	parts = append(parts, ui.FooterKeyStyle.Render("Tab")+ui.FooterDescStyle.Render(" Chat"))
	parts = append(parts, ui.FooterKeyStyle.Render("e")+ui.FooterDescStyle.Render(" Export"))
	parts = append(parts, ui.FooterKeyStyle.Render("q")+ui.FooterDescStyle.Render(" Quit"))

	return strings.Join(parts, "  ")
}

// Helpers

func formatDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func padRight(s string, width int) string {
	// Get visible length (ignoring ANSI codes)
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	// Simple truncation for non-styled strings
	runes := []rune(s)
	if len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
