package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"midiwarp/widgets"
)

var keyBar = []widgets.KeyBinding{
	{Key: "tab", Desc: "field"},
	{Key: "^t", Desc: "mode"},
	{Key: "^o", Desc: "load"},
	{Key: "^s", Desc: "solve"},
	{Key: "^g", Desc: "generate"},
	{Key: "^w", Desc: "save"},
	{Key: "^e", Desc: "eject"},
	{Key: "esc", Desc: "quit"},
	{Key: "f1", Desc: "help"},
}

var keyHelp = []widgets.KeySection{
	{Title: "Fields", Keys: []widgets.KeyBinding{
		{Key: "tab/down", Desc: "next editable field"},
		{Key: "shift+tab/up", Desc: "previous editable field"},
		{Key: "enter", Desc: "load source, save output, or solve"},
	}},
	{Title: "Solver", Keys: []widgets.KeyBinding{
		{Key: "ctrl+t", Desc: "cycle mode"},
		{Key: "ctrl+l", Desc: "toggle integer loops"},
		{Key: "ctrl+s", Desc: "solve and fill in derived values"},
	}},
	{Title: "Engine", Keys: []widgets.KeyBinding{
		{Key: "ctrl+o", Desc: "load source"},
		{Key: "ctrl+g", Desc: "solve and generate"},
		{Key: "ctrl+w", Desc: "save output"},
		{Key: "ctrl+d", Desc: "toggle debug dump on save"},
		{Key: "ctrl+e", Desc: "eject source"},
		{Key: "esc", Desc: "quit"},
	}},
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	th := m.Theme
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(th.Accent())
	labelStyle := lipgloss.NewStyle().Foreground(th.FG()).Width(13)
	focusStyle := labelStyle.Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	panelStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(th.Muted()).
		Padding(0, 1)
	if m.width > 4 {
		panelStyle = panelStyle.Width(min(m.width-2, 76))
	}

	header := headerStyle.Render(fmt.Sprintf("MIDIWARP  %s  [%s]",
		strings.ToUpper(m.mode.String()), m.Engine.State()))

	label := func(f field) string {
		if f == m.focus {
			return focusStyle.Render(fieldLabels[f])
		}
		return labelStyle.Render(fieldLabels[f])
	}

	// Source panel
	var data []string
	data = append(data, label(fieldSource)+m.inputs[fieldSource].View())
	if m.Engine.IsLoaded() {
		data = append(data, dimStyle.Render(fmt.Sprintf("%d tracks · %d segments · %.1f bpm · %d ppq",
			m.Engine.TrackCount(), m.Engine.SegmentCount(), m.Engine.SourceBPM(), m.Engine.PPQ())))
	} else {
		data = append(data, dimStyle.Render("no source loaded"))
	}

	// Parameter panel
	var params []string
	for f := fieldLoops; f <= fieldFinalScale; f++ {
		marker := th.Symbols.Solved
		value := dimStyle.Render(m.inputs[f].Value())
		if enabled(f, m.mode) {
			marker = th.Symbols.Locked
			value = m.inputs[f].View()
		}
		params = append(params, fmt.Sprintf("%c %s%s", marker, label(f), value))
	}
	params = append(params, widgets.RenderToggle(th, "integer loops", m.integerLoops)+"   "+
		widgets.RenderToggle(th, "debug dump", m.dump))

	// Result line
	result := widgets.RenderDrift(th, m.driftMs, m.solved)
	if m.solved && m.result.Success {
		result += dimStyle.Render(fmt.Sprintf("   N=%d (%d/%d = %.2f loops)  step %.6f",
			m.result.Repetitions, m.result.Repetitions, m.result.Segments, m.result.Loops(), m.result.StepScale))
	}
	if curve := widgets.RenderCurve(th, m.curve, curveWidth); curve != "" {
		result += "\n" + curve
	}

	output := label(fieldOutput) + m.inputs[fieldOutput].View()

	// Console tail
	start := max(0, len(m.console)-consoleShow)
	var lines []string
	for _, l := range m.console[start:] {
		lines = append(lines, dimStyle.Render(th.Symbols.Prompt)+l)
	}
	console := lipgloss.NewStyle().Foreground(th.FG()).Render(strings.Join(lines, "\n"))

	help := dimStyle.Render(widgets.RenderKeyBar(keyBar))
	if m.showHelp {
		help = dimStyle.Render(widgets.RenderKeyHelp(keyHelp))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		panelStyle.Render(strings.Join(data, "\n")),
		panelStyle.Render(strings.Join(params, "\n")),
		result,
		output,
		"",
		console,
		"",
		help,
	)
}
