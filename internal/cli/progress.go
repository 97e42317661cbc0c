package cli

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/luminahealth/lumina-go/internal/models"
	"github.com/luminahealth/lumina-go/internal/pipeline"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
	Crisis  lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Warning: lipgloss.Color("#FFAF00"), // amber
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
	Crisis:  lipgloss.Color("#FF005F"), // red
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) degradedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warning)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) crisisBannerStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Crisis).
		Bold(true).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Crisis).
		Padding(0, 1)
}

// stageMsg carries a stage transition from the running pipeline.
type stageMsg struct {
	stage  pipeline.Stage
	status pipeline.StageStatus
}

// resultMsg carries the terminal outcome.
type resultMsg struct {
	analysis *models.JournalAnalysis
	err      error
}

// stageLabels are the human-readable stage names shown during processing.
var stageLabels = map[pipeline.Stage]string{
	pipeline.StageNormalize: "Normalizing entry",
	pipeline.StageAnalyze:   "Analyzing emotions and patterns",
	pipeline.StageCrisis:    "Assessing crisis indicators",
	pipeline.StageEmbed:     "Generating embedding",
	pipeline.StageStore:     "Storing encrypted record",
}

// processModel is the bubbletea model for pipeline progress.
type processModel struct {
	statuses map[pipeline.Stage]pipeline.StageStatus
	order    []pipeline.Stage
	progress progress.Model
	theme    Theme
	analysis *models.JournalAnalysis
	done     bool
	quitting bool
	err      error
}

// newProcessModel creates a new progress model tracking every stage.
func newProcessModel() processModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return processModel{
		statuses: make(map[pipeline.Stage]pipeline.StageStatus),
		order:    pipeline.Stages,
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command.
func (m processModel) Init() tea.Cmd {
	return m.progress.Init()
}

// Update handles messages and returns the updated model.
func (m processModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case stageMsg:
		m.statuses[msg.stage] = msg.status
		return m, nil

	case resultMsg:
		m.analysis = msg.analysis
		m.err = msg.err
		m.done = true
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m processModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m processModel) renderContent() string {
	if m.done {
		return m.finalView()
	}

	var b strings.Builder
	completed := 0
	for _, stage := range m.order {
		status, started := m.statuses[stage]
		label := stageLabels[stage]
		switch {
		case !started:
			b.WriteString(m.theme.hintStyle().Render("  ○ " + label))
		case status == pipeline.StageRunning:
			b.WriteString(m.theme.statusStyle().Render("  ● " + label + "..."))
		case status == pipeline.StageDegraded:
			completed++
			b.WriteString(m.theme.degradedStyle().Render("  ! " + label + " (degraded)"))
		default:
			completed++
			b.WriteString(m.theme.completedStyle().Render("  ✓ " + label))
		}
		b.WriteString("\n")
	}

	pct := float64(completed) / float64(len(m.order))
	b.WriteString("\n" + m.progress.ViewAs(pct) + "\n")
	b.WriteString(m.theme.hintStyle().Render("Press Ctrl+C to cancel") + "\n")
	return b.String()
}

// finalView renders the completion message.
func (m processModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nCancelled.\n")
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Processing failed: %s\n", m.err))
	}

	if m.analysis == nil {
		return ""
	}
	return renderAnalysis(m.theme, m.analysis)
}

// renderAnalysis formats a completed analysis for the terminal, including
// the crisis banner when the entry needs attention.
func renderAnalysis(theme Theme, a *models.JournalAnalysis) string {
	var b strings.Builder
	b.WriteString(theme.completedStyle().Render("✓ Entry processed") + "\n\n")
	b.WriteString(fmt.Sprintf("  Entry ID:         %s\n", a.EntryID))
	b.WriteString(fmt.Sprintf("  Primary emotion:  %s\n", a.Emotions.Primary))
	if len(a.Emotions.Secondary) > 0 {
		secondary := make([]string, len(a.Emotions.Secondary))
		for i, e := range a.Emotions.Secondary {
			secondary[i] = string(e)
		}
		b.WriteString(fmt.Sprintf("  Secondary:        %s\n", strings.Join(secondary, ", ")))
	}
	if len(a.Patterns) > 0 {
		b.WriteString(fmt.Sprintf("  Patterns:         %s\n", strings.Join(a.Patterns, "; ")))
	}
	b.WriteString(fmt.Sprintf("  Embedding ready:  %t\n", a.EmbeddingReady))
	b.WriteString("\n  " + a.TherapeuticInsight + "\n")

	if a.Crisis.CrisisDetected() {
		var banner strings.Builder
		banner.WriteString(fmt.Sprintf("Crisis level %d: %s", int(a.Crisis.Level), a.Crisis.Level))
		for _, r := range a.Crisis.RecommendedResources {
			banner.WriteString("\n  • " + r)
		}
		b.WriteString("\n" + theme.crisisBannerStyle().Render(banner.String()) + "\n")
	}
	return b.String()
}
