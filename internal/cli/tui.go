package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// =============================================================================
// AnnealModel - Live annealing progress
// =============================================================================

// annealStepMsg reports one completed temperature step of a run.
type annealStepMsg struct {
	runID       string
	step        int
	temperature float64
	cost        float64
}

// annealDoneMsg reports a finished run.
type annealDoneMsg struct {
	runID string
	cost  float64
	err   error
}

// placeFinishedMsg signals that all runs have completed.
type placeFinishedMsg struct {
	err error
}

// runStats holds the latest reported state of one annealing run.
type runStats struct {
	step        int
	temperature float64
	cost        float64
	best        float64
	done        bool
	failed      bool
}

// AnnealModel is the bubbletea model for watching parallel annealing runs.
type AnnealModel struct {
	Name       string
	TotalSteps int

	events <-chan tea.Msg
	runs   map[string]*runStats
	order  []string
	start  time.Time
	Err    error
	Quit   bool
}

// NewAnnealModel creates a model that consumes progress events from ch.
// TotalSteps is the schedule's step count, used to scale the progress bars.
func NewAnnealModel(name string, totalSteps int, ch <-chan tea.Msg) AnnealModel {
	return AnnealModel{
		Name:       name,
		TotalSteps: totalSteps,
		events:     ch,
		runs:       make(map[string]*runStats),
		start:      time.Now(),
	}
}

func (m AnnealModel) Init() tea.Cmd {
	return waitForEvent(m.events)
}

// waitForEvent blocks on the next progress message.
func waitForEvent(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return placeFinishedMsg{}
		}
		return msg
	}
}

func (m AnnealModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quit = true
			return m, tea.Quit
		}
	case annealStepMsg:
		s := m.stats(msg.runID)
		s.step = msg.step
		s.temperature = msg.temperature
		s.cost = msg.cost
		if msg.cost < s.best {
			s.best = msg.cost
		}
		return m, waitForEvent(m.events)
	case annealDoneMsg:
		s := m.stats(msg.runID)
		s.done = true
		s.failed = msg.err != nil
		if msg.err == nil && msg.cost < s.best {
			s.best = msg.cost
		}
		return m, waitForEvent(m.events)
	case placeFinishedMsg:
		m.Err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m *AnnealModel) stats(runID string) *runStats {
	s, ok := m.runs[runID]
	if !ok {
		s = &runStats{best: math.Inf(1)}
		m.runs[runID] = s
		m.order = append(m.order, runID)
	}
	return s
}

func (m AnnealModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Annealing " + m.Name))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n\n")

	rows := [][]string{}
	for i, id := range m.order {
		s := m.runs[id]
		best := "-"
		if !math.IsInf(s.best, 1) {
			best = fmt.Sprintf("%.4f", s.best)
		}
		status := progressBar(s.step, m.TotalSteps, 24)
		if s.done {
			status = StyleSuccess.Render("done")
			if s.failed {
				status = StyleWarning.Render("failed")
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			status,
			fmt.Sprintf("%d/%d", s.step, m.TotalSteps),
			fmt.Sprintf("%.3g", s.temperature),
			best,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Run", "Progress", "Step", "Temp", "Best cost").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  elapsed %s", time.Since(m.start).Round(time.Second))))
	b.WriteString("\n")

	return b.String()
}

// progressBar renders a fixed-width bar for step out of total.
func progressBar(step, total, width int) string {
	if total <= 0 {
		total = 1
	}
	filled := step * width / total
	if filled > width {
		filled = width
	}
	bar := StyleHighlight.Render(strings.Repeat("█", filled)) +
		StyleDim.Render(strings.Repeat("░", width-filled))
	return bar
}

// =============================================================================
// Progress hooks
// =============================================================================

// teaPlaceHooks forwards annealing events into a bubbletea message channel.
// Sends are non-blocking so a slow terminal never stalls the annealer.
type teaPlaceHooks struct {
	ch chan<- tea.Msg
}

func (h *teaPlaceHooks) OnRunStart(context.Context, string, int) {}

func (h *teaPlaceHooks) OnStep(_ context.Context, runID string, step int, temperature, cost float64) {
	select {
	case h.ch <- annealStepMsg{runID: runID, step: step, temperature: temperature, cost: cost}:
	default:
	}
}

func (h *teaPlaceHooks) OnRunComplete(_ context.Context, runID string, cost float64, _ time.Duration, err error) {
	select {
	case h.ch <- annealDoneMsg{runID: runID, cost: cost, err: err}:
	default:
	}
}
