// Package tui renders live staging progress as a compact bubbletea
// program. The model consumes stager events forwarded with
// Program.Send and quits once the run reaches a terminal state.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/corpus-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

// recentLines is how many finished documents stay visible under the
// counters.
const recentLines = 6

// ProgressMsg forwards one stager event into the program.
type ProgressMsg driving.StageEvent

// DoneMsg delivers the staging outcome.
type DoneMsg struct {
	Run *domain.StagingRun
	Err error
}

// Model is the staging progress display.
type Model struct {
	styles  *styles.Styles
	spinner spinner.Model
	address string
	cancel  context.CancelFunc
	started time.Time

	listed   bool
	total    int
	done     int
	fetched  int
	plain    int
	archives int
	skipped  int
	failed   int
	recent   []string

	cancelling bool
	finished   bool
	run        *domain.StagingRun
	err        error
}

// New creates a progress model for one staging run. cancel is invoked
// when the user interrupts; the model keeps displaying until the run
// winds down so the outcome reflects the recorded state.
func New(address string, cancel context.CancelFunc) *Model {
	s := styles.DefaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Spinner

	return &Model{
		styles:  s,
		spinner: sp,
		address: address,
		cancel:  cancel,
		started: time.Now(),
	}
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles key, progress and completion messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			if m.finished {
				return m, tea.Quit
			}
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case ProgressMsg:
		m.apply(driving.StageEvent(msg))
		return m, nil

	case DoneMsg:
		m.finished = true
		m.run = msg.Run
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the header, counters and recent activity. The last
// frame stays on screen after the program quits, so the finished
// rendering doubles as the outcome line.
func (m *Model) View() string {
	if m.finished {
		return m.finalView()
	}

	var b strings.Builder

	verb := "Staging"
	if m.cancelling {
		verb = "Cancelling"
	}
	b.WriteString(fmt.Sprintf("\n %s %s %s\n", m.spinner.View(), verb, m.styles.Title.Render(m.address)))

	if !m.listed {
		b.WriteString(m.styles.Muted.Render("   listing corpus..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("   %d/%d done", m.done, m.total))
	b.WriteString(m.styles.Muted.Render(m.countDetail()))
	b.WriteString("\n")

	if len(m.recent) > 0 {
		b.WriteString("\n")
		for _, line := range m.recent {
			b.WriteString("   " + line + "\n")
		}
	}

	return b.String()
}

func (m *Model) finalView() string {
	var line string
	switch {
	case m.err != nil:
		line = m.styles.Error.Render(fmt.Sprintf("✗ Staging failed after %s", m.elapsed()))
	case m.failed > 0:
		line = m.styles.Warning.Render(
			fmt.Sprintf("! Staged %d documents in %s, %d failed", m.done, m.elapsed(), m.failed))
	default:
		line = m.styles.Success.Render(fmt.Sprintf("✓ Staged %d documents in %s", m.done, m.elapsed()))
	}
	return "\n " + line + "\n"
}

func (m *Model) countDetail() string {
	detail := fmt.Sprintf("  %d fetched, %d plain, %d archives", m.fetched, m.plain, m.archives)
	if m.skipped > 0 {
		detail += fmt.Sprintf(", %d skipped", m.skipped)
	}
	if m.failed > 0 {
		detail += fmt.Sprintf(", %d failed", m.failed)
	}
	return detail
}

// apply folds one stage event into the counters.
func (m *Model) apply(event driving.StageEvent) {
	switch event.Kind {
	case driving.EventCorpusListed:
		m.listed = true
		m.total = event.Count
	case driving.EventDocumentQueued:
		m.total++
	case driving.EventDocumentFetched:
		m.fetched++
	case driving.EventDocumentDone:
		m.done++
		switch event.State {
		case domain.StatePlain:
			m.plain++
		case domain.StateArchiveExpanded:
			m.archives++
		case domain.StateArchiveSkipped:
			m.skipped++
		case domain.StateFailed:
			m.failed++
		}
		m.pushRecent(event)
	}
}

func (m *Model) pushRecent(event driving.StageEvent) {
	m.recent = append(m.recent, m.documentLine(event))
	if len(m.recent) > recentLines {
		m.recent = m.recent[len(m.recent)-recentLines:]
	}
}

func (m *Model) documentLine(event driving.StageEvent) string {
	name := event.Key
	if event.Depth > 0 {
		name = strings.Repeat("  ", event.Depth) + name
	}

	switch event.State {
	case domain.StateFailed:
		line := "✗ " + name
		if event.Err != nil {
			line += ": " + event.Err.Error()
		}
		return m.styles.Error.Render(line)
	case domain.StateArchiveExpanded:
		return m.styles.Success.Render("✓ ") + name + m.styles.Muted.Render(" (archive)")
	case domain.StateArchiveSkipped:
		return m.styles.Warning.Render("- ") + name + m.styles.Muted.Render(" (archive skipped)")
	default:
		return m.styles.Success.Render("✓ ") + name
	}
}

func (m *Model) elapsed() time.Duration {
	elapsed := time.Since(m.started)
	if elapsed < time.Second {
		return elapsed.Round(time.Millisecond)
	}
	return elapsed.Round(time.Second)
}

// Run returns the recorded staging run once the program has quit, or
// nil if the run failed before being recorded.
func (m *Model) Run() *domain.StagingRun {
	return m.run
}

// Err returns the staging error, if any.
func (m *Model) Err() error {
	return m.err
}
