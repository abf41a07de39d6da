package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Progress styles
var (
	progressLabelStyle = lipgloss.NewStyle().Foreground(colorGray)
	progressCountStyle = lipgloss.NewStyle().Foreground(colorWhite)
	progressSpinStyle  = lipgloss.NewStyle().Foreground(colorCyan)
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	progressWidth    = 40
	progressInterval = 80 * time.Millisecond
)

// =============================================================================
// Messages
// =============================================================================

type progressMsg struct{ done, total int }

type finishedMsg struct{ err error }

type tickMsg struct{}

// =============================================================================
// ProgressModel - Experiment progress bar
// =============================================================================

// ProgressModel is the bubbletea model that shows how many diagrams of an
// experiment have been built.
type ProgressModel struct {
	Label    string
	Done     int
	Total    int
	Frame    int
	Err      error
	Finished bool

	// Cancel aborts the work when the user presses ctrl+c.
	Cancel context.CancelFunc
}

// NewProgressModel creates a progress model for total units of work.
func NewProgressModel(label string, total int, cancel context.CancelFunc) ProgressModel {
	return ProgressModel{Label: label, Total: total, Cancel: cancel}
}

func (m ProgressModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(progressInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			if m.Cancel != nil {
				m.Cancel()
			}
			return m, nil
		}
	case progressMsg:
		m.Done, m.Total = msg.done, msg.total
	case tickMsg:
		m.Frame++
		return m, tick()
	case finishedMsg:
		m.Err = msg.err
		m.Finished = true
		if msg.err == nil {
			m.Done = m.Total
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m ProgressModel) View() string {
	if m.Finished {
		return ""
	}
	var b strings.Builder
	b.WriteString(progressSpinStyle.Render(spinnerFrames[m.Frame%len(spinnerFrames)]))
	b.WriteString(" ")
	b.WriteString(progressLabelStyle.Render(m.Label))
	b.WriteString(" ")
	b.WriteString(bar(m.Done, m.Total, progressWidth))
	b.WriteString(" ")
	b.WriteString(progressCountStyle.Render(fmt.Sprintf("%d/%d", m.Done, m.Total)))
	b.WriteString("\n")
	return b.String()
}

// =============================================================================
// Runner
// =============================================================================

// interactive reports whether stderr is a terminal.
func interactive() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runWithProgress runs work while a progress bar is drawn on stderr. work
// receives a report function that may be called from any goroutine; updates
// are throttled to the redraw interval.
func runWithProgress(ctx context.Context, label string, total int, work func(ctx context.Context, report func(done, total int)) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewProgressModel(label, total, cancel), tea.WithOutput(os.Stderr), tea.WithContext(ctx))

	var (
		mu   sync.Mutex
		last time.Time
	)
	report := func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		if done < total && time.Since(last) < progressInterval {
			return
		}
		last = time.Now()
		p.Send(progressMsg{done: done, total: total})
	}

	errc := make(chan error, 1)
	go func() {
		err := work(ctx, report)
		errc <- err
		p.Send(finishedMsg{err: err})
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		cancel()
		<-errc
		return fmt.Errorf("progress display: %w", err)
	}
	return <-errc
}
