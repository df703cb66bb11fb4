//go:build !no_bubbletea

package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))

type progressMsg struct {
	name        string
	done, total int64
}

type progressErrMsg struct{ err error }

type progressDoneMsg struct{}

type fetchModel struct {
	progress progress.Model
	name     string
	done     int64
	total    int64
	err      error
	finished bool
}

func newFetchModel() fetchModel {
	return fetchModel{
		progress: progress.New(progress.WithDefaultGradient(), progress.WithWidth(50)),
	}
}

func (m fetchModel) Init() tea.Cmd {
	return nil
}

func (m fetchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-10, 80)
		return m, nil
	case progressMsg:
		m.name, m.done, m.total = msg.name, msg.done, msg.total
		if m.total <= 0 {
			return m, nil
		}
		return m, m.progress.SetPercent(float64(m.done) / float64(m.total))
	case progressErrMsg:
		m.err = msg.err
		return m, tea.Quit
	case progressDoneMsg:
		m.finished = true
		return m, tea.Quit
	case progress.FrameMsg:
		if m.finished {
			return m, nil
		}
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m fetchModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("\n  ❌ Error: %s\n\n", m.err.Error())
	}
	var sb strings.Builder
	sb.WriteString("\n")
	name := m.name
	if name == "" {
		name = "resolving..."
	}
	sb.WriteString(fmt.Sprintf("  📁 %s\n", name))
	total := "?"
	if m.total > 0 {
		total = humanize.Bytes(uint64(m.total))
	}
	sb.WriteString(fmt.Sprintf("  📊 %s / %s\n\n", humanize.Bytes(uint64(m.done)), total))
	sb.WriteString("  ")
	sb.WriteString(m.progress.View())
	sb.WriteString("\n\n")
	if m.finished {
		sb.WriteString("  √ Download complete!\n\n")
	} else {
		sb.WriteString(helpStyle.Render("  Press Ctrl+C to cancel"))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

type FetchProgress struct {
	program *tea.Program
	cancel  context.CancelFunc
}

func NewFetchProgress(ctx context.Context) *FetchProgress {
	ctx, cancel := context.WithCancel(ctx)
	p := tea.NewProgram(
		newFetchModel(),
		tea.WithoutSignalHandler(),
		tea.WithContext(ctx),
		tea.WithInput(nil),
	)
	return &FetchProgress{program: p, cancel: cancel}
}

func (fp *FetchProgress) Start() {
	go fp.program.Run()
}

func (fp *FetchProgress) Update(name string, done, total int64) {
	fp.program.Send(progressMsg{name: name, done: done, total: total})
}

func (fp *FetchProgress) SetError(err error) {
	fp.program.Send(progressErrMsg{err: err})
}

func (fp *FetchProgress) Done() {
	fp.program.Send(progressDoneMsg{})
}

func (fp *FetchProgress) Wait() {
	fp.program.Wait()
	fp.cancel()
}
