package play

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gigurra/noteblock/cmd/common"
	"github.com/gigurra/noteblock/cmd/jukebox"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))  // Green
	pausedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")) // Yellow
	stoppedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")) // Gray
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const (
	refreshInterval = 100 * time.Millisecond
	maxQueueLines   = 10
	defaultWidth    = 60
)

type tickMsg time.Time

type model struct {
	jukebox  *jukebox.Jukebox
	finished <-chan struct{} // closes when the player should exit on its own
	status   jukebox.Status
	queue    []string
	width    int
	err      error // last control error, shown until the next key
	quitting bool
}

func newModel(jb *jukebox.Jukebox, finished <-chan struct{}) model {
	m := model{jukebox: jb, finished: finished, width: defaultWidth}
	return m.refresh()
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) refresh() model {
	m.status = m.jukebox.Status()
	m.queue = m.jukebox.Queue()
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		select {
		case <-m.finished:
			m.quitting = true
			return m.refresh(), tea.Quit
		default:
		}
		return m.refresh(), tickCmd()

	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case " ":
			if m.jukebox.Status().State == jukebox.StatePaused {
				m.err = m.jukebox.Resume()
			} else {
				m.err = m.jukebox.Pause()
			}
		case "n", "right":
			m.err = m.jukebox.Skip()
		case "p", "enter":
			m.err = m.jukebox.Play()
		case "s":
			m.jukebox.Stop()
		case "r":
			m.jukebox.SetRepeat(!m.jukebox.Repeat())
		}
		return m.refresh(), nil
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	st := m.status
	var b strings.Builder

	b.WriteString(titleStyle.Render("♪ noteblock"))
	b.WriteString("\n\n")

	title := st.Title
	if title == "" {
		title = "(nothing playing)"
	}
	fmt.Fprintf(&b, "%s  %s\n", stateStyle(st.State).Render(fmt.Sprintf("%-8s", st.State)),
		common.Truncate(title, max(10, m.width-12)))

	fraction := 0.0
	if st.Length > 0 {
		fraction = float64(st.Position) / float64(st.Length)
	}
	barWidth := max(10, min(50, m.width-16))
	fmt.Fprintf(&b, "%s %s / %s\n\n", common.Bar(fraction, barWidth),
		formatDuration(st.Position), formatDuration(st.Length))

	repeat := "off"
	if st.Repeat {
		repeat = "on"
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("Queue (%d)  repeat %s  listeners %d", st.QueueLength, repeat, st.Listeners)))
	b.WriteString("\n")
	for _, name := range visibleQueue(m.queue, st.QueueIndex) {
		line := fmt.Sprintf(" %2d. %s", name.index+1, common.Truncate(name.name, max(10, m.width-6)))
		if name.index == st.QueueIndex && st.State != jukebox.StateStopped {
			line = currentStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	} else if st.LastError != nil {
		b.WriteString("\n" + errorStyle.Render("last failure: "+common.Truncate(st.LastError.Error(), max(10, m.width-14))) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("space pause · n next · p play · s stop · r repeat · q quit"))
	return b.String()
}

type queueLine struct {
	index int
	name  string
}

// visibleQueue returns a window of at most maxQueueLines entries around the
// current position.
func visibleQueue(queue []string, current int) []queueLine {
	start := 0
	if current > maxQueueLines/2 {
		start = current - maxQueueLines/2
	}
	end := min(len(queue), start+maxQueueLines)
	start = max(0, min(start, end-maxQueueLines))

	lines := make([]queueLine, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, queueLine{index: i, name: queue[i]})
	}
	return lines
}

func stateStyle(state jukebox.PlaybackState) lipgloss.Style {
	switch state {
	case jukebox.StatePlaying:
		return playingStyle
	case jukebox.StatePaused:
		return pausedStyle
	default:
		return stoppedStyle
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

// runTUI shows the player until the user quits, ctx is cancelled or
// finished closes.
func runTUI(ctx context.Context, jb *jukebox.Jukebox, finished <-chan struct{}) error {
	p := tea.NewProgram(newModel(jb, finished), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
