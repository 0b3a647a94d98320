package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lightbeat/light"
)

// beatFlashFor is how long the beat indicator stays lit after a beat.
const beatFlashFor = 150 * time.Millisecond

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff9e00"))
	trackStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
	beatOnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff9e00")).Bold(true)
)

type Model struct {
	Feed     *Feed
	Mirrors  []*light.Mirror
	quitting bool
}

type UpdateMsg struct{}

type tickMsg time.Time

func NewModel(feed *Feed, mirrors []*light.Mirror) Model {
	return Model{Feed: feed, Mirrors: mirrors}
}

// ListenForUpdates blocks on the feed's coalesced change channel.
func ListenForUpdates(feed *Feed) tea.Cmd {
	return func() tea.Msg {
		<-feed.Updates()
		return UpdateMsg{}
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(ListenForUpdates(m.Feed), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Feed)

	case tickMsg:
		// Keeps the position readout and beat flash moving between events.
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Feed.Snapshot()
	var b strings.Builder

	b.WriteString(titleStyle.Render("lightbeat"))
	b.WriteString("\n\n")

	if snap.Track == nil {
		if snap.LastErr != nil {
			b.WriteString(errStyle.Render(fmt.Sprintf("track error: %v", snap.LastErr)))
		} else {
			b.WriteString(dimStyle.Render("nothing playing"))
		}
		b.WriteString("\n")
		b.WriteString("\n" + dimStyle.Render("q quit") + "\n")
		return b.String()
	}

	b.WriteString(trackStyle.Render(fmt.Sprintf("%s - %s", snap.Track.Artist, snap.Track.Name)))
	b.WriteString("\n")
	b.WriteString(progressBar(snap.Position, snap.Track.Duration, 40))
	b.WriteString(fmt.Sprintf("  %s / %s\n", fmtPos(snap.Position), fmtPos(snap.Track.Duration)))

	beat := "  "
	if time.Since(snap.BeatAt) < beatFlashFor {
		beat = beatOnStyle.Render("●")
	}
	b.WriteString(fmt.Sprintf("%s beats %d  bars %d  sections %d  segments %d\n",
		beat, snap.Beats, snap.Bars, snap.Sections, snap.Segments))

	b.WriteString("\n")
	for _, mir := range m.Mirrors {
		c, brightness, on := mir.State()
		swatch := lipgloss.NewStyle().
			Background(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))).
			Render("    ")
		state := fmt.Sprintf("%3d%%", brightness)
		if !on {
			state = dimStyle.Render(" off")
		}
		b.WriteString(fmt.Sprintf("  %-10s %s %s\n", mir.ID(), swatch, state))
	}

	b.WriteString("\n" + dimStyle.Render("q quit") + "\n")
	return b.String()
}

func progressBar(pos, total time.Duration, width int) string {
	if total <= 0 {
		return strings.Repeat("-", width)
	}
	frac := float64(pos) / float64(total)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

func fmtPos(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
