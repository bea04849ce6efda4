package display

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mxwhit/marquee/models"
)

const (
	pollEvery    = 2 * time.Second
	frameEvery   = 100 * time.Millisecond
	fadeDuration = 500 * time.Millisecond
)

type pollMsg struct {
	np  *models.NowPlaying
	err error
}

type pollDueMsg time.Time

type frameMsg time.Time

// Model renders the current song full screen. It polls the server on a
// slow cadence and repaints on a fast one, simulating progress in
// between so the bar doesn't stutter.
type Model struct {
	client *Client

	np       *models.NowPlaying
	progress Progress

	// What was on screen when the track last changed, held there while
	// it fades out before the new track takes over.
	held         *models.NowPlaying
	heldProgress Progress

	palette   Palette
	previous  Palette
	fadeStart time.Time

	width  int
	height int

	unreachable bool
	quitting    bool
}

func NewModel(client *Client) Model {
	return Model{
		client:  client,
		palette: DefaultPalette(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(pollNow(m.client), frameCmd())
}

func pollNow(c *Client) tea.Cmd {
	return func() tea.Msg {
		np, err := c.Fetch(context.Background())
		return pollMsg{np: np, err: err}
	}
}

func pollTick() tea.Cmd {
	return tea.Tick(pollEvery, func(t time.Time) tea.Msg {
		return pollDueMsg(t)
	})
}

func frameCmd() tea.Cmd {
	return tea.Tick(frameEvery, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case pollDueMsg:
		return m, pollNow(m.client)

	case pollMsg:
		return m.applyPoll(msg, time.Now()), pollTick()

	case frameMsg:
		return m, frameCmd()
	}

	return m, nil
}

// applyPoll folds a poll result into the model. A track change kicks
// off a fade from the palette that was on screen at that moment.
func (m Model) applyPoll(msg pollMsg, now time.Time) Model {
	if msg.err != nil {
		m.unreachable = true
		return m
	}
	m.unreachable = false
	if trackChanged(m.np, msg.np) {
		m.held = m.np
		m.heldProgress = m.progress
		m.previous = m.paletteAt(now)
		m.palette = PaletteFor(msg.np)
		m.fadeStart = now
	}
	m.np = msg.np
	m.progress = ProgressFrom(msg.np)
	return m
}

func trackChanged(before, after *models.NowPlaying) bool {
	if before == nil && after == nil {
		return false
	}
	if before == nil || after == nil {
		return true
	}
	return before.TrackID != after.TrackID
}

// contentAt returns what should be on screen right now. During the
// first half of a fade the outgoing track stays up while its colours
// fade out; at the midpoint the new track swaps in and fades up.
func (m Model) contentAt(now time.Time) (*models.NowPlaying, Progress) {
	if m.held != nil && now.Sub(m.fadeStart) < fadeDuration/2 {
		return m.held, m.heldProgress
	}
	return m.np, m.progress
}

// paletteAt returns the palette mid fade, or the settled one.
func (m Model) paletteAt(now time.Time) Palette {
	if m.fadeStart.IsZero() {
		return m.palette
	}
	t := float64(now.Sub(m.fadeStart)) / float64(fadeDuration)
	if t >= 1 {
		return m.palette
	}
	return Blend(m.previous, m.palette, t)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width == 0 {
		width = 80
	}
	height := m.height
	if height == 0 {
		height = 24
	}

	now := time.Now()
	palette := m.paletteAt(now)
	np, progress := m.contentAt(now)

	line := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	dimStyle := line.Foreground(lipgloss.Color(palette.Dim))

	if m.unreachable {
		return centerVertically(height, dimStyle.Render("Looking for a marquee server..."))
	}

	if np == nil || !np.IsActive {
		return centerVertically(height, dimStyle.Render("Nothing is playing right now"))
	}

	titleStyle := line.
		Foreground(lipgloss.Color(palette.Text)).
		Background(lipgloss.Color(palette.Background)).
		Bold(true)
	detailStyle := line.
		Foreground(lipgloss.Color(palette.Text)).
		Background(lipgloss.Color(palette.Highlight))

	lines := []string{
		titleStyle.Render(np.Title),
		detailStyle.Render(np.Artist),
		dimStyle.Render(np.Album),
		"",
		line.Render(renderBar(width-10, progress.Percent(now), palette)),
		dimStyle.Render(fmt.Sprintf("%s / %s", formatClock(progress.At(now)), formatClock(progress.Duration))),
	}

	if np.Status == models.StatusPaused {
		lines = append(lines, dimStyle.Render("paused"))
	}

	return centerVertically(height, lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderBar draws the progress bar, filled with the highlight colour.
func renderBar(width int, percent float64, palette Palette) string {
	if width < 2 {
		width = 2
	}
	filled := int(math.Round(percent / 100 * float64(width)))
	if filled > width {
		filled = width
	}
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Highlight)).Render(strings.Repeat("█", filled))
	rest := lipgloss.NewStyle().Foreground(lipgloss.Color(palette.Dim)).Render(strings.Repeat("─", width-filled))
	return bar + rest
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func centerVertically(height int, content string) string {
	contentHeight := len(strings.Split(content, "\n"))
	if contentHeight >= height {
		return content
	}
	var result strings.Builder
	for i := 0; i < (height-contentHeight)/2; i++ {
		result.WriteString("\n")
	}
	result.WriteString(content)
	return result.String()
}
