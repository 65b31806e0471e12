// Package tui is a terminal front panel for the simulator. Keys stand in for
// the three buttons; the LEDs, buzzer, and display are drawn from the latest frame.
package tui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sweeney/button-panel/internal/gpio"
	"github.com/sweeney/button-panel/internal/logic"
)

// tapHold is how long a simulated tap keeps the contact closed. It must
// outlast the debounce window for the press to be confirmed.
const tapHold = 120 * time.Millisecond

const refreshInterval = 50 * time.Millisecond

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e80"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#fff")).Bold(true)
	holdStyle    = lipgloss.NewStyle().Reverse(true)
	displayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444")).
			Foreground(lipgloss.Color("#8cf")).
			Padding(0, 1).
			Width(22)
)

// Pins are the simulated button pins.
type Pins struct {
	Advance int
	Reset   int
	Action  int
}

// Latest holds the most recent frame and state from the control loop.
// The loop stores, the UI loads.
type Latest struct {
	mu    sync.Mutex
	frame logic.Frame
	state logic.State
}

// Store records a cycle's output.
func (l *Latest) Store(f logic.Frame, st logic.State) {
	l.mu.Lock()
	l.frame = f
	l.state = st
	l.mu.Unlock()
}

// Load returns the last stored output.
func (l *Latest) Load() (logic.Frame, logic.State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frame, l.state
}

type refreshMsg struct{}

type releaseMsg int

// Model is the Bubble Tea model of the simulator.
type Model struct {
	input    *gpio.FakeInput
	pins     Pins
	latest   *Latest
	holding  bool
	quitting bool
}

// NewModel creates a model driving input and drawing from latest.
func NewModel(input *gpio.FakeInput, pins Pins, latest *Latest) Model {
	return Model{input: input, pins: pins, latest: latest}
}

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m Model) tap(pin int) tea.Cmd {
	m.input.Press(pin)
	return tea.Tick(tapHold, func(time.Time) tea.Msg { return releaseMsg(pin) })
}

func (m Model) Init() tea.Cmd {
	return refresh()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "a":
			return m, m.tap(m.pins.Advance)

		case "r":
			return m, m.tap(m.pins.Reset)

		case "s":
			if m.holding {
				return m, nil
			}
			return m, m.tap(m.pins.Action)

		case " ":
			// No key-up events in a terminal, so space latches the hold.
			if m.holding {
				m.input.Release(m.pins.Action)
			} else {
				m.input.Press(m.pins.Action)
			}
			m.holding = !m.holding

		case "g":
			m.input.Glitch(m.pins.Action)
		}

	case releaseMsg:
		if int(msg) == m.pins.Action && m.holding {
			return m, nil
		}
		m.input.Release(int(msg))

	case refreshMsg:
		return m, refresh()
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	frame, st := m.latest.Load()

	var b strings.Builder
	b.WriteString(titleStyle.Render("button-panel simulator"))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("LEDs   "))
	for _, v := range frame.LEDs {
		b.WriteString(ledCell(v))
		b.WriteString(" ")
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Buzzer "))
	if frame.ToneHz > 0 {
		b.WriteString(activeStyle.Render(fmt.Sprintf("%d Hz", frame.ToneHz)))
	} else {
		b.WriteString(dimStyle.Render("silent"))
	}
	b.WriteString("\n\n")

	text := frame.Text
	if text == "" {
		text = logic.MsgReady
	}
	b.WriteString(displayStyle.Render(text))
	b.WriteString("\n\n")

	overlay := string(st.Overlay.Kind)
	if overlay == "" {
		overlay = string(logic.OverlayNone)
	}
	b.WriteString(labelStyle.Render(fmt.Sprintf("mode %d %-9s overlay %-6s ", st.ModeIndex, st.Label, overlay)))
	if m.holding {
		b.WriteString(holdStyle.Render(" HOLD "))
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("advance %d  reset %d  short %d  long %d",
		st.Counts.Advance, st.Counts.Reset, st.Counts.Short, st.Counts.Long)))
	b.WriteString("\n\n")

	b.WriteString(dimStyle.Render("a:advance  r:reset  s:short press  space:hold/release  g:glitch  q:quit"))
	b.WriteString("\n")
	return b.String()
}

// ledCell draws one LED as a block shaded by brightness.
func ledCell(v uint8) string {
	if v == 0 {
		return dimStyle.Render("( )")
	}
	color := fmt.Sprintf("#%02x%02x00", v, int(v)*5/10)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("(●)")
}
