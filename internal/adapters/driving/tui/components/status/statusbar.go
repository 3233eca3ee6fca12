// Package status provides the session status bar.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/leadsync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/leadsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// Bar displays the session state, lookback and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	spinner  spinner.Model
	state    domain.SessionState
	lookback domain.Lookback
	syncing  bool
	count    int
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = s.Subtitle

	return &Bar{
		styles:   s,
		keymap:   km,
		spinner:  sp,
		state:    domain.SessionIdle,
		lookback: domain.AutoSyncLookback,
		width:    80,
	}
}

// Init starts the spinner.
func (b *Bar) Init() tea.Cmd {
	return b.spinner.Tick
}

// Update advances the spinner.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return b, nil
	}
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(msg)
	return b, cmd
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

// Busy reports whether work is in flight.
func (b *Bar) Busy() bool {
	return b.syncing ||
		b.state == domain.SessionInitialSyncInFlight ||
		b.state == domain.SessionRefreshTriggered
}

func (b *Bar) renderLeft() string {
	var label string
	switch {
	case b.syncing:
		label = fmt.Sprintf("Syncing last %s", b.lookback)
	case b.state == domain.SessionInitialSyncInFlight:
		label = "Initial sync"
	case b.state == domain.SessionRefreshTriggered:
		label = "Refreshing leads"
	case b.state == domain.SessionStopped:
		return b.styles.Muted.Render("Stopped")
	default:
		label = fmt.Sprintf("%d leads", b.count)
	}
	if b.Busy() {
		return b.spinner.View() + " " + b.styles.Normal.Render(label)
	}
	return b.styles.Normal.Render(label) + b.styles.Muted.Render("  lookback "+b.lookback.String())
}

func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the reconciliation state.
func (b *Bar) SetState(state domain.SessionState) {
	b.state = state
}

// State returns the reconciliation state.
func (b *Bar) State() domain.SessionState {
	return b.state
}

// SetSyncing marks a manual sync as running.
func (b *Bar) SetSyncing(syncing bool) {
	b.syncing = syncing
}

// SetLookback sets the lookback shown for manual syncs.
func (b *Bar) SetLookback(l domain.Lookback) {
	b.lookback = l
}

// SetCount sets the lead count.
func (b *Bar) SetCount(n int) {
	b.count = n
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}
