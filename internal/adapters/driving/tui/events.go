package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/leadsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/leadsync/internal/core/domain"
	"github.com/custodia-labs/leadsync/internal/core/ports/driven"
)

// Ensure Events implements the notifier port.
var _ driven.SessionNotifier = (*Events)(nil)

const eventBuffer = 64

// Events bridges callbacks from background goroutines into the Bubbletea
// loop. Lead and state updates are dropped when the buffer is full since
// the next one supersedes them; notifications block until delivered or the
// bridge is closed.
type Events struct {
	ch        chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

// NewEvents creates a bridge.
func NewEvents() *Events {
	return &Events{
		ch:   make(chan tea.Msg, eventBuffer),
		done: make(chan struct{}),
	}
}

// Close releases senders blocked in Notify. Call it once the program exits.
func (e *Events) Close() {
	e.closeOnce.Do(func() { close(e.done) })
}

// Notify implements driven.SessionNotifier.
func (e *Events) Notify(n domain.Notification) {
	select {
	case e.ch <- messages.Notified{Notification: n}:
	case <-e.done:
	}
}

// LeadsChanged is suitable as the lead cache's change callback.
func (e *Events) LeadsChanged(leads []domain.Lead) {
	e.offer(messages.LeadsChanged{Leads: leads})
}

// StateChanged is suitable as the reconciliation loop's state observer.
func (e *Events) StateChanged(s domain.SessionState) {
	e.offer(messages.SessionStateChanged{State: s})
}

func (e *Events) offer(msg tea.Msg) {
	select {
	case e.ch <- msg:
	default:
	}
}

// wait returns a command that delivers the next event.
func (e *Events) wait() tea.Cmd {
	return func() tea.Msg {
		return <-e.ch
	}
}
