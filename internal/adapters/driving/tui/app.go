package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/leadsync/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/leadsync/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/leadsync/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/leadsync/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/leadsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// toastTTL is how long soft notifications stay on screen. Re-auth prompts
// stay until dismissed.
const toastTTL = 6 * time.Second

var lookbacks = []domain.Lookback{
	domain.Lookback1Day,
	domain.Lookback3Days,
	domain.Lookback7Days,
	domain.Lookback30Days,
}

type toast struct {
	seq    int
	text   string
	kind   domain.NotificationKind
	sticky bool
}

// App is the session screen. It implements tea.Model.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	leads *list.LeadList
	bar   *status.Bar
	help  help.Model

	lookback domain.Lookback
	syncing  bool
	showHelp bool
	toast    *toast
	toastSeq int

	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the session screen.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	return &App{
		ports:    ports,
		ctx:      context.Background(),
		styles:   s,
		keymap:   km,
		leads:    list.NewLeadList(s),
		bar:      status.NewBar(s, km),
		help:     help.New(),
		lookback: domain.AutoSyncLookback,
		width:    80,
		height:   24,
	}, nil
}

// WithContext sets the context used for manual syncs.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	leads := a.ports.Leads.Leads()
	cmds := []tea.Cmd{
		a.bar.Init(),
		func() tea.Msg { return messages.LeadsChanged{Leads: leads} },
	}
	if a.ports.Events != nil {
		cmds = append(cmds, a.ports.Events.wait())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.LeadsChanged:
		a.leads.SetLeads(msg.Leads)
		a.bar.SetCount(a.leads.Count())
		return a, a.nextEvent()

	case messages.SessionStateChanged:
		a.bar.SetState(msg.State)
		return a, a.nextEvent()

	case messages.Notified:
		return a, tea.Batch(a.showToast(msg.Notification), a.nextEvent())

	case messages.ManualSyncCompleted:
		return a, a.manualSyncDone(msg)

	case messages.ToastExpired:
		if a.toast != nil && a.toast.seq == msg.Seq && !a.toast.sticky {
			a.toast = nil
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.bar, cmd = a.bar.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keymap.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keymap.Help):
		a.showHelp = !a.showHelp
	case key.Matches(msg, a.keymap.Up):
		a.leads.MoveUp()
	case key.Matches(msg, a.keymap.Down):
		a.leads.MoveDown()
	case key.Matches(msg, a.keymap.Refresh):
		a.ports.Session.RefreshNow()
	case key.Matches(msg, a.keymap.Lookback):
		a.cycleLookback()
	case key.Matches(msg, a.keymap.Dismiss):
		a.toast = nil
	case key.Matches(msg, a.keymap.Sync):
		return a, a.startManualSync()
	}
	return a, nil
}

func (a *App) cycleLookback() {
	for i, l := range lookbacks {
		if l == a.lookback {
			a.lookback = lookbacks[(i+1)%len(lookbacks)]
			break
		}
	}
	a.bar.SetLookback(a.lookback)
}

func (a *App) startManualSync() tea.Cmd {
	if a.syncing {
		return nil
	}
	a.syncing = true
	a.bar.SetSyncing(true)

	ctx, tenantID, lookback := a.ctx, a.ports.Session.TenantID(), a.lookback
	syncer, view := a.ports.Syncer, a.ports.Leads
	return func() tea.Msg {
		outcome, err := syncer.SyncTenant(ctx, tenantID, lookback)
		if err == nil {
			err = view.Refresh(ctx, tenantID)
		}
		return messages.ManualSyncCompleted{Outcome: outcome, Err: err}
	}
}

func (a *App) manualSyncDone(msg messages.ManualSyncCompleted) tea.Cmd {
	a.syncing = false
	a.bar.SetSyncing(false)
	if msg.Err != nil {
		return a.showToast(domain.NotificationFor("Sync", msg.Err))
	}

	text := "Sync complete"
	if msg.Outcome != nil {
		text = fmt.Sprintf("Synced %d new leads, %d replies sent", msg.Outcome.NewLeadCount, msg.Outcome.Replies.Sent)
	}
	return a.showToast(domain.Notification{Kind: domain.NotifyInfo, Message: text})
}

func (a *App) showToast(n domain.Notification) tea.Cmd {
	a.toastSeq++
	t := &toast{
		seq:    a.toastSeq,
		text:   n.Message,
		kind:   n.Kind,
		sticky: n.Kind == domain.NotifyReauthRequired,
	}
	// A re-auth prompt is never replaced by a soft toast.
	if a.toast != nil && a.toast.sticky && !t.sticky {
		return nil
	}
	a.toast = t
	if t.sticky {
		return nil
	}
	seq := t.seq
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return messages.ToastExpired{Seq: seq} })
}

func (a *App) nextEvent() tea.Cmd {
	if a.ports.Events == nil {
		return nil
	}
	return a.ports.Events.wait()
}

// View implements tea.Model.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("leadsync"))
	b.WriteString(a.styles.Muted.Render("  tenant " + a.ports.Session.TenantID()))
	b.WriteString("\n\n")

	if a.toast != nil {
		b.WriteString(a.renderToast())
		b.WriteString("\n")
	}

	if a.showHelp {
		b.WriteString(a.help.FullHelpView(a.keymap.FullHelp()))
		b.WriteString("\n\n")
	}

	b.WriteString(a.leads.View())

	body := b.String()
	gap := a.height - lipgloss.Height(body) - 1
	if gap > 0 {
		body += strings.Repeat("\n", gap)
	} else {
		body += "\n"
	}
	return body + a.bar.View()
}

func (a *App) renderToast() string {
	switch a.toast.kind {
	case domain.NotifyReauthRequired:
		return a.styles.Reauth.Render(a.toast.text + "\nRun `leadsync tenant connect` to reconnect. esc to dismiss")
	case domain.NotifySoftError:
		return a.styles.Toast.Render(a.toast.text)
	default:
		return a.styles.Success.Render(a.toast.text)
	}
}

// SetDimensions resizes the screen.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.bar.SetWidth(width)
	a.help.Width = width
	// Header, toast and status bar.
	a.leads.SetDimensions(width, max(height-6, 4))
}

// Lookback returns the lookback used by the next manual sync.
func (a *App) Lookback() domain.Lookback {
	return a.lookback
}

// Toast returns the visible notification text, or "".
func (a *App) Toast() string {
	if a.toast == nil {
		return ""
	}
	return a.toast.text
}
