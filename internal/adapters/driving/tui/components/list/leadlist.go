// Package list provides the lead list component.
package list

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/leadsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/leadsync/internal/core/domain"
)

// LeadList displays leads in a navigable list.
type LeadList struct {
	leads    []domain.Lead
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewLeadList creates a new lead list component.
func NewLeadList(s *styles.Styles) *LeadList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &LeadList{styles: s, width: 80, height: 10}
}

// View renders the lead list.
func (l *LeadList) View() string {
	if len(l.leads) == 0 {
		return l.styles.Muted.Render("No leads yet")
	}

	lines := make([]string, 0, len(l.leads)*2+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Leads (%d)", len(l.leads))), "")

	// Each lead takes two lines.
	visible := max((l.height-2)/2, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.leads))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderLead(i, &l.leads[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *LeadList) renderLead(index int, lead *domain.Lead) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	subject := lead.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	maxSubject := max(l.width-24, 10)
	subject = truncate(subject, maxSubject)

	badge := l.priorityBadge(lead.PriorityStatus)
	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(fmt.Sprintf("%s%-*s", indicator, maxSubject, subject)) + " " + badge
	} else {
		titleLine = l.styles.Normal.Render(fmt.Sprintf("%s%-*s", indicator, maxSubject, subject)) + " " + badge
	}

	detail := fmt.Sprintf("    %s  %s", lead.SenderAddress, lead.ReceivedAt.Local().Format("Jan 2 15:04"))
	switch {
	case lead.AutoReplied:
		detail += l.styles.Success.Render("  auto-replied")
	case lead.Answered:
		detail += l.styles.Success.Render("  answered")
	}
	return titleLine + "\n" + l.styles.Muted.Render(truncate(detail, max(l.width, 20)))
}

func (l *LeadList) priorityBadge(p domain.PriorityStatus) string {
	var style lipgloss.Style
	switch p {
	case domain.PriorityHot:
		style = l.styles.Hot
	case domain.PriorityWarm:
		style = l.styles.Warm
	case domain.PriorityCold:
		style = l.styles.Cold
	default:
		style = l.styles.Muted
	}
	return style.Render(string(p))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// SetLeads replaces the leads, keeping the selection on the same lead
// when it is still present.
func (l *LeadList) SetLeads(leads []domain.Lead) {
	var selectedID string
	if cur := l.SelectedLead(); cur != nil {
		selectedID = cur.ID
	}
	l.leads = leads
	l.selected = 0
	for i := range leads {
		if leads[i].ID == selectedID {
			l.selected = i
			break
		}
	}
}

// SelectedLead returns the selected lead, or nil if the list is empty.
func (l *LeadList) SelectedLead() *domain.Lead {
	if l.selected < 0 || l.selected >= len(l.leads) {
		return nil
	}
	return &l.leads[l.selected]
}

// MoveUp moves selection up.
func (l *LeadList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *LeadList) MoveDown() {
	if l.selected < len(l.leads)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *LeadList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// Count returns the number of leads.
func (l *LeadList) Count() int {
	return len(l.leads)
}
