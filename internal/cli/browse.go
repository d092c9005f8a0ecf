package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const browserChrome = 7

type browserKeys struct {
	Quit        key.Binding
	PendingOnly key.Binding
}

var browseKeys = browserKeys{
	Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	PendingOnly: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pending only")),
}

// planBrowser is a scrollable table of one group's plans.
type planBrowser struct {
	title       string
	today       time.Time
	plans       []domain.Plan
	visible     []domain.Plan
	pendingOnly bool
	table       table.Model
}

func newPlanBrowser(title string, plans []domain.Plan, today time.Time) *planBrowser {
	b := &planBrowser{title: title, today: domain.Day(today), plans: plans}
	b.table = table.New(
		table.WithColumns(planColumns(plans)),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	b.table.SetStyles(tableStyles())
	b.refresh()
	return b
}

func planColumns(plans []domain.Plan) []table.Column {
	widths := make([]int, len(formatter.PlanHeaders))
	for i, h := range formatter.PlanHeaders {
		widths[i] = lipgloss.Width(h)
	}
	for _, p := range plans {
		for i, c := range formatter.PlanCells(p) {
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	cols := make([]table.Column, len(widths))
	for i, h := range formatter.PlanHeaders {
		cols[i] = table.Column{Title: h, Width: widths[i]}
	}
	return cols
}

func (b *planBrowser) refresh() {
	b.visible = b.visible[:0]
	rows := make([]table.Row, 0, len(b.plans))
	for _, p := range b.plans {
		if b.pendingOnly && p.Status != domain.PlanPending {
			continue
		}
		b.visible = append(b.visible, p)
		rows = append(rows, table.Row(formatter.PlanCells(p)))
	}
	b.table.SetRows(rows)
	if len(rows) > 0 {
		b.table.SetCursor(0)
	}
}

func (b *planBrowser) selected() (domain.Plan, bool) {
	i := b.table.Cursor()
	if i < 0 || i >= len(b.visible) {
		return domain.Plan{}, false
	}
	return b.visible[i], true
}

func (b *planBrowser) Init() tea.Cmd { return nil }

func (b *planBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if h := msg.Height - browserChrome; h > 3 {
			b.table.SetHeight(h)
		}
		return b, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, browseKeys.Quit):
			return b, tea.Quit
		case key.Matches(msg, browseKeys.PendingOnly):
			b.pendingOnly = !b.pendingOnly
			b.refresh()
			return b, nil
		}
	}
	var cmd tea.Cmd
	b.table, cmd = b.table.Update(msg)
	return b, cmd
}

func (b *planBrowser) View() string {
	var s strings.Builder
	title := b.title
	if b.pendingOnly {
		title += " (pending)"
	}
	s.WriteString(formatter.StyleHeader.Render(title))
	s.WriteString("\n\n")
	s.WriteString(b.table.View())
	s.WriteString("\n\n")
	s.WriteString(b.detail())
	s.WriteString("\n")
	s.WriteString(formatter.Dim(fmt.Sprintf("%s · %s · ↑/↓ move",
		browseKeys.PendingOnly.Help().Key+" "+browseKeys.PendingOnly.Help().Desc,
		browseKeys.Quit.Help().Key+" "+browseKeys.Quit.Help().Desc)))
	return s.String()
}

func (b *planBrowser) detail() string {
	p, ok := b.selected()
	if !ok {
		return formatter.Dim("No plans.")
	}
	parts := []string{
		formatter.RelativeDay(p.PlanDate, b.today),
		formatter.PlanStatusPill(p.Status),
		formatter.DayTypeBadge(p.DayType),
		formatter.FormatMinutes(p.Minutes()),
	}
	if p.IsPartial {
		parts = append(parts, formatter.Dim("partial"))
	}
	if p.IsContinued {
		parts = append(parts, formatter.Dim("continued"))
	}
	return strings.Join(parts, "  ")
}
