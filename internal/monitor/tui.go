package monitor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/edgeshift/edgeshift/internal/store"
)

var (
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // dim gray
	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green

	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	detailStyle    = lipgloss.NewStyle().Padding(0, 1)
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Model is the BubbleTea model for the browse TUI: one row per discovered
// hostname, with the selected row's rules and certificate coverage below.
type Model struct {
	inv         *store.Inventory
	allRecords  []store.HostnameRecord // full sorted set
	records     []store.HostnameRecord // current view (may be filtered)
	table       table.Model
	width       int
	height      int
	quitting    bool
	searching   bool
	searchInput textinput.Model
}

// NewModel creates a TUI model from a completed inventory.
func NewModel(inv *store.Inventory) *Model {
	records := sortRecords(inv.Hostnames)

	cols := []table.Column{
		{Title: "HOSTNAME", Width: 34},
		{Title: "APEX", Width: 22},
		{Title: "PROPERTY", Width: 24},
		{Title: "VER", Width: 5},
	}

	rows := make([]table.Row, len(records))
	for i := range records {
		rows[i] = recordToRow(&records[i])
	}

	s := table.DefaultStyles()
	s.Header = s.Header.Bold(true).BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("57"))

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(10),
		table.WithStyles(s),
	)

	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.CharLimit = 64

	return &Model{
		inv:         inv,
		table:       t,
		allRecords:  records,
		records:     records,
		width:       80,
		height:      24,
		searchInput: ti,
	}
}

// Init satisfies tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles key events.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.updateSearch(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc":
			if m.searchInput.Value() != "" {
				m.searchInput.SetValue("")
				m.applyFilter()
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case "/":
			m.searching = true
			return m, m.searchInput.Focus()
		case "g":
			m.table.GotoTop()
			return m, nil
		case "G":
			m.table.GotoBottom()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(m.tableHeight())
		m.table.SetWidth(m.width)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.searching = false
			m.searchInput.Blur()
			return m, nil
		case "esc":
			m.searching = false
			m.searchInput.SetValue("")
			m.searchInput.Blur()
			m.applyFilter()
			return m, nil
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(m.tableHeight())
		m.table.SetWidth(m.width)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

// View renders the full TUI.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteByte('\n')
	b.WriteString(m.table.View())
	b.WriteByte('\n')
	b.WriteString(separatorStyle.Render(strings.Repeat("─", m.width)))
	b.WriteByte('\n')
	b.WriteString(m.detailView())
	b.WriteByte('\n')
	b.WriteString(m.footerView())
	return b.String()
}

func (m *Model) headerView() string {
	title := headerStyle.Render(fmt.Sprintf("edgeshift · %s · %s",
		pairingLabel(m.inv), m.inv.At.UTC().Format("2006-01-02 15:04 UTC")))

	totalStr := fmt.Sprintf("Hostnames: %d", len(m.records))
	if len(m.records) != len(m.allRecords) {
		totalStr = fmt.Sprintf("Showing: %d/%d", len(m.records), len(m.allRecords))
	}

	apexStr := fmt.Sprintf("Apexes: %d", len(m.inv.HostnamesByApex()))
	errStr := okStyle.Render("Errors: 0")
	if n := len(m.inv.Errors); n > 0 {
		errStr = errStyle.Render(fmt.Sprintf("Errors: %d", n))
	}

	counts := headerStyle.Render(fmt.Sprintf("%s  %s  %s", totalStr, apexStr, errStr))
	return title + "\n" + counts
}

func (m *Model) detailView() string {
	if len(m.records) == 0 {
		if m.searchInput.Value() != "" {
			return detailStyle.Render(dimStyle.Render("No matches."))
		}
		return detailStyle.Render("No hostnames.")
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.records) {
		return ""
	}

	hr := &m.records[idx]
	var lines []string

	lines = append(lines, fmt.Sprintf("Property: %s (%s v%d)", hr.PropertyName, hr.PropertyID, hr.PropertyVersion))

	if bundle, ok := m.inv.Rules[store.RuleKey(hr.PropertyID, hr.PropertyVersion)]; ok {
		lines = append(lines, "Rules: "+bundleLabel(bundle))
	}
	if names := m.inv.CertNamesByApex[hr.Apex]; len(names) > 0 {
		lines = append(lines, fmt.Sprintf("Certified names: %s", strings.Join(names, ", ")))
	} else {
		lines = append(lines, dimStyle.Render("No CPS coverage for this apex."))
	}

	return detailStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) footerView() string {
	if m.searching {
		return " /" + m.searchInput.View()
	}
	help := " q quit · ↑↓/jk navigate · g/G top/bottom · / search"
	if m.searchInput.Value() != "" {
		help += " · esc clear"
	}
	return dimStyle.Render(help)
}

func (m *Model) tableHeight() int {
	// Reserve space for header, table chrome, separator, detail panel, and footer.
	reserved := 12
	h := m.height - reserved
	if h < 3 {
		h = 3
	}
	return h
}

func (m *Model) applyFilter() {
	query := strings.ToLower(m.searchInput.Value())
	if query == "" {
		m.records = m.allRecords
	} else {
		var filtered []store.HostnameRecord
		for i := range m.allRecords {
			hr := &m.allRecords[i]
			hay := strings.ToLower(hr.Hostname + " " + hr.Apex + " " + hr.PropertyName + " " + hr.PropertyID)
			if strings.Contains(hay, query) {
				filtered = append(filtered, m.allRecords[i])
			}
		}
		m.records = filtered
	}
	m.rebuildRows()
}

func (m *Model) rebuildRows() {
	rows := make([]table.Row, len(m.records))
	for i := range m.records {
		rows[i] = recordToRow(&m.records[i])
	}
	m.table.SetRows(rows)
}

// recordToRow converts a hostname record to a table row with plain text (no
// ANSI). Embedding ANSI in cells causes the table to miscalculate column
// widths and truncate escape sequences, bleeding color into adjacent cells.
func recordToRow(hr *store.HostnameRecord) table.Row {
	return table.Row{hr.Hostname, hr.Apex, hr.PropertyName, strconv.Itoa(hr.PropertyVersion)}
}

func pairingLabel(inv *store.Inventory) string {
	if inv.ContractID == "" {
		return "(no pairing)"
	}
	return inv.ContractID + "/" + inv.GroupID
}

func bundleLabel(b store.RuleBundle) string {
	var parts []string
	if len(b.Cache) > 0 {
		parts = append(parts, fmt.Sprintf("cache ×%d", len(b.Cache)))
	}
	if len(b.Redirects) > 0 {
		parts = append(parts, fmt.Sprintf("redirects ×%d", len(b.Redirects)))
	}
	if len(b.Headers) > 0 {
		parts = append(parts, fmt.Sprintf("headers ×%d", len(b.Headers)))
	}
	if len(b.HSTS) > 0 {
		parts = append(parts, "hsts")
	}
	if len(parts) == 0 {
		return "none classified"
	}
	return strings.Join(parts, ", ")
}

// sortRecords returns a sorted copy: by apex, then hostname.
func sortRecords(records []store.HostnameRecord) []store.HostnameRecord {
	sorted := make([]store.HostnameRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Apex != sorted[j].Apex {
			return sorted[i].Apex < sorted[j].Apex
		}
		return sorted[i].Hostname < sorted[j].Hostname
	})
	return sorted
}
