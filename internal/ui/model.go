package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"scrollgrid/internal/domain"
	"scrollgrid/internal/eventbus"
	"scrollgrid/internal/ui/views"
)

const (
	defaultListHeight = 20
	defaultWidth      = 120
	// title, header, status and help lines around the list
	chromeLines = 5
)

// Options configures the browser model
type Options struct {
	InitialSort     domain.SortSpec
	ShowDescription bool
}

// Model is the terminal list browser. It is the viewport source and the
// filter source for the coordinator, and the render sink for its results.
type Model struct {
	bus    eventbus.Publisher
	styles *views.Styles
	table  *views.Table
	keys   keyMap
	help   help.Model
	spin   spinner.Model
	input  textinput.Model
	pager  *ItemPager

	width  int
	height int
	cursor int
	offset int

	items []domain.Item
	total int
	done  bool
	busy  bool
	err   error

	query     domain.Query
	searching bool
	lastRange domain.Range
}

// NewModel creates a new UI model publishing viewport and filter events on bus
func NewModel(bus eventbus.Publisher, opts Options) *Model {
	styles := views.NewStyles()

	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "search by name"
	input.CharLimit = 64

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = styles.StatusLoading

	return &Model{
		bus:    bus,
		styles: styles,
		table:  views.NewTable(styles, opts.ShowDescription),
		keys:   newKeyMap(),
		help:   help.New(),
		spin:   spin,
		input:  input,
		pager:  NewItemPager(),
		query:  domain.Query{Sort: opts.InitialSort},
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.pager.SetProgram(p)
}

// Init publishes the initial visible range
func (m *Model) Init() tea.Cmd {
	m.publishRange(false)
	return nil
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		m.publishRange(false)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case EventMsg:
		return m, m.handleEvent(msg.Event)

	case pagerMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("pager: %w", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m, m.handleSearchKey(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleEvent(e eventbus.DomainEvent) tea.Cmd {
	switch ev := e.(type) {
	case domain.ResultsSettledEvent:
		m.items = ev.Items
		m.total = ev.Total
		m.done = ev.Done
		m.err = nil
		m.clampCursor()
		m.ensureVisible()
		// the coordinator may need further windows for the same rows
		m.publishRange(true)

	case domain.BusyChangedEvent:
		m.busy = ev.Busy
		if m.busy {
			return m.spin.Tick
		}

	case domain.FetchFailedEvent:
		m.err = ev.Err
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.listHeight())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.listHeight())
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-m.cursor)
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(m.rowCount() - 1 - m.cursor)
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.input.SetValue(m.query.SearchTerm)
		m.input.CursorEnd()
		return m.input.Focus()
	case key.Matches(msg, m.keys.ClearSearch):
		if m.query.SearchTerm != "" {
			m.applyQuery(domain.Query{Sort: m.query.Sort})
		}
	case key.Matches(msg, m.keys.Sort):
		m.applyQuery(domain.Query{SearchTerm: m.query.SearchTerm, Sort: nextSortColumn(m.query.Sort)})
	case key.Matches(msg, m.keys.SortDir):
		sort := m.query.Sort
		if sort.Active() {
			sort.Direction = sort.Direction.Toggle()
		} else {
			sort = domain.SortSpec{By: domain.Columns[0], Direction: domain.SortAscending}
		}
		m.applyQuery(domain.Query{SearchTerm: m.query.SearchTerm, Sort: sort})
	case key.Matches(msg, m.keys.Reload):
		m.cursor, m.offset = 0, 0
		m.err = nil
		m.lastRange = domain.Range{}
		m.bus.Publish(domain.ReloadRequestedEvent{})
	case key.Matches(msg, m.keys.Details):
		if m.cursor < len(m.items) {
			content := RenderItemDetail(m.items[m.cursor])
			pager := m.pager
			return func() tea.Msg {
				return pagerMsg{err: pager.Show(content)}
			}
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.ensureVisible()
		m.publishRange(false)
	}
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.input.Blur()
		term := strings.TrimSpace(m.input.Value())
		if term != m.query.SearchTerm {
			m.applyQuery(domain.Query{SearchTerm: term, Sort: m.query.Sort})
		}
		return nil
	case tea.KeyEsc:
		m.searching = false
		m.input.Blur()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// nextSortColumn cycles through the columns, starting ascending
func nextSortColumn(current domain.SortSpec) domain.SortSpec {
	next := domain.Columns[0]
	for i, c := range domain.Columns {
		if c == current.By {
			next = domain.Columns[(i+1)%len(domain.Columns)]
			break
		}
	}
	return domain.SortSpec{By: next, Direction: domain.SortAscending}
}

// applyQuery resets the list and announces the new filters
func (m *Model) applyQuery(q domain.Query) {
	m.query = q
	m.cursor, m.offset = 0, 0
	m.items = nil
	m.total = 0
	m.done = false
	m.err = nil
	m.lastRange = domain.Range{}
	m.bus.Publish(domain.FilterChangedEvent{SearchTerm: q.SearchTerm, Sort: q.Sort})
}

func (m *Model) rowCount() int {
	return max(m.total, len(m.items))
}

func (m *Model) listHeight() int {
	if m.height == 0 {
		return defaultListHeight
	}
	h := m.height - chromeLines
	if m.searching {
		h--
	}
	if m.help.ShowAll {
		h -= 3
	}
	return max(h, 1)
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
	m.ensureVisible()
	m.publishRange(false)
}

func (m *Model) clampCursor() {
	if m.cursor >= m.rowCount() {
		m.cursor = m.rowCount() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// ensureVisible scrolls the viewport so the cursor row is on screen
func (m *Model) ensureVisible() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if maxOffset := m.rowCount() - h; m.offset > maxOffset {
		m.offset = max(maxOffset, 0)
	}
}

// visibleRange returns the rows currently on screen. Until a total is
// known the whole list height is reported so the first pages load.
func (m *Model) visibleRange() domain.Range {
	r := domain.Range{Start: m.offset, End: m.offset + m.listHeight()}
	if m.total > 0 && r.End > m.total {
		r.End = m.total
	}
	return r
}

func (m *Model) publishRange(force bool) {
	r := m.visibleRange()
	if r.Empty() {
		return
	}
	if !force && r == m.lastRange {
		return
	}
	m.lastRange = r
	m.bus.Publish(domain.RangeChangedEvent{Range: r})
}

// View renders the UI
func (m *Model) View() string {
	width := m.width
	if width == 0 {
		width = defaultWidth
	}

	var b strings.Builder

	title := m.styles.Title.Render("scrollgrid")
	if m.query.SearchTerm != "" {
		title += "  " + m.styles.Filter.Render(fmt.Sprintf("search: %q", m.query.SearchTerm))
	}
	title += "  " + m.styles.Dim.Render("sort: "+m.query.Sort.String())
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(m.table.RenderHeader(width, m.query.Sort))
	b.WriteString("\n")

	h := m.listHeight()
	rows := 0
	for i := m.offset; i < m.offset+h && i < m.rowCount(); i++ {
		var item *domain.Item
		if i < len(m.items) {
			item = &m.items[i]
		}
		b.WriteString(m.table.RenderRow(width, item, i == m.cursor))
		b.WriteString("\n")
		rows++
	}
	if rows == 0 {
		switch {
		case m.busy:
			b.WriteString(m.styles.Placeholder.Render("loading…"))
		case m.done:
			b.WriteString(m.styles.Dim.Render("no results"))
		}
		b.WriteString("\n")
		rows++
	}
	if rows < h {
		b.WriteString(strings.Repeat("\n", h-rows))
	}

	if m.searching {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	return m.styles.Main.Render(b.String())
}

func (m *Model) statusLine() string {
	if m.err != nil {
		return m.styles.StatusError.Render("fetch failed: " + m.err.Error() + " (scroll or press r to retry)")
	}

	status := fmt.Sprintf("%d of %d loaded", len(m.items), m.total)
	style := m.styles.StatusLoading
	if m.done {
		style = m.styles.StatusSuccess
	}
	line := style.Render(status)
	if m.busy {
		line = lipgloss.JoinHorizontal(lipgloss.Top, m.spin.View(), " ", line)
	}
	if m.rowCount() > 0 {
		line += m.styles.Scroll.Render(fmt.Sprintf("  row %d", m.cursor+1))
	}
	return line
}
