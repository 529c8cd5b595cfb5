package views

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scrollgrid/internal/domain"
)

// Column describes one table column
type Column struct {
	Key   string // sort field
	Title string
	Width int
}

// Table renders rows of items with placeholders for rows not loaded yet
type Table struct {
	styles          *Styles
	showDescription bool
}

// NewTable creates a table renderer
func NewTable(styles *Styles, showDescription bool) *Table {
	return &Table{styles: styles, showDescription: showDescription}
}

// Columns returns the visible columns for a terminal of the given width
func (t *Table) Columns(width int) []Column {
	cols := []Column{
		{Key: "name", Title: "Name", Width: 22},
		{Key: "location", Title: "Location", Width: 16},
		{Key: "status", Title: "Status", Width: 18},
		{Key: "position", Title: "#", Width: 7},
	}
	if !t.showDescription {
		return cols
	}
	used := 0
	for _, c := range cols {
		used += c.Width + 1
	}
	if rest := width - used - 2; rest >= 12 {
		cols = append(cols, Column{Key: "description", Title: "Description", Width: rest})
	}
	return cols
}

// RenderHeader renders the column titles, marking the sorted column
func (t *Table) RenderHeader(width int, sort domain.SortSpec) string {
	var parts []string
	for _, c := range t.Columns(width) {
		title := c.Title
		style := t.styles.Header
		if sort.Active() && sort.By == c.Key {
			arrow := "▲"
			if sort.Direction == domain.SortDescending {
				arrow = "▼"
			}
			title += " " + arrow
			style = t.styles.SortedHeader
		}
		parts = append(parts, style.Render(pad(title, c.Width)))
	}
	return strings.Join(parts, " ")
}

// RenderRow renders one item. A nil item renders as a loading placeholder.
func (t *Table) RenderRow(width int, item *domain.Item, selected bool) string {
	cols := t.Columns(width)
	var line string
	if item == nil {
		line = t.styles.Placeholder.Render(pad("loading…", cols[0].Width))
	} else {
		parts := make([]string, 0, len(cols))
		for _, c := range cols {
			cell := pad(Field(*item, c.Key), c.Width)
			if c.Key == "status" {
				cell = lipgloss.NewStyle().Foreground(lipgloss.Color(StatusColor(item.Status))).Render(cell)
			}
			parts = append(parts, cell)
		}
		line = strings.Join(parts, " ")
	}
	if selected {
		return t.styles.HighlightBg.Render(line)
	}
	return line
}

// Field returns the display value of an item field
func Field(item domain.Item, key string) string {
	switch key {
	case "name":
		return item.Name
	case "location":
		return item.Location
	case "status":
		return item.Status
	case "position":
		return strconv.Itoa(item.Position)
	case "description":
		return item.Description
	default:
		return ""
	}
}

// pad truncates or pads s to exactly width cells
func pad(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) > width {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}
