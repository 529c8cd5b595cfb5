package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"scrollgrid/internal/domain"
)

// RenderItemDetail renders every field of an item for the pager
func RenderItemDetail(item domain.Item) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	var b strings.Builder
	b.WriteString(titleStyle.Render(item.Name))
	b.WriteString("\n\n")

	rows := []struct{ label, value string }{
		{"Position", strconv.Itoa(item.Position)},
		{"Location", item.Location},
		{"Status", item.Status},
	}
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-9s", r.label)), r.value))
	}

	b.WriteString("\n")
	b.WriteString(keyStyle.Render("  Description"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(76).PaddingLeft(2).Render(item.Description))
	b.WriteString("\n")
	return b.String()
}

// ItemPager shows text in the ov pager on top of a running program
type ItemPager struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewItemPager creates a pager bound to no program yet
func NewItemPager() *ItemPager {
	return &ItemPager{}
}

// SetProgram sets the program reference for terminal management
func (p *ItemPager) SetProgram(program *tea.Program) {
	p.program = program
}

// Show runs ov over content until the user quits it
func (p *ItemPager) Show(content string) error {
	if p.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}

	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// Configure ov to not write on exit (to avoid messing with our screen)
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
