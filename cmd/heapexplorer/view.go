package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/inhies/go-bytesize"
	overlay "github.com/rmhubbert/bubbletea-overlay"
)

// View renders the entire UI
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	// Overlays are rebuilt on every render: Update returns new models, so a
	// stored background pointer would be stale.
	if m.showHelp {
		return overlay.New(helpView{keys: m.keys}, &mainView{model: &m}, overlay.Center, overlay.Center, 0, 0).View()
	}
	if m.detail.visible {
		return overlay.New(&m.detail, &mainView{model: &m}, overlay.Center, overlay.Center, 0, 0).View()
	}
	return m.renderMain()
}

func (m Model) renderMain() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		paneStyle.Render(m.table.View()),
		m.renderStatus(),
	)
}

// renderHeader renders the file name, totals and the verification result.
func (m Model) renderHeader() string {
	s := m.snap
	freeChunks, freeBytes, usedBytes := s.usage()

	var b strings.Builder
	b.WriteString(headerStyle.Render("Heap Explorer"))
	b.WriteString("\n")
	b.WriteString(pathStyle.Render(s.name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s in %d segment(s), %d chunks (%d free), used %s, free %s\n",
		bytesize.New(float64(len(s.data))), s.segments, len(s.chunks), freeChunks,
		bytesize.New(float64(usedBytes)), bytesize.New(float64(freeBytes)))
	if err := s.problem(); err != nil {
		b.WriteString(errorStyle.Render("INVALID: " + err.Error()))
	} else {
		b.WriteString(validStyle.Render("valid"))
	}
	return b.String()
}

// renderStatus renders the status message, or the key hints when there is none.
func (m Model) renderStatus() string {
	if m.statusMessage != "" {
		return statusStyle.Render(m.statusMessage)
	}
	hints := []string{"↑/↓: Navigate", "Enter: Payload", "f: Free only", "c: Copy", "r: Reload", "?: Help", "q: Quit"}
	return statusStyle.Render(strings.Join(hints, " │ "))
}

// mainView wraps the main UI for use as an overlay background.
type mainView struct {
	model *Model
}

func (v *mainView) Init() tea.Cmd { return nil }

func (v *mainView) Update(tea.Msg) (tea.Model, tea.Cmd) { return v, nil }

func (v *mainView) View() string { return v.model.renderMain() }

// helpView is the key binding reference shown over the main UI.
type helpView struct {
	keys KeyMap
}

func (h helpView) Init() tea.Cmd { return nil }

func (h helpView) Update(tea.Msg) (tea.Model, tea.Cmd) { return h, nil }

func (h helpView) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Keys"))
	b.WriteString("\n\n")
	b.WriteString(helpKeyStyle.Render("↑/↓ j/k") + " move\n")
	b.WriteString(helpKeyStyle.Render("pgup/dn") + " page\n")
	for _, k := range h.keys.bindings() {
		help := k.Help()
		b.WriteString(helpKeyStyle.Render(help.Key) + " " + help.Desc + "\n")
	}
	return modalStyle.Render(strings.TrimRight(b.String(), "\n"))
}
