package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/cmd/heapexplorer/logger"
)

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(max(msg.Width-2, 20))
		m.table.SetHeight(max(msg.Height-headerHeight-statusHeight-4, minRows))
		m.detail.resize(msg.Width*3/4, msg.Height*2/3)
		return m, nil

	case snapshotMsg:
		if msg.err != nil {
			logger.Warn("reload failed", "error", msg.err)
			m.statusMessage = fmt.Sprintf("Reload failed: %v", msg.err)
			return m, nil
		}
		m.snap = msg.snap
		m.err = nil
		m.rebuildRows()
		m.statusMessage = fmt.Sprintf("Reloaded %d chunks", len(m.snap.chunks))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.err != nil {
		return m, nil
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Esc) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.detail.visible {
		if key.Matches(msg, m.keys.Esc, m.keys.Detail) {
			m.detail.Hide()
			return m, nil
		}
		_, cmd := m.detail.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.FreeOnly):
		m.freeOnly = !m.freeOnly
		m.rebuildRows()
		if m.freeOnly {
			m.statusMessage = fmt.Sprintf("Showing %d free chunks", len(m.visible))
		} else {
			m.statusMessage = fmt.Sprintf("Showing all %d chunks", len(m.visible))
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		r, ok := m.selected()
		if !ok {
			return m, nil
		}
		text := fmt.Sprintf("%#x", r.Chunk.Payload())
		if err := m.copy(text); err != nil {
			m.statusMessage = fmt.Sprintf("Copy failed: %v", err)
		} else {
			m.statusMessage = fmt.Sprintf("Copied %s to clipboard", text)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.statusMessage = "Reloading..."
		return m, m.reload()

	case key.Matches(msg, m.keys.Detail):
		if r, ok := m.selected(); ok {
			m.detail.Show(m.snap, r)
			logger.Debug("showing chunk", "offset", r.Chunk.Offset)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	m.statusMessage = ""
	return m, cmd
}
