package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// detailModel is the modal showing one chunk's tags and a hex dump of its
// payload.
type detailModel struct {
	viewport viewport.Model
	visible  bool
	title    string
}

func newDetailModel() detailModel {
	return detailModel{viewport: viewport.New(78, 20)}
}

func (m *detailModel) Init() tea.Cmd {
	return nil
}

// Show fills the modal with the chunk and makes it visible.
func (m *detailModel) Show(s *snapshot, r chunkRow) {
	c := r.Chunk
	state := "used"
	if c.Free {
		state = "free"
	}
	m.title = fmt.Sprintf("Chunk @0x%X (%s)", c.Offset, state)

	var b strings.Builder
	fmt.Fprintf(&b, "segment:  %d\n", r.Segment)
	fmt.Fprintf(&b, "header:   0x%08X\n", uint32(c.Header))
	fmt.Fprintf(&b, "footer:   0x%08X\n", uint32(c.Footer))
	fmt.Fprintf(&b, "size:     %d (payload %d at 0x%X)\n\n", c.Size, c.PayloadSize(), c.Payload())
	b.WriteString(hex.Dump(s.payload(c)))

	m.viewport.SetContent(b.String())
	m.viewport.GotoTop()
	m.visible = true
}

// Hide closes the modal.
func (m *detailModel) Hide() { m.visible = false }

func (m *detailModel) resize(width, height int) {
	m.viewport.Width = max(width, 20)
	m.viewport.Height = max(height, 5)
}

func (m *detailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *detailModel) View() string {
	if !m.visible {
		return ""
	}
	return modalStyle.Render(headerStyle.Render(m.title) + "\n\n" + m.viewport.View())
}
