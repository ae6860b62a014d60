package main

import (
	"fmt"
	"strconv"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/cmd/heapexplorer/logger"
)

// Layout constants
const (
	headerHeight = 4 // title, path, totals, validity
	statusHeight = 1
	minRows      = 3
)

// Model is the main application model
type Model struct {
	path     string
	pageSize int
	snap     *snapshot
	keys     KeyMap

	table   table.Model
	visible []int // indices into snap.chunks, in table order
	detail  detailModel

	freeOnly bool
	showHelp bool

	// Status message for temporary feedback
	statusMessage string

	width  int
	height int

	// copy writes text to the system clipboard
	copy func(string) error

	err error
}

// snapshotMsg carries the result of (re)loading the heap file.
type snapshotMsg struct {
	snap *snapshot
	err  error
}

// NewModel loads the heap file at path and builds the UI around it.
func NewModel(path string, pageSize int) Model {
	snap, err := loadSnapshot(path, pageSize)
	if err != nil {
		logger.Error("failed to load heap", "error", err)
	}
	return newModel(path, pageSize, snap, err)
}

func newModel(path string, pageSize int, snap *snapshot, err error) Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 5},
			{Title: "Seg", Width: 4},
			{Title: "Offset", Width: 10},
			{Title: "State", Width: 6},
			{Title: "Size", Width: 9},
			{Title: "Payload", Width: 9},
			{Title: "Tags", Width: 9},
		}),
		table.WithFocused(true),
		table.WithHeight(minRows),
	)
	t.SetStyles(tableStyles())

	m := Model{
		path:     path,
		pageSize: pageSize,
		snap:     snap,
		keys:     DefaultKeyMap(),
		table:    t,
		detail:   newDetailModel(),
		copy:     clipboard.WriteAll,
		err:      err,
	}
	m.rebuildRows()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// reload re-reads the heap file off the UI goroutine.
func (m Model) reload() tea.Cmd {
	path, pageSize := m.path, m.pageSize
	return func() tea.Msg {
		snap, err := loadSnapshot(path, pageSize)
		return snapshotMsg{snap: snap, err: err}
	}
}

// rebuildRows refills the table from the snapshot, honouring the free filter.
func (m *Model) rebuildRows() {
	m.visible = nil
	var rows []table.Row
	if m.snap != nil {
		for i, r := range m.snap.chunks {
			if m.freeOnly && !r.Chunk.Free {
				continue
			}
			m.visible = append(m.visible, i)
			rows = append(rows, chunkTableRow(i, r))
		}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func chunkTableRow(i int, r chunkRow) table.Row {
	state, tags := "used", "ok"
	if r.Chunk.Free {
		state = "free"
	}
	if !r.Chunk.Valid() {
		tags = "MISMATCH"
	}
	return table.Row{
		strconv.Itoa(i),
		strconv.Itoa(r.Segment),
		fmt.Sprintf("0x%06X", r.Chunk.Offset),
		state,
		strconv.Itoa(r.Chunk.Size),
		strconv.Itoa(r.Chunk.PayloadSize()),
		tags,
	}
}

// selected returns the chunk under the table cursor.
func (m Model) selected() (chunkRow, bool) {
	c := m.table.Cursor()
	if m.snap == nil || c < 0 || c >= len(m.visible) {
		return chunkRow{}, false
	}
	return m.snap.chunks[m.visible[c]], true
}

// Close releases resources held by the model. Snapshots are private copies,
// so there is nothing to unmap.
func (m Model) Close() error {
	return nil
}
