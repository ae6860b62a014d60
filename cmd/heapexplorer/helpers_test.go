package main

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/region"
)

const testPageSize = 4096

// TestHelper drives a Model the way a program would, without a terminal.
type TestHelper struct {
	model Model
}

func NewTestHelper(snap *snapshot) *TestHelper {
	return &TestHelper{model: newModel(snap.name, testPageSize, snap, nil)}
}

// SendKey simulates a key press and drops any command it returns.
func (h *TestHelper) SendKey(keyType tea.KeyType) tea.Cmd {
	updated, cmd := h.model.Update(tea.KeyMsg{Type: keyType})
	h.model = updated.(Model)
	return cmd
}

// SendKeyRune simulates a character key press.
func (h *TestHelper) SendKeyRune(r rune) tea.Cmd {
	updated, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	h.model = updated.(Model)
	return cmd
}

// Run executes cmd and feeds its message back into the model.
func (h *TestHelper) Run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	updated, _ := h.model.Update(cmd())
	h.model = updated.(Model)
}

func (h *TestHelper) SendWindowSize(width, height int) {
	updated, _ := h.model.Update(tea.WindowSizeMsg{Width: width, Height: height})
	h.model = updated.(Model)
}

// buildHeap returns the image of a heap holding, in address order, a freed
// 100-byte chunk, the string "explorer", a 200-byte chunk and the free
// remainder of the first page.
func buildHeap(t *testing.T) []byte {
	t.Helper()
	h, err := alloc.New(region.NewMemoryWithPageSize(1<<20, testPageSize), &alloc.Options{SplitGrown: true})
	if err != nil {
		t.Fatalf("alloc.New: %v", err)
	}
	a, err := h.Malloc(100)
	if err != nil {
		t.Fatalf("Malloc: %v", err)
	}
	if _, err := h.Strdup("explorer"); err != nil {
		t.Fatalf("Strdup: %v", err)
	}
	if _, err := h.Malloc(200); err != nil {
		t.Fatalf("Malloc: %v", err)
	}
	if err := h.Free(a); err != nil {
		t.Fatalf("Free: %v", err)
	}
	return bytes.Clone(h.Data())
}
