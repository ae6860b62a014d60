package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/dirty"
	"github.com/joshuapare/heapkit/heap/printer"
	"github.com/joshuapare/heapkit/heap/region"
	"github.com/joshuapare/heapkit/heap/verify"
)

var (
	replayNoPrint bool
	replayStats   bool
)

func init() {
	cmd := newReplayCmd()
	cmd.Flags().BoolVar(&replayNoPrint, "no-print", false, "Skip the final heap walk")
	cmd.Flags().BoolVar(&replayStats, "stats", false, "Print allocator statistics")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <workload.yaml>",
		Short: "Replay a YAML allocation workload",
		Long: `The replay command runs the steps of a workload file against a fresh
heap, then prints and verifies the result.

Example workload:
  options:
    split_grown: true
  region:
    kind: memory
    limit: 1MB
  steps:
    - {op: malloc, name: a, size: 4000}
    - {op: malloc, name: b, size: 20}
    - {op: free, name: a}
    - {op: malloc, name: c, size: 3000}
    - {op: free, name: a, expect_error: double_free}

Example:
  heapctl replay workload.yaml
  heapctl replay workload.yaml --stats --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), args)
		},
	}
	return cmd
}

// replayResult is the JSON summary of a replay.
type replayResult struct {
	Steps      int            `json:"steps"`
	Handles    map[string]int `json:"handles"`
	HWM        int            `json:"hwm"`
	FreeChunks int            `json:"free_chunks"`
	Valid      bool           `json:"valid"`
	Error      string         `json:"error,omitempty"`
	Stats      *alloc.Stats   `json:"stats,omitempty"`
}

func runReplay(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w, err := loadWorkload(args[0])
	if err != nil {
		return err
	}
	printVerbose("Loaded %d steps from %s\n", len(w.Steps), args[0])

	r, err := openRegion(ctx, w.Region)
	if err != nil {
		return fmt.Errorf("failed to open region: %w", err)
	}
	defer r.Close()

	h, err := alloc.New(r, w.Options.alloc())
	if err != nil {
		return fmt.Errorf("failed to create heap: %w", err)
	}

	handles := map[string]alloc.Ptr{}
	for i, st := range w.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		stepErr := runStep(h, handles, st)
		if st.ExpectError != "" {
			if !errors.Is(stepErr, expectedErrors[st.ExpectError]) {
				return fmt.Errorf("step %d (%s %s): expected %s, got %v", i+1, st.Op, st.Name, st.ExpectError, stepErr)
			}
			printVerbose("step %d: %s %s -> %s (expected)\n", i+1, st.Op, st.Name, st.ExpectError)
			continue
		}
		if stepErr != nil {
			return fmt.Errorf("step %d (%s %s): %w", i+1, st.Op, st.Name, stepErr)
		}
		printVerbose("step %d: %s %s -> %#x\n", i+1, st.Op, st.Name, int(handles[st.Name]))
	}

	if fr, ok := r.(*region.File); ok {
		if err := fr.Sync(ctx, dirty.FlushAuto); err != nil {
			return fmt.Errorf("failed to sync heap file: %w", err)
		}
	}

	verr := verify.Heap(h)
	if jsonOut {
		res := replayResult{
			Steps:      len(w.Steps),
			Handles:    make(map[string]int, len(handles)),
			HWM:        h.HWM(),
			FreeChunks: h.FreeLen(),
			Valid:      verr == nil,
		}
		for name, p := range handles {
			res.Handles[name] = int(p)
		}
		if verr != nil {
			res.Error = verr.Error()
		}
		if replayStats {
			s := h.Stats()
			res.Stats = &s
		}
		if err := printJSON(res); err != nil {
			return err
		}
		return verr
	}

	p := printer.New(h, output(), printer.DefaultOptions())
	if !replayNoPrint {
		if err := p.PrintHeap(); err != nil {
			return err
		}
	}
	if replayStats {
		if err := p.PrintStats(h.Stats()); err != nil {
			return err
		}
	}
	if verr != nil {
		return fmt.Errorf("heap failed verification: %w", verr)
	}
	printInfo("Replayed %d steps: %s\n", len(w.Steps), summarizeHandles(handles))
	return nil
}

// runStep applies one step, recording any pointer it produces under st.Name.
func runStep(h *alloc.Heap, handles map[string]alloc.Ptr, st Step) error {
	var (
		p   alloc.Ptr
		err error
	)
	switch st.Op {
	case "malloc":
		p, err = h.Malloc(int(st.Size))
	case "calloc":
		p, err = h.Calloc(st.Count, int(st.Size))
	case "strdup":
		p, err = h.Strdup(st.Value)
	case "realloc":
		p, err = h.Realloc(handles[st.Name], int(st.Size))
	case "free":
		q, ok := handles[st.Name]
		if !ok {
			return fmt.Errorf("unknown handle %q", st.Name)
		}
		return h.Free(q)
	case "write":
		return writeHandle(h, handles, st)
	case "expect":
		return expectHandle(h, handles, st)
	case "defrag":
		_, err = h.Defrag()
		return err
	}
	if err != nil {
		return err
	}
	handles[st.Name] = p
	return nil
}

func writeHandle(h *alloc.Heap, handles map[string]alloc.Ptr, st Step) error {
	p, ok := handles[st.Name]
	if !ok {
		return fmt.Errorf("unknown handle %q", st.Name)
	}
	b, err := h.Bytes(p)
	if err != nil {
		return err
	}
	if len(st.Value) > len(b) {
		return fmt.Errorf("value of %d bytes overflows payload of %d", len(st.Value), len(b))
	}
	n := copy(b, st.Value)
	h.MarkDirty(p, n)
	return nil
}

func expectHandle(h *alloc.Heap, handles map[string]alloc.Ptr, st Step) error {
	p, ok := handles[st.Name]
	if !ok {
		return fmt.Errorf("unknown handle %q", st.Name)
	}
	b, err := h.Bytes(p)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(string(b), st.Value) {
		n := min(len(st.Value), len(b))
		return fmt.Errorf("payload starts with %q, want %q", b[:n], st.Value)
	}
	return nil
}

func summarizeHandles(handles map[string]alloc.Ptr) string {
	names := make([]string, 0, len(handles))
	for name := range handles {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%#x", name, int(handles[name])))
	}
	return strings.Join(parts, " ")
}
