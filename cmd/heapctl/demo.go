package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/printer"
	"github.com/joshuapare/heapkit/heap/region"
	"github.com/joshuapare/heapkit/heap/verify"
)

var (
	demoPageSize       int
	demoCoalesce       bool
	demoSplitGrown     bool
	demoFirstCandidate bool
)

func init() {
	cmd := newDemoCmd()
	cmd.Flags().IntVar(&demoPageSize, "page-size", 4096, "Page size of the demo region")
	cmd.Flags().BoolVar(&demoCoalesce, "coalesce", false, "Merge freed chunks with free neighbours")
	cmd.Flags().BoolVar(&demoSplitGrown, "split-grown", false, "Split chunks produced by growth")
	cmd.Flags().BoolVar(&demoFirstCandidate, "first-candidate", false, "Only examine the free-list head")
	rootCmd.AddCommand(cmd)
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through malloc, free, realloc and double free",
		Long: `The demo command runs a fixed sequence of allocations on a small
in-memory heap and prints the heap and free list after each step.

Example:
  heapctl demo
  heapctl demo --coalesce --split-grown`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(output())
		},
	}
}

// demoStep is one titled action whose effect is printed afterwards.
type demoStep struct {
	title string
	run   func(h *alloc.Heap) error
}

func runDemo(w io.Writer) error {
	h, err := alloc.New(region.NewMemoryWithPageSize(1<<20, demoPageSize), &alloc.Options{
		Logger:         logger,
		Coalesce:       demoCoalesce,
		SplitGrown:     demoSplitGrown,
		FirstCandidate: demoFirstCandidate,
	})
	if err != nil {
		return err
	}

	var a, b, c alloc.Ptr
	steps := []demoStep{
		{"calloc(10, 4) then free", func(h *alloc.Heap) error {
			p, err := h.Calloc(10, 4)
			if err != nil {
				return err
			}
			return h.Free(p)
		}},
		{"malloc(4000)", func(h *alloc.Heap) (err error) {
			a, err = h.Malloc(4000)
			return err
		}},
		{"malloc(20)", func(h *alloc.Heap) (err error) {
			b, err = h.Malloc(20)
			return err
		}},
		{"malloc(8)", func(h *alloc.Heap) error {
			_, err := h.Malloc(8)
			return err
		}},
		{"free the 4000", func(h *alloc.Heap) error { return h.Free(a) }},
		{"free the 4000 again", func(h *alloc.Heap) error {
			err := h.Free(a)
			if errors.Is(err, alloc.ErrDoubleFree) {
				fmt.Fprintf(w, "Cannot free a chunk that's already free: %v\n", err)
				return nil
			}
			return err
		}},
		{"malloc(3000) reuses the freed 4000", func(h *alloc.Heap) (err error) {
			grows := h.Stats().GrowCalls
			c, err = h.Malloc(3000)
			if err == nil {
				fmt.Fprintf(w, "reused: %t, grew: %t\n", c == a, h.Stats().GrowCalls != grows)
			}
			return err
		}},
		{"realloc(malloc(10), 40)", func(h *alloc.Heap) error {
			p, err := h.Malloc(10)
			if err != nil {
				return err
			}
			buf, err := h.Bytes(p)
			if err != nil {
				return err
			}
			copy(buf, "0123456789")
			q, err := h.Realloc(p, 40)
			if err != nil {
				return err
			}
			s, err := h.CString(q)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "moved: %t, contents: %q\n", p != q, s[:min(len(s), 10)])
			return h.Free(q)
		}},
		{"free the 20", func(h *alloc.Heap) error { return h.Free(b) }},
	}

	pr := printer.New(h, w, printer.DefaultOptions())
	for i, st := range steps {
		fmt.Fprintf(w, "--------------------------------------------------------------\n")
		fmt.Fprintf(w, "%d. %s\n", i+1, st.title)
		if err := st.run(h); err != nil {
			return fmt.Errorf("%s: %w", st.title, err)
		}
		if err := pr.PrintHeap(); err != nil {
			return err
		}
	}
	if err := pr.PrintStats(h.Stats()); err != nil {
		return err
	}
	return verify.Heap(h)
}
