package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/inhies/go-bytesize"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/region"
	"github.com/joshuapare/heapkit/internal/format"
)

// Size is a byte count written either as an integer or as a string such as
// "4KB" or "1.5MB".
type Size int

// UnmarshalYAML accepts integers and human-readable sizes.
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err == nil {
		*s = Size(n)
		return nil
	}
	var str string
	if err := value.Decode(&str); err != nil {
		return fmt.Errorf("line %d: size must be a number or a string", value.Line)
	}
	b, err := bytesize.Parse(str)
	if err != nil {
		return fmt.Errorf("line %d: size %q: %w", value.Line, str, err)
	}
	*s = Size(b)
	return nil
}

// Workload is a replayable sequence of heap operations.
type Workload struct {
	Options WorkloadOptions `yaml:"options"`
	Region  RegionSpec      `yaml:"region"`
	Steps   []Step          `yaml:"steps"`
}

// WorkloadOptions maps onto alloc.Options.
type WorkloadOptions struct {
	Strict         bool `yaml:"strict"`
	Coalesce       bool `yaml:"coalesce"`
	SplitGrown     bool `yaml:"split_grown"`
	FirstCandidate bool `yaml:"first_candidate"`
}

// RegionSpec selects the region the heap grows into.
type RegionSpec struct {
	Kind     string `yaml:"kind"`      // memory (default), mmap, file, wasm
	Limit    Size   `yaml:"limit"`     // growth limit (memory, mmap, wasm)
	PageSize Size   `yaml:"page_size"` // memory only
	Path     string `yaml:"path"`      // file only
}

// Step is one operation. Handles name the pointers steps produce and consume.
type Step struct {
	Op          string `yaml:"op"` // malloc, calloc, realloc, free, strdup, write, expect, defrag
	Name        string `yaml:"name"`
	Size        Size   `yaml:"size"`
	Count       int    `yaml:"count"`
	Value       string `yaml:"value"`
	ExpectError string `yaml:"expect_error"` // double_free, grow_fail, bad_ptr, corrupt
}

const defaultLimit = 64 << 20

// loadWorkload reads and validates a workload file.
func loadWorkload(path string) (*Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workload: %w", err)
	}
	var w Workload
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse workload %s: %w", path, err)
	}
	for i, st := range w.Steps {
		switch st.Op {
		case "malloc", "calloc", "realloc", "free", "strdup", "write", "expect":
			if st.Name == "" {
				return nil, fmt.Errorf("step %d (%s): name is required", i+1, st.Op)
			}
		case "defrag":
		default:
			return nil, fmt.Errorf("step %d: unknown op %q", i+1, st.Op)
		}
		if st.ExpectError != "" {
			if _, ok := expectedErrors[st.ExpectError]; !ok {
				return nil, fmt.Errorf("step %d: unknown expect_error %q", i+1, st.ExpectError)
			}
		}
	}
	return &w, nil
}

var expectedErrors = map[string]error{
	"double_free": alloc.ErrDoubleFree,
	"grow_fail":   alloc.ErrGrowFail,
	"bad_ptr":     alloc.ErrBadPtr,
	"corrupt":     alloc.ErrCorrupt,
}

func (o WorkloadOptions) alloc() *alloc.Options {
	return &alloc.Options{
		Logger:         logger,
		Strict:         o.Strict,
		Coalesce:       o.Coalesce,
		SplitGrown:     o.SplitGrown,
		FirstCandidate: o.FirstCandidate,
	}
}

// openRegion creates the region a workload asks for.
func openRegion(ctx context.Context, rs RegionSpec) (region.Region, error) {
	limit := int(rs.Limit)
	if limit <= 0 {
		limit = defaultLimit
	}
	switch strings.ToLower(rs.Kind) {
	case "", "memory":
		if rs.PageSize > 0 {
			return region.NewMemoryWithPageSize(limit, int(rs.PageSize)), nil
		}
		return region.NewMemory(limit), nil
	case "mmap":
		return region.NewMmap(limit)
	case "file":
		if rs.Path == "" {
			return nil, fmt.Errorf("file region needs a path")
		}
		return region.OpenFile(rs.Path, &region.FileOptions{Create: true})
	case "wasm":
		pages := format.AlignTo(limit, format.WasmPageSize) / format.WasmPageSize
		return region.NewWasm(ctx, uint32(pages))
	default:
		return nil, fmt.Errorf("unknown region kind %q", rs.Kind)
	}
}
