package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

const scenarioWorkload = `
region:
  kind: memory
  limit: 1MB
  page_size: 4096
steps:
  - {op: malloc, name: first, size: 4000}
  - {op: malloc, name: second, size: 20}
  - {op: free, name: first}
  - {op: malloc, name: third, size: 3000}
  - {op: free, name: first, expect_error: double_free}
  - {op: malloc, name: p, size: 10}
  - {op: write, name: p, value: "0123456789"}
  - {op: realloc, name: p, size: 40}
  - {op: expect, name: p, value: "0123456789"}
  - {op: free, name: p}
  - {op: free, name: p, expect_error: double_free}
  - {op: strdup, name: s, value: "hello"}
  - {op: expect, name: s, value: "hello\0"}
  - {op: calloc, name: z, count: 4, size: 8}
`

func TestReplayCommand(t *testing.T) {
	tests := []struct {
		name        string
		workload    string
		json        bool
		stats       bool
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "scenario text",
			workload:    scenarioWorkload,
			wantContain: []string{"base dummy", "top dummy", "Free list contains", "Replayed 14 steps"},
		},
		{
			name:        "scenario json with stats",
			workload:    scenarioWorkload,
			json:        true,
			stats:       true,
			wantContain: []string{`"valid": true`, `"DoubleFrees": 2`},
		},
		{
			name: "human sizes and options",
			workload: `
options: {split_grown: true, coalesce: true, strict: true}
region: {limit: 256KB, page_size: 4KB}
steps:
  - {op: malloc, name: a, size: 2KB}
  - {op: malloc, name: b, size: 1KB}
  - {op: free, name: a}
  - {op: free, name: b}
  - {op: defrag}
`,
			wantContain: []string{"Free list contains 1 chunks"},
		},
		{
			name: "exhaustion is reported",
			workload: `
region: {limit: 4096, page_size: 4096}
steps:
  - {op: malloc, name: a, size: 100}
  - {op: malloc, name: b, size: 100, expect_error: grow_fail}
`,
			wantContain: []string{"Replayed 2 steps"},
		},
		{
			name:     "unexpected error fails",
			workload: "steps:\n  - {op: free, name: nope}\n",
			wantErr:  true,
		},
		{
			name:     "unknown op",
			workload: "steps:\n  - {op: explode, name: x}\n",
			wantErr:  true,
		},
		{
			name:     "expectation mismatch",
			workload: "steps:\n  - {op: strdup, name: s, value: abc}\n  - {op: expect, name: s, value: abd}\n",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			jsonOut = tt.json
			replayStats = tt.stats
			path := writeWorkload(t, tt.workload)

			output, err := captureOutput(t, func() error {
				return runReplay(context.Background(), []string{path})
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("runReplay() error = %v, wantErr %v\nOutput: %s", err, tt.wantErr, output)
			}
			if tt.json && !tt.wantErr {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestReplayHandlesJSON(t *testing.T) {
	resetFlags()
	jsonOut = true
	path := writeWorkload(t, scenarioWorkload)

	output, err := captureOutput(t, func() error {
		return runReplay(context.Background(), []string{path})
	})
	if err != nil {
		t.Fatalf("runReplay: %v", err)
	}
	var res replayResult
	if err := json.Unmarshal([]byte(output), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.Handles["first"] != res.Handles["third"] {
		t.Errorf("third = %#x, want reuse of first %#x", res.Handles["third"], res.Handles["first"])
	}
	if res.Steps != 14 || !res.Valid {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestReplayCancelled(t *testing.T) {
	resetFlags()
	path := writeWorkload(t, scenarioWorkload)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := captureOutput(t, func() error {
		return runReplay(ctx, []string{path})
	})
	if err == nil || !strings.Contains(err.Error(), "canceled") {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestReplayFileThenInspect(t *testing.T) {
	resetFlags()
	heapPath := filepath.Join(t.TempDir(), "app.heap")
	path := writeWorkload(t, `
options: {split_grown: true}
region:
  kind: file
  path: `+heapPath+`
steps:
  - {op: strdup, name: s, value: "on disk"}
  - {op: malloc, name: a, size: 512}
  - {op: free, name: a}
`)
	if _, err := captureOutput(t, func() error {
		return runReplay(context.Background(), []string{path})
	}); err != nil {
		t.Fatalf("runReplay: %v", err)
	}

	resetFlags()
	output, err := captureOutput(t, func() error {
		return runInspect([]string{heapPath})
	})
	if err != nil {
		t.Fatalf("runInspect: %v\nOutput: %s", err, output)
	}
	assertContains(t, output, []string{"base dummy", "Free chunk", "Working chunk"})

	resetFlags()
	inspectSummary = true
	jsonOut = true
	output, err = captureOutput(t, func() error {
		return runInspect([]string{heapPath})
	})
	if err != nil {
		t.Fatalf("runInspect --summary: %v", err)
	}
	assertJSON(t, output)
	assertContains(t, output, []string{`"valid": true`, `"segments": 1`})
}
