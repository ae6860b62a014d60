package main

import (
	"bytes"
	"testing"
)

func TestDemo(t *testing.T) {
	for _, splitGrown := range []bool{false, true} {
		resetFlags()
		demoSplitGrown = splitGrown

		var out bytes.Buffer
		if err := runDemo(&out); err != nil {
			t.Fatalf("runDemo(split-grown=%t): %v\nOutput: %s", splitGrown, err, out.String())
		}
		assertContains(t, out.String(), []string{
			"1. calloc(10, 4) then free",
			"Cannot free a chunk that's already free",
			"reused: true, grew: false",
			`contents: "0123456789"`,
			"Double frees:      1",
		})
	}
}

func TestVersion(t *testing.T) {
	resetFlags()
	output, err := captureOutput(t, runVersion)
	if err != nil {
		t.Fatalf("runVersion: %v", err)
	}
	assertContains(t, output, []string{"heapctl ", "commit: none", "go:"})

	resetFlags()
	jsonOut = true
	output, err = captureOutput(t, runVersion)
	if err != nil {
		t.Fatalf("runVersion --json: %v", err)
	}
	assertJSON(t, output)
}
