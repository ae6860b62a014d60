package hmalloc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/heap/region"
	"github.com/joshuapare/heapkit/heap/verify"
)

// useTestHeap installs a slice-backed default heap for the test.
func useTestHeap(t *testing.T) *alloc.Heap {
	t.Helper()
	h, err := alloc.New(region.NewMemoryWithPageSize(16<<20, 4096), &alloc.Options{SplitGrown: true})
	require.NoError(t, err)
	prev := SetDefault(h)
	t.Cleanup(func() { SetDefault(prev) })
	return h
}

func TestPackageFunctions(t *testing.T) {
	h := useTestHeap(t)

	p, err := Malloc(10)
	require.NoError(t, err)
	b, err := Bytes(p)
	require.NoError(t, err)
	copy(b, "0123456789")

	q, err := Realloc(p, 40)
	require.NoError(t, err)
	b, err = Bytes(q)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(b[:10]))

	z, err := Calloc(4, 4)
	require.NoError(t, err)
	b, err = Bytes(z)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 16), b[:16])

	s, err := Strdup("default heap")
	require.NoError(t, err)
	got, err := CString(s)
	require.NoError(t, err)
	assert.Equal(t, "default heap", got)

	require.NoError(t, Free(q))
	require.ErrorIs(t, Free(q), alloc.ErrDoubleFree)

	st, err := Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, st.DoubleFrees)
	require.NoError(t, verify.Heap(h))
}

func TestConcurrentUse(t *testing.T) {
	h := useTestHeap(t)

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				p, err := Malloc(16 + (g*31+i)%700)
				if !assert.NoError(t, err) {
					return
				}
				if i%3 != 0 {
					assert.NoError(t, Free(p))
				}
			}
		}()
	}
	wg.Wait()
	require.NoError(t, verify.Heap(h))
}

func TestDefaultIsLazy(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping mmap reservation in short mode")
	}
	prev := SetDefault(nil)
	t.Cleanup(func() { SetDefault(prev) })

	h1, err := Default()
	if err != nil {
		t.Skipf("mmap unavailable: %v", err)
	}
	h2, err := Default()
	require.NoError(t, err)
	assert.Same(t, h1, h2)
	assert.Zero(t, h1.HWM())
}
