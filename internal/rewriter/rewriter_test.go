package rewriter

import (
	"bytes"
	"strings"
	"testing"
)

// TestChunkBoundaryExample pins a pattern match straddling chunk
// boundaries, where the naive "flush a mismatch without retrying it"
// reading of the state machine would produce the wrong output.
func TestChunkBoundaryExample(t *testing.T) {
	got, err := RewriteAll([]byte("ABC"), []byte("Z"), 4096,
		[]byte("AAB"), []byte("CAB"), []byte("CX"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "AZZX"; string(got) != want {
		t.Errorf("RewriteAll = %q, want %q", got, want)
	}
}

func TestEmptyPatternIsPassthrough(t *testing.T) {
	got, err := RewriteAll(nil, []byte("Z"), 4096, []byte("hello "), []byte("world"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "hello world"; string(got) != want {
		t.Errorf("RewriteAll with empty pattern = %q, want %q", got, want)
	}
}

// bulkReplace is the reference "replace every non-overlapping left-to-right
// occurrence" semantics against which Writer is checked.
func bulkReplace(input, pattern, replacement string) string {
	if pattern == "" {
		return input
	}
	return strings.ReplaceAll(input, pattern, replacement)
}

func TestMatchesBulkReplaceAcrossPartitions(t *testing.T) {
	input := "xxABCyyABCABCzzAABCw"
	pattern, replacement := "ABC", "<R>"
	want := bulkReplace(input, pattern, replacement)

	partitions := [][]int{
		{len(input)},                         // single chunk
		splitEvery(input, 1),                  // one byte at a time
		splitEvery(input, 3),                  // three bytes at a time
		{2, 5, len(input) - 7},                 // uneven
	}

	for _, sizes := range partitions {
		chunks := chunkBySizes(input, sizes)
		got, err := RewriteAll([]byte(pattern), []byte(replacement), 4096, chunks...)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != want {
			t.Errorf("chunks=%v: RewriteAll = %q, want %q", sizes, got, want)
		}
	}
}

func splitEvery(s string, n int) []int {
	var sizes []int
	for i := 0; i < len(s); i += n {
		end := i + n
		if end > len(s) {
			end = len(s)
		}
		sizes = append(sizes, end-i)
	}
	return sizes
}

func chunkBySizes(s string, sizes []int) [][]byte {
	var chunks [][]byte
	off := 0
	total := 0
	for _, n := range sizes {
		total += n
	}
	if total != len(s) {
		// Normalize: last size absorbs the remainder.
		if len(sizes) > 0 {
			sizes[len(sizes)-1] += len(s) - total
		}
	}
	for _, n := range sizes {
		if n < 0 {
			n = 0
		}
		end := off + n
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, []byte(s[off:end]))
		off = end
	}
	if off < len(s) {
		chunks = append(chunks, []byte(s[off:]))
	}
	return chunks
}

func TestSmallBufferForcesMultipleFlushes(t *testing.T) {
	got, err := RewriteAll([]byte("ab"), []byte("X"), 2, []byte("ababab"))
	if err != nil {
		t.Fatal(err)
	}
	if want := "XXX"; string(got) != want {
		t.Errorf("RewriteAll with tiny buffer = %q, want %q", got, want)
	}
}

func TestWriteByteAPIMatchesRewriteAll(t *testing.T) {
	var out bytes.Buffer
	w := New([]byte("foo"), []byte("bar"), 8, func(p []byte) error {
		_, err := out.Write(p)
		return err
	})
	if _, err := w.Write([]byte("xxfooxxfoo")); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if want := "xxbarxxbar"; out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}
