package rewriter

import (
	"io"

	"github.com/orcaman/writerseeker"
)

// RewriteAll runs every chunk through a fresh Writer and returns the fully
// rewritten result as a single byte slice, buffering the output in memory
// via writerseeker.WriterSeeker rather than building up a []byte by hand.
func RewriteAll(pattern, replacement []byte, size int, chunks ...[]byte) ([]byte, error) {
	var buf writerseeker.WriterSeeker
	w := New(pattern, replacement, size, func(p []byte) error {
		_, err := buf.Write(p)
		return err
	})
	for _, c := range chunks {
		if _, err := w.Write(c); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	r := buf.Reader()
	return io.ReadAll(r)
}
