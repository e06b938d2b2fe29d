// Package rewriter implements the byte-stream rewriter: streaming
// substitution of a fixed byte pattern with a fixed byte replacement over
// chunks arriving from a producer and emitted to a consumer callback,
// used to post-process compiler output.
//
// "Streaming fixed-pattern substitution" has no off-the-shelf library
// home, so the state machine itself is stdlib-only; RewriteAll buffers its
// output in a github.com/orcaman/writerseeker.WriterSeeker.
package rewriter

// Writer performs streaming pattern→replacement substitution. It satisfies
// io.Writer; callers must call Flush when the input is exhausted.
type Writer struct {
	pattern     []byte
	replacement []byte
	size        int // capacity of the committed buffer before a forced flush

	committed []byte // emitted-in-order bytes not yet flushed
	pending   []byte // bytes that may be the prefix of a pattern match

	emit func([]byte) error
}

// New returns a Writer that replaces every non-overlapping left-to-right
// occurrence of pattern with replacement, buffering up to size committed
// bytes before calling emit. An empty pattern makes Write a direct
// passthrough.
func New(pattern, replacement []byte, size int, emit func([]byte) error) *Writer {
	if size <= 0 {
		size = 4096
	}
	return &Writer{
		pattern:     pattern,
		replacement: replacement,
		size:        size,
		committed:   make([]byte, 0, size),
		emit:        emit,
	}
}

// Write implements io.Writer.
func (w *Writer) Write(data []byte) (int, error) {
	if len(w.pattern) == 0 {
		// Direct passthrough.
		if err := w.appendCommitted(data); err != nil {
			return 0, err
		}
		return len(data), nil
	}

	for i, b := range data {
		if err := w.writeByte(b); err != nil {
			return i, err
		}
	}
	return len(data), nil
}

func (w *Writer) writeByte(b byte) error {
	pos := len(w.pending)

	if b == w.pattern[pos] {
		w.pending = append(w.pending, b)
	} else {
		if pos > 0 {
			// Commit only the first pending byte and re-feed the rest plus b,
			// so a match starting inside the abandoned candidate is still
			// found (pattern "ABC" against "AABCABCX", or "AAB" against
			// "AAAB" — see rewriter_test.go for a worked example).
			if err := w.appendCommitted(w.pending[:1]); err != nil {
				return err
			}
			rest := append(append([]byte(nil), w.pending[1:]...), b)
			w.pending = w.pending[:0]
			for _, r := range rest {
				if err := w.writeByte(r); err != nil {
					return err
				}
			}
			return nil
		}
		if err := w.appendCommitted([]byte{b}); err != nil {
			return err
		}
	}

	if len(w.pending) == len(w.pattern) {
		if err := w.appendCommitted(w.replacement); err != nil {
			return err
		}
		w.pending = w.pending[:0]
	}
	return nil
}

// appendCommitted appends b to committed, flushing first if there isn't
// room, and emitting b directly if it alone exceeds the buffer's capacity.
func (w *Writer) appendCommitted(b []byte) error {
	if len(w.committed)+len(b) > w.size {
		if err := w.flushCommitted(); err != nil {
			return err
		}
	}
	if len(b) > w.size {
		return w.emit(b)
	}
	w.committed = append(w.committed, b...)
	return nil
}

func (w *Writer) flushCommitted() error {
	if len(w.committed) == 0 {
		return nil
	}
	if err := w.emit(w.committed); err != nil {
		return err
	}
	w.committed = w.committed[:0]
	return nil
}

// Flush emits committed then pending (whatever partial match remains
// unresolved at end of input) and resets both cursors.
func (w *Writer) Flush() error {
	if err := w.flushCommitted(); err != nil {
		return err
	}
	if len(w.pending) > 0 {
		if err := w.emit(w.pending); err != nil {
			return err
		}
		w.pending = w.pending[:0]
	}
	return nil
}
