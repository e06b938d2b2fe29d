package phase

import (
	"fmt"
	"io"
	"os"

	"github.com/gprtools/compiledriver/internal/supervisor"
)

// progressPrinter refreshes a single status line as sources compile,
// gated on DisplayCompilationProgress and a terminal check: no point
// repainting a line that just scrolls a log file.
type progressPrinter struct {
	w       io.Writer
	enabled bool
	total   int
	done    int
}

func newProgressPrinter(enabled bool, total int) *progressPrinter {
	return &progressPrinter{
		w:       os.Stdout,
		enabled: enabled && supervisor.IsTerminal(os.Stdout.Fd()),
		total:   total,
	}
}

func (p *progressPrinter) advance() {
	if !p.enabled {
		return
	}
	p.done++
	fmt.Fprintf(p.w, "\rcompiling: %d/%d", p.done, p.total)
}

func (p *progressPrinter) finish() {
	if !p.enabled {
		return
	}
	fmt.Fprintln(p.w)
}
