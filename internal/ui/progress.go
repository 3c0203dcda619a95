package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/fenilsonani/codeclean/internal/progress"
	"github.com/fenilsonani/codeclean/internal/ui/styles"
	uiutils "github.com/fenilsonani/codeclean/internal/ui/utils"
)

// LiveProgress redraws a single status line from cleanup events. It is a
// progress.Sink.
type LiveProgress struct {
	mu         sync.Mutex
	out        io.Writer
	width      int
	interval   time.Duration
	lastUpdate time.Time
	stage      progress.Stage
	done       int
	total      int
	path       string
	drawn      bool
}

// NewLiveProgress creates a progress line on out. The width follows the
// terminal when out is one, else 80 columns.
func NewLiveProgress(out io.Writer) *LiveProgress {
	width := 80
	if f, ok := out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	return &LiveProgress{
		out:      out,
		width:    width,
		interval: 100 * time.Millisecond,
	}
}

// Emit updates the line; progress events are throttled, others are drawn
// immediately
func (lp *LiveProgress) Emit(e progress.Event) {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	switch e.Kind {
	case progress.KindStart:
		lp.stage, lp.done, lp.total, lp.path = e.Stage, 0, e.Total, ""
	case progress.KindProgress:
		lp.stage, lp.done, lp.total, lp.path = e.Stage, e.Done, e.Total, e.Path
		now := time.Now()
		if now.Sub(lp.lastUpdate) < lp.interval {
			return
		}
		lp.lastUpdate = now
	case progress.KindFinish:
		lp.stage, lp.done, lp.path = e.Stage, e.Done, ""
		if e.Total > 0 {
			lp.total = e.Total
		}
	case progress.KindError:
		lp.clear()
		fmt.Fprintln(lp.out, styles.ErrorStyle.Render("✗ ")+progress.FormatEvent(e))
	case progress.KindWarning:
		return
	}

	lp.render()
}

func (lp *LiveProgress) render() {
	bar := styles.ProgressBar(lp.done, lp.total, 20)
	line := fmt.Sprintf("%-12s %s %d/%d", lp.stage, bar, lp.done, lp.total)
	if lp.path != "" {
		room := lp.width - len(fmt.Sprintf("%-12s %s %d/%d ", lp.stage, strings.Repeat(" ", 20), lp.done, lp.total)) - 2
		if room > 10 {
			line += " " + styles.DimStyle.Render(uiutils.TruncatePath(lp.path, room))
		}
	}

	fmt.Fprintf(lp.out, "\r\033[K%s", line)
	lp.drawn = true
}

func (lp *LiveProgress) clear() {
	if lp.drawn {
		fmt.Fprint(lp.out, "\r\033[K")
		lp.drawn = false
	}
}

// Finish ends the status line
func (lp *LiveProgress) Finish() {
	lp.mu.Lock()
	defer lp.mu.Unlock()

	if lp.drawn {
		fmt.Fprintln(lp.out)
		lp.drawn = false
	}
}
