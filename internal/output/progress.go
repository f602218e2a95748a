package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/recipeops/internal/dump"
)

const (
	barWidth      = 30
	spinnerPeriod = 100 * time.Millisecond
	clearLine     = "\033[K"
)

// writerIsTTY reports whether w is a file descriptor attached to a terminal.
// Plain writers such as *bytes.Buffer never are.
func writerIsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && isatty.IsTerminal(f.Fd())
}

// ProgressBar follows a dump table by table. The dump supplies the total
// through Start, so the bar needs no sizing of its own.
//
// On a terminal the bar is redrawn in place with the table being dumped:
//
//	[###########                   ]  40% Dumping tables (2/5): recipes
//
// On any other writer only the completed bar is printed, by Finish.
type ProgressBar struct {
	mu          sync.Mutex
	w           io.Writer
	tty         bool
	description string
	total       int
	done        int
	table       string
}

var _ dump.Progress = (*ProgressBar)(nil)

// NewProgress returns a bar labelled description that draws on w.
func NewProgress(description string, w io.Writer) *ProgressBar {
	return &ProgressBar{w: w, tty: writerIsTTY(w), description: description}
}

// Start sets the number of tables the dump will write.
func (p *ProgressBar) Start(tables int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total, p.done, p.table = tables, 0, ""
	p.redraw()
}

// Table advances the bar to the named table.
func (p *ProgressBar) Table(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done < p.total {
		p.done++
	}
	p.table = name
	p.redraw()
}

// Finish prints the completed bar on its own line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done, p.table = p.total, ""
	if p.tty {
		fmt.Fprint(p.w, "\r")
	}
	fmt.Fprintln(p.w, p.line()+p.eol())
}

func (p *ProgressBar) redraw() {
	if p.tty {
		fmt.Fprint(p.w, "\r"+p.line()+clearLine)
	}
}

func (p *ProgressBar) eol() string {
	if p.tty {
		return clearLine
	}
	return ""
}

func (p *ProgressBar) line() string {
	filled, pct := barWidth, 100
	if p.total > 0 {
		filled = p.done * barWidth / p.total
		pct = p.done * 100 / p.total
	}
	label := fmt.Sprintf("%s (%d/%d)", p.description, p.done, p.total)
	if p.table != "" {
		label += ": " + p.table
	}
	return fmt.Sprintf("[%s%s] %3d%% %s",
		strings.Repeat("#", filled), strings.Repeat(" ", barWidth-filled), pct, label)
}

// Spinner shows that a step without measurable progress, such as replaying
// an export, is still running.
type Spinner struct {
	w       io.Writer
	message string
}

// NewSpinner returns a spinner that writes message to w.
func NewSpinner(message string, w io.Writer) *Spinner {
	return &Spinner{w: w, message: message}
}

// Run calls fn and animates the spinner until it returns. On a writer that
// is not a terminal the message is printed once instead.
func (s *Spinner) Run(fn func() error) error {
	if !writerIsTTY(s.w) {
		fmt.Fprintf(s.w, "%s...\n", s.message)
		return fn()
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(spinnerPeriod)
		defer ticker.Stop()
		frames := `|/-\`
		for i := 0; ; i++ {
			fmt.Fprintf(s.w, "\r%c  %s", frames[i%len(frames)], s.message)
			select {
			case <-done:
				fmt.Fprint(s.w, "\r"+clearLine)
				return
			case <-ticker.C:
			}
		}
	}()

	err := fn()
	close(done)
	wg.Wait()
	return err
}
