package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestProgressBar_NonTTYPrintsOnlyAtFinish(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress("Dumping tables", buf)

	p.Start(3)
	p.Table("inventory")
	p.Table("recipes")
	if buf.Len() != 0 {
		t.Errorf("non-TTY progress should stay silent until Finish, got: %q", buf.String())
	}

	p.Table("menus")
	p.Finish()
	out := buf.String()
	if !strings.Contains(out, "100% Dumping tables (3/3)") {
		t.Errorf("finished progress should show 100%% and the table count, got: %q", out)
	}
	if got := strings.Count(out, "\n"); got != 1 {
		t.Errorf("expected exactly one line, got %d: %q", got, out)
	}
	if strings.Contains(out, "\r") || strings.Contains(out, clearLine) {
		t.Errorf("non-TTY output should carry no terminal control codes, got: %q", out)
	}
}

func TestProgressBar_LineTracksCurrentTable(t *testing.T) {
	p := NewProgress("Dumping tables", &bytes.Buffer{})
	p.Start(4)
	p.Table("inventory")
	p.Table("recipes")

	got := p.line()
	want := "[###############               ]  50% Dumping tables (2/4): recipes"
	if got != want {
		t.Errorf("line() = %q, want %q", got, want)
	}
}

func TestProgressBar_TablesPastTotalAreCapped(t *testing.T) {
	p := NewProgress("x", &bytes.Buffer{})
	p.Start(1)
	p.Table("a")
	p.Table("b")

	if p.done != 1 {
		t.Errorf("done should be capped at total, got %d", p.done)
	}
	if !strings.HasPrefix(p.line(), "[##############################] 100%") {
		t.Errorf("capped bar should be full, got %q", p.line())
	}
}

func TestProgressBar_ZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewProgress("Nothing to do", buf)
	p.Start(0)
	p.Finish()

	if !strings.Contains(buf.String(), "100% Nothing to do (0/0)") {
		t.Errorf("zero-total progress should render as complete, got: %q", buf.String())
	}
}

func TestSpinner_NonTTY(t *testing.T) {
	buf := &bytes.Buffer{}
	calls := 0
	err := NewSpinner("Replaying dump", buf).Run(func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if calls != 1 {
		t.Errorf("fn should run once, ran %d times", calls)
	}
	if got := buf.String(); got != "Replaying dump...\n" {
		t.Errorf("non-TTY spinner should print the message once, got: %q", got)
	}
}

func TestSpinner_ReturnsFnError(t *testing.T) {
	want := errors.New("replay failed")
	err := NewSpinner("Replaying dump", &bytes.Buffer{}).Run(func() error { return want })
	if !errors.Is(err, want) {
		t.Errorf("Run() error = %v, want %v", err, want)
	}
}
