// Package patcher rewrites the Application's bulk-update route handler so
// that it targets the menu_assignments table instead of the retired
// menu_menu_items table.
//
// The rewrite is textual and confined to the body of a single Python
// function. It is idempotent: patching already-patched source changes nothing.
package patcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/blackwell-systems/recipeops/internal/logger"
)

// DefaultHandler is the function whose body is rewritten.
const DefaultHandler = "bulk_update_menu_items"

// ErrHandlerNotFound is returned when the source has no definition of the handler.
var ErrHandlerNotFound = errors.New("handler not found")

// Substitution replaces every occurrence of From with To.
type Substitution struct {
	From string
	To   string
}

// MenuAssignments are applied in order; each rule runs once over the body.
var MenuAssignments = []Substitution{
	{"FROM menu_menu_items", "FROM menu_assignments"},
	{"UPDATE menu_menu_items", "UPDATE menu_assignments"},
	{"INSERT INTO menu_menu_items", "INSERT INTO menu_assignments"},
	{"DELETE FROM menu_menu_items", "DELETE FROM menu_assignments"},
	{"SET category = ?", "SET category_section = ?"},
	{"(menu_id, menu_item_id, category, sort_order, override_price)",
		"(menu_id, menu_item_id, category_section, sort_order, price_override)"},
	{"SELECT id FROM menu_assignments", "SELECT assignment_id FROM menu_assignments"},
}

// Applied records how many occurrences of one substitution were replaced.
type Applied struct {
	Substitution
	Count int
}

// Result describes the outcome of a patch.
type Result struct {
	Handler   string
	StartLine int // 1-based line of the def statement
	EndLine   int // 1-based last line of the body
	Applied   []Applied
}

// Changed reports whether any substitution took effect.
func (r *Result) Changed() bool {
	for _, a := range r.Applied {
		if a.Count > 0 {
			return true
		}
	}
	return false
}

// Patch applies subs to the body of the named function in src.
func Patch(src, handler string, subs []Substitution) (string, *Result, error) {
	lines := strings.SplitAfter(src, "\n")

	start, bodyStart, bodyEnd, ok := locateBody(lines, handler)
	if !ok {
		return src, nil, fmt.Errorf("%s: %w", handler, ErrHandlerNotFound)
	}

	body := strings.Join(lines[bodyStart:bodyEnd], "")
	res := &Result{Handler: handler, StartLine: start + 1, EndLine: bodyEnd}

	for _, sub := range subs {
		n := strings.Count(body, sub.From)
		if n > 0 {
			body = strings.ReplaceAll(body, sub.From, sub.To)
		}
		res.Applied = append(res.Applied, Applied{Substitution: sub, Count: n})
	}

	var sb strings.Builder
	sb.Grow(len(src) + 64)
	for _, l := range lines[:bodyStart] {
		sb.WriteString(l)
	}
	sb.WriteString(body)
	for _, l := range lines[bodyEnd:] {
		sb.WriteString(l)
	}
	return sb.String(), res, nil
}

// locateBody finds the def line of handler and the [bodyStart, bodyEnd) line
// range of its body. The body runs from the line after the signature to the
// last non-blank line indented deeper than the def, or inside a triple-quoted
// string that the body opened.
func locateBody(lines []string, handler string) (start, bodyStart, bodyEnd int, ok bool) {
	defRe := regexp.MustCompile(`^([ \t]*)(?:async[ \t]+)?def[ \t]+` + regexp.QuoteMeta(handler) + `[ \t]*\(`)

	start = -1
	var indent int
	for i, l := range lines {
		if m := defRe.FindStringSubmatch(l); m != nil {
			start = i
			indent = len(m[1])
			break
		}
	}
	if start < 0 {
		return 0, 0, 0, false
	}

	// The signature may span lines; it ends where parentheses balance.
	depth := 0
	sigEnd := start
	for i := start; i < len(lines); i++ {
		depth += strings.Count(lines[i], "(") - strings.Count(lines[i], ")")
		sigEnd = i
		if depth <= 0 {
			break
		}
	}

	bodyStart = sigEnd + 1
	bodyEnd = bodyStart
	quote := ""
	for i := bodyStart; i < len(lines); i++ {
		// Lines inside a triple-quoted string belong to the body whatever
		// their indentation.
		if quote != "" {
			quote = scanTripleQuotes(lines[i], quote)
			bodyEnd = i + 1
			continue
		}

		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if indentOf(lines[i]) <= indent {
			// Comments at outer indentation do not close the body.
			if strings.HasPrefix(trimmed, "#") {
				continue
			}
			break
		}
		bodyEnd = i + 1
		if !strings.HasPrefix(trimmed, "#") {
			quote = scanTripleQuotes(lines[i], "")
		}
	}
	return start, bodyStart, bodyEnd, true
}

// scanTripleQuotes walks line starting inside the triple-quoted string
// opened by quote ("" when outside any string) and returns the delimiter
// still open at the end of the line.
func scanTripleQuotes(line, quote string) string {
	for {
		if quote != "" {
			i := strings.Index(line, quote)
			if i < 0 {
				return quote
			}
			line = line[i+len(quote):]
			quote = ""
			continue
		}

		d := strings.Index(line, `"""`)
		s := strings.Index(line, `'''`)
		switch {
		case d < 0 && s < 0:
			return ""
		case s < 0 || (d >= 0 && d < s):
			quote, line = `"""`, line[d+3:]
		default:
			quote, line = `'''`, line[s+3:]
		}
	}
}

func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}

// PatchFile patches handler in the file at path. The file is rewritten, via
// a temp file and rename, only when something changed.
func PatchFile(path, handler string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	patched, res, err := Patch(string(data), handler, MenuAssignments)
	if err != nil {
		return nil, err
	}
	logger.Debug("located handler", "handler", handler, "start", res.StartLine, "end", res.EndLine)

	if !res.Changed() {
		return res, nil
	}

	if err := writeFileAtomic(path, []byte(patched), info.Mode().Perm()); err != nil {
		return nil, err
	}
	return res, nil
}

// writeFileAtomic writes data to a temp file beside path and renames it into place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
