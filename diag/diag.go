// Package diag renders the compiler's lex/parse diagnostics in the
// two-line shape external tools (and this repository's own error
// scenarios) expect: the whole source text, then a caret line with
// "^" under the byte offset that went wrong, followed on that same
// line by a human-readable message.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/kbocek/subc/lexer"
	"github.com/kbocek/subc/parser"
)

// caret is the color used to highlight the "^" column. Render only
// builds a string, so whether escape codes are added is decided by
// fatih/color's package-wide NoColor setting (which the library derives
// from whether stdout is a terminal), not by the sink the text is later
// written to; with NoColor set the caret is an unadorned "^".
var caret = color.New(color.FgRed, color.Bold)

// Reporter renders diagnostics against one source string.
type Reporter struct {
	Source string
}

// NewReporter creates a Reporter over source.
func NewReporter(source string) *Reporter {
	return &Reporter{Source: source}
}

// Render formats the two-line diagnostic for a fault at byte offset
// pos with message msg: the whole source, then a line with a caret
// beneath pos followed by a space and msg. pos counts bytes from the
// start of the source, so for a multi-line source the caret is not
// placed under the offending line.
func (r *Reporter) Render(pos int, msg string) string {
	var b strings.Builder
	b.WriteString(r.Source)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", pos))
	b.WriteString(caret.Sprint("^"))
	b.WriteString(" ")
	b.WriteString(msg)
	b.WriteByte('\n')
	return b.String()
}

// Format renders err in the diagnostic shape above when it is a
// *lexer.Error or *parser.Error, and as a plain "internal compiler
// error" line (no source/caret — these are bugs, not located user
// faults) otherwise.
func (r *Reporter) Format(err error) string {
	switch e := err.(type) {
	case *lexer.Error:
		return r.Render(e.Pos, e.Msg)
	case *parser.Error:
		return r.Render(e.Pos, e.Msg)
	default:
		return fmt.Sprintf("internal compiler error: %s\n", err)
	}
}
