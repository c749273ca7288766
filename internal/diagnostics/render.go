package diagnostics

import (
	"fmt"
	"io"
	"strings"
)

const (
	ansiRed   = "\x1b[31m"
	ansiBlue  = "\x1b[34m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Render writes errs as plain text, with ANSI colours when color is set.
func Render(w io.Writer, errs []*DiagnosticError, color bool) error {
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + ansiReset
	}
	for _, e := range errs {
		loc := e.Region.String()
		if e.File != "" {
			loc = e.File + ":" + loc
		}
		if _, err := fmt.Fprintf(w, "%s %s %s\n",
			paint(ansiBold, loc),
			paint(ansiRed, fmt.Sprintf("error[%s]:", e.Code)),
			e.Message); err != nil {
			return err
		}
		for _, rel := range e.Related {
			if _, err := fmt.Fprintf(w, "  %s %s\n", paint(ansiBlue, rel.Region.String()), rel.Message); err != nil {
				return err
			}
		}
		if len(e.Suggestions) > 0 {
			if _, err := fmt.Fprintf(w, "  did you mean: %s\n", strings.Join(e.Suggestions, ", ")); err != nil {
				return err
			}
		}
	}
	return nil
}
