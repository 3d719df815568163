package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiPurple = "\033[35m"
	ansiGray   = "\033[90m"
)

// ColorMode selects when the emitter writes ANSI escapes.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Emitter prints diagnostics for humans.
type Emitter struct {
	w     io.Writer
	color bool
}

// NewEmitter returns an emitter writing to w. In ColorAuto mode colour is
// used only when w is a terminal and NO_COLOR is unset.
func NewEmitter(w io.Writer, mode ColorMode) *Emitter {
	return &Emitter{w: w, color: useColor(w, mode)}
}

func useColor(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (em *Emitter) paint(style, s string) string {
	if !em.color {
		return s
	}
	return style + s + ansiReset
}

// Emit writes one diagnostic.
func (em *Emitter) Emit(e *DiagnosticError) error {
	head := em.paint(ansiBold+ansiRed, fmt.Sprintf("error[%s]", e.Code))
	if e.IsInternal() {
		head = em.paint(ansiBold+ansiPurple, fmt.Sprintf("bug[%s]", e.Code))
	}
	_, err := fmt.Fprintf(em.w, "%s %s: %s\n", head, e.Code.Title(), e.Message)
	if err != nil {
		return err
	}
	if e.Pos.IsValid() || e.Pos.File != "" {
		_, err = fmt.Fprintf(em.w, "  %s %s\n", em.paint(ansiGray, "-->"), e.Pos)
	}
	return err
}

// EmitAll writes every diagnostic in the bag followed by a summary line.
func (em *Emitter) EmitAll(b *Bag) error {
	errs := b.Errors()
	for _, e := range errs {
		if err := em.Emit(e); err != nil {
			return err
		}
	}
	if len(errs) > 0 {
		_, err := fmt.Fprintf(em.w, "\n%s\n", em.paint(ansiRed, fmt.Sprintf("compilation failed with %d error(s)", len(errs))))
		return err
	}
	return nil
}
