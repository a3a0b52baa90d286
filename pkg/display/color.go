package display

import (
	"io"
	"os"

	"github.com/arthur-debert/fsmanifest/pkg/config"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// UseColor decides whether output written to w should be styled.
func UseColor(mode config.ColorMode, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}

	// Check if NO_COLOR is set
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check if we're being piped or redirected
	f, ok := w.(*os.File)
	if !ok || (!isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())) {
		return false
	}

	return termenv.NewOutput(f).ColorProfile() != termenv.Ascii
}
