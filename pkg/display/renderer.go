package display

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"text/template"

	"github.com/arthur-debert/fsmanifest/pkg/config"
	"github.com/arthur-debert/fsmanifest/pkg/executor"
	"github.com/arthur-debert/fsmanifest/pkg/logging"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Renderer writes ResultViews in one output format.
type Renderer struct {
	writer    io.Writer
	format    config.OutputFormat
	templates *template.Template
	styles    map[string]lipgloss.Style
}

// NewRenderer creates a Renderer writing to w. With color false every style
// renders as plain text.
func NewRenderer(w io.Writer, format config.OutputFormat, color bool) (*Renderer, error) {
	log := logging.GetLogger("display.Renderer")

	lg := lipgloss.NewRenderer(w)
	if !color {
		lg.SetColorProfile(termenv.Ascii)
	}
	log.Debug().
		Str("format", string(format)).
		Bool("color", color).
		Msg("Creating renderer")

	r := &Renderer{
		writer: w,
		format: format,
		styles: newStyles(lg),
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"style":   r.style,
		"outcome": r.outcome,
	}).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.templates = tmpl

	return r, nil
}

func newStyles(lg *lipgloss.Renderer) map[string]lipgloss.Style {
	return map[string]lipgloss.Style{
		"header":    lg.NewStyle().Bold(true),
		"kind":      lg.NewStyle().Foreground(lipgloss.Color("12")),
		"muted":     lg.NewStyle().Faint(true),
		"error":     lg.NewStyle().Foreground(lipgloss.Color("9")),
		"applied":   lg.NewStyle().Foreground(lipgloss.Color("10")),
		"unchanged": lg.NewStyle().Faint(true),
		"removed":   lg.NewStyle().Foreground(lipgloss.Color("11")),
		"skipped":   lg.NewStyle().Faint(true),
		"failed":    lg.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		"pending":   lg.NewStyle().Faint(true),
	}
}

func (r *Renderer) style(name, text string) string {
	s, ok := r.styles[name]
	if !ok {
		return text
	}
	return s.Render(text)
}

func (r *Renderer) outcome(o executor.Outcome) string {
	return r.style(string(o), fmt.Sprintf("%-9s", o))
}

// Render writes view in the renderer's format.
func (r *Renderer) Render(view *ResultView) error {
	switch r.format {
	case config.FormatJSON:
		enc := json.NewEncoder(r.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case config.FormatYAML:
		enc := yaml.NewEncoder(r.writer)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	default:
		if err := r.templates.ExecuteTemplate(r.writer, "result.tmpl", view); err != nil {
			return fmt.Errorf("failed to execute template: %w", err)
		}
		_, err := io.WriteString(r.writer, "\n")
		return err
	}
}
