// Package display renders activation results for the command line.
//
// Text output is produced from an embedded template and styled with
// lipgloss. Styling is dropped when color is disabled, so the same
// template serves terminals and pipes. JSON and YAML output serialize a
// ResultView and are never styled.
package display
