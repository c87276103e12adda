// Package presenter renders analysis results for people and programs.
package presenter

import (
	"fmt"
	"io"

	"github.com/mikey/llm-phish-analyzer/internal/core"
)

// New returns the presenter for an output format: text, html or json
func New(format string, w io.Writer, verbose bool) (core.Presenter, error) {
	switch format {
	case "", "text":
		return NewText(w, verbose), nil
	case "html":
		return NewHTML(w, nil), nil
	case "json":
		return NewJSON(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
