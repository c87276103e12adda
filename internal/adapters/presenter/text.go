package presenter

import (
	"fmt"
	"io"

	"github.com/mikey/llm-phish-analyzer/internal/core"
)

// Text prints analysis outcomes for a terminal
type Text struct {
	w       io.Writer
	verbose bool
}

// NewText creates a console presenter. Verbose output includes the full response.
func NewText(w io.Writer, verbose bool) *Text {
	return &Text{w: w, verbose: verbose}
}

// Show prints the verdict
func (p *Text) Show(result *core.AnalysisResult) error {
	marker := "OK"
	if result.IsPhishing() {
		marker = "!!"
	}

	_, err := fmt.Fprintf(p.w,
		"\n=== Results ===\n"+
			"[%s] %s\n"+
			"Risk: %s\n"+
			"Confidence: %d%%\n"+
			"Explanation: %s\n",
		marker, result.Classification, result.Risk(), result.Confidence, result.Explanation)
	if err != nil {
		return err
	}

	if p.verbose {
		_, err = fmt.Fprintf(p.w, "\n=== Full Response ===\n%s\n", result.FullResponse)
	}
	return err
}

// ShowError prints the failure
func (p *Text) ShowError(err error) error {
	_, werr := fmt.Fprintf(p.w, "\n=== Analysis Failed ===\nError: %v\n", err)
	return werr
}
