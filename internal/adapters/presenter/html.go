package presenter

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/mikey/llm-phish-analyzer/internal/core"
)

//go:embed templates/*.html
var templateFS embed.FS

var panelTemplate = template.Must(
	template.New("panel.html").
		Funcs(template.FuncMap{"barWidth": barWidth}).
		ParseFS(templateFS, "templates/*.html"),
)

// FormValues prefill the analysis form of the panel page
type FormValues struct {
	Sender  string
	Subject string
	Body    string
}

// PanelData is the data rendered by the panel template
type PanelData struct {
	Form   *FormValues
	Result *core.AnalysisResult
	Error  string
}

// HTML renders analysis outcomes as the add-in panel markup
type HTML struct {
	w    io.Writer
	form *FormValues
}

// NewHTML creates an HTML presenter. When form is not nil the analysis form
// is rendered above the result.
func NewHTML(w io.Writer, form *FormValues) *HTML {
	return &HTML{w: w, form: form}
}

// Show renders the verdict panel
func (p *HTML) Show(result *core.AnalysisResult) error {
	return RenderPanel(p.w, PanelData{Form: p.form, Result: result})
}

// ShowError renders the failure panel
func (p *HTML) ShowError(err error) error {
	return RenderPanel(p.w, PanelData{Form: p.form, Error: err.Error()})
}

// RenderPanel writes the full panel page
func RenderPanel(w io.Writer, data PanelData) error {
	if err := panelTemplate.ExecuteTemplate(w, "panel", data); err != nil {
		return fmt.Errorf("failed to render panel: %w", err)
	}
	return nil
}

// barWidth clamps a confidence score to a valid percentage for display
func barWidth(confidence int) int {
	switch {
	case confidence < 0:
		return 0
	case confidence > 100:
		return 100
	default:
		return confidence
	}
}
