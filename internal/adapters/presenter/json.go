package presenter

import (
	"encoding/json"
	"io"

	"github.com/mikey/llm-phish-analyzer/internal/core"
)

// JSON writes analysis outcomes as JSON documents
type JSON struct {
	enc *json.Encoder
}

// NewJSON creates a JSON presenter
func NewJSON(w io.Writer) *JSON {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSON{enc: enc}
}

// ErrorBody is the JSON form of a failed analysis
type ErrorBody struct {
	Error string `json:"error"`
}

// Show encodes the result
func (p *JSON) Show(result *core.AnalysisResult) error {
	return p.enc.Encode(result)
}

// ShowError encodes the failure message
func (p *JSON) ShowError(err error) error {
	return p.enc.Encode(ErrorBody{Error: err.Error()})
}
