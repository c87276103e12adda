package core

import (
	"encoding/json"
	"time"
)

// Classification is the verdict extracted from a classification report
type Classification string

const (
	ClassificationPhishing   Classification = "Phishing"
	ClassificationLegitimate Classification = "Legitimate"
	ClassificationUnknown    Classification = "Unknown"
)

// Risk is the risk level shown alongside a verdict
type Risk string

const (
	RiskHigh Risk = "HIGH"
	RiskLow  Risk = "LOW"
)

// Email represents the message being analyzed
type Email struct {
	Subject        string
	Body           string
	Sender         string
	Timestamp      time.Time
	// EnvelopeSender is the SMTP MAIL FROM address, empty outside the filter
	EnvelopeSender string
}

// AnalysisResult represents the parsed verdict for a single report.
// Risk is derived from Classification and is never stored.
type AnalysisResult struct {
	Classification Classification
	Explanation    string
	Confidence     int
	FullResponse   string
}

// Risk returns HIGH for phishing verdicts and LOW otherwise
func (r AnalysisResult) Risk() Risk {
	if r.Classification == ClassificationPhishing {
		return RiskHigh
	}
	return RiskLow
}

// IsPhishing reports whether the verdict is phishing
func (r AnalysisResult) IsPhishing() bool {
	return r.Classification == ClassificationPhishing
}

type analysisResultJSON struct {
	Classification Classification `json:"classification"`
	Explanation    string         `json:"explanation"`
	Confidence     int            `json:"confidence"`
	Risk           Risk           `json:"risk"`
	FullResponse   string         `json:"fullResponse"`
}

// MarshalJSON includes the derived risk level
func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(analysisResultJSON{
		Classification: r.Classification,
		Explanation:    r.Explanation,
		Confidence:     r.Confidence,
		Risk:           r.Risk(),
		FullResponse:   r.FullResponse,
	})
}

// CacheEntry holds a raw classification report for a previously analyzed email
type CacheEntry struct {
	Key       string
	Report    string
	CreatedAt time.Time
	ExpiresAt time.Time
}
