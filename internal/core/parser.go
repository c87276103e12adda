package core

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

var (
	classificationMarkers = []string{"classification:", "result:"}
	phishingWords         = []string{"phishing", "suspicious"}
	legitimateWords       = []string{"legitimate", "safe"}
	confidenceMarkers     = []string{"confidence:", "score:"}
	explanationMarkers    = []string{"explanation:", "reason:"}
)

// ParseResponse extracts a verdict from a free-text classification report.
//
// Lines are scanned in order and markers are matched case-insensitively; a
// later line for the same field overrides an earlier one. Fields without a
// marker keep their defaults: Unknown, confidence 0, and the whole report as
// the explanation. ParseResponse never fails.
func ParseResponse(text string) AnalysisResult {
	classification := ClassificationUnknown
	explanation := ""
	confidence := 0

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)

		if containsAny(lower, classificationMarkers) {
			if containsAny(lower, phishingWords) {
				classification = ClassificationPhishing
			} else if containsAny(lower, legitimateWords) {
				classification = ClassificationLegitimate
			}
		}

		if containsAny(lower, confidenceMarkers) {
			if digits := digitRun.FindString(line); digits != "" {
				confidence = parseDigits(digits)
			}
		}

		if containsAny(lower, explanationMarkers) {
			if _, rest, ok := strings.Cut(line, ":"); ok {
				if rest = strings.TrimSpace(rest); rest != "" {
					explanation = rest
				}
			}
		}
	}

	if explanation == "" {
		explanation = text
	}

	return AnalysisResult{
		Classification: classification,
		Explanation:    explanation,
		Confidence:     confidence,
		FullResponse:   text,
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// parseDigits converts a run of ASCII digits, saturating on overflow
func parseDigits(digits string) int {
	n, err := strconv.ParseInt(digits, 10, 0)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return math.MaxInt
		}
		return 0
	}
	return int(n)
}
