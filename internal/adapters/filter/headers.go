package filter

import (
	"mime"
	"strconv"
	"strings"

	"github.com/emersion/go-message/mail"
	"github.com/mikey/llm-phish-analyzer/internal/core"
)

// Verdict header names
const (
	HeaderStatus        = "X-Phishing-Status"
	HeaderRisk          = "X-Phishing-Risk"
	HeaderConfidence    = "X-Phishing-Confidence"
	HeaderReason        = "X-Phishing-Reason"
	HeaderAnalysisError = "X-Phishing-Analysis-Error"
)

// maxHeaderText bounds free text copied into a header
const maxHeaderText = 500

// headerPresenter stamps analysis outcomes onto a message header
type headerPresenter struct {
	header        *mail.Header
	modifySubject bool
	subjectPrefix string
}

func newHeaderPresenter(h *mail.Header, modifySubject bool, subjectPrefix string) *headerPresenter {
	return &headerPresenter{
		header:        h,
		modifySubject: modifySubject,
		subjectPrefix: subjectPrefix,
	}
}

// Show writes the verdict headers and tags the subject of phishing messages
func (p *headerPresenter) Show(result *core.AnalysisResult) error {
	p.header.Set(HeaderStatus, string(result.Classification))
	p.header.Set(HeaderRisk, string(result.Risk()))
	p.header.Set(HeaderConfidence, strconv.Itoa(result.Confidence))
	p.header.Set(HeaderReason, headerText(result.Explanation))

	if result.IsPhishing() && p.modifySubject && p.subjectPrefix != "" {
		subject, err := p.header.Subject()
		if err != nil {
			subject = p.header.Get("Subject")
		}
		if !strings.HasPrefix(subject, p.subjectPrefix) {
			p.header.SetSubject(p.subjectPrefix + subject)
		}
	}
	return nil
}

// ShowError records the failure and leaves the message otherwise untouched
func (p *headerPresenter) ShowError(err error) error {
	p.header.Set(HeaderAnalysisError, headerText(err.Error()))
	return nil
}

// headerText folds text onto one line and MIME-encodes non-ASCII content
func headerText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxHeaderText {
		s = strings.ToValidUTF8(s[:maxHeaderText], "")
	}
	return mime.QEncoding.Encode("utf-8", s)
}
