package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/mikey/llm-phish-analyzer/internal/adapters/mailbox"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/presenter"
	"github.com/mikey/llm-phish-analyzer/internal/adapters/remote"
	"github.com/mikey/llm-phish-analyzer/internal/core"
	"go.uber.org/zap"
)

// AnalyzeRequest is the body of POST /api/analyze
type AnalyzeRequest struct {
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Sender    string    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// handleClassify serves the classification API used by the remote adapter
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With(zap.String("request_id", requestIDFrom(r.Context())))

	var req remote.ClassifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid classify request", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, presenter.ErrorBody{Error: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.EmailText) == "" {
		writeJSON(w, http.StatusBadRequest, presenter.ErrorBody{Error: "email_text is required"})
		return
	}

	report, err := s.backend.Analyze(r.Context(), req.EmailText)
	if err != nil {
		logger.Error("classification failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, presenter.ErrorBody{Error: "classification failed"})
		return
	}

	writeJSON(w, http.StatusOK, remote.ClassifyResponse{Analysis: &report})
}

// handleAnalyze runs a full analysis and returns the result as JSON
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, presenter.ErrorBody{Error: "invalid request body: " + err.Error()})
		return
	}

	provider := mailbox.NewStaticProvider(core.Email{
		Subject:   req.Subject,
		Body:      req.Body,
		Sender:    req.Sender,
		Timestamp: req.Timestamp,
	})

	var buf bytes.Buffer
	status := http.StatusOK
	if _, err := s.analyzer.AnalyzeCurrent(r.Context(), provider, presenter.NewJSON(&buf)); err != nil {
		status = http.StatusBadGateway
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// handlePanel serves the empty panel page
func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := presenter.RenderPanel(w, presenter.PanelData{Form: &presenter.FormValues{}}); err != nil {
		s.logger.Error("failed to render panel", zap.Error(err))
	}
}

// handlePanelSubmit analyzes the submitted form and renders the verdict panel
func (s *Server) handlePanelSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	form := &presenter.FormValues{
		Sender:  r.PostForm.Get("sender"),
		Subject: r.PostForm.Get("subject"),
		Body:    r.PostForm.Get("body"),
	}
	provider := mailbox.NewStaticProvider(core.Email{
		Subject: form.Subject,
		Body:    form.Body,
		Sender:  form.Sender,
	})

	var buf bytes.Buffer
	if _, err := s.analyzer.AnalyzeCurrent(r.Context(), provider, presenter.NewHTML(&buf, form)); err != nil && buf.Len() == 0 {
		http.Error(w, "failed to render result", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
