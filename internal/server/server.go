// Package server exposes the detector over HTTP. It is a thin shell:
// every analysis request funnels into the same engine the CLI uses.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/shadowai/shadowdetect/internal/adapter"
	"github.com/shadowai/shadowdetect/internal/engine"
	"github.com/shadowai/shadowdetect/internal/history"
	"github.com/shadowai/shadowdetect/internal/quiz"
	"github.com/shadowai/shadowdetect/internal/scanner"
)

const (
	// maxSnippetSize bounds inline code submissions.
	maxSnippetSize = 1 << 20
	// maxUploadSize bounds multipart file uploads, matching the CLI's
	// per-file limit.
	maxUploadSize = scanner.MaxFileSize
)

// Server holds the HTTP handlers and their collaborators. History and
// quiz are optional; their endpoints 404 when absent.
type Server struct {
	engine  *engine.Engine
	store   *history.Store
	bank    *quiz.Bank
	logger  hclog.Logger
	handler http.Handler
}

// New assembles the router.
func New(eng *engine.Engine, store *history.Store, bank *quiz.Bank, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	s := &Server{
		engine: eng,
		store:  store,
		bank:   bank,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/check", s.handleCheck)
		r.Post("/analyze", s.handleAnalyze)

		if s.store != nil {
			r.Get("/history", s.handleHistory)
			r.Get("/stats", s.handleStats)
		}
		if s.bank != nil {
			r.Get("/quiz", s.handleQuiz)
			r.Post("/quiz/answer", s.handleQuizAnswer)
		}
	})

	s.handler = r
	return s
}

// Handler returns the assembled router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type checkRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type analysisResponse struct {
	Source     string   `json:"source"`
	Language   string   `json:"language"`
	Fidelity   string   `json:"fidelity"`
	Result     string   `json:"result"`
	Verdict    string   `json:"verdict"`
	Confidence int      `json:"confidence"`
	Reasons    []string `json:"reasons"`
	Patterns   []string `json:"patterns"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	body := http.MaxBytesReader(w, r.Body, maxSnippetSize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, errors.New("code must not be empty"))
		return
	}

	s.analyze(w, r, "snippet", req.Code, req.Language)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+4096)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse upload: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("missing file field"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
		return
	}
	if len(data) > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Errorf("file exceeds %d bytes", maxUploadSize))
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("uploaded file is empty"))
		return
	}

	lang := r.FormValue("language")
	if lang == "" {
		lang = scanner.LanguageForPath(header.Filename)
	}

	s.analyze(w, r, header.Filename, string(data), lang)
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, source, code, lang string) {
	res, err := s.engine.Analyze(r.Context(), code, lang)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, adapter.ErrUnsupported) || errors.Is(err, adapter.ErrMalformed) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}

	resp := analysisResponse{
		Source:     source,
		Language:   res.Language,
		Fidelity:   res.Fidelity.String(),
		Result:     res.Report.Verdict.Text(),
		Verdict:    res.Report.Verdict.String(),
		Confidence: res.Report.Confidence,
		Reasons:    []string{},
		Patterns:   []string{},
	}
	for _, label := range res.Report.Reasons {
		resp.Reasons = append(resp.Reasons, label.Describe())
		resp.Patterns = append(resp.Patterns, string(label))
	}

	s.record(r, source, res)
	writeJSON(w, http.StatusOK, resp)
}

// record appends to history best-effort; a storage failure never
// fails the analysis response.
func (s *Server) record(r *http.Request, source string, res *engine.Result) {
	if s.store == nil {
		return
	}

	patterns := make([]string, 0, len(res.Report.Reasons))
	for _, label := range res.Report.Reasons {
		patterns = append(patterns, string(label))
	}

	err := s.store.Append(r.Context(), history.Entry{
		Filename:   source,
		Result:     res.Report.Verdict.String(),
		Confidence: res.Report.Confidence,
		Language:   res.Language,
		Patterns:   patterns,
	})
	if err != nil {
		s.logger.Warn("history append failed", "source", source, "error", err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be between 1 and 500"))
			return
		}
		limit = n
	}

	entries, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	count := 5
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, errors.New("count must be a positive integer"))
			return
		}
		count = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": s.bank.Pick(count)})
}

func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID int  `json:"questionId"`
		AI         bool `json:"ai"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	answer, err := s.bank.Grade(req.QuestionID, req.AI)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
