package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shadowai/shadowdetect/internal/config"
	"github.com/shadowai/shadowdetect/internal/engine"
	"github.com/shadowai/shadowdetect/internal/history"
	"github.com/shadowai/shadowdetect/internal/quiz"
)

func testServer(t *testing.T) (*Server, *history.Store) {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default() returned error: %v", err)
	}
	eng, err := engine.New(cfg)
	if err != nil {
		t.Fatalf("engine.New() returned error: %v", err)
	}
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"), nil)
	if err != nil {
		t.Fatalf("history.Open() returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	bank, err := quiz.Load()
	if err != nil {
		t.Fatalf("quiz.Load() returned error: %v", err)
	}

	return New(eng, store, bank, nil), store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/health = %d, want 200", rec.Code)
	}
}

func TestCheck(t *testing.T) {
	s, store := testServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/check", map[string]string{
		"code":     "def greet(name):\n    return name\n",
		"language": "python",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/check = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Source     string   `json:"source"`
		Language   string   `json:"language"`
		Result     string   `json:"result"`
		Confidence int      `json:"confidence"`
		Patterns   []string `json:"patterns"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Source != "snippet" || resp.Language != "python" {
		t.Errorf("response = %+v, want snippet/python", resp)
	}
	if resp.Confidence < 0 || resp.Confidence > 100 {
		t.Errorf("Confidence = %d, want [0,100]", resp.Confidence)
	}
	if resp.Patterns == nil {
		t.Error("patterns missing from response, want at least an empty list")
	}

	// The check lands in history.
	entries, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].Filename != "snippet" {
		t.Errorf("history = %+v, want the recorded snippet check", entries)
	}
}

func TestCheckValidation(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/api/check", map[string]string{"code": ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty code = %d, want 400", rec.Code)
	}

	rec = doJSON(t, s.Handler(), http.MethodPost, "/api/check", map[string]string{
		"code":     "hello",
		"language": "klingon",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unsupported language = %d, want 422", rec.Code)
	}
}

func TestAnalyzeUpload(t *testing.T) {
	s, _ := testServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "script.py")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write([]byte("data = 1\nresult = 2\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/analyze = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Source   string `json:"source"`
		Language string `json:"language"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Source != "script.py" || resp.Language != "python" {
		t.Errorf("response = %+v, want script.py/python", resp)
	}
}

func TestAnalyzeUploadMissingFile(t *testing.T) {
	s, _ := testServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("language", "python")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing file = %d, want 400", rec.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	s, _ := testServer(t)

	doJSON(t, s.Handler(), http.MethodPost, "/api/check", map[string]string{
		"code": "x = 1\n",
	})

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/history?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/history = %d", rec.Code)
	}
	var resp struct {
		Entries []history.Entry `json:"entries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Entries) != 1 {
		t.Errorf("entries = %+v, want one", resp.Entries)
	}

	rec = doJSON(t, s.Handler(), http.MethodGet, "/api/history?limit=0", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("limit=0 = %d, want 400", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/stats = %d", rec.Code)
	}
	var stats history.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.Total != 0 {
		t.Errorf("Total = %d, want 0 on a fresh store", stats.Total)
	}
}

func TestQuizEndpoints(t *testing.T) {
	s, _ := testServer(t)

	rec := doJSON(t, s.Handler(), http.MethodGet, "/api/quiz?count=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/quiz = %d", rec.Code)
	}
	var resp struct {
		Questions []quiz.Question `json:"questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(resp.Questions))
	}
	if strings.Contains(rec.Body.String(), "\"ai\"") {
		t.Error("quiz response leaks the answer field")
	}

	rec = doJSON(t, s.Handler(), http.MethodPost, "/api/quiz/answer", map[string]any{
		"questionId": resp.Questions[0].ID,
		"ai":         true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/quiz/answer = %d, body %s", rec.Code, rec.Body.String())
	}
	var answer quiz.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &answer); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if answer.Explanation == "" {
		t.Error("graded answer missing explanation")
	}

	rec = doJSON(t, s.Handler(), http.MethodPost, "/api/quiz/answer", map[string]any{
		"questionId": 9999,
		"ai":         false,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown question = %d, want 404", rec.Code)
	}
}
