package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anime-shed/blur-inspector-go/internal/config"
	apperrors "github.com/anime-shed/blur-inspector-go/internal/errors"
	"github.com/anime-shed/blur-inspector-go/internal/syncx"
	"github.com/anime-shed/blur-inspector-go/pkg/models"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeService records what the handlers pass through
type fakeService struct {
	lastRequest models.AnalysisRequest
	lastUpload  []byte
	lastParams  models.UploadParams
	lastBatch   models.BatchRequest
	err         error
}

func (f *fakeService) ScoreURL(ctx context.Context, req models.AnalysisRequest) (*models.BlurAnalysisResponse, error) {
	f.lastRequest = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BlurAnalysisResponse{
		Source:  req.URL,
		Mode:    req.Mode,
		Metrics: models.BlurMetrics{Score: 18.5, Threshold: 10},
		Verdict: models.Verdict{Message: "Good job! Photo is not blurry"},
	}, nil
}

func (f *fakeService) ScoreUpload(ctx context.Context, filename string, data []byte, params models.UploadParams) (*models.BlurAnalysisResponse, error) {
	f.lastUpload = data
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return &models.BlurAnalysisResponse{Source: "upload:" + filename}, nil
}

func (f *fakeService) ScoreBatch(ctx context.Context, req models.BatchRequest) (*models.BatchResponse, error) {
	f.lastBatch = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.BatchResponse{Total: len(req.URLs), Succeeded: len(req.URLs)}, nil
}

func (f *fakeService) ValidateImageURL(string) error { return nil }

func (f *fakeService) Modes() []string { return []string{"full_frame", "window"} }

type fakeStats struct{}

func (fakeStats) Stats() models.StatsResponse {
	return models.StatsResponse{Ready: true, Modes: []string{"window"}}
}

func newTestHandler(svc *fakeService, open bool) http.Handler {
	cfg := config.Defaults()
	cfg.MaxRequestBodySize = 1024
	gate := syncx.NewGate()
	if open {
		gate.Open()
	}
	return NewHandler(svc, gate, fakeStats{}, cfg)
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReady(t *testing.T) {
	closed := newTestHandler(&fakeService{}, false)

	if rec := doJSON(t, closed, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected /health 200, got %d", rec.Code)
	}
	if rec := doJSON(t, closed, http.MethodGet, "/ready", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected /ready 503 before warm-up, got %d", rec.Code)
	}
	if rec := doJSON(t, closed, http.MethodPost, "/analyze", `{"url":"https://example.com/a.jpg"}`); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected /analyze 503 before warm-up, got %d", rec.Code)
	}

	open := newTestHandler(&fakeService{}, true)
	if rec := doJSON(t, open, http.MethodGet, "/ready", ""); rec.Code != http.StatusOK {
		t.Errorf("Expected /ready 200 after warm-up, got %d", rec.Code)
	}
}

func TestAnalyzeImage(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		body       string
		svcErr     error
		wantStatus int
		wantMode   string
		wantType   string
	}{
		{
			name:       "Valid Request",
			path:       "/analyze",
			body:       `{"url":"https://example.com/a.jpg","patch_size":50,"mode":"window"}`,
			wantStatus: http.StatusOK,
			wantMode:   "window",
		},
		{
			name:       "Query Mode Wins",
			path:       "/analyze?mode=full_frame",
			body:       `{"url":"https://example.com/a.jpg","mode":"window"}`,
			wantStatus: http.StatusOK,
			wantMode:   "full_frame",
		},
		{
			name:       "Missing URL",
			path:       "/analyze",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Malformed JSON",
			path:       "/analyze",
			body:       `{"url":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Body Too Large",
			path:       "/analyze",
			body:       `{"url":"https://example.com/` + strings.Repeat("a", 2048) + `"}`,
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   "validation",
		},
		{
			name:       "Too Many Pixels",
			path:       "/analyze",
			body:       `{"url":"https://example.com/huge.png"}`,
			svcErr:     apperrors.NewTooLargeError("image too large", nil),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   "too_large",
		},
		{
			name:       "Not Found",
			path:       "/analyze",
			body:       `{"url":"https://example.com/missing.jpg"}`,
			svcErr:     apperrors.NewNotFoundError("image not found", nil),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "Undecodable",
			path:       "/analyze",
			body:       `{"url":"https://example.com/a.txt"}`,
			svcErr:     apperrors.NewProcessingError("image could not be decoded", nil),
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.svcErr}
			rec := doJSON(t, newTestHandler(svc, true), http.MethodPost, tt.path, tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			if tt.wantStatus != http.StatusOK {
				var errResp models.ErrorResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
					t.Fatalf("Error body is not JSON: %v", err)
				}
				if errResp.Error == "" {
					t.Error("Expected an error message")
				}
				if tt.wantType != "" && errResp.Type != tt.wantType {
					t.Errorf("Expected error type %s, got %s", tt.wantType, errResp.Type)
				}
				return
			}

			var resp models.BlurAnalysisResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Response is not JSON: %v", err)
			}
			if resp.Mode != tt.wantMode || svc.lastRequest.Mode != tt.wantMode {
				t.Errorf("Expected mode %s, got %s", tt.wantMode, resp.Mode)
			}
			if resp.Metrics.Score != 18.5 {
				t.Errorf("Unexpected score %f", resp.Metrics.Score)
			}
		})
	}
}

func TestAnalyzeImage_PassesOverrides(t *testing.T) {
	svc := &fakeService{}
	body := `{"url":"https://example.com/a.jpg","patch_size":50,"threshold":12.5,"border":"reflect101","previous_fingerprint":"p:00ff"}`
	rec := doJSON(t, newTestHandler(svc, true), http.MethodPost, "/analyze", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Unexpected status %d", rec.Code)
	}

	req := svc.lastRequest
	if req.PatchSize == nil || *req.PatchSize != 50 {
		t.Errorf("Expected patch size 50, got %v", req.PatchSize)
	}
	if req.Threshold == nil || *req.Threshold != 12.5 {
		t.Errorf("Expected threshold 12.5, got %v", req.Threshold)
	}
	if req.Border != "reflect101" || req.PreviousFingerprint != "p:00ff" {
		t.Errorf("Unexpected request %+v", req)
	}
}

func TestAnalyzeUpload(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "photo.png")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("fake image bytes"))
	writer.WriteField("mode", "full_frame")
	writer.WriteField("patch_size", "30")
	writer.Close()

	svc := &fakeService{}
	req := httptest.NewRequest(http.MethodPost, "/analyze/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	newTestHandler(svc, true).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if string(svc.lastUpload) != "fake image bytes" {
		t.Errorf("Unexpected upload bytes %q", svc.lastUpload)
	}
	if svc.lastParams.Mode != "full_frame" || svc.lastParams.PatchSize == nil || *svc.lastParams.PatchSize != 30 {
		t.Errorf("Form fields not bound: %+v", svc.lastParams)
	}
}

func TestAnalyzeUpload_MissingFile(t *testing.T) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("mode", "window")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/analyze/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	newTestHandler(&fakeService{}, true).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	svc := &fakeService{}
	h := newTestHandler(svc, true)

	rec := doJSON(t, h, http.MethodPost, "/analyze/batch", `{"urls":["https://a/1.jpg","https://a/2.jpg"],"threshold":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.BatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 2 || len(svc.lastBatch.URLs) != 2 || *svc.lastBatch.Threshold != 5 {
		t.Errorf("Unexpected batch handling: %+v", resp)
	}

	if rec := doJSON(t, h, http.MethodPost, "/analyze/batch", `{"urls":[]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty batch, got %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	rec := doJSON(t, newTestHandler(&fakeService{}, true), http.MethodGet, "/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp models.StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Ready || len(resp.Modes) != 1 {
		t.Errorf("Unexpected stats %+v", resp)
	}
}
