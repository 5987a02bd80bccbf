package transport

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/anime-shed/recycling-guide-go/internal/classifier"
	"github.com/anime-shed/recycling-guide-go/internal/config"
	apperrors "github.com/anime-shed/recycling-guide-go/internal/errors"
	"github.com/anime-shed/recycling-guide-go/internal/repository"
	"github.com/anime-shed/recycling-guide-go/internal/service"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testImage = "data:image/png;base64,iVBORw0KGgo="

type failingClassifier struct {
	err error
}

func (f failingClassifier) Name() string { return "failing" }

func (f failingClassifier) Classify(context.Context, string) (*models.ClassificationResult, error) {
	return nil, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
		RateLimitRPS:       1000,
		RateLimitBurst:     1000,
		CORSAllowedOrigins: []string{"*"},
	}
}

func newTestHandler(cfg *config.Config, c classifier.Classifier) http.Handler {
	if c == nil {
		c = classifier.NewSimulatedClassifier(classifier.DefaultOptions().WithLatency(0))
	}
	svc := service.NewRecyclingService(repository.NewStaticCatalogRepository(), c)
	return NewHandler(svc, cfg)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error body %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestAnalyze_RejectsBadRequests(t *testing.T) {
	h := newTestHandler(testConfig(), nil)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing image", `{}`, "image data is required"},
		{"empty image", `{"image":""}`, "image data is required"},
		{"not a data url", `{"image":"https://example.com/can.png"}`, "invalid image format"},
		{"wrong mime", `{"image":"data:text/plain;base64,aGVsbG8="}`, "invalid image format"},
		{"malformed json", `{"image":`, "invalid request format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(h, http.MethodPost, "/api/analyze", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if got := decodeError(t, w).Error; got != tt.message {
				t.Errorf("Expected %q, got %q", tt.message, got)
			}
		})
	}
}

func TestAnalyze_BodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxRequestBodySize = 16
	h := newTestHandler(cfg, nil)

	w := do(h, http.MethodPost, "/api/analyze", `{"image":"`+testImage+`"}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", w.Code)
	}
}

func TestAnalyze_Success(t *testing.T) {
	h := newTestHandler(testConfig(), nil)

	w := do(h, http.MethodPost, "/api/analyze", `{"image":"`+testImage+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("Expected a generated request id")
	}

	var result models.ClassificationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if _, err := repository.NewStaticCatalogRepository().FindByID(result.Item.ID); err != nil {
		t.Errorf("Expected a catalog item, got %q", result.Item.ID)
	}
	if result.Item.Confidence < 0.7 || result.Item.Confidence >= 1.0 {
		t.Errorf("Confidence %v out of range", result.Item.Confidence)
	}
	if len(result.Alternatives) > classifier.MaxAlternatives {
		t.Errorf("Too many alternatives: %d", len(result.Alternatives))
	}
}

func TestRequestID_EchoesUpstreamHeader(t *testing.T) {
	h := newTestHandler(testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get(requestIDHeader); got != "req-123" {
		t.Errorf("Expected request id to be echoed, got %q", got)
	}
}

func TestAnalyze_ClassifierFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"internal", apperrors.NewInternalAnalysisError("model crashed", nil), http.StatusInternalServerError, "failed to analyze image"},
		{"unexpected", context.Canceled, apperrors.StatusClientClosedRequest, ""},
		{"timeout", apperrors.NewTimeoutError("classification timed out", nil), http.StatusGatewayTimeout, "request timed out"},
		{"upstream", apperrors.NewUpstreamUnavailableError("breaker open", nil), http.StatusServiceUnavailable, "failed to analyze image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(testConfig(), failingClassifier{err: tt.err})
			w := do(h, http.MethodPost, "/api/analyze", `{"image":"`+testImage+`"}`)
			if w.Code != tt.code {
				t.Fatalf("Expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
			if tt.message == "" {
				return
			}
			if got := decodeError(t, w).Error; got != tt.message {
				t.Errorf("Expected %q, got %q", tt.message, got)
			}
		})
	}
}

func TestReselect(t *testing.T) {
	h := newTestHandler(testConfig(), nil)

	prior := &models.ClassificationResult{
		Item: models.ScoredRecord{ClassificationRecord: models.ClassificationRecord{ID: "aluminum-can"}, Confidence: 0.75},
		Alternatives: []models.ScoredRecord{
			{ClassificationRecord: models.ClassificationRecord{ID: "pet-bottle"}, Confidence: 0.6},
			{ClassificationRecord: models.ClassificationRecord{ID: "glass-bottle"}, Confidence: 0.55},
		},
	}
	body, _ := json.Marshal(models.ReselectRequest{Result: prior, AlternativeID: "glass-bottle"})

	w := do(h, http.MethodPost, "/api/analyze/reselect", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result models.ClassificationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if result.Item.ID != "glass-bottle" {
		t.Errorf("Expected glass-bottle, got %s", result.Item.ID)
	}

	body, _ = json.Marshal(models.ReselectRequest{Result: prior, AlternativeID: "paper-box"})
	if w := do(h, http.MethodPost, "/api/analyze/reselect", string(body)); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an unknown alternative, got %d", w.Code)
	}
	if w := do(h, http.MethodPost, "/api/analyze/reselect", `{"alternative_id":"pet-bottle"}`); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without a result, got %d", w.Code)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	h := newTestHandler(testConfig(), nil)

	w := do(h, http.MethodGet, "/api/catalog", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var catalog models.CatalogResponse
	if err := json.Unmarshal(w.Body.Bytes(), &catalog); err != nil {
		t.Fatalf("Failed to decode catalog: %v", err)
	}
	if catalog.TotalCount != 5 || len(catalog.Items) != 5 {
		t.Errorf("Expected 5 catalog items, got %d", catalog.TotalCount)
	}

	if w := do(h, http.MethodGet, "/api/catalog/paper-box", ""); w.Code != http.StatusOK {
		t.Errorf("Expected 200 for a known item, got %d", w.Code)
	}

	w = do(h, http.MethodGet, "/api/catalog/banana-peel", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown item, got %d", w.Code)
	}
}

func TestGuideEndpoints(t *testing.T) {
	h := newTestHandler(testConfig(), nil)

	w := do(h, http.MethodGet, "/api/guide?q=glass", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var guide models.GuideResponse
	if err := json.Unmarshal(w.Body.Bytes(), &guide); err != nil {
		t.Fatalf("Failed to decode guide: %v", err)
	}
	if guide.TotalCount == 0 {
		t.Error("Expected glass to match a guide category")
	}

	if w := do(h, http.MethodGet, "/api/guide?q=glas&fuzzy=maybe", ""); w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an invalid fuzzy flag, got %d", w.Code)
	}

	w = do(h, http.MethodGet, "/api/guide/check?item=Aluminum%20can", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var check models.RecyclabilityCheck
	if err := json.Unmarshal(w.Body.Bytes(), &check); err != nil {
		t.Fatalf("Failed to decode check: %v", err)
	}
	if !check.Recyclable || check.Category != "Metal" || check.Color != "bg-gray-500" {
		t.Errorf("Expected a recyclable metal item, got %+v", check)
	}

	w = do(h, http.MethodGet, "/api/guide/check", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 without an item, got %d", w.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	h := newTestHandler(cfg, nil)

	if w := do(h, http.MethodGet, "/api/catalog", ""); w.Code != http.StatusOK {
		t.Fatalf("Expected first request to pass, got %d", w.Code)
	}
	w := do(h, http.MethodGet, "/api/catalog", "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected a Retry-After header")
	}

	// Health is outside the limited group
	if w := do(h, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("Expected health to bypass the limiter, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(testConfig(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Errorf("Expected CORS headers, got %v", w.Header())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestHandler(testConfig(), nil)

	w := do(h, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte(`"available"`)) {
		t.Errorf("Unexpected health response %d: %s", w.Code, w.Body.String())
	}

	w = do(h, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "recycling_http_requests_total") {
		t.Error("Expected HTTP request metrics to be exported")
	}
}
