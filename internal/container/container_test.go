package container

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anime-shed/recycling-guide-go/internal/classifier"
	"github.com/anime-shed/recycling-guide-go/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Host:               "127.0.0.1",
		Port:               "8080",
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
		ClassifierBackend:  config.BackendSimulated,
		SimulatedLatency:   0,
		RemoteTimeout:      time.Second,
		RateLimitRPS:       100,
		RateLimitBurst:     100,
		CORSAllowedOrigins: []string{"*"},
	}
}

func TestNewContainer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, err := NewContainer(testConfig())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer c.Close()

	if c.Classifier().Name() != classifier.NameFallback {
		t.Errorf("Expected the fallback classifier, got %s", c.Classifier().Name())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"image":"data:image/png;base64,AAAA"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Observers run asynchronously
	deadline := time.Now().Add(2 * time.Second)
	for c.Stats().Successful == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expected the classification to be counted")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNewContainer_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.ClassifierBackend = "quantum"

	if _, err := NewContainer(cfg); err == nil {
		t.Error("Expected an error for an unknown backend")
	}
}
