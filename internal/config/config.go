package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anime-shed/recycling-guide-go/pkg/validation"
)

// Classifier backends selectable through CLASSIFIER_BACKEND
const (
	BackendSimulated = "simulated"
	BackendONNX      = "onnx"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	LogLevel           string

	ClassifierBackend string
	SimulatedLatency  time.Duration
	RemoteURL         string
	RemoteTimeout     time.Duration

	ONNXModelPath    string
	ONNXMetadataPath string
	ONNXLibraryPath  string

	RateLimitRPS       float64
	RateLimitBurst     int
	CORSAllowedOrigins []string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// RemoteEnabled reports whether a remote classification endpoint is configured
func (c *Config) RemoteEnabled() bool {
	return c.RemoteURL != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),

		ClassifierBackend: strings.ToLower(strings.TrimSpace(getEnvOrDefault("CLASSIFIER_BACKEND", BackendSimulated))),
		SimulatedLatency:  parseNonNegativeDurationOrDefault("SIMULATED_LATENCY", 2*time.Second),
		RemoteURL:         strings.TrimSpace(os.Getenv("CLASSIFIER_REMOTE_URL")),
		RemoteTimeout:     parseDurationOrDefault("CLASSIFIER_REMOTE_TIMEOUT", 10*time.Second),

		ONNXModelPath:    os.Getenv("ONNX_MODEL_PATH"),
		ONNXMetadataPath: os.Getenv("ONNX_METADATA_PATH"),
		ONNXLibraryPath:  os.Getenv("ONNX_LIBRARY_PATH"),

		RateLimitRPS:       parseFloatOrDefault("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     int(parseIntOrDefault("RATE_LIMIT_BURST", 20)),
		CORSAllowedOrigins: parseListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.RequestTimeout <= 0 || c.RemoteTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, remote=%s)",
			c.RequestTimeout, c.RemoteTimeout)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be > 0 (got rps=%g, burst=%d)", c.RateLimitRPS, c.RateLimitBurst)
	}

	switch c.ClassifierBackend {
	case BackendSimulated:
	case BackendONNX:
		if c.ONNXModelPath == "" || c.ONNXMetadataPath == "" {
			return fmt.Errorf("CLASSIFIER_BACKEND=onnx requires ONNX_MODEL_PATH and ONNX_METADATA_PATH")
		}
	default:
		return fmt.Errorf("unsupported CLASSIFIER_BACKEND: %q", c.ClassifierBackend)
	}

	if c.RemoteEnabled() {
		if err := validation.DefaultEndpointPolicy().Validate(c.RemoteURL); err != nil {
			return fmt.Errorf("invalid CLASSIFIER_REMOTE_URL: %w", err)
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

// parseNonNegativeDurationOrDefault accepts 0, which disables simulated latency
func parseNonNegativeDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration >= 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func parseListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
