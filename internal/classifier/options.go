package classifier

import (
	"math/rand"
	"time"

	"github.com/anime-shed/recycling-guide-go/internal/catalog"
	"github.com/anime-shed/recycling-guide-go/pkg/models"
)

// DefaultLatency models the round trip of an external inference call
const DefaultLatency = 2 * time.Second

// RandomSource supplies the draws used by the simulated decision rule
type RandomSource interface {
	Float64() float64
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

func (globalSource) IntN(n int) int { return rand.Intn(n) }

// RecordSource returns the records to classify against, in catalog order
type RecordSource func() []models.ClassificationRecord

// Options configures the simulated classifier
type Options struct {
	// Latency is the simulated processing delay; zero disables it
	Latency time.Duration

	Source  RandomSource
	Records RecordSource
}

// DefaultOptions returns the reference configuration
func DefaultOptions() Options {
	return Options{
		Latency: DefaultLatency,
		Source:  globalSource{},
		Records: catalog.GetAll,
	}
}

// WithLatency overrides the simulated delay
func (opts Options) WithLatency(d time.Duration) Options {
	if d < 0 {
		d = 0
	}
	opts.Latency = d
	return opts
}

// WithRandomSource replaces the random source, mainly for deterministic tests
func (opts Options) WithRandomSource(src RandomSource) Options {
	if src != nil {
		opts.Source = src
	}
	return opts
}

// WithRecords replaces where catalog records come from
func (opts Options) WithRecords(records RecordSource) Options {
	if records != nil {
		opts.Records = records
	}
	return opts
}
