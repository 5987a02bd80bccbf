package container

import (
	"fmt"
	"io"
	"net/http"

	"github.com/anime-shed/recycling-guide-go/internal/classifier"
	"github.com/anime-shed/recycling-guide-go/internal/config"
	"github.com/anime-shed/recycling-guide-go/internal/factory"
	"github.com/anime-shed/recycling-guide-go/internal/logger"
	"github.com/anime-shed/recycling-guide-go/internal/observer"
	"github.com/anime-shed/recycling-guide-go/internal/repository"
	"github.com/anime-shed/recycling-guide-go/internal/service"
	"github.com/anime-shed/recycling-guide-go/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	localClassifier classifier.Classifier
	classifier      *classifier.FallbackClassifier
	metrics         *observer.MetricsObserver
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	catalog := repository.NewStaticCatalogRepository()
	components := factory.NewComponentFactory(cfg, catalog)

	local, err := components.ClassifierFactory.CreateClassifier(factory.ClassifierType(cfg.ClassifierBackend))
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}
	remote := components.RemoteFactory.CreateRemote()

	events := observer.NewEventPublisher()
	metricsObserver := observer.NewMetricsObserver()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metricsObserver)

	fallback := classifier.NewFallbackClassifier(remote, local, cfg.RemoteTimeout, events)
	recyclingService := service.NewRecyclingService(catalog, fallback)
	handler := transport.NewHandler(recyclingService, cfg)

	logger.WithFields(map[string]interface{}{
		"backend": local.Name(),
		"remote":  cfg.RemoteEnabled(),
	}).Info("Classifier configured")

	return &Container{
		config:          cfg,
		localClassifier: local,
		classifier:      fallback,
		metrics:         metricsObserver,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Classifier returns the classifier used by the service
func (c *Container) Classifier() classifier.Classifier {
	return c.classifier
}

// Stats returns the in-process classification counters
func (c *Container) Stats() observer.Snapshot {
	return c.metrics.GetMetrics()
}

// Close releases resources held by the local classifier
func (c *Container) Close() error {
	if closer, ok := c.localClassifier.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
