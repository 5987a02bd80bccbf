package factory

import (
	"fmt"

	"github.com/anime-shed/recycling-guide-go/internal/classifier"
	"github.com/anime-shed/recycling-guide-go/internal/config"
	"github.com/anime-shed/recycling-guide-go/internal/remote"
	"github.com/anime-shed/recycling-guide-go/internal/repository"
)

// ClassifierType represents the local classification backends
type ClassifierType string

const (
	// SimulatedClassifier picks a random catalog record
	SimulatedClassifier ClassifierType = config.BackendSimulated
	// ONNXClassifier runs a real model
	ONNXClassifier ClassifierType = config.BackendONNX
)

// ClassifierFactory creates local classifiers
type ClassifierFactory interface {
	CreateClassifier(classifierType ClassifierType) (classifier.Classifier, error)
}

// RemoteFactory creates the optional remote classifier
type RemoteFactory interface {
	// CreateRemote returns nil when no remote endpoint is configured
	CreateRemote() classifier.Classifier
}

// classifierFactory implements ClassifierFactory
type classifierFactory struct {
	cfg  *config.Config
	repo repository.CatalogRepository
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, repo repository.CatalogRepository) ClassifierFactory {
	return &classifierFactory{cfg: cfg, repo: repo}
}

// CreateClassifier creates a classifier based on the specified type
func (f *classifierFactory) CreateClassifier(classifierType ClassifierType) (classifier.Classifier, error) {
	switch classifierType {
	case SimulatedClassifier:
		opts := classifier.DefaultOptions().
			WithLatency(f.cfg.SimulatedLatency).
			WithRecords(f.repo.All)
		return classifier.NewSimulatedClassifier(opts), nil
	case ONNXClassifier:
		c, err := classifier.NewONNXClassifier(f.cfg.ONNXModelPath, f.cfg.ONNXMetadataPath, f.cfg.ONNXLibraryPath, f.repo.All)
		if err != nil {
			return nil, fmt.Errorf("failed to load onnx classifier: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported classifier type: %s", classifierType)
	}
}

// remoteFactory implements RemoteFactory
type remoteFactory struct {
	cfg  *config.Config
	repo repository.CatalogRepository
}

// NewRemoteFactory creates a new remote factory
func NewRemoteFactory(cfg *config.Config, repo repository.CatalogRepository) RemoteFactory {
	return &remoteFactory{cfg: cfg, repo: repo}
}

// CreateRemote creates the remote classifier if one is configured
func (f *remoteFactory) CreateRemote() classifier.Classifier {
	if !f.cfg.RemoteEnabled() {
		return nil
	}
	return remote.NewClient(f.cfg.RemoteURL, f.cfg.RemoteTimeout, remote.DefaultBreakerSettings()).
		WithCatalog(f.repo.All())
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	ClassifierFactory ClassifierFactory
	RemoteFactory     RemoteFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config, repo repository.CatalogRepository) *ComponentFactory {
	return &ComponentFactory{
		ClassifierFactory: NewClassifierFactory(cfg, repo),
		RemoteFactory:     NewRemoteFactory(cfg, repo),
	}
}
