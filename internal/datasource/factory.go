package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dencchi/f1-knowledge-base/internal/config"
)

// SourceType represents the type of data source
type SourceType string

// JolpicaSourceType is the only provider currently wired
const JolpicaSourceType SourceType = JolpicaSourceName

// Factory creates Source implementations based on configuration
type Factory struct {
	logger *logrus.Logger
	config config.ImportConfig
}

// NewFactory creates a new data source factory
func NewFactory(cfg config.ImportConfig, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// Create builds the source of the given type with its own rate limited client
func (f *Factory) Create(sourceType SourceType) (Source, error) {
	switch sourceType {
	case JolpicaSourceType:
		httpClient := NewRateLimitedHTTPClient(HTTPClientConfigFrom(f.config), f.logger)
		ttl := time.Duration(f.config.CacheTTLSeconds) * time.Second
		return NewJolpicaClient(httpClient, f.config.BaseURL, ttl, f.logger), nil
	default:
		return nil, fmt.Errorf("unknown data source type: %s", sourceType)
	}
}

// ListAvailableSources returns the source types the factory can build
func (f *Factory) ListAvailableSources() []SourceType {
	return []SourceType{JolpicaSourceType}
}
