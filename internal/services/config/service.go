package config

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/interfaces"
)

// Service hands out copies of the running configuration
type Service struct {
	config      *common.Config
	logger      arbor.ILogger
	configPaths []string // Files the config was loaded from
}

// Compile-time assertion
var _ interfaces.ConfigService = (*Service)(nil)

// NewService creates a new config service.
// configPaths are the files the config was loaded from (optional).
func NewService(config *common.Config, logger arbor.ILogger, configPaths ...string) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &Service{
		config:      config,
		logger:      logger,
		configPaths: configPaths,
	}, nil
}

// GetConfig returns a deep clone so callers cannot mutate the live config.
// Returns interface{} to satisfy the ConfigService interface (actual type is *common.Config)
func (s *Service) GetConfig(ctx context.Context) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return common.DeepCloneConfig(s.config), nil
}

// Current returns a typed clone of the running configuration
func (s *Service) Current() *common.Config {
	return common.DeepCloneConfig(s.config)
}

// ServerURL returns the address the server listens on
func (s *Service) ServerURL() string {
	return fmt.Sprintf("http://%s:%d", s.config.Server.Host, s.config.Server.Port)
}

// Sources returns the config files the running configuration was loaded from
func (s *Service) Sources() []string {
	out := make([]string, len(s.configPaths))
	copy(out, s.configPaths)
	return out
}
