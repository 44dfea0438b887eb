package interfaces

import "context"

// ConfigService exposes the running configuration
// Note: GetConfig returns interface{} to avoid import cycle with common.Config
// Implementations return *common.Config, callers must type assert
type ConfigService interface {
	// GetConfig returns a deep clone so callers cannot mutate the live config
	GetConfig(ctx context.Context) (interface{}, error)
}
