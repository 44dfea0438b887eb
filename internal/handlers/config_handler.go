package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/interfaces"
)

type ConfigHandler struct {
	logger    arbor.ILogger
	config    *common.Config // Original config (fallback)
	configSvc interfaces.ConfigService
}

func NewConfigHandler(logger arbor.ILogger, config *common.Config, configSvc interfaces.ConfigService) *ConfigHandler {
	return &ConfigHandler{
		logger:    logger,
		config:    config,
		configSvc: configSvc,
	}
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	Version string         `json:"version"`
	Build   string         `json:"build"`
	Port    int            `json:"port"`
	Host    string         `json:"host"`
	Config  *common.Config `json:"config"`
}

// GetConfig returns a copy of the running configuration
func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	config := common.DeepCloneConfig(h.config)
	if h.configSvc != nil {
		raw, err := h.configSvc.GetConfig(r.Context())
		if err != nil {
			h.logger.Warn().Err(err).Msg("Failed to get config from service, using fallback")
		} else if cfg, ok := raw.(*common.Config); ok {
			config = cfg
		} else {
			h.logger.Warn().Msg("ConfigService returned unexpected type, using fallback")
		}
	}

	response := ConfigResponse{
		Version: common.Version,
		Build:   common.Build,
		Port:    config.Server.Port,
		Host:    config.Server.Host,
		Config:  config,
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode config response")
	}
}

