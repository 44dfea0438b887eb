// -----------------------------------------------------------------------
// Package validation checks docmark.toml files before they are deployed
// -----------------------------------------------------------------------

package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/common"
)

// TOMLValidationService provides TOML validation functionality
type TOMLValidationService struct {
	logger arbor.ILogger
}

// ValidationResult contains the result of TOML validation
type ValidationResult struct {
	Valid   bool           `json:"valid"`
	Error   string         `json:"error,omitempty"`
	Message string         `json:"message"`
	Config  *common.Config `json:"config,omitempty"`
}

// NewTOMLValidationService creates a new TOML validation service
func NewTOMLValidationService(logger arbor.ILogger) *TOMLValidationService {
	return &TOMLValidationService{
		logger: logger,
	}
}

// ValidateTOML parses content over the defaults, rejecting unknown keys, and
// runs the same struct validation the server applies at startup. Environment
// overrides are not applied, so the result describes the file alone.
func (s *TOMLValidationService) ValidateTOML(ctx context.Context, tomlContent string) ValidationResult {
	if err := ctx.Err(); err != nil {
		return ValidationResult{Valid: false, Error: err.Error(), Message: "Validation cancelled"}
	}

	// Step 1: Parse TOML syntax
	var raw map[string]interface{}
	if err := toml.Unmarshal([]byte(tomlContent), &raw); err != nil {
		return ValidationResult{
			Valid:   false,
			Error:   err.Error(),
			Message: fmt.Sprintf("TOML syntax error: %s", describeDecodeError(err)),
		}
	}

	// Step 2: Decode strictly onto the defaults
	config := common.NewDefaultConfig()
	decoder := toml.NewDecoder(strings.NewReader(tomlContent)).DisallowUnknownFields()
	if err := decoder.Decode(config); err != nil {
		return ValidationResult{
			Valid:   false,
			Error:   err.Error(),
			Message: fmt.Sprintf("Configuration does not match the schema: %s", describeDecodeError(err)),
		}
	}

	// Step 3: Field constraints
	if err := common.ValidateConfig(config); err != nil {
		return ValidationResult{
			Valid:   false,
			Error:   err.Error(),
			Message: fmt.Sprintf("Configuration validation failed: %v", err),
			Config:  config,
		}
	}

	s.logger.Debug().Int("sections", len(raw)).Msg("Configuration file validated")

	return ValidationResult{
		Valid:   true,
		Message: "TOML is valid",
		Config:  config,
	}
}

func describeDecodeError(err error) string {
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		return strings.TrimSpace(strict.String())
	}
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("line %d, column %d: %v", row, col, decodeErr)
	}
	return err.Error()
}
