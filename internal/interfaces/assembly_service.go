package interfaces

import (
	"context"

	"github.com/ternarybob/docmark/internal/models"
)

// AssemblyService runs the full pipeline for one submission
type AssemblyService interface {
	Assemble(ctx context.Context, req models.AssembleRequest) (*models.Artifact, error)
}
