package interfaces

import (
	"context"

	"github.com/ternarybob/docmark/internal/models"
)

// CoverService renders the cover pages placed in front of the body document.
// Failures are reported as models.ErrDependencyFailure.
type CoverService interface {
	RenderCover(ctx context.Context, req models.CoverRequest) ([]byte, error)
}
