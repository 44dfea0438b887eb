package interfaces

import (
	"context"

	"github.com/ternarybob/docmark/internal/models"
)

// DeliverySink hands a finished artifact to its destination
type DeliverySink interface {
	Deliver(ctx context.Context, artifact *models.Artifact) error
}
