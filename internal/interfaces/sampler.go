package interfaces

import "github.com/ternarybob/docmark/internal/models"

// HighlightSampler picks fragments whose word count approximates percentage of the total.
// The result depends only on its inputs and the values drawn from rng.
type HighlightSampler interface {
	Select(fragments []models.Fragment, percentage int, rng models.IntN) models.Selection
}
