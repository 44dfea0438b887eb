// -----------------------------------------------------------------------
// Highlight Sampler - random chunked selection toward a target word count
// -----------------------------------------------------------------------

package sampler

import (
	"math"

	"github.com/ternarybob/docmark/internal/interfaces"
	"github.com/ternarybob/docmark/internal/models"
)

const (
	minChunkSize = 3
	maxChunkSize = 10
)

// Service implements interfaces.HighlightSampler
type Service struct{}

// Compile-time assertion
var _ interfaces.HighlightSampler = (*Service)(nil)

// NewService creates a new sampler
func NewService() *Service {
	return &Service{}
}

// Select groups fragments into runs of 3 to 10, shuffles the runs and takes
// them in shuffled order until the selected word count reaches
// floor(total*percentage/100). The estimate ceil(target/avgWordsPerChunk) is
// taken first, then topped up or trimmed so that
// target <= selected < target + words(last chunk taken).
// Fragments are returned by value in their original order within each chunk.
func (s *Service) Select(fragments []models.Fragment, percentage int, rng models.IntN) models.Selection {
	if percentage <= 0 || len(fragments) == 0 {
		return models.Selection{Stats: models.SelectionStats{Percentage: max(percentage, 0)}}
	}
	percentage = min(percentage, 100)

	totalWords := models.CountWords(models.JoinText(fragments))
	target := totalWords * percentage / 100
	stats := models.SelectionStats{
		Percentage:  percentage,
		TotalWords:  totalWords,
		TargetWords: target,
	}

	chunks := partition(fragments, rng)
	stats.Chunks = len(chunks)
	if target == 0 {
		return models.Selection{Stats: stats}
	}

	avgWordsPerChunk := float64(totalWords) / float64(len(chunks))
	estimate := int(math.Ceil(float64(target) / avgWordsPerChunk))
	estimate = min(max(estimate, 0), len(chunks))
	stats.EstimatedChunks = estimate

	order := shuffledIndices(len(chunks), rng)

	taken := estimate
	covered := 0
	for _, idx := range order[:taken] {
		covered += chunks[idx].words
	}
	for taken < len(order) && covered < target {
		covered += chunks[order[taken]].words
		taken++
	}
	for taken > 0 && covered-chunks[order[taken-1]].words >= target {
		covered -= chunks[order[taken-1]].words
		taken--
	}

	var selected []models.Fragment
	for _, idx := range order[:taken] {
		selected = append(selected, chunks[idx].fragments...)
	}

	stats.SelectedChunks = taken
	stats.SelectedWords = covered
	return models.Selection{Fragments: selected, Stats: stats}
}

type chunk struct {
	fragments []models.Fragment
	words     int
}

// partition splits fragments into contiguous chunks whose sizes are drawn
// uniformly from [minChunkSize, maxChunkSize], the last chunk taking the rest.
func partition(fragments []models.Fragment, rng models.IntN) []chunk {
	var chunks []chunk
	for start := 0; start < len(fragments); {
		size := minChunkSize + rng.IntN(maxChunkSize-minChunkSize+1)
		end := min(start+size, len(fragments))
		c := chunk{fragments: make([]models.Fragment, end-start)}
		copy(c.fragments, fragments[start:end])
		c.words = models.CountWords(models.JoinText(c.fragments))
		chunks = append(chunks, c)
		start = end
	}
	return chunks
}

// shuffledIndices returns a Fisher–Yates permutation of [0, n)
func shuffledIndices(n int, rng models.IntN) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}
