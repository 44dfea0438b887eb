package models

// SelectionStats records how a selection was drawn
type SelectionStats struct {
	Percentage      int `json:"percentage"`
	TotalWords      int `json:"total_words"`
	TargetWords     int `json:"target_words"`
	SelectedWords   int `json:"selected_words"`
	Chunks          int `json:"chunks"`
	EstimatedChunks int `json:"estimated_chunks"`
	SelectedChunks  int `json:"selected_chunks"`
}

// Selection is an ordered subset of one document's fragments chosen for highlighting
type Selection struct {
	Fragments []Fragment     `json:"fragments"`
	Stats     SelectionStats `json:"stats"`
}

// Empty reports whether nothing was selected
func (s Selection) Empty() bool {
	return len(s.Fragments) == 0
}
