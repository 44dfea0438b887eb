package models

// AssembleRequest is one submission to the assembly pipeline
type AssembleRequest struct {
	RequestID  string
	Document   SourceDocument
	Title      string
	Percentage Percentage
	// Extra named percentages forwarded to the cover generator
	ExtraPercentages map[string]int
}
