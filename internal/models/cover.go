package models

// CoverRequest carries the descriptive parameters the cover generator renders
type CoverRequest struct {
	Title       string         `json:"title" validate:"required,max=200"`
	Filename    string         `json:"filename" validate:"required"`
	WordCount   int            `json:"words" validate:"gte=0"`
	CharCount   int            `json:"chars" validate:"gte=0"`
	Percentages map[string]int `json:"percentages" validate:"required,min=1,dive,keys,required,endkeys,gte=0,lte=100"`
	FileSize    int64          `json:"file_size" validate:"gt=0"`
	PageCount   int            `json:"pages" validate:"gt=0"`
}
