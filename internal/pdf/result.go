package pdf

import "github.com/docshot/docshot/internal/pipeline"

// PageResult holds the detection results for every image embedded on
// one PDF page.
type PageResult struct {
	PageNum int                     `json:"page"`
	Results []*pipeline.FrameResult `json:"results"`
}

// DocumentResult aggregates detection over a whole PDF file.
type DocumentResult struct {
	Filename  string       `json:"filename"`
	PageCount int          `json:"page_count"` // pages carrying at least one image
	Detected  int          `json:"detected"`   // frames with an accepted document
	Pages     []PageResult `json:"pages"`
	ExtractMs float64      `json:"extract_ms"`
	AnalyzeMs float64      `json:"analyze_ms"`
}

// FrameCount returns the total number of analyzed images.
func (r *DocumentResult) FrameCount() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Results)
	}
	return n
}
