package vision

// TextExtraction is the OCR output for a single photo. A failed extraction
// keeps its slot with empty lines so results stay aligned with the input.
type TextExtraction struct {
	ImageURL string   `json:"image_url"`
	Lines    []string `json:"lines"`
}

// BrandDetection is a brand name matched against extracted text.
type BrandDetection struct {
	Brand      string   `json:"brand"`
	Matches    []string `json:"matches"`
	Confidence float64  `json:"confidence"`
}

// DetectedColor is one named color and its share of sampled pixels.
type DetectedColor struct {
	Name  string  `json:"name"`
	Share float64 `json:"share"`
}

// ColorDetection is the pixel-sampling result for a single photo.
type ColorDetection struct {
	ImageURL string          `json:"image_url"`
	Dominant string          `json:"dominant"`
	Colors   []DetectedColor `json:"colors"`
}
