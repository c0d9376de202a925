package vision

import "context"

// TextReader port: transcribes visible text on one photo.
type TextReader interface {
	ExtractText(ctx context.Context, imageURL string) ([]string, error)
}

// ColorSampler port: samples pixels and classifies them into named colors.
type ColorSampler interface {
	Sample(ctx context.Context, imageURL string) (ColorDetection, error)
}

// BrandMatcher port: matches extracted text lines against known brands.
type BrandMatcher interface {
	Match(lines []string) []BrandDetection
}
