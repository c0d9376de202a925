package vision

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/bryanwahyu/resale-intel/internal/domain/ai"
	domain "github.com/bryanwahyu/resale-intel/internal/domain/vision"
)

// Service implements the OCR helper use-cases: text extraction, brand
// detection, and color detection. Text extraction fans out one request per
// image and waits for all of them; a failed image keeps its slot with empty
// lines so callers never lose ordering.
type Service struct {
	Text   domain.TextReader
	Colors domain.ColorSampler
	Brands domain.BrandMatcher
}

// ExtractText runs OCR on each image concurrently and returns the results
// in input order.
func (s *Service) ExtractText(ctx context.Context, imageURLs []string) ([]domain.TextExtraction, error) {
	if len(imageURLs) == 0 {
		return nil, ai.ErrNoImages
	}

	out := make([]domain.TextExtraction, len(imageURLs))
	var wg sync.WaitGroup
	for i, u := range imageURLs {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			lines, err := s.Text.ExtractText(ctx, u)
			if err != nil {
				// fail and report nothing for this image
				lines = nil
			}
			out[i] = domain.TextExtraction{ImageURL: u, Lines: lines}
		}(i, u)
	}
	wg.Wait()
	return out, nil
}

// DetectBrands extracts text from every image and matches the lines against
// the brand lexicon. Duplicate brands are merged keeping the best confidence.
func (s *Service) DetectBrands(ctx context.Context, imageURLs []string) ([]domain.BrandDetection, error) {
	extractions, err := s.ExtractText(ctx, imageURLs)
	if err != nil {
		return nil, err
	}

	best := map[string]domain.BrandDetection{}
	for _, ex := range extractions {
		for _, d := range s.Brands.Match(ex.Lines) {
			key := strings.ToLower(d.Brand)
			if prev, ok := best[key]; ok {
				if d.Confidence > prev.Confidence {
					d.Matches = append(prev.Matches, d.Matches...)
					best[key] = d
				} else {
					prev.Matches = append(prev.Matches, d.Matches...)
					best[key] = prev
				}
				continue
			}
			best[key] = d
		}
	}

	out := make([]domain.BrandDetection, 0, len(best))
	for _, d := range best {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Brand < out[j].Brand
	})
	return out, nil
}

// DetectColors samples pixels on one image and classifies them into named
// colors. Pure local computation, no AI call.
func (s *Service) DetectColors(ctx context.Context, imageURL string) (domain.ColorDetection, error) {
	if imageURL == "" {
		return domain.ColorDetection{}, ai.ErrNoImages
	}
	return s.Colors.Sample(ctx, imageURL)
}
