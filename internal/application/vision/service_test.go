package vision

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/resale-intel/internal/domain/ai"
	domain "github.com/bryanwahyu/resale-intel/internal/domain/vision"
)

type fakeTextReader struct {
	mu    sync.Mutex
	calls int
	// per-URL lines; URL missing from the map fails
	lines map[string][]string
}

func (f *fakeTextReader) ExtractText(ctx context.Context, imageURL string) ([]string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	lines, ok := f.lines[imageURL]
	if !ok {
		return nil, errors.New("ocr failed")
	}
	return lines, nil
}

type fakeSampler struct {
	det domain.ColorDetection
	err error
}

func (f *fakeSampler) Sample(ctx context.Context, imageURL string) (domain.ColorDetection, error) {
	if f.err != nil {
		return domain.ColorDetection{}, f.err
	}
	det := f.det
	det.ImageURL = imageURL
	return det, nil
}

type fakeMatcher struct{}

func (fakeMatcher) Match(lines []string) []domain.BrandDetection {
	var out []domain.BrandDetection
	for _, l := range lines {
		if l == "nike" {
			out = append(out, domain.BrandDetection{Brand: "Nike", Matches: []string{l}, Confidence: 0.95})
		}
		if l == "swoosh nike tag" {
			out = append(out, domain.BrandDetection{Brand: "Nike", Matches: []string{l}, Confidence: 0.7})
		}
	}
	return out
}

func TestExtractTextKeepsInputOrder(t *testing.T) {
	urls := make([]string, 8)
	lines := map[string][]string{}
	for i := range urls {
		urls[i] = fmt.Sprintf("https://img.example.com/%d.jpg", i)
		lines[urls[i]] = []string{fmt.Sprintf("line-%d", i)}
	}
	svc := &Service{Text: &fakeTextReader{lines: lines}}

	out, err := svc.ExtractText(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, out, len(urls))
	for i, ex := range out {
		assert.Equal(t, urls[i], ex.ImageURL)
		assert.Equal(t, []string{fmt.Sprintf("line-%d", i)}, ex.Lines)
	}
}

func TestExtractTextFailedImageKeepsSlot(t *testing.T) {
	reader := &fakeTextReader{lines: map[string][]string{
		"https://img.example.com/ok.jpg": {"hello"},
	}}
	svc := &Service{Text: reader}

	out, err := svc.ExtractText(context.Background(), []string{
		"https://img.example.com/ok.jpg",
		"https://img.example.com/broken.jpg",
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"hello"}, out[0].Lines)
	assert.Empty(t, out[1].Lines, "failed extraction reports nothing but keeps its slot")
	assert.Equal(t, 2, reader.calls)
}

func TestExtractTextEmptyInput(t *testing.T) {
	reader := &fakeTextReader{}
	svc := &Service{Text: reader}

	_, err := svc.ExtractText(context.Background(), nil)
	assert.ErrorIs(t, err, ai.ErrNoImages)
	assert.Zero(t, reader.calls)
}

func TestDetectBrandsMergesDuplicates(t *testing.T) {
	reader := &fakeTextReader{lines: map[string][]string{
		"https://img.example.com/a.jpg": {"nike"},
		"https://img.example.com/b.jpg": {"swoosh nike tag"},
	}}
	svc := &Service{Text: reader, Brands: fakeMatcher{}}

	out, err := svc.DetectBrands(context.Background(), []string{
		"https://img.example.com/a.jpg",
		"https://img.example.com/b.jpg",
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Nike", out[0].Brand)
	assert.Equal(t, 0.95, out[0].Confidence, "merge keeps the best confidence")
	assert.Len(t, out[0].Matches, 2)
}

func TestDetectColors(t *testing.T) {
	svc := &Service{Colors: &fakeSampler{det: domain.ColorDetection{
		Dominant: "red",
		Colors:   []domain.DetectedColor{{Name: "red", Share: 0.9}},
	}}}

	out, err := svc.DetectColors(context.Background(), "https://img.example.com/red.jpg")
	require.NoError(t, err)
	assert.Equal(t, "red", out.Dominant)
	assert.Equal(t, "https://img.example.com/red.jpg", out.ImageURL)
}

func TestDetectColorsEmptyURL(t *testing.T) {
	svc := &Service{Colors: &fakeSampler{}}
	_, err := svc.DetectColors(context.Background(), "")
	assert.ErrorIs(t, err, ai.ErrNoImages)
}
