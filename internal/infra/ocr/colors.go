package ocr

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"sort"
	"time"

	// stock decoders for the formats phones actually upload
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	domai "github.com/bryanwahyu/resale-intel/internal/domain/ai"
	"github.com/bryanwahyu/resale-intel/internal/domain/vision"
)

const (
	maxImageBytes = 10 << 20
	sampleGrid    = 64   // samples per axis
	minShare      = 0.05 // colors below this share are dropped
)

// ColorAnalyzer samples pixels on a fixed grid and classifies each sample
// into a named color by RGB thresholds. No AI involved.
type ColorAnalyzer struct {
	HTTP *http.Client
}

func NewColorAnalyzer() *ColorAnalyzer {
	return &ColorAnalyzer{HTTP: &http.Client{Timeout: 15 * time.Second}}
}

// Sample fetches the image and reports colors whose pixel share exceeds the
// threshold, dominant first.
func (a *ColorAnalyzer) Sample(ctx context.Context, imageURL string) (vision.ColorDetection, error) {
	img, err := a.fetch(ctx, imageURL)
	if err != nil {
		return vision.ColorDetection{}, err
	}
	det := Classify(img)
	det.ImageURL = imageURL
	return det, nil
}

func (a *ColorAnalyzer) fetch(ctx context.Context, imageURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domai.ErrNetwork, err)
	}
	resp, err := a.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domai.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch image status %d", domai.ErrNetwork, resp.StatusCode)
	}
	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domai.ErrParse, err)
	}
	return img, nil
}

// Classify runs the grid sampling over an already-decoded image.
func Classify(img image.Image) vision.ColorDetection {
	b := img.Bounds()
	stepX := b.Dx() / sampleGrid
	if stepX < 1 {
		stepX = 1
	}
	stepY := b.Dy() / sampleGrid
	if stepY < 1 {
		stepY = 1
	}

	counts := map[string]int{}
	total := 0
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			r, g, bl, _ := img.At(x, y).RGBA()
			counts[classifyRGB(uint8(r>>8), uint8(g>>8), uint8(bl>>8))]++
			total++
		}
	}

	var det vision.ColorDetection
	if total == 0 {
		return det
	}
	for name, n := range counts {
		share := float64(n) / float64(total)
		if share < minShare {
			continue
		}
		det.Colors = append(det.Colors, vision.DetectedColor{Name: name, Share: share})
	}
	sort.Slice(det.Colors, func(i, j int) bool {
		if det.Colors[i].Share != det.Colors[j].Share {
			return det.Colors[i].Share > det.Colors[j].Share
		}
		return det.Colors[i].Name < det.Colors[j].Name
	})
	if len(det.Colors) > 0 {
		det.Dominant = det.Colors[0].Name
	}
	return det
}

// classifyRGB buckets a pixel into a named color with fixed thresholds.
func classifyRGB(r, g, b uint8) string {
	maxC := max3(r, g, b)
	minC := min3(r, g, b)
	spread := int(maxC) - int(minC)

	// near-grayscale pixels first
	if spread < 24 {
		switch {
		case maxC < 50:
			return "black"
		case maxC > 205:
			return "white"
		default:
			return "gray"
		}
	}

	ri, gi, bi := int(r), int(g), int(b)
	switch {
	case ri > gi && gi > bi && ri > 140 && gi > 70 && bi < 90:
		if gi > 130 {
			return "yellow"
		}
		if ri-gi < 70 && maxC < 160 {
			return "brown"
		}
		return "orange"
	case ri >= gi && ri >= bi:
		if bi > 120 && ri > 170 {
			return "pink"
		}
		if maxC < 120 {
			return "brown"
		}
		return "red"
	case gi >= ri && gi >= bi:
		return "green"
	case bi > ri && ri > gi && ri > 90:
		return "purple"
	default:
		return "blue"
	}
}

func max3(a, b, c uint8) uint8 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func min3(a, b, c uint8) uint8 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
