package ocr

import (
	"strings"

	"github.com/bryanwahyu/resale-intel/internal/domain/vision"
)

// Confidence levels for the two match modes. An exact line hit is a much
// stronger signal than a substring buried in other text.
const (
	exactLineConfidence = 0.95
	substringConfidence = 0.7
)

// defaultBrands covers the labels that show up most in resale listings.
var defaultBrands = []string{
	"Adidas", "Apple", "Burberry", "Carhartt", "Chanel", "Coach", "Dior",
	"Fendi", "Gucci", "Hermès", "Lego", "Levi's", "Louis Vuitton", "Lululemon",
	"Michael Kors", "New Balance", "Nike", "Nintendo", "Omega", "Patagonia",
	"Prada", "Ralph Lauren", "Rolex", "Samsung", "Sony", "Supreme",
	"The North Face", "Tiffany & Co", "Under Armour", "Versace", "Yeezy",
}

// LexiconMatcher matches OCR lines against a list of known brand names.
type LexiconMatcher struct {
	canonical map[string]string // lowercase -> display name
}

// NewLexiconMatcher builds a matcher with the default lexicon plus any
// tenant-specific extras.
func NewLexiconMatcher(extra ...string) *LexiconMatcher {
	m := &LexiconMatcher{canonical: make(map[string]string, len(defaultBrands)+len(extra))}
	for _, b := range defaultBrands {
		m.canonical[strings.ToLower(b)] = b
	}
	for _, b := range extra {
		b = strings.TrimSpace(b)
		if b != "" {
			m.canonical[strings.ToLower(b)] = b
		}
	}
	return m
}

// Match scans the extracted lines for brand names. Case-insensitive; an
// exact line match scores higher than a substring hit.
func (m *LexiconMatcher) Match(lines []string) []vision.BrandDetection {
	best := map[string]*vision.BrandDetection{}

	for _, line := range lines {
		norm := strings.ToLower(strings.TrimSpace(line))
		if norm == "" {
			continue
		}
		for key, display := range m.canonical {
			var conf float64
			switch {
			case norm == key:
				conf = exactLineConfidence
			case strings.Contains(norm, key):
				conf = substringConfidence
			default:
				continue
			}
			d, ok := best[key]
			if !ok {
				best[key] = &vision.BrandDetection{
					Brand:      display,
					Matches:    []string{line},
					Confidence: conf,
				}
				continue
			}
			d.Matches = append(d.Matches, line)
			if conf > d.Confidence {
				d.Confidence = conf
			}
		}
	}

	out := make([]vision.BrandDetection, 0, len(best))
	for _, d := range best {
		out = append(out, *d)
	}
	return out
}
