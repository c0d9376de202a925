package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bryanwahyu/resale-intel/internal/domain/ai"
	domain "github.com/bryanwahyu/resale-intel/internal/domain/analysis"
)

// itemPayload mirrors the JSON schema the vision client enforces for the
// full analysis pass.
type itemPayload struct {
	Identification struct {
		Brand      string  `json:"brand"`
		Model      string  `json:"model"`
		Category   string  `json:"category"`
		Title      string  `json:"title"`
		Confidence float64 `json:"confidence"`
	} `json:"identification"`
	Market struct {
		Demand         string   `json:"demand"`
		Competition    string   `json:"competition"`
		PriceStability string   `json:"price_stability"`
		SellingPoints  []string `json:"selling_points"`
		Risks          []string `json:"risks"`
	} `json:"market"`
	Authentication struct {
		Authentic  bool     `json:"authentic"`
		Confidence float64  `json:"confidence"`
		Indicators []string `json:"indicators"`
		RedFlags   []string `json:"red_flags"`
	} `json:"authentication"`
	EstimatedPrice float64 `json:"estimated_price"`
	Currency       string  `json:"currency"`
}

func decodeItemPayload(raw string) (*itemPayload, error) {
	var p itemPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrParse, err)
	}
	return &p, nil
}

func (p *itemPayload) identification() domain.Identification {
	return domain.Identification{
		Brand:      p.Identification.Brand,
		Model:      p.Identification.Model,
		Category:   p.Identification.Category,
		Title:      p.Identification.Title,
		Confidence: p.Identification.Confidence,
	}
}

func (p *itemPayload) market() domain.MarketIntelligence {
	return domain.MarketIntelligence{
		Demand:         domain.DemandLevel(strings.ToLower(p.Market.Demand)),
		Competition:    domain.CompetitionLevel(strings.ToLower(p.Market.Competition)),
		PriceStability: domain.PriceStability(strings.ToLower(p.Market.PriceStability)),
		SellingPoints:  p.Market.SellingPoints,
		Risks:          p.Market.Risks,
	}
}

func (p *itemPayload) authentication() domain.AuthenticationResult {
	return domain.AuthenticationResult{
		Authentic:  p.Authentication.Authentic,
		Confidence: p.Authentication.Confidence,
		Indicators: p.Authentication.Indicators,
		RedFlags:   p.Authentication.RedFlags,
	}
}

// prospectPayload mirrors the prospecting schema.
type prospectPayload struct {
	Identification struct {
		Brand      string  `json:"brand"`
		Model      string  `json:"model"`
		Category   string  `json:"category"`
		Title      string  `json:"title"`
		Confidence float64 `json:"confidence"`
	} `json:"identification"`
	EstimatedValue float64  `json:"estimated_value"`
	Currency       string   `json:"currency"`
	BuyRecommended bool     `json:"buy_recommended"`
	Confidence     float64  `json:"confidence"`
	Reasons        []string `json:"reasons"`
}

func (p *prospectPayload) identification() domain.Identification {
	return domain.Identification{
		Brand:      p.Identification.Brand,
		Model:      p.Identification.Model,
		Category:   p.Identification.Category,
		Title:      p.Identification.Title,
		Confidence: p.Identification.Confidence,
	}
}
