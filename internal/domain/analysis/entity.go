package analysis

import (
	"time"

	"github.com/bryanwahyu/resale-intel/internal/domain/pricing"
)

// ID tipe untuk Analysis
type AnalysisID string

// Kind enum
type Kind string

const (
	KindFull     Kind = "full"
	KindProspect Kind = "prospect"
)

// Status enum
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// DemandLevel enum
type DemandLevel string

const (
	DemandLow      DemandLevel = "low"
	DemandModerate DemandLevel = "moderate"
	DemandHigh     DemandLevel = "high"
)

// CompetitionLevel enum
type CompetitionLevel string

const (
	CompetitionLow      CompetitionLevel = "low"
	CompetitionModerate CompetitionLevel = "moderate"
	CompetitionHigh     CompetitionLevel = "high"
)

// PriceStability enum
type PriceStability string

const (
	PriceVolatile PriceStability = "volatile"
	PriceStable   PriceStability = "stable"
	PriceRising   PriceStability = "rising"
)

// Identification value object: what the model thinks the item is.
type Identification struct {
	Brand      string  `json:"brand"`
	Model      string  `json:"model,omitempty"`
	Category   string  `json:"category"`
	Title      string  `json:"title"`
	Confidence float64 `json:"confidence"`
}

// MarketIntelligence value object
type MarketIntelligence struct {
	Demand         DemandLevel      `json:"demand"`
	Competition    CompetitionLevel `json:"competition"`
	PriceStability PriceStability   `json:"price_stability"`
	SellingPoints  []string         `json:"selling_points"`
	Risks          []string         `json:"risks"`
}

// AuthenticationResult value object
type AuthenticationResult struct {
	Authentic  bool     `json:"authentic"`
	Confidence float64  `json:"confidence"`
	Indicators []string `json:"indicators"`
	RedFlags   []string `json:"red_flags"`
}

// Aggregate Root: Analysis
type Analysis struct {
	ID             AnalysisID           `json:"id"`
	TenantID       string               `json:"tenant_id"`
	Kind           Kind                 `json:"kind"`
	Status         Status               `json:"status"`
	RequestedAt    time.Time            `json:"requested_at"`
	ImageURLs      []string             `json:"image_urls"`
	Condition      pricing.Condition    `json:"condition"`
	Identification Identification       `json:"identification"`
	Market         MarketIntelligence   `json:"market"`
	Authentication AuthenticationResult `json:"authentication"`
	Pricing        pricing.Intelligence `json:"pricing"`
	RawResult      string               `json:"raw_result,omitempty"`
	DurationMS     int64                `json:"duration_ms"`
}
