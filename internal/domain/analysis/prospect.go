package analysis

import "time"

// ProspectAnalysis is the preliminary, lower-confidence pass used to decide
// whether an item is worth sourcing before committing to a full analysis.
type ProspectAnalysis struct {
	ID             AnalysisID     `json:"id"`
	TenantID       string         `json:"tenant_id"`
	Identification Identification `json:"identification"`
	EstimatedValue float64        `json:"estimated_value"`
	Currency       string         `json:"currency"`
	BuyRecommended bool           `json:"buy_recommended"`
	Confidence     float64        `json:"confidence"`
	Reasons        []string       `json:"reasons"`
	CreatedAt      time.Time      `json:"created_at"`
}

// BarcodeResult is the product identification read off a barcode.
type BarcodeResult struct {
	Barcode     string  `json:"barcode"`
	ProductName string  `json:"product_name"`
	Brand       string  `json:"brand,omitempty"`
	Category    string  `json:"category,omitempty"`
	Confidence  float64 `json:"confidence"`
	Cached      bool    `json:"cached"`
}
