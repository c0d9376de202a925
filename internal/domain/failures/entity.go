package failures

import "time"

// AnalysisFailure represents a persisted analysis error entry
type AnalysisFailure struct {
	ID          int64     `json:"id"`
	TenantID    string    `json:"tenant_id"`
	AnalysisID  string    `json:"analysis_id"`
	Phase       string    `json:"phase,omitempty"` // analyze | prospect | barcode | ocr
	Message     string    `json:"message"`
	DetailsJSON string    `json:"details_json,omitempty"` // raw JSON string
	CreatedAt   time.Time `json:"created_at"`
}
