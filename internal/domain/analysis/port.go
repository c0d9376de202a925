package analysis

import (
	"context"
	"io"
	"time"
)

// Summary rekap hasil analisa per tenant.
type Summary struct {
	TotalAnalyses int `json:"total_analyses"`
	Done          int `json:"done"`
	Failed        int `json:"failed"`
	Flagged       int `json:"flagged"` // done but not authentic
}

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, tenant string, id AnalysisID) (*Analysis, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Analysis, error)
	UpdateStatus(ctx context.Context, tenant string, id AnalysisID, status Status) error
	Summary(ctx context.Context, tenant string, sinceDays int) (Summary, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]any) (PaginatedResult, error)
}

// ImageStore port (interface untuk penyimpanan foto produk)
type ImageStore interface {
	UploadImage(ctx context.Context, r io.Reader, size int64, contentType, key string) (string, error)
}

// Cache port for short-lived lookups (barcode results).
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
