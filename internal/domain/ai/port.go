package ai

import "context"

// ItemRequest carries the photos and optional seller hints for an analysis call.
type ItemRequest struct {
	ImageURLs []string
	Title     string
	Category  string
	Condition string
}

// Client is the port to the external vision/LLM provider. Implementations
// return the raw JSON document produced by the model, already validated
// against the per-operation schema.
type Client interface {
	// AnalyzeItem runs the full identification + market + authentication pass.
	AnalyzeItem(ctx context.Context, req ItemRequest) (string, error)

	// AnalyzeProspect runs the cheaper preliminary identification pass.
	AnalyzeProspect(ctx context.Context, req ItemRequest) (string, error)

	// ReadBarcode reads a barcode off a photo and identifies the product.
	ReadBarcode(ctx context.Context, imageURL string) (string, error)

	// LookupBarcode identifies a product from a raw barcode value.
	LookupBarcode(ctx context.Context, barcode string) (string, error)

	// ExtractText transcribes the visible text on a single photo.
	ExtractText(ctx context.Context, imageURL string) ([]string, error)
}
