package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	domain "github.com/bryanwahyu/resale-intel/internal/domain/analysis"
	"github.com/bryanwahyu/resale-intel/internal/domain/pricing"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

const analysisColumns = `id, tenant_id, kind, status, requested_at, condition_grade, images_json,
       brand, model, category, title, id_confidence,
       demand, competition, price_stability, selling_points_json, risks_json,
       authentic, auth_confidence, indicators_json, red_flags_json,
       base_price, adjusted_price, quick_sale, competitive, recommended, max_profit, currency,
       raw_json, duration_ms`

// Save insert/update Analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	const q = `
INSERT INTO item_analyses
(id, tenant_id, kind, status, requested_at, condition_grade, images_json,
 brand, model, category, title, id_confidence,
 demand, competition, price_stability, selling_points_json, risks_json,
 authentic, auth_confidence, indicators_json, red_flags_json,
 base_price, adjusted_price, quick_sale, competitive, recommended, max_profit, currency,
 raw_json, duration_ms)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 brand=VALUES(brand), model=VALUES(model), category=VALUES(category), title=VALUES(title),
 id_confidence=VALUES(id_confidence),
 demand=VALUES(demand), competition=VALUES(competition), price_stability=VALUES(price_stability),
 selling_points_json=VALUES(selling_points_json), risks_json=VALUES(risks_json),
 authentic=VALUES(authentic), auth_confidence=VALUES(auth_confidence),
 indicators_json=VALUES(indicators_json), red_flags_json=VALUES(red_flags_json),
 base_price=VALUES(base_price), adjusted_price=VALUES(adjusted_price),
 quick_sale=VALUES(quick_sale), competitive=VALUES(competitive),
 recommended=VALUES(recommended), max_profit=VALUES(max_profit), currency=VALUES(currency),
 raw_json=VALUES(raw_json), duration_ms=VALUES(duration_ms);
`
	// Ensure non-nullable string fields have safe defaults
	tenant := stringOrDash(a.TenantID)
	kind := stringOrDash(string(a.Kind))
	status := stringOrDash(string(a.Status))
	requested := a.RequestedAt
	if requested.IsZero() {
		requested = time.Now()
	}
	raw := a.RawResult
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}

	_, err := r.db.ExecContext(ctx, q,
		a.ID, tenant, kind, status, requested, string(a.Condition), jsonList(a.ImageURLs),
		a.Identification.Brand, a.Identification.Model, a.Identification.Category,
		a.Identification.Title, a.Identification.Confidence,
		string(a.Market.Demand), string(a.Market.Competition), string(a.Market.PriceStability),
		jsonList(a.Market.SellingPoints), jsonList(a.Market.Risks),
		a.Authentication.Authentic, a.Authentication.Confidence,
		jsonList(a.Authentication.Indicators), jsonList(a.Authentication.RedFlags),
		a.Pricing.BasePrice, a.Pricing.AdjustedPrice, a.Pricing.QuickSale,
		a.Pricing.Competitive, a.Pricing.Recommended, a.Pricing.MaxProfit, a.Pricing.Currency,
		raw, a.DurationMS,
	)
	return err
}

func scanAnalysis(row interface {
	Scan(dest ...any) error
}) (*domain.Analysis, error) {
	var a domain.Analysis
	var cond, images, sellingPoints, risks, indicators, redFlags string
	if err := row.Scan(
		&a.ID, &a.TenantID, &a.Kind, &a.Status, &a.RequestedAt, &cond, &images,
		&a.Identification.Brand, &a.Identification.Model, &a.Identification.Category,
		&a.Identification.Title, &a.Identification.Confidence,
		&a.Market.Demand, &a.Market.Competition, &a.Market.PriceStability,
		&sellingPoints, &risks,
		&a.Authentication.Authentic, &a.Authentication.Confidence,
		&indicators, &redFlags,
		&a.Pricing.BasePrice, &a.Pricing.AdjustedPrice, &a.Pricing.QuickSale,
		&a.Pricing.Competitive, &a.Pricing.Recommended, &a.Pricing.MaxProfit, &a.Pricing.Currency,
		&a.RawResult, &a.DurationMS,
	); err != nil {
		return nil, err
	}
	a.Condition = pricing.Condition(cond)
	a.ImageURLs = scanList(images)
	a.Market.SellingPoints = scanList(sellingPoints)
	a.Market.Risks = scanList(risks)
	a.Authentication.Indicators = scanList(indicators)
	a.Authentication.RedFlags = scanList(redFlags)
	return &a, nil
}

// Get by ID + Tenant
func (r *AnalysisRepository) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	q := `
SELECT ` + analysisColumns + `
FROM item_analyses
WHERE tenant_id=? AND id=? LIMIT 1;
`
	return scanAnalysis(r.db.QueryRowContext(ctx, q, tenant, id))
}

// Latest analyses per tenant
func (r *AnalysisRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `
SELECT ` + analysisColumns + `
FROM item_analyses
WHERE tenant_id=? ORDER BY requested_at DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateStatus hanya update kolom status
func (r *AnalysisRepository) UpdateStatus(ctx context.Context, tenant string, id domain.AnalysisID, status domain.Status) error {
	const q = `
UPDATE item_analyses
SET status = ?
WHERE tenant_id = ? AND id = ?;`
	_, err := r.db.ExecContext(ctx, q, status, tenant, id)
	return err
}

// Summary counts analysis outcomes since N days
func (r *AnalysisRepository) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)

	const q = `
SELECT COUNT(*) AS total_analyses,
       COALESCE(SUM(status = 'done'),0)   AS done,
       COALESCE(SUM(status = 'failed'),0) AS failed,
       COALESCE(SUM(status = 'done' AND authentic = 0),0) AS flagged
FROM item_analyses
WHERE tenant_id=? AND requested_at >= ?;
`
	var s domain.Summary
	if err := r.db.QueryRowContext(ctx, q, tenant, cut).Scan(&s.TotalAnalyses, &s.Done, &s.Failed, &s.Flagged); err != nil {
		return domain.Summary{}, err
	}
	return s, nil
}

// Paginate with offset + limit (classic pagination)
func (r *AnalysisRepository) Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]any) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := `
SELECT ` + analysisColumns + `
FROM item_analyses
WHERE tenant_id=?`
	args := []any{tenant}
	query, args = applyFilters(query, args, filters)

	query += "\nORDER BY requested_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying analyses: %w", err)
	}
	defer rows.Close()

	var list []*domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		list = append(list, a)
	}
	if err = rows.Err(); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("iterating rows: %w", err)
	}

	total, err := r.Count(ctx, tenant, filters)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Data:       list,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// Count returns the total number of records matching the given filters
func (r *AnalysisRepository) Count(ctx context.Context, tenant string, filters map[string]any) (int64, error) {
	query := "SELECT COUNT(*) FROM item_analyses WHERE tenant_id = ?"
	args := []any{tenant}
	query, args = applyFilters(query, args, filters)

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func applyFilters(query string, args []any, filters map[string]any) (string, []any) {
	if filters == nil {
		return query, args
	}
	for key, value := range filters {
		switch key {
		case "status":
			query += " AND status = ?"
			args = append(args, value)
		case "kind":
			query += " AND kind = ?"
			args = append(args, value)
		case "category":
			query += " AND category = ?"
			args = append(args, value)
		case "brand":
			// Use LIKE with wildcards - sanitize input to prevent SQL injection
			query += " AND brand LIKE ?"
			term, _ := value.(string)
			args = append(args, "%"+escapeLikePattern(term)+"%")
		}
	}
	return query, args
}

// escapeLikePattern escapes special characters in LIKE patterns to prevent SQL injection
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
