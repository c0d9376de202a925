package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	domain "github.com/bryanwahyu/resale-intel/internal/domain/failures"
)

type FailureRepository struct{ db *sql.DB }

func NewFailureRepository(db *sql.DB) *FailureRepository { return &FailureRepository{db: db} }

func (r *FailureRepository) Save(ctx context.Context, f *domain.AnalysisFailure) error {
	const q = `
INSERT INTO analysis_failures
  (tenant_id, analysis_id, phase, message, details_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6)`
	tenant := stringOrDash(f.TenantID)
	analysis := stringOrDash(f.AnalysisID)
	phase := stringOrDash(f.Phase)
	msg := f.Message
	if strings.TrimSpace(msg) == "" {
		msg = "-"
	}
	details := f.DetailsJSON
	if strings.TrimSpace(details) == "" {
		details = "{}"
	} else {
		var js any
		if json.Unmarshal([]byte(details), &js) != nil {
			b, _ := json.Marshal(map[string]string{"raw": details})
			details = string(b)
		}
	}
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, tenant, analysis, phase, msg, details, created)
	return err
}

func (r *FailureRepository) ListByAnalysis(ctx context.Context, tenant string, analysisID string, limit int) ([]*domain.AnalysisFailure, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, analysis_id, phase, message, details_json, created_at
FROM analysis_failures
WHERE tenant_id = $1 AND analysis_id = $2
ORDER BY created_at DESC, id DESC
LIMIT $3;`
	rows, err := r.db.QueryContext(ctx, q, tenant, analysisID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AnalysisFailure
	for rows.Next() {
		var f domain.AnalysisFailure
		var created time.Time
		if err := rows.Scan(&f.ID, &f.TenantID, &f.AnalysisID, &f.Phase, &f.Message, &f.DetailsJSON, &created); err != nil {
			return nil, err
		}
		f.CreatedAt = created
		out = append(out, &f)
	}
	return out, rows.Err()
}
