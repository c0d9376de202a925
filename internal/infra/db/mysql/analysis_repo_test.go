package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/resale-intel/internal/domain/analysis"
	"github.com/bryanwahyu/resale-intel/internal/domain/pricing"
)

func analysisRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "kind", "status", "requested_at", "condition_grade", "images_json",
		"brand", "model", "category", "title", "id_confidence",
		"demand", "competition", "price_stability", "selling_points_json", "risks_json",
		"authentic", "auth_confidence", "indicators_json", "red_flags_json",
		"base_price", "adjusted_price", "quick_sale", "competitive", "recommended", "max_profit", "currency",
		"raw_json", "duration_ms",
	})
}

func sampleRow(rows *sqlmock.Rows, id string) *sqlmock.Rows {
	return rows.AddRow(
		id, "t1", "full", "done", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), "good",
		`["https://img.example.com/1.jpg"]`,
		"Nike", "Air Max 90", "sneakers", "Nike Air Max 90 OG", 0.92,
		"high", "moderate", "stable", `["OG colorway"]`, `["sole yellowing"]`,
		true, 0.88, `["correct box label"]`, "[]",
		120.0, 96.0, 76.8, 81.6, 110.4, 115.2, "USD",
		"{}", int64(2300),
	)
}

func TestSaveUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAnalysisRepository(db)
	mock.ExpectExec("INSERT INTO item_analyses").
		WillReturnResult(sqlmock.NewResult(0, 1))

	a := &domain.Analysis{
		ID:          "a-1",
		TenantID:    "t1",
		Kind:        domain.KindFull,
		Status:      domain.StatusQueued,
		RequestedAt: time.Now(),
		Condition:   pricing.ConditionGood,
		ImageURLs:   []string{"https://img.example.com/1.jpg"},
	}
	require.NoError(t, repo.Save(context.Background(), a))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveDefaultsBlankFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAnalysisRepository(db)
	// tenant/kind/status blank -> "-", raw blank -> "{}"
	mock.ExpectExec("INSERT INTO item_analyses").
		WithArgs(
			"a-2", "-", "-", "-", sqlmock.AnyArg(), "", "[]",
			"", "", "", "", 0.0,
			"", "", "", "[]", "[]",
			false, 0.0, "[]", "[]",
			0.0, 0.0, 0.0, 0.0, 0.0, 0.0, "",
			"{}", int64(0),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), &domain.Analysis{ID: "a-2"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetScansLists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAnalysisRepository(db)
	mock.ExpectQuery("FROM item_analyses").
		WithArgs("t1", "a-1").
		WillReturnRows(sampleRow(analysisRows(), "a-1"))

	got, err := repo.Get(context.Background(), "t1", "a-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisID("a-1"), got.ID)
	assert.Equal(t, pricing.ConditionGood, got.Condition)
	assert.Equal(t, []string{"https://img.example.com/1.jpg"}, got.ImageURLs)
	assert.Equal(t, []string{"OG colorway"}, got.Market.SellingPoints)
	assert.Nil(t, got.Authentication.RedFlags, "empty JSON list scans to nil")
	assert.InDelta(t, 96.0, got.Pricing.AdjustedPrice, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAnalysisRepository(db)
	mock.ExpectExec("UPDATE item_analyses").
		WithArgs(domain.StatusRunning, "t1", domain.AnalysisID("a-1")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "t1", "a-1", domain.StatusRunning))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummary(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAnalysisRepository(db)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("t1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"total_analyses", "done", "failed", "flagged"}).
			AddRow(10, 7, 2, 1))

	s, err := repo.Summary(context.Background(), "t1", 7)
	require.NoError(t, err)
	assert.Equal(t, 10, s.TotalAnalyses)
	assert.Equal(t, 7, s.Done)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, 1, s.Flagged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaginateWithFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAnalysisRepository(db)
	mock.ExpectQuery(`(?s)FROM item_analyses\s+WHERE tenant_id=\? AND status = \?`).
		WithArgs("t1", "done", 2, 2).
		WillReturnRows(sampleRow(sampleRow(analysisRows(), "a-3"), "a-4"))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM item_analyses").
		WithArgs("t1", "done").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	got, err := repo.Paginate(context.Background(), "t1", 2, 2, map[string]any{"status": "done"})
	require.NoError(t, err)
	assert.Len(t, got.Data, 2)
	assert.Equal(t, 2, got.Page)
	assert.Equal(t, int64(5), got.Total)
	assert.Equal(t, 3, got.TotalPages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLikePattern(t *testing.T) {
	assert.Equal(t, "100\\%", escapeLikePattern("100%"))
	assert.Equal(t, "a\\_b", escapeLikePattern("a_b"))
	assert.Equal(t, "c\\\\d", escapeLikePattern(`c\d`))
}

func TestJSONListRoundTrip(t *testing.T) {
	assert.Equal(t, "[]", jsonList(nil))
	assert.Nil(t, scanList("[]"))
	assert.Nil(t, scanList(""))
	assert.Equal(t, []string{"a", "b"}, scanList(jsonList([]string{"a", "b"})))
}
