package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/resale-intel/internal/domain/ai"
	domain "github.com/bryanwahyu/resale-intel/internal/domain/analysis"
	"github.com/bryanwahyu/resale-intel/internal/domain/failures"
)

//
// ==== fakes ====
//

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type fakeRepo struct {
	mu       sync.Mutex
	saved    map[domain.AnalysisID]*domain.Analysis
	statuses []domain.Status
	saves    int
	// failSaveAt makes the Nth Save call fail (0 = never)
	failSaveAt int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{saved: map[domain.AnalysisID]*domain.Analysis{}}
}

func (r *fakeRepo) Save(ctx context.Context, a *domain.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.failSaveAt > 0 && r.saves >= r.failSaveAt {
		return errors.New("db down")
	}
	cp := *a
	r.saved[a.ID] = &cp
	return nil
}

func (r *fakeRepo) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved[id], nil
}

func (r *fakeRepo) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Analysis, error) {
	return nil, nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, tenant string, id domain.AnalysisID, status domain.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	if a, ok := r.saved[id]; ok {
		a.Status = status
	}
	return nil
}

func (r *fakeRepo) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	return domain.Summary{}, nil
}

func (r *fakeRepo) Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]any) (domain.PaginatedResult, error) {
	return domain.PaginatedResult{}, nil
}

type fakeFailures struct {
	mu    sync.Mutex
	saved []*failures.AnalysisFailure
}

func (f *fakeFailures) Save(ctx context.Context, fl *failures.AnalysisFailure) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, fl)
	return nil
}

func (f *fakeFailures) ListByAnalysis(ctx context.Context, tenant, id string, limit int) ([]*failures.AnalysisFailure, error) {
	return f.saved, nil
}

type fakeVision struct {
	mu            sync.Mutex
	calls         int
	sawDeadline   bool
	itemReply     string
	prospectReply string
	barcodeReply  string
	err           error
}

func (v *fakeVision) bump(ctx context.Context) {
	v.mu.Lock()
	v.calls++
	if _, ok := ctx.Deadline(); ok {
		v.sawDeadline = true
	}
	v.mu.Unlock()
}

func (v *fakeVision) deadlineSeen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sawDeadline
}

func (v *fakeVision) AnalyzeItem(ctx context.Context, req ai.ItemRequest) (string, error) {
	v.bump(ctx)
	return v.itemReply, v.err
}

func (v *fakeVision) AnalyzeProspect(ctx context.Context, req ai.ItemRequest) (string, error) {
	v.bump(ctx)
	return v.prospectReply, v.err
}

func (v *fakeVision) ReadBarcode(ctx context.Context, imageURL string) (string, error) {
	v.bump(ctx)
	return v.barcodeReply, v.err
}

func (v *fakeVision) LookupBarcode(ctx context.Context, barcode string) (string, error) {
	v.bump(ctx)
	return v.barcodeReply, v.err
}

func (v *fakeVision) ExtractText(ctx context.Context, imageURL string) ([]string, error) {
	v.bump(ctx)
	return nil, v.err
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string]string{}} }

func (c *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

const itemReply = `{
  "identification": {"brand": "Nike", "model": "Air Max 90", "category": "sneakers", "title": "Nike Air Max 90 OG", "confidence": 0.92},
  "market": {"demand": "high", "competition": "moderate", "price_stability": "stable", "selling_points": ["OG colorway"], "risks": ["sole yellowing"]},
  "authentication": {"authentic": true, "confidence": 0.88, "indicators": ["correct box label"], "red_flags": []},
  "estimated_price": 120,
  "currency": "USD"
}`

func newService(repo *fakeRepo, vision *fakeVision, fails *fakeFailures, cache *fakeCache) *Service {
	s := &Service{
		Repo:     repo,
		Failures: fails,
		Vision:   vision,
		Clock:    fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
	if cache != nil {
		s.Cache = cache
	}
	return s
}

//
// ==== tests ====
//

func TestAnalyzeItemEmptyImagesSkipsProvider(t *testing.T) {
	vision := &fakeVision{itemReply: itemReply}
	svc := newService(newFakeRepo(), vision, &fakeFailures{}, nil)

	_, err := svc.AnalyzeItem(context.Background(), AnalyzeItemCommand{
		TenantID:  "t1",
		Condition: "good",
	})
	assert.ErrorIs(t, err, ai.ErrNoImages)
	assert.Zero(t, vision.calls, "provider must not be called for an empty image list")
}

func TestAnalyzeItemHappyPath(t *testing.T) {
	repo := newFakeRepo()
	vision := &fakeVision{itemReply: itemReply}
	svc := newService(repo, vision, &fakeFailures{}, nil)

	got, err := svc.AnalyzeItem(context.Background(), AnalyzeItemCommand{
		TenantID:  "t1",
		ImageURLs: []string{"https://img.example.com/1.jpg"},
		Condition: "good",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDone, got.Status)
	assert.Equal(t, "Nike", got.Identification.Brand)
	assert.Equal(t, domain.DemandHigh, got.Market.Demand)
	assert.True(t, got.Authentication.Authentic)

	// pricing uses the model estimate: 120 * 0.8 (good) = 96 adjusted
	assert.InDelta(t, 96.0, got.Pricing.AdjustedPrice, 1e-9)
	assert.InDelta(t, 96.0*0.8, got.Pricing.QuickSale, 1e-9)
	assert.InDelta(t, 96.0*1.2, got.Pricing.MaxProfit, 1e-9)

	saved, _ := repo.Get(context.Background(), "t1", got.ID)
	require.NotNil(t, saved)
	assert.Equal(t, domain.StatusDone, saved.Status)
}

func TestAnalyzeItemFallsBackToAskingPrice(t *testing.T) {
	reply := itemReply
	reply = replaceEstimatedPrice(t, reply, 0)

	svc := newService(newFakeRepo(), &fakeVision{itemReply: reply}, &fakeFailures{}, nil)
	got, err := svc.AnalyzeItem(context.Background(), AnalyzeItemCommand{
		TenantID:    "t1",
		ImageURLs:   []string{"https://img.example.com/1.jpg"},
		Condition:   "new",
		AskingPrice: 200,
	})
	require.NoError(t, err)
	assert.InDelta(t, 200.0, got.Pricing.BasePrice, 1e-9)
	assert.InDelta(t, 200.0*0.8, got.Pricing.QuickSale, 1e-9)
}

func TestAnalyzeItemInvalidCondition(t *testing.T) {
	svc := newService(newFakeRepo(), &fakeVision{}, &fakeFailures{}, nil)
	_, err := svc.AnalyzeItem(context.Background(), AnalyzeItemCommand{
		TenantID:  "t1",
		ImageURLs: []string{"https://img.example.com/1.jpg"},
		Condition: "mint",
	})
	assert.Error(t, err)
}

func TestAnalyzeItemParseFailureRecorded(t *testing.T) {
	repo := newFakeRepo()
	fails := &fakeFailures{}
	svc := newService(repo, &fakeVision{itemReply: "not json"}, fails, nil)

	_, err := svc.AnalyzeItem(context.Background(), AnalyzeItemCommand{
		TenantID:  "t1",
		ImageURLs: []string{"https://img.example.com/1.jpg"},
		Condition: "good",
	})
	assert.ErrorIs(t, err, ai.ErrParse)
	require.Len(t, fails.saved, 1)
	assert.Equal(t, "analyze", fails.saved[0].Phase)
	assert.Contains(t, repo.statuses, domain.StatusFailed)
}

func TestAnalyzeItemBoundsVisionCall(t *testing.T) {
	vision := &fakeVision{itemReply: itemReply}
	svc := newService(newFakeRepo(), vision, &fakeFailures{}, nil)
	svc.Timeout = 30 * time.Second

	_, err := svc.AnalyzeItem(context.Background(), AnalyzeItemCommand{
		TenantID:  "t1",
		ImageURLs: []string{"https://img.example.com/1.jpg"},
		Condition: "good",
	})
	require.NoError(t, err)
	assert.True(t, vision.deadlineSeen(), "vision call must carry a deadline")
}

func TestAnalyzeItemAsyncBoundsVisionCall(t *testing.T) {
	repo := newFakeRepo()
	vision := &fakeVision{itemReply: itemReply}
	svc := newService(repo, vision, &fakeFailures{}, nil)
	svc.Timeout = 30 * time.Second

	queued, err := svc.AnalyzeItemAsync(AnalyzeItemCommand{
		TenantID:  "t1",
		ImageURLs: []string{"https://img.example.com/1.jpg"},
		Condition: "good",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusQueued, queued.Status)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a, _ := repo.Get(context.Background(), "t1", queued.ID); a != nil && a.Status == domain.StatusDone {
			assert.True(t, vision.deadlineSeen(), "background vision call must carry a deadline")
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("background analysis never finished")
}

func TestAnalyzeItemFinalSaveFailureRecorded(t *testing.T) {
	repo := newFakeRepo()
	repo.failSaveAt = 2 // queued row saves fine, the done row does not
	fails := &fakeFailures{}
	svc := newService(repo, &fakeVision{itemReply: itemReply}, fails, nil)

	_, err := svc.AnalyzeItem(context.Background(), AnalyzeItemCommand{
		TenantID:  "t1",
		ImageURLs: []string{"https://img.example.com/1.jpg"},
		Condition: "good",
	})
	require.Error(t, err)
	require.Len(t, fails.saved, 1)
	assert.Equal(t, "analyze", fails.saved[0].Phase)
	assert.Contains(t, repo.statuses, domain.StatusFailed,
		"a row must never be left at running after a persistence failure")
}

func TestAnalyzeForProspecting(t *testing.T) {
	reply := `{
	  "identification": {"brand": "Lego", "model": "", "category": "toys", "title": "Lego Star Wars set", "confidence": 0.6},
	  "estimated_value": 45,
	  "currency": "USD",
	  "buy_recommended": true,
	  "confidence": 0.55,
	  "reasons": ["complete box", "retired set"]
	}`
	svc := newService(newFakeRepo(), &fakeVision{prospectReply: reply}, &fakeFailures{}, nil)

	got, err := svc.AnalyzeForProspecting(context.Background(), ProspectCommand{
		TenantID:  "t1",
		ImageURLs: []string{"https://img.example.com/1.jpg"},
	})
	require.NoError(t, err)
	assert.True(t, got.BuyRecommended)
	assert.Equal(t, "Lego", got.Identification.Brand)
	assert.Equal(t, 45.0, got.EstimatedValue)
	assert.Len(t, got.Reasons, 2)
}

func TestAnalyzeForProspectingEmptyImages(t *testing.T) {
	vision := &fakeVision{}
	svc := newService(newFakeRepo(), vision, &fakeFailures{}, nil)

	_, err := svc.AnalyzeForProspecting(context.Background(), ProspectCommand{TenantID: "t1"})
	assert.ErrorIs(t, err, ai.ErrNoImages)
	assert.Zero(t, vision.calls)
}

func TestAnalyzeBarcodeCaches(t *testing.T) {
	reply := `{"barcode": "012345678905", "product_name": "Widget", "brand": "Acme", "category": "tools", "confidence": 0.8}`
	vision := &fakeVision{barcodeReply: reply}
	cache := newFakeCache()
	svc := newService(newFakeRepo(), vision, &fakeFailures{}, cache)

	first, err := svc.AnalyzeBarcode(context.Background(), BarcodeCommand{TenantID: "t1", Barcode: "012345678905"})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "Widget", first.ProductName)
	assert.Equal(t, 1, vision.calls)

	second, err := svc.AnalyzeBarcode(context.Background(), BarcodeCommand{TenantID: "t1", Barcode: "012345678905"})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, vision.calls, "cache hit must not call the provider again")
}

func TestAnalyzeBarcodeRequiresInput(t *testing.T) {
	svc := newService(newFakeRepo(), &fakeVision{}, &fakeFailures{}, nil)
	_, err := svc.AnalyzeBarcode(context.Background(), BarcodeCommand{TenantID: "t1"})
	assert.ErrorIs(t, err, ai.ErrNoImages)
}

// replaceEstimatedPrice rewrites the estimate in a reply fixture.
func replaceEstimatedPrice(t *testing.T, reply string, price float64) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(reply), &m))
	m["estimated_price"] = price
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return string(b)
}
