package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/resale-intel/internal/domain/ai"
	domain "github.com/bryanwahyu/resale-intel/internal/domain/analysis"
	"github.com/bryanwahyu/resale-intel/internal/domain/failures"
	"github.com/bryanwahyu/resale-intel/internal/domain/pricing"
)

// Clock abstraction supaya gampang ditest
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Service implements use-cases untuk item analysis.
// Service is designed to be used concurrently and is thread-safe.
type Service struct {
	Repo     domain.Repository
	Failures failures.Repository
	Vision   ai.Client
	Images   domain.ImageStore
	Cache    domain.Cache
	Clock    Clock
	Log      *zap.Logger
	// Timeout bounds each vision provider call. Zero means no bound.
	Timeout time.Duration
}

const barcodeCacheTTL = 24 * time.Hour

//
// ==== USE CASES ====
//

// Command untuk full analysis
type AnalyzeItemCommand struct {
	TenantID  string
	ImageURLs []string
	Title     string
	Category  string
	Condition string
	// AskingPrice seeds the pricing module when the model returns no estimate.
	AskingPrice float64
	Currency    string
}

// Command untuk prospecting pass
type ProspectCommand struct {
	TenantID  string
	ImageURLs []string
	Title     string
	Category  string
}

// Command untuk barcode lookup. Either ImageURL or Barcode must be set.
type BarcodeCommand struct {
	TenantID string
	ImageURL string
	Barcode  string
}

// AnalyzeItemAsync creates a queued analysis row, kicks off the work in the
// background with context.Background() so it survives the request, and
// returns the row immediately. Mirrors how scan triggers behave.
func (s *Service) AnalyzeItemAsync(cmd AnalyzeItemCommand) (*domain.Analysis, error) {
	initial, err := s.begin(cmd)
	if err != nil {
		return nil, err
	}
	go func() {
		if _, err := s.run(context.Background(), initial, cmd); err != nil {
			s.logger().Warn("background analysis failed",
				zap.String("tenant", cmd.TenantID),
				zap.String("id", string(initial.ID)),
				zap.Error(err))
		}
	}()
	return initial, nil
}

// AnalyzeItem runs the full pass synchronously. Used by tests and callers
// that want to block for the result.
func (s *Service) AnalyzeItem(ctx context.Context, cmd AnalyzeItemCommand) (*domain.Analysis, error) {
	initial, err := s.begin(cmd)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, initial, cmd)
}

// begin validates the command and persists the initial queued row.
func (s *Service) begin(cmd AnalyzeItemCommand) (*domain.Analysis, error) {
	if len(cmd.ImageURLs) == 0 {
		return nil, ai.ErrNoImages
	}
	cond, err := pricing.ParseCondition(cmd.Condition)
	if err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	id := domain.AnalysisID(fmt.Sprintf("%s-full", uuid.New().String()))

	initial := &domain.Analysis{
		ID:          id,
		TenantID:    cmd.TenantID,
		Kind:        domain.KindFull,
		Status:      domain.StatusQueued,
		RequestedAt: now,
		ImageURLs:   cmd.ImageURLs,
		Condition:   cond,
	}
	if err := s.Repo.Save(context.Background(), initial); err != nil {
		return nil, err
	}
	return initial, nil
}

// run executes the vision call and persists the outcome.
func (s *Service) run(ctx context.Context, a *domain.Analysis, cmd AnalyzeItemCommand) (*domain.Analysis, error) {
	start := s.Clock.Now()
	_ = s.Repo.UpdateStatus(ctx, a.TenantID, a.ID, domain.StatusRunning)

	callCtx, cancel := s.visionContext(ctx)
	defer cancel()
	raw, err := s.Vision.AnalyzeItem(callCtx, ai.ItemRequest{
		ImageURLs: cmd.ImageURLs,
		Title:     cmd.Title,
		Category:  cmd.Category,
		Condition: cmd.Condition,
	})
	if err != nil {
		s.fail(a.TenantID, string(a.ID), "analyze", err)
		_ = s.Repo.UpdateStatus(context.Background(), a.TenantID, a.ID, domain.StatusFailed)
		return nil, err
	}

	payload, err := decodeItemPayload(raw)
	if err != nil {
		s.fail(a.TenantID, string(a.ID), "analyze", err)
		_ = s.Repo.UpdateStatus(context.Background(), a.TenantID, a.ID, domain.StatusFailed)
		return nil, err
	}

	base := payload.EstimatedPrice
	if base <= 0 {
		base = cmd.AskingPrice
	}
	currency := payload.Currency
	if currency == "" {
		currency = cmd.Currency
	}
	var priced pricing.Intelligence
	if base > 0 {
		priced, err = pricing.Compute(base, a.Condition, currency)
		if err != nil {
			s.fail(a.TenantID, string(a.ID), "analyze", err)
			_ = s.Repo.UpdateStatus(context.Background(), a.TenantID, a.ID, domain.StatusFailed)
			return nil, err
		}
	}

	done := &domain.Analysis{
		ID:             a.ID,
		TenantID:       a.TenantID,
		Kind:           domain.KindFull,
		Status:         domain.StatusDone,
		RequestedAt:    a.RequestedAt,
		ImageURLs:      a.ImageURLs,
		Condition:      a.Condition,
		Identification: payload.identification(),
		Market:         payload.market(),
		Authentication: payload.authentication(),
		Pricing:        priced,
		RawResult:      raw,
		DurationMS:     s.Clock.Now().Sub(start).Milliseconds(),
	}
	if err := s.Repo.Save(ctx, done); err != nil {
		s.fail(a.TenantID, string(a.ID), "analyze", err)
		_ = s.Repo.UpdateStatus(context.Background(), a.TenantID, a.ID, domain.StatusFailed)
		return nil, err
	}
	return done, nil
}

// AnalyzeForProspecting runs the preliminary pass synchronously. Prospect
// results are not persisted; they exist to decide whether to buy.
func (s *Service) AnalyzeForProspecting(ctx context.Context, cmd ProspectCommand) (*domain.ProspectAnalysis, error) {
	if len(cmd.ImageURLs) == 0 {
		return nil, ai.ErrNoImages
	}

	callCtx, cancel := s.visionContext(ctx)
	defer cancel()
	raw, err := s.Vision.AnalyzeProspect(callCtx, ai.ItemRequest{
		ImageURLs: cmd.ImageURLs,
		Title:     cmd.Title,
		Category:  cmd.Category,
	})
	if err != nil {
		s.fail(cmd.TenantID, "", "prospect", err)
		return nil, err
	}

	var p prospectPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		err = fmt.Errorf("%w: %v", ai.ErrParse, err)
		s.fail(cmd.TenantID, "", "prospect", err)
		return nil, err
	}

	return &domain.ProspectAnalysis{
		ID:             domain.AnalysisID(fmt.Sprintf("%s-prospect", uuid.New().String())),
		TenantID:       cmd.TenantID,
		Identification: p.identification(),
		EstimatedValue: p.EstimatedValue,
		Currency:       orDefault(p.Currency, "USD"),
		BuyRecommended: p.BuyRecommended,
		Confidence:     p.Confidence,
		Reasons:        p.Reasons,
		CreatedAt:      s.Clock.Now(),
	}, nil
}

// AnalyzeBarcode identifies a product from a barcode photo or a raw barcode
// value. Lookups by raw value are cached.
func (s *Service) AnalyzeBarcode(ctx context.Context, cmd BarcodeCommand) (*domain.BarcodeResult, error) {
	if cmd.ImageURL == "" && cmd.Barcode == "" {
		return nil, ai.ErrNoImages
	}

	if cmd.Barcode != "" && s.Cache != nil {
		key := barcodeKey(cmd.Barcode)
		if cached, ok, err := s.Cache.Get(ctx, key); err == nil && ok {
			var res domain.BarcodeResult
			if json.Unmarshal([]byte(cached), &res) == nil {
				res.Cached = true
				return &res, nil
			}
		}
	}

	callCtx, cancel := s.visionContext(ctx)
	defer cancel()
	var raw string
	var err error
	if cmd.ImageURL != "" {
		raw, err = s.Vision.ReadBarcode(callCtx, cmd.ImageURL)
	} else {
		raw, err = s.Vision.LookupBarcode(callCtx, cmd.Barcode)
	}
	if err != nil {
		s.fail(cmd.TenantID, "", "barcode", err)
		return nil, err
	}

	var res domain.BarcodeResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		err = fmt.Errorf("%w: %v", ai.ErrParse, err)
		s.fail(cmd.TenantID, "", "barcode", err)
		return nil, err
	}
	if res.Barcode == "" {
		res.Barcode = cmd.Barcode
	}

	if res.Barcode != "" && s.Cache != nil {
		if b, err := json.Marshal(res); err == nil {
			_ = s.Cache.Set(ctx, barcodeKey(res.Barcode), string(b), barcodeCacheTTL)
		}
	}
	return &res, nil
}

// Get ambil 1 analysis by id
func (s *Service) Get(ctx context.Context, tenant string, id domain.AnalysisID) (*domain.Analysis, error) {
	return s.Repo.Get(ctx, tenant, id)
}

// Latest ambil N analysis terakhir
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Analysis, error) {
	return s.Repo.Latest(ctx, tenant, limit)
}

// Paginate list analyses with optional filters (status, brand, category).
func (s *Service) Paginate(ctx context.Context, tenant string, page, pageSize int, filters map[string]any) (domain.PaginatedResult, error) {
	return s.Repo.Paginate(ctx, tenant, page, pageSize, filters)
}

// Summary rekap hasil analysis N hari terakhir
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (domain.Summary, error) {
	return s.Repo.Summary(ctx, tenant, sinceDays)
}

// ListFailures lists persisted failures for one analysis.
func (s *Service) ListFailures(ctx context.Context, tenant, analysisID string, limit int) ([]*failures.AnalysisFailure, error) {
	return s.Failures.ListByAnalysis(ctx, tenant, analysisID, limit)
}

// fail records a failure row; persistence errors only get logged.
func (s *Service) fail(tenant, analysisID, phase string, cause error) {
	if s.Failures == nil {
		return
	}
	f := &failures.AnalysisFailure{
		TenantID:   tenant,
		AnalysisID: analysisID,
		Phase:      phase,
		Message:    cause.Error(),
		CreatedAt:  s.Clock.Now(),
	}
	if err := s.Failures.Save(context.Background(), f); err != nil {
		s.logger().Warn("failed to persist analysis failure", zap.Error(err))
	}
}

// visionContext bounds a provider call with the configured timeout so a hung
// call cannot pin a background goroutine forever.
func (s *Service) visionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func (s *Service) logger() *zap.Logger {
	if s.Log != nil {
		return s.Log
	}
	return zap.NewNop()
}

func barcodeKey(code string) string {
	return "barcode:" + strings.TrimSpace(code)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
