package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/resale-intel/internal/application/analysis"
	appvision "github.com/bryanwahyu/resale-intel/internal/application/vision"
	domai "github.com/bryanwahyu/resale-intel/internal/domain/ai"
	domain "github.com/bryanwahyu/resale-intel/internal/domain/analysis"
	"github.com/bryanwahyu/resale-intel/internal/domain/pricing"
	"github.com/bryanwahyu/resale-intel/internal/middleware"
)

type Router struct {
	analysisSvc *appanalysis.Service
	visionSvc   *appvision.Service
	log         *zap.Logger
}

func NewRouter(analysisSvc *appanalysis.Service, visionSvc *appvision.Service, log *zap.Logger) http.Handler {
	r := &Router{analysisSvc: analysisSvc, visionSvc: visionSvc, log: log}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/analyses", r.wrap(r.handleAnalyzeItem))
		rt.Get("/analyses", r.wrap(r.handleListAnalyses))
		rt.Get("/analyses/latest", r.wrap(r.handleLatest))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Get("/analyses/{id}/failures", r.wrap(r.handleFailures))
		rt.Get("/summary", r.wrap(r.handleSummary))

		rt.Post("/prospect", r.wrap(r.handleProspect))
		rt.Post("/barcode", r.wrap(r.handleBarcode))

		rt.Post("/ocr/text", r.wrap(r.handleExtractText))
		rt.Post("/ocr/brands", r.wrap(r.handleDetectBrands))
		rt.Post("/ocr/colors", r.wrap(r.handleDetectColors))

		rt.Post("/pricing", r.wrap(r.handlePricing))
		rt.Post("/images", r.wrap(r.handleUploadImage))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError marks client mistakes so wrap can answer 400/422.
type badRequestError struct{ msg string }

func (e badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return badRequestError{msg: fmt.Sprintf(format, args...)}
}

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var br badRequestError
		switch {
		case errors.As(err, &br):
			http.Error(w, br.msg, http.StatusBadRequest)
		case errors.Is(err, sql.ErrNoRows):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, domai.ErrNoImages):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.Is(err, domai.ErrQuotaExceeded):
			middleware.IncVisionError("quota")
			http.Error(w, "vision quota exceeded", http.StatusTooManyRequests)
		case errors.Is(err, domai.ErrTimeout):
			middleware.IncVisionError("timeout")
			http.Error(w, "vision request timed out", http.StatusGatewayTimeout)
		case errors.Is(err, domai.ErrNetwork):
			middleware.IncVisionError("network")
			http.Error(w, err.Error(), http.StatusBadGateway)
		case errors.Is(err, domai.ErrParse):
			middleware.IncVisionError("parse")
			http.Error(w, err.Error(), http.StatusBadGateway)
		case errors.Is(err, domai.ErrMissingAPIKey):
			middleware.IncVisionError("missing_key")
			http.Error(w, "vision provider not configured", http.StatusServiceUnavailable)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// POST /v1/{tenant}/analyses
// Queues the full analysis in the background and answers immediately.
func (r *Router) handleAnalyzeItem(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequest("%v", err)
	}

	var body struct {
		ImageURLs   []string `json:"image_urls"`
		Title       string   `json:"title"`
		Category    string   `json:"category"`
		Condition   string   `json:"condition"`
		AskingPrice float64  `json:"asking_price"`
		Currency    string   `json:"currency"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	if err := middleware.ValidateImageURLs(body.ImageURLs); err != nil {
		return badRequest("%v", err)
	}
	if err := middleware.ValidateCondition(body.Condition); err != nil {
		return badRequest("%v", err)
	}

	a, err := r.analysisSvc.AnalyzeItemAsync(appanalysis.AnalyzeItemCommand{
		TenantID:    tenant,
		ImageURLs:   body.ImageURLs,
		Title:       middleware.SanitizeString(body.Title),
		Category:    middleware.SanitizeString(body.Category),
		Condition:   body.Condition,
		AskingPrice: body.AskingPrice,
		Currency:    body.Currency,
	})
	if err != nil {
		middleware.IncAnalysis("full", "rejected")
		return err
	}
	middleware.IncAnalysis("full", "queued")

	return writeJSON(w, http.StatusAccepted, map[string]any{
		"id":       a.ID,
		"status":   a.Status,
		"tenant":   tenant,
		"queuedAt": time.Now(),
		"message":  "analysis started in background",
	})
}

// GET /v1/{tenant}/analyses?page=&page_size=&status=&kind=&brand=&category=
func (r *Router) handleListAnalyses(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	filters := map[string]any{}
	for _, key := range []string{"status", "kind", "brand", "category"} {
		if v := req.URL.Query().Get(key); v != "" {
			filters[key] = middleware.SanitizeString(v)
		}
	}

	list, err := r.analysisSvc.Paginate(req.Context(), tenant, page, middleware.ValidateLimit(size), filters)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/{tenant}/analyses/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.analysisSvc.Latest(req.Context(), tenant, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/{tenant}/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return badRequest("%v", err)
	}

	a, err := r.analysisSvc.Get(req.Context(), tenant, domain.AnalysisID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, a)
}

// GET /v1/{tenant}/analyses/{id}/failures?limit=
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.analysisSvc.ListFailures(req.Context(), tenant, id, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.analysisSvc.Summary(req.Context(), tenant, middleware.ValidateDays(days))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, summary)
}

// POST /v1/{tenant}/prospect
func (r *Router) handleProspect(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequest("%v", err)
	}

	var body struct {
		ImageURLs []string `json:"image_urls"`
		Title     string   `json:"title"`
		Category  string   `json:"category"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	if err := middleware.ValidateImageURLs(body.ImageURLs); err != nil {
		return badRequest("%v", err)
	}

	p, err := r.analysisSvc.AnalyzeForProspecting(req.Context(), appanalysis.ProspectCommand{
		TenantID:  tenant,
		ImageURLs: body.ImageURLs,
		Title:     middleware.SanitizeString(body.Title),
		Category:  middleware.SanitizeString(body.Category),
	})
	if err != nil {
		middleware.IncAnalysis("prospect", "failed")
		return err
	}
	middleware.IncAnalysis("prospect", "done")
	return writeJSON(w, http.StatusOK, p)
}

// POST /v1/{tenant}/barcode
// Body: {"image_url": "..."} or {"barcode": "0123456789012"}
func (r *Router) handleBarcode(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequest("%v", err)
	}

	var body struct {
		ImageURL string `json:"image_url"`
		Barcode  string `json:"barcode"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	if body.ImageURL != "" {
		if err := middleware.ValidateImageURL(body.ImageURL); err != nil {
			return badRequest("%v", err)
		}
	}
	if body.Barcode != "" {
		if err := middleware.ValidateBarcode(body.Barcode); err != nil {
			return badRequest("%v", err)
		}
	}

	res, err := r.analysisSvc.AnalyzeBarcode(req.Context(), appanalysis.BarcodeCommand{
		TenantID: tenant,
		ImageURL: body.ImageURL,
		Barcode:  body.Barcode,
	})
	if err != nil {
		middleware.IncAnalysis("barcode", "failed")
		return err
	}
	middleware.IncAnalysis("barcode", "done")
	return writeJSON(w, http.StatusOK, res)
}

// POST /v1/{tenant}/ocr/text
func (r *Router) handleExtractText(w http.ResponseWriter, req *http.Request) error {
	if err := middleware.ValidateTenantID(chi.URLParam(req, "tenant")); err != nil {
		return badRequest("%v", err)
	}

	var body struct {
		ImageURLs []string `json:"image_urls"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	if err := middleware.ValidateImageURLs(body.ImageURLs); err != nil {
		return badRequest("%v", err)
	}

	out, err := r.visionSvc.ExtractText(req.Context(), body.ImageURLs)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, out)
}

// POST /v1/{tenant}/ocr/brands
func (r *Router) handleDetectBrands(w http.ResponseWriter, req *http.Request) error {
	if err := middleware.ValidateTenantID(chi.URLParam(req, "tenant")); err != nil {
		return badRequest("%v", err)
	}

	var body struct {
		ImageURLs []string `json:"image_urls"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	if err := middleware.ValidateImageURLs(body.ImageURLs); err != nil {
		return badRequest("%v", err)
	}

	out, err := r.visionSvc.DetectBrands(req.Context(), body.ImageURLs)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, out)
}

// POST /v1/{tenant}/ocr/colors
func (r *Router) handleDetectColors(w http.ResponseWriter, req *http.Request) error {
	if err := middleware.ValidateTenantID(chi.URLParam(req, "tenant")); err != nil {
		return badRequest("%v", err)
	}

	var body struct {
		ImageURL string `json:"image_url"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	if body.ImageURL != "" {
		if err := middleware.ValidateImageURL(body.ImageURL); err != nil {
			return badRequest("%v", err)
		}
	}

	out, err := r.visionSvc.DetectColors(req.Context(), body.ImageURL)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, out)
}

// POST /v1/{tenant}/pricing
// Pure computation, no AI call.
func (r *Router) handlePricing(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Price     float64 `json:"price"`
		Condition string  `json:"condition"`
		Currency  string  `json:"currency"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}

	cond, err := pricing.ParseCondition(body.Condition)
	if err != nil {
		return badRequest("%v", err)
	}
	out, err := pricing.Compute(body.Price, cond, body.Currency)
	if err != nil {
		return badRequest("%v", err)
	}
	return writeJSON(w, http.StatusOK, out)
}

// POST /v1/{tenant}/images  (multipart, field "file")
func (r *Router) handleUploadImage(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequest("%v", err)
	}
	if r.analysisSvc.Images == nil {
		return fmt.Errorf("image store not configured")
	}

	if err := req.ParseMultipartForm(20 << 20); err != nil {
		return badRequest("invalid multipart form: %v", err)
	}
	file, header, err := req.FormFile("file")
	if err != nil {
		return badRequest("missing file field: %v", err)
	}
	defer file.Close()

	key := fmt.Sprintf("%s/%s%s", tenant, uuid.New().String(), filepath.Ext(header.Filename))
	url, err := r.analysisSvc.Images.UploadImage(req.Context(), file, header.Size,
		header.Header.Get("Content-Type"), key)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusCreated, map[string]any{
		"url": url,
		"key": key,
	})
}
