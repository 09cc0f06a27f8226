package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/DriveMatchAI/drivematch-mvp/engine/advisor"
	"github.com/DriveMatchAI/drivematch-mvp/engine/domain"
	"github.com/DriveMatchAI/drivematch-mvp/engine/similar"
	"github.com/DriveMatchAI/drivematch-mvp/pkg/fn"
	"github.com/DriveMatchAI/drivematch-mvp/pkg/metrics"
)

// defaultTrendingLimit applies when GET /api/vehicles/trending carries no
// limit parameter. The catalog caps it further at 300.
const defaultTrendingLimit = 100

// listLimit caps GET /api/vehicles result sets.
const listLimit = 300

// vehicleCatalog is the full repository surface the API needs. Both
// catalog.Store and catalog.Memory satisfy it.
type vehicleCatalog interface {
	advisor.Catalog
	similar.Catalog
	FindByIDs(ctx context.Context, ids []string) ([]domain.Vehicle, error)
	Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error)
	Seed(ctx context.Context, vehicles []domain.Vehicle) (inserted, skipped int, err error)
}

type api struct {
	catalog vehicleCatalog
	advisor *advisor.Service
	similar *similar.Service
	events  *analytics
	log     *slog.Logger

	advisorQueries   *metrics.Counter
	advisorFallbacks *metrics.Counter
	similarLookups   *metrics.Counter
}

// newAPI wires all routes onto a ServeMux.
func newAPI(store vehicleCatalog, adv *advisor.Service, sim *similar.Service, events *analytics, reg *metrics.Registry, log *slog.Logger) http.Handler {
	a := &api{
		catalog: store,
		advisor: adv,
		similar: sim,
		events:  events,
		log:     log,

		advisorQueries:   reg.Counter("advisor_queries_total", "Total advisor queries."),
		advisorFallbacks: reg.Counter("advisor_fallbacks_total", "Advisor queries served by the trending fallback."),
		similarLookups:   reg.Counter("similar_lookups_total", "Total similarity lookups."),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("POST /api/advisor", a.handleAdvisor)
	mux.HandleFunc("GET /api/vehicles", a.handleListVehicles)
	mux.HandleFunc("POST /api/vehicles", a.handleCreateVehicle)
	mux.HandleFunc("POST /api/vehicles/seed", a.handleSeed)
	mux.HandleFunc("GET /api/vehicles/trending", a.handleTrending)
	mux.HandleFunc("POST /api/vehicles/compare", a.handleCompare)
	mux.HandleFunc("GET /api/vehicles/similar/{id}", a.handleSimilar)
	mux.HandleFunc("GET /api/vehicles/{id}", a.handleGetVehicle)
	mux.Handle("GET /metrics", reg.Handler())
	return mux
}

func (a *api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AdvisorRequest is the JSON body for POST /api/advisor.
type AdvisorRequest struct {
	Query string `json:"query"`
}

func (a *api) handleAdvisor(w http.ResponseWriter, r *http.Request) {
	var req AdvisorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, a.log, badRequest("invalid request body"))
		return
	}

	advice, err := a.advisor.Advise(r.Context(), req.Query)
	if err != nil {
		writeError(w, a.log, err)
		return
	}

	a.advisorQueries.Inc()
	if advice.Fallback {
		a.advisorFallbacks.Inc()
	}
	a.events.advisorQueried(r.Context(), advice)

	writeJSON(w, http.StatusOK, advice)
}

// SimilarResponse is the JSON response for GET /api/vehicles/similar/{id}.
type SimilarResponse struct {
	Base    domain.Vehicle   `json:"base"`
	Similar []domain.Vehicle `json:"similar"`
}

func (a *api) handleSimilar(w http.ResponseWriter, r *http.Request) {
	base, matches, err := a.similar.RankSimilar(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, a.log, err)
		return
	}

	a.similarLookups.Inc()
	a.events.similarRanked(r.Context(), base.ID, len(matches))

	if matches == nil {
		matches = []domain.Vehicle{}
	}
	writeJSON(w, http.StatusOK, SimilarResponse{Base: base, Similar: matches})
}

func (a *api) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	f := domain.Filter{}
	q := r.URL.Query()
	if name := q.Get("name"); name != "" {
		f[domain.FieldName] = domain.Contains(name)
	}
	if brand := q.Get("brand"); brand != "" {
		f[domain.FieldBrand] = domain.Contains(brand)
	}
	if typ := q.Get("type"); typ != "" {
		if _, ok := domain.ValidVehicleTypes[domain.VehicleType(strings.ToLower(typ))]; !ok {
			writeError(w, a.log, domain.NewValidationError("type", typ, domain.ErrInvalidType))
			return
		}
		f[domain.FieldType] = domain.Eq(strings.ToLower(typ))
	}
	minPrice, err := floatParam(q.Get("minPrice"))
	if err != nil {
		writeError(w, a.log, domain.NewValidationError("minPrice", q.Get("minPrice"), domain.ErrInvalidPrice))
		return
	}
	maxPrice, err := floatParam(q.Get("maxPrice"))
	if err != nil {
		writeError(w, a.log, domain.NewValidationError("maxPrice", q.Get("maxPrice"), domain.ErrInvalidPrice))
		return
	}
	if minPrice != nil || maxPrice != nil {
		f[domain.FieldPrice] = domain.Cond{Kind: domain.CondRange, Min: minPrice, Max: maxPrice}
	}

	vehicles, err := a.catalog.FindByFilter(r.Context(), f, domain.Sort{}, listLimit)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles, "count": len(vehicles)})
}

func (a *api) handleTrending(w http.ResponseWriter, r *http.Request) {
	limit := defaultTrendingLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, a.log, badRequest("limit must be a positive integer"))
			return
		}
		limit = n
	}

	vehicles, err := a.catalog.FindTrending(r.Context(), limit)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles, "count": len(vehicles)})
}

func (a *api) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := a.catalog.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *api) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var v domain.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, a.log, badRequest("invalid request body"))
		return
	}

	created, err := a.catalog.Create(r.Context(), v)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// SeedRequest is the JSON body for POST /api/vehicles/seed.
type SeedRequest struct {
	Vehicles []domain.Vehicle `json:"vehicles"`
}

// SeedResponse reports seeding counts.
type SeedResponse struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

func (a *api) handleSeed(w http.ResponseWriter, r *http.Request) {
	var req SeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, a.log, badRequest("invalid request body"))
		return
	}
	if len(req.Vehicles) == 0 {
		writeError(w, a.log, badRequest("vehicles is required"))
		return
	}

	inserted, skipped, err := a.catalog.Seed(r.Context(), req.Vehicles)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, SeedResponse{Inserted: inserted, Skipped: skipped})
}

// CompareRequest is the JSON body for POST /api/vehicles/compare.
type CompareRequest struct {
	IDs []string `json:"ids"`
}

func (a *api) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, a.log, badRequest("invalid request body"))
		return
	}

	ids := fn.Unique(req.IDs)
	if len(ids) < 2 {
		writeError(w, a.log, domain.NewValidationError("ids", strings.Join(req.IDs, ","), domain.ErrTooFewIDs))
		return
	}

	vehicles, err := a.catalog.FindByIDs(r.Context(), ids)
	if err != nil {
		writeError(w, a.log, err)
		return
	}
	if vehicles == nil {
		vehicles = []domain.Vehicle{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vehicles, "count": len(vehicles)})
}

// --- Response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errBadRequest marks caller mistakes that carry a plain message.
type errBadRequest struct{ msg string }

func (e errBadRequest) Error() string { return e.msg }

func badRequest(msg string) error { return errBadRequest{msg: msg} }

// writeError maps domain errors to HTTP statuses. Validation failures and
// malformed input are 400, missing vehicles 404, everything else 500.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	var ve *domain.ValidationError
	var br errBadRequest
	switch {
	case errors.As(err, &br):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": br.msg})
	case errors.As(err, &ve), errors.Is(err, domain.ErrEmptyQuery), errors.Is(err, domain.ErrTooFewIDs), errors.Is(err, domain.ErrInvalidVehicle):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrVehicleNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "vehicle not found"})
	default:
		log.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func floatParam(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	if f < 0 {
		return nil, badRequest("price must not be negative")
	}
	return &f, nil
}
