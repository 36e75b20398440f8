package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sportdex/internal/domain"
	"github.com/kailas-cloud/sportdex/internal/domain/facility"
	"github.com/kailas-cloud/sportdex/internal/domain/town"
	"github.com/kailas-cloud/sportdex/internal/metrics"
	"github.com/kailas-cloud/sportdex/internal/transport/api"
	healthuc "github.com/kailas-cloud/sportdex/internal/usecase/health"
)

// DefaultPageSize is used when a list request has no pageSize.
const DefaultPageSize = 20

// Installations is the query side of the facility catalog.
type Installations interface {
	Get(ctx context.Context, id string) (facility.Facility, error)
	List(ctx context.Context, page, pageSize int) ([]facility.Facility, error)
	Count(ctx context.Context) (int64, error)
	Random(ctx context.Context) (facility.Facility, error)
	MaxEquipments(ctx context.Context) (facility.Facility, error)
	CountByActivity(ctx context.Context) ([]facility.ActivityCount, error)
	AverageEquipments(ctx context.Context) (float64, error)
	Search(ctx context.Context, query string) ([]facility.Scored, error)
	GeoSearch(ctx context.Context, lat, lng, maxDistance float64) ([]facility.Nearby, error)
	GeoSearchByTown(ctx context.Context, townName string, maxDistance float64) (town.Resolution, []facility.Nearby, error)
}

// Towns answers name completion and coordinate lookups.
type Towns interface {
	Suggest(ctx context.Context, prefix string) ([]town.Town, error)
	Resolve(ctx context.Context, name string) (town.Resolution, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements api.ServerInterface.
type Server struct {
	installations   Installations
	towns           Towns
	health          HealthChecker
	logger          *zap.Logger
	defaultPageSize int
	errorHandlers   []errorHandler
}

var _ api.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(installations Installations, towns Towns, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		installations:   installations,
		towns:           towns,
		health:          health,
		logger:          logger,
		defaultPageSize: DefaultPageSize,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, api.ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, api.ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrInvalidCoordinates, http.StatusBadRequest, api.ErrorResponseCodeBadRequest),
		sentinelHandler(domain.ErrEmptyCollection, http.StatusConflict, api.ErrorResponseCodeEmptyCollection),
		sentinelHandler(domain.ErrStoreUnavailable,
			http.StatusServiceUnavailable, api.ErrorResponseCodeStoreUnavailable),
	}
	return s
}

// WithDefaultPageSize sets the page size used when a list request omits it.
func (s *Server) WithDefaultPageSize(n int) *Server {
	if n > 0 {
		s.defaultPageSize = n
	}
	return s
}

// ListInstallations handles GET /installations.
func (s *Server) ListInstallations(w http.ResponseWriter, r *http.Request, params api.ListInstallationsParams) {
	page, pageSize := 0, s.defaultPageSize
	if params.Page != nil {
		page = *params.Page
	}
	if params.PageSize != nil {
		pageSize = *params.PageSize
	}

	items, err := s.installations.List(r.Context(), page, pageSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.InstallationList{Items: items, Page: page, PageSize: pageSize})
}

// CountInstallations handles GET /installations/count.
func (s *Server) CountInstallations(w http.ResponseWriter, r *http.Request) {
	n, err := s.installations.Count(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.CountResponse{Count: n})
}

// RandomInstallation handles GET /installations/random.
func (s *Server) RandomInstallation(w http.ResponseWriter, r *http.Request) {
	f, err := s.installations.Random(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// GetInstallation handles GET /installations/{id}.
func (s *Server) GetInstallation(w http.ResponseWriter, r *http.Request, id string) {
	f, err := s.installations.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// SearchInstallations handles GET /installations/search.
func (s *Server) SearchInstallations(w http.ResponseWriter, r *http.Request, params api.SearchInstallationsParams) {
	hits, err := s.installations.Search(r.Context(), params.Query)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	metrics.ObserveResults("search", len(hits))
	out := make([]api.ScoredInstallation, len(hits))
	for i, h := range hits {
		out[i] = api.ScoredInstallation{Installation: h.Facility, Score: h.Score}
	}
	writeJSON(w, http.StatusOK, out)
}

// GeoSearchInstallations handles GET /installations/geosearch.
func (s *Server) GeoSearchInstallations(w http.ResponseWriter, r *http.Request, params api.GeoSearchParams) {
	hits, err := s.installations.GeoSearch(r.Context(), params.Lat, params.Lng, params.Distance)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	metrics.ObserveResults("geosearch", len(hits))
	writeJSON(w, http.StatusOK, nearbyToAPI(hits))
}

// GeoSearchInstallationsByTown handles GET /installations/geosearch/town.
func (s *Server) GeoSearchInstallationsByTown(
	w http.ResponseWriter, r *http.Request, params api.GeoSearchByTownParams,
) {
	origin, hits, err := s.installations.GeoSearchByTown(r.Context(), params.Town, params.Distance)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	metrics.ObserveResults("geosearch_town", len(hits))
	if origin.Fallback {
		metrics.TownFallback()
	}
	writeJSON(w, http.StatusOK, api.GeoSearchByTownResponse{
		Origin: resolutionToAPI(origin),
		Items:  nearbyToAPI(hits),
	})
}

// MaxEquipments handles GET /stats/max-equipments.
func (s *Server) MaxEquipments(w http.ResponseWriter, r *http.Request) {
	f, err := s.installations.MaxEquipments(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// CountByActivity handles GET /stats/by-activity.
func (s *Server) CountByActivity(w http.ResponseWriter, r *http.Request) {
	counts, err := s.installations.CountByActivity(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if counts == nil {
		counts = []facility.ActivityCount{}
	}
	writeJSON(w, http.StatusOK, counts)
}

// AverageEquipments handles GET /stats/average-equipments.
func (s *Server) AverageEquipments(w http.ResponseWriter, r *http.Request) {
	avg, err := s.installations.AverageEquipments(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.AverageResponse{Average: avg})
}

// SuggestTowns handles GET /towns/suggest.
func (s *Server) SuggestTowns(w http.ResponseWriter, r *http.Request, params api.SuggestTownsParams) {
	towns, err := s.towns.Suggest(r.Context(), params.Prefix)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	metrics.ObserveResults("town_suggest", len(towns))
	out := make([]api.Town, len(towns))
	for i, t := range towns {
		out[i] = api.Town{Name: t.Name, Location: [2]float64{t.Location.Lon(), t.Location.Lat()}}
	}
	writeJSON(w, http.StatusOK, out)
}

// TownLocation handles GET /towns/location.
func (s *Server) TownLocation(w http.ResponseWriter, r *http.Request, params api.TownLocationParams) {
	res, err := s.towns.Resolve(r.Context(), params.Name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if res.Fallback {
		metrics.TownFallback()
	}
	writeJSON(w, http.StatusOK, resolutionToAPI(res))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, api.HealthResponse{
		Status:   string(report.Status),
		Checks:   checks,
		LastSync: report.LastSync,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func nearbyToAPI(hits []facility.Nearby) []api.NearbyInstallation {
	out := make([]api.NearbyInstallation, len(hits))
	for i, h := range hits {
		out[i] = api.NearbyInstallation{Installation: h.Facility, Distance: h.Distance}
	}
	return out
}

func resolutionToAPI(r town.Resolution) api.TownLocation {
	return api.TownLocation{
		Town:     api.Town{Name: r.Name, Location: [2]float64{r.Location.Lon(), r.Location.Lat()}},
		Fallback: r.Fallback,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code api.ErrorResponseCode, message string) {
	writeJSON(w, status, api.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidQuery,
		domain.ErrInvalidCoordinates,
		domain.ErrEmptyCollection,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code api.ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.logger.With(zap.String("path", r.URL.Path))
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, api.ErrorResponseCodeInternalError, "internal error")
}
