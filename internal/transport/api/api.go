// Package api declares the HTTP surface of the catalog: routes, parameter
// binding and payloads. Handlers implement ServerInterface.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/sportdex/internal/domain/facility"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeNotFound         ErrorResponseCode = "not_found"
	ErrorResponseCodeEmptyCollection  ErrorResponseCode = "empty_collection"
	ErrorResponseCodeStoreUnavailable ErrorResponseCode = "store_unavailable"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// InstallationList is one page of installations.
type InstallationList struct {
	Items    []facility.Facility `json:"items"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
}

// CountResponse carries a record count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// AverageResponse carries the mean equipment count.
type AverageResponse struct {
	Average float64 `json:"average"`
}

// ScoredInstallation is a text search hit.
type ScoredInstallation struct {
	Installation facility.Facility `json:"installation"`
	Score        float64           `json:"score"`
}

// NearbyInstallation is a geo search hit. Distance is in meters.
type NearbyInstallation struct {
	Installation facility.Facility `json:"installation"`
	Distance     float64           `json:"distance"`
}

// Town is a town name with its [longitude, latitude] location.
type Town struct {
	Name     string     `json:"name"`
	Location [2]float64 `json:"location"`
}

// TownLocation is the result of a town coordinate lookup.
type TownLocation struct {
	Town
	Fallback bool `json:"fallback"`
}

// GeoSearchByTownResponse is a geo search from a resolved town.
type GeoSearchByTownResponse struct {
	Origin TownLocation         `json:"origin"`
	Items  []NearbyInstallation `json:"items"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	LastSync *time.Time        `json:"lastSync,omitempty"`
}

// ListInstallationsParams are the query parameters of GET /installations.
type ListInstallationsParams struct {
	Page     *int `form:"page,omitempty" json:"page,omitempty"`
	PageSize *int `form:"pageSize,omitempty" json:"pageSize,omitempty"`
}

// SearchInstallationsParams are the query parameters of GET /installations/search.
type SearchInstallationsParams struct {
	Query string `form:"query" json:"query"`
}

// GeoSearchParams are the query parameters of GET /installations/geosearch.
type GeoSearchParams struct {
	Lat      float64 `form:"lat" json:"lat"`
	Lng      float64 `form:"lng" json:"lng"`
	Distance float64 `form:"distance" json:"distance"`
}

// GeoSearchByTownParams are the query parameters of GET /installations/geosearch/town.
type GeoSearchByTownParams struct {
	Town     string  `form:"town" json:"town"`
	Distance float64 `form:"distance" json:"distance"`
}

// SuggestTownsParams are the query parameters of GET /towns/suggest.
type SuggestTownsParams struct {
	Prefix string `form:"prefix" json:"prefix"`
}

// TownLocationParams are the query parameters of GET /towns/location.
type TownLocationParams struct {
	Name string `form:"name" json:"name"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /installations)
	ListInstallations(w http.ResponseWriter, r *http.Request, params ListInstallationsParams)
	// (GET /installations/count)
	CountInstallations(w http.ResponseWriter, r *http.Request)
	// (GET /installations/random)
	RandomInstallation(w http.ResponseWriter, r *http.Request)
	// (GET /installations/search)
	SearchInstallations(w http.ResponseWriter, r *http.Request, params SearchInstallationsParams)
	// (GET /installations/geosearch)
	GeoSearchInstallations(w http.ResponseWriter, r *http.Request, params GeoSearchParams)
	// (GET /installations/geosearch/town)
	GeoSearchInstallationsByTown(w http.ResponseWriter, r *http.Request, params GeoSearchByTownParams)
	// (GET /installations/{id})
	GetInstallation(w http.ResponseWriter, r *http.Request, id string)
	// (GET /stats/max-equipments)
	MaxEquipments(w http.ResponseWriter, r *http.Request)
	// (GET /stats/by-activity)
	CountByActivity(w http.ResponseWriter, r *http.Request)
	// (GET /stats/average-equipments)
	AverageEquipments(w http.ResponseWriter, r *http.Request)
	// (GET /towns/suggest)
	SuggestTowns(w http.ResponseWriter, r *http.Request, params SuggestTownsParams)
	// (GET /towns/location)
	TownLocation(w http.ResponseWriter, r *http.Request, params TownLocationParams)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a parameter that could not be bound.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseRouter       chi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// serverInterfaceWrapper binds parameters before calling the handler.
type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) bindQuery(
	w http.ResponseWriter, r *http.Request, name string, required bool, dest any,
) bool {
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), dest); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (siw *serverInterfaceWrapper) ListInstallations(w http.ResponseWriter, r *http.Request) {
	var params ListInstallationsParams
	if !siw.bindQuery(w, r, "page", false, &params.Page) ||
		!siw.bindQuery(w, r, "pageSize", false, &params.PageSize) {
		return
	}
	siw.handler.ListInstallations(w, r, params)
}

func (siw *serverInterfaceWrapper) SearchInstallations(w http.ResponseWriter, r *http.Request) {
	var params SearchInstallationsParams
	if !siw.bindQuery(w, r, "query", false, &params.Query) {
		return
	}
	siw.handler.SearchInstallations(w, r, params)
}

func (siw *serverInterfaceWrapper) GeoSearchInstallations(w http.ResponseWriter, r *http.Request) {
	var params GeoSearchParams
	if !siw.bindQuery(w, r, "lat", true, &params.Lat) ||
		!siw.bindQuery(w, r, "lng", true, &params.Lng) ||
		!siw.bindQuery(w, r, "distance", true, &params.Distance) {
		return
	}
	siw.handler.GeoSearchInstallations(w, r, params)
}

func (siw *serverInterfaceWrapper) GeoSearchInstallationsByTown(w http.ResponseWriter, r *http.Request) {
	var params GeoSearchByTownParams
	if !siw.bindQuery(w, r, "town", false, &params.Town) ||
		!siw.bindQuery(w, r, "distance", true, &params.Distance) {
		return
	}
	siw.handler.GeoSearchInstallationsByTown(w, r, params)
}

func (siw *serverInterfaceWrapper) GetInstallation(w http.ResponseWriter, r *http.Request) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return
	}
	siw.handler.GetInstallation(w, r, id)
}

func (siw *serverInterfaceWrapper) SuggestTowns(w http.ResponseWriter, r *http.Request) {
	var params SuggestTownsParams
	if !siw.bindQuery(w, r, "prefix", false, &params.Prefix) {
		return
	}
	siw.handler.SuggestTowns(w, r, params)
}

func (siw *serverInterfaceWrapper) TownLocation(w http.ResponseWriter, r *http.Request) {
	var params TownLocationParams
	if !siw.bindQuery(w, r, "name", false, &params.Name) {
		return
	}
	siw.handler.TownLocation(w, r, params)
}

// HandlerWithOptions mounts every route of si on options.BaseRouter.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := &serverInterfaceWrapper{handler: si, errorHandlerFunc: options.ErrorHandlerFunc}

	r.Group(func(r chi.Router) {
		r.Get("/installations", wrapper.ListInstallations)
		r.Get("/installations/count", si.CountInstallations)
		r.Get("/installations/random", si.RandomInstallation)
		r.Get("/installations/search", wrapper.SearchInstallations)
		r.Get("/installations/geosearch", wrapper.GeoSearchInstallations)
		r.Get("/installations/geosearch/town", wrapper.GeoSearchInstallationsByTown)
		r.Get("/installations/{id}", wrapper.GetInstallation)
		r.Get("/stats/max-equipments", si.MaxEquipments)
		r.Get("/stats/by-activity", si.CountByActivity)
		r.Get("/stats/average-equipments", si.AverageEquipments)
		r.Get("/towns/suggest", wrapper.SuggestTowns)
		r.Get("/towns/location", wrapper.TownLocation)
		r.Get("/health", si.HealthCheck)
		r.Get("/metrics", si.Metrics)
	})
	return r
}
