package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/specdex/internal/domain"
	coloruc "github.com/kailas-cloud/specdex/internal/usecase/color"
	documentuc "github.com/kailas-cloud/specdex/internal/usecase/document"
	facetuc "github.com/kailas-cloud/specdex/internal/usecase/facet"
	healthuc "github.com/kailas-cloud/specdex/internal/usecase/health"
	listinguc "github.com/kailas-cloud/specdex/internal/usecase/listing"
	materializeuc "github.com/kailas-cloud/specdex/internal/usecase/materialize"
	specuc "github.com/kailas-cloud/specdex/internal/usecase/specification"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Services bundles the usecases served over HTTP.
type Services struct {
	Specifications *specuc.Service
	Values         *materializeuc.Service
	Facets         *facetuc.Service
	Listing        *listinguc.Service
	Documents      *documentuc.Service
	Colors         *coloruc.Service
	Health         *healthuc.Service
}

// Server serves the HTTP API.
type Server struct {
	svc           Services
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, logger *zap.Logger) *Server {
	s := &Server{svc: svc, logger: logger}
	// Specific not-found sentinels wrap ErrNotFound and must come first.
	s.errorHandlers = []errorHandler{
		revisionConflictHandler,
		sentinelHandler(domain.ErrSpecificationNotFound, http.StatusNotFound, ErrorCodeSpecificationNotFound),
		sentinelHandler(domain.ErrAttributeNotFound, http.StatusNotFound, ErrorCodeAttributeNotFound),
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, ErrorCodeDocumentNotFound),
		sentinelHandler(domain.ErrValueNotFound, http.StatusNotFound, ErrorCodeValueNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, ErrorCodeAlreadyExists),
		sentinelHandler(domain.ErrConfiguration, http.StatusUnprocessableEntity, ErrorCodeConfigurationError),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, ErrorCodeValidationFailed),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/specifications", func(r chi.Router) {
		r.Post("/", s.CreateSpecification)
		r.Get("/", s.ListSpecifications)
		r.Route("/{spec}", func(r chi.Router) {
			r.Get("/", s.GetSpecification)
			r.Put("/", s.UpdateSpecification)
			r.Delete("/", s.DeleteSpecification)
			r.Post("/attributes", s.DefineAttribute)
			r.Post("/attributes/{attribute}/rename", s.RenameAttribute)
			r.Post("/values", s.CreateValues)
		})
	})

	r.Route("/doctypes/{doctype}", func(r chi.Router) {
		r.Get("/apply-on", s.GetApplyOnFields)
		r.Get("/fields", s.GetDataFieldnames)
		r.Get("/facets", s.GetFacetCatalog)
		r.Post("/facets/select", s.SelectDocuments)
		r.Post("/listing", s.QueryListing)
		r.Get("/documents", s.ListDocuments)
		r.Post("/documents/batch", s.BatchUpsertDocuments)
		r.Route("/documents/{name}", func(r chi.Router) {
			r.Put("/", s.UpsertDocument)
			r.Get("/", s.GetDocument)
			r.Delete("/", s.DeleteDocument)
			r.Get("/values", s.GetValues)
			r.Put("/values", s.UpdateValues)
		})
	})

	r.Get("/colors", s.ListColors)
	r.Put("/colors/{color}", s.UpsertColor)
}

// HealthCheck reports store and job runner health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

// pathParam binds a required simple-style path parameter.
func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter "+name+": "+err.Error())
		return "", false
	}
	return v, true
}

// queryParam binds an optional form-style query parameter into dest.
func queryParam(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter "+name+": "+err.Error())
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// safeDomainMessage exposes the validation detail of client errors and
// only the sentinel text of everything else.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidSchema) || errors.Is(err, domain.ErrConfiguration) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrSpecificationNotFound,
		domain.ErrAttributeNotFound,
		domain.ErrDocumentNotFound,
		domain.ErrValueNotFound,
		domain.ErrNotFound,
		domain.ErrAlreadyExists,
		domain.ErrRevisionConflict,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// errorCode maps a domain error to its API code without writing a response.
func errorCode(err error) ErrorCode {
	codes := []struct {
		sentinel error
		code     ErrorCode
	}{
		{domain.ErrRevisionConflict, ErrorCodeRevisionConflict},
		{domain.ErrSpecificationNotFound, ErrorCodeSpecificationNotFound},
		{domain.ErrAttributeNotFound, ErrorCodeAttributeNotFound},
		{domain.ErrDocumentNotFound, ErrorCodeDocumentNotFound},
		{domain.ErrValueNotFound, ErrorCodeValueNotFound},
		{domain.ErrNotFound, ErrorCodeNotFound},
		{domain.ErrAlreadyExists, ErrorCodeAlreadyExists},
		{domain.ErrConfiguration, ErrorCodeConfigurationError},
		{domain.ErrInvalidSchema, ErrorCodeValidationFailed},
	}
	for _, c := range codes {
		if errors.Is(err, c.sentinel) {
			return c.code
		}
	}
	return ErrorCodeInternalError
}

func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func revisionConflictHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrRevisionConflict) {
		return false
	}
	var rce *domain.RevisionConflictError
	if errors.As(err, &rce) {
		w.Header().Set("ETag", etag(rce.CurrentRevision))
		writeJSON(w, http.StatusConflict, map[string]any{
			"code":             ErrorCodeRevisionConflict,
			"message":          msg,
			"current_revision": rce.CurrentRevision,
		})
		return true
	}
	writeError(w, http.StatusConflict, ErrorCodeRevisionConflict, msg)
	return true
}

func etag(revision int) string { return strconv.Quote(strconv.Itoa(revision)) }

// ifMatch parses an If-Match revision; absent means no precondition.
func ifMatch(r *http.Request) (int, error) {
	h := r.Header.Get("If-Match")
	if h == "" || h == "*" {
		return 0, nil
	}
	if unq, err := strconv.Unquote(h); err == nil {
		h = unq
	}
	rev, err := strconv.Atoi(h)
	if err != nil || rev <= 0 {
		return 0, errors.New("If-Match must be a positive revision")
	}
	return rev, nil
}
