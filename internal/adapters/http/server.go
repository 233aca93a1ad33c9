package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"brandguard/internal/domain"
	"brandguard/internal/export"
	"brandguard/internal/ports"
)

// OperatorHeader names the operator acting on a request.
const OperatorHeader = "X-Operator"

// Server serves the operator API described in api/openapi.yaml.
type Server struct {
	brands    ports.Brands
	scanner   ports.Scanner
	lifecycle ports.Lifecycle
}

func New(brands ports.Brands, scanner ports.Scanner, lifecycle ports.Lifecycle) *Server {
	return &Server{brands: brands, scanner: scanner, lifecycle: lifecycle}
}

// Routes returns a chi.Router with every operation mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.getHealthz)

	r.Route("/brands", func(r chi.Router) {
		r.Get("/", s.listBrands)
		r.Post("/", s.createBrand)
		r.Route("/{brandID}", func(r chi.Router) {
			r.Get("/", s.getBrand)
			r.Post("/scans", s.triggerScan)
			r.Get("/scans", s.listScans)
			r.Get("/imposters", s.listImposters)
			r.Post("/imposters", s.addImposter)
			r.Get("/imposters/export", s.exportImposters)
		})
	})
	r.Get("/scans/{scanID}", s.getScan)
	r.Put("/imposters/{imposterID}/status", s.transitionImposter)
	r.Put("/imposters/{imposterID}/reports/{reportType}", s.upsertReport)
	return r
}

func (s *Server) getHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Brands

func (s *Server) listBrands(w http.ResponseWriter, r *http.Request) {
	list, err := s.brands.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]brandJSON, 0, len(list))
	for _, b := range list {
		out = append(out, toBrand(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createBrand(w http.ResponseWriter, r *http.Request) {
	var body createBrandRequest
	if !decode(w, r, &body) {
		return
	}
	b, err := s.brands.Register(r.Context(), body.Name, body.Domain)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBrand(b))
}

func (s *Server) getBrand(w http.ResponseWriter, r *http.Request) {
	brandID, ok := pathID(w, r, "brandID")
	if !ok {
		return
	}
	b, err := s.brands.Get(r.Context(), brandID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBrand(b))
}

// Scans

func (s *Server) triggerScan(w http.ResponseWriter, r *http.Request) {
	brandID, ok := pathID(w, r, "brandID")
	if !ok {
		return
	}
	var body triggerScanRequest
	if r.ContentLength != 0 && !decode(w, r, &body) {
		return
	}
	sum, err := s.scanner.Trigger(r.Context(), ports.ScanRequest{
		BrandID:     brandID,
		Keyword:     body.Keyword,
		Geolocation: body.Geolocation,
		PageCount:   body.PageCount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSummary(sum))
}

func (s *Server) listScans(w http.ResponseWriter, r *http.Request) {
	brandID, ok := pathID(w, r, "brandID")
	if !ok {
		return
	}
	list, err := s.scanner.ListScans(r.Context(), brandID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]scanJSON, 0, len(list))
	for _, sc := range list {
		out = append(out, toScan(sc))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getScan(w http.ResponseWriter, r *http.Request) {
	scanID, ok := pathID(w, r, "scanID")
	if !ok {
		return
	}
	sc, err := s.scanner.GetScan(r.Context(), scanID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScan(sc))
}

// Imposters

func (s *Server) imposters(w http.ResponseWriter, r *http.Request) (string, []domain.Imposter, bool) {
	brandID, ok := pathID(w, r, "brandID")
	if !ok {
		return "", nil, false
	}
	var raw *string
	if err := runtime.BindQueryParameter("form", true, false, "status", r.URL.Query(), &raw); err != nil {
		writeError(w, r, domain.Invalid("status: %v", err))
		return "", nil, false
	}
	var filter *domain.ImposterStatus
	if raw != nil && *raw != "" {
		st, err := domain.ParseImposterStatus(*raw)
		if err != nil {
			writeError(w, r, err)
			return "", nil, false
		}
		filter = &st
	}
	list, err := s.lifecycle.ListImposters(r.Context(), brandID, filter)
	if err != nil {
		writeError(w, r, err)
		return "", nil, false
	}
	return brandID, list, true
}

func (s *Server) listImposters(w http.ResponseWriter, r *http.Request) {
	_, list, ok := s.imposters(w, r)
	if !ok {
		return
	}
	out := make([]imposterJSON, 0, len(list))
	for _, imp := range list {
		out = append(out, toImposter(imp))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) exportImposters(w http.ResponseWriter, r *http.Request) {
	brandID, list, ok := s.imposters(w, r)
	if !ok {
		return
	}
	brand, err := s.brands.Get(r.Context(), brandID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-imposters.xlsx"`, brand.Domain))
	if err := export.WriteXLSX(w, brand, list); err != nil {
		log.Printf("[http] export %s: %v", brandID, err)
	}
}

func (s *Server) addImposter(w http.ResponseWriter, r *http.Request) {
	brandID, ok := pathID(w, r, "brandID")
	if !ok {
		return
	}
	operator, ok := requireOperator(w, r)
	if !ok {
		return
	}
	var body addImposterRequest
	if !decode(w, r, &body) {
		return
	}
	imp, err := s.lifecycle.AddManualImposter(r.Context(), brandID, body.Domain, body.Notes, operator)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toImposter(imp))
}

func (s *Server) transitionImposter(w http.ResponseWriter, r *http.Request) {
	imposterID, ok := pathID(w, r, "imposterID")
	if !ok {
		return
	}
	operator, ok := requireOperator(w, r)
	if !ok {
		return
	}
	var body transitionRequest
	if !decode(w, r, &body) {
		return
	}
	next, err := domain.ParseImposterStatus(body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	imp, err := s.lifecycle.TransitionImposterStatus(r.Context(), imposterID, next, operator)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toImposter(imp))
}

func (s *Server) upsertReport(w http.ResponseWriter, r *http.Request) {
	imposterID, ok := pathID(w, r, "imposterID")
	if !ok {
		return
	}
	rawType, ok := pathParam(w, r, "reportType")
	if !ok {
		return
	}
	rt, err := domain.ParseReportType(rawType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body reportUpdateRequest
	if !decode(w, r, &body) {
		return
	}
	st, err := domain.ParseReportStatus(body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.lifecycle.UpsertReportStatus(r.Context(), imposterID, rt, domain.ReportUpdate{
		Status:           st,
		TicketNumber:     body.TicketNumber,
		Notes:            body.Notes,
		ResponseReceived: body.ResponseReceived,
		ReportedBy:       strings.TrimSpace(r.Header.Get(OperatorHeader)),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReport(rep))
}

// helpers

func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, r, domain.Invalid("%s: %v", name, err))
		return "", false
	}
	return v, true
}

// pathID binds an entity id. Malformed ids cannot name a stored row.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v, ok := pathParam(w, r, name)
	if !ok {
		return "", false
	}
	if _, err := uuid.Parse(v); err != nil {
		writeError(w, r, fmt.Errorf("%s %q: %w", name, v, domain.ErrNotFound))
		return "", false
	}
	return v, true
}

func requireOperator(w http.ResponseWriter, r *http.Request) (string, bool) {
	op := strings.TrimSpace(r.Header.Get(OperatorHeader))
	if op == "" {
		writeError(w, r, domain.Invalid("%s header is required", OperatorHeader))
		return "", false
	}
	return op, true
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, domain.Invalid("request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateDomain), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProviderAuth):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		log.Printf("[http] %s %s: %v", r.Method, r.URL.Path, err)
		msg = http.StatusText(code)
	}
	writeJSON(w, code, errorJSON{Error: msg})
}
