package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nexacare/caresearch/internal/domain"
	"github.com/nexacare/caresearch/internal/domain/caregiver"
	domprofile "github.com/nexacare/caresearch/internal/domain/profile"
	"github.com/nexacare/caresearch/internal/domain/search/query"
	"github.com/nexacare/caresearch/internal/domain/search/result"
	"github.com/nexacare/caresearch/internal/metrics"
	healthuc "github.com/nexacare/caresearch/internal/usecase/health"
	profileuc "github.com/nexacare/caresearch/internal/usecase/profile"
	searchuc "github.com/nexacare/caresearch/internal/usecase/search"
)

// Error codes returned in JSON error responses.
const (
	codeBadRequest          = "bad_request"
	codeInvalidInput        = "invalid_input"
	codeUnauthorized        = "unauthorized"
	codeProfileNotFound     = "profile_not_found"
	codeUpstreamUnavailable = "upstream_unavailable"
	codeStoreUnavailable    = "store_unavailable"
	codeInternalError       = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API over the search and profile services.
type Server struct {
	search        *searchuc.Service
	profiles      *profileuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	profiles *profileuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:   search,
		profiles: profiles,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeInvalidInput),
		sentinelHandler(domain.ErrProfileNotFound, http.StatusNotFound, codeProfileNotFound),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeUpstreamUnavailable),
		sentinelHandler(domain.ErrVectorIndex, http.StatusBadGateway, codeUpstreamUnavailable),
		sentinelHandler(domain.ErrStore, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// Routes mounts all endpoints on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/search", s.SearchCaregivers)
	r.Get("/v1/me/profile", s.GetProfile)
	r.Put("/v1/me/charges", s.PutCharges)
	r.Post("/v1/me/reindex", s.Reindex)
	r.Delete("/v1/me/index", s.Unindex)
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)
}

// --- Request / response DTOs ---

type searchRequest struct {
	SearchQuery string    `json:"searchQuery"`
	ServiceType string    `json:"serviceType,omitempty"`
	SortBy      string    `json:"sortBy,omitempty"`
	PriceRange  []float64 `json:"priceRange,omitempty"`
}

type chargesDTO struct {
	HourlyRate *float64 `json:"hourlyRate"`
	VisitFee   *float64 `json:"visitFee"`
	Currency   string   `json:"currency"`
}

type userSummaryDTO struct {
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

type caregiverItemDTO struct {
	ID                 string         `json:"id"`
	Experience         int            `json:"experience"`
	Specializations    []string       `json:"specializations"`
	Languages          []string       `json:"languages"`
	VerificationStatus string         `json:"verificationStatus"`
	Description        string         `json:"description,omitempty"`
	Charges            *chargesDTO    `json:"charges"`
	User               userSummaryDTO `json:"user"`
	ReviewCount        int            `json:"reviewCount"`
	AverageRating      float64        `json:"averageRating"`
}

type searchResponse struct {
	Items []caregiverItemDTO `json:"items"`
	Total int                `json:"total"`
}

type chargesRequest struct {
	HourlyRate *float64 `json:"hourlyRate"`
	VisitFee   *float64 `json:"visitFee"`
	Currency   string   `json:"currency"`
}

type addressDTO struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

type accountDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Image         string `json:"image,omitempty"`
	ContactNumber string `json:"contactNumber,omitempty"`
}

type profileResponse struct {
	Role      string            `json:"role"`
	Account   accountDTO        `json:"account"`
	Address   *addressDTO       `json:"address,omitempty"`
	Caregiver *caregiverItemDTO `json:"caregiver,omitempty"`
}

type reindexResponse struct {
	VectorID string `json:"vectorId"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Handlers ---

// SearchCaregivers handles POST /v1/search.
func (s *Server) SearchCaregivers(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	var priceRange *query.PriceRange
	if len(req.PriceRange) > 0 {
		if len(req.PriceRange) != 2 {
			writeError(w, http.StatusBadRequest, codeInvalidInput,
				"priceRange must hold exactly [low, high]")
			return
		}
		pr, err := query.NewPriceRange(req.PriceRange[0], req.PriceRange[1])
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
		priceRange = &pr
	}

	q, err := query.New(req.SearchQuery, req.ServiceType, req.SortBy, priceRange)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results, err := s.search.Search(r.Context(), &q)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(q.SortBy()), "error").Inc()
		s.handleDomainError(w, err)
		return
	}

	metrics.SearchRequestsTotal.WithLabelValues(string(q.SortBy()), "success").Inc()
	metrics.SearchResultCount.Observe(float64(len(results)))

	items := make([]caregiverItemDTO, len(results))
	for i := range results {
		items[i] = rankedToDTO(&results[i])
	}

	writeJSON(w, http.StatusOK, searchResponse{Items: items, Total: len(items)})
}

// GetProfile handles GET /v1/me/profile.
func (s *Server) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	view, err := s.profiles.Get(r.Context(), caller)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, viewToDTO(view))
}

// PutCharges handles PUT /v1/me/charges.
func (s *Server) PutCharges(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	var req chargesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ch, err := s.profiles.UpsertCharges(r.Context(), caller, req.HourlyRate, req.VisitFee, req.Currency)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chargesToDTO(&ch))
}

// Reindex handles POST /v1/me/reindex.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	vectorID, err := s.profiles.Reindex(r.Context(), caller)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reindexResponse{VectorID: vectorID})
}

// Unindex handles DELETE /v1/me/index.
func (s *Server) Unindex(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromRequest(w, r)
	if !ok {
		return
	}

	if err := s.profiles.Unindex(r.Context(), caller); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// --- Helpers ---

// callerFromRequest reads the authenticated identity the gateway placed in
// the request headers. Writes a 401 and returns false when absent or invalid.
func callerFromRequest(w http.ResponseWriter, r *http.Request) (domprofile.Caller, bool) {
	userID := r.Header.Get("X-User-ID")
	rawRole := r.Header.Get("X-User-Role")
	if userID == "" || rawRole == "" {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "caller identity headers required")
		return domprofile.Caller{}, false
	}

	role, err := domprofile.ParseRole(rawRole)
	if err != nil {
		writeError(w, http.StatusUnauthorized, codeUnauthorized, "unknown caller role")
		return domprofile.Caller{}, false
	}

	return domprofile.Caller{UserID: userID, Role: role}, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrProfileNotFound,
		domain.ErrEmbeddingProvider,
		domain.ErrVectorIndex,
		domain.ErrStore,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
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
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func rankedToDTO(r *result.Ranked) caregiverItemDTO {
	return caregiverItemDTO{
		ID:                 r.ID(),
		Experience:         r.Experience(),
		Specializations:    emptyIfNil(r.Specializations()),
		Languages:          emptyIfNil(r.Languages()),
		VerificationStatus: string(r.Status()),
		Description:        r.Description(),
		Charges:            chargesPtrToDTO(r.Charges()),
		User:               userToDTO(r.User()),
		ReviewCount:        r.ReviewCount(),
		AverageRating:      r.AverageRating(),
	}
}

func profileToDTO(p *caregiver.Profile) caregiverItemDTO {
	ranked := result.FromProfile(p)
	return rankedToDTO(&ranked)
}

func viewToDTO(view domprofile.View) profileResponse {
	resp := profileResponse{
		Role: string(view.Role),
		Account: accountDTO{
			ID:            view.Account.ID,
			Name:          view.Account.Name,
			Email:         view.Account.Email,
			Image:         view.Account.Image,
			ContactNumber: view.Account.ContactNumber,
		},
	}

	if view.Address != nil {
		resp.Address = &addressDTO{
			Street:  view.Address.Street,
			City:    view.Address.City,
			State:   view.Address.State,
			ZipCode: view.Address.ZipCode,
			Country: view.Address.Country,
		}
	}

	if view.Caregiver != nil {
		item := profileToDTO(view.Caregiver)
		resp.Caregiver = &item
	}

	return resp
}

func chargesToDTO(ch *caregiver.Charges) chargesDTO {
	return chargesDTO{
		HourlyRate: ch.HourlyRate(),
		VisitFee:   ch.VisitFee(),
		Currency:   ch.Currency(),
	}
}

func chargesPtrToDTO(ch *caregiver.Charges) *chargesDTO {
	if ch == nil {
		return nil
	}
	dto := chargesToDTO(ch)
	return &dto
}

func userToDTO(u caregiver.UserSummary) userSummaryDTO {
	return userSummaryDTO{
		Name:  u.Name(),
		Image: u.Image(),
		City:  u.City(),
		State: u.State(),
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
