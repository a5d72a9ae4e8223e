package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nexacare/caresearch/internal/domain"
	"github.com/nexacare/caresearch/internal/domain/caregiver"
	domprofile "github.com/nexacare/caresearch/internal/domain/profile"
	"github.com/nexacare/caresearch/internal/domain/search/candidate"
	"github.com/nexacare/caresearch/internal/domain/search/query"
	healthuc "github.com/nexacare/caresearch/internal/usecase/health"
	profileuc "github.com/nexacare/caresearch/internal/usecase/profile"
	searchuc "github.com/nexacare/caresearch/internal/usecase/search"
)

// --- Mocks ---

type stubEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *stubEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type stubIndex struct {
	candidates []candidate.Candidate
	err        error
	deleted    string
}

func (m *stubIndex) Nearest(_ context.Context, _ []float32, _ int) ([]candidate.Candidate, error) {
	return m.candidates, m.err
}

func (m *stubIndex) Upsert(_ context.Context, _ string, _ []float32) error { return nil }

func (m *stubIndex) Delete(_ context.Context, vectorID string) error {
	m.deleted = vectorID
	return nil
}

type stubLister struct {
	profiles []caregiver.Profile
	err      error
}

func (m *stubLister) ListByVectorIDs(
	_ context.Context, _ []string, _ *query.PriceRange,
) ([]caregiver.Profile, error) {
	return m.profiles, m.err
}

type stubProfileStore struct {
	view           domprofile.View
	viewErr        error
	upsertErr      error
	sourceVectorID string
	sourceText     string
	sourceErr      error
}

func (m *stubProfileStore) GetCaregiverView(_ context.Context, _ string) (domprofile.View, error) {
	return m.view, m.viewErr
}

func (m *stubProfileStore) GetCustomerView(_ context.Context, _ string) (domprofile.View, error) {
	return m.view, m.viewErr
}

func (m *stubProfileStore) UpsertCharges(_ context.Context, _ string, _ caregiver.Charges) error {
	return m.upsertErr
}

func (m *stubProfileStore) EmbeddingSource(_ context.Context, _ string) (string, string, error) {
	return m.sourceVectorID, m.sourceText, m.sourceErr
}

func (m *stubProfileStore) AssignVectorID(_ context.Context, _, _ string) error { return nil }

type stubPinger struct{ err error }

func (m *stubPinger) Ping(_ context.Context) error { return m.err }

// --- Fixtures ---

type deps struct {
	embed   *stubEmbedder
	index   *stubIndex
	lister  *stubLister
	profile *stubProfileStore
	store   *stubPinger
	vector  *stubPinger
}

func newTestServer(t *testing.T, d deps) http.Handler {
	t.Helper()
	if d.embed == nil {
		d.embed = &stubEmbedder{vec: []float32{0.1}}
	}
	if d.index == nil {
		d.index = &stubIndex{}
	}
	if d.lister == nil {
		d.lister = &stubLister{}
	}
	if d.profile == nil {
		d.profile = &stubProfileStore{}
	}
	if d.store == nil {
		d.store = &stubPinger{}
	}
	if d.vector == nil {
		d.vector = &stubPinger{}
	}

	srv := NewServer(
		searchuc.New(d.embed, d.index, d.lister),
		profileuc.New(d.profile, d.embed, d.index),
		healthuc.New(d.store, d.vector, nil),
		zap.NewNop(),
	)

	r := chirouter.NewRouter()
	srv.Routes(r)
	return r
}

func fptr(v float64) *float64 { return &v }

func testProfile(id, vectorID string, experience int, ratings []int) caregiver.Profile {
	reviews := make([]caregiver.Review, len(ratings))
	for i, rating := range ratings {
		reviews[i] = caregiver.ReconstructReview(rating)
	}
	ch := caregiver.ReconstructCharges(fptr(40), fptr(25), "USD")
	return caregiver.Reconstruct(
		id, vectorID, experience, []string{"Elderly Care"}, []string{"English"},
		caregiver.Verified, "experienced caregiver", &ch, reviews,
		caregiver.NewUserSummary("Jo", "", "Austin", "TX"),
	)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func caregiverHeaders(id string) map[string]string {
	return map[string]string{"X-User-ID": id, "X-User-Role": "CAREGIVER"}
}

// --- Search endpoint ---

func TestSearchEndpoint_HappyPath(t *testing.T) {
	h := newTestServer(t, deps{
		index: &stubIndex{candidates: []candidate.Candidate{
			candidate.New("v1", 0.95),
			candidate.New("v2", 0.90),
		}},
		lister: &stubLister{profiles: []caregiver.Profile{
			testProfile("c1", "v1", 3, []int{5, 4}),
			testProfile("c2", "v2", 8, nil),
		}},
	})

	rr := doJSON(t, h, "POST", "/v1/search", searchRequest{
		SearchQuery: "dementia care",
		ServiceType: "Elderly Care",
	}, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || len(resp.Items) != 2 {
		t.Fatalf("expected 2 items, got total=%d len=%d", resp.Total, len(resp.Items))
	}
	if resp.Items[0].ID != "c1" || resp.Items[1].ID != "c2" {
		t.Errorf("unexpected order: %s, %s", resp.Items[0].ID, resp.Items[1].ID)
	}
	if resp.Items[0].AverageRating != 4.5 || resp.Items[0].ReviewCount != 2 {
		t.Errorf("expected aggregate 4.5/2, got %v/%d",
			resp.Items[0].AverageRating, resp.Items[0].ReviewCount)
	}
	if resp.Items[0].Charges == nil || *resp.Items[0].Charges.VisitFee != 25 {
		t.Error("charges missing from result")
	}
}

func TestSearchEndpoint_EmptyResult(t *testing.T) {
	h := newTestServer(t, deps{})

	rr := doJSON(t, h, "POST", "/v1/search", searchRequest{SearchQuery: "anything"}, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp searchResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Errorf("expected empty items array, got %v", resp.Items)
	}
}

func TestSearchEndpoint_InvalidBody(t *testing.T) {
	h := newTestServer(t, deps{})

	req := httptest.NewRequest("POST", "/v1/search", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestSearchEndpoint_PriceRangeWrongLength(t *testing.T) {
	h := newTestServer(t, deps{})

	rr := doJSON(t, h, "POST", "/v1/search", searchRequest{
		SearchQuery: "q",
		PriceRange:  []float64{10},
	}, nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

// An inverted price range is rejected before any collaborator is called.
func TestSearchEndpoint_InvertedPriceRange(t *testing.T) {
	embed := &stubEmbedder{vec: []float32{0.1}}
	h := newTestServer(t, deps{embed: embed})

	rr := doJSON(t, h, "POST", "/v1/search", searchRequest{
		SearchQuery: "q",
		PriceRange:  []float64{100, 10},
	}, nil)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != codeInvalidInput {
		t.Errorf("expected code %s, got %s", codeInvalidInput, resp.Code)
	}
	if embed.called {
		t.Error("embedder must not be called for an invalid price range")
	}
}

func TestSearchEndpoint_EmbedderDown_502(t *testing.T) {
	h := newTestServer(t, deps{
		embed: &stubEmbedder{err: domain.ErrEmbeddingProvider},
	})

	rr := doJSON(t, h, "POST", "/v1/search", searchRequest{SearchQuery: "q"}, nil)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Code != codeUpstreamUnavailable {
		t.Errorf("expected code %s, got %s", codeUpstreamUnavailable, resp.Code)
	}
}

func TestSearchEndpoint_VectorIndexDown_502(t *testing.T) {
	h := newTestServer(t, deps{
		index: &stubIndex{err: domain.ErrVectorIndex},
	})

	rr := doJSON(t, h, "POST", "/v1/search", searchRequest{SearchQuery: "q"}, nil)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
}

func TestSearchEndpoint_StoreDown_503(t *testing.T) {
	h := newTestServer(t, deps{
		index:  &stubIndex{candidates: []candidate.Candidate{candidate.New("v1", 0.9)}},
		lister: &stubLister{err: domain.ErrStore},
	})

	rr := doJSON(t, h, "POST", "/v1/search", searchRequest{SearchQuery: "q"}, nil)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

// --- Profile endpoints ---

func TestGetProfile_RequiresIdentity(t *testing.T) {
	h := newTestServer(t, deps{})

	rr := doJSON(t, h, "GET", "/v1/me/profile", nil, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}

	rr = doJSON(t, h, "GET", "/v1/me/profile", nil,
		map[string]string{"X-User-ID": "u1", "X-User-Role": "ADMIN"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown role, got %d", rr.Code)
	}
}

func TestGetProfile_Caregiver(t *testing.T) {
	p := testProfile("u1", "v1", 5, []int{4, 5})
	h := newTestServer(t, deps{
		profile: &stubProfileStore{view: domprofile.View{
			Role:      domprofile.RoleCaregiver,
			Account:   domprofile.Account{ID: "u1", Name: "Jo", Email: "jo@example.com"},
			Caregiver: &p,
		}},
	})

	rr := doJSON(t, h, "GET", "/v1/me/profile", nil, caregiverHeaders("u1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp profileResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Role != "CAREGIVER" || resp.Caregiver == nil {
		t.Fatalf("expected caregiver view, got %+v", resp)
	}
	if resp.Caregiver.AverageRating != 4.5 {
		t.Errorf("expected average 4.5, got %v", resp.Caregiver.AverageRating)
	}
}

func TestGetProfile_Customer(t *testing.T) {
	h := newTestServer(t, deps{
		profile: &stubProfileStore{view: domprofile.View{
			Role:    domprofile.RoleCustomer,
			Account: domprofile.Account{ID: "u2", Name: "Sam"},
			Address: &domprofile.Address{City: "Austin", State: "TX"},
		}},
	})

	rr := doJSON(t, h, "GET", "/v1/me/profile", nil,
		map[string]string{"X-User-ID": "u2", "X-User-Role": "CUSTOMER"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp profileResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Caregiver != nil {
		t.Error("customer view must not carry caregiver detail")
	}
	if resp.Address == nil || resp.Address.City != "Austin" {
		t.Errorf("expected address in customer view, got %+v", resp.Address)
	}
}

func TestGetProfile_NotFound_404(t *testing.T) {
	h := newTestServer(t, deps{
		profile: &stubProfileStore{viewErr: domain.ErrProfileNotFound},
	})

	rr := doJSON(t, h, "GET", "/v1/me/profile", nil, caregiverHeaders("u-missing"))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestPutCharges_HappyPath(t *testing.T) {
	h := newTestServer(t, deps{})

	rr := doJSON(t, h, "PUT", "/v1/me/charges", chargesRequest{
		HourlyRate: fptr(45),
		VisitFee:   fptr(30),
		Currency:   "USD",
	}, caregiverHeaders("u1"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp chargesDTO
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Currency != "USD" || *resp.HourlyRate != 45 || *resp.VisitFee != 30 {
		t.Errorf("charges not echoed back: %+v", resp)
	}
}

func TestPutCharges_NegativeRate_400(t *testing.T) {
	h := newTestServer(t, deps{})

	rr := doJSON(t, h, "PUT", "/v1/me/charges", chargesRequest{
		HourlyRate: fptr(-5),
		Currency:   "USD",
	}, caregiverHeaders("u1"))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestReindex_ReturnsVectorID(t *testing.T) {
	h := newTestServer(t, deps{
		profile: &stubProfileStore{sourceVectorID: "v-keep", sourceText: "bio"},
	})

	rr := doJSON(t, h, "POST", "/v1/me/reindex", nil, caregiverHeaders("u1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp reindexResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.VectorID != "v-keep" {
		t.Errorf("expected v-keep, got %q", resp.VectorID)
	}
}

func TestUnindex_RemovesVector_204(t *testing.T) {
	index := &stubIndex{}
	h := newTestServer(t, deps{
		index:   index,
		profile: &stubProfileStore{sourceVectorID: "v-gone", sourceText: "bio"},
	})

	rr := doJSON(t, h, "DELETE", "/v1/me/index", nil, caregiverHeaders("u1"))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}
	if index.deleted != "v-gone" {
		t.Errorf("expected v-gone removed from the index, got %q", index.deleted)
	}
}

func TestUnindex_RequiresIdentity(t *testing.T) {
	h := newTestServer(t, deps{})

	rr := doJSON(t, h, "DELETE", "/v1/me/index", nil, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

// --- Health ---

func TestHealth_OK(t *testing.T) {
	h := newTestServer(t, deps{})

	rr := doJSON(t, h, "GET", "/health", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestHealth_Degraded_503(t *testing.T) {
	h := newTestServer(t, deps{
		vector: &stubPinger{err: domain.ErrVectorIndex},
	})

	rr := doJSON(t, h, "GET", "/health", nil, nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
