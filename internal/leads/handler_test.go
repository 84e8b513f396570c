package leads_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"sdr-backend/internal/cache"
	"sdr-backend/internal/leads"
	"sdr-backend/internal/middleware"
	"sdr-backend/internal/validation"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

const testAPIKey = "relay-secret"
const testAdminKey = "admin-secret"

type memRepo struct {
	mu      sync.Mutex
	items   []leads.Lead
	created chan leads.Lead
}

func (m *memRepo) Create(ctx context.Context, lead leads.Lead) error {
	m.mu.Lock()
	m.items = append(m.items, lead)
	m.mu.Unlock()
	if m.created != nil {
		m.created <- lead
	}
	return nil
}

func (m *memRepo) List(ctx context.Context, filter leads.ListFilter, limit, offset int64) ([]leads.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]leads.Lead, 0)
	for _, l := range m.items {
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *memRepo) Count(ctx context.Context, filter leads.ListFilter) (int64, error) {
	items, _ := m.List(ctx, filter, 0, 0)
	return int64(len(items)), nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (leads.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.items {
		if l.ID == id {
			return l, nil
		}
	}
	return leads.Lead{}, mongo.ErrNoDocuments
}

func (m *memRepo) UpdateStatus(ctx context.Context, id string, status string, now time.Time) (leads.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.items {
		if l.ID == id {
			m.items[i].Status = status
			m.items[i].UpdatedAt = now
			return m.items[i], nil
		}
	}
	return leads.Lead{}, mongo.ErrNoDocuments
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter mirrors the wiring in cmd/api: CORS, then the access
// guard, in front of the relay; AdminAuth in front of the admin surface.
func newTestRouter(upstreamURL string, repo leads.Repository) http.Handler {
	val := validation.New()
	fwd := leads.NewForwarder(upstreamURL, "http://localhost:3000", 2*time.Second)
	svc := leads.NewService(repo, time.UTC, nil)
	h := leads.NewHandler(svc, fwd, val, cache.NewNoop(), time.Minute, testLogger())

	r := chi.NewRouter()
	r.Route("/api/leads", func(rt chi.Router) {
		rt.Use(middleware.CORS())
		rt.Use(middleware.APIKeyAuth(testAPIKey))
		rt.Post("/", h.Relay)
	})
	r.Route("/api/admin", func(rt chi.Router) {
		rt.Use(middleware.AdminAuth(testAdminKey, nil))
		rt.Get("/leads", h.AdminList)
		rt.Get("/leads/{id}", h.AdminGetByID)
		rt.Patch("/leads/{id}/status", h.AdminUpdateStatus)
	})
	return r
}

func submissionJSON() string {
	return `{
		"customer": {
			"first_name": "Jane",
			"last_name": "Doe",
			"email": "jane@x.com",
			"phone": "5551234567",
			"address": {
				"formatted_address": "1 Main St, City, TX 75001",
				"street_number": "1", "street_name": "Main St",
				"city": "City", "state": "Texas", "postal_code": "75001",
				"country": "United States",
				"lat": 32.77, "lng": -96.79,
				"place_id": "ChIJabc"
			}
		},
		"timeline": "ASAP",
		"notes": null
	}`
}

func postLead(router http.Handler, body string, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/leads/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRelayPassesUpstreamResponseThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "http://localhost:3000", r.Header.Get("Origin"))

		body, _ := io.ReadAll(r.Body)
		var sub leads.LeadSubmission
		if assert.NoError(t, json.Unmarshal(body, &sub)) {
			assert.Equal(t, "Jane", sub.Customer.FirstName)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true,"leadId":"abc123"}`))
	}))
	defer upstream.Close()

	repo := &memRepo{created: make(chan leads.Lead, 1)}
	router := newTestRouter(upstream.URL, repo)

	rec := postLead(router, submissionJSON(), testAPIKey)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"leadId":"abc123"}`, rec.Body.String())

	select {
	case lead := <-repo.created:
		assert.Equal(t, "abc123", lead.UpstreamID)
		assert.Equal(t, leads.StatusNew, lead.Status)
		assert.Equal(t, http.StatusOK, lead.RelayStatus)
		assert.Equal(t, "Jane", lead.Submission.Customer.FirstName)
	case <-time.After(2 * time.Second):
		t.Fatal("lead was never recorded")
	}
}

func TestRelayPassesUpstreamErrorsThroughUnchanged(t *testing.T) {
	body := `{"error":"Validation error","details":[{"path":"customer.email","message":"invalid"}]}`
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(body))
	}))
	defer upstream.Close()

	router := newTestRouter(upstream.URL, &memRepo{})
	rec := postLead(router, submissionJSON(), testAPIKey)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, body, rec.Body.String())
}

func TestRelayRejectsWithoutAPIKey(t *testing.T) {
	var upstreamCalls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
	}))
	defer upstream.Close()

	router := newTestRouter(upstream.URL, &memRepo{})

	for _, key := range []string{"", "wrong-key"} {
		rec := postLead(router, submissionJSON(), key)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"message":"Unauthorized"}`, rec.Body.String())
	}
	assert.Equal(t, int64(0), upstreamCalls.Load(), "guarded request must never reach upstream")
}

func TestRelayPreflightBypassesGuard(t *testing.T) {
	router := newTestRouter("http://127.0.0.1:1", &memRepo{})

	req := httptest.NewRequest(http.MethodOptions, "/api/leads/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestRelayMalformedBodyIsUniformFailure(t *testing.T) {
	var upstreamCalls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
	}))
	defer upstream.Close()

	router := newTestRouter(upstream.URL, &memRepo{})
	rec := postLead(router, "{not json", testAPIKey)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to submit lead"}`, rec.Body.String())
	assert.Equal(t, int64(0), upstreamCalls.Load())
}

func TestRelayUpstreamFailureIsUniformFailure(t *testing.T) {
	// Nothing listens here; the forward itself fails.
	router := newTestRouter("http://127.0.0.1:1", &memRepo{})
	rec := postLead(router, submissionJSON(), testAPIKey)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to submit lead"}`, rec.Body.String())
}

func TestRelayNonJSONUpstreamBodyIsUniformFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer upstream.Close()

	router := newTestRouter(upstream.URL, &memRepo{})
	rec := postLead(router, submissionJSON(), testAPIKey)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to submit lead"}`, rec.Body.String())
}

func TestAdminLeadLifecycle(t *testing.T) {
	repo := &memRepo{}
	svcLead := seedLead(t, repo)
	router := newTestRouter("http://127.0.0.1:1", repo)

	// No credentials: the admin surface stays closed.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/leads", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// List with the admin key.
	req = httptest.NewRequest(http.MethodGet, "/api/admin/leads", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Items []leads.Lead `json:"items"`
		Total int64        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Items, 1)
	assert.Equal(t, svcLead.ID, listing.Items[0].ID)

	// Move it through the review pipeline.
	req = httptest.NewRequest(http.MethodPatch, "/api/admin/leads/"+svcLead.ID+"/status", strings.NewReader(`{"status":"contacted"}`))
	req.Header.Set("X-Admin-Key", testAdminKey)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated leads.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, leads.StatusContacted, updated.Status)

	// Unknown status values are rejected.
	req = httptest.NewRequest(http.MethodPatch, "/api/admin/leads/"+svcLead.ID+"/status", strings.NewReader(`{"status":"archived"}`))
	req.Header.Set("X-Admin-Key", testAdminKey)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing leads are 404s.
	req = httptest.NewRequest(http.MethodGet, "/api/admin/leads/nope", nil)
	req.Header.Set("X-Admin-Key", testAdminKey)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func seedLead(t *testing.T, repo leads.Repository) leads.Lead {
	t.Helper()
	svc := leads.NewService(repo, time.UTC, nil)
	sub := leads.LeadSubmission{
		Customer: leads.Customer{
			FirstName: "Jane",
			LastName:  "Doe",
			Address:   leads.Address{FormattedAddress: "1 Main St"},
		},
	}
	lead, err := svc.Record(context.Background(), sub, http.StatusOK, "abc123")
	require.NoError(t, err)
	return lead
}
