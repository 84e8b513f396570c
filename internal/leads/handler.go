package leads

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sdr-backend/internal/cache"
	"sdr-backend/internal/httpx"
	"sdr-backend/internal/middleware"
	"sdr-backend/internal/transport"
	"sdr-backend/internal/validation"

	"github.com/go-chi/chi/v5"
)

const adminListCacheKey = "leads:admin:recent"

// relayFailure is the single shape every local relay failure collapses
// into. Malformed input and downstream outages look identical to the
// caller; nothing internal leaks.
const relayFailure = "Failed to submit lead"

type Handler struct {
	service  *Service
	fwd      *Forwarder
	val      *validation.Validator
	cache    cache.Cache
	cacheTTL time.Duration
	log      *slog.Logger
}

func NewHandler(service *Service, fwd *Forwarder, val *validation.Validator, store cache.Cache, cacheTTL time.Duration, log *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		fwd:      fwd,
		val:      val,
		cache:    store,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

// Relay accepts a lead payload and pipes it to the upstream intake
// service, returning the upstream's JSON and status untouched. It does
// not re-validate the payload; the client validated before sending and
// the upstream validates again. Not idempotent: every call creates a new
// upstream lead, so client retries can duplicate.
func (h *Handler) Relay(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUpstreamBody))
	if err != nil {
		log.Warn("lead relay: body read failed")
		transport.WriteError(w, http.StatusInternalServerError, relayFailure, nil)
		return
	}

	var payload json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Warn("lead relay: invalid json")
		transport.WriteError(w, http.StatusInternalServerError, relayFailure, nil)
		return
	}

	status, upstream, err := h.fwd.Forward(r.Context(), payload)
	if err != nil {
		log.Error("lead relay: upstream error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, relayFailure, nil)
		return
	}

	log.Info("lead relay: ok", slog.Int("upstream_status", status))
	transport.WriteRaw(w, status, upstream)

	go h.recordRelayed(payload, status, upstream)
}

// recordRelayed keeps the operator's local copy of what went through the
// relay. It runs after the caller already has its response; failures are
// logged and otherwise invisible.
func (h *Handler) recordRelayed(payload []byte, status int, upstream []byte) {
	var sub LeadSubmission
	if err := json.Unmarshal(payload, &sub); err != nil {
		h.log.Warn("lead record: payload not submission-shaped")
		return
	}
	if strings.TrimSpace(sub.Customer.FirstName) == "" && strings.TrimSpace(sub.Customer.LastName) == "" {
		return
	}

	upstreamID := ""
	if status >= 200 && status < 300 {
		var ack struct {
			Success bool   `json:"success"`
			LeadID  string `json:"leadId"`
		}
		if err := json.Unmarshal(upstream, &ack); err == nil && ack.Success {
			upstreamID = ack.LeadID
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	lead, err := h.service.Record(ctx, sub, status, upstreamID)
	if err != nil {
		h.log.Error("lead record: database error", slog.String("error", err.Error()))
		return
	}
	_ = h.cache.Delete(ctx, adminListCacheKey)

	if err := h.service.NotifyLead(ctx, lead); err != nil {
		h.log.Warn("lead record: notification failed",
			slog.String("lead_id", lead.ID),
			slog.String("error", err.Error()),
		)
	}

	h.log.Info("lead record: stored",
		slog.String("lead_id", lead.ID),
		slog.String("upstream_id", lead.UpstreamID),
	)
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, offset, err := httpx.ParseLimitOffset(r.URL.Query(), 20, 100)
	if err != nil {
		log.Warn("admin leads list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	filter := ListFilter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
	}

	cacheable := filter.Status == "" && offset == 0 && limit == 20
	if cacheable {
		if cached, ok, err := h.cache.Get(r.Context(), adminListCacheKey); err == nil && ok {
			log.Info("admin leads list: cache hit")
			transport.WriteRaw(w, http.StatusOK, cached)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, total, err := h.service.ListAdmin(ctx, filter, limit, offset)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			transport.WriteError(w, http.StatusBadRequest, "invalid query", map[string]string{"status": "oneof"})
			return
		}
		log.Error("admin leads list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	response := map[string]interface{}{
		"items":  items,
		"limit":  limit,
		"offset": offset,
		"total":  total,
	}

	if cacheable {
		if payload, err := json.Marshal(response); err == nil {
			_ = h.cache.Set(r.Context(), adminListCacheKey, payload, h.cacheTTL)
		}
	}

	log.Info("admin leads list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) AdminGetByID(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn("admin lead get: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lead, err := h.service.GetAdminByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("admin lead get: not found", slog.String("lead_id", id))
			transport.WriteError(w, http.StatusNotFound, "lead not found", nil)
			return
		}
		log.Error("admin lead get: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin lead get: ok", slog.String("lead_id", id))
	transport.WriteJSON(w, http.StatusOK, lead)
}

func (h *Handler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		log.Warn("admin lead status: missing id")
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	var req AdminStatusUpdateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("admin lead status: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}

	if err := h.val.Struct(req); err != nil {
		log.Warn("admin lead status: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	lead, err := h.service.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			transport.WriteError(w, http.StatusBadRequest, "validation error", map[string]string{"status": "oneof"})
			return
		}
		if errors.Is(err, ErrNotFound) {
			log.Warn("admin lead status: not found", slog.String("lead_id", id))
			transport.WriteError(w, http.StatusNotFound, "lead not found", nil)
			return
		}
		log.Error("admin lead status: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	_ = h.cache.Delete(ctx, adminListCacheKey)

	log.Info("admin lead status: ok", slog.String("lead_id", id), slog.String("status", lead.Status))
	transport.WriteJSON(w, http.StatusOK, lead)
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
