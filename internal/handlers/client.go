package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/diewo77/traiteur-admin/internal/cache"
	"github.com/diewo77/traiteur-admin/internal/clients"
	"github.com/diewo77/traiteur-admin/internal/httpx"
	"github.com/diewo77/traiteur-admin/internal/logger"
	"github.com/diewo77/traiteur-admin/internal/monitoring"
)

// ClientHandler serves the client directory built from quotes.
type ClientHandler struct {
	agg   *clients.Aggregator
	cache cache.DirectoryCache
	log   *logger.Logger
}

func NewClientHandler(agg *clients.Aggregator, dir cache.DirectoryCache, log *logger.Logger) *ClientHandler {
	if dir == nil {
		dir = cache.Noop{}
	}
	return &ClientHandler{agg: agg, cache: dir, log: log}
}

// List returns every client sorted by name. Non-empty results are cached until
// the next quote write invalidates them.
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, ok, err := h.cache.Get(ctx)
	switch {
	case err != nil:
		monitoring.ClientCacheLookups.WithLabelValues("error").Inc()
		h.log.Warn("client directory cache read failed", "error", err)
	case ok:
		monitoring.ClientCacheLookups.WithLabelValues("hit").Inc()
		httpx.Raw(w, http.StatusOK, body)
		return
	default:
		monitoring.ClientCacheLookups.WithLabelValues("miss").Inc()
	}

	list := h.agg.ListClients(ctx)
	sortByName(list)
	body, err = json.Marshal(list)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "encode_error", nil)
		return
	}
	// an empty list may come from a failed fetch; don't keep it around
	if len(list) > 0 {
		if err := h.cache.Set(ctx, body); err != nil {
			h.log.Warn("client directory cache write failed", "error", err)
		}
	}
	httpx.Raw(w, http.StatusOK, body)
}

func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	phone := strings.TrimSpace(r.PathValue("phone"))
	d, err := h.agg.GetClient(r.Context(), phone)
	switch {
	case err == nil:
		httpx.JSON(w, http.StatusOK, d)
	case errors.Is(err, clients.ErrInvalidPhone):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"phone": "required"})
	case errors.Is(err, clients.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "client_not_found", nil)
	default:
		h.log.Error("get client failed", "phone", phone, "error", err)
		httpx.JSONError(w, http.StatusBadGateway, "upstream_fetch_failed", nil)
	}
}

func sortByName(list []clients.Client) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := strings.ToLower(list[i].Name), strings.ToLower(list[j].Name)
		if a != b {
			return a < b
		}
		return list[i].Phone < list[j].Phone
	})
}
