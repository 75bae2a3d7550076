// Package handlers exposes the JSON API over net/http.
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/traiteur-admin/internal/httpx"
	"github.com/diewo77/traiteur-admin/internal/repository"
)

// pathID parses the {id} wildcard. It writes a 400 and returns false when the
// value is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}

// listParams reads limit (default 50, max 200), page (1-based) and q.
func listParams(r *http.Request) repository.ListParams {
	p := repository.ListParams{Limit: repository.DefaultLimit}
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= repository.MaxLimit {
			p.Limit = n
		}
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			p.Offset = (n - 1) * p.Limit
		}
	}
	p.Query = strings.TrimSpace(q.Get("q"))
	return p
}

func writePage[T any](w http.ResponseWriter, items []T, total int64, p repository.ListParams) {
	httpx.JSON(w, http.StatusOK, httpx.Page[T]{Items: items, Total: total, Limit: p.Limit, Offset: p.Offset})
}
