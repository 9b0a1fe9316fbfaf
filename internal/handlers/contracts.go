package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/oci-dispatch/internal/dates"
	"github.com/crucial707/oci-dispatch/internal/repo"
)

// ContractHandler exposes the contracts table read-only.
type ContractHandler struct {
	Repo *repo.ContractRepo
}

// ListContracts returns paginated contracts (query: limit, offset), or only
// those active on a day when ?active=YYYY-MM-DD is given.
func (h *ContractHandler) ListContracts(w http.ResponseWriter, r *http.Request) {
	if day := r.URL.Query().Get("active"); day != "" {
		d, err := dates.Parse(day)
		if err != nil {
			JSONError(w, dates.ErrInvalidDateFormat.Error(), http.StatusBadRequest)
			return
		}
		list, err := h.Repo.ActiveOn(r.Context(), d.String())
		if err != nil {
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list, "active": d.String()})
		return
	}

	limit := queryInt(r, "limit", 50, 1, 100)
	offset := queryInt(r, "offset", 0, 0, 1<<30)
	list, err := h.Repo.List(r.Context(), limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list, "limit": limit, "offset": offset})
}

// GetContract returns one contract by id.
func (h *ContractHandler) GetContract(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "invalid contract id", http.StatusBadRequest)
		return
	}
	c, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if c == nil {
		JSONError(w, "contract not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Unavailable answers 503 for routes whose backing store is not connected.
func Unavailable(w http.ResponseWriter, r *http.Request) {
	JSONError(w, "database not configured", http.StatusServiceUnavailable)
}
