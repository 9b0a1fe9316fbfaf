package handlers

import (
	"net/http"

	"github.com/crucial707/oci-dispatch/internal/repo"
)

// RunHandler exposes recorded task runs.
type RunHandler struct {
	Repo *repo.TaskRunRepo
}

// ListRuns returns recent runs, newest first (query: task, limit).
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50, 1, 500)
	list, err := h.Repo.ListRecent(r.Context(), r.URL.Query().Get("task"), limit)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list, "limit": limit})
}
