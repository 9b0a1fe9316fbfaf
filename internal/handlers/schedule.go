package handlers

import (
	"net/http"
	"time"

	"github.com/crucial707/oci-dispatch/internal/dispatch"
)

type groupView struct {
	Name    string   `json:"name"`
	Cadence string   `json:"cadence"`
	Tasks   []string `json:"tasks"`
	DueNow  bool     `json:"due_now"`
}

// ScheduleHandler shows the configured task groups.
type ScheduleHandler struct {
	Groups []dispatch.Group
	Now    func() time.Time
}

// GetSchedule lists every group, its cadence and tasks, and whether it is due this minute.
func (h *ScheduleHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	t := now()
	out := make([]groupView, 0, len(h.Groups))
	for _, g := range h.Groups {
		v := groupView{Name: g.Name, Cadence: g.Cadence.String(), DueNow: g.Cadence.Due(t)}
		for _, f := range g.Tasks {
			v.Tasks = append(v.Tasks, f(t).Name())
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": out})
}
