package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/okian/ghostrun/internal/domain/model"
)

// SharedGhost is the JSON shape of one shared-folder entry.
type SharedGhost struct {
	File       string  `json:"file"`
	Player     string  `json:"player"`
	RouteID    string  `json:"route_id,omitempty"`
	TotalTime  float32 `json:"total_time,omitempty"`
	Time       string  `json:"time,omitempty"`
	FrameCount int     `json:"frame_count,omitempty"`
	Valid      bool    `json:"valid"`
	Reason     string  `json:"reason,omitempty"`
}

// PersonalGhost is the JSON shape of a stored personal best.
type PersonalGhost struct {
	RouteID    string    `json:"route_id"`
	CarName    string    `json:"car_name"`
	TotalTime  float32   `json:"total_time"`
	Time       string    `json:"time"`
	FrameCount int       `json:"frame_count"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewSharedGhost converts scan metadata to its JSON shape.
func NewSharedGhost(m model.SharedGhostMetadata) SharedGhost {
	g := SharedGhost{
		File:   m.FilePath,
		Player: m.PlayerName,
		Valid:  m.IsValid,
		Reason: m.Reason,
	}
	if m.IsValid {
		g.RouteID = m.RouteID
		g.TotalTime = m.TotalTime
		g.Time = m.TimeString()
		g.FrameCount = m.FrameCount
	}
	return g
}

// NewPersonalGhost summarizes a recording without its frames.
func NewPersonalGhost(rec *model.GhostRecording) PersonalGhost {
	return PersonalGhost{
		RouteID:    rec.RouteID,
		CarName:    rec.CarName,
		TotalTime:  rec.TotalTime,
		Time:       rec.TimeString(),
		FrameCount: len(rec.Frames),
		RecordedAt: time.Unix(0, rec.RecordedAt).UTC(),
	}
}

// GhostsHandler serves stored ghosts.
type GhostsHandler struct {
	deps Dependencies
}

// NewGhostsHandler creates a new ghosts handler.
func NewGhostsHandler(deps Dependencies) *GhostsHandler {
	return &GhostsHandler{deps: deps}
}

// HandleListShared handles GET /ghosts. With ?valid=true rejected files are left out.
func (h *GhostsHandler) HandleListShared(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	list, err := h.deps.SharedGhosts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if r.URL.Query().Get("valid") == "true" {
		list = lo.Filter(list, func(m model.SharedGhostMetadata, _ int) bool { return m.IsValid })
	}
	writeJSON(w, http.StatusOK, lo.Map(list, func(m model.SharedGhostMetadata, _ int) SharedGhost {
		return NewSharedGhost(m)
	}))
}

// HandleGetPersonal handles GET /ghosts/personal/{route_id}.
func (h *GhostsHandler) HandleGetPersonal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/ghosts/personal/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	rec, err := h.deps.PersonalBest(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, NewPersonalGhost(rec))
}
