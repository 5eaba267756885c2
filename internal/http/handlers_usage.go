package http

import (
	"net/http"
	"time"

	"resourceguardian/internal/core"
	"resourceguardian/internal/storage"
)

type usageRequest struct {
	AppName     string     `json:"appName"`
	PackageName string     `json:"packageName"`
	Minutes     int        `json:"duration"`
	Category    string     `json:"category"`
	UsageDate   *time.Time `json:"usageDate"`
}

func (s *Server) handleRecordUsage(w http.ResponseWriter, r *http.Request) {
	var req usageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	record := &core.AppUsage{
		UserID:      userID(r),
		AppName:     req.AppName,
		PackageName: req.PackageName,
		Minutes:     req.Minutes,
		Category:    core.AppCategory(req.Category),
	}
	if req.UsageDate != nil {
		record.UsageDate = *req.UsageDate
	}

	u, err := s.usage.Record(r.Context(), record)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleListUsage(w http.ResponseWriter, r *http.Request) {
	var filter storage.AppUsageFilter
	if v := r.URL.Query().Get("category"); v != "" {
		category, err := core.ParseAppCategory(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Category = category
	}

	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter.From = from

	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter.To = to

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter.Limit = limit

	list, err := s.usage.List(r.Context(), userID(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []core.AppUsage{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUsageSummary(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Default window is the last seven days ending now.
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -7)
	end := now
	if from != nil {
		start = *from
	}
	if to != nil {
		// A bare date means the whole of that day.
		end = to.Add(24*time.Hour - time.Nanosecond)
	}

	summary, err := s.usage.Summary(r.Context(), userID(r), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDeleteUsage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.usage.Delete(r.Context(), id, userID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
