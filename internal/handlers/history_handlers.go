package handlers

import (
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"soulchat-backend/internal/models"
	"soulchat-backend/internal/services"
	"soulchat-backend/pkg/httputil"
)

// HistoryHandlers serves the read-only analytics surface: detailed history
// queries and the statistics dashboard.
type HistoryHandlers struct {
	historyService *services.HistoryService
	statsService   *services.StatsService
}

func NewHistoryHandlers(historySvc *services.HistoryService, statsSvc *services.StatsService) *HistoryHandlers {
	return &HistoryHandlers{
		historyService: historySvc,
		statsService:   statsSvc,
	}
}

// HandleGetDetailedHistory handles GET /v1/chats/history/detailed. All
// filters are optional query parameters; unparseable dates are rejected.
func (h *HistoryHandlers) HandleGetDetailedHistory(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	filters, err := parseHistoryFilters(r.URL.Query())
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.historyService.GetHistory(r.Context(), owner, filters)
	if err != nil {
		log.Printf("GetDetailedHistory handler failed for owner %s: %v", owner, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// HandleGetStatistics handles GET /v1/chats/analytics/statistics?period=30.
func (h *HistoryHandlers) HandleGetStatistics(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	periodDays := 0
	if raw := r.URL.Query().Get("period"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid period, expected a positive number of days")
			return
		}
		periodDays = v
	}

	resp, err := h.statsService.GetStatistics(r.Context(), owner, periodDays)
	if err != nil {
		log.Printf("GetStatistics handler failed for owner %s: %v", owner, err)
		httputil.RespondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

func parseHistoryFilters(q url.Values) (models.HistoryFilters, error) {
	filters := models.HistoryFilters{
		Mode:      q.Get("mode"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	var err error
	if filters.DateFrom, err = parseDateParam(q.Get("date_from")); err != nil {
		return filters, err
	}
	if filters.DateTo, err = parseDateParam(q.Get("date_to")); err != nil {
		return filters, err
	}
	return filters, nil
}

// parseDateParam accepts RFC 3339 timestamps or bare YYYY-MM-DD dates.
func parseDateParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, models.ErrInvalidDate
	}
	return &t, nil
}
