package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"coachlab/internal/service"
	"coachlab/internal/store"
)

// ReadinessHandler serves HRV readings, readiness and the dashboard
type ReadinessHandler struct {
	readiness *service.ReadinessService
	query     *service.QueryService
	now       func() time.Time
}

// NewReadinessHandler creates a new readiness handler
func NewReadinessHandler(readiness *service.ReadinessService, query *service.QueryService) *ReadinessHandler {
	return &ReadinessHandler{readiness: readiness, query: query, now: time.Now}
}

// SubmitReadingRequest is the body of POST /athletes/:id/readings.
// Date defaults to today.
type SubmitReadingRequest struct {
	Date        string `json:"date"`
	RRIntervals []int  `json:"rr_intervals" binding:"required"`
	Notes       string `json:"notes"`
}

// SubmitReading cleans the RR series, computes HRV and classifies readiness
func (h *ReadinessHandler) SubmitReading(c *gin.Context) {
	var req SubmitReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Date == "" {
		req.Date = h.today()
	}

	result, err := h.readiness.SubmitReading(c.Param("id"), req.Date, req.RRIntervals, req.Notes)
	if errors.Is(err, service.ErrInsufficientData) && result != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    err.Error(),
			"cleaning": NewCleaningResponse(result.Cleaning),
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewReadingResponse(result))
}

// GetReadiness returns the stored reading for ?date= (default today)
func (h *ReadinessHandler) GetReadiness(c *gin.Context) {
	date := c.DefaultQuery("date", h.today())
	entry, err := h.readiness.Today(c.Param("id"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewDiaryEntryResponse(entry))
}

// GetDiary returns recent readings, newest first
func (h *ReadinessHandler) GetDiary(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.readiness.History(c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]DiaryEntryResponse, len(entries))
	for i := range entries {
		out[i] = NewDiaryEntryResponse(&entries[i])
	}
	c.JSON(http.StatusOK, gin.H{"entries": out})
}

// GetDashboard returns readiness history, power profile and training form
func (h *ReadinessHandler) GetDashboard(c *gin.Context) {
	date := c.DefaultQuery("date", h.today())
	data, err := h.query.Dashboard(c.Param("id"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewDashboardResponse(data))
}

func (h *ReadinessHandler) today() string {
	return h.now().Format(store.DateLayout)
}
