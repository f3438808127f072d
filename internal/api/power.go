package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"coachlab/internal/analysis"
	"coachlab/internal/service"
	"coachlab/internal/store"
)

// PowerHandler serves best efforts, the CP model, physiology tests and pacing
type PowerHandler struct {
	power *service.PowerService
}

// NewPowerHandler creates a new power handler
func NewPowerHandler(power *service.PowerService) *PowerHandler {
	return &PowerHandler{power: power}
}

// RecordEffortRequest is the body of POST /athletes/:id/efforts
type RecordEffortRequest struct {
	DurationSeconds int       `json:"duration_seconds" binding:"required"`
	Power           float64   `json:"power" binding:"required"`
	AchievedAt      time.Time `json:"achieved_at"`
}

// RecordEffort stores a manual best effort
func (h *PowerHandler) RecordEffort(c *gin.Context) {
	var req RecordEffortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	updated, err := h.power.RecordEffort(c.Param("id"), req.DurationSeconds, req.Power, req.AchievedAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"new_best": updated})
}

// ListEfforts returns stored best efforts ordered by duration
func (h *PowerHandler) ListEfforts(c *gin.Context) {
	efforts, err := h.power.Efforts(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"efforts": NewEffortResponses(efforts)})
}

// FitCriticalPower fits CP and W' with ?model=work_time|inverse_time
func (h *PowerHandler) FitCriticalPower(c *gin.Context) {
	model, err := analysis.ParseCPModel(c.Query("model"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	// No model parameter means the configured default
	if c.Query("model") == "" {
		model = ""
	}

	fit, err := h.power.FitCriticalPower(c.Param("id"), model)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewFitResponse(fit))
}

// GetPacing returns sustainable power for ?durations=180,300 (seconds)
func (h *PowerHandler) GetPacing(c *gin.Context) {
	durations, err := ParseDurations(c.Query("durations"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	targets, err := h.power.PacingTable(c.Param("id"), durations)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pacing": NewPacingResponses(targets)})
}

type rampTestRequest struct {
	MAPWatts float64 `json:"map_watts" binding:"required"`
}

// RecordRampTest estimates VO2max from ramp-test peak power
func (h *PowerHandler) RecordRampTest(c *gin.Context) {
	var req rampTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.respondAthlete(c)(h.power.RecordRampTest(c.Param("id"), req.MAPWatts))
}

type fiveMinuteTestRequest struct {
	Power float64 `json:"power" binding:"required"`
}

// RecordFiveMinuteTest sets pVO2max from a maximal 5 minute effort
func (h *PowerHandler) RecordFiveMinuteTest(c *gin.Context) {
	var req fiveMinuteTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.respondAthlete(c)(h.power.RecordFiveMinutePower(c.Param("id"), req.Power))
}

type tlimRequest struct {
	ObservedSeconds float64 `json:"observed_seconds" binding:"required"`
}

// RecordTlim blends an observed time to exhaustion at pVO2max
func (h *PowerHandler) RecordTlim(c *gin.Context) {
	var req tlimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.respondAthlete(c)(h.power.RecordTlimObservation(c.Param("id"), req.ObservedSeconds))
}

func (h *PowerHandler) respondAthlete(c *gin.Context) func(*store.Athlete, error) {
	return func(a *store.Athlete, err error) {
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, NewAthleteResponse(a))
	}
}

// ParseDurations reads a comma separated list of seconds. Empty means defaults.
func ParseDurations(raw string) ([]float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid duration %q: want positive seconds", p)
		}
		out = append(out, d)
	}
	return out, nil
}
