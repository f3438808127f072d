package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coachlab/internal/store"
)

// AthleteHandler serves athlete profiles
type AthleteHandler struct {
	store *store.DB
}

// NewAthleteHandler creates a new athlete handler
func NewAthleteHandler(db *store.DB) *AthleteHandler {
	return &AthleteHandler{store: db}
}

// CreateAthleteRequest is the body of POST /athletes
type CreateAthleteRequest struct {
	Name     string  `json:"name" binding:"required"`
	WeightKg float64 `json:"weight_kg" binding:"required,gt=0"`
}

// CreateAthlete registers a new athlete
func (h *AthleteHandler) CreateAthlete(c *gin.Context) {
	var req CreateAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		badRequest(c, "name must not be blank")
		return
	}

	athlete, err := h.store.CreateAthlete(name, req.WeightKg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewAthleteResponse(athlete))
}

// ListAthletes returns every athlete
func (h *AthleteHandler) ListAthletes(c *gin.Context) {
	athletes, err := h.store.ListAthletes()
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]AthleteResponse, len(athletes))
	for i := range athletes {
		out[i] = NewAthleteResponse(&athletes[i])
	}
	c.JSON(http.StatusOK, gin.H{"athletes": out})
}

// GetAthlete returns one athlete and its power model
func (h *AthleteHandler) GetAthlete(c *gin.Context) {
	athlete, err := h.store.GetAthlete(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewAthleteResponse(athlete))
}
