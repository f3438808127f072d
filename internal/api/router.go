// Package api exposes the readiness and power engine over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"coachlab/internal/service"
	"coachlab/internal/store"
)

// Services bundles what the handlers depend on
type Services struct {
	Store     *store.DB
	Readiness *service.ReadinessService
	Power     *service.PowerService
	Query     *service.QueryService
}

// NewRouter builds the gin engine with every route registered
func NewRouter(svc Services, logger *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	SetupRoutes(router, svc)
	return router
}

// SetupRoutes registers the /api/v1 routes
func SetupRoutes(router *gin.Engine, svc Services) {
	athletes := NewAthleteHandler(svc.Store)
	readiness := NewReadinessHandler(svc.Readiness, svc.Query)
	power := NewPowerHandler(svc.Power)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/athletes", athletes.CreateAthlete)
		v1.GET("/athletes", athletes.ListAthletes)

		athlete := v1.Group("/athletes/:id")
		{
			athlete.GET("", athletes.GetAthlete)
			athlete.GET("/dashboard", readiness.GetDashboard)

			athlete.POST("/readings", readiness.SubmitReading)
			athlete.GET("/readiness", readiness.GetReadiness)
			athlete.GET("/diary", readiness.GetDiary)

			athlete.POST("/efforts", power.RecordEffort)
			athlete.GET("/efforts", power.ListEfforts)
			athlete.POST("/critical-power", power.FitCriticalPower)
			athlete.GET("/pacing", power.GetPacing)

			tests := athlete.Group("/tests")
			{
				tests.POST("/ramp", power.RecordRampTest)
				tests.POST("/five-minute", power.RecordFiveMinuteTest)
				tests.POST("/tlim", power.RecordTlim)
			}
		}
	}
}
