package service

import "errors"

const (
	// History shown on the readiness chart and returned by default
	DiaryHistoryLimit = 30

	// Weeks of training load on the TSS chart
	ChartWeeks = 12

	// Training load window for CTL/ATL/TSB (CTL needs ~6 weeks to settle)
	FitnessHistoryDays = 90

	// Strava paging and stream batching
	ActivitiesPerPage = 100
	StreamBatchSize   = 50
	StreamWorkers     = 2

	// Sync state key prefix; the athlete ID is appended
	lastActivitySyncKey = "last_activity_sync"
)

var (
	// ErrInsufficientData means too few clean beats survived to compute HRV.
	// Nothing is stored for the day.
	ErrInsufficientData = errors.New("insufficient clean RR intervals")

	// ErrUntrustedFit means fewer than two efforts fall inside the trusted
	// duration band, or their durations cannot separate CP from W'.
	ErrUntrustedFit = errors.New("not enough trusted efforts for a critical power fit")

	// ErrNoPowerModel means an operation needs CP and W' but none has been fitted
	ErrNoPowerModel = errors.New("no critical power model fitted")

	// ErrInvalidInput wraps caller mistakes such as malformed dates or negative watts
	ErrInvalidInput = errors.New("invalid input")
)
