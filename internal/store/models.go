package store

import "time"

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	StravaAthleteID int64
	AccessToken     string
	RefreshToken    string
	ExpiresAt       time.Time
}

// Athlete is a profile together with its fitted power-duration parameters.
// Nil pointers mean the value has not been measured yet.
type Athlete struct {
	ID          string
	Name        string
	WeightKg    float64
	CP          *float64 // watts
	WPrime      *float64 // joules
	CPModel     string
	CPR2        *float64
	CPUpdatedAt *time.Time
	VO2max      *float64 // ml/kg/min
	PVO2max     *float64 // watts
	TlimSeconds *float64
	CreatedAt   time.Time
}

// DiaryEntry is one day's HRV reading and its readiness classification
type DiaryEntry struct {
	AthleteID      string
	Date           string // YYYY-MM-DD
	RMSSD          float64
	SDNN           float64
	PNN50          float64
	CV             float64
	MeanRR         float64
	HeartRate      float64
	ArtifactPct    float64
	BeatCount      int
	IsValid        bool
	Status         string // GREEN, YELLOW, RED; empty until classified
	Recommendation string
	DeviationPct   *float64
	Notes          string
}

// Trend is the baseline snapshot stored with each reading
type Trend struct {
	AthleteID      string
	Date           string
	RMSSD          float64
	BaselineMean   float64
	BaselineStdDev float64
	BaselineCount  int
	BaselineDays   int
	Status         string
}

// Effort sources
const (
	EffortSourceManual = "manual"
	EffortSourceStrava = "strava"
)

// PowerEffort is the best power an athlete has held for a duration
type PowerEffort struct {
	AthleteID       string
	DurationSeconds int
	Power           float64
	Source          string
	ActivityID      *int64
	AchievedAt      time.Time
}

// Activity is a Strava ride summary
type Activity struct {
	ID                   int64
	AthleteID            string
	Name                 string
	Type                 string
	StartDate            time.Time
	Distance             float64 // meters
	MovingTime           int     // seconds
	ElapsedTime          int     // seconds
	AverageWatts         *float64
	WeightedAverageWatts *float64
	DeviceWatts          bool
	TSS                  *float64
	StreamsSynced        bool
}
