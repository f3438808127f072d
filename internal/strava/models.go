package strava

import "time"

// Activity is a Strava activity summary as returned by /athlete/activities
type Activity struct {
	ID                   int64     `json:"id"`
	Athlete              Athlete   `json:"athlete"`
	Name                 string    `json:"name"`
	Type                 string    `json:"type"`
	SportType            string    `json:"sport_type"`
	StartDate            time.Time `json:"start_date"`
	Distance             float64   `json:"distance"`     // meters
	MovingTime           int       `json:"moving_time"`  // seconds
	ElapsedTime          int       `json:"elapsed_time"` // seconds
	AverageWatts         float64   `json:"average_watts"`
	WeightedAverageWatts float64   `json:"weighted_average_watts"`
	MaxWatts             float64   `json:"max_watts"`
	Kilojoules           float64   `json:"kilojoules"`
	DeviceWatts          bool      `json:"device_watts"`
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}

// IsRide reports whether the activity is an outdoor or virtual ride
func (a Activity) IsRide() bool {
	return a.Type == "Ride" || a.Type == "VirtualRide"
}

// HasPowerMeter reports whether the ride carries measured (not estimated) watts
func (a Activity) HasPowerMeter() bool {
	return a.IsRide() && a.DeviceWatts
}

// Streams holds the streams requested with key_by_type=true
type Streams struct {
	Time  *StreamData[int] `json:"time"`
	Watts *StreamData[int] `json:"watts"`
}

// StreamData represents a single stream type
type StreamData[T any] struct {
	Data         []T    `json:"data"`
	SeriesType   string `json:"series_type"`
	OriginalSize int    `json:"original_size"`
	Resolution   string `json:"resolution"`
}

// Len returns the length of the stream, or 0 if nil
func (s *Streams) Len() int {
	if s == nil || s.Time == nil {
		return 0
	}
	return len(s.Time.Data)
}

// HasWatts returns true if a power stream exists
func (s *Streams) HasWatts() bool {
	return s != nil && s.Watts != nil && len(s.Watts.Data) > 0
}
