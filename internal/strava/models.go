package strava

import "time"

// Activity is the summary of one Strava activity
type Activity struct {
	ID           int64     `json:"id"`
	Athlete      Athlete   `json:"athlete"`
	Name         string    `json:"name"`
	SportType    string    `json:"sport_type"`
	StartDate    time.Time `json:"start_date"`
	ElapsedTime  int       `json:"elapsed_time"` // seconds
	MovingTime   int       `json:"moving_time"`  // seconds
	DeviceWatts  bool      `json:"device_watts"`
	AverageWatts float64   `json:"average_watts"`
	MaxWatts     int       `json:"max_watts"`
	HasHeartrate bool      `json:"has_heartrate"`
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}

// Streams holds the power-related streams of an activity.
// Strava returns streams keyed by type when key_by_type=true.
type Streams struct {
	Time      *StreamData[int]     `json:"time"`
	Watts     *StreamData[float64] `json:"watts"`
	Heartrate *StreamData[int]     `json:"heartrate"`
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

// HasPower returns true if power data exists
func (s *Streams) HasPower() bool {
	return s != nil && s.Watts != nil && len(s.Watts.Data) > 0
}

// PowerSeries places the watts stream on a 1 Hz grid indexed by the time stream.
// Seconds the device skipped (auto-pause, dropouts) are 0 W, as are null readings.
func (s *Streams) PowerSeries() []float64 {
	if !s.HasPower() || s.Len() == 0 {
		return nil
	}

	n := len(s.Time.Data)
	if len(s.Watts.Data) < n {
		n = len(s.Watts.Data)
	}
	start := s.Time.Data[0]
	last := start
	for _, t := range s.Time.Data[:n] {
		if t > last {
			last = t
		}
	}

	power := make([]float64, last-start+1)
	for i := 0; i < n; i++ {
		sec := s.Time.Data[i] - start
		if sec < 0 {
			continue
		}
		if w := s.Watts.Data[i]; w > 0 {
			power[sec] = w
		}
	}
	return power
}
