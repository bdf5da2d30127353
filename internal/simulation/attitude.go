package simulation

import (
	"math"
	"time"
)

// Attitude is a synthetic roll/pitch oscillation for display. It is not
// derived from flight dynamics.
type Attitude struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// SyntheticAttitude oscillates with the simulated clock: roll ±5°, pitch ±3°
// at half the roll frequency. The phase is the fractional UTC second of day,
// so sub-second ticks still move the gauges.
func SyntheticAttitude(at time.Time) Attitude {
	secs := secondsOfDay(at)
	return Attitude{
		Roll:  math.Sin(secs) * 5,
		Pitch: math.Sin(secs*0.5) * 3,
	}
}

func secondsOfDay(at time.Time) float64 {
	at = at.UTC()
	whole := at.Hour()*3600 + at.Minute()*60 + at.Second()
	return float64(whole) + float64(at.Nanosecond())/1e9
}
