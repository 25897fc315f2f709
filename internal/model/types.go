package model

import "time"

const (
	DefaultTimezone = "UTC"
	DefaultLanguage = "en"
)

type User struct {
	ID         string
	ExternalID string
	Timezone   string
	Language   string
	CreatedAt  time.Time
}

// TargetSnapshot is the user's nutritional target as of CreatedAt. Rows are never updated.
type TargetSnapshot struct {
	ID        string
	UserID    string
	Calories  float64
	ProteinG  float64
	FatG      float64
	CarbsG    float64
	WaterL    float64
	CreatedAt time.Time
}

type FoodEntry struct {
	ID        string
	UserID    string
	Calories  float64
	ProteinG  float64
	FatG      float64
	CarbsG    float64
	Comment   string
	CreatedAt time.Time
}

type WaterEntry struct {
	ID        string
	UserID    string
	Liters    float64
	CreatedAt time.Time
}

// DailyAggregate holds the running totals of one user for one local calendar day.
type DailyAggregate struct {
	UserID        string
	Day           string
	AnchorUTC     time.Time
	TotalCalories float64
	TotalProteinG float64
	TotalFatG     float64
	TotalCarbsG   float64
	TotalWaterL   float64
	UpdatedAt     time.Time
}

// DayWindow is the UTC range covering one local calendar day. Both bounds are inclusive.
type DayWindow struct {
	Date  string
	Start time.Time
	End   time.Time
}

func (w DayWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Next returns the window of the following day. Windows are built from fixed offsets,
// so every day has the same length and Next starts one nanosecond after w.End.
func (w DayWindow) Next() DayWindow {
	start := w.End.Add(time.Nanosecond)
	date := w.Date
	if d, err := time.Parse(time.DateOnly, w.Date); err == nil {
		date = d.AddDate(0, 0, 1).Format(time.DateOnly)
	}
	return DayWindow{Date: date, Start: start, End: start.Add(w.End.Sub(w.Start))}
}

// Profile is a validated physiological profile. Nil pointers mean "not provided".
type Profile struct {
	Age              int
	WeightKg         float64
	HeightCm         float64
	Metabolism       *int
	Activity         int
	Goal             int
	Desire           *int
	DietType         int
	Gender           *string
	BodyFatPct       *float64
	Climate          int
	RestingHeartRate *int
}

// Targets is the full-precision output of the energy estimator.
type Targets struct {
	Calories float64
	ProteinG float64
	FatG     float64
	CarbsG   float64
	WaterL   float64
}
