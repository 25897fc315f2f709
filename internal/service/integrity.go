package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/elstrm2/NutritionTracker/internal/model"
)

const driftEpsilon = 1e-6

type AggregateDrift struct {
	UserID   string  `json:"user_id"`
	Day      string  `json:"day"`
	Field    string  `json:"field"`
	Stored   float64 `json:"stored"`
	Computed float64 `json:"computed"`
}

type DoctorReport struct {
	Users             int              `json:"users"`
	AggregatesChecked int              `json:"aggregates_checked"`
	Drift             []AggregateDrift `json:"drift,omitempty"`
	FixedAggregates   int              `json:"fixed_aggregates,omitempty"`
}

// RunDoctor recomputes every stored daily aggregate from its entries, using the owner's current
// timezone, and reports totals that disagree. With fix, drifted aggregates are rewritten.
func (t *Tracker) RunDoctor(ctx context.Context, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	users, err := t.store.ListUsers(ctx)
	if err != nil {
		return report, fmt.Errorf("doctor list users: %w", err)
	}
	report.Users = len(users)

	repairs := make([]model.DailyAggregate, 0)
	for _, u := range users {
		aggs, err := t.store.ListAggregates(ctx, u.ID)
		if err != nil {
			return report, fmt.Errorf("doctor list aggregates for %s: %w", u.ExternalID, err)
		}
		loc := ParseOffset(u.Timezone)
		for _, agg := range aggs {
			report.AggregatesChecked++
			date, err := ParseLocalDate(agg.Day)
			if err != nil {
				t.logger.Warn("doctor skipped aggregate with malformed day", "user", u.ExternalID, "day", agg.Day)
				continue
			}
			computed, err := t.recompute(ctx, u.ID, LocalDayWindowUTC(date, loc))
			if err != nil {
				return report, fmt.Errorf("doctor recompute %s %s: %w", u.ExternalID, agg.Day, err)
			}
			drift := compareAggregates(agg, computed)
			if len(drift) == 0 {
				continue
			}
			report.Drift = append(report.Drift, drift...)
			computed.AnchorUTC = agg.AnchorUTC
			repairs = append(repairs, computed)
		}
	}

	if fix && len(repairs) > 0 {
		if err := t.store.ReplaceAggregates(ctx, repairs); err != nil {
			return report, fmt.Errorf("doctor fix aggregates: %w", err)
		}
		report.FixedAggregates = len(repairs)
		t.logger.Info("doctor rewrote aggregates", "count", len(repairs))
	}
	return report, nil
}

func (t *Tracker) recompute(ctx context.Context, userID string, day model.DayWindow) (model.DailyAggregate, error) {
	agg := model.DailyAggregate{UserID: userID, Day: day.Date, AnchorUTC: day.Start, UpdatedAt: t.now()}
	foods, err := t.store.FoodEntriesBetween(ctx, userID, day.Start, day.End)
	if err != nil {
		return agg, err
	}
	for _, f := range foods {
		agg.TotalCalories += f.Calories
		agg.TotalProteinG += f.ProteinG
		agg.TotalFatG += f.FatG
		agg.TotalCarbsG += f.CarbsG
	}
	waters, err := t.store.WaterEntriesBetween(ctx, userID, day.Start, day.End)
	if err != nil {
		return agg, err
	}
	for _, w := range waters {
		agg.TotalWaterL += w.Liters
	}
	return agg, nil
}

func compareAggregates(stored, computed model.DailyAggregate) []AggregateDrift {
	fields := []struct {
		name     string
		stored   float64
		computed float64
	}{
		{"calories", stored.TotalCalories, computed.TotalCalories},
		{"protein", stored.TotalProteinG, computed.TotalProteinG},
		{"fat", stored.TotalFatG, computed.TotalFatG},
		{"carbs", stored.TotalCarbsG, computed.TotalCarbsG},
		{"water", stored.TotalWaterL, computed.TotalWaterL},
	}
	var out []AggregateDrift
	for _, f := range fields {
		if math.Abs(f.stored-f.computed) > driftEpsilon {
			out = append(out, AggregateDrift{UserID: stored.UserID, Day: stored.Day, Field: f.name, Stored: f.stored, Computed: f.computed})
		}
	}
	return out
}

// Now exposes the tracker clock to callers that name files or log lines after it.
func (t *Tracker) Now() time.Time {
	return t.now()
}
