package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/elstrm2/NutritionTracker/internal/apperror"
	"github.com/elstrm2/NutritionTracker/internal/model"
)

const (
	LogItemFood  = "food"
	LogItemWater = "water"
)

type LogItem struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	At        time.Time `json:"at"`
	LocalTime string    `json:"local_time"`
	Calories  float64   `json:"calories,omitempty"`
	ProteinG  float64   `json:"protein_g,omitempty"`
	FatG      float64   `json:"fat_g,omitempty"`
	CarbsG    float64   `json:"carbs_g,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	WaterL    float64   `json:"water_l,omitempty"`
}

type DailyLog struct {
	Date     string    `json:"date"`
	Timezone string    `json:"timezone"`
	Items    []LogItem `json:"items"`
}

// Empty reports that nothing was logged on the day.
func (l DailyLog) Empty() bool {
	return len(l.Items) == 0
}

type DailyProgress struct {
	Date              string  `json:"date"`
	TargetCalories    float64 `json:"target_calories"`
	TargetProteinG    float64 `json:"target_protein_g"`
	TargetFatG        float64 `json:"target_fat_g"`
	TargetCarbsG      float64 `json:"target_carbs_g"`
	TargetWaterL      float64 `json:"target_water_l"`
	EatenCalories     float64 `json:"eaten_calories"`
	EatenProteinG     float64 `json:"eaten_protein_g"`
	EatenFatG         float64 `json:"eaten_fat_g"`
	EatenCarbsG       float64 `json:"eaten_carbs_g"`
	DrankWaterL       float64 `json:"drank_water_l"`
	RemainingCalories float64 `json:"remaining_calories"`
	RemainingProteinG float64 `json:"remaining_protein_g"`
	RemainingFatG     float64 `json:"remaining_fat_g"`
	RemainingCarbsG   float64 `json:"remaining_carbs_g"`
	RemainingWaterL   float64 `json:"remaining_water_l"`
}

// LatestTarget returns the newest target snapshot regardless of the day it was set.
func (t *Tracker) LatestTarget(ctx context.Context, externalID string) (model.TargetSnapshot, error) {
	u, ok, err := t.existingUser(ctx, externalID)
	if err != nil {
		return model.TargetSnapshot{}, err
	}
	if !ok {
		return model.TargetSnapshot{}, apperror.NoTargetSet()
	}
	sctx, cancel := t.storeContext(ctx)
	defer cancel()
	snap, ok, err := t.store.LatestTarget(sctx, u.ID)
	if err != nil {
		return model.TargetSnapshot{}, t.storageErr("latest target", err, "user", externalID)
	}
	if !ok {
		return model.TargetSnapshot{}, apperror.NoTargetSet()
	}
	return snap, nil
}

// DailyLog lists the food and water entries of date, or of today when date is nil.
// Items are ordered by time; food precedes water at the same instant.
func (t *Tracker) DailyLog(ctx context.Context, externalID string, date *Date) (DailyLog, error) {
	u, ok, err := t.existingUser(ctx, externalID)
	if err != nil {
		return DailyLog{}, err
	}
	if !ok {
		u.Timezone = model.DefaultTimezone
	}
	loc := ParseOffset(u.Timezone)
	day := t.resolveWindow(date, loc)
	if !ok {
		return DailyLog{Date: day.Date, Timezone: loc.String(), Items: []LogItem{}}, nil
	}

	sctx, cancel := t.storeContext(ctx)
	defer cancel()
	foods, err := t.store.FoodEntriesBetween(sctx, u.ID, day.Start, day.End)
	if err != nil {
		return DailyLog{}, t.storageErr("list food entries", err, "user", externalID, "day", day.Date)
	}
	waters, err := t.store.WaterEntriesBetween(sctx, u.ID, day.Start, day.End)
	if err != nil {
		return DailyLog{}, t.storageErr("list water entries", err, "user", externalID, "day", day.Date)
	}

	items := make([]LogItem, 0, len(foods)+len(waters))
	for _, f := range foods {
		items = append(items, LogItem{
			Kind:      LogItemFood,
			ID:        f.ID,
			At:        f.CreatedAt,
			LocalTime: ToLocal(f.CreatedAt, loc).Format("15:04"),
			Calories:  f.Calories,
			ProteinG:  f.ProteinG,
			FatG:      f.FatG,
			CarbsG:    f.CarbsG,
			Comment:   f.Comment,
		})
	}
	for _, w := range waters {
		items = append(items, LogItem{
			Kind:      LogItemWater,
			ID:        w.ID,
			At:        w.CreatedAt,
			LocalTime: ToLocal(w.CreatedAt, loc).Format("15:04"),
			WaterL:    w.Liters,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.At.Equal(b.At) {
			return a.At.Before(b.At)
		}
		if a.Kind != b.Kind {
			return a.Kind == LogItemFood
		}
		return a.ID < b.ID
	})
	return DailyLog{Date: day.Date, Timezone: loc.String(), Items: items}, nil
}

// DailyProgress compares the day's totals with the latest target set on that same day.
// Both must exist, otherwise the day has no data.
func (t *Tracker) DailyProgress(ctx context.Context, externalID string, date *Date) (DailyProgress, error) {
	u, ok, err := t.existingUser(ctx, externalID)
	if err != nil {
		return DailyProgress{}, err
	}
	if !ok {
		u.Timezone = model.DefaultTimezone
	}
	day := t.resolveWindow(date, ParseOffset(u.Timezone))
	if !ok {
		return DailyProgress{}, apperror.NoDataForDate(day.Date)
	}

	sctx, cancel := t.storeContext(ctx)
	defer cancel()
	target, ok, err := t.store.LatestTargetBetween(sctx, u.ID, day.Start, day.End)
	if err != nil {
		return DailyProgress{}, t.storageErr("target for day", err, "user", externalID, "day", day.Date)
	}
	if !ok {
		return DailyProgress{}, apperror.NoDataForDate(day.Date)
	}
	agg, ok, err := t.store.DailyAggregate(sctx, u.ID, day.Date)
	if err != nil {
		return DailyProgress{}, t.storageErr("daily aggregate", err, "user", externalID, "day", day.Date)
	}
	if !ok {
		return DailyProgress{}, apperror.NoDataForDate(day.Date)
	}

	return DailyProgress{
		Date:              day.Date,
		TargetCalories:    target.Calories,
		TargetProteinG:    target.ProteinG,
		TargetFatG:        target.FatG,
		TargetCarbsG:      target.CarbsG,
		TargetWaterL:      target.WaterL,
		EatenCalories:     agg.TotalCalories,
		EatenProteinG:     agg.TotalProteinG,
		EatenFatG:         agg.TotalFatG,
		EatenCarbsG:       agg.TotalCarbsG,
		DrankWaterL:       agg.TotalWaterL,
		RemainingCalories: remaining(target.Calories, agg.TotalCalories),
		RemainingProteinG: remaining(target.ProteinG, agg.TotalProteinG),
		RemainingFatG:     remaining(target.FatG, agg.TotalFatG),
		RemainingCarbsG:   remaining(target.CarbsG, agg.TotalCarbsG),
		RemainingWaterL:   remaining(target.WaterL, agg.TotalWaterL),
	}, nil
}

func (t *Tracker) resolveWindow(date *Date, loc *time.Location) model.DayWindow {
	if date == nil {
		return LocalDayWindowUTC(LocalDate(t.now(), loc), loc)
	}
	return LocalDayWindowUTC(*date, loc)
}

func remaining(target, consumed float64) float64 {
	return math.Max(0, target-consumed)
}
