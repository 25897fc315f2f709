package service

import (
	"context"
	"time"

	"github.com/elstrm2/NutritionTracker/internal/model"
)

type FoodInput struct {
	Grams          float64
	ProteinPer100g float64
	FatPer100g     float64
	CarbsPer100g   float64
	Comment        string
}

type AddFoodResult struct {
	Entry     model.FoodEntry
	Aggregate model.DailyAggregate
}

type AddWaterResult struct {
	Entry     model.WaterEntry
	Aggregate model.DailyAggregate
}

// AddFood records a food entry and adds it to today's totals in the user's current timezone.
func (t *Tracker) AddFood(ctx context.Context, externalID string, in FoodInput) (AddFoodResult, error) {
	macros, err := ValidateFoodGrams(in.Grams, in.ProteinPer100g, in.FatPer100g, in.CarbsPer100g, in.Comment)
	if err != nil {
		return AddFoodResult{}, err
	}
	u, err := t.User(ctx, externalID)
	if err != nil {
		return AddFoodResult{}, err
	}
	now := t.now()
	day := todayWindow(u, now)
	entry := model.FoodEntry{
		ID:        t.ids.New(),
		UserID:    u.ID,
		Calories:  macros.Calories,
		ProteinG:  macros.ProteinG,
		FatG:      macros.FatG,
		CarbsG:    macros.CarbsG,
		Comment:   macros.Comment,
		CreatedAt: now,
	}

	sctx, cancel := t.storeContext(ctx)
	defer cancel()
	agg, err := t.store.AddFood(sctx, entry, day)
	if err != nil {
		return AddFoodResult{}, t.storageErr("add food", err, "user", externalID, "day", day.Date)
	}
	t.logger.Debug("food added", "user", externalID, "day", day.Date, "calories", entry.Calories)
	return AddFoodResult{Entry: entry, Aggregate: agg}, nil
}

// AddWater records a water entry and adds it to today's totals.
func (t *Tracker) AddWater(ctx context.Context, externalID string, liters float64) (AddWaterResult, error) {
	if err := ValidateWaterAmount(liters); err != nil {
		return AddWaterResult{}, err
	}
	u, err := t.User(ctx, externalID)
	if err != nil {
		return AddWaterResult{}, err
	}
	now := t.now()
	day := todayWindow(u, now)
	entry := model.WaterEntry{
		ID:        t.ids.New(),
		UserID:    u.ID,
		Liters:    liters,
		CreatedAt: now,
	}

	sctx, cancel := t.storeContext(ctx)
	defer cancel()
	agg, err := t.store.AddWater(sctx, entry, day)
	if err != nil {
		return AddWaterResult{}, t.storageErr("add water", err, "user", externalID, "day", day.Date)
	}
	t.logger.Debug("water added", "user", externalID, "day", day.Date, "liters", liters)
	return AddWaterResult{Entry: entry, Aggregate: agg}, nil
}

// ResetDay removes today's entries and targets and zeroes today's aggregate.
// Other days are untouched.
func (t *Tracker) ResetDay(ctx context.Context, externalID string) (model.DayWindow, error) {
	u, err := t.User(ctx, externalID)
	if err != nil {
		return model.DayWindow{}, err
	}
	now := t.now()
	day := todayWindow(u, now)

	sctx, cancel := t.storeContext(ctx)
	defer cancel()
	if err := t.store.ResetDay(sctx, u.ID, day, now); err != nil {
		return model.DayWindow{}, t.storageErr("reset day", err, "user", externalID, "day", day.Date)
	}
	t.logger.Info("day reset", "user", externalID, "day", day.Date)
	return day, nil
}

func todayWindow(u model.User, now time.Time) model.DayWindow {
	loc := ParseOffset(u.Timezone)
	return LocalDayWindowUTC(LocalDate(now, loc), loc)
}
