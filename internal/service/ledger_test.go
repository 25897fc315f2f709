package service_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/elstrm2/NutritionTracker/internal/apperror"
	"github.com/elstrm2/NutritionTracker/internal/model"
	"github.com/elstrm2/NutritionTracker/internal/service"
	"github.com/elstrm2/NutritionTracker/internal/testutil"
)

func TestAddFoodIsCommutative(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	a := service.FoodInput{Grams: 120, ProteinPer100g: 25, FatPer100g: 3.5, CarbsPer100g: 0}
	b := service.FoodInput{Grams: 80, ProteinPer100g: 2.1, FatPer100g: 0.4, CarbsPer100g: 71, Comment: "rice"}

	first, _ := newTestTracker(t)
	if _, err := first.AddFood(ctx, "u", a); err != nil {
		t.Fatalf("add a: %v", err)
	}
	resAB, err := first.AddFood(ctx, "u", b)
	if err != nil {
		t.Fatalf("add b: %v", err)
	}

	second, _ := newTestTracker(t)
	if _, err := second.AddFood(ctx, "u", b); err != nil {
		t.Fatalf("add b: %v", err)
	}
	resBA, err := second.AddFood(ctx, "u", a)
	if err != nil {
		t.Fatalf("add a: %v", err)
	}

	x, y := resAB.Aggregate, resBA.Aggregate
	for name, pair := range map[string][2]float64{
		"calories": {x.TotalCalories, y.TotalCalories},
		"protein":  {x.TotalProteinG, y.TotalProteinG},
		"fat":      {x.TotalFatG, y.TotalFatG},
		"carbs":    {x.TotalCarbsG, y.TotalCarbsG},
	} {
		if math.Abs(pair[0]-pair[1]) > 1e-9 {
			t.Fatalf("%s differs by order: %v vs %v", name, pair[0], pair[1])
		}
	}
	if x.Day != "2026-03-10" {
		t.Fatalf("expected entries on 2026-03-10, got %s", x.Day)
	}
}

func TestAddFoodDerivesCaloriesFromMacros(t *testing.T) {
	t.Parallel()
	tr, _ := newTestTracker(t)

	res, err := tr.AddFood(context.Background(), "u", service.FoodInput{Grams: 200, ProteinPer100g: 10, FatPer100g: 5, CarbsPer100g: 20})
	if err != nil {
		t.Fatalf("add food: %v", err)
	}
	if res.Entry.Calories != 20*4+10*9+40*4 {
		t.Fatalf("expected 330 kcal, got %v", res.Entry.Calories)
	}
	if res.Aggregate.TotalCalories != res.Entry.Calories {
		t.Fatalf("aggregate %v does not match entry %v", res.Aggregate.TotalCalories, res.Entry.Calories)
	}
}

func TestValidationFailsBeforeAnyMutation(t *testing.T) {
	t.Parallel()
	tr, _ := newTestTracker(t)
	ctx := context.Background()

	if _, err := tr.AddFood(ctx, "u", service.FoodInput{Grams: 100}); apperror.ReasonOf(err) != apperror.ReasonNoNonzeroMacro {
		t.Fatalf("expected no-nonzero-macro error, got %v", err)
	}
	if _, err := tr.AddWater(ctx, "u", 0); !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("expected water validation error, got %v", err)
	}
	if _, err := tr.SetTarget(ctx, "u", service.TargetInput{Calories: 2065, ProteinG: 150, FatG: 50, CarbsG: 250, WaterL: 2.5}); !errors.Is(err, apperror.ErrCaloriesMismatch) {
		t.Fatalf("expected calories mismatch, got %v", err)
	}
	n, err := tr.CountUsers(ctx)
	if err != nil {
		t.Fatalf("count users: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected rejected commands to create nothing, got %d users", n)
	}
}

func TestEntriesUseUserTimezoneDay(t *testing.T) {
	t.Parallel()
	tr, clock := newTestTracker(t)
	ctx := context.Background()

	clock.Set(time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC))
	if _, err := tr.SetTimezone(ctx, "u", "UTC+03"); err != nil {
		t.Fatalf("set timezone: %v", err)
	}
	res, err := tr.AddWater(ctx, "u", 0.3)
	if err != nil {
		t.Fatalf("add water: %v", err)
	}
	if res.Aggregate.Day != "2026-03-11" {
		t.Fatalf("expected local day 2026-03-11, got %s", res.Aggregate.Day)
	}
	if !res.Aggregate.AnchorUTC.Equal(time.Date(2026, 3, 10, 21, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected anchor %s", res.Aggregate.AnchorUTC)
	}
}

func TestResetDayEmptiesTodayOnly(t *testing.T) {
	t.Parallel()
	tr, clock := newTestTracker(t)
	ctx := context.Background()
	today := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if _, err := tr.AddFood(ctx, "u", service.FoodInput{Grams: 100, CarbsPer100g: 50}); err != nil {
		t.Fatalf("add food today: %v", err)
	}
	if _, err := tr.AddWater(ctx, "u", 1); err != nil {
		t.Fatalf("add water today: %v", err)
	}
	clock.Advance(24 * time.Hour)
	if _, err := tr.AddWater(ctx, "u", 2); err != nil {
		t.Fatalf("add water tomorrow: %v", err)
	}

	clock.Set(today)
	day, err := tr.ResetDay(ctx, "u")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if day.Date != "2026-03-10" {
		t.Fatalf("expected reset of 2026-03-10, got %s", day.Date)
	}

	log, err := tr.DailyLog(ctx, "u", nil)
	if err != nil {
		t.Fatalf("daily log: %v", err)
	}
	if !log.Empty() {
		t.Fatalf("expected empty log after reset, got %+v", log.Items)
	}

	tomorrow := service.Date{Year: 2026, Month: time.March, Day: 11}
	next, err := tr.DailyLog(ctx, "u", &tomorrow)
	if err != nil {
		t.Fatalf("daily log tomorrow: %v", err)
	}
	if len(next.Items) != 1 || next.Items[0].WaterL != 2 {
		t.Fatalf("expected tomorrow untouched, got %+v", next.Items)
	}
}

func TestAddFoodConcurrentSameDayLosesNothing(t *testing.T) {
	t.Parallel()
	tr, _ := newTestTracker(t)
	ctx := context.Background()
	if _, err := tr.User(ctx, "u"); err != nil {
		t.Fatalf("create user: %v", err)
	}

	const n = 40
	food := service.FoodInput{Grams: 100, ProteinPer100g: 10, FatPer100g: 2, CarbsPer100g: 5}
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := tr.AddFood(ctx, "u", food); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := tr.AddWater(ctx, "u", 0.25); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent add: %v", err)
	}

	log, err := tr.DailyLog(ctx, "u", nil)
	if err != nil {
		t.Fatalf("daily log: %v", err)
	}
	if len(log.Items) != 2*n {
		t.Fatalf("expected %d entries, got %d", 2*n, len(log.Items))
	}
	if _, err := tr.SetTarget(ctx, "u", service.TargetInput{Calories: 2000, ProteinG: 150, FatG: 50, CarbsG: 237.5, WaterL: 2}); err != nil {
		t.Fatalf("set target: %v", err)
	}
	p, err := tr.DailyProgress(ctx, "u", nil)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.EatenProteinG != 10*n || p.EatenFatG != 2*n || p.EatenCarbsG != 5*n {
		t.Fatalf("lost macro updates: %+v", p)
	}
	if math.Abs(p.EatenCalories-float64(n)*(10*4+2*9+5*4)) > 1e-6 {
		t.Fatalf("lost calorie updates: %v", p.EatenCalories)
	}
	if math.Abs(p.DrankWaterL-0.25*n) > 1e-9 {
		t.Fatalf("lost water updates: %v", p.DrankWaterL)
	}
}

type failingStore struct {
	service.Store
}

func (failingStore) GetOrCreateUser(context.Context, model.User) (model.User, error) {
	return model.User{}, errors.New("disk on fire")
}

func TestStorageErrorsSurfaceAsStorageFailure(t *testing.T) {
	t.Parallel()
	tr := service.NewTracker(failingStore{}, nil, testutil.FixedClock(), testutil.NewStubIDGenerator())

	_, err := tr.AddWater(context.Background(), "u", 1)
	if !errors.Is(err, apperror.ErrStorage) {
		t.Fatalf("expected storage failure, got %v", err)
	}
}
