package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elstrm2/NutritionTracker/internal/apperror"
	"github.com/elstrm2/NutritionTracker/internal/i18n"
	"github.com/elstrm2/NutritionTracker/internal/model"
	"github.com/elstrm2/NutritionTracker/internal/service"
)

// optionalArg marks an omitted /calculate_info parameter.
const optionalArg = "-"

type numberError struct {
	value string
}

func (e *numberError) Error() string {
	return fmt.Sprintf("invalid number %q", e.value)
}

func (d *Dispatcher) t(u model.User, key string, params i18n.Params) string {
	return d.catalog.T(u.Language, key, params)
}

func (d *Dispatcher) start(_ context.Context, u model.User, _ []string) (string, error) {
	return d.t(u, "start", nil), nil
}

func (d *Dispatcher) help(_ context.Context, u model.User, _ []string) (string, error) {
	return d.t(u, "help", nil), nil
}

func (d *Dispatcher) setInfo(ctx context.Context, u model.User, args []string) (string, error) {
	if len(args) != 5 {
		return "", errUsage
	}
	values, err := parseNumbers(args)
	if err != nil {
		return "", err
	}
	in := service.TargetInput{Calories: values[0], ProteinG: values[1], FatG: values[2], CarbsG: values[3], WaterL: values[4]}
	if _, err := d.tracker.SetTarget(ctx, u.ExternalID, in); err != nil {
		if errors.Is(err, apperror.ErrCaloriesMismatch) {
			return d.t(u, "calories_mismatch", i18n.Params{
				"derived":  service.MacroCalories(in.ProteinG, in.FatG, in.CarbsG),
				"calories": in.Calories,
			}), nil
		}
		return "", err
	}
	return d.t(u, "data_updated", nil), nil
}

func (d *Dispatcher) getInfo(ctx context.Context, u model.User, _ []string) (string, error) {
	snap, err := d.tracker.LatestTarget(ctx, u.ExternalID)
	if err != nil {
		return "", err
	}
	r := service.RoundTargets(model.Targets{Calories: snap.Calories, ProteinG: snap.ProteinG, FatG: snap.FatG, CarbsG: snap.CarbsG, WaterL: snap.WaterL})
	return d.t(u, "current_info_message", i18n.Params{
		"calories":      r.Calories,
		"protein":       r.ProteinG,
		"fat":           r.FatG,
		"carbohydrates": r.CarbsG,
		"water":         r.WaterL,
	}), nil
}

func (d *Dispatcher) calculateInfo(_ context.Context, u model.User, args []string) (string, error) {
	if len(args) != 12 {
		return "", errUsage
	}
	profile, err := service.ParseProfile(args, optionalArg)
	if err != nil {
		return "", err
	}
	targets := service.RoundTargets(service.EstimateTargets(profile))
	return d.t(u, "auto_update_info", i18n.Params{"command": service.SetTargetCommand(targets)}), nil
}

func (d *Dispatcher) addFood(ctx context.Context, u model.User, args []string) (string, error) {
	if len(args) < 4 {
		return "", errUsage
	}
	values, err := parseNumbers(args[:4])
	if err != nil {
		return "", err
	}
	res, err := d.tracker.AddFood(ctx, u.ExternalID, service.FoodInput{
		Grams:          values[0],
		ProteinPer100g: values[1],
		FatPer100g:     values[2],
		CarbsPer100g:   values[3],
		Comment:        strings.Join(args[4:], " "),
	})
	if err != nil {
		return "", err
	}
	return d.t(u, "food_added", i18n.Params{"calories": res.Entry.Calories}), nil
}

func (d *Dispatcher) addWater(ctx context.Context, u model.User, args []string) (string, error) {
	if len(args) != 1 {
		return "", errUsage
	}
	liters, err := parseNumber(args[0])
	if err != nil {
		return "", err
	}
	if _, err := d.tracker.AddWater(ctx, u.ExternalID, liters); err != nil {
		return "", err
	}
	return d.t(u, "water_added", i18n.Params{"water": liters}), nil
}

func (d *Dispatcher) setTimezone(ctx context.Context, u model.User, args []string) (string, error) {
	if len(args) != 1 {
		return "", errUsage
	}
	updated, err := d.tracker.SetTimezone(ctx, u.ExternalID, args[0])
	if err != nil {
		return "", err
	}
	return d.t(u, "timezone_set", i18n.Params{"timezone": updated.Timezone}), nil
}

func (d *Dispatcher) setLanguage(ctx context.Context, u model.User, args []string) (string, error) {
	if len(args) != 1 {
		return "", errUsage
	}
	lang := strings.ToLower(args[0])
	if !d.catalog.Supports(lang) {
		return "", apperror.Validation("language", apperror.ReasonOutOfRange)
	}
	updated, err := d.tracker.SetLanguage(ctx, u.ExternalID, lang)
	if err != nil {
		return "", err
	}
	return d.t(updated, "language_changed", i18n.Params{"language": updated.Language}), nil
}

func (d *Dispatcher) dailyLog(ctx context.Context, u model.User, args []string) (string, error) {
	date, err := optionalDate(args)
	if err != nil {
		return "", err
	}
	log, err := d.tracker.DailyLog(ctx, u.ExternalID, date)
	if err != nil {
		return "", err
	}
	if log.Empty() {
		return d.t(u, "daily_log_empty", i18n.Params{"date": log.Date}), nil
	}

	lines := make([]string, 0, len(log.Items)+1)
	lines = append(lines, d.t(u, "daily_food_and_water_log", i18n.Params{"date": log.Date, "timezone": log.Timezone}))
	for _, item := range log.Items {
		switch item.Kind {
		case service.LogItemFood:
			lines = append(lines, d.t(u, "food_entry", i18n.Params{
				"time":          item.LocalTime,
				"calories":      item.Calories,
				"protein":       item.ProteinG,
				"fat":           item.FatG,
				"carbohydrates": item.CarbsG,
				"comment":       item.Comment,
			}))
		case service.LogItemWater:
			lines = append(lines, d.t(u, "water_entry", i18n.Params{"time": item.LocalTime, "water": item.WaterL}))
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (d *Dispatcher) dailyProgress(ctx context.Context, u model.User, args []string) (string, error) {
	date, err := optionalDate(args)
	if err != nil {
		return "", err
	}
	p, err := d.tracker.DailyProgress(ctx, u.ExternalID, date)
	if err != nil {
		return "", err
	}
	return d.t(u, "daily_progress_message", i18n.Params{
		"date":               p.Date,
		"calories_eaten":     p.EatenCalories,
		"calories_total":     p.TargetCalories,
		"calories_remaining": p.RemainingCalories,
		"protein_eaten":      p.EatenProteinG,
		"protein_total":      p.TargetProteinG,
		"protein_remaining":  p.RemainingProteinG,
		"fat_eaten":          p.EatenFatG,
		"fat_total":          p.TargetFatG,
		"fat_remaining":      p.RemainingFatG,
		"carbs_eaten":        p.EatenCarbsG,
		"carbs_total":        p.TargetCarbsG,
		"carbs_remaining":    p.RemainingCarbsG,
		"water_drank":        p.DrankWaterL,
		"water_total":        p.TargetWaterL,
		"water_remaining":    p.RemainingWaterL,
	}), nil
}

func (d *Dispatcher) resetDailyProgress(ctx context.Context, u model.User, _ []string) (string, error) {
	if _, err := d.tracker.ResetDay(ctx, u.ExternalID); err != nil {
		return "", err
	}
	return d.t(u, "progress_reset", nil), nil
}

func (d *Dispatcher) userCount(ctx context.Context, u model.User, _ []string) (string, error) {
	n, err := d.tracker.CountUsers(ctx)
	if err != nil {
		return "", err
	}
	return d.t(u, "user_count_message", i18n.Params{"count": n}), nil
}

func parseNumber(s string) (float64, error) {
	v, err := service.ParseNumber(s)
	if err != nil {
		return 0, &numberError{value: s}
	}
	return v, nil
}

func parseNumbers(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := parseNumber(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func optionalDate(args []string) (*service.Date, error) {
	switch len(args) {
	case 0:
		return nil, nil
	case 1:
		d, err := service.ParseLocalDate(args[0])
		if err != nil {
			return nil, err
		}
		return &d, nil
	}
	return nil, errUsage
}

