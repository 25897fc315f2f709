package service

import (
	"fmt"
	"math"
	"strconv"

	"github.com/elstrm2/NutritionTracker/internal/model"
)

const (
	GenderMale   = "m"
	GenderFemale = "f"

	MaxWaterLiters = 100.0
)

// Diet types accepted by the estimator.
const (
	DietBalanced = iota
	DietHighProtein
	DietKeto
	DietHighCarb
)

type macroSplit struct {
	proteinPct, fatPct, carbsPct float64
}

var dietSplits = map[int]macroSplit{
	DietBalanced:    {20, 30, 50},
	DietHighProtein: {45, 30, 25},
	DietKeto:        {15, 75, 10},
	DietHighCarb:    {15, 25, 60},
}

// EstimateTargets computes daily targets from a validated profile. The result is not rounded.
func EstimateTargets(p model.Profile) model.Targets {
	bmr := (mifflinStJeor(p) + harrisBenedict(p)) / 2

	if p.Metabolism != nil {
		k := 0.95 + float64(*p.Metabolism-1)*0.01
		bmr *= math.Min(math.Max(k, 0.95), 1.05)
	}
	if p.Age > 60 {
		bmr *= 0.95
	}
	if p.Gender != nil && *p.Gender == GenderFemale && p.Age >= 50 {
		bmr *= 0.9
	}
	if p.RestingHeartRate != nil && *p.RestingHeartRate > 0 {
		bmr *= 70 / float64(*p.RestingHeartRate)
	}

	tdee := bmr * activityFactor(p.Activity)
	if p.Desire != nil {
		delta := 500 * float64(*p.Desire) / 10
		switch p.Goal {
		case -1:
			tdee -= delta
		case 1:
			tdee += delta
		}
	}

	split, ok := dietSplits[p.DietType]
	if !ok {
		split = dietSplits[DietBalanced]
	}
	protein := tdee * split.proteinPct / 100 / 4
	fat := tdee * split.fatPct / 100 / 9

	return model.Targets{
		Calories: tdee,
		ProteinG: protein,
		FatG:     fat,
		CarbsG:   (tdee - protein*4 - fat*9) / 4,
		WaterL:   math.Min(MaxWaterLiters, p.WeightKg*0.035*climateFactor(p.Climate)*activityWaterFactor(p.Activity)),
	}
}

// RoundTargets converts estimator output into whole calories and grams and one-decimal liters.
// Carbs are re-derived from the rounded protein and fat so the tuple still reconciles to calories.
func RoundTargets(t model.Targets) model.Targets {
	protein := math.RoundToEven(t.ProteinG)
	fat := math.RoundToEven(t.FatG)
	return model.Targets{
		Calories: math.Trunc(t.Calories),
		ProteinG: protein,
		FatG:     fat,
		CarbsG:   math.RoundToEven((t.Calories - protein*4 - fat*9) / 4),
		WaterL:   math.Min(MaxWaterLiters, math.RoundToEven(t.WaterL*10)/10),
	}
}

// SetTargetCommand renders rounded targets as the /set_info command that stores them.
func SetTargetCommand(t model.Targets) string {
	r := RoundTargets(t)
	return fmt.Sprintf("/set_info %s %s %s %s %s",
		formatPlain(r.Calories), formatPlain(r.ProteinG), formatPlain(r.FatG), formatPlain(r.CarbsG), formatPlain(r.WaterL))
}

func mifflinStJeor(p model.Profile) float64 {
	base := 10*p.WeightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	male, female := base+5, base-161
	return byGender(p.Gender, male, female)
}

func harrisBenedict(p model.Profile) float64 {
	age := float64(p.Age)
	male := 66.5 + 13.75*p.WeightKg + 5.003*p.HeightCm - 6.775*age
	female := 655.1 + 9.563*p.WeightKg + 1.85*p.HeightCm - 4.676*age
	return byGender(p.Gender, male, female)
}

func byGender(gender *string, male, female float64) float64 {
	if gender == nil {
		return (male + female) / 2
	}
	if *gender == GenderMale {
		return male
	}
	return female
}

func activityFactor(activity int) float64 {
	if activity <= 9 {
		return 1.2 + 0.1*float64(activity)
	}
	return 1.9
}

func activityWaterFactor(activity int) float64 {
	if activity <= 3 {
		return 1 + 0.05*float64(activity)
	}
	return 1.25 + 0.15*float64(activity-6)
}

func climateFactor(climate int) float64 {
	switch climate {
	case -1:
		return 0.8
	case 1:
		return 1.2
	}
	return 1
}

func formatPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
