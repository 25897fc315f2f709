package service_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/elstrm2/NutritionTracker/internal/apperror"
	"github.com/elstrm2/NutritionTracker/internal/service"
)

func TestValidateTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		calories  float64
		protein   float64
		fat       float64
		carbs     float64
		water     float64
		wantKind  error
		wantField string
	}{
		{name: "consistent", calories: 2050, protein: 150, fat: 50, carbs: 250, water: 2.5},
		{name: "within tolerance", calories: 2060, protein: 150, fat: 50, carbs: 250, water: 2.5},
		{name: "mismatch", calories: 2065, protein: 150, fat: 50, carbs: 250, water: 2.5, wantKind: apperror.ErrCaloriesMismatch, wantField: "calories"},
		{name: "calories too low", calories: 5, protein: 1, fat: 0, carbs: 0, water: 1, wantKind: apperror.ErrValidation, wantField: "calories"},
		{name: "negative protein", calories: 100, protein: -1, fat: 0, carbs: 26, water: 1, wantKind: apperror.ErrValidation, wantField: "protein"},
		{name: "fat too high", calories: 100, protein: 0, fat: 100001, carbs: 0, water: 1, wantKind: apperror.ErrValidation, wantField: "fat"},
		{name: "carbs nan", calories: 100, protein: 0, fat: 0, carbs: math.NaN(), water: 1, wantKind: apperror.ErrValidation, wantField: "carbs"},
		{name: "water too low", calories: 2050, protein: 150, fat: 50, carbs: 250, water: 0.05, wantKind: apperror.ErrValidation, wantField: "water"},
		{name: "range checked before mismatch", calories: 2050, protein: 150, fat: 50, carbs: 250, water: 101, wantKind: apperror.ErrValidation, wantField: "water"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidateTarget(tt.calories, tt.protein, tt.fat, tt.carbs, tt.water)
			if tt.wantKind == nil {
				if err != nil {
					t.Fatalf("expected valid target, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantKind) {
				t.Fatalf("expected %v, got %v", tt.wantKind, err)
			}
			if got := apperror.FieldOf(err); got != tt.wantField {
				t.Fatalf("expected field %q, got %q", tt.wantField, got)
			}
		})
	}
}

func TestValidateFoodGrams(t *testing.T) {
	t.Parallel()

	got, err := service.ValidateFoodGrams(150, 10, 2, 20, "  oatmeal ")
	if err != nil {
		t.Fatalf("validate food: %v", err)
	}
	if got.ProteinG != 15 || got.FatG != 3 || got.CarbsG != 30 {
		t.Fatalf("unexpected scaled macros: %+v", got)
	}
	if got.Calories != 15*4+3*9+30*4 {
		t.Fatalf("expected derived calories 207, got %v", got.Calories)
	}
	if got.Comment != "oatmeal" {
		t.Fatalf("expected trimmed comment, got %q", got.Comment)
	}

	tests := []struct {
		name       string
		grams      float64
		p, f, c    float64
		comment    string
		wantField  string
		wantReason string
	}{
		{name: "zero grams", grams: 0, p: 1, wantField: "grams", wantReason: apperror.ReasonOutOfRange},
		{name: "too many grams", grams: 100001, p: 1, wantField: "grams", wantReason: apperror.ReasonOutOfRange},
		{name: "negative fat", grams: 10, p: 1, f: -1, wantField: "fat_per_100g", wantReason: apperror.ReasonOutOfRange},
		{name: "all zero", grams: 10, wantField: "macros", wantReason: apperror.ReasonNoNonzeroMacro},
		{name: "long comment", grams: 10, c: 5, comment: strings.Repeat("щ", 101), wantField: "comment", wantReason: apperror.ReasonTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ValidateFoodGrams(tt.grams, tt.p, tt.f, tt.c, tt.comment)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if apperror.FieldOf(err) != tt.wantField || apperror.ReasonOf(err) != tt.wantReason {
				t.Fatalf("expected %s/%s, got %s/%s", tt.wantField, tt.wantReason, apperror.FieldOf(err), apperror.ReasonOf(err))
			}
		})
	}

	if _, err := service.ValidateFoodGrams(10, 0, 0, 5, strings.Repeat("щ", 100)); err != nil {
		t.Fatalf("expected 100-character comment to pass, got %v", err)
	}
}

func TestValidateWaterAmount(t *testing.T) {
	t.Parallel()

	for _, ok := range []float64{0.1, 2.5, 100} {
		if err := service.ValidateWaterAmount(ok); err != nil {
			t.Fatalf("expected %v liters to pass, got %v", ok, err)
		}
	}
	for _, bad := range []float64{0, 0.09, 100.01, math.Inf(1)} {
		if err := service.ValidateWaterAmount(bad); !errors.Is(err, apperror.ErrValidation) {
			t.Fatalf("expected %v liters to fail, got %v", bad, err)
		}
	}
}

func TestValidateTimezoneString(t *testing.T) {
	t.Parallel()

	valid := map[string]string{
		"UTC":       "UTC",
		"UTC+03":    "UTC+03",
		"UTC-05:30": "UTC-05:30",
		"UTC+14":    "UTC+14",
		"UTC+00":    "UTC",
		"UTC+05:00": "UTC+05",
	}
	for in, want := range valid {
		got, err := service.ValidateTimezoneString(in)
		if err != nil {
			t.Fatalf("expected %q to be valid, got %v", in, err)
		}
		if got != want {
			t.Fatalf("canonical form of %q: got %q want %q", in, got, want)
		}
	}
	for _, bad := range []string{"UTC+15", "UTC+3", "UTC+03:60", "GMT+03", "utc", "Europe/Moscow", ""} {
		if _, err := service.ValidateTimezoneString(bad); apperror.FieldOf(err) != "timezone" {
			t.Fatalf("expected %q to fail with timezone field, got %v", bad, err)
		}
	}
}

func TestValidatePhysiologicalProfile(t *testing.T) {
	t.Parallel()

	p, err := service.ValidatePhysiologicalProfile(service.ProfileInput{
		Age:      ptr(30),
		WeightKg: ptr(70.0),
		HeightCm: ptr(175.0),
		Gender:   ptr("F"),
	})
	if err != nil {
		t.Fatalf("validate minimal profile: %v", err)
	}
	if p.Activity != 0 || p.Goal != 0 || p.DietType != 0 || p.Climate != 0 {
		t.Fatalf("expected defaults of zero, got %+v", p)
	}
	if p.Metabolism != nil || p.Desire != nil || p.BodyFatPct != nil || p.RestingHeartRate != nil {
		t.Fatalf("expected unset optionals to stay nil, got %+v", p)
	}
	if p.Gender == nil || *p.Gender != "f" {
		t.Fatalf("expected normalized gender f, got %v", p.Gender)
	}

	base := func() service.ProfileInput {
		return service.ProfileInput{Age: ptr(30), WeightKg: ptr(70.0), HeightCm: ptr(175.0)}
	}
	tests := []struct {
		name   string
		mutate func(*service.ProfileInput)
		field  string
	}{
		{"missing age", func(in *service.ProfileInput) { in.Age = nil }, "age"},
		{"age", func(in *service.ProfileInput) { in.Age = ptr(201) }, "age"},
		{"weight", func(in *service.ProfileInput) { in.WeightKg = ptr(0.5) }, "weight"},
		{"height", func(in *service.ProfileInput) { in.HeightCm = ptr(301.0) }, "height"},
		{"metabolism", func(in *service.ProfileInput) { in.Metabolism = ptr(0) }, "metabolism"},
		{"activity", func(in *service.ProfileInput) { in.Activity = ptr(11) }, "activity"},
		{"goal", func(in *service.ProfileInput) { in.Goal = ptr(2) }, "goal"},
		{"desire", func(in *service.ProfileInput) { in.Desire = ptr(11) }, "desire"},
		{"diet type", func(in *service.ProfileInput) { in.DietType = ptr(4) }, "diet_type"},
		{"gender", func(in *service.ProfileInput) { in.Gender = ptr("x") }, "gender"},
		{"body fat", func(in *service.ProfileInput) { in.BodyFatPct = ptr(0.0) }, "body_fat"},
		{"climate", func(in *service.ProfileInput) { in.Climate = ptr(-2) }, "climate"},
		{"rhr", func(in *service.ProfileInput) { in.RestingHeartRate = ptr(39) }, "rhr"},
		{"first failure wins", func(in *service.ProfileInput) { in.Goal = ptr(5); in.RestingHeartRate = ptr(10) }, "goal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.mutate(&in)
			_, err := service.ValidatePhysiologicalProfile(in)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := apperror.FieldOf(err); got != tt.field {
				t.Fatalf("expected field %q, got %q", tt.field, got)
			}
		})
	}
}

func TestParseProfileStopsAtFirstBadField(t *testing.T) {
	t.Parallel()

	p, err := service.ParseProfile(strings.Fields("30 70 175 5 5 -1 7 1 m 20 0 70"), "-")
	if err != nil {
		t.Fatalf("parse profile: %v", err)
	}
	if p.Age != 30 || p.Goal != -1 || p.RestingHeartRate == nil || *p.RestingHeartRate != 70 {
		t.Fatalf("unexpected profile %+v", p)
	}

	p, err = service.ParseProfile(strings.Fields("25 60 160 - - - - 0 - - - -"), "-")
	if err != nil {
		t.Fatalf("parse profile with unset fields: %v", err)
	}
	if p.Metabolism != nil || p.Gender != nil || p.BodyFatPct != nil || p.RestingHeartRate != nil {
		t.Fatalf("expected unset optionals, got %+v", p)
	}

	tests := []struct {
		args  string
		field string
	}{
		{"0 abc 175 5 5 -1 7 1 m 20 0 70", "age"},
		{"30 70 175 99 5 -1 7 1 m 20 0 xx", "metabolism"},
		{"30 70 175 5 5 -1 7 1 q 20 zz 70", "gender"},
		{"30 70 175 5 5 -1 7 1 m 20 zz 500", "climate"},
		{"- 70 175 5 5 -1 7 1 m 20 0 70", "age"},
	}
	for _, tt := range tests {
		_, err := service.ParseProfile(strings.Fields(tt.args), "-")
		if got := apperror.FieldOf(err); got != tt.field {
			t.Fatalf("%q: expected field %q, got %q (%v)", tt.args, tt.field, got, err)
		}
	}

	if _, err := service.ParseProfile([]string{"30"}, "-"); err == nil {
		t.Fatalf("expected short argument list to fail")
	}
}

func TestParseNumberAcceptsComma(t *testing.T) {
	t.Parallel()

	v, err := service.ParseNumber("2,5")
	if err != nil || v != 2.5 {
		t.Fatalf("expected 2.5, got %v (%v)", v, err)
	}
	if _, err := service.ParseNumber("abc"); err == nil {
		t.Fatalf("expected parse error")
	}
}
