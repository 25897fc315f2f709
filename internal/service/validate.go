package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/elstrm2/NutritionTracker/internal/apperror"
	"github.com/elstrm2/NutritionTracker/internal/model"
)

const (
	MaxCommentLength = 100

	// CalorieTolerance is the allowed gap between supplied calories and 4p+9f+4c.
	CalorieTolerance = 10.0
)

var timezonePattern = regexp.MustCompile(`^UTC(?:([+-])(\d{2})(?::(\d{2}))?)?$`)

// FoodMacros is a validated food entry scaled to the eaten amount.
type FoodMacros struct {
	Calories float64
	ProteinG float64
	FatG     float64
	CarbsG   float64
	Comment  string
}

// ProfileInput carries the twelve estimator fields. A nil pointer means the field was not provided.
type ProfileInput struct {
	Age              *int
	WeightKg         *float64
	HeightCm         *float64
	Metabolism       *int
	Activity         *int
	Goal             *int
	Desire           *int
	DietType         *int
	Gender           *string
	BodyFatPct       *float64
	Climate          *int
	RestingHeartRate *int
}

func ValidateTarget(calories, protein, fat, carbs, water float64) error {
	if err := checkFloatRange("calories", calories, 10, 100000); err != nil {
		return err
	}
	if err := checkFloatRange("protein", protein, 0, 100000); err != nil {
		return err
	}
	if err := checkFloatRange("fat", fat, 0, 100000); err != nil {
		return err
	}
	if err := checkFloatRange("carbs", carbs, 0, 100000); err != nil {
		return err
	}
	if err := checkFloatRange("water", water, 0.1, 100); err != nil {
		return err
	}
	derived := MacroCalories(protein, fat, carbs)
	if math.Abs(derived-calories) > CalorieTolerance {
		return apperror.CaloriesMismatch(calories, derived)
	}
	return nil
}

func ValidateFoodGrams(grams, proteinPer100g, fatPer100g, carbsPer100g float64, comment string) (FoodMacros, error) {
	if err := checkFloatRange("grams", grams, 1, 100000); err != nil {
		return FoodMacros{}, err
	}
	if err := checkFloatRange("protein_per_100g", proteinPer100g, 0, 100000); err != nil {
		return FoodMacros{}, err
	}
	if err := checkFloatRange("fat_per_100g", fatPer100g, 0, 100000); err != nil {
		return FoodMacros{}, err
	}
	if err := checkFloatRange("carbs_per_100g", carbsPer100g, 0, 100000); err != nil {
		return FoodMacros{}, err
	}
	if proteinPer100g == 0 && fatPer100g == 0 && carbsPer100g == 0 {
		return FoodMacros{}, apperror.Validation("macros", apperror.ReasonNoNonzeroMacro)
	}
	comment = strings.TrimSpace(comment)
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return FoodMacros{}, apperror.Validation("comment", apperror.ReasonTooLong)
	}

	p := proteinPer100g * grams / 100
	f := fatPer100g * grams / 100
	c := carbsPer100g * grams / 100
	return FoodMacros{
		Calories: MacroCalories(p, f, c),
		ProteinG: p,
		FatG:     f,
		CarbsG:   c,
		Comment:  comment,
	}, nil
}

func ValidateWaterAmount(liters float64) error {
	return checkFloatRange("water", liters, 0.1, 100)
}

// ValidateTimezoneString accepts UTC, UTC±HH and UTC±HH:MM with HH <= 14 and MM < 60,
// and returns the canonical form of the offset.
func ValidateTimezoneString(s string) (string, error) {
	offset, ok := parseOffsetSeconds(strings.TrimSpace(s))
	if !ok {
		return "", apperror.Validation("timezone", apperror.ReasonMalformed)
	}
	return formatOffset(offset), nil
}

func ValidatePhysiologicalProfile(in ProfileInput) (model.Profile, error) {
	var p model.Profile
	for _, check := range profileChecks {
		if err := check(in, &p); err != nil {
			return model.Profile{}, err
		}
	}
	return p, nil
}

// ParseProfile reads the estimator fields from command tokens in argument order. Each token is
// parsed and range-checked before the next one is read, so the error names the first bad field.
// A token equal to unset leaves an optional field unset.
func ParseProfile(tokens []string, unset string) (model.Profile, error) {
	if len(tokens) != len(profileChecks) {
		return model.Profile{}, fmt.Errorf("profile needs %d values, got %d", len(profileChecks), len(tokens))
	}
	optInt := func(field, tok string) (*int, error) {
		if tok == unset {
			return nil, nil
		}
		return parseIntToken(field, tok)
	}
	optFloat := func(field, tok string) (*float64, error) {
		if tok == unset {
			return nil, nil
		}
		return parseFloatToken(field, tok)
	}

	var in ProfileInput
	parsers := []func() error{
		func() (err error) { in.Age, err = parseIntToken("age", tokens[0]); return err },
		func() (err error) { in.WeightKg, err = parseFloatToken("weight", tokens[1]); return err },
		func() (err error) { in.HeightCm, err = parseFloatToken("height", tokens[2]); return err },
		func() (err error) { in.Metabolism, err = optInt("metabolism", tokens[3]); return err },
		func() (err error) { in.Activity, err = optInt("activity", tokens[4]); return err },
		func() (err error) { in.Goal, err = optInt("goal", tokens[5]); return err },
		func() (err error) { in.Desire, err = optInt("desire", tokens[6]); return err },
		func() (err error) { in.DietType, err = optInt("diet_type", tokens[7]); return err },
		func() error {
			if tokens[8] != unset {
				g := tokens[8]
				in.Gender = &g
			}
			return nil
		},
		func() (err error) { in.BodyFatPct, err = optFloat("body_fat", tokens[9]); return err },
		func() (err error) { in.Climate, err = optInt("climate", tokens[10]); return err },
		func() (err error) { in.RestingHeartRate, err = optInt("rhr", tokens[11]); return err },
	}

	var p model.Profile
	for i, parse := range parsers {
		if err := parse(); err != nil {
			return model.Profile{}, err
		}
		if err := profileChecks[i](in, &p); err != nil {
			return model.Profile{}, err
		}
	}
	return p, nil
}

func parseIntToken(field, tok string) (*int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(tok))
	if err != nil {
		return nil, apperror.Validation(field, apperror.ReasonMalformed)
	}
	return &v, nil
}

func parseFloatToken(field, tok string) (*float64, error) {
	v, err := ParseNumber(tok)
	if err != nil {
		return nil, apperror.Validation(field, apperror.ReasonMalformed)
	}
	return &v, nil
}

// profileChecks range-check one field each, in argument order, copying accepted values into p.
var profileChecks = []func(in ProfileInput, p *model.Profile) error{
	func(in ProfileInput, p *model.Profile) error {
		if in.Age == nil {
			return apperror.Validation("age", apperror.ReasonMalformed)
		}
		if err := checkIntRange("age", *in.Age, 1, 200); err != nil {
			return err
		}
		p.Age = *in.Age
		return nil
	},
	func(in ProfileInput, p *model.Profile) error {
		if in.WeightKg == nil {
			return apperror.Validation("weight", apperror.ReasonMalformed)
		}
		if err := checkFloatRange("weight", *in.WeightKg, 1, 1000); err != nil {
			return err
		}
		p.WeightKg = *in.WeightKg
		return nil
	},
	func(in ProfileInput, p *model.Profile) error {
		if in.HeightCm == nil {
			return apperror.Validation("height", apperror.ReasonMalformed)
		}
		if err := checkFloatRange("height", *in.HeightCm, 1, 300); err != nil {
			return err
		}
		p.HeightCm = *in.HeightCm
		return nil
	},
	func(in ProfileInput, p *model.Profile) error {
		if in.Metabolism == nil {
			return nil
		}
		if err := checkIntRange("metabolism", *in.Metabolism, 1, 10); err != nil {
			return err
		}
		p.Metabolism = intPtr(*in.Metabolism)
		return nil
	},
	func(in ProfileInput, p *model.Profile) error {
		if in.Activity == nil {
			return nil
		}
		if err := checkIntRange("activity", *in.Activity, 0, 10); err != nil {
			return err
		}
		p.Activity = *in.Activity
		return nil
	},
	func(in ProfileInput, p *model.Profile) error {
		if in.Goal == nil {
			return nil
		}
		if err := checkIntRange("goal", *in.Goal, -1, 1); err != nil {
			return err
		}
		p.Goal = *in.Goal
		return nil
	},
	func(in ProfileInput, p *model.Profile) error {
		if in.Desire == nil {
			return nil
		}
		if err := checkIntRange("desire", *in.Desire, 1, 10); err != nil {
			return err
		}
		p.Desire = intPtr(*in.Desire)
		return nil
	},
	func(in ProfileInput, p *model.Profile) error {
		if in.DietType == nil {
			return nil
		}
		if err := checkIntRange("diet_type", *in.DietType, 0, 3); err != nil {
			return err
		}
		p.DietType = *in.DietType
		return nil
	},
	func(in ProfileInput, p *model.Profile) error {
		if in.Gender == nil {
			return nil
		}
		g := strings.ToLower(strings.TrimSpace(*in.Gender))
		if g != GenderMale && g != GenderFemale {
			return apperror.Validation("gender", apperror.ReasonOutOfRange)
		}
		p.Gender = &g
		return nil
	},
	func(in ProfileInput, p *model.Profile) error {
		if in.BodyFatPct == nil {
			return nil
		}
		if err := checkFloatRange("body_fat", *in.BodyFatPct, 0.1, 100); err != nil {
			return err
		}
		v := *in.BodyFatPct
		p.BodyFatPct = &v
		return nil
	},
	func(in ProfileInput, p *model.Profile) error {
		if in.Climate == nil {
			return nil
		}
		if err := checkIntRange("climate", *in.Climate, -1, 1); err != nil {
			return err
		}
		p.Climate = *in.Climate
		return nil
	},
	func(in ProfileInput, p *model.Profile) error {
		if in.RestingHeartRate == nil {
			return nil
		}
		if err := checkIntRange("rhr", *in.RestingHeartRate, 40, 140); err != nil {
			return err
		}
		p.RestingHeartRate = intPtr(*in.RestingHeartRate)
		return nil
	},
}

// MacroCalories is the Atwater estimate 4p + 9f + 4c.
func MacroCalories(protein, fat, carbs float64) float64 {
	return protein*4 + fat*9 + carbs*4
}

// ParseNumber parses user-typed decimals, accepting a comma as the decimal separator.
func ParseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
}

func parseOffsetSeconds(s string) (int, bool) {
	m := timezonePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	if m[1] == "" {
		return 0, true
	}
	hours, _ := strconv.Atoi(m[2])
	minutes := 0
	if m[3] != "" {
		minutes, _ = strconv.Atoi(m[3])
	}
	if hours > 14 || minutes >= 60 {
		return 0, false
	}
	offset := hours*3600 + minutes*60
	if m[1] == "-" {
		offset = -offset
	}
	return offset, true
}
