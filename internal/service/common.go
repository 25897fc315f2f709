package service

import (
	"fmt"
	"math"

	"github.com/elstrm2/NutritionTracker/internal/apperror"
)

func checkFloatRange(field string, value, min, max float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < min || value > max {
		return apperror.Validation(field, apperror.ReasonOutOfRange)
	}
	return nil
}

func checkIntRange(field string, value, min, max int) error {
	if value < min || value > max {
		return apperror.Validation(field, apperror.ReasonOutOfRange)
	}
	return nil
}

func intPtr(v int) *int {
	return &v
}

func formatOffset(seconds int) string {
	if seconds == 0 {
		return "UTC"
	}
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if minutes == 0 {
		return fmt.Sprintf("UTC%c%02d", sign, hours)
	}
	return fmt.Sprintf("UTC%c%02d:%02d", sign, hours, minutes)
}
