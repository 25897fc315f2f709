package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/elstrm2/NutritionTracker/internal/apperror"
	"github.com/elstrm2/NutritionTracker/internal/model"
)

// Date is a calendar day without a zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func ParseLocalDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, apperror.Validation("date", apperror.ReasonMalformed)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// ParseOffset resolves a stored timezone string to a fixed zone. Anything that is not a
// valid UTC offset resolves to UTC.
func ParseOffset(s string) *time.Location {
	offset, ok := parseOffsetSeconds(strings.TrimSpace(s))
	if !ok || offset == 0 {
		return time.UTC
	}
	return time.FixedZone(formatOffset(offset), offset)
}

func ToLocal(t time.Time, loc *time.Location) time.Time {
	return t.In(loc)
}

func LocalDate(t time.Time, loc *time.Location) Date {
	local := t.In(loc)
	return Date{Year: local.Year(), Month: local.Month(), Day: local.Day()}
}

// LocalDayWindowUTC returns the UTC instants covering d in loc, both ends inclusive.
func LocalDayWindowUTC(d Date, loc *time.Location) model.DayWindow {
	start := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
	next := time.Date(d.Year, d.Month, d.Day+1, 0, 0, 0, 0, loc)
	return model.DayWindow{
		Date:  d.String(),
		Start: start.UTC(),
		End:   next.Add(-time.Nanosecond).UTC(),
	}
}
