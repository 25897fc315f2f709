package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/elstrm2/NutritionTracker/internal/model"
)

const aggregateColumns = `user_id, day, anchor_utc, total_calories, total_protein_g, total_fat_g, total_carbs_g, total_water_l, updated_at`

// AddFood inserts e and adds its macros to the aggregate of day in one transaction.
func (s *SQLStore) AddFood(ctx context.Context, e model.FoodEntry, day model.DayWindow) (model.DailyAggregate, error) {
	var agg model.DailyAggregate
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`
INSERT INTO food_entries(id, user_id, calories, protein_g, fat_g, carbs_g, comment, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
`), e.ID, e.UserID, e.Calories, e.ProteinG, e.FatG, e.CarbsG, e.Comment, formatTime(e.CreatedAt)); err != nil {
			return fmt.Errorf("insert food entry: %w", err)
		}
		var err error
		agg, err = s.addToAggregate(ctx, tx, model.DailyAggregate{
			UserID:        e.UserID,
			Day:           day.Date,
			AnchorUTC:     day.Start,
			TotalCalories: e.Calories,
			TotalProteinG: e.ProteinG,
			TotalFatG:     e.FatG,
			TotalCarbsG:   e.CarbsG,
			UpdatedAt:     e.CreatedAt,
		})
		return err
	})
	return agg, err
}

// AddWater inserts e and adds its liters to the aggregate of day in one transaction.
func (s *SQLStore) AddWater(ctx context.Context, e model.WaterEntry, day model.DayWindow) (model.DailyAggregate, error) {
	var agg model.DailyAggregate
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`
INSERT INTO water_entries(id, user_id, liters, created_at)
VALUES(?, ?, ?, ?)
`), e.ID, e.UserID, e.Liters, formatTime(e.CreatedAt)); err != nil {
			return fmt.Errorf("insert water entry: %w", err)
		}
		var err error
		agg, err = s.addToAggregate(ctx, tx, model.DailyAggregate{
			UserID:      e.UserID,
			Day:         day.Date,
			AnchorUTC:   day.Start,
			TotalWaterL: e.Liters,
			UpdatedAt:   e.CreatedAt,
		})
		return err
	})
	return agg, err
}

// ResetDay deletes the entries and targets created inside day and zeroes its aggregate.
func (s *SQLStore) ResetDay(ctx context.Context, userID string, day model.DayWindow, at time.Time) error {
	start, end := formatTime(day.Start), formatTime(day.End)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"food_entries", "water_entries", "targets"} {
			if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM `+table+` WHERE user_id = ? AND created_at >= ? AND created_at <= ?`), userID, start, end); err != nil {
				return fmt.Errorf("reset %s: %w", table, err)
			}
		}
		if _, err := tx.ExecContext(ctx, s.q(`
INSERT INTO daily_aggregates(`+aggregateColumns+`)
VALUES(?, ?, ?, 0, 0, 0, 0, 0, ?)
ON CONFLICT(user_id, day) DO UPDATE SET
  total_calories = 0,
  total_protein_g = 0,
  total_fat_g = 0,
  total_carbs_g = 0,
  total_water_l = 0,
  anchor_utc = excluded.anchor_utc,
  updated_at = excluded.updated_at
`), userID, day.Date, start, formatTime(at)); err != nil {
			return fmt.Errorf("zero aggregate: %w", err)
		}
		return nil
	})
}

// addToAggregate adds delta's totals to the stored row, creating it if needed. The addition
// happens inside the statement so concurrent writers never lose an update.
func (s *SQLStore) addToAggregate(ctx context.Context, tx *sql.Tx, delta model.DailyAggregate) (model.DailyAggregate, error) {
	row := tx.QueryRowContext(ctx, s.q(`
INSERT INTO daily_aggregates(`+aggregateColumns+`)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, day) DO UPDATE SET
  total_calories = daily_aggregates.total_calories + excluded.total_calories,
  total_protein_g = daily_aggregates.total_protein_g + excluded.total_protein_g,
  total_fat_g = daily_aggregates.total_fat_g + excluded.total_fat_g,
  total_carbs_g = daily_aggregates.total_carbs_g + excluded.total_carbs_g,
  total_water_l = daily_aggregates.total_water_l + excluded.total_water_l,
  anchor_utc = excluded.anchor_utc,
  updated_at = excluded.updated_at
RETURNING `+aggregateColumns),
		delta.UserID, delta.Day, formatTime(delta.AnchorUTC),
		delta.TotalCalories, delta.TotalProteinG, delta.TotalFatG, delta.TotalCarbsG, delta.TotalWaterL,
		formatTime(delta.UpdatedAt))
	agg, ok, err := scanAggregate(row)
	if err != nil {
		return model.DailyAggregate{}, fmt.Errorf("upsert aggregate: %w", err)
	}
	if !ok {
		return model.DailyAggregate{}, fmt.Errorf("upsert aggregate returned no row")
	}
	return agg, nil
}
