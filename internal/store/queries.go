package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/elstrm2/NutritionTracker/internal/model"
)

func (s *SQLStore) FoodEntriesBetween(ctx context.Context, userID string, start, end time.Time) ([]model.FoodEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
SELECT id, user_id, calories, protein_g, fat_g, carbs_g, comment, created_at
FROM food_entries
WHERE user_id = ? AND created_at >= ? AND created_at <= ?
ORDER BY created_at ASC, id ASC
`), userID, formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("list food entries: %w", err)
	}
	defer rows.Close()
	out := make([]model.FoodEntry, 0)
	for rows.Next() {
		var e model.FoodEntry
		var created string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Calories, &e.ProteinG, &e.FatG, &e.CarbsG, &e.Comment, &created); err != nil {
			return nil, fmt.Errorf("scan food entry: %w", err)
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food entries: %w", err)
	}
	return out, nil
}

func (s *SQLStore) WaterEntriesBetween(ctx context.Context, userID string, start, end time.Time) ([]model.WaterEntry, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`
SELECT id, user_id, liters, created_at
FROM water_entries
WHERE user_id = ? AND created_at >= ? AND created_at <= ?
ORDER BY created_at ASC, id ASC
`), userID, formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("list water entries: %w", err)
	}
	defer rows.Close()
	out := make([]model.WaterEntry, 0)
	for rows.Next() {
		var e model.WaterEntry
		var created string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Liters, &created); err != nil {
			return nil, fmt.Errorf("scan water entry: %w", err)
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate water entries: %w", err)
	}
	return out, nil
}

func (s *SQLStore) DailyAggregate(ctx context.Context, userID, day string) (model.DailyAggregate, bool, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+aggregateColumns+` FROM daily_aggregates WHERE user_id = ? AND day = ?`), userID, day)
	return scanAggregate(row)
}

func (s *SQLStore) ListAggregates(ctx context.Context, userID string) ([]model.DailyAggregate, error) {
	rows, err := s.db.QueryContext(ctx, s.q(`SELECT `+aggregateColumns+` FROM daily_aggregates WHERE user_id = ? ORDER BY day ASC`), userID)
	if err != nil {
		return nil, fmt.Errorf("list aggregates: %w", err)
	}
	defer rows.Close()
	out := make([]model.DailyAggregate, 0)
	for rows.Next() {
		agg, _, err := scanAggregate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregates: %w", err)
	}
	return out, nil
}

// ReplaceAggregates overwrites the totals of existing aggregates in one transaction.
func (s *SQLStore) ReplaceAggregates(ctx context.Context, aggs []model.DailyAggregate) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, a := range aggs {
			res, err := tx.ExecContext(ctx, s.q(`
UPDATE daily_aggregates
SET total_calories = ?, total_protein_g = ?, total_fat_g = ?, total_carbs_g = ?, total_water_l = ?, updated_at = ?
WHERE user_id = ? AND day = ?
`), a.TotalCalories, a.TotalProteinG, a.TotalFatG, a.TotalCarbsG, a.TotalWaterL, formatTime(a.UpdatedAt), a.UserID, a.Day)
			if err != nil {
				return fmt.Errorf("replace aggregate %s/%s: %w", a.UserID, a.Day, err)
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return fmt.Errorf("replace aggregate %s/%s: not found", a.UserID, a.Day)
			}
		}
		return nil
	})
}

func scanAggregate(row scanner) (model.DailyAggregate, bool, error) {
	var a model.DailyAggregate
	var anchor, updated string
	err := row.Scan(&a.UserID, &a.Day, &anchor, &a.TotalCalories, &a.TotalProteinG, &a.TotalFatG, &a.TotalCarbsG, &a.TotalWaterL, &updated)
	if err == sql.ErrNoRows {
		return model.DailyAggregate{}, false, nil
	}
	if err != nil {
		return model.DailyAggregate{}, false, fmt.Errorf("scan aggregate: %w", err)
	}
	if a.AnchorUTC, err = parseTime(anchor); err != nil {
		return model.DailyAggregate{}, false, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return model.DailyAggregate{}, false, err
	}
	return a, true, nil
}
