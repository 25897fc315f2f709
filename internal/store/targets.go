package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/elstrm2/NutritionTracker/internal/model"
)

const targetColumns = `id, user_id, calories, protein_g, fat_g, carbs_g, water_l, created_at`

func (s *SQLStore) InsertTarget(ctx context.Context, t model.TargetSnapshot) error {
	_, err := s.db.ExecContext(ctx, s.q(`
INSERT INTO targets(`+targetColumns+`)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
`), t.ID, t.UserID, t.Calories, t.ProteinG, t.FatG, t.CarbsG, t.WaterL, formatTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert target: %w", err)
	}
	return nil
}

func (s *SQLStore) LatestTarget(ctx context.Context, userID string) (model.TargetSnapshot, bool, error) {
	row := s.db.QueryRowContext(ctx, s.q(`
SELECT `+targetColumns+` FROM targets
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
LIMIT 1
`), userID)
	return scanTarget(row)
}

// LatestTargetBetween returns the newest target created within [start, end].
func (s *SQLStore) LatestTargetBetween(ctx context.Context, userID string, start, end time.Time) (model.TargetSnapshot, bool, error) {
	row := s.db.QueryRowContext(ctx, s.q(`
SELECT `+targetColumns+` FROM targets
WHERE user_id = ? AND created_at >= ? AND created_at <= ?
ORDER BY created_at DESC, id DESC
LIMIT 1
`), userID, formatTime(start), formatTime(end))
	return scanTarget(row)
}

func scanTarget(row scanner) (model.TargetSnapshot, bool, error) {
	var t model.TargetSnapshot
	var created string
	err := row.Scan(&t.ID, &t.UserID, &t.Calories, &t.ProteinG, &t.FatG, &t.CarbsG, &t.WaterL, &created)
	if err == sql.ErrNoRows {
		return model.TargetSnapshot{}, false, nil
	}
	if err != nil {
		return model.TargetSnapshot{}, false, fmt.Errorf("scan target: %w", err)
	}
	if t.CreatedAt, err = parseTime(created); err != nil {
		return model.TargetSnapshot{}, false, err
	}
	return t, true, nil
}
