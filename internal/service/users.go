package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/elstrm2/NutritionTracker/internal/apperror"
	"github.com/elstrm2/NutritionTracker/internal/model"
)

var languageTagPattern = regexp.MustCompile(`^[a-z]{2,3}$`)

type TargetInput struct {
	Calories float64
	ProteinG float64
	FatG     float64
	CarbsG   float64
	WaterL   float64
}

// User returns the profile for externalID, creating it with defaults on first contact.
func (t *Tracker) User(ctx context.Context, externalID string) (model.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return model.User{}, apperror.Validation("user", apperror.ReasonMalformed)
	}
	sctx, cancel := t.storeContext(ctx)
	defer cancel()
	u, err := t.store.GetOrCreateUser(sctx, model.User{
		ID:         t.ids.New(),
		ExternalID: externalID,
		Timezone:   model.DefaultTimezone,
		Language:   model.DefaultLanguage,
		CreatedAt:  t.now(),
	})
	if err != nil {
		return model.User{}, t.storageErr("get or create user", err, "user", externalID)
	}
	return u, nil
}

// existingUser looks externalID up without creating it. Read-only queries use it so that asking
// about an unknown id leaves no trace.
func (t *Tracker) existingUser(ctx context.Context, externalID string) (model.User, bool, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return model.User{}, false, apperror.Validation("user", apperror.ReasonMalformed)
	}
	sctx, cancel := t.storeContext(ctx)
	defer cancel()
	u, ok, err := t.store.FindUser(sctx, externalID)
	if err != nil {
		return model.User{}, false, t.storageErr("find user", err, "user", externalID)
	}
	return u, ok, nil
}

// SetTimezone validates tz strictly and stores its canonical form.
func (t *Tracker) SetTimezone(ctx context.Context, externalID, tz string) (model.User, error) {
	canonical, err := ValidateTimezoneString(tz)
	if err != nil {
		return model.User{}, err
	}
	u, err := t.User(ctx, externalID)
	if err != nil {
		return model.User{}, err
	}
	sctx, cancel := t.storeContext(ctx)
	defer cancel()
	if err := t.store.UpdateUserTimezone(sctx, u.ID, canonical); err != nil {
		return model.User{}, t.storageErr("update timezone", err, "user", externalID)
	}
	u.Timezone = canonical
	t.logger.Info("timezone updated", "user", externalID, "timezone", canonical)
	return u, nil
}

// SetLanguage stores a lowercase language tag. Callers decide which tags they can render.
func (t *Tracker) SetLanguage(ctx context.Context, externalID, lang string) (model.User, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !languageTagPattern.MatchString(lang) {
		return model.User{}, apperror.Validation("language", apperror.ReasonMalformed)
	}
	u, err := t.User(ctx, externalID)
	if err != nil {
		return model.User{}, err
	}
	sctx, cancel := t.storeContext(ctx)
	defer cancel()
	if err := t.store.UpdateUserLanguage(sctx, u.ID, lang); err != nil {
		return model.User{}, t.storageErr("update language", err, "user", externalID)
	}
	u.Language = lang
	t.logger.Info("language updated", "user", externalID, "language", lang)
	return u, nil
}

func (t *Tracker) CountUsers(ctx context.Context) (int, error) {
	sctx, cancel := t.storeContext(ctx)
	defer cancel()
	n, err := t.store.CountUsers(sctx)
	if err != nil {
		return 0, t.storageErr("count users", err)
	}
	return n, nil
}

// SetTarget validates in and records a new target snapshot. Earlier snapshots are kept.
func (t *Tracker) SetTarget(ctx context.Context, externalID string, in TargetInput) (model.TargetSnapshot, error) {
	if err := ValidateTarget(in.Calories, in.ProteinG, in.FatG, in.CarbsG, in.WaterL); err != nil {
		return model.TargetSnapshot{}, err
	}
	u, err := t.User(ctx, externalID)
	if err != nil {
		return model.TargetSnapshot{}, err
	}
	snap := model.TargetSnapshot{
		ID:        t.ids.New(),
		UserID:    u.ID,
		Calories:  in.Calories,
		ProteinG:  in.ProteinG,
		FatG:      in.FatG,
		CarbsG:    in.CarbsG,
		WaterL:    in.WaterL,
		CreatedAt: t.now(),
	}
	sctx, cancel := t.storeContext(ctx)
	defer cancel()
	if err := t.store.InsertTarget(sctx, snap); err != nil {
		return model.TargetSnapshot{}, t.storageErr("insert target", err, "user", externalID)
	}
	t.logger.Info("target set", "user", externalID, "calories", snap.Calories)
	return snap, nil
}
