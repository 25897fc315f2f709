package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/elstrm2/NutritionTracker/internal/apperror"
	"github.com/elstrm2/NutritionTracker/internal/i18n"
	"github.com/elstrm2/NutritionTracker/internal/model"
	"github.com/elstrm2/NutritionTracker/internal/service"
)

type handlerFunc func(ctx context.Context, u model.User, args []string) (string, error)

type command struct {
	usageKey string
	run      handlerFunc
}

// Dispatcher turns chat commands into tracker calls and localized replies.
type Dispatcher struct {
	tracker  *service.Tracker
	catalog  *i18n.Catalog
	logger   service.Logger
	commands map[string]command
}

func NewDispatcher(tracker *service.Tracker, catalog *i18n.Catalog, logger service.Logger) *Dispatcher {
	if logger == nil {
		logger = service.NewNopLogger()
	}
	d := &Dispatcher{tracker: tracker, catalog: catalog, logger: logger}
	d.commands = map[string]command{
		"start":                {run: d.start},
		"help":                 {run: d.help},
		"set_info":             {usageKey: "set_info_usage", run: d.setInfo},
		"get_info":             {run: d.getInfo},
		"calculate_info":       {usageKey: "calculate_info_usage", run: d.calculateInfo},
		"add_food":             {usageKey: "add_food_usage", run: d.addFood},
		"add_water":            {usageKey: "add_water_usage", run: d.addWater},
		"set_timezone":         {usageKey: "set_timezone_usage", run: d.setTimezone},
		"set_language":         {usageKey: "set_language_usage", run: d.setLanguage},
		"get_daily_log":        {usageKey: "get_daily_log_usage", run: d.dailyLog},
		"get_daily_progress":   {usageKey: "get_daily_progress_usage", run: d.dailyProgress},
		"reset_daily_progress": {run: d.resetDailyProgress},
		"user_count":           {run: d.userCount},
	}
	return d
}

// Handle runs one command and always produces a reply. Failures are logged and rendered as
// messages; a panic in a handler becomes the generic error reply.
func (d *Dispatcher) Handle(ctx context.Context, cmd Command) (reply Reply) {
	id := xid.New().String()
	started := time.Now()
	name, args, ok := ParseCommand(cmd.Text)
	lang := i18n.DefaultLanguage
	outcome := "ok"

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("command panicked", "cmd_id", id, "user", cmd.UserID, "command", name, "panic", fmt.Sprint(r))
			reply = Reply{Text: d.catalog.T(lang, "error_occurred", nil)}
			outcome = "panic"
		}
		d.logger.Info("command handled", "cmd_id", id, "user", cmd.UserID, "command", name,
			"outcome", outcome, "duration", time.Since(started))
	}()

	u, err := d.tracker.User(ctx, cmd.UserID)
	if err != nil {
		outcome = "error"
		d.logger.Error("load user failed", "cmd_id", id, "user", cmd.UserID, "error", err)
		return Reply{Text: d.catalog.T(lang, "error_occurred", nil)}
	}
	lang = u.Language

	c, known := d.commands[name]
	if !ok || !known {
		outcome = "unknown"
		return Reply{Text: d.catalog.T(lang, "unknown_command", nil)}
	}

	text, err := c.run(ctx, u, args)
	if err != nil {
		outcome = "error"
		return Reply{Text: d.renderError(lang, c, err, id)}
	}
	return Reply{Text: text}
}

var errUsage = errors.New("wrong number of arguments")

func (d *Dispatcher) renderError(lang string, c command, err error, cmdID string) string {
	var numErr *numberError
	switch {
	case errors.As(err, &numErr):
		return d.catalog.T(lang, "invalid_number", i18n.Params{"value": numErr.value})
	case errors.Is(err, errUsage):
		if c.usageKey != "" {
			return d.catalog.T(lang, c.usageKey, nil)
		}
		return d.catalog.T(lang, "help", nil)
	case errors.Is(err, apperror.ErrValidation):
		if key, params := d.validationMessage(err); key != "" {
			return d.catalog.T(lang, key, params)
		}
		if c.usageKey != "" {
			return d.catalog.T(lang, c.usageKey, nil)
		}
	case errors.Is(err, apperror.ErrNoTargetSet):
		return d.catalog.T(lang, "enter_data_first", nil)
	case errors.Is(err, apperror.ErrNoDataForDate):
		return d.catalog.T(lang, "no_data_for_date", nil)
	}
	d.logger.Error("command failed", "cmd_id", cmdID, "error", err)
	return d.catalog.T(lang, "error_occurred", nil)
}

var fieldMessages = map[string]string{
	"calories":         "invalid_calories",
	"protein":          "invalid_protein_fat_carbs",
	"fat":              "invalid_protein_fat_carbs",
	"carbs":            "invalid_protein_fat_carbs",
	"protein_per_100g": "invalid_protein_fat_carbs",
	"fat_per_100g":     "invalid_protein_fat_carbs",
	"carbs_per_100g":   "invalid_protein_fat_carbs",
	"water":            "invalid_water",
	"grams":            "invalid_grams",
	"macros":           "no_nonzero_macro",
	"comment":          "invalid_comment",
	"timezone":         "invalid_timezone",
	"language":         "invalid_language",
	"date":             "invalid_date_format",
	"age":              "invalid_age",
	"weight":           "invalid_weight",
	"height":           "invalid_height",
	"metabolism":       "invalid_metabolism",
	"activity":         "invalid_activity",
	"goal":             "invalid_goal",
	"desire":           "invalid_desire",
	"diet_type":        "invalid_diet_type",
	"gender":           "invalid_gender",
	"body_fat":         "invalid_body_fat",
	"climate":          "invalid_climate",
	"rhr":              "invalid_rhr",
}

func (d *Dispatcher) validationMessage(err error) (string, i18n.Params) {
	field := apperror.FieldOf(err)
	key, ok := fieldMessages[field]
	if !ok {
		return "", nil
	}
	switch field {
	case "comment":
		return key, i18n.Params{"max": service.MaxCommentLength}
	case "language":
		return key, i18n.Params{"languages": strings.Join(d.catalog.Languages(), ", ")}
	}
	return key, nil
}
