package bot_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elstrm2/NutritionTracker/internal/bot"
	"github.com/elstrm2/NutritionTracker/internal/db"
	"github.com/elstrm2/NutritionTracker/internal/i18n"
	"github.com/elstrm2/NutritionTracker/internal/service"
	"github.com/elstrm2/NutritionTracker/internal/store"
	"github.com/elstrm2/NutritionTracker/internal/testutil"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, strings.TrimSpace(level+" "+msg+" "+fmt.Sprintln(args...)))
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args...) }

func (l *recordingLogger) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

type harness struct {
	dispatcher *bot.Dispatcher
	clock      *testutil.StubClock
	db         *sql.DB
	logger     *recordingLogger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sqldb, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "tracker.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })
	require.NoError(t, db.ApplyMigrations(sqldb, db.DriverSQLite))
	s, err := store.New(sqldb, db.DriverSQLite)
	require.NoError(t, err)

	catalog, err := i18n.Load(i18n.DefaultLanguage)
	require.NoError(t, err)

	clock := testutil.FixedClock()
	logger := &recordingLogger{}
	tracker := service.NewTracker(s, logger, clock, testutil.NewStubIDGenerator())
	return &harness{
		dispatcher: bot.NewDispatcher(tracker, catalog, logger),
		clock:      clock,
		db:         sqldb,
		logger:     logger,
	}
}

func (h *harness) send(t *testing.T, user, text string) string {
	t.Helper()
	return h.dispatcher.Handle(context.Background(), bot.Command{UserID: user, Text: text}).Text
}

func TestSetAndGetInfo(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "Please enter your information first using /set_info.", h.send(t, "1", "/get_info"))
	assert.Equal(t, "Data updated successfully!", h.send(t, "1", "/set_info 2000 150 50 237,5 2"))
	assert.Equal(t,
		"Current data:\nCalories: 2000 kcal\nProtein: 150 g\nFat: 50 g\nCarbohydrates: 238 g\nWater: 2 liters",
		h.send(t, "1", "/get_info"))
}

func TestSetInfoErrors(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.send(t, "1", "/set_info 2000 150 50 250 2.5"),
		"The total calories from protein, fat, and carbs (2050 kcal) do not match the provided calories (2000 kcal).")
	assert.Equal(t, "Invalid number of calories. Please enter a value between 10 and 100000.",
		h.send(t, "1", "/set_info 5 0 0 1 2"))
	assert.Equal(t, "Invalid amount of water. Please enter a value between 0.1 and 100 liters.",
		h.send(t, "1", "/set_info 2000 150 50 237.5 0"))
	assert.Equal(t, "Invalid number: lots.", h.send(t, "1", "/set_info lots 150 50 237.5 2"))
	assert.Contains(t, h.send(t, "1", "/set_info 2000"), "Usage: /set_info")
}

func TestCalculateInfo(t *testing.T) {
	h := newHarness(t)

	reply := h.send(t, "1", "/calculate_info 30 70 175 5 5 -1 7 1 m 20 0 70")
	assert.Contains(t, reply, "/set_info 2469 278 82 155 2.7")

	assert.Contains(t, h.send(t, "1", "/calculate_info 25 60 160 - - - - 0 - - - -"), "/set_info ")
	assert.Equal(t, "Invalid age. Please enter a value between 1 and 200.",
		h.send(t, "1", "/calculate_info abc 70 175 5 5 -1 7 1 m 20 0 70"))
	assert.Equal(t, "Invalid gender. Please enter 'm' for male, 'f' for female, or '-' if optional.",
		h.send(t, "1", "/calculate_info 30 70 175 5 5 -1 7 1 x 20 0 70"))
	assert.Equal(t, "Invalid resting heart rate. Please enter a value between 40 and 140, or '-' if not applicable.",
		h.send(t, "1", "/calculate_info 30 70 175 5 5 -1 7 1 m 20 0 200"))
	assert.Contains(t, h.send(t, "1", "/calculate_info 30 70 175"), "Usage: /calculate_info")
}

func TestCalculateInfoReportsFirstBadField(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		text string
		want string
	}{
		{"/calculate_info 0 abc 175 5 5 -1 7 1 m 20 0 70", "Invalid age."},
		{"/calculate_info 30 70 175 99 5 -1 7 1 m 20 0 xx", "Invalid metabolism."},
		{"/calculate_info 30 70 175 5 5 -1 7 1 q 20 zz 70", "Invalid gender."},
		{"/calculate_info 30 70 175 5 5 -1 7 1 m 20 zz 70", "Invalid climate value."},
	}
	for _, tc := range cases {
		assert.True(t, strings.HasPrefix(h.send(t, "1", tc.text), tc.want), tc.text)
	}
}

func TestAddFoodAndWaterReplies(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "You have added food with 247.5 calories.", h.send(t, "1", "/add_food 150 10 5 20 Delicious porridge"))
	assert.Equal(t, "You have added 0.5 liters of water.", h.send(t, "1", "/add_water 0,5"))

	assert.Contains(t, h.send(t, "1", "/add_food 150 10 5"), "Usage: /add_food")
	assert.Equal(t, "At least one of protein, fat or carbs per 100 g must be greater than zero.",
		h.send(t, "1", "/add_food 150 0 0 0"))
	assert.Equal(t, "Invalid amount of food. Please enter a value between 1 and 100000 grams.",
		h.send(t, "1", "/add_food 0 10 5 20"))
	assert.Equal(t, "The comment must be at most 100 characters.",
		h.send(t, "1", "/add_food 100 10 5 20 "+strings.Repeat("x", 101)))
	assert.Equal(t, "Invalid number: abc.", h.send(t, "1", "/add_water abc"))
}

func TestDailyLogAndProgress(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "No data found for 2026-03-10.", h.send(t, "1", "/get_daily_log"))
	assert.Equal(t, "No data for the specified date.", h.send(t, "1", "/get_daily_progress"))

	h.send(t, "1", "/set_info 2000 150 50 237.5 2")
	h.send(t, "1", "/add_water 0.5")
	h.send(t, "1", "/add_food 150 10 5 20 Delicious porridge")

	assert.Equal(t,
		"Detailed log of food and water intake for 2026-03-10 (UTC):\n"+
			"12:00 Food: 247.5 kcal, P: 15, F: 7.5, C: 30, Comment: Delicious porridge\n"+
			"12:00 Water: 0.5 liters",
		h.send(t, "1", "/get_daily_log 2026-03-10"))

	progress := h.send(t, "1", "/get_daily_progress")
	assert.Contains(t, progress, "Daily progress for 2026-03-10:")
	assert.Contains(t, progress, "Eaten: 247.5 out of 2000 kcal")
	assert.Contains(t, progress, "Remaining: 1752.5 kcal")
	assert.Contains(t, progress, "Water: 0.5 out of 2 liters (remaining: 1.5 liters)")

	assert.Equal(t, "Invalid date format. Please use YYYY-MM-DD.", h.send(t, "1", "/get_daily_log 10.03.2026"))
	assert.Contains(t, h.send(t, "1", "/get_daily_log 2026-03-10 extra"), "Usage: /get_daily_log")
	assert.Equal(t, "No data found for 2026-03-09.", h.send(t, "1", "/get_daily_log 2026-03-09"))
}

func TestResetDailyProgress(t *testing.T) {
	h := newHarness(t)

	h.send(t, "1", "/set_info 2000 150 50 237.5 2")
	h.send(t, "1", "/add_water 1")
	assert.Equal(t, "Today's progress has been reset.", h.send(t, "1", "/reset_daily_progress"))
	assert.Equal(t, "No data for the specified date.", h.send(t, "1", "/get_daily_progress"))
	assert.Equal(t, "No data found for 2026-03-10.", h.send(t, "1", "/get_daily_log"))
}

func TestTimezoneChangesDayAttribution(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.send(t, "1", "/set_timezone UTC+3"), "Invalid timezone format.")
	assert.Equal(t, "Timezone set to UTC+03.", h.send(t, "1", "/set_timezone UTC+03:00"))

	h.clock.Set(time.Date(2026, 3, 10, 22, 30, 0, 0, time.UTC))
	h.send(t, "1", "/add_water 1")
	assert.Contains(t, h.send(t, "1", "/get_daily_log"), "for 2026-03-11 (UTC+03):\n01:30 Water: 1 liters")
	assert.Equal(t, "No data found for 2026-03-10.", h.send(t, "1", "/get_daily_log 2026-03-10"))
}

func TestSetLanguage(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, "Invalid language. Available: en, ru.", h.send(t, "1", "/set_language de"))
	assert.Equal(t, "Язык изменен на ru.", h.send(t, "1", "/set_language RU"))
	assert.Equal(t, "Неизвестная команда. Отправь /help, чтобы увидеть список команд.", h.send(t, "1", "/nope"))
	assert.Equal(t, "Unknown command. Send /help to see what I can do.", h.send(t, "2", "just text"))
}

func TestUserCount(t *testing.T) {
	h := newHarness(t)

	h.send(t, "1", "/start")
	h.send(t, "2", "/help")
	assert.Equal(t, "The total number of users is 3.", h.send(t, "3", "/user_count"))
}

func TestStorageFailureRendersGenericError(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.db.Close())
	assert.Equal(t, "An error occurred.", h.send(t, "1", "/get_info"))

	var sawError bool
	for _, e := range h.logger.Entries() {
		if strings.HasPrefix(e, "ERROR") {
			sawError = true
		}
	}
	assert.True(t, sawError, "expected the failure to be logged")
}

func TestPanicRecovered(t *testing.T) {
	catalog, err := i18n.Load(i18n.DefaultLanguage)
	require.NoError(t, err)
	logger := &recordingLogger{}
	d := bot.NewDispatcher(nil, catalog, logger)

	reply := d.Handle(context.Background(), bot.Command{UserID: "1", Text: "/start"})
	assert.Equal(t, "An error occurred.", reply.Text)
	entries := logger.Entries()
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[len(entries)-1], "outcome panic")
}

func TestEveryCommandIsLogged(t *testing.T) {
	h := newHarness(t)

	h.send(t, "1", "/start")
	var handled int
	for _, e := range h.logger.Entries() {
		if strings.HasPrefix(e, "INFO command handled") {
			handled++
			assert.Contains(t, e, "cmd_id")
			assert.Contains(t, e, "command start")
		}
	}
	assert.Equal(t, 1, handled)
}
