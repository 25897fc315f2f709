package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/elstrm2/NutritionTracker/internal/apperror"
	"github.com/elstrm2/NutritionTracker/internal/model"
)

const DefaultStorageTimeout = 5 * time.Second

// Store persists users, targets, entries and per-day aggregates.
// AddFood, AddWater and ResetDay must be atomic: either every row changes or none does.
type Store interface {
	GetOrCreateUser(ctx context.Context, u model.User) (model.User, error)
	FindUser(ctx context.Context, externalID string) (model.User, bool, error)
	UpdateUserTimezone(ctx context.Context, userID, timezone string) error
	UpdateUserLanguage(ctx context.Context, userID, language string) error
	CountUsers(ctx context.Context) (int, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	InsertTarget(ctx context.Context, t model.TargetSnapshot) error
	LatestTarget(ctx context.Context, userID string) (model.TargetSnapshot, bool, error)
	LatestTargetBetween(ctx context.Context, userID string, start, end time.Time) (model.TargetSnapshot, bool, error)

	AddFood(ctx context.Context, e model.FoodEntry, day model.DayWindow) (model.DailyAggregate, error)
	AddWater(ctx context.Context, e model.WaterEntry, day model.DayWindow) (model.DailyAggregate, error)
	ResetDay(ctx context.Context, userID string, day model.DayWindow, at time.Time) error

	FoodEntriesBetween(ctx context.Context, userID string, start, end time.Time) ([]model.FoodEntry, error)
	WaterEntriesBetween(ctx context.Context, userID string, start, end time.Time) ([]model.WaterEntry, error)
	DailyAggregate(ctx context.Context, userID, day string) (model.DailyAggregate, bool, error)
	ListAggregates(ctx context.Context, userID string) ([]model.DailyAggregate, error)
	ReplaceAggregates(ctx context.Context, aggs []model.DailyAggregate) error
}

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// Logger provides structured logging for the service layer.
// The args follow slog conventions: alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopLogger is a Logger that discards all output.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}

// Tracker runs the daily-accounting operations for users identified by their transport id.
type Tracker struct {
	store   Store
	logger  Logger
	clock   Clock
	ids     IDGenerator
	timeout time.Duration
}

type Option func(*Tracker)

// WithStorageTimeout bounds every store call. Zero or negative disables the bound.
func WithStorageTimeout(d time.Duration) Option {
	return func(t *Tracker) { t.timeout = d }
}

func NewTracker(store Store, logger Logger, clock Clock, ids IDGenerator, opts ...Option) *Tracker {
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	t := &Tracker{
		store:   store,
		logger:  logger,
		clock:   clock,
		ids:     ids,
		timeout: DefaultStorageTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) now() time.Time {
	return t.clock.Now().UTC()
}

func (t *Tracker) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

// storageErr logs the underlying failure and returns the user-facing storage error.
func (t *Tracker) storageErr(op string, err error, args ...any) error {
	t.logger.Error("storage operation failed", append([]any{"op", op, "error", err}, args...)...)
	return apperror.Storage(op, err)
}
