package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/panaderiapro/panaderiapro/internal/jobs"
	"github.com/panaderiapro/panaderiapro/internal/reports"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportService is the reports surface the jobs drive.
type ReportService interface {
	RebuildDailyReport(ctx context.Context, date time.Time) (reports.DailyReport, error)
	RefreshViews(ctx context.Context) error
}

// ReportJobs handles the reporting tasks.
type ReportJobs struct {
	Service ReportService
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportJobs wires dependencies for the report handlers.
func NewReportJobs(service ReportService, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportJobs {
	return &ReportJobs{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handlers lists the task handlers for worker registration.
func (j *ReportJobs) Handlers() []TaskHandler {
	return []TaskHandler{
		{Type: TaskDailyRebuild, Handler: j.HandleDailyRebuild},
		{Type: TaskRefreshViews, Handler: j.HandleRefreshViews},
	}
}

// HandleDailyRebuild rebuilds the report of the payload date.
func (j *ReportJobs) HandleDailyRebuild(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("daily rebuild: service not configured")
	}
	var payload DailyRebuildPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	day, err := resolveDate(payload.Date, j.now())
	if err != nil {
		j.log(TaskDailyRebuild).Warn("skip daily rebuild", slog.Any("error", err))
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskDailyRebuild)
	report, err := j.Service.RebuildDailyReport(ctx, day)
	if err != nil {
		j.log(TaskDailyRebuild).Error("rebuild daily report", slog.String("date", day.Format(time.DateOnly)), slog.Any("error", err))
		return tracker.End(err)
	}
	j.log(TaskDailyRebuild).Info("daily report rebuilt",
		slog.String("date", day.Format(time.DateOnly)),
		slog.Int("sales", report.SalesCount),
		slog.Int("expenses", report.ExpensesCount))
	return tracker.End(nil)
}

// HandleRefreshViews refreshes sales_by_category.
func (j *ReportJobs) HandleRefreshViews(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("refresh views: service not configured")
	}
	tracker := j.metrics().Track(TaskRefreshViews)
	start := j.now()
	if err := j.Service.RefreshViews(ctx); err != nil {
		j.log(TaskRefreshViews).Error("refresh views", slog.Any("error", err))
		return tracker.End(err)
	}
	j.log(TaskRefreshViews).Info("refreshed sales_by_category", slog.Duration("duration", j.now().Sub(start)))
	return tracker.End(nil)
}

func (j *ReportJobs) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportJobs) log(task string) *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", task))
	}
	return slog.Default().With(slog.String("job", task))
}

func (j *ReportJobs) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// WithClock overrides the internal clock for deterministic tests.
func (j *ReportJobs) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}
