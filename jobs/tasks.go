package jobs

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDailyRebuild recomputes one daily report from the ledger.
	TaskDailyRebuild = "reports:daily_rebuild"
	// TaskRefreshViews refreshes the reporting materialized views.
	TaskRefreshViews = "reports:refresh_views"
)

// Date keywords accepted in DailyRebuildPayload.Date besides YYYY-MM-DD.
const (
	DateToday     = "today"
	DateYesterday = "yesterday"
)

// DailyRebuildPayload selects the day to rebuild.
type DailyRebuildPayload struct {
	Date string `json:"date"`
}

// NewDailyRebuildTask builds a rebuild task. An empty date means today.
func NewDailyRebuildTask(date string) (*asynq.Task, error) {
	if date == "" {
		date = DateToday
	}
	if _, err := resolveDate(date, time.Now()); err != nil {
		return nil, err
	}
	body, err := json.Marshal(DailyRebuildPayload{Date: date})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDailyRebuild, body, asynq.Queue(QueueDefault)), nil
}

// NewRefreshViewsTask builds a view refresh task.
func NewRefreshViewsTask() *asynq.Task {
	return asynq.NewTask(TaskRefreshViews, nil, asynq.Queue(QueueDefault))
}

// NewTask builds a task by type name with its default payload.
func NewTask(name string) (*asynq.Task, error) {
	switch name {
	case TaskDailyRebuild:
		return NewDailyRebuildTask(DateToday)
	case TaskRefreshViews:
		return NewRefreshViewsTask(), nil
	default:
		return nil, fmt.Errorf("jobs: unsupported task %s", name)
	}
}

func resolveDate(raw string, now time.Time) (time.Time, error) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", DateToday:
		return today, nil
	case DateYesterday:
		return today.AddDate(0, 0, -1), nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("jobs: invalid date %q", raw)
	}
	return d, nil
}
