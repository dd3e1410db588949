package services

import (
	"errors"
	"math"
	"strings"
	"time"

	"crmtasks/internal/models"
)

// ValidationError is returned for input the caller can fix.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

var allowedTypesMessage = func() string {
	names := make([]string, len(models.AllowedTaskTypes))
	for i, t := range models.AllowedTaskTypes {
		names[i] = string(t)
	}
	return "task_type must be one of: " + strings.Join(names, ", ")
}()

// ValidatedTask is a create request after all checks passed.
type ValidatedTask struct {
	ApplicationID string
	Type          models.TaskType
	DueAt         time.Time
}

// ValidateCreate runs the creation checks in order and stops at the first
// failure. null, false, 0 and "" count as missing. Timestamps without a zone
// are read in loc.
func ValidateCreate(in *models.CreateTaskInput, now time.Time, loc *time.Location) (*ValidatedTask, error) {
	appID, _ := in.ApplicationID.Text()
	appID = strings.TrimSpace(appID)
	if !in.ApplicationID.Truthy() || appID == "" {
		return nil, invalid("application_id is required")
	}
	typ, _ := in.TaskType.Str()
	tt := models.TaskType(typ)
	if !tt.Valid() {
		return nil, invalid(allowedTypesMessage)
	}
	if !in.DueAt.Truthy() {
		return nil, invalid("due_at is required")
	}
	due, err := dueTime(in.DueAt, loc)
	if err != nil {
		return nil, invalid("due_at must be a valid ISO timestamp")
	}
	if !due.After(now) {
		return nil, invalid("due_at must be in the future")
	}
	return &ValidatedTask{
		ApplicationID: appID,
		Type:          tt,
		DueAt:         due,
	}, nil
}

// maxEpochMillis is the largest distance from the epoch a JavaScript Date can hold.
const maxEpochMillis = 8.64e15

var errBadTimestamp = errors.New("not a timestamp")

// dueTime reads due_at as an ISO string or as epoch milliseconds.
func dueTime(v models.Value, loc *time.Location) (time.Time, error) {
	if s, ok := v.Str(); ok {
		return ParseTimestamp(s, loc)
	}
	if ms, ok := v.Num(); ok {
		if math.IsNaN(ms) || math.Abs(ms) > maxEpochMillis {
			return time.Time{}, errBadTimestamp
		}
		return time.UnixMilli(int64(ms)).UTC(), nil
	}
	if b, ok := v.Bool(); ok && b {
		return time.UnixMilli(1).UTC(), nil
	}
	return time.Time{}, errBadTimestamp
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTimestamp accepts ISO 8601 timestamps. A bare date is midnight UTC,
// a date-time without offset is local to loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	var lastErr error
	for _, layout := range zonedLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
