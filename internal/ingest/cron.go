package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// schedule is a parsed 5-field cron expression:
// "minute hour day-of-month month day-of-week".
// Fields accept "*", single values, comma lists, and "*/n" steps.
type schedule struct {
	minute     scheduleField
	hour       scheduleField
	dayOfMonth scheduleField
	month      scheduleField
	dayOfWeek  scheduleField
}

type scheduleField struct {
	wildcard bool
	step     int
	values   []int
}

func (f scheduleField) matches(val int) bool {
	if f.step > 0 {
		return val%f.step == 0
	}
	if f.wildcard {
		return true
	}
	for _, v := range f.values {
		if v == val {
			return true
		}
	}
	return false
}

func parseScheduleField(field string, min, max int) (scheduleField, error) {
	if field == "*" {
		return scheduleField{wildcard: true}, nil
	}
	if after, ok := strings.CutPrefix(field, "*/"); ok {
		step, err := strconv.Atoi(after)
		if err != nil || step <= 0 || step > max {
			return scheduleField{}, fmt.Errorf("invalid step %q", field)
		}
		return scheduleField{step: step}, nil
	}

	parts := strings.Split(field, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return scheduleField{}, fmt.Errorf("invalid value %q: %w", p, err)
		}
		if v < min || v > max {
			return scheduleField{}, fmt.Errorf("value %d out of range [%d, %d]", v, min, max)
		}
		values = append(values, v)
	}
	return scheduleField{values: values}, nil
}

func parseSchedule(expr string) (schedule, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return schedule{}, fmt.Errorf("expression must have 5 fields, got %d", len(fields))
	}

	var s schedule
	var err error
	bounds := []struct {
		dst      *scheduleField
		min, max int
	}{
		{&s.minute, 0, 59},
		{&s.hour, 0, 23},
		{&s.dayOfMonth, 1, 31},
		{&s.month, 1, 12},
		{&s.dayOfWeek, 0, 6},
	}
	for i, b := range bounds {
		if *b.dst, err = parseScheduleField(fields[i], b.min, b.max); err != nil {
			return schedule{}, fmt.Errorf("field %d: %w", i+1, err)
		}
	}
	return s, nil
}

func (s schedule) matchesTime(t time.Time) bool {
	return s.minute.matches(t.Minute()) &&
		s.hour.matches(t.Hour()) &&
		s.dayOfMonth.matches(t.Day()) &&
		s.month.matches(int(t.Month())) &&
		s.dayOfWeek.matches(int(t.Weekday()))
}

// nextRun returns the first time strictly after 'after' matching the
// expression, searching minute by minute up to one year ahead.
func nextRun(expr string, after time.Time) (time.Time, error) {
	s, err := parseSchedule(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing cron %q: %w", expr, err)
	}

	candidate := after.Truncate(time.Minute).Add(time.Minute)
	limit := after.Add(366 * 24 * time.Hour)

	for candidate.Before(limit) {
		if s.matchesTime(candidate) {
			return candidate, nil
		}
		candidate = candidate.Add(time.Minute)
	}

	return time.Time{}, fmt.Errorf("no matching time within one year for %q", expr)
}
