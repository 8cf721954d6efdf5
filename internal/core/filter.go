package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ColumnFilter is one active (columnID, value) pair. The value shape depends
// on the column's filter variant: string for text and select, Range for range,
// DateRange for date.
type ColumnFilter struct {
	ID    string
	Value any
}

// Range is an inclusive numeric interval. A nil bound is unbounded.
type Range struct {
	Min *float64
	Max *float64
}

// IsZero reports whether both bounds are unset.
func (r Range) IsZero() bool { return r.Min == nil && r.Max == nil }

// Contains reports whether v lies within the range, inclusive.
func (r Range) Contains(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// DateRange is an inclusive day interval. A zero bound is unbounded.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether both bounds are unset.
func (r DateRange) IsZero() bool { return r.From.IsZero() && r.To.IsZero() }

// Contains reports whether t falls on or between the From and To days.
func (r DateRange) Contains(t time.Time) bool {
	day := truncateDay(t)
	if !r.From.IsZero() && day.Before(truncateDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && day.After(truncateDay(r.To)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ErrInvalidFilter is returned when a filter value cannot be parsed for a variant.
var ErrInvalidFilter = errors.New("invalid filter value")

// ParseRange builds a Range from two optional bound strings.
func ParseRange(minRaw, maxRaw string) (Range, error) {
	var r Range
	if s := strings.TrimSpace(minRaw); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Range{}, fmt.Errorf("%w: min %q", ErrInvalidFilter, minRaw)
		}
		r.Min = &f
	}
	if s := strings.TrimSpace(maxRaw); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Range{}, fmt.Errorf("%w: max %q", ErrInvalidFilter, maxRaw)
		}
		r.Max = &f
	}
	return r, nil
}

// ParseDateRange builds a DateRange from two optional YYYY-MM-DD strings.
func ParseDateRange(fromRaw, toRaw string) (DateRange, error) {
	var r DateRange
	if s := strings.TrimSpace(fromRaw); s != "" {
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: from %q", ErrInvalidFilter, fromRaw)
		}
		r.From = t
	}
	if s := strings.TrimSpace(toRaw); s != "" {
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: to %q", ErrInvalidFilter, toRaw)
		}
		r.To = t
	}
	return r, nil
}

// isEmptyFilter reports whether a filter value filters nothing, in which case
// setting it removes the filter instead.
func isEmptyFilter(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == "" || val == "*"
	case Range:
		return val.IsZero()
	case DateRange:
		return val.IsZero()
	}
	return false
}

// IncludesString passes values whose text contains the filter text, ignoring case.
func IncludesString(value any, filter any) bool {
	query, ok := filter.(string)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(FormatValue(value)), strings.ToLower(strings.TrimSpace(query)))
}

// EqualsString passes values whose text equals the filter text, ignoring case.
func EqualsString(value any, filter any) bool {
	query, ok := filter.(string)
	if !ok {
		return false
	}
	return strings.EqualFold(FormatValue(value), query)
}

// InNumberRange passes numeric values inside an inclusive Range.
func InNumberRange(value any, filter any) bool {
	r, ok := filter.(Range)
	if !ok {
		return false
	}
	f, ok := toFloat(value)
	if !ok {
		return false
	}
	return r.Contains(f)
}

// InDateRange passes time values inside an inclusive DateRange.
func InDateRange(value any, filter any) bool {
	r, ok := filter.(DateRange)
	if !ok {
		return false
	}
	t, ok := toTime(value)
	if !ok {
		return false
	}
	return r.Contains(t)
}

// filterFn resolves the predicate for a column.
func (c *Column[T]) filterFn() FilterFunc {
	if c.FilterFn != nil {
		return c.FilterFn
	}
	switch c.variant() {
	case FilterRange:
		return InNumberRange
	case FilterSelect:
		return EqualsString
	case FilterDate:
		return InDateRange
	default:
		return IncludesString
	}
}

// checkFilterValue verifies the value shape matches the column's variant.
func (c *Column[T]) checkFilterValue(v any) error {
	if c.FilterFn != nil {
		return nil
	}
	switch c.variant() {
	case FilterRange:
		if _, ok := v.(Range); !ok {
			return fmt.Errorf("%w: column %q expects a range", ErrInvalidFilter, c.ID)
		}
	case FilterDate:
		if _, ok := v.(DateRange); !ok {
			return fmt.Errorf("%w: column %q expects a date range", ErrInvalidFilter, c.ID)
		}
	default:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%w: column %q expects text", ErrInvalidFilter, c.ID)
		}
	}
	return nil
}

// FilterChip is a human readable description of one active column filter.
type FilterChip struct {
	ColumnID string
	Text     string
}

const unbounded = "∞"

func describeFilter(label string, v any) string {
	switch val := v.(type) {
	case Range:
		lo, hi := unbounded, unbounded
		if val.Min != nil {
			lo = formatFloat(*val.Min)
		}
		if val.Max != nil {
			hi = formatFloat(*val.Max)
		}
		return fmt.Sprintf("%s In Range Of ( %s - %s )", label, lo, hi)
	case DateRange:
		from, to := unbounded, unbounded
		if !val.From.IsZero() {
			from = val.From.Format("2006/01/02")
		}
		if !val.To.IsZero() {
			to = val.To.Format("2006/01/02")
		}
		return fmt.Sprintf("%s Is Between ( %s - %s )", label, from, to)
	case string:
		return fmt.Sprintf("%s Equals/Contains '%s'", label, val)
	default:
		return fmt.Sprintf("%s = %v", label, val)
	}
}
