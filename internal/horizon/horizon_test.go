package horizon

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestWeekRangeAnchorsOnJanuaryFourth(t *testing.T) {
	// ISO week 1 of 2026 runs Mon 2025-12-29 through Sun 2026-01-04.
	start, end := WeekRange(2026, 1)
	if got := start.Format("2006-01-02"); got != "2025-12-29" {
		t.Fatalf("week 1 start = %s", got)
	}
	if got := end.Format("2006-01-02"); got != "2026-01-04" {
		t.Fatalf("week 1 end = %s", got)
	}

	start, end = WeekRange(2026, 10)
	if got := start.Format("2006-01-02"); got != "2026-03-02" {
		t.Fatalf("week 10 start = %s", got)
	}
	if start.Weekday() != time.Monday || end.Weekday() != time.Sunday {
		t.Fatalf("range weekdays = %s..%s", start.Weekday(), end.Weekday())
	}
}

func TestCurrentContextMatchesISOWeek(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	ctx := CurrentContext(now)
	if ctx.Year != 2026 || ctx.Month != 3 || ctx.Week != 10 {
		t.Fatalf("context = %+v", ctx)
	}
	if !ctx.WeekStart.Before(now) || !ctx.WeekEnd.After(now) {
		t.Fatalf("now %v outside week %v..%v", now, ctx.WeekStart, ctx.WeekEnd)
	}
}

func TestStoreRoundTripsAllLevels(t *testing.T) {
	s := NewStore(t.TempDir())

	year := &YearPlan{Year: 2026, Theme: "depth over breadth", Goals: []string{"ship the tool", "run a half marathon"}}
	if err := s.SaveYearPlan(year); err != nil {
		t.Fatalf("save year: %v", err)
	}
	month := &MonthPlan{Year: 2026, Month: 3, Goals: []string{"finish the parser"}}
	if err := s.SaveMonthPlan(month); err != nil {
		t.Fatalf("save month: %v", err)
	}
	week := &WeekPlan{Year: 2026, Week: 10, Goals: []string{"write tests", "draft docs"}}
	if err := s.SaveWeekPlan(week); err != nil {
		t.Fatalf("save week: %v", err)
	}

	gotYear, err := s.LoadYearPlan(2026)
	if err != nil {
		t.Fatalf("load year: %v", err)
	}
	if gotYear.Theme != "depth over breadth" || len(gotYear.Goals) != 2 {
		t.Fatalf("year = %+v", gotYear)
	}

	gotMonth, err := s.LoadMonthPlan(2026, 3)
	if err != nil {
		t.Fatalf("load month: %v", err)
	}
	if len(gotMonth.Goals) != 1 {
		t.Fatalf("month = %+v", gotMonth)
	}

	gotWeek, err := s.LoadWeekPlan(2026, 10)
	if err != nil {
		t.Fatalf("load week: %v", err)
	}
	if gotWeek.Range != "2026-03-02 to 2026-03-08" {
		t.Fatalf("week range = %q", gotWeek.Range)
	}
}

func TestStoreMissingRecordsAreErrNotFound(t *testing.T) {
	s := NewStore(t.TempDir())
	if _, err := s.LoadYearPlan(2026); !errors.Is(err, ErrNotFound) {
		t.Fatalf("year error = %v", err)
	}
	if _, err := s.LoadMonthPlan(2026, 3); !errors.Is(err, ErrNotFound) {
		t.Fatalf("month error = %v", err)
	}
	if _, err := s.LoadWeekPlan(2026, 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("week error = %v", err)
	}
}

func TestGoalLimits(t *testing.T) {
	s := NewStore(t.TempDir())
	tooMany := make([]string, MaxYearGoals+1)
	for i := range tooMany {
		tooMany[i] = "goal"
	}
	if err := s.SaveYearPlan(&YearPlan{Year: 2026, Goals: tooMany}); err == nil {
		t.Fatalf("expected error for too many year goals")
	}
	if err := s.SaveWeekPlan(&WeekPlan{Year: 2026, Week: 60}); err == nil {
		t.Fatalf("expected error for invalid week number")
	}
}

func TestDefaultWeekContent(t *testing.T) {
	content := DefaultWeekContent([]string{"write tests", "draft docs"})
	if !strings.Contains(content, "- [ ] write tests") || !strings.Contains(content, "- [ ] draft docs") {
		t.Fatalf("content = %q", content)
	}
}
