// internal/horizon/horizon.go
//
// Longer-horizon planning records: a theme and goals for the year, goals
// for the month, and a goal list plus optional generated plan for the ISO
// week. Files nest under the data directory by year, month, and week.

package horizon

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound reports a horizon record that does not exist on disk.
var ErrNotFound = errors.New("horizon: record not found")

// YearPlan is the year's theme and its headline goals.
type YearPlan struct {
	Year  int      `json:"year"`
	Theme string   `json:"theme"`
	Goals []string `json:"goals"`
}

// MonthPlan is the month's goal list.
type MonthPlan struct {
	Year  int      `json:"year"`
	Month int      `json:"month"`
	Goals []string `json:"goals"`
}

// WeekPlan is the ISO week's goal list plus an optional generated plan.
type WeekPlan struct {
	Year    int      `json:"year"`
	Week    int      `json:"week"`
	Range   string   `json:"range"`
	Goals   []string `json:"goals"`
	Content string   `json:"content,omitempty"`
}

// MaxYearGoals, MaxMonthGoals, and MaxWeekGoals cap each goal list.
const (
	MaxYearGoals  = 5
	MaxMonthGoals = 5
	MaxWeekGoals  = 7
)

// Context locates "now" in the horizon hierarchy. WeekYear is the ISO
// week-numbering year, which differs from Year around January 1.
type Context struct {
	Year      int
	Month     int
	WeekYear  int
	Week      int
	WeekStart time.Time
	WeekEnd   time.Time
}

// CurrentContext resolves the year, month, and ISO week for a time.
func CurrentContext(now time.Time) Context {
	weekYear, week := now.ISOWeek()
	start, end := WeekRange(weekYear, week)
	return Context{
		Year:      now.Year(),
		Month:     int(now.Month()),
		WeekYear:  weekYear,
		Week:      week,
		WeekStart: start,
		WeekEnd:   end,
	}
}

// WeekRange returns the Monday and Sunday of an ISO week. January 4 is
// always inside week 1, which anchors the calculation.
func WeekRange(year, week int) (time.Time, time.Time) {
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday1 := jan4.AddDate(0, 0, 1-weekday)
	start := monday1.AddDate(0, 0, (week-1)*7)
	return start, start.AddDate(0, 0, 6)
}

// FormatWeekRange renders the range string stored on a WeekPlan.
func FormatWeekRange(start, end time.Time) string {
	return start.Format("2006-01-02") + " to " + end.Format("2006-01-02")
}

// DefaultWeekContent renders the checkbox fallback used when no plan was
// generated for the week.
func DefaultWeekContent(goals []string) string {
	var b strings.Builder
	for _, goal := range goals {
		fmt.Fprintf(&b, "- [ ] %s\n", goal)
	}
	return b.String()
}

// Store reads and writes horizon records rooted at the data directory.
type Store struct {
	dataDir string
}

// NewStore builds a horizon store over the given data directory.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) yearPath(year int) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("%04d", year), "year-plan.json")
}

func (s *Store) monthPath(year, month int) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month), "month-plan.json")
}

func (s *Store) weekPath(year, month, week int) string {
	return filepath.Join(s.dataDir,
		fmt.Sprintf("%04d", year),
		fmt.Sprintf("%02d", month),
		fmt.Sprintf("W%02d", week),
		"week-plan.json")
}

// SaveYearPlan writes the year plan, replacing any existing one.
func (s *Store) SaveYearPlan(plan *YearPlan) error {
	if plan == nil || plan.Year == 0 {
		return fmt.Errorf("horizon: year plan needs a year")
	}
	if len(plan.Goals) > MaxYearGoals {
		return fmt.Errorf("horizon: at most %d year goals", MaxYearGoals)
	}
	return writeJSON(s.yearPath(plan.Year), plan)
}

// LoadYearPlan reads the plan for a year. Missing plans return ErrNotFound.
func (s *Store) LoadYearPlan(year int) (*YearPlan, error) {
	var plan YearPlan
	if err := readJSON(s.yearPath(year), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// SaveMonthPlan writes the month plan, replacing any existing one.
func (s *Store) SaveMonthPlan(plan *MonthPlan) error {
	if plan == nil || plan.Year == 0 || plan.Month < 1 || plan.Month > 12 {
		return fmt.Errorf("horizon: month plan needs a year and month")
	}
	if len(plan.Goals) > MaxMonthGoals {
		return fmt.Errorf("horizon: at most %d month goals", MaxMonthGoals)
	}
	return writeJSON(s.monthPath(plan.Year, plan.Month), plan)
}

// LoadMonthPlan reads the plan for a month. Missing plans return ErrNotFound.
func (s *Store) LoadMonthPlan(year, month int) (*MonthPlan, error) {
	var plan MonthPlan
	if err := readJSON(s.monthPath(year, month), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// SaveWeekPlan writes the week plan under the month holding the week's
// Monday, replacing any existing one.
func (s *Store) SaveWeekPlan(plan *WeekPlan) error {
	if plan == nil || plan.Year == 0 || plan.Week < 1 || plan.Week > 53 {
		return fmt.Errorf("horizon: week plan needs a year and week")
	}
	if len(plan.Goals) > MaxWeekGoals {
		return fmt.Errorf("horizon: at most %d week goals", MaxWeekGoals)
	}
	start, end := WeekRange(plan.Year, plan.Week)
	if plan.Range == "" {
		plan.Range = FormatWeekRange(start, end)
	}
	return writeJSON(s.weekPath(plan.Year, int(start.Month()), plan.Week), plan)
}

// LoadWeekPlan reads the plan for an ISO week. Missing plans return
// ErrNotFound.
func (s *Store) LoadWeekPlan(year, week int) (*WeekPlan, error) {
	start, _ := WeekRange(year, week)
	var plan WeekPlan
	if err := readJSON(s.weekPath(year, int(start.Month()), week), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func writeJSON(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("horizon: ensure %s: %w", filepath.Dir(path), err)
	}
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("horizon: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("horizon: write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, value any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("horizon: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("horizon: parse %s: %w", path, err)
	}
	return nil
}
