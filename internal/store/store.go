// internal/store/store.go
//
// Persistence for daily plans, logs, and feedback under the data
// directory. Every record is a whole JSON file; writes replace the file
// in full, so at most one plan and one log exist per date.

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/daybreak/internal/task"
)

const (
	planSuffix   = "-plan.json"
	logSuffix    = "-log.json"
	mdSuffix     = "-log.md"
	feedbackFile = "feedback.json"

	dateLayout = "2006-01-02"
)

// ErrNotFound reports a record that does not exist on disk.
var ErrNotFound = errors.New("store: record not found")

// Store reads and writes daybreak records rooted at the data directory.
type Store struct {
	dataDir string
	now     func() time.Time
}

// Option customizes a Store during construction.
type Option func(*Store)

// WithClock overrides the clock used for timestamps and "today".
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		s.now = clock
	}
}

// New builds a store over the given data directory.
func New(dataDir string, opts ...Option) *Store {
	store := &Store{
		dataDir: dataDir,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// DateKey formats a time as the YYYY-MM-DD key records are filed under.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// Today returns the current date key.
func (s *Store) Today() string {
	return DateKey(s.now())
}

func (s *Store) planPath(date string) string {
	return filepath.Join(s.dataDir, date+planSuffix)
}

func (s *Store) logPath(date string) string {
	return filepath.Join(s.dataDir, date+logSuffix)
}

func (s *Store) markdownPath(date string) string {
	return filepath.Join(s.dataDir, date+mdSuffix)
}

func (s *Store) feedbackPath() string {
	return filepath.Join(s.dataDir, feedbackFile)
}

// SavePlan writes the plan for its date, replacing any existing plan.
// A zero CreatedAt is stamped with the current time.
func (s *Store) SavePlan(plan *task.Plan) error {
	if plan == nil || plan.Date == "" {
		return fmt.Errorf("store: plan needs a date")
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = s.now()
	}
	return s.writeJSON(s.planPath(plan.Date), plan)
}

// LoadPlan reads the plan for a date. Missing plans return ErrNotFound.
func (s *Store) LoadPlan(date string) (*task.Plan, error) {
	var plan task.Plan
	if err := s.readJSON(s.planPath(date), &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// PlanExists reports whether a plan file exists for the date.
func (s *Store) PlanExists(date string) bool {
	_, err := os.Stat(s.planPath(date))
	return err == nil
}

// SaveLog writes the log for its date, replacing any existing log.
func (s *Store) SaveLog(log *task.Log) error {
	if log == nil || log.Date == "" {
		return fmt.Errorf("store: log needs a date")
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = s.now()
	}
	return s.writeJSON(s.logPath(log.Date), log)
}

// LoadLog reads the log for a date. Missing logs return ErrNotFound.
func (s *Store) LoadLog(date string) (*task.Log, error) {
	var log task.Log
	if err := s.readJSON(s.logPath(date), &log); err != nil {
		return nil, err
	}
	return &log, nil
}

// LogExists reports whether a log file exists for the date.
func (s *Store) LogExists(date string) bool {
	_, err := os.Stat(s.logPath(date))
	return err == nil
}

// SaveLogMarkdown writes the human-readable rendering next to the log JSON.
func (s *Store) SaveLogMarkdown(log *task.Log) error {
	if log == nil || log.Date == "" {
		return fmt.Errorf("store: log needs a date")
	}
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("store: ensure data dir: %w", err)
	}
	content := RenderLogMarkdown(log)
	path := s.markdownPath(log.Date)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}

// ListPlanDates returns every date with a saved plan, newest first.
func (s *Store) ListPlanDates() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read data dir: %w", err)
	}
	var dates []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, planSuffix) {
			continue
		}
		date := strings.TrimSuffix(name, planSuffix)
		if _, err := time.Parse(dateLayout, date); err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

// LoadFeedback reads every feedback entry. A missing file is an empty list.
func (s *Store) LoadFeedback() ([]task.FeedbackEntry, error) {
	var file feedbackPayload
	if err := s.readJSON(s.feedbackPath(), &file); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return file.Entries, nil
}

// AppendFeedback adds one entry to the feedback file. Empty IDs,
// timestamps, and statuses are filled in.
func (s *Store) AppendFeedback(entry task.FeedbackEntry) (task.FeedbackEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if entry.Status == "" {
		entry.Status = task.FeedbackPending
	}
	entries, err := s.LoadFeedback()
	if err != nil {
		return task.FeedbackEntry{}, err
	}
	entries = append(entries, entry)
	if err := s.writeJSON(s.feedbackPath(), feedbackPayload{Entries: entries}); err != nil {
		return task.FeedbackEntry{}, err
	}
	return entry, nil
}

// UpdateFeedbackStatus changes the status of the entry with the given ID.
// Unknown IDs return ErrNotFound.
func (s *Store) UpdateFeedbackStatus(id string, status task.FeedbackStatus) error {
	entries, err := s.LoadFeedback()
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID == id {
			entries[i].Status = status
			return s.writeJSON(s.feedbackPath(), feedbackPayload{Entries: entries})
		}
	}
	return ErrNotFound
}

type feedbackPayload struct {
	Entries []task.FeedbackEntry `json:"feedback_entries"`
}

func (s *Store) writeJSON(path string, value any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("store: ensure %s: %w", filepath.Dir(path), err)
	}
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}

func (s *Store) readJSON(path string, value any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("store: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("store: parse %s: %w", path, err)
	}
	return nil
}
