package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/avakulenko/grindlog/internal/bus"
)

// Settings returns the current settings, falling back to defaults on
// first run or when the stored row cannot be decoded.
func (s *Store) Settings() (Settings, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE id = 1`).Scan(&value)
	if err == sql.ErrNoRows {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	// Decode over defaults so fields added since the row was written
	// keep their default values (partial-merge on load).
	settings := DefaultSettings()
	if err := json.Unmarshal([]byte(value), &settings); err != nil {
		log.Printf("store: discarding corrupt settings, using defaults: %v", err)
		return DefaultSettings(), nil
	}
	if settings.Plans == nil {
		settings.Plans = map[string]Plan{}
	}
	if settings.OffDays == nil {
		settings.OffDays = map[string]bool{}
	}
	return settings, nil
}

// UpdateSettings loads the current settings, applies mutate, and
// persists the result. Every call persists and publishes.
func (s *Store) UpdateSettings(mutate func(*Settings)) (Settings, error) {
	settings, err := s.Settings()
	if err != nil {
		return Settings{}, err
	}
	mutate(&settings)
	if err := s.saveSettings(settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// ReplaceSettings overwrites settings wholesale (settings import).
func (s *Store) ReplaceSettings(settings Settings) error {
	if settings.Plans == nil {
		settings.Plans = map[string]Plan{}
	}
	if settings.OffDays == nil {
		settings.OffDays = map[string]bool{}
	}
	return s.saveSettings(settings)
}

func (s *Store) saveSettings(settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO settings (id, value) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET value = excluded.value`,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.publish(bus.KeySettings, settings)
	return nil
}

// PlanForDate returns the plan stored for date's local calendar day,
// or nil when none exists.
func (s *Store) PlanForDate(date time.Time) (*Plan, error) {
	settings, err := s.Settings()
	if err != nil {
		return nil, err
	}
	if plan, ok := settings.Plans[DateKey(date)]; ok {
		return &plan, nil
	}
	return nil, nil
}

// SetPlanForDate stores a plan for a date. Empty plans are removed
// rather than stored as zeros.
func (s *Store) SetPlanForDate(date time.Time, plan Plan) error {
	_, err := s.UpdateSettings(func(settings *Settings) {
		key := DateKey(date)
		if plan.Empty() {
			delete(settings.Plans, key)
		} else {
			settings.Plans[key] = plan
		}
	})
	return err
}

// IsOffDay reports whether date's local calendar day is flagged off.
func (s *Store) IsOffDay(date time.Time) (bool, error) {
	settings, err := s.Settings()
	if err != nil {
		return false, err
	}
	return settings.OffDays[DateKey(date)], nil
}

// SetOffDay flags or unflags a date as an off day. Flagging a date off
// removes any plan stored for it; the two are mutually exclusive.
func (s *Store) SetOffDay(date time.Time, off bool) error {
	_, err := s.UpdateSettings(func(settings *Settings) {
		key := DateKey(date)
		if off {
			settings.OffDays[key] = true
			delete(settings.Plans, key)
		} else {
			delete(settings.OffDays, key)
		}
	})
	return err
}

// WeekdaySchedule is a per-weekday target used by ApplyWeeklySchedule.
type WeekdaySchedule struct {
	Hours float64
	Hands int64
	IsOff bool
}

// ApplyWeeklySchedule writes plans and off-day flags for every date in
// [start, end] from a weekday template. Weekdays missing from the
// template are left untouched.
func (s *Store) ApplyWeeklySchedule(start, end time.Time, schedule map[time.Weekday]WeekdaySchedule) error {
	_, err := s.UpdateSettings(func(settings *Settings) {
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.Local)
		last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.Local)
		for !day.After(last) {
			if sched, ok := schedule[day.Weekday()]; ok {
				key := DateKey(day)
				if sched.IsOff {
					settings.OffDays[key] = true
					delete(settings.Plans, key)
				} else {
					delete(settings.OffDays, key)
					plan := Plan{Hours: sched.Hours, Hands: sched.Hands}
					if plan.Empty() {
						delete(settings.Plans, key)
					} else {
						settings.Plans[key] = plan
					}
				}
			}
			day = day.AddDate(0, 0, 1)
		}
	})
	return err
}
