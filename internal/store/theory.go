package store

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/avakulenko/grindlog/internal/bus"
)

// AddTheorySession records a finished study session. Theory time is
// only persisted at save time; a running theory timer lives in memory.
func (s *Store) AddTheorySession(topic string, duration int64, notes string, endTime time.Time) (TheorySession, error) {
	ts := TheorySession{
		ID:        uuid.NewString(),
		Topic:     topic,
		Duration:  duration,
		Notes:     notes,
		StartTime: endTime.Add(-time.Duration(duration) * time.Second),
		EndTime:   endTime,
	}

	_, err := s.db.Exec(
		`INSERT INTO theory_sessions (id, topic, duration, notes, start_time, end_time)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ts.ID, ts.Topic, ts.Duration, ts.Notes,
		ts.StartTime.UTC().Format(time.RFC3339),
		ts.EndTime.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return TheorySession{}, fmt.Errorf("insert theory session: %w", err)
	}

	s.publishTheory()
	return ts, nil
}

// ListTheorySessions returns all study sessions ordered by end time.
func (s *Store) ListTheorySessions() ([]TheorySession, error) {
	rows, err := s.db.Query(
		`SELECT id, topic, duration, notes, start_time, end_time
		 FROM theory_sessions ORDER BY end_time`,
	)
	if err != nil {
		return nil, fmt.Errorf("list theory sessions: %w", err)
	}
	defer rows.Close()

	var sessions []TheorySession
	for rows.Next() {
		var ts TheorySession
		var start, end string
		if err := rows.Scan(&ts.ID, &ts.Topic, &ts.Duration, &ts.Notes, &start, &end); err != nil {
			return nil, err
		}
		var perr error
		if ts.StartTime, perr = time.Parse(time.RFC3339, start); perr != nil {
			log.Printf("store: discarding theory session %s: %v", ts.ID, perr)
			continue
		}
		if ts.EndTime, perr = time.Parse(time.RFC3339, end); perr != nil {
			log.Printf("store: discarding theory session %s: %v", ts.ID, perr)
			continue
		}
		sessions = append(sessions, ts)
	}
	return sessions, rows.Err()
}

func (s *Store) publishTheory() {
	sessions, err := s.ListTheorySessions()
	if err != nil {
		log.Printf("store: re-read theory sessions for publish: %v", err)
		return
	}
	s.publish(bus.KeyTheorySessions, sessions)
}
