package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/avakulenko/grindlog/internal/bus"
)

// AddSession appends a finalized session to history. An empty ID is
// replaced with a fresh UUID. The stored overall_duration is always
// recomputed from the start/end pair.
func (s *Store) AddSession(sess Session) (Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	sess.OverallDuration = durationSeconds(sess.OverallStartTime, sess.OverallEndTime)

	if err := s.insertSession(s.db, sess); err != nil {
		return Session{}, err
	}
	s.publishSessions()
	return sess, nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *Store) insertSession(db execer, sess Session) error {
	periods, err := json.Marshal(sess.Periods)
	if err != nil {
		return fmt.Errorf("marshal periods: %w", err)
	}
	_, err = db.Exec(
		`INSERT INTO sessions (id, overall_start, overall_end, overall_duration,
		                       overall_profit, overall_hands, hands_played, notes, periods)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID,
		sess.OverallStartTime.UTC().Format(time.RFC3339),
		sess.OverallEndTime.UTC().Format(time.RFC3339),
		sess.OverallDuration,
		sess.OverallProfit,
		sess.OverallHands,
		sess.HandsPlayed,
		sess.Notes,
		string(periods),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SessionUpdate carries a manual edit; nil fields are left untouched.
type SessionUpdate struct {
	OverallStartTime *time.Time
	OverallEndTime   *time.Time
	HandsPlayed      *int64
	Notes            *string
	Periods          []Period
}

// UpdateSession applies a manual user edit to one stored session.
// Changing either timestamp recomputes the derived duration.
func (s *Store) UpdateSession(id string, u SessionUpdate) error {
	sess, err := s.GetSession(id)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("update session %s: not found", id)
	}

	if u.OverallStartTime != nil {
		sess.OverallStartTime = *u.OverallStartTime
	}
	if u.OverallEndTime != nil {
		sess.OverallEndTime = *u.OverallEndTime
	}
	if u.HandsPlayed != nil {
		sess.HandsPlayed = *u.HandsPlayed
	}
	if u.Notes != nil {
		sess.Notes = *u.Notes
	}
	if u.Periods != nil {
		sess.Periods = u.Periods
	}
	sess.OverallDuration = durationSeconds(sess.OverallStartTime, sess.OverallEndTime)

	periods, err := json.Marshal(sess.Periods)
	if err != nil {
		return fmt.Errorf("marshal periods: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE sessions SET overall_start = ?, overall_end = ?, overall_duration = ?,
		        hands_played = ?, notes = ?, periods = ? WHERE id = ?`,
		sess.OverallStartTime.UTC().Format(time.RFC3339),
		sess.OverallEndTime.UTC().Format(time.RFC3339),
		sess.OverallDuration,
		sess.HandsPlayed,
		sess.Notes,
		string(periods),
		id,
	)
	if err != nil {
		return fmt.Errorf("update session %s: %w", id, err)
	}
	s.publishSessions()
	return nil
}

// GetSession returns one session by id, or nil when absent.
func (s *Store) GetSession(id string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, overall_start, overall_end, overall_duration, overall_profit,
		        overall_hands, hands_played, notes, periods
		 FROM sessions WHERE id = ?`, id,
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

// ListSessions returns all finalized sessions ordered by start time.
// Rows that fail to decode are discarded with a log line rather than
// failing the whole read.
func (s *Store) ListSessions() ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT id, overall_start, overall_end, overall_duration, overall_profit,
		        overall_hands, hands_played, notes, periods
		 FROM sessions ORDER BY overall_start`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			log.Printf("store: discarding unreadable session row: %v", err)
			continue
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// ImportSessions merges imported sessions into history, skipping any
// whose id already exists. Returns the number actually added.
func (s *Store) ImportSessions(incoming []Session) (int, error) {
	existing, err := s.ListSessions()
	if err != nil {
		return 0, err
	}
	ids := make(map[string]bool, len(existing))
	for _, sess := range existing {
		ids[sess.ID] = true
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, sess := range incoming {
		if sess.ID == "" || ids[sess.ID] {
			continue
		}
		ids[sess.ID] = true
		sess.OverallDuration = durationSeconds(sess.OverallStartTime, sess.OverallEndTime)
		if err := s.insertSession(tx, sess); err != nil {
			return 0, err
		}
		added++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}

	if added > 0 {
		s.publishSessions()
	}
	return added, nil
}

func (s *Store) publishSessions() {
	sessions, err := s.ListSessions()
	if err != nil {
		log.Printf("store: re-read sessions for publish: %v", err)
		return
	}
	s.publish(bus.KeySessions, sessions)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	var start, end, periods string
	var stored int64
	if err := row.Scan(&sess.ID, &start, &end, &stored, &sess.OverallProfit,
		&sess.OverallHands, &sess.HandsPlayed, &sess.Notes, &periods); err != nil {
		return nil, err
	}

	var err error
	if sess.OverallStartTime, err = time.Parse(time.RFC3339, start); err != nil {
		return nil, fmt.Errorf("parse overall_start: %w", err)
	}
	if sess.OverallEndTime, err = time.Parse(time.RFC3339, end); err != nil {
		return nil, fmt.Errorf("parse overall_end: %w", err)
	}
	if err := json.Unmarshal([]byte(periods), &sess.Periods); err != nil {
		return nil, fmt.Errorf("parse periods: %w", err)
	}

	// The stored duration is derived; recompute and flag drift from
	// manual edits instead of trusting it.
	sess.OverallDuration = durationSeconds(sess.OverallStartTime, sess.OverallEndTime)
	if stored != sess.OverallDuration {
		log.Printf("store: session %s stored duration %ds != derived %ds, using derived",
			sess.ID, stored, sess.OverallDuration)
	}
	return &sess, nil
}

// durationSeconds is the whole-second floor of end-start, never negative.
func durationSeconds(start, end time.Time) int64 {
	d := int64(end.Sub(start) / time.Second)
	if d < 0 {
		return 0
	}
	return d
}

// SortSessions orders sessions by overall start time, ascending.
func SortSessions(sessions []Session) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].OverallStartTime.Before(sessions[j].OverallStartTime)
	})
}
