package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/avakulenko/grindlog/internal/bus"
)

// app_state keys.
const (
	stateActiveSession    = "activeSession"
	stateCompletedSession = "completedSession"
)

func (s *Store) readState(key string, dest any) (bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM app_state WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read state %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), dest); err != nil {
		// Corrupt persisted state must not block startup; drop it.
		log.Printf("store: discarding corrupt %s state: %v", key, err)
		if _, derr := s.db.Exec(`DELETE FROM app_state WHERE key = ?`, key); derr != nil {
			log.Printf("store: clear corrupt %s state: %v", key, derr)
		}
		return false, nil
	}
	return true, nil
}

func (s *Store) writeState(db execer, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal state %s: %w", key, err)
	}
	_, err = db.Exec(
		`INSERT INTO app_state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("write state %s: %w", key, err)
	}
	return nil
}

// ActiveSession returns the persisted in-progress session, or nil when
// no session is running.
func (s *Store) ActiveSession() (*ActiveSession, error) {
	var as ActiveSession
	ok, err := s.readState(stateActiveSession, &as)
	if err != nil || !ok {
		return nil, err
	}
	return &as, nil
}

// SaveActiveSession persists the in-progress session and notifies
// observers, preserving any externally assigned id.
func (s *Store) SaveActiveSession(as ActiveSession) error {
	if as.ID == "" {
		as.ID = uuid.NewString()
	}
	if err := s.writeState(s.db, stateActiveSession, as); err != nil {
		return err
	}
	s.publish(bus.KeyActiveSession, as)
	return nil
}

// ClearActiveSession removes the in-progress session without producing
// a completed draft (used by reset paths).
func (s *Store) ClearActiveSession() error {
	if _, err := s.db.Exec(`DELETE FROM app_state WHERE key = ?`, stateActiveSession); err != nil {
		return fmt.Errorf("clear active session: %w", err)
	}
	s.publish(bus.KeyActiveSession, nil)
	return nil
}

// FinalizeActiveSession atomically replaces the active session with a
// completed-session draft awaiting user confirmation. Either both
// writes land or neither does.
func (s *Store) FinalizeActiveSession(draft Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin finalize: %w", err)
	}
	defer tx.Rollback()

	if err := s.writeState(tx, stateCompletedSession, draft); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM app_state WHERE key = ?`, stateActiveSession); err != nil {
		return fmt.Errorf("finalize: clear active session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finalize: %w", err)
	}

	s.publish(bus.KeyActiveSession, nil)
	s.publish(bus.KeyCompletedSession, draft)
	return nil
}

// CompletedSession returns the finalized-but-unconfirmed draft, or nil.
func (s *Store) CompletedSession() (*Session, error) {
	var draft Session
	ok, err := s.readState(stateCompletedSession, &draft)
	if err != nil || !ok {
		return nil, err
	}
	return &draft, nil
}

// ClearCompletedSession discards the unconfirmed draft.
func (s *Store) ClearCompletedSession() error {
	if _, err := s.db.Exec(`DELETE FROM app_state WHERE key = ?`, stateCompletedSession); err != nil {
		return fmt.Errorf("clear completed session: %w", err)
	}
	s.publish(bus.KeyCompletedSession, nil)
	return nil
}

// ConfirmCompletedSession turns the draft into a stored historical
// session with the user-supplied notes and hand count, atomically
// clearing the draft. The session id is assigned here.
func (s *Store) ConfirmCompletedSession(draft Session, notes string, handsPlayed int64) (Session, error) {
	draft.ID = uuid.NewString()
	draft.Notes = notes
	draft.HandsPlayed = handsPlayed
	draft.OverallDuration = durationSeconds(draft.OverallStartTime, draft.OverallEndTime)

	tx, err := s.db.Begin()
	if err != nil {
		return Session{}, fmt.Errorf("begin confirm: %w", err)
	}
	defer tx.Rollback()

	if err := s.insertSession(tx, draft); err != nil {
		return Session{}, err
	}
	if _, err := tx.Exec(`DELETE FROM app_state WHERE key = ?`, stateCompletedSession); err != nil {
		return Session{}, fmt.Errorf("confirm: clear draft: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Session{}, fmt.Errorf("commit confirm: %w", err)
	}

	s.publishSessions()
	s.publish(bus.KeyCompletedSession, nil)
	return draft, nil
}
