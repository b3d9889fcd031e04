package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Preference keys.
const (
	PrefName   = "name"
	PrefDomain = "domain"
)

// Preferences is the saved mailbox identity. Empty fields mean "not saved".
type Preferences struct {
	Name   string
	Domain string
}

// GetPreference returns the value stored under key. The boolean is false
// when the key has never been saved.
func (s *Store) GetPreference(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get preference %s: %w", key, err)
	}
	return value, true, nil
}

// SetPreference stores value under key, replacing any previous value.
func (s *Store) SetPreference(key, value string) error {
	return setPreference(s.db, key, value)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func setPreference(db execer, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	return nil
}

// LoadPreferences returns the saved name and domain.
func (s *Store) LoadPreferences() (Preferences, error) {
	var p Preferences
	name, _, err := s.GetPreference(PrefName)
	if err != nil {
		return p, err
	}
	domain, _, err := s.GetPreference(PrefDomain)
	if err != nil {
		return p, err
	}
	p.Name = name
	p.Domain = domain
	return p, nil
}

// SavePreferences writes name and domain in a single transaction.
func (s *Store) SavePreferences(p Preferences) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := setPreference(tx, PrefName, p.Name); err != nil {
			return err
		}
		return setPreference(tx, PrefDomain, p.Domain)
	})
}
