package store

import (
	"fmt"
	"time"
)

// AddressUse records when a mailbox address was used.
type AddressUse struct {
	Address     string
	FirstUsedAt time.Time
	LastUsedAt  time.Time
	UseCount    int
}

// RecordAddress notes that address was used at the given time.
func (s *Store) RecordAddress(address string, at time.Time) error {
	at = at.UTC()
	_, err := s.db.Exec(`
		INSERT INTO address_history (address, first_used_at, last_used_at, use_count)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(address) DO UPDATE SET
			last_used_at = excluded.last_used_at,
			use_count = use_count + 1
	`, address, at, at)
	if err != nil {
		return fmt.Errorf("record address %s: %w", address, err)
	}
	return nil
}

// ListAddresses returns previously used addresses, most recent first.
// A limit <= 0 returns all of them.
func (s *Store) ListAddresses(limit int) ([]AddressUse, error) {
	query := `
		SELECT address, first_used_at, last_used_at, use_count
		FROM address_history
		ORDER BY last_used_at DESC, address`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query address history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var uses []AddressUse
	for rows.Next() {
		var u AddressUse
		if err := rows.Scan(&u.Address, &u.FirstUsedAt, &u.LastUsedAt, &u.UseCount); err != nil {
			return nil, fmt.Errorf("scan address history: %w", err)
		}
		uses = append(uses, u)
	}
	return uses, rows.Err()
}

// ForgetAddress removes an address from the history.
func (s *Store) ForgetAddress(address string) error {
	res, err := s.db.Exec(`DELETE FROM address_history WHERE address = ?`, address)
	if err != nil {
		return fmt.Errorf("delete address %s: %w", address, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("address %s not found in history", address)
	}
	return nil
}
