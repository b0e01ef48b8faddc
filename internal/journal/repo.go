package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const defaultLimit = 50

// Record appends one save attempt.
func (db *DB) Record(e Entry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO attempts (profile, file, cause, number, bytes, checksum, ok, error, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Profile, e.File, e.Trigger, e.Number, e.Bytes, e.Checksum, e.OK, e.Error, e.At.UTC())
	if err != nil {
		return fmt.Errorf("journal: record attempt: %w", err)
	}
	return nil
}

// RecordFailure appends a terminal failure.
func (db *DB) RecordFailure(f Failure) error {
	if f.At.IsZero() {
		f.At = time.Now()
	}
	_, err := db.conn.Exec(`INSERT INTO failures (path, attempts, error, at) VALUES (?, ?, ?, ?)`,
		f.Path, f.Attempts, f.Error, f.At.UTC())
	if err != nil {
		return fmt.Errorf("journal: record failure: %w", err)
	}
	return nil
}

// Recent returns the newest attempts first. An empty profile matches all.
func (db *DB) Recent(profile string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	query := `SELECT id, profile, file, cause, number, bytes, checksum, ok, error, at FROM attempts`
	args := []interface{}{}
	if profile != "" {
		query += ` WHERE profile = ?`
		args = append(args, profile)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: query attempts: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Profile, &e.File, &e.Trigger, &e.Number, &e.Bytes,
			&e.Checksum, &e.OK, &e.Error, &e.At); err != nil {
			return nil, fmt.Errorf("journal: scan attempt: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Failures returns the newest terminal failures first.
func (db *DB) Failures(limit int) ([]Failure, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := db.conn.Query(`SELECT id, path, attempts, error, at FROM failures ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query failures: %w", err)
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		if err := rows.Scan(&f.ID, &f.Path, &f.Attempts, &f.Error, &f.At); err != nil {
			return nil, fmt.Errorf("journal: scan failure: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Stats counts attempts for profile and finds the last confirmed write.
func (db *DB) Stats(profile string) (Stats, error) {
	var s Stats
	err := db.conn.QueryRow(`
		SELECT count(*), coalesce(sum(CASE WHEN ok = 0 THEN 1 ELSE 0 END), 0)
		FROM attempts WHERE profile = ?
	`, profile).Scan(&s.Attempts, &s.Failed)
	if err != nil {
		return s, fmt.Errorf("journal: count attempts: %w", err)
	}

	var last time.Time
	err = db.conn.QueryRow(`SELECT at FROM attempts WHERE profile = ? AND ok = 1 ORDER BY id DESC LIMIT 1`,
		profile).Scan(&last)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return s, fmt.Errorf("journal: last success: %w", err)
	default:
		s.LastSuccess = &last
	}
	return s, nil
}
