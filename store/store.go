package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DefaultVolume is reported for channels with no saved volume.
const DefaultVolume = 70

const dayFormat = "2006-01-02"

// Note returns the scratchpad body.
func (s *Store) Note() (string, error) {
	var body string
	err := s.conn.QueryRow(`SELECT body FROM notes WHERE id = 1`).Scan(&body)
	if err != nil {
		return "", fmt.Errorf("load note: %w", err)
	}
	return body, nil
}

// SaveNote overwrites the scratchpad body.
func (s *Store) SaveNote(body string) error {
	_, err := s.conn.Exec(
		`UPDATE notes SET body = ?, updated_at = datetime('now') WHERE id = 1`,
		body,
	)
	if err != nil {
		return fmt.Errorf("save note: %w", err)
	}
	return nil
}

// Setting returns the value for key, or fallback when unset.
func (s *Store) Setting(key, fallback string) (string, error) {
	var value string
	err := s.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("load setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting stores value under key, replacing any previous value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.conn.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

// Volume returns the saved volume percent for a channel name. Unset,
// unparsable, or out-of-range values fall back to DefaultVolume.
func (s *Store) Volume(channel string) int {
	raw, err := s.Setting("volume."+channel, "")
	if err != nil || raw == "" {
		return DefaultVolume
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || v > 100 {
		return DefaultVolume
	}
	return v
}

// SetVolume saves the volume percent for a channel name, clamped to
// 0-100.
func (s *Store) SetVolume(channel string, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return s.SetSetting("volume."+channel, strconv.Itoa(percent))
}

// CompleteSession records one finished work block on the given day.
func (s *Store) CompleteSession(day time.Time) error {
	_, err := s.conn.Exec(
		`INSERT INTO streaks (day, completed) VALUES (?, 1)
		 ON CONFLICT (day) DO UPDATE SET completed = completed + 1`,
		day.Format(dayFormat),
	)
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// Streak counts consecutive days with at least one finished work block,
// walking back from today. A streak broken yesterday but not yet
// extended today still counts: finishing nothing today only resets it
// once the day is over.
func (s *Store) Streak(now time.Time) (int, error) {
	rows, err := s.conn.Query(`SELECT day FROM streaks WHERE completed > 0 ORDER BY day DESC`)
	if err != nil {
		return 0, fmt.Errorf("load streaks: %w", err)
	}
	defer rows.Close()

	days := make(map[string]bool)
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return 0, err
		}
		days[day] = true
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	cursor := now
	if !days[cursor.Format(dayFormat)] {
		// No session today yet; the streak hangs on yesterday.
		cursor = cursor.AddDate(0, 0, -1)
	}

	streak := 0
	for days[cursor.Format(dayFormat)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak, nil
}

// SessionsOn reports how many work blocks finished on the given day.
func (s *Store) SessionsOn(day time.Time) (int, error) {
	var completed int
	err := s.conn.QueryRow(
		`SELECT completed FROM streaks WHERE day = ?`, day.Format(dayFormat),
	).Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return completed, nil
}
