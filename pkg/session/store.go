// Package session persists recorded simulation runs to SQLite and
// plays them back through the locomotion source interface.
package session

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/strideworks/go-stride/pkg/protocol"
)

// ErrNotFound is returned when a session id has no row.
var ErrNotFound = errors.New("session not found")

// Session describes one recorded run.
type Session struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	StartedAt time.Time `json:"started_at"`
	RateHz    float64   `json:"rate_hz"`
	Frames    int64     `json:"frames"`
}

// Store wraps the session database.
type Store struct {
	db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		label       TEXT,
		started_at  TIMESTAMP,
		rate_hz     DOUBLE,
		frames      BIGINT DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS frames (
		session_id   TEXT,
		idx          BIGINT,
		t            DOUBLE,
		x            DOUBLE,
		y            DOUBLE,
		yaw          DOUBLE,
		vx           DOUBLE,
		vy           DOUBLE,
		ax           DOUBLE,
		ay           DOUBLE,
		speed        DOUBLE,
		direction    DOUBLE,
		accelerating INTEGER,
		lean         DOUBLE,
		bone_pitch   DOUBLE,
		bone_yaw     DOUBLE,
		FOREIGN KEY(session_id) REFERENCES sessions(id)
	);
	CREATE INDEX IF NOT EXISTS idx_frames_session ON frames(session_id, idx);
`

// Open opens (creating if needed) the session database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSession inserts a new session row and returns it.
func (s *Store) CreateSession(label string, rateHz float64) (Session, error) {
	sess := Session{
		ID:        uuid.New().String(),
		Label:     label,
		StartedAt: time.Now().UTC(),
		RateHz:    rateHz,
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, label, started_at, rate_hz) VALUES (?, ?, ?, ?)`,
		sess.ID,
		sess.Label,
		sess.StartedAt.Format(time.RFC3339Nano),
		sess.RateHz,
	)
	if err != nil {
		return Session{}, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// InsertFrames appends a batch of frames in one transaction and bumps
// the session's frame count.
func (s *Store) InsertFrames(sessionID string, frames []protocol.FrameData) error {
	if len(frames) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning frame batch: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO frames (
			session_id, idx, t, x, y, yaw, vx, vy, ax, ay,
			speed, direction, accelerating, lean, bone_pitch, bone_yaw
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing frame insert: %w", err)
	}

	for _, f := range frames {
		accelerating := 0
		if f.Accelerating {
			accelerating = 1
		}
		if _, err := stmt.Exec(
			sessionID, f.Index, f.T, f.X, f.Y, f.Yaw, f.VX, f.VY, f.AX, f.AY,
			f.Speed, f.Direction, accelerating, f.Lean, f.BonePitch, f.BoneYaw,
		); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("inserting frame %d: %w", f.Index, err)
		}
	}
	stmt.Close()

	if _, err := tx.Exec(
		`UPDATE sessions SET frames = frames + ? WHERE id = ?`,
		len(frames), sessionID,
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("updating session frame count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing frame batch: %w", err)
	}
	return nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions() ([]Session, error) {
	rows, err := s.db.Query(`
		SELECT id, label, started_at, rate_hz, frames
		FROM sessions ORDER BY started_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// GetSession loads one session by id.
func (s *Store) GetSession(id string) (Session, error) {
	row := s.db.QueryRow(`
		SELECT id, label, started_at, rate_hz, frames
		FROM sessions WHERE id = ?
	`, id)
	sess, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return sess, err
}

func scanSession(scan func(...any) error) (Session, error) {
	var sess Session
	var startedAt string
	if err := scan(&sess.ID, &sess.Label, &startedAt, &sess.RateHz, &sess.Frames); err != nil {
		return Session{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Session{}, fmt.Errorf("parsing started_at for %s: %w", sess.ID, err)
	}
	sess.StartedAt = t
	return sess, nil
}

// LoadFrames returns a session's frames in recorded order.
func (s *Store) LoadFrames(sessionID string) ([]protocol.FrameData, error) {
	rows, err := s.db.Query(`
		SELECT idx, t, x, y, yaw, vx, vy, ax, ay,
		       speed, direction, accelerating, lean, bone_pitch, bone_yaw
		FROM frames WHERE session_id = ? ORDER BY idx
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading frames for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var frames []protocol.FrameData
	for rows.Next() {
		var f protocol.FrameData
		var accelerating int
		if err := rows.Scan(
			&f.Index, &f.T, &f.X, &f.Y, &f.Yaw, &f.VX, &f.VY, &f.AX, &f.AY,
			&f.Speed, &f.Direction, &accelerating, &f.Lean, &f.BonePitch, &f.BoneYaw,
		); err != nil {
			return nil, fmt.Errorf("scanning frame for %s: %w", sessionID, err)
		}
		f.Accelerating = accelerating != 0
		frames = append(frames, f)
	}
	return frames, rows.Err()
}
