package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"group-planner/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id                TEXT PRIMARY KEY,
	organizer_name    TEXT NOT NULL,
	organizer_contact TEXT NOT NULL,
	event_name        TEXT NOT NULL,
	created_at        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS participants (
	id                    TEXT PRIMARY KEY,
	session_id            TEXT NOT NULL REFERENCES sessions(id),
	name                  TEXT NOT NULL,
	contact               TEXT NOT NULL,
	preferred_method      TEXT NOT NULL DEFAULT '',
	state                 TEXT NOT NULL,
	awaiting_continuation INTEGER NOT NULL DEFAULT 0,
	completed             INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS responses (
	participant_id TEXT NOT NULL REFERENCES participants(id),
	question_id    TEXT NOT NULL,
	question       TEXT NOT NULL,
	response       TEXT NOT NULL,
	position       INTEGER NOT NULL,
	PRIMARY KEY (participant_id, position)
);
CREATE TABLE IF NOT EXISTS plans (
	id                 TEXT PRIMARY KEY,
	session_id         TEXT NOT NULL REFERENCES sessions(id),
	version            INTEGER NOT NULL,
	event_name         TEXT NOT NULL,
	date               TEXT NOT NULL,
	time               TEXT NOT NULL,
	location           TEXT NOT NULL,
	activities         TEXT NOT NULL,
	accommodations     TEXT NOT NULL,
	notes              TEXT NOT NULL DEFAULT '',
	reasoning          TEXT NOT NULL DEFAULT '',
	revision_reason    TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL,
	organizer_feedback TEXT NOT NULL DEFAULT '',
	created_at         INTEGER NOT NULL,
	UNIQUE (session_id, version)
);
CREATE TABLE IF NOT EXISTS plan_feedback (
	plan_id          TEXT NOT NULL REFERENCES plans(id),
	participant_id   TEXT NOT NULL REFERENCES participants(id),
	participant_name TEXT NOT NULL,
	accepted         INTEGER NOT NULL,
	feedback         TEXT NOT NULL DEFAULT '',
	received_at      INTEGER NOT NULL,
	PRIMARY KEY (plan_id, participant_id)
);
`

// SQLiteStore persists planning state in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite store and creates the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the SQLite handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// CreateSession inserts a session and its participants in one transaction.
func (s *SQLiteStore) CreateSession(ctx context.Context, session models.Session, participants []models.Participant) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, organizer_name, organizer_contact, event_name, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.OrganizerName, session.OrganizerContact, session.EventName, toMillis(session.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for _, p := range participants {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO participants (id, session_id, name, contact, preferred_method, state, awaiting_continuation, completed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.SessionID, p.Name, p.Contact, string(p.PreferredMethod), string(p.State),
			boolToInt(p.AwaitingContinuation), boolToInt(p.Completed))
		if err != nil {
			return fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session create: %w", err)
	}
	return nil
}

// Session retrieves a session by id.
func (s *SQLiteStore) Session(ctx context.Context, id string) (models.Session, error) {
	var sess models.Session
	var createdAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, organizer_name, organizer_contact, event_name, created_at FROM sessions WHERE id = ?`, id).
		Scan(&sess.ID, &sess.OrganizerName, &sess.OrganizerContact, &sess.EventName, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("query session: %w", err)
	}
	sess.CreatedAt = fromMillis(createdAt)
	return sess, nil
}

// Participant retrieves a participant with its recorded responses.
func (s *SQLiteStore) Participant(ctx context.Context, id string) (models.Participant, error) {
	var p models.Participant
	var method, state string
	var awaiting, completed int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, name, contact, preferred_method, state, awaiting_continuation, completed
		 FROM participants WHERE id = ?`, id).
		Scan(&p.ID, &p.SessionID, &p.Name, &p.Contact, &method, &state, &awaiting, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, ErrNotFound
	}
	if err != nil {
		return models.Participant{}, fmt.Errorf("query participant: %w", err)
	}
	p.PreferredMethod = models.Channel(method)
	p.State = models.CollectionState(state)
	p.AwaitingContinuation = awaiting != 0
	p.Completed = completed != 0

	p.Responses, err = s.responses(ctx, id)
	if err != nil {
		return models.Participant{}, err
	}
	return p, nil
}

func (s *SQLiteStore) responses(ctx context.Context, participantID string) ([]models.QuestionResponse, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, question, response, position FROM responses
		 WHERE participant_id = ? ORDER BY position`, participantID)
	if err != nil {
		return nil, fmt.Errorf("query responses: %w", err)
	}
	defer rows.Close()

	var result []models.QuestionResponse
	for rows.Next() {
		var qr models.QuestionResponse
		if err := rows.Scan(&qr.QuestionID, &qr.Question, &qr.Response, &qr.Position); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		result = append(result, qr)
	}
	return result, rows.Err()
}

// ParticipantByContact finds a participant by normalized contact match.
// Normalization happens in Go, so the scan walks the contact column.
func (s *SQLiteStore) ParticipantByContact(ctx context.Context, contact string) (models.Participant, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, contact FROM participants`)
	if err != nil {
		return models.Participant{}, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	key := ContactKey(contact)
	for rows.Next() {
		var id, stored string
		if err := rows.Scan(&id, &stored); err != nil {
			return models.Participant{}, fmt.Errorf("scan participant contact: %w", err)
		}
		if ContactKey(stored) == key {
			if err := rows.Close(); err != nil {
				return models.Participant{}, err
			}
			return s.Participant(ctx, id)
		}
	}
	if err := rows.Err(); err != nil {
		return models.Participant{}, err
	}
	return models.Participant{}, ErrNotFound
}

// SessionParticipants returns all participants of a session.
func (s *SQLiteStore) SessionParticipants(ctx context.Context, sessionID string) ([]models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM participants WHERE session_id = ? ORDER BY rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var result []models.Participant
	for _, id := range ids {
		p, err := s.Participant(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

// UpdateParticipant updates a participant's mutable fields.
func (s *SQLiteStore) UpdateParticipant(ctx context.Context, participant models.Participant) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE participants SET preferred_method = ?, state = ?, awaiting_continuation = ?, completed = ?
		 WHERE id = ?`,
		string(participant.PreferredMethod), string(participant.State),
		boolToInt(participant.AwaitingContinuation), boolToInt(participant.Completed), participant.ID)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	return requireRow(res)
}

// AppendResponse appends one question/response pair.
func (s *SQLiteStore) AppendResponse(ctx context.Context, participantID string, qr models.QuestionResponse) error {
	if _, err := s.Participant(ctx, participantID); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO responses (participant_id, question_id, question, response, position)
		 VALUES (?, ?, ?, ?, ?)`,
		participantID, qr.QuestionID, qr.Question, qr.Response, qr.Position)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

// SavePlan appends a new plan version.
func (s *SQLiteStore) SavePlan(ctx context.Context, plan models.Plan) error {
	activities, err := json.Marshal(plan.Activities)
	if err != nil {
		return fmt.Errorf("marshal activities: %w", err)
	}
	accommodations, err := json.Marshal(plan.Accommodations)
	if err != nil {
		return fmt.Errorf("marshal accommodations: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plans (id, session_id, version, event_name, date, time, location,
		   activities, accommodations, notes, reasoning, revision_reason, status, organizer_feedback, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID, plan.SessionID, plan.Version, plan.EventName, plan.Date, plan.Time, plan.Location,
		string(activities), string(accommodations), plan.Notes, plan.Reasoning, plan.RevisionReason,
		string(plan.Status), plan.OrganizerFeedback, toMillis(plan.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

// UpdatePlan advances a plan's status and organizer feedback.
func (s *SQLiteStore) UpdatePlan(ctx context.Context, plan models.Plan) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE plans SET status = ?, organizer_feedback = ? WHERE id = ?`,
		string(plan.Status), plan.OrganizerFeedback, plan.ID)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return requireRow(res)
}

// Plan retrieves a plan version by id.
func (s *SQLiteStore) Plan(ctx context.Context, id string) (models.Plan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, session_id, version, event_name, date, time, location,
		   activities, accommodations, notes, reasoning, revision_reason, status, organizer_feedback, created_at
		 FROM plans WHERE id = ?`, id)
	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Plan{}, ErrNotFound
	}
	return plan, err
}

// SessionPlans returns all plan versions of a session ordered by version.
func (s *SQLiteStore) SessionPlans(ctx context.Context, sessionID string) ([]models.Plan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, version, event_name, date, time, location,
		   activities, accommodations, notes, reasoning, revision_reason, status, organizer_feedback, created_at
		 FROM plans WHERE session_id = ? ORDER BY version`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	var result []models.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, plan)
	}
	return result, rows.Err()
}

// UpsertPlanFeedback replaces any prior record for the same (plan, participant) pair.
func (s *SQLiteStore) UpsertPlanFeedback(ctx context.Context, fb models.PlanFeedback) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plan_feedback (plan_id, participant_id, participant_name, accepted, feedback, received_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (plan_id, participant_id) DO UPDATE SET
		   participant_name = excluded.participant_name,
		   accepted = excluded.accepted,
		   feedback = excluded.feedback,
		   received_at = excluded.received_at`,
		fb.PlanID, fb.ParticipantID, fb.ParticipantName, boolToInt(fb.Accepted), fb.Feedback, toMillis(fb.ReceivedAt))
	if err != nil {
		return fmt.Errorf("upsert plan feedback: %w", err)
	}
	return nil
}

// PlanFeedback returns all feedback records for a plan version.
func (s *SQLiteStore) PlanFeedback(ctx context.Context, planID string) ([]models.PlanFeedback, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT plan_id, participant_id, participant_name, accepted, feedback, received_at
		 FROM plan_feedback WHERE plan_id = ? ORDER BY participant_id`, planID)
	if err != nil {
		return nil, fmt.Errorf("query plan feedback: %w", err)
	}
	defer rows.Close()

	var result []models.PlanFeedback
	for rows.Next() {
		var fb models.PlanFeedback
		var accepted int
		var receivedAt int64
		if err := rows.Scan(&fb.PlanID, &fb.ParticipantID, &fb.ParticipantName, &accepted, &fb.Feedback, &receivedAt); err != nil {
			return nil, fmt.Errorf("scan plan feedback: %w", err)
		}
		fb.Accepted = accepted != 0
		fb.ReceivedAt = fromMillis(receivedAt)
		result = append(result, fb)
	}
	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (models.Plan, error) {
	var plan models.Plan
	var activities, accommodations, status string
	var createdAt int64
	err := row.Scan(&plan.ID, &plan.SessionID, &plan.Version, &plan.EventName, &plan.Date, &plan.Time,
		&plan.Location, &activities, &accommodations, &plan.Notes, &plan.Reasoning, &plan.RevisionReason,
		&status, &plan.OrganizerFeedback, &createdAt)
	if err != nil {
		return models.Plan{}, err
	}
	if err := json.Unmarshal([]byte(activities), &plan.Activities); err != nil {
		return models.Plan{}, fmt.Errorf("unmarshal activities: %w", err)
	}
	if err := json.Unmarshal([]byte(accommodations), &plan.Accommodations); err != nil {
		return models.Plan{}, fmt.Errorf("unmarshal accommodations: %w", err)
	}
	plan.Status = models.PlanStatus(status)
	plan.CreatedAt = fromMillis(createdAt)
	return plan, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
