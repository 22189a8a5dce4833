package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"studyhall/models"

	_ "github.com/lib/pq"
)

type SessionRepository interface {
	CreateSession(session *models.Session) error
	GetSessionByID(id string) (*models.Session, error)
	UpdateSession(session *models.Session) error
}

type PostgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(databaseURL string) (*PostgresSessionRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresSessionRepository{db: db}, nil
}

func (r *PostgresSessionRepository) CreateSession(session *models.Session) error {
	historyJSON, err := json.Marshal(session.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	query := `
		INSERT INTO studyhall.sessions (id, course_id, learner_name, level, history, score, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	row := r.db.QueryRow(query, session.ID, session.CourseID, session.LearnerName,
		string(session.Level), historyJSON, session.Score, session.Total)

	if err := row.Scan(&session.CreatedAt, &session.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *PostgresSessionRepository) GetSessionByID(id string) (*models.Session, error) {
	query := `
		SELECT id, course_id, learner_name, level, history, score, total, created_at, updated_at
		FROM studyhall.sessions
		WHERE id = $1`

	session := &models.Session{}
	var historyJSON []byte
	var level string
	row := r.db.QueryRow(query, id)

	err := row.Scan(&session.ID, &session.CourseID, &session.LearnerName, &level,
		&historyJSON, &session.Score, &session.Total, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.Level = models.Difficulty(level)
	if err := json.Unmarshal(historyJSON, &session.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}

	return session, nil
}

// UpdateSession rewrites a single session row. Writers to different sessions
// touch different rows and never serialize against each other.
func (r *PostgresSessionRepository) UpdateSession(session *models.Session) error {
	historyJSON, err := json.Marshal(session.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	query := `
		UPDATE studyhall.sessions
		SET level = $2, history = $3, score = $4, total = $5, updated_at = now()
		WHERE id = $1`

	result, err := r.db.Exec(query, session.ID, string(session.Level), historyJSON,
		session.Score, session.Total)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrSessionNotFound
	}

	return nil
}

func (r *PostgresSessionRepository) Close() error {
	return r.db.Close()
}
