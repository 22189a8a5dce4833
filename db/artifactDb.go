package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"studyhall/models"

	_ "github.com/lib/pq"
)

// Artifact kinds stored per course.
const (
	KindMaterial = "material"
	KindPrompt   = "prompt"
	KindBank     = "bank"
)

type ArtifactRepository interface {
	PutArtifact(courseID, kind, content string) error
	GetArtifact(courseID, kind string) (string, error)
	ListKinds(courseID string) ([]string, error)
}

type PostgresArtifactRepository struct {
	db *sql.DB
}

func NewPostgresArtifactRepository(databaseURL string) (*PostgresArtifactRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresArtifactRepository{db: db}, nil
}

func (r *PostgresArtifactRepository) PutArtifact(courseID, kind, content string) error {
	query := `
		INSERT INTO studyhall.course_artifacts (course_id, kind, content)
		VALUES ($1, $2, $3)
		ON CONFLICT (course_id, kind)
		DO UPDATE SET content = EXCLUDED.content, updated_at = now()`

	if _, err := r.db.Exec(query, courseID, kind, content); err != nil {
		return fmt.Errorf("failed to put %s artifact: %w", kind, err)
	}

	return nil
}

func (r *PostgresArtifactRepository) GetArtifact(courseID, kind string) (string, error) {
	query := `
		SELECT content FROM studyhall.course_artifacts
		WHERE course_id = $1 AND kind = $2`

	var content string
	err := r.db.QueryRow(query, courseID, kind).Scan(&content)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", models.ErrArtifactNotFound
		}
		return "", fmt.Errorf("failed to get %s artifact: %w", kind, err)
	}

	return content, nil
}

func (r *PostgresArtifactRepository) ListKinds(courseID string) ([]string, error) {
	query := `
		SELECT kind FROM studyhall.course_artifacts
		WHERE course_id = $1`

	rows, err := r.db.Query(query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifact kinds: %w", err)
	}
	defer rows.Close()

	kinds := make([]string, 0)
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return nil, fmt.Errorf("failed to scan artifact kind: %w", err)
		}
		kinds = append(kinds, kind)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over artifact kinds: %w", err)
	}

	return kinds, nil
}

func (r *PostgresArtifactRepository) Close() error {
	return r.db.Close()
}

// LoadBank reads and decodes a course's question bank artifact.
func LoadBank(repo ArtifactRepository, courseID string) ([]models.QuestionBankEntry, error) {
	raw, err := repo.GetArtifact(courseID, KindBank)
	if err != nil {
		return nil, err
	}

	var bank []models.QuestionBankEntry
	if err := json.Unmarshal([]byte(raw), &bank); err != nil {
		return nil, fmt.Errorf("failed to unmarshal question bank: %w", err)
	}

	return bank, nil
}

// SaveBank encodes and stores a course's question bank artifact, overwriting
// any previous bank.
func SaveBank(repo ArtifactRepository, courseID string, bank []models.QuestionBankEntry) error {
	raw, err := json.Marshal(bank)
	if err != nil {
		return fmt.Errorf("failed to marshal question bank: %w", err)
	}

	return repo.PutArtifact(courseID, KindBank, string(raw))
}
