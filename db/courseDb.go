package db

import (
	"database/sql"
	"fmt"

	"studyhall/models"

	_ "github.com/lib/pq"
)

type CourseRepository interface {
	CreateCourse(course *models.Course) error
	GetCourseByID(id string) (*models.Course, error)
	GetAllCourses() ([]*models.Course, error)
}

type PostgresCourseRepository struct {
	db *sql.DB
}

func NewPostgresCourseRepository(databaseURL string) (*PostgresCourseRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresCourseRepository{db: db}, nil
}

func (r *PostgresCourseRepository) CreateCourse(course *models.Course) error {
	query := `
		INSERT INTO studyhall.courses (id, title, language)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	row := r.db.QueryRow(query, course.ID, course.Title, course.Language)

	if err := row.Scan(&course.CreatedAt, &course.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

func (r *PostgresCourseRepository) GetCourseByID(id string) (*models.Course, error) {
	query := `
		SELECT id, title, language, created_at, updated_at
		FROM studyhall.courses
		WHERE id = $1`

	course := &models.Course{}
	row := r.db.QueryRow(query, id)

	err := row.Scan(&course.ID, &course.Title, &course.Language, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return course, nil
}

func (r *PostgresCourseRepository) GetAllCourses() ([]*models.Course, error) {
	query := `
		SELECT id, title, language, created_at, updated_at
		FROM studyhall.courses
		ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		course := &models.Course{}
		err := rows.Scan(&course.ID, &course.Title, &course.Language, &course.CreatedAt, &course.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over courses: %w", err)
	}

	return courses, nil
}

func (r *PostgresCourseRepository) Close() error {
	return r.db.Close()
}
