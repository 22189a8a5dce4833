package models

import "time"

const (
	LanguageAuto  = "auto"
	LanguageEn    = "en"
	LanguageHindi = "hi"
)

type Course struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Language  string    `json:"language" db:"language"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreateCourseRequest struct {
	Title    string `json:"title"`
	Language string `json:"language"`
}

type CourseSummary struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Language  string `json:"language"`
	HasPrompt bool   `json:"has_prompt"`
	HasBank   bool   `json:"has_bank"`
}

// Difficulty tags a question or a session's current level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type QuestionBankEntry struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	Difficulty Difficulty `json:"difficulty"`
}

// NormalizeLanguage maps an arbitrary language tag to one of the supported
// tags, defaulting to auto.
func NormalizeLanguage(lang string) string {
	switch lang {
	case LanguageEn, LanguageHindi:
		return lang
	}
	return LanguageAuto
}
