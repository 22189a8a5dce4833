package models

import "time"

type Session struct {
	ID          string              `json:"id" db:"id"`
	CourseID    string              `json:"course_id" db:"course_id"`
	LearnerName string              `json:"learner_name" db:"learner_name"`
	Level       Difficulty          `json:"level" db:"level"`
	History     []InteractionRecord `json:"history"`
	Score       int                 `json:"score" db:"score"`
	Total       int                 `json:"total" db:"total"`
	CreatedAt   time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" db:"updated_at"`
}

type InteractionRecord struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Correct  *bool  `json:"correct,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

type SessionView struct {
	Session *Session            `json:"session"`
	Bank    []QuestionBankEntry `json:"question_bank"`
}

type StartSessionRequest struct {
	CourseID    string `json:"course_id"`
	LearnerName string `json:"learner_name"`
}

type StartSessionResponse struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type SubmitAnswerRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type SubmitAnswerResponse struct {
	Correct      bool       `json:"correct"`
	Feedback     string     `json:"feedback"`
	NextQuestion string     `json:"next_question"`
	Score        int        `json:"score"`
	Total        int        `json:"total"`
	Level        Difficulty `json:"level"`
}

// PerformanceLevel is the coarse classification recomputed after transcript
// reconciliation and handwritten grading.
type PerformanceLevel string

const (
	LevelAdvanced     PerformanceLevel = "Advanced"
	LevelIntermediate PerformanceLevel = "Intermediate"
	LevelBeginner     PerformanceLevel = "Beginner"
)

// ClassifyPerformance maps a score/total ratio onto a coarse level:
// >=80% Advanced, >=50% Intermediate, else Beginner.
func ClassifyPerformance(score, total int) PerformanceLevel {
	if total <= 0 {
		return LevelBeginner
	}
	ratio := float64(score) / float64(total)
	switch {
	case ratio >= 0.8:
		return LevelAdvanced
	case ratio >= 0.5:
		return LevelIntermediate
	}
	return LevelBeginner
}

// DifficultyFor keeps the session level tag in the enumerated difficulty set
// after a coarse reclassification.
func (p PerformanceLevel) DifficultyFor() Difficulty {
	switch p {
	case LevelAdvanced:
		return DifficultyHard
	case LevelIntermediate:
		return DifficultyMedium
	}
	return DifficultyEasy
}

type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback,omitempty"`
}

type AnalyzeTranscriptRequest struct {
	Transcript string `json:"transcript"`
}

type AnalyzeTranscriptResponse struct {
	QAPairs []QAPair         `json:"qa_pairs"`
	Score   int              `json:"score"`
	Total   int              `json:"total"`
	Level   PerformanceLevel `json:"level"`
}
