package session

import (
	"context"
	"errors"
	"testing"

	"studyhall/db"
	"studyhall/models"

	"github.com/tmc/langchaingo/llms"
)

func testCourse() *models.Course {
	return &models.Course{
		ID:       "course-1",
		Title:    "Photosynthesis",
		Language: models.LanguageEn,
	}
}

func testBank() []models.QuestionBankEntry {
	return []models.QuestionBankEntry{
		{Question: "What do plants need to make food?", Answer: "Sunlight, water and carbon dioxide", Difficulty: models.DifficultyEasy},
		{Question: "What is the green pigment in leaves called?", Answer: "Chlorophyll", Difficulty: models.DifficultyEasy},
		{Question: "Why do leaves look green?", Answer: "Chlorophyll reflects green light", Difficulty: models.DifficultyMedium},
		{Question: "Explain how plants release oxygen during photosynthesis", Answer: "Water molecules are split, releasing oxygen", Difficulty: models.DifficultyHard},
	}
}

func newTestService(model *stubModel) (*Service, *fakeCourseRepo, *fakeSessionRepo, *fakeArtifactRepo) {
	courses := newFakeCourseRepo(testCourse())
	sessions := newFakeSessionRepo()
	artifacts := newFakeArtifactRepo()
	return NewService(courses, sessions, artifacts, model, nil), courses, sessions, artifacts
}

func TestStartSessionRequiresPrompt(t *testing.T) {
	service, _, sessions, _ := newTestService(&stubModel{})

	_, err := service.StartSession(context.Background(), "course-1", "Asha")
	if !errors.Is(err, models.ErrPromptMissing) {
		t.Fatalf("StartSession() error = %v, expected ErrPromptMissing", err)
	}
	if len(sessions.sessions) != 0 {
		t.Errorf("expected no session to be created, found %d", len(sessions.sessions))
	}
}

func TestStartSessionUnknownCourse(t *testing.T) {
	service, _, _, _ := newTestService(&stubModel{})

	_, err := service.StartSession(context.Background(), "missing", "Asha")
	if !errors.Is(err, models.ErrCourseNotFound) {
		t.Fatalf("StartSession() error = %v, expected ErrCourseNotFound", err)
	}
}

func TestStartSessionCreatesEasySession(t *testing.T) {
	model := &stubModel{responses: []*llms.ContentResponse{textResponse("What is this chapter about?")}}
	service, _, sessions, artifacts := newTestService(model)
	artifacts.PutArtifact("course-1", db.KindPrompt, "You are a tutor.")

	resp, err := service.StartSession(context.Background(), "course-1", "Asha")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if resp.Question != "What is this chapter about?" {
		t.Errorf("opening question = %q", resp.Question)
	}

	session, err := sessions.GetSessionByID(resp.SessionID)
	if err != nil {
		t.Fatalf("session not stored: %v", err)
	}
	if session.Level != models.DifficultyEasy {
		t.Errorf("new session level = %s, expected easy", session.Level)
	}
	if session.Score != 0 || session.Total != 0 || len(session.History) != 0 {
		t.Errorf("new session not empty: score=%d total=%d history=%d", session.Score, session.Total, len(session.History))
	}
}

func TestStartSessionFallbackOpeningFromBank(t *testing.T) {
	model := &stubModel{errs: []error{errors.New("model down")}}
	service, _, _, artifacts := newTestService(model)
	artifacts.PutArtifact("course-1", db.KindPrompt, "You are a tutor.")
	db.SaveBank(artifacts, "course-1", testBank())

	resp, err := service.StartSession(context.Background(), "course-1", "Asha")
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if resp.Question != "What do plants need to make food?" {
		t.Errorf("fallback opening = %q, expected first easy bank question", resp.Question)
	}
}

func seedSession(t *testing.T, sessions *fakeSessionRepo, level models.Difficulty) *models.Session {
	t.Helper()
	session := &models.Session{
		ID:       "session-1",
		CourseID: "course-1",
		Level:    level,
		History:  []models.InteractionRecord{},
	}
	if err := sessions.CreateSession(session); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return session
}

func TestSubmitAnswerBookkeeping(t *testing.T) {
	model := &stubModel{responses: []*llms.ContentResponse{
		toolResponse("evaluate_answer", EvaluateAnswerParams{
			Correct:        true,
			Feedback:       "Right, plants use sunlight.",
			NextDifficulty: "medium",
			NextQuestion:   "Why do leaves look green?",
		}),
	}}
	service, _, sessions, _ := newTestService(model)
	seedSession(t, sessions, models.DifficultyEasy)

	resp, err := service.SubmitAnswer(context.Background(), "session-1", &models.SubmitAnswerRequest{
		Question: "What do plants need to make food?",
		Answer:   "Sunlight and water",
	})
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}

	if !resp.Correct {
		t.Error("expected correct answer")
	}
	if resp.Score != 1 || resp.Total != 1 {
		t.Errorf("score/total = %d/%d, expected 1/1", resp.Score, resp.Total)
	}
	if resp.Level != models.DifficultyMedium {
		t.Errorf("level = %s, expected medium", resp.Level)
	}
	if resp.NextQuestion != "Why do leaves look green?" {
		t.Errorf("next question = %q", resp.NextQuestion)
	}

	stored, _ := sessions.GetSessionByID("session-1")
	if len(stored.History) != 1 {
		t.Fatalf("history length = %d, expected 1", len(stored.History))
	}
	if stored.History[0].Correct == nil || !*stored.History[0].Correct {
		t.Error("stored record should be marked correct")
	}
	if stored.Total != len(stored.History) {
		t.Errorf("total %d does not match history length %d", stored.Total, len(stored.History))
	}
}

func TestSubmitAnswerFallbackOnModelError(t *testing.T) {
	model := &stubModel{errs: []error{errors.New("model down")}}
	service, _, sessions, _ := newTestService(model)
	seedSession(t, sessions, models.DifficultyMedium)

	resp, err := service.SubmitAnswer(context.Background(), "session-1", &models.SubmitAnswerRequest{
		Question: "Why do leaves look green?",
		Answer:   "Because of chlorophyll",
	})
	if err != nil {
		t.Fatalf("SubmitAnswer() should not fail on model errors, got %v", err)
	}

	if resp.Correct {
		t.Error("fallback evaluation should not award the point")
	}
	if resp.Level != models.DifficultyMedium {
		t.Errorf("level = %s, fallback should keep the current level", resp.Level)
	}
	if resp.Score != 0 || resp.Total != 1 {
		t.Errorf("score/total = %d/%d, expected 0/1", resp.Score, resp.Total)
	}
	if resp.Feedback == "" || resp.NextQuestion == "" {
		t.Error("fallback must still provide feedback and a next question")
	}
}

func TestSubmitAnswerFallbackOnMalformedOutput(t *testing.T) {
	model := &stubModel{responses: []*llms.ContentResponse{
		toolResponse("evaluate_answer", map[string]any{"correct": "not-a-bool"}),
	}}
	service, _, sessions, _ := newTestService(model)
	seedSession(t, sessions, models.DifficultyHard)

	resp, err := service.SubmitAnswer(context.Background(), "session-1", &models.SubmitAnswerRequest{
		Question: "Explain how plants release oxygen during photosynthesis",
		Answer:   "Water is split",
	})
	if err != nil {
		t.Fatalf("SubmitAnswer() should not fail on malformed output, got %v", err)
	}
	if resp.Level != models.DifficultyHard {
		t.Errorf("level = %s, expected hard to be kept", resp.Level)
	}
}

func TestSubmitAnswerUnknownSession(t *testing.T) {
	service, _, _, _ := newTestService(&stubModel{})

	_, err := service.SubmitAnswer(context.Background(), "missing", &models.SubmitAnswerRequest{})
	if !errors.Is(err, models.ErrSessionNotFound) {
		t.Fatalf("SubmitAnswer() error = %v, expected ErrSessionNotFound", err)
	}
}

func TestNormalizeEvaluation(t *testing.T) {
	tests := []struct {
		name             string
		params           EvaluateAnswerParams
		currentLevel     models.Difficulty
		expectedLevel    models.Difficulty
		expectedFeedback string
	}{
		{
			name:          "valid difficulty is kept",
			params:        EvaluateAnswerParams{Correct: true, Feedback: "Nice", NextDifficulty: "hard", NextQuestion: "Next?"},
			currentLevel:  models.DifficultyEasy,
			expectedLevel: models.DifficultyHard,
		},
		{
			name:          "unknown difficulty keeps current level",
			params:        EvaluateAnswerParams{Feedback: "Hm", NextDifficulty: "impossible", NextQuestion: "Next?"},
			currentLevel:  models.DifficultyMedium,
			expectedLevel: models.DifficultyMedium,
		},
		{
			name:             "empty feedback gets fallback",
			params:           EvaluateAnswerParams{NextDifficulty: "easy", NextQuestion: "Next?"},
			currentLevel:     models.DifficultyEasy,
			expectedLevel:    models.DifficultyEasy,
			expectedFeedback: fallbackFeedback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := normalizeEvaluation(&tt.params, tt.currentLevel)
			if eval.NextLevel != tt.expectedLevel {
				t.Errorf("NextLevel = %s, expected %s", eval.NextLevel, tt.expectedLevel)
			}
			if tt.expectedFeedback != "" && eval.Feedback != tt.expectedFeedback {
				t.Errorf("Feedback = %q, expected %q", eval.Feedback, tt.expectedFeedback)
			}
			if eval.NextQuestion == "" {
				t.Error("NextQuestion should never be empty after normalization")
			}
		})
	}
}
