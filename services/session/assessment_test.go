package session

import (
	"context"
	"errors"
	"testing"

	"studyhall/db"
	"studyhall/models"

	"github.com/tmc/langchaingo/llms"
)

func TestQuestionSubset(t *testing.T) {
	tests := []struct {
		name        string
		bankSize    int
		count       int
		expectedLen int
	}{
		{name: "smaller than bank", bankSize: 8, count: 3, expectedLen: 3},
		{name: "zero count defaults", bankSize: 8, count: 0, expectedLen: 5},
		{name: "negative count defaults", bankSize: 8, count: -2, expectedLen: 5},
		{name: "larger than bank returns whole bank", bankSize: 4, count: 20, expectedLen: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _, artifacts := newTestService(&stubModel{})

			bank := make([]models.QuestionBankEntry, tt.bankSize)
			for i := range bank {
				bank[i] = models.QuestionBankEntry{
					Question:   string(rune('A' + i)),
					Answer:     "answer",
					Difficulty: models.DifficultyEasy,
				}
			}
			db.SaveBank(artifacts, "course-1", bank)

			subset, err := service.QuestionSubset("course-1", tt.count)
			if err != nil {
				t.Fatalf("QuestionSubset() error = %v", err)
			}
			if len(subset) != tt.expectedLen {
				t.Errorf("subset length = %d, expected %d", len(subset), tt.expectedLen)
			}

			seen := make(map[string]bool)
			for _, entry := range subset {
				if seen[entry.Question] {
					t.Errorf("duplicate question %q in subset", entry.Question)
				}
				seen[entry.Question] = true
			}
		})
	}
}

func TestQuestionSubsetMissingBank(t *testing.T) {
	service, _, _, _ := newTestService(&stubModel{})

	_, err := service.QuestionSubset("course-1", 5)
	if !errors.Is(err, models.ErrBankMissing) {
		t.Fatalf("QuestionSubset() error = %v, expected ErrBankMissing", err)
	}
}

func TestQuestionSubsetEmptyBank(t *testing.T) {
	service, _, _, artifacts := newTestService(&stubModel{})
	db.SaveBank(artifacts, "course-1", []models.QuestionBankEntry{})

	_, err := service.QuestionSubset("course-1", 5)
	if !errors.Is(err, models.ErrBankMissing) {
		t.Fatalf("QuestionSubset() error = %v, expected ErrBankMissing", err)
	}
}

func TestStartDynamicAssessmentRetriesSimplified(t *testing.T) {
	questions := []models.QuestionBankEntry{
		{Question: "Q1", Answer: "A1", Difficulty: models.DifficultyEasy},
		{Question: "Q2", Answer: "A2", Difficulty: models.DifficultyHard},
	}
	model := &stubModel{
		errs: []error{errors.New("model down"), nil},
		responses: []*llms.ContentResponse{
			nil,
			toolResponse("publish_questions", PublishQuestionsParams{Questions: questions}),
		},
	}
	service, _, _, artifacts := newTestService(model)
	artifacts.PutArtifact("course-1", db.KindMaterial, "Plants make food from sunlight.")

	resp, err := service.StartDynamicAssessment(context.Background(), "course-1")
	if err != nil {
		t.Fatalf("StartDynamicAssessment() error = %v", err)
	}
	if len(resp.Questions) != 2 {
		t.Errorf("questions = %d, expected 2", len(resp.Questions))
	}
	if model.calls != 2 {
		t.Errorf("model calls = %d, expected retry after first failure", model.calls)
	}
}

func TestStartDynamicAssessmentFailsAfterRetry(t *testing.T) {
	model := &stubModel{errs: []error{errors.New("down"), errors.New("still down")}}
	service, _, _, artifacts := newTestService(model)
	artifacts.PutArtifact("course-1", db.KindMaterial, "Plants make food from sunlight.")

	_, err := service.StartDynamicAssessment(context.Background(), "course-1")
	if !errors.Is(err, models.ErrGenerationFailed) {
		t.Fatalf("StartDynamicAssessment() error = %v, expected ErrGenerationFailed", err)
	}
}

func TestStartDynamicAssessmentRequiresMaterial(t *testing.T) {
	service, _, _, _ := newTestService(&stubModel{})

	_, err := service.StartDynamicAssessment(context.Background(), "course-1")
	if !errors.Is(err, models.ErrMaterialMissing) {
		t.Fatalf("StartDynamicAssessment() error = %v, expected ErrMaterialMissing", err)
	}
}

func TestGradeHandwritten(t *testing.T) {
	model := &stubModel{responses: []*llms.ContentResponse{
		toolResponse("report_grading", ReportReconciliationParams{
			Pairs: []ReconcilePairParams{
				{Question: "Q1", Answer: "right", Correct: true},
				{Question: "Q2", Answer: "right", Correct: true},
				{Question: "Q3", Answer: "wrong", Correct: false, Feedback: "Not quite"},
			},
		}),
	}}
	service, _, _, _ := newTestService(model)

	result, err := service.GradeHandwritten(context.Background(), "course-1", "image/jpeg",
		[]byte{0xff, 0xd8}, []string{"Q1", "Q2", "Q3"})
	if err != nil {
		t.Fatalf("GradeHandwritten() error = %v", err)
	}

	if result.Score != 2 || result.Total != 3 {
		t.Errorf("score/total = %d/%d, expected 2/3", result.Score, result.Total)
	}
	if result.Level != models.LevelIntermediate {
		t.Errorf("level = %s, expected Intermediate", result.Level)
	}
	if len(result.QAPairs) != 3 {
		t.Errorf("qa pairs = %d, expected 3", len(result.QAPairs))
	}
}

func TestGradeHandwrittenEmptyImage(t *testing.T) {
	service, _, _, _ := newTestService(&stubModel{})

	_, err := service.GradeHandwritten(context.Background(), "course-1", "image/jpeg", nil, nil)
	if !errors.Is(err, models.ErrUnsupportedInput) {
		t.Fatalf("GradeHandwritten() error = %v, expected ErrUnsupportedInput", err)
	}
}

func TestGradeHandwrittenMalformedOutput(t *testing.T) {
	model := &stubModel{responses: []*llms.ContentResponse{
		toolResponse("report_grading", ReportReconciliationParams{}),
	}}
	service, _, _, _ := newTestService(model)

	_, err := service.GradeHandwritten(context.Background(), "course-1", "image/png",
		[]byte{0x89, 0x50}, []string{"Q1"})
	if !errors.Is(err, models.ErrAnalysisFailed) {
		t.Fatalf("GradeHandwritten() error = %v, expected ErrAnalysisFailed", err)
	}
}
