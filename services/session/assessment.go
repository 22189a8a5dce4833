package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"studyhall/db"
	"studyhall/models"
	"studyhall/services"

	"github.com/tmc/langchaingo/llms"
)

const (
	dynamicAssessmentSize = 10
	defaultSubsetSize     = 5
	assessmentMaterialCap = 8000
)

type PublishQuestionsParams struct {
	Questions []models.QuestionBankEntry `json:"questions"`
}

// StartDynamicAssessment generates a fresh question list from the course
// material, independent of the stored bank. Retries once with a simplified
// request before failing.
func (s *Service) StartDynamicAssessment(ctx context.Context, courseID string) (*models.DynamicAssessmentResponse, error) {
	log.Printf("[INFO] Starting dynamic assessment for course %s", courseID)

	course, err := s.courses.GetCourseByID(courseID)
	if err != nil {
		return nil, err
	}

	material, err := s.artifacts.GetArtifact(courseID, db.KindMaterial)
	if err != nil {
		if errors.Is(err, models.ErrArtifactNotFound) {
			return nil, models.ErrMaterialMissing
		}
		return nil, err
	}
	excerpt := services.TruncateText(material, assessmentMaterialCap)

	langLine := ""
	switch course.Language {
	case models.LanguageEn:
		langLine = "\nWrite all questions in English.\n"
	case models.LanguageHindi:
		langLine = "\nWrite all questions in Hindi.\n"
	}

	prompt := fmt.Sprintf(dynamicAssessmentPrompt, dynamicAssessmentSize, langLine, excerpt)
	questions, err := s.requestQuestions(ctx, prompt)
	if err != nil {
		log.Printf("[ERROR] Dynamic assessment generation failed, retrying simplified: %v", err)
		simplified := fmt.Sprintf(simplifiedAssessmentPrompt, dynamicAssessmentSize,
			services.TruncateText(material, assessmentMaterialCap/2))
		questions, err = s.requestQuestions(ctx, simplified)
		if err != nil {
			log.Printf("[ERROR] Simplified dynamic assessment generation also failed: %v", err)
			return nil, models.ErrGenerationFailed
		}
	}

	log.Printf("[INFO] Generated %d dynamic assessment questions for course %s", len(questions), courseID)
	return &models.DynamicAssessmentResponse{Questions: questions}, nil
}

// QuestionSubset returns a shuffled, size-bounded subset of the stored bank.
func (s *Service) QuestionSubset(courseID string, count int) ([]models.QuestionBankEntry, error) {
	log.Printf("[INFO] Starting question subset selection for course %s (count %d)", courseID, count)

	if _, err := s.courses.GetCourseByID(courseID); err != nil {
		return nil, err
	}

	bank, err := db.LoadBank(s.artifacts, courseID)
	if err != nil {
		if errors.Is(err, models.ErrArtifactNotFound) {
			return nil, models.ErrBankMissing
		}
		return nil, err
	}
	if len(bank) == 0 {
		return nil, models.ErrBankMissing
	}

	if count <= 0 {
		count = defaultSubsetSize
	}

	subset := make([]models.QuestionBankEntry, len(bank))
	copy(subset, bank)
	shuffleEntries(subset)

	if len(subset) > count {
		subset = subset[:count]
	}

	log.Printf("[INFO] Selected %d of %d bank questions for course %s", len(subset), len(bank), courseID)
	return subset, nil
}

// GradeHandwritten scores a handwritten answer sheet image against the given
// questions via the vision model. Follows the reconciliation failure policy:
// unparseable output fails the call, nothing is fabricated.
func (s *Service) GradeHandwritten(ctx context.Context, courseID, mimeType string, image []byte, questions []string) (*models.HandwrittenAssessmentResult, error) {
	log.Printf("[INFO] Starting handwritten grading for course %s (%d questions)", courseID, len(questions))

	if _, err := s.courses.GetCourseByID(courseID); err != nil {
		return nil, err
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: image is required", models.ErrUnsupportedInput)
	}

	listing := "(read the questions from the sheet itself)"
	if len(questions) > 0 {
		var b strings.Builder
		for i, q := range questions {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, q))
		}
		listing = b.String()
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, image),
				llms.TextPart(fmt.Sprintf(handwrittenGradingPrompt, listing)),
			},
		},
	}

	log.Printf("[INFO] Calling vision model for handwritten grading")
	resp, err := s.llm.GenerateContent(ctx, content,
		llms.WithTools(gradeHandwrittenTools),
		llms.WithTemperature(0.2),
		llms.WithToolChoice("required"))
	if err != nil {
		log.Printf("[ERROR] Handwritten grading call failed: %v", err)
		return nil, fmt.Errorf("handwritten grading: %w", models.ErrAnalysisFailed)
	}

	pairs, err := parseGradingPairs(resp)
	if err != nil {
		log.Printf("[ERROR] Handwritten grading output malformed: %v", err)
		return nil, fmt.Errorf("handwritten grading: %w", models.ErrAnalysisFailed)
	}

	qaPairs := make([]models.QAPair, 0, len(pairs))
	score := 0
	for _, pair := range pairs {
		qaPairs = append(qaPairs, models.QAPair{
			Question: pair.Question,
			Answer:   pair.Answer,
			Correct:  pair.Correct,
			Feedback: pair.Feedback,
		})
		if pair.Correct {
			score++
		}
	}

	level := models.ClassifyPerformance(score, len(qaPairs))
	log.Printf("[INFO] Handwritten grading for course %s: %d/%d (%s)", courseID, score, len(qaPairs), level)

	return &models.HandwrittenAssessmentResult{
		Score:   score,
		Total:   len(qaPairs),
		Level:   level,
		QAPairs: qaPairs,
	}, nil
}

func (s *Service) requestQuestions(ctx context.Context, prompt string) ([]models.QuestionBankEntry, error) {
	messageHistory := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := s.llm.GenerateContent(ctx, messageHistory,
		llms.WithTools(publishQuestionsTools),
		llms.WithTemperature(0.7),
		llms.WithToolChoice("required"))
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in question generation response")
	}

	toolCall := resp.Choices[0].ToolCalls[0]
	if toolCall.FunctionCall.Name != "publish_questions" {
		return nil, fmt.Errorf("unexpected function call: %s", toolCall.FunctionCall.Name)
	}

	var params PublishQuestionsParams
	if err := json.Unmarshal([]byte(toolCall.FunctionCall.Arguments), &params); err != nil {
		return nil, fmt.Errorf("failed to parse publish_questions arguments: %w", err)
	}

	if len(params.Questions) == 0 {
		return nil, fmt.Errorf("question generation produced no questions")
	}

	for i := range params.Questions {
		if !params.Questions[i].Difficulty.Valid() {
			params.Questions[i].Difficulty = models.DifficultyEasy
		}
	}

	return params.Questions, nil
}

func parseGradingPairs(resp *llms.ContentResponse) ([]ReconcilePairParams, error) {
	if len(resp.Choices) == 0 || len(resp.Choices[0].ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in grading response")
	}

	toolCall := resp.Choices[0].ToolCalls[0]
	if toolCall.FunctionCall.Name != "report_grading" {
		return nil, fmt.Errorf("unexpected function call: %s", toolCall.FunctionCall.Name)
	}

	var params ReportReconciliationParams
	if err := json.Unmarshal([]byte(toolCall.FunctionCall.Arguments), &params); err != nil {
		return nil, fmt.Errorf("failed to parse report_grading arguments: %w", err)
	}

	if len(params.Pairs) == 0 {
		return nil, fmt.Errorf("grading produced no pairs")
	}

	return params.Pairs, nil
}

func shuffleEntries(entries []models.QuestionBankEntry) {
	for i := range entries {
		j := rand.Intn(i + 1)
		entries[i], entries[j] = entries[j], entries[i]
	}
}
