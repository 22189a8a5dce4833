package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"studyhall/db"
	"studyhall/models"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

type EvaluateAnswerParams struct {
	Correct        bool   `json:"correct"`
	Feedback       string `json:"feedback"`
	NextDifficulty string `json:"next_difficulty"`
	NextQuestion   string `json:"next_question"`
}

// evaluation is the validated result applied to a session. It is built either
// from a parsed evaluate_answer call or from the safe fallback; call sites
// never see a parse failure.
type evaluation struct {
	Correct      bool
	Feedback     string
	NextLevel    models.Difficulty
	NextQuestion string
}

// StartSession creates a new session at easy level and asks the opening
// question. The course must exist and have a generated tutor prompt; no
// session is created otherwise.
func (s *Service) StartSession(ctx context.Context, courseID, learnerName string) (*models.StartSessionResponse, error) {
	log.Printf("[INFO] Starting session for course %s (learner: %s)", courseID, learnerName)

	course, err := s.courses.GetCourseByID(courseID)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := s.artifacts.GetArtifact(courseID, db.KindPrompt)
	if err != nil {
		if errors.Is(err, models.ErrArtifactNotFound) {
			return nil, models.ErrPromptMissing
		}
		return nil, err
	}

	question := s.openingQuestion(ctx, systemPrompt, course, learnerName)

	session := &models.Session{
		ID:          uuid.NewString(),
		CourseID:    courseID,
		LearnerName: strings.TrimSpace(learnerName),
		Level:       models.DifficultyEasy,
		History:     []models.InteractionRecord{},
		Score:       0,
		Total:       0,
	}

	if err := s.sessions.CreateSession(session); err != nil {
		log.Printf("[ERROR] Failed to create session: %v", err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Printf("[INFO] Successfully started session %s", session.ID)
	return &models.StartSessionResponse{
		SessionID: session.ID,
		Question:  question,
	}, nil
}

// SubmitAnswer runs one evaluate-and-advance step. Model failures of any kind
// degrade to the safe default so the session always moves forward; only a
// missing session or course surfaces as an error.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID string, req *models.SubmitAnswerRequest) (*models.SubmitAnswerResponse, error) {
	log.Printf("[INFO] Starting answer submission for session %s", sessionID)

	session, err := s.sessions.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.courses.GetCourseByID(session.CourseID); err != nil {
		return nil, err
	}

	systemPrompt, err := s.artifacts.GetArtifact(session.CourseID, db.KindPrompt)
	if err != nil {
		systemPrompt = ""
	}

	eval := s.evaluateAnswer(ctx, systemPrompt, session, req.Question, req.Answer)

	correct := eval.Correct
	session.History = append(session.History, models.InteractionRecord{
		Question: req.Question,
		Answer:   req.Answer,
		Correct:  &correct,
		Feedback: eval.Feedback,
	})
	session.Total = len(session.History)
	if eval.Correct {
		session.Score++
	}
	session.Level = eval.NextLevel

	if err := s.sessions.UpdateSession(session); err != nil {
		log.Printf("[ERROR] Failed to update session %s: %v", sessionID, err)
		return nil, err
	}

	log.Printf("[INFO] Session %s advanced to %d/%d at level %s", sessionID, session.Score, session.Total, session.Level)
	return &models.SubmitAnswerResponse{
		Correct:      eval.Correct,
		Feedback:     eval.Feedback,
		NextQuestion: eval.NextQuestion,
		Score:        session.Score,
		Total:        session.Total,
		Level:        session.Level,
	}, nil
}

func (s *Service) openingQuestion(ctx context.Context, systemPrompt string, course *models.Course, learnerName string) string {
	excerpt := s.materialExcerpt(ctx, course.ID, course.Title)

	messageHistory := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(openingQuestionPrompt, learnerName, excerpt)),
	}

	log.Printf("[INFO] Calling LLM for opening question")
	resp, err := s.llm.GenerateContent(ctx, messageHistory, llms.WithTemperature(0.7))
	if err != nil {
		log.Printf("[ERROR] Opening question generation failed, using fallback: %v", err)
		return s.fallbackOpeningQuestion(course.ID)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		log.Printf("[ERROR] Opening question generation returned empty output, using fallback")
		return s.fallbackOpeningQuestion(course.ID)
	}

	return strings.TrimSpace(resp.Choices[0].Content)
}

func (s *Service) fallbackOpeningQuestion(courseID string) string {
	bank, err := db.LoadBank(s.artifacts, courseID)
	if err == nil {
		for _, entry := range bank {
			if entry.Difficulty == models.DifficultyEasy && strings.TrimSpace(entry.Question) != "" {
				return entry.Question
			}
		}
	}
	return fallbackOpening
}

// evaluateAnswer asks the model for a forced evaluate_answer call and
// normalizes the result. Transport errors, missing tool calls, and malformed
// arguments all collapse into the safe default.
func (s *Service) evaluateAnswer(ctx context.Context, systemPrompt string, session *models.Session, question, answer string) *evaluation {
	excerpt := s.materialExcerpt(ctx, session.CourseID, question)

	messageHistory := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
	}
	for _, record := range session.History {
		messageHistory = append(messageHistory,
			llms.TextParts(llms.ChatMessageTypeAI, record.Question),
			llms.TextParts(llms.ChatMessageTypeHuman, record.Answer))
	}
	messageHistory = append(messageHistory, llms.TextParts(llms.ChatMessageTypeHuman,
		fmt.Sprintf(evaluationPrompt, question, answer, excerpt)))

	log.Printf("[INFO] Calling LLM for answer evaluation")
	resp, err := s.llm.GenerateContent(ctx, messageHistory,
		llms.WithTools(evaluateAnswerTools),
		llms.WithTemperature(0.3),
		llms.WithToolChoice("required"))
	if err != nil {
		log.Printf("[ERROR] Answer evaluation call failed, using fallback: %v", err)
		return fallbackEvaluation(session.Level)
	}

	params, err := parseEvaluation(resp)
	if err != nil {
		log.Printf("[ERROR] Answer evaluation output malformed, using fallback: %v", err)
		return fallbackEvaluation(session.Level)
	}

	return normalizeEvaluation(params, session.Level)
}

func parseEvaluation(resp *llms.ContentResponse) (*EvaluateAnswerParams, error) {
	if len(resp.Choices) == 0 || len(resp.Choices[0].ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in evaluation response")
	}

	toolCall := resp.Choices[0].ToolCalls[0]
	if toolCall.FunctionCall.Name != "evaluate_answer" {
		return nil, fmt.Errorf("unexpected function call: %s", toolCall.FunctionCall.Name)
	}

	var params EvaluateAnswerParams
	if err := json.Unmarshal([]byte(toolCall.FunctionCall.Arguments), &params); err != nil {
		return nil, fmt.Errorf("failed to parse evaluate_answer arguments: %w", err)
	}

	return &params, nil
}

// normalizeEvaluation keeps every field of a parsed evaluation inside its
// contract: unknown difficulty keeps the current level, empty text fields get
// the generic fallbacks.
func normalizeEvaluation(params *EvaluateAnswerParams, currentLevel models.Difficulty) *evaluation {
	eval := &evaluation{
		Correct:      params.Correct,
		Feedback:     strings.TrimSpace(params.Feedback),
		NextLevel:    models.Difficulty(params.NextDifficulty),
		NextQuestion: strings.TrimSpace(params.NextQuestion),
	}

	if !eval.NextLevel.Valid() {
		eval.NextLevel = currentLevel
	}
	if eval.Feedback == "" {
		eval.Feedback = fallbackFeedback
	}
	if eval.NextQuestion == "" {
		eval.NextQuestion = fallbackNextQuestion
	}

	return eval
}

func fallbackEvaluation(currentLevel models.Difficulty) *evaluation {
	level := currentLevel
	if !level.Valid() {
		level = models.DifficultyEasy
	}
	return &evaluation{
		Correct:      false,
		Feedback:     fallbackFeedback,
		NextLevel:    level,
		NextQuestion: fallbackNextQuestion,
	}
}
