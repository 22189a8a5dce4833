package services

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
	"github.com/samber/lo"
	"github.com/tmc/langchaingo/llms"
)

const (
	generationMaterialLimit = 12000
	promptPreviewLimit      = 200

	courseContentPrompt = `You are preparing a tutoring course from chapter material. Produce two things:

1. A tutoring system prompt: instructions for a friendly voice tutor that asks one question at a time, evaluates answers against the chapter, and keeps a young learner engaged. The prompt must reference the chapter's actual topics.

2. A question bank: %d open-ended questions covering the chapter, each with a reference answer and a difficulty tag (easy, medium or hard). Order from easy to hard.
%s
Chapter material:
%s

Call publish_course_content with the prompt and questions.`

	simplifiedContentPrompt = `Write a short tutoring system prompt and %d simple quiz questions (with reference answers and easy/medium/hard difficulty tags) for this chapter. Call publish_course_content.

Chapter material:
%s`
)

const defaultBankSize = 10

type PublishCourseContentParams struct {
	SystemPrompt string                     `json:"system_prompt"`
	Questions    []models.QuestionBankEntry `json:"questions"`
}

var courseContentTools = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "publish_course_content",
			Description: "Publish the generated tutoring system prompt and question bank for a course",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"system_prompt": map[string]any{
						"type":        "string",
						"description": "The full tutoring system prompt for this chapter",
					},
					"questions": map[string]any{
						"type":        "array",
						"description": "The ordered question bank for this chapter",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"question": map[string]any{
									"type":        "string",
									"description": "The question text",
								},
								"answer": map[string]any{
									"type":        "string",
									"description": "The reference answer",
								},
								"difficulty": map[string]any{
									"type":        "string",
									"description": "One of easy, medium, hard",
									"enum":        []string{"easy", "medium", "hard"},
								},
							},
							"required": []string{"question", "answer", "difficulty"},
						},
					},
				},
				"required": []string{"system_prompt", "questions"},
			},
		},
	},
}

type CourseService struct {
	courses   db.CourseRepository
	artifacts db.ArtifactRepository
	llm       llms.Model
}

func NewCourseService(courses db.CourseRepository, artifacts db.ArtifactRepository, llm llms.Model) *CourseService {
	return &CourseService{
		courses:   courses,
		artifacts: artifacts,
		llm:       llm,
	}
}

func (s *CourseService) CreateCourse(req *models.CreateCourseRequest) (*models.Course, error) {
	log.Printf("[INFO] Starting course creation")

	if req == nil || strings.TrimSpace(req.Title) == "" {
		log.Printf("[ERROR] Course creation rejected: missing title")
		return nil, fmt.Errorf("%w: title is required", models.ErrUnsupportedInput)
	}

	course := &models.Course{
		ID:       uuid.NewString(),
		Title:    strings.TrimSpace(req.Title),
		Language: models.NormalizeLanguage(req.Language),
	}

	if err := s.courses.CreateCourse(course); err != nil {
		log.Printf("[ERROR] Failed to create course in repository: %v", err)
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	log.Printf("[INFO] Successfully created course %s", course.ID)
	return course, nil
}

func (s *CourseService) GetCourse(id string) (*models.Course, error) {
	return s.courses.GetCourseByID(id)
}

func (s *CourseService) GetAllCourseSummaries() ([]models.CourseSummary, error) {
	log.Printf("[INFO] Starting get all course summaries")

	courses, err := s.courses.GetAllCourses()
	if err != nil {
		log.Printf("[ERROR] Failed to get all courses: %v", err)
		return nil, fmt.Errorf("failed to get courses: %w", err)
	}

	summaries := make([]models.CourseSummary, 0, len(courses))
	for _, course := range courses {
		kinds, err := s.artifacts.ListKinds(course.ID)
		if err != nil {
			log.Printf("[ERROR] Failed to list artifacts for course %s: %v", course.ID, err)
			return nil, fmt.Errorf("failed to list artifacts: %w", err)
		}

		summaries = append(summaries, models.CourseSummary{
			ID:        course.ID,
			Title:     course.Title,
			Language:  course.Language,
			HasPrompt: lo.Contains(kinds, db.KindPrompt),
			HasBank:   lo.Contains(kinds, db.KindBank),
		})
	}

	log.Printf("[INFO] Successfully retrieved %d course summaries", len(summaries))
	return summaries, nil
}

func (s *CourseService) GetPrompt(courseID string) (string, error) {
	log.Printf("[INFO] Starting get prompt for course %s", courseID)

	if _, err := s.courses.GetCourseByID(courseID); err != nil {
		return "", err
	}

	prompt, err := s.artifacts.GetArtifact(courseID, db.KindPrompt)
	if err != nil {
		if errors.Is(err, models.ErrArtifactNotFound) {
			return "", models.ErrPromptMissing
		}
		return "", err
	}

	return prompt, nil
}

// GenerateContent produces the tutoring system prompt and question bank from
// the course material, overwriting any previous artifacts. On empty or
// unparseable model output it retries once with a simplified request before
// failing.
func (s *CourseService) GenerateContent(ctx context.Context, courseID string) (*models.GenerateContentResponse, error) {
	log.Printf("[INFO] Starting content generation for course %s", courseID)

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
	if strings.TrimSpace(material) == "" {
		return nil, models.ErrMaterialMissing
	}

	excerpt := TruncateText(material, generationMaterialLimit)
	prompt := fmt.Sprintf(courseContentPrompt, defaultBankSize, languageInstruction(course.Language), excerpt)

	params, err := s.requestCourseContent(ctx, prompt)
	if err != nil {
		log.Printf("[ERROR] Content generation failed, retrying with simplified request: %v", err)
		simplified := fmt.Sprintf(simplifiedContentPrompt, defaultBankSize, TruncateText(material, generationMaterialLimit/2))
		params, err = s.requestCourseContent(ctx, simplified)
		if err != nil {
			log.Printf("[ERROR] Simplified content generation also failed: %v", err)
			return nil, models.ErrGenerationFailed
		}
	}

	for i := range params.Questions {
		if !params.Questions[i].Difficulty.Valid() {
			params.Questions[i].Difficulty = models.DifficultyEasy
		}
	}

	if err := s.artifacts.PutArtifact(courseID, db.KindPrompt, params.SystemPrompt); err != nil {
		log.Printf("[ERROR] Failed to store prompt artifact: %v", err)
		return nil, fmt.Errorf("failed to store prompt: %w", err)
	}
	if err := db.SaveBank(s.artifacts, courseID, params.Questions); err != nil {
		log.Printf("[ERROR] Failed to store question bank: %v", err)
		return nil, fmt.Errorf("failed to store question bank: %w", err)
	}

	log.Printf("[INFO] Successfully generated content for course %s (%d questions)", courseID, len(params.Questions))
	return &models.GenerateContentResponse{
		PromptPreview: TruncateText(params.SystemPrompt, promptPreviewLimit),
		QuestionCount: len(params.Questions),
	}, nil
}

func (s *CourseService) requestCourseContent(ctx context.Context, prompt string) (*PublishCourseContentParams, error) {
	messageHistory := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	log.Printf("[INFO] Calling LLM for course content generation")
	resp, err := s.llm.GenerateContent(ctx, messageHistory,
		llms.WithTools(courseContentTools),
		llms.WithTemperature(0.7),
		llms.WithToolChoice("required"))
	if err != nil {
		return nil, fmt.Errorf("failed to generate course content: %w", err)
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in course content response")
	}

	toolCall := resp.Choices[0].ToolCalls[0]
	if toolCall.FunctionCall.Name != "publish_course_content" {
		return nil, fmt.Errorf("unexpected function call: %s", toolCall.FunctionCall.Name)
	}

	var params PublishCourseContentParams
	if err := json.Unmarshal([]byte(toolCall.FunctionCall.Arguments), &params); err != nil {
		return nil, fmt.Errorf("failed to parse publish_course_content arguments: %w", err)
	}

	if strings.TrimSpace(params.SystemPrompt) == "" || len(params.Questions) == 0 {
		return nil, fmt.Errorf("course content response was empty")
	}

	return &params, nil
}

// TruncateText bounds a text blob for inclusion in a prompt.
func TruncateText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "\n[... truncated ...]"
}

func languageInstruction(language string) string {
	switch language {
	case models.LanguageEn:
		return "\nWrite the prompt and all questions in English.\n"
	case models.LanguageHindi:
		return "\nWrite the prompt and all questions in Hindi.\n"
	}
	return ""
}
