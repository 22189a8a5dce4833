package studyplan

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"studyhall/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/invopop/jsonschema"
)

const studyPlanPrompt = `A learner just finished a tutoring assessment. Write a short, encouraging study plan for them: what they already understand, which topics to revisit, and two or three concrete practice activities. Address the learner directly.%s

Performance summary:
%s

Call write_study_plan with the finished plan.`

const simplifiedStudyPlanPrompt = `Write a short study plan for a learner who scored %d out of %d (%s level) on a chapter assessment. Suggest what to review and how to practice.`

type WriteStudyPlanInput struct {
	Plan       string   `json:"plan" jsonschema:"required,description=The complete study plan text addressed to the learner"`
	FocusAreas []string `json:"focus_areas,omitempty" jsonschema:"description=Topics the learner should prioritize"`
}

// Service generates remediation study plans from a performance summary. It is
// a pure read-then-generate collaborator: no state is mutated.
type Service struct {
	client *anthropic.Client
}

func NewService(anthropicAPIKey string) (*Service, error) {
	client := anthropic.NewClient(option.WithAPIKey(anthropicAPIKey))
	return &Service{client: &client}, nil
}

// GeneratePlan produces the remediation text. On empty output it retries once
// with a simplified request, then fails.
func (s *Service) GeneratePlan(ctx context.Context, summary *models.PerformanceSummary) (string, error) {
	log.Printf("[INFO] Starting study plan generation (%d/%d, %s)", summary.Score, summary.Total, summary.Level)

	plan, err := s.requestPlan(ctx, fmt.Sprintf(studyPlanPrompt,
		languageInstruction(summary.Language), formatSummary(summary)), true)
	if err != nil || plan == "" {
		log.Printf("[ERROR] Study plan generation failed, retrying simplified: %v", err)
		plan, err = s.requestPlan(ctx, fmt.Sprintf(simplifiedStudyPlanPrompt,
			summary.Score, summary.Total, summary.Level), false)
		if err != nil || plan == "" {
			log.Printf("[ERROR] Simplified study plan generation also failed: %v", err)
			return "", models.ErrGenerationFailed
		}
	}

	log.Printf("[INFO] Successfully generated study plan (%d chars)", len(plan))
	return plan, nil
}

func (s *Service) requestPlan(ctx context.Context, prompt string, withTool bool) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.ModelClaude4Sonnet20250514,
		MaxTokens: 2048,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	if withTool {
		params.Tools = []anthropic.ToolUnionParam{
			{
				OfTool: &anthropic.ToolParam{
					Name:        "write_study_plan",
					Description: anthropic.String("Deliver the finished study plan for the learner"),
					InputSchema: writeStudyPlanSchema(),
				},
			},
		}
	}

	log.Printf("[INFO] Calling Anthropic API for study plan")
	response, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(block.Text)
		case anthropic.ToolUseBlock:
			if block.Name != "write_study_plan" {
				continue
			}
			inputJSON, _ := json.Marshal(block.Input)
			var input WriteStudyPlanInput
			if err := json.Unmarshal(inputJSON, &input); err != nil {
				log.Printf("[ERROR] Failed to parse write_study_plan input: %v", err)
				continue
			}
			if strings.TrimSpace(input.Plan) != "" {
				return strings.TrimSpace(input.Plan), nil
			}
		}
	}

	return strings.TrimSpace(text.String()), nil
}

func writeStudyPlanSchema() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(WriteStudyPlanInput{})

	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
	}
}

func formatSummary(summary *models.PerformanceSummary) string {
	var b strings.Builder
	if summary.LearnerName != "" {
		b.WriteString(fmt.Sprintf("Learner: %s\n", summary.LearnerName))
	}
	b.WriteString(fmt.Sprintf("Chapter: %s\n", summary.CourseTitle))
	b.WriteString(fmt.Sprintf("Score: %d/%d (%.0f%%)\n", summary.Score, summary.Total, summary.Percentage))
	b.WriteString(fmt.Sprintf("Level: %s\n\n", summary.Level))
	b.WriteString("Questions and answers:\n")
	for i, pair := range summary.QAPairs {
		mark := "incorrect"
		if pair.Correct {
			mark = "correct"
		}
		b.WriteString(fmt.Sprintf("%d. Q: %s\n   A: %s (%s)\n", i+1, pair.Question, pair.Answer, mark))
	}
	return b.String()
}

func languageInstruction(language string) string {
	switch language {
	case models.LanguageEn:
		return " Write the plan in English."
	case models.LanguageHindi:
		return " Write the plan in Hindi."
	}
	return ""
}
