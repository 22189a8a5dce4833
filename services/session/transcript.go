package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"studyhall/db"
	"studyhall/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/tmc/langchaingo/llms"
)

type ReconcilePairParams struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
}

type ReportReconciliationParams struct {
	Pairs []ReconcilePairParams `json:"pairs"`
}

// AnalyzeTranscript reconciles a raw spoken transcript into scored Q&A pairs
// and replaces the session's history wholesale. If the model output cannot be
// parsed the session is left untouched and ErrAnalysisFailed is returned —
// a fabricated score is worse than no score.
func (s *Service) AnalyzeTranscript(ctx context.Context, sessionID, transcript string) (*models.AnalyzeTranscriptResponse, error) {
	log.Printf("[INFO] Starting transcript analysis for session %s", sessionID)

	session, err := s.sessions.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}

	if _, err := s.courses.GetCourseByID(session.CourseID); err != nil {
		return nil, err
	}

	bank, err := db.LoadBank(s.artifacts, session.CourseID)
	if err != nil {
		bank = []models.QuestionBankEntry{}
	}

	pairs, err := s.reconcileTranscript(ctx, session.CourseID, bank, transcript)
	if err != nil {
		log.Printf("[ERROR] Transcript reconciliation failed for session %s: %v", sessionID, err)
		return nil, fmt.Errorf("transcript reconciliation: %w", models.ErrAnalysisFailed)
	}

	history := make([]models.InteractionRecord, 0, len(pairs))
	qaPairs := make([]models.QAPair, 0, len(pairs))
	score := 0
	for _, pair := range pairs {
		question := pair.Question
		if canonical, ok := matchBankQuestion(question, bank); ok {
			question = canonical
		}

		correct := pair.Correct
		history = append(history, models.InteractionRecord{
			Question: question,
			Answer:   pair.Answer,
			Correct:  &correct,
			Feedback: pair.Feedback,
		})
		qaPairs = append(qaPairs, models.QAPair{
			Question: question,
			Answer:   pair.Answer,
			Correct:  pair.Correct,
			Feedback: pair.Feedback,
		})
		if pair.Correct {
			score++
		}
	}

	level := models.ClassifyPerformance(score, len(history))

	session.History = history
	session.Score = score
	session.Total = len(history)
	session.Level = level.DifficultyFor()

	if err := s.sessions.UpdateSession(session); err != nil {
		log.Printf("[ERROR] Failed to update session %s after reconciliation: %v", sessionID, err)
		return nil, err
	}

	log.Printf("[INFO] Reconciled session %s: %d/%d (%s)", sessionID, score, session.Total, level)
	return &models.AnalyzeTranscriptResponse{
		QAPairs: qaPairs,
		Score:   score,
		Total:   session.Total,
		Level:   level,
	}, nil
}

func (s *Service) reconcileTranscript(ctx context.Context, courseID string, bank []models.QuestionBankEntry, transcript string) ([]ReconcilePairParams, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("empty transcript")
	}

	excerpt := s.materialExcerpt(ctx, courseID, transcript)

	messageHistory := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, reconciliationSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman,
			fmt.Sprintf(reconciliationPrompt, formatBankListing(bank), transcript)+
				"\n\nChapter material:\n"+excerpt),
	}

	log.Printf("[INFO] Calling LLM for transcript reconciliation")
	resp, err := s.llm.GenerateContent(ctx, messageHistory,
		llms.WithTools(reconcileTools),
		llms.WithTemperature(0.2),
		llms.WithToolChoice("required"))
	if err != nil {
		return nil, fmt.Errorf("reconciliation call failed: %w", err)
	}

	if len(resp.Choices) == 0 || len(resp.Choices[0].ToolCalls) == 0 {
		return nil, fmt.Errorf("no tool calls in reconciliation response")
	}

	toolCall := resp.Choices[0].ToolCalls[0]
	if toolCall.FunctionCall.Name != "report_reconciliation" {
		return nil, fmt.Errorf("unexpected function call: %s", toolCall.FunctionCall.Name)
	}

	var params ReportReconciliationParams
	if err := json.Unmarshal([]byte(toolCall.FunctionCall.Arguments), &params); err != nil {
		return nil, fmt.Errorf("failed to parse report_reconciliation arguments: %w", err)
	}

	if len(params.Pairs) == 0 {
		return nil, fmt.Errorf("reconciliation produced no pairs")
	}

	return params.Pairs, nil
}

func formatBankListing(bank []models.QuestionBankEntry) string {
	if len(bank) == 0 {
		return "(no question bank available)"
	}

	var listing strings.Builder
	for i, entry := range bank {
		listing.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, entry.Difficulty, entry.Question))
	}
	return listing.String()
}

// matchBankQuestion canonicalizes a reconstructed question against the bank.
// Interrupted or garbled questions come back as fragments, so a prefix match
// or a small Levenshtein distance against a bank entry counts.
func matchBankQuestion(question string, bank []models.QuestionBankEntry) (string, bool) {
	normalized := normalizeQuestion(question)
	if normalized == "" {
		return "", false
	}

	bestIdx := -1
	bestDistance := -1
	for i, entry := range bank {
		candidate := normalizeQuestion(entry.Question)
		if candidate == "" {
			continue
		}

		if len(normalized) >= 10 &&
			(strings.HasPrefix(candidate, normalized) || strings.HasPrefix(normalized, candidate)) {
			return bank[i].Question, true
		}

		distance := fuzzy.LevenshteinDistance(normalized, candidate)
		if bestDistance < 0 || distance < bestDistance {
			bestDistance = distance
			bestIdx = i
		}
	}

	if bestIdx >= 0 {
		candidate := normalizeQuestion(bank[bestIdx].Question)
		if bestDistance*2 < len(candidate) {
			return bank[bestIdx].Question, true
		}
	}

	return "", false
}

func normalizeQuestion(question string) string {
	question = strings.ToLower(strings.TrimSpace(question))
	var cleaned strings.Builder
	for _, r := range question {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			cleaned.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(cleaned.String()), " ")
}
