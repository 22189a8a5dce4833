package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"studyhall/db"
	"studyhall/models"
)

const voiceClientTimeout = 120 * time.Second

const maxBaselineQuestions = 5

const voiceInstructionsTemplate = `%s

You are running a spoken tutoring session. Speak slowly and clearly, ask one question at a time, and wait for the learner to finish before responding. Start with the warm-up questions below before improvising your own.

Warm-up questions:
%s`

// VoiceService mints ephemeral realtime session tokens so browser clients can
// open a voice connection directly against the realtime API without ever
// seeing the server's key.
type VoiceService struct {
	client    *http.Client
	courses   db.CourseRepository
	artifacts db.ArtifactRepository
	baseURL   string
	apiKey    string
	model     string
}

func NewVoiceService(courses db.CourseRepository, artifacts db.ArtifactRepository, baseURL, apiKey, model string) *VoiceService {
	return &VoiceService{
		client:    &http.Client{Timeout: voiceClientTimeout},
		courses:   courses,
		artifacts: artifacts,
		baseURL:   baseURL,
		apiKey:    apiKey,
		model:     model,
	}
}

// MintedToken carries the upstream response untouched plus the number of
// warm-up questions seeded into the voice instructions.
type MintedToken struct {
	StatusCode        int
	Body              []byte
	BaselineQuestions int
}

// MintToken requests an ephemeral session from the realtime API, seeded with
// the course's tutor prompt as voice instructions. The upstream status code
// and body are passed through untouched.
func (s *VoiceService) MintToken(ctx context.Context, courseID string) (*MintedToken, error) {
	log.Printf("[INFO] Starting voice token mint for course %s", courseID)

	if _, err := s.courses.GetCourseByID(courseID); err != nil {
		return nil, err
	}

	instructions, baselineCount := s.buildInstructions(courseID)

	payload, err := json.Marshal(map[string]string{
		"model":        s.model,
		"instructions": instructions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/realtime/sessions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[ERROR] Voice token request failed: %v", err)
		return nil, fmt.Errorf("voice token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	log.Printf("[INFO] Voice token mint for course %s returned status %d (%d baseline questions)",
		courseID, resp.StatusCode, baselineCount)
	return &MintedToken{
		StatusCode:        resp.StatusCode,
		Body:              body,
		BaselineQuestions: baselineCount,
	}, nil
}

// buildInstructions combines the tutor prompt with a few easy bank questions
// as a spoken warm-up. A course without generated content still gets a token,
// just with generic instructions.
func (s *VoiceService) buildInstructions(courseID string) (string, int) {
	systemPrompt, err := s.artifacts.GetArtifact(courseID, db.KindPrompt)
	if err != nil {
		if !errors.Is(err, models.ErrArtifactNotFound) {
			log.Printf("[ERROR] Failed to load prompt for voice instructions: %v", err)
		}
		systemPrompt = "You are a friendly tutor helping a young learner review a school chapter."
	}

	baseline := "(none, improvise from the conversation)"
	count := 0
	if bank, err := db.LoadBank(s.artifacts, courseID); err == nil {
		var questions []string
		for _, entry := range bank {
			if entry.Difficulty != models.DifficultyEasy {
				continue
			}
			questions = append(questions, entry.Question)
			if len(questions) == maxBaselineQuestions {
				break
			}
		}
		if len(questions) > 0 {
			listing := ""
			for i, q := range questions {
				listing += fmt.Sprintf("%d. %s\n", i+1, q)
			}
			baseline = listing
			count = len(questions)
		}
	}

	return fmt.Sprintf(voiceInstructionsTemplate, systemPrompt, baseline), count
}
