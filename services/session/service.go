package session

import (
	"context"
	"log"
	"strings"

	"studyhall/db"
	"studyhall/models"
	"studyhall/services"
	"studyhall/services/docindex"

	"github.com/tmc/langchaingo/llms"
)

const (
	materialExcerptLimit = 6000
	excerptChunkLimit    = 5
)

// Service owns the adaptive question/answer loop for learner sessions and the
// assessment flows built on top of it. Sessions are stateless between
// requests; every call rehydrates from the store, mutates, and writes back.
type Service struct {
	courses   db.CourseRepository
	sessions  db.SessionRepository
	artifacts db.ArtifactRepository
	llm       llms.Model
	index     *docindex.Service
}

func NewService(courses db.CourseRepository, sessions db.SessionRepository, artifacts db.ArtifactRepository, llm llms.Model, index *docindex.Service) *Service {
	return &Service{
		courses:   courses,
		sessions:  sessions,
		artifacts: artifacts,
		llm:       llm,
		index:     index,
	}
}

// GetSessionView returns the full session state plus the owning course's
// question bank.
func (s *Service) GetSessionView(sessionID string) (*models.SessionView, error) {
	log.Printf("[INFO] Starting get session view for %s", sessionID)

	session, err := s.sessions.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}

	bank, err := db.LoadBank(s.artifacts, session.CourseID)
	if err != nil {
		bank = []models.QuestionBankEntry{}
	}

	return &models.SessionView{
		Session: session,
		Bank:    bank,
	}, nil
}

// materialExcerpt returns a bounded slice of course material for a prompt,
// preferring indexed chunks relevant to the focus text when the chunk index
// is configured.
func (s *Service) materialExcerpt(ctx context.Context, courseID, focus string) string {
	if s.index != nil {
		chunks, err := s.index.QueryChunks(ctx, courseID, focus, excerptChunkLimit)
		if err != nil {
			log.Printf("[ERROR] Chunk query failed for course %s, falling back to raw material: %v", courseID, err)
		} else if len(chunks) > 0 {
			return strings.Join(chunks, "\n\n")
		}
	}

	material, err := s.artifacts.GetArtifact(courseID, db.KindMaterial)
	if err != nil {
		return ""
	}

	return services.TruncateText(material, materialExcerptLimit)
}
