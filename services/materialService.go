package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"studyhall/db"
	"studyhall/models"
	"studyhall/services/docindex"

	"github.com/tmc/langchaingo/llms"
)

const extractTextPrompt = `Extract all readable text from this document. Return only the extracted text, preserving paragraph structure. Do not add commentary.`

// MaterialService ingests uploaded chapter material. Plain text is stored
// directly; PDFs and images pass through the vision model for extraction.
type MaterialService struct {
	courses   db.CourseRepository
	artifacts db.ArtifactRepository
	llm       llms.Model
	index     *docindex.Service
}

func NewMaterialService(courses db.CourseRepository, artifacts db.ArtifactRepository, llm llms.Model, index *docindex.Service) *MaterialService {
	return &MaterialService{
		courses:   courses,
		artifacts: artifacts,
		llm:       llm,
		index:     index,
	}
}

func (s *MaterialService) UploadText(ctx context.Context, courseID, text string) (int, error) {
	log.Printf("[INFO] Starting text material upload for course %s", courseID)

	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: no content provided", models.ErrUnsupportedInput)
	}

	return s.storeMaterial(ctx, courseID, text)
}

func (s *MaterialService) UploadFile(ctx context.Context, courseID, filename, mimeType string, data []byte) (int, error) {
	log.Printf("[INFO] Starting file material upload for course %s (%s, %d bytes)", courseID, mimeType, len(data))

	if len(data) == 0 {
		return 0, fmt.Errorf("%w: no content provided", models.ErrUnsupportedInput)
	}

	var text string
	switch {
	case strings.HasPrefix(mimeType, "text/"):
		text = string(data)
	case mimeType == "application/pdf", strings.HasPrefix(mimeType, "image/"):
		extracted, err := s.extractText(ctx, mimeType, data)
		if err != nil {
			log.Printf("[ERROR] Text extraction failed for course %s: %v", courseID, err)
			return 0, fmt.Errorf("failed to extract text from %s: %w", filename, err)
		}
		text = extracted
	default:
		return 0, fmt.Errorf("%w: unsupported content type %s", models.ErrUnsupportedInput, mimeType)
	}

	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: no readable text in upload", models.ErrUnsupportedInput)
	}

	return s.storeMaterial(ctx, courseID, text)
}

func (s *MaterialService) storeMaterial(ctx context.Context, courseID, text string) (int, error) {
	if _, err := s.courses.GetCourseByID(courseID); err != nil {
		return 0, err
	}

	if err := s.artifacts.PutArtifact(courseID, db.KindMaterial, text); err != nil {
		log.Printf("[ERROR] Failed to store material for course %s: %v", courseID, err)
		return 0, fmt.Errorf("failed to store material: %w", err)
	}

	if s.index != nil {
		// Indexing failure degrades excerpt quality but never fails the upload.
		if err := s.index.IndexMaterial(ctx, courseID, text); err != nil {
			log.Printf("[ERROR] Failed to index material for course %s: %v", courseID, err)
		}
	}

	log.Printf("[INFO] Successfully stored %d characters of material for course %s", len(text), courseID)
	return len(text), nil
}

func (s *MaterialService) extractText(ctx context.Context, mimeType string, data []byte) (string, error) {
	log.Printf("[INFO] Calling vision model for text extraction (%s)", mimeType)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, data),
				llms.TextPart(extractTextPrompt),
			},
		},
	}

	resp, err := s.llm.GenerateContent(ctx, content, llms.WithTemperature(0))
	if err != nil {
		return "", fmt.Errorf("vision extraction call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision extraction returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Content), nil
}
