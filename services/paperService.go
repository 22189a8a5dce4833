package services

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"studyhall/db"
	"studyhall/models"
)

const paperTemplateText = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} - Question Paper</title>
<style>
body { font-family: Georgia, serif; max-width: 46em; margin: 2em auto; line-height: 1.6; }
h1 { font-size: 1.4em; border-bottom: 2px solid #333; padding-bottom: 0.3em; }
.meta { color: #555; font-size: 0.9em; margin-bottom: 1.5em; }
ol li { margin-bottom: 2.5em; }
.difficulty { color: #777; font-size: 0.8em; text-transform: uppercase; letter-spacing: 0.05em; }
.answerspace { border-bottom: 1px dotted #999; height: 4em; margin-top: 0.8em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Question paper &middot; {{.Date}} &middot; {{len .Questions}} questions</p>
<ol>
{{range .Questions}}<li>
<span class="difficulty">{{.Difficulty}}</span><br>
{{.Question}}
<div class="answerspace"></div>
</li>
{{end}}</ol>
</body>
</html>
`

var paperTemplate = template.Must(template.New("paper").Parse(paperTemplateText))

type paperData struct {
	Title     string
	Date      string
	Questions []models.QuestionBankEntry
}

// PaperService renders a printable question paper from the course's question
// bank, generating the bank first if the course doesn't have one yet.
type PaperService struct {
	courses      db.CourseRepository
	artifacts    db.ArtifactRepository
	content      *CourseService
	pdfRenderCmd string
	dataDir      string
}

func NewPaperService(courses db.CourseRepository, artifacts db.ArtifactRepository, content *CourseService, pdfRenderCmd, dataDir string) *PaperService {
	return &PaperService{
		courses:      courses,
		artifacts:    artifacts,
		content:      content,
		pdfRenderCmd: pdfRenderCmd,
		dataDir:      dataDir,
	}
}

// GeneratePaper renders the HTML paper and, when a render command is
// configured, a PDF alongside it. PDF rendering failures are logged and
// skipped; the HTML result stands on its own.
func (s *PaperService) GeneratePaper(ctx context.Context, courseID string) (*models.PaperResponse, error) {
	log.Printf("[INFO] Starting paper generation for course %s", courseID)

	course, err := s.courses.GetCourseByID(courseID)
	if err != nil {
		return nil, err
	}

	bank, err := s.loadOrGenerateBank(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var html strings.Builder
	data := paperData{
		Title:     course.Title,
		Date:      time.Now().Format("2 January 2006"),
		Questions: bank,
	}
	if err := paperTemplate.Execute(&html, data); err != nil {
		log.Printf("[ERROR] Failed to render paper template: %v", err)
		return nil, fmt.Errorf("failed to render paper: %w", err)
	}

	response := &models.PaperResponse{HTML: html.String()}

	if s.pdfRenderCmd != "" {
		if pdfPath, err := s.renderPDF(ctx, courseID, html.String()); err != nil {
			log.Printf("[ERROR] PDF rendering failed, returning HTML only: %v", err)
		} else {
			response.PDFPath = pdfPath
		}
	}

	log.Printf("[INFO] Successfully generated paper for course %s (%d questions)", courseID, len(bank))
	return response, nil
}

// loadOrGenerateBank returns the stored bank, triggering a full content
// generation pass when the course has none yet.
func (s *PaperService) loadOrGenerateBank(ctx context.Context, courseID string) ([]models.QuestionBankEntry, error) {
	bank, err := db.LoadBank(s.artifacts, courseID)
	if err == nil && len(bank) > 0 {
		return bank, nil
	}
	if err != nil && !errors.Is(err, models.ErrArtifactNotFound) {
		return nil, err
	}

	log.Printf("[INFO] No question bank for course %s, generating content first", courseID)
	if _, err := s.content.GenerateContent(ctx, courseID); err != nil {
		return nil, err
	}

	bank, err = db.LoadBank(s.artifacts, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load generated bank: %w", err)
	}
	if len(bank) == 0 {
		return nil, models.ErrBankMissing
	}
	return bank, nil
}

// renderPDF writes the HTML to disk and invokes the configured render command
// as `cmd <html> <pdf>`.
func (s *PaperService) renderPDF(ctx context.Context, courseID, html string) (string, error) {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data dir: %w", err)
	}

	htmlPath := filepath.Join(s.dataDir, fmt.Sprintf("paper-%s.html", courseID))
	pdfPath := filepath.Join(s.dataDir, fmt.Sprintf("paper-%s.pdf", courseID))

	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("failed to write paper html: %w", err)
	}

	cmd := exec.CommandContext(ctx, s.pdfRenderCmd, htmlPath, pdfPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("render command failed: %w (%s)", err, strings.TrimSpace(string(output)))
	}

	return pdfPath, nil
}
