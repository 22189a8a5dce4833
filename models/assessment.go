package models

type DynamicAssessmentResponse struct {
	Questions []QuestionBankEntry `json:"questions"`
}

type AssessmentQuestionsRequest struct {
	Count int `json:"count"`
}

type HandwrittenAssessmentResult struct {
	Score   int              `json:"score"`
	Total   int              `json:"total"`
	Level   PerformanceLevel `json:"level"`
	QAPairs []QAPair         `json:"qa_pairs"`
}

// PerformanceSummary is the stable, language-tagged payload handed to the
// study plan generator.
type PerformanceSummary struct {
	CourseTitle string           `json:"course_title"`
	Language    string           `json:"language"`
	LearnerName string           `json:"learner_name,omitempty"`
	Score       int              `json:"score"`
	Total       int              `json:"total"`
	Percentage  float64          `json:"percentage"`
	Level       PerformanceLevel `json:"level"`
	QAPairs     []QAPair         `json:"qa_pairs"`
}

type SessionStudyPlanRequest struct {
	SessionID string `json:"session_id"`
}

type HandwrittenStudyPlanRequest struct {
	CourseID string           `json:"course_id"`
	Score    int              `json:"score"`
	Total    int              `json:"total"`
	Level    PerformanceLevel `json:"level"`
	QAPairs  []QAPair         `json:"qa_pairs"`
}

type StudyPlanResponse struct {
	Plan string `json:"plan"`
}

type VoiceTokenRequest struct {
	CourseID    string `json:"course_id"`
	LearnerName string `json:"learner_name"`
	Language    string `json:"language"`
}

type GenerateContentResponse struct {
	PromptPreview string `json:"prompt_preview"`
	QuestionCount int    `json:"question_count"`
}

type UploadMaterialResponse struct {
	Characters int `json:"characters"`
}

type PaperResponse struct {
	HTML    string `json:"html"`
	PDFPath string `json:"pdf_path,omitempty"`
}
