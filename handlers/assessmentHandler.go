package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"studyhall/models"
	"studyhall/services"
	"studyhall/services/session"
	"studyhall/services/studyplan"

	"github.com/gorilla/mux"
)

type AssessmentHandler struct {
	sessions *session.Service
	courses  *services.CourseService
	plans    *studyplan.Service
}

func NewAssessmentHandler(sessions *session.Service, courses *services.CourseService, plans *studyplan.Service) *AssessmentHandler {
	return &AssessmentHandler{
		sessions: sessions,
		courses:  courses,
		plans:    plans,
	}
}

func (h *AssessmentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/courses/{id}/assessment", h.StartDynamicAssessment).Methods("POST")
	router.HandleFunc("/courses/{id}/assessment/questions", h.QuestionSubset).Methods("POST")
	router.HandleFunc("/courses/{id}/assessment/handwritten", h.GradeHandwritten).Methods("POST")
	router.HandleFunc("/studyplan/handwritten", h.HandwrittenStudyPlan).Methods("POST")
}

func (h *AssessmentHandler) StartDynamicAssessment(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received dynamic assessment request for course %s", courseID)

	response, err := h.sessions.StartDynamicAssessment(r.Context(), courseID)
	if err != nil {
		log.Printf("[ERROR] Dynamic assessment failed for course %s: %v", courseID, err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, response)
}

func (h *AssessmentHandler) QuestionSubset(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received question subset request for course %s", courseID)

	var req models.AssessmentQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode question subset JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	questions, err := h.sessions.QuestionSubset(courseID, req.Count)
	if err != nil {
		log.Printf("[ERROR] Question subset selection failed for course %s: %v", courseID, err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, models.DynamicAssessmentResponse{Questions: questions})
}

// GradeHandwritten accepts a multipart form with an "image" field and an
// optional repeated "question" field listing the questions on the sheet.
func (h *AssessmentHandler) GradeHandwritten(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received handwritten grading request for course %s", courseID)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Printf("[ERROR] Failed to parse handwritten grading form: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		log.Printf("[ERROR] Handwritten grading request missing image: %v", err)
		writeServiceError(w, errors.Join(models.ErrUnsupportedInput, err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[ERROR] Failed to read handwritten image: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	questions := r.MultipartForm.Value["question"]
	mimeType := header.Header.Get("Content-Type")

	result, err := h.sessions.GradeHandwritten(r.Context(), courseID, mimeType, data, questions)
	if err != nil {
		log.Printf("[ERROR] Handwritten grading failed for course %s: %v", courseID, err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}

// HandwrittenStudyPlan generates a remediation plan from already-graded
// handwritten results supplied by the client.
func (h *AssessmentHandler) HandwrittenStudyPlan(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received handwritten study plan request")

	var req models.HandwrittenStudyPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode handwritten study plan JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	course, err := h.courses.GetCourse(req.CourseID)
	if err != nil {
		log.Printf("[ERROR] Course fetch failed for handwritten study plan: %v", err)
		writeServiceError(w, err)
		return
	}

	level := req.Level
	if level == "" {
		level = models.ClassifyPerformance(req.Score, req.Total)
	}

	percentage := 0.0
	if req.Total > 0 {
		percentage = float64(req.Score) / float64(req.Total) * 100
	}

	summary := &models.PerformanceSummary{
		CourseTitle: course.Title,
		Language:    course.Language,
		Score:       req.Score,
		Total:       req.Total,
		Percentage:  percentage,
		Level:       level,
		QAPairs:     req.QAPairs,
	}

	plan, err := h.plans.GeneratePlan(r.Context(), summary)
	if err != nil {
		log.Printf("[ERROR] Handwritten study plan generation failed: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, models.StudyPlanResponse{Plan: plan})
}
