package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"studyhall/models"
	"studyhall/services"
	"studyhall/services/session"
	"studyhall/services/studyplan"

	"github.com/gorilla/mux"
)

type SessionHandler struct {
	sessions *session.Service
	courses  *services.CourseService
	plans    *studyplan.Service
}

func NewSessionHandler(sessions *session.Service, courses *services.CourseService, plans *studyplan.Service) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		courses:  courses,
		plans:    plans,
	}
}

func (h *SessionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/sessions", h.StartSession).Methods("POST")
	router.HandleFunc("/sessions/{id}", h.GetSession).Methods("GET")
	router.HandleFunc("/sessions/{id}/answer", h.SubmitAnswer).Methods("POST")
	router.HandleFunc("/sessions/{id}/transcript", h.AnalyzeTranscript).Methods("POST")
	router.HandleFunc("/studyplan/session", h.SessionStudyPlan).Methods("POST")
}

func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received start session request")

	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode start session JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	response, err := h.sessions.StartSession(r.Context(), req.CourseID, req.LearnerName)
	if err != nil {
		log.Printf("[ERROR] Session start failed: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, response)
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received get session request for %s", sessionID)

	view, err := h.sessions.GetSessionView(sessionID)
	if err != nil {
		log.Printf("[ERROR] Session fetch failed for %s: %v", sessionID, err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, view)
}

func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received answer submission for session %s", sessionID)

	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode answer JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	response, err := h.sessions.SubmitAnswer(r.Context(), sessionID, &req)
	if err != nil {
		log.Printf("[ERROR] Answer submission failed for session %s: %v", sessionID, err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, response)
}

func (h *SessionHandler) AnalyzeTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received transcript for session %s", sessionID)

	var req models.AnalyzeTranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode transcript JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	response, err := h.sessions.AnalyzeTranscript(r.Context(), sessionID, req.Transcript)
	if err != nil {
		log.Printf("[ERROR] Transcript analysis failed for session %s: %v", sessionID, err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, response)
}

// SessionStudyPlan generates a remediation plan from a finished session's
// recorded history.
func (h *SessionHandler) SessionStudyPlan(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received session study plan request")

	var req models.SessionStudyPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode study plan JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	view, err := h.sessions.GetSessionView(req.SessionID)
	if err != nil {
		log.Printf("[ERROR] Session fetch failed for study plan: %v", err)
		writeServiceError(w, err)
		return
	}

	course, err := h.courses.GetCourse(view.Session.CourseID)
	if err != nil {
		log.Printf("[ERROR] Course fetch failed for study plan: %v", err)
		writeServiceError(w, err)
		return
	}

	summary := summaryFromSession(course, view.Session)
	plan, err := h.plans.GeneratePlan(r.Context(), summary)
	if err != nil {
		log.Printf("[ERROR] Study plan generation failed for session %s: %v", req.SessionID, err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, models.StudyPlanResponse{Plan: plan})
}

func summaryFromSession(course *models.Course, s *models.Session) *models.PerformanceSummary {
	qaPairs := make([]models.QAPair, 0, len(s.History))
	for _, record := range s.History {
		correct := record.Correct != nil && *record.Correct
		qaPairs = append(qaPairs, models.QAPair{
			Question: record.Question,
			Answer:   record.Answer,
			Correct:  correct,
			Feedback: record.Feedback,
		})
	}

	percentage := 0.0
	if s.Total > 0 {
		percentage = float64(s.Score) / float64(s.Total) * 100
	}

	return &models.PerformanceSummary{
		CourseTitle: course.Title,
		Language:    course.Language,
		LearnerName: s.LearnerName,
		Score:       s.Score,
		Total:       s.Total,
		Percentage:  percentage,
		Level:       models.ClassifyPerformance(s.Score, s.Total),
		QAPairs:     qaPairs,
	}
}
