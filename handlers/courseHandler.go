package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"studyhall/models"
	"studyhall/services"

	"github.com/gorilla/mux"
)

const maxUploadBytes = 20 << 20

type CourseHandler struct {
	courses  *services.CourseService
	material *services.MaterialService
}

func NewCourseHandler(courses *services.CourseService, material *services.MaterialService) *CourseHandler {
	return &CourseHandler{
		courses:  courses,
		material: material,
	}
}

func (h *CourseHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/courses", h.CreateCourse).Methods("POST")
	router.HandleFunc("/courses", h.ListCourses).Methods("GET")
	router.HandleFunc("/courses/{id}/prompt", h.GetPrompt).Methods("GET")
	router.HandleFunc("/courses/{id}/material", h.UploadMaterial).Methods("POST")
	router.HandleFunc("/courses/{id}/generate", h.GenerateContent).Methods("POST")
}

func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received create course request")

	var req models.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode create course JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	course, err := h.courses.CreateCourse(&req)
	if err != nil {
		log.Printf("[ERROR] Course creation failed: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, course)
}

func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received list courses request")

	summaries, err := h.courses.GetAllCourseSummaries()
	if err != nil {
		log.Printf("[ERROR] Listing courses failed: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, summaries)
}

func (h *CourseHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received get prompt request for course %s", courseID)

	prompt, err := h.courses.GetPrompt(courseID)
	if err != nil {
		log.Printf("[ERROR] Prompt fetch failed for course %s: %v", courseID, err)
		// A course that exists but has no generated prompt yet reads as a
		// missing resource on this endpoint.
		if errors.Is(err, models.ErrPromptMissing) {
			writeErrorResponse(w, http.StatusNotFound, err.Error())
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"prompt": prompt})
}

// UploadMaterial accepts either a multipart form with a "file" field or a
// JSON body with a "text" field.
func (h *CourseHandler) UploadMaterial(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received material upload for course %s", courseID)

	var characters int
	var err error

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		characters, err = h.uploadFromForm(r, courseID)
	} else {
		var req struct {
			Text string `json:"text"`
		}
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			log.Printf("[ERROR] Failed to decode material upload JSON: %v", decodeErr)
			writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
			return
		}
		characters, err = h.material.UploadText(r.Context(), courseID, req.Text)
	}

	if err != nil {
		log.Printf("[ERROR] Material upload failed for course %s: %v", courseID, err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, models.UploadMaterialResponse{Characters: characters})
}

func (h *CourseHandler) uploadFromForm(r *http.Request, courseID string) (int, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return 0, errors.Join(models.ErrUnsupportedInput, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return 0, errors.Join(models.ErrUnsupportedInput, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return 0, err
	}

	mimeType := header.Header.Get("Content-Type")
	return h.material.UploadFile(r.Context(), courseID, header.Filename, mimeType, data)
}

func (h *CourseHandler) GenerateContent(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received content generation request for course %s", courseID)

	response, err := h.courses.GenerateContent(r.Context(), courseID)
	if err != nil {
		log.Printf("[ERROR] Content generation failed for course %s: %v", courseID, err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, response)
}
