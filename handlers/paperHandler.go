package handlers

import (
	"log"
	"net/http"

	"studyhall/services"

	"github.com/gorilla/mux"
)

type PaperHandler struct {
	papers *services.PaperService
}

func NewPaperHandler(papers *services.PaperService) *PaperHandler {
	return &PaperHandler{papers: papers}
}

func (h *PaperHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/courses/{id}/paper", h.GeneratePaper).Methods("POST")
}

func (h *PaperHandler) GeneratePaper(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)["id"]
	log.Printf("[INFO] Received paper generation request for course %s", courseID)

	response, err := h.papers.GeneratePaper(r.Context(), courseID)
	if err != nil {
		log.Printf("[ERROR] Paper generation failed for course %s: %v", courseID, err)
		writeServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, response)
}
