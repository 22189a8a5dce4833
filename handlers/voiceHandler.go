package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"studyhall/models"
	"studyhall/services"

	"github.com/gorilla/mux"
)

type VoiceHandler struct {
	voice *services.VoiceService
}

func NewVoiceHandler(voice *services.VoiceService) *VoiceHandler {
	return &VoiceHandler{voice: voice}
}

func (h *VoiceHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/voice/token", h.MintToken).Methods("POST")
}

// MintToken proxies an ephemeral realtime token request. The upstream status
// and body pass through so the browser client sees exactly what the realtime
// API returned.
func (h *VoiceHandler) MintToken(w http.ResponseWriter, r *http.Request) {
	log.Printf("[INFO] Received voice token request")

	var req models.VoiceTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode voice token JSON: %v", err)
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	token, err := h.voice.MintToken(r.Context(), req.CourseID)
	if err != nil {
		log.Printf("[ERROR] Voice token mint failed: %v", err)
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Baseline-Questions", strconv.Itoa(token.BaselineQuestions))
	w.WriteHeader(token.StatusCode)
	w.Write(token.Body)
}
