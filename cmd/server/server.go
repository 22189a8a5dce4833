package main

import (
	"fmt"
	"log"
	"net/http"

	"studyhall/config"
	"studyhall/db"
	"studyhall/handlers"
	"studyhall/services"
	"studyhall/services/docindex"
	"studyhall/services/session"
	"studyhall/services/studyplan"

	"github.com/gorilla/mux"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DB_URL environment variable is required")
	}

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	if cfg.AnthropicAPIKey == "" {
		log.Fatal("ANTHROPIC_API_KEY environment variable is required")
	}

	courseRepo, err := db.NewPostgresCourseRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize course database: %v", err)
	}
	defer courseRepo.Close()

	sessionRepo, err := db.NewPostgresSessionRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize session database: %v", err)
	}
	defer sessionRepo.Close()

	artifactRepo, err := db.NewPostgresArtifactRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize artifact database: %v", err)
	}
	defer artifactRepo.Close()

	llm, err := openai.New(
		openai.WithToken(cfg.OpenAIAPIKey),
		openai.WithModel(cfg.OpenAIModel),
	)
	if err != nil {
		log.Fatalf("Failed to initialize OpenAI client: %v", err)
	}

	var docindexService *docindex.Service
	if cfg.PineconeAPIKey != "" {
		docindexService, err = docindex.NewService(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName)
		if err != nil {
			log.Fatalf("Failed to initialize document index service: %v", err)
		}
	} else {
		log.Println("PINECONE_API_KEY not set, material chunk index disabled")
	}

	courseService := services.NewCourseService(courseRepo, artifactRepo, llm)
	materialService := services.NewMaterialService(courseRepo, artifactRepo, llm, docindexService)
	sessionService := session.NewService(courseRepo, sessionRepo, artifactRepo, llm, docindexService)
	paperService := services.NewPaperService(courseRepo, artifactRepo, courseService, cfg.PDFRenderCmd, cfg.DataDir)
	voiceService := services.NewVoiceService(courseRepo, artifactRepo, cfg.RealtimeBaseURL, cfg.OpenAIAPIKey, cfg.RealtimeModel)

	studyplanService, err := studyplan.NewService(cfg.AnthropicAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize study plan service: %v", err)
	}

	courseHandler := handlers.NewCourseHandler(courseService, materialService)
	sessionHandler := handlers.NewSessionHandler(sessionService, courseService, studyplanService)
	assessmentHandler := handlers.NewAssessmentHandler(sessionService, courseService, studyplanService)
	paperHandler := handlers.NewPaperHandler(paperService)
	voiceHandler := handlers.NewVoiceHandler(voiceService)

	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(jsonMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	courseHandler.RegisterRoutes(router)
	sessionHandler.RegisterRoutes(router)
	assessmentHandler.RegisterRoutes(router)
	paperHandler.RegisterRoutes(router)
	voiceHandler.RegisterRoutes(router)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
