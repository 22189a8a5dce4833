package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"studyhall/config"
	"studyhall/db"
	"studyhall/models"
	"studyhall/services/docindex"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
)

// Creates the material chunk index if it does not exist and reindexes the
// stored material of every course. Run once at setup, or again after a bulk
// import.
func main() {
	log.Printf("[INFO] Starting material index setup")

	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("[ERROR] DB_URL environment variable is required")
	}

	if cfg.PineconeAPIKey == "" {
		log.Fatal("[ERROR] PINECONE_API_KEY environment variable is required")
	}

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("[ERROR] OPENAI_API_KEY environment variable is required")
	}

	courseRepo, err := db.NewPostgresCourseRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize course database: %v", err)
	}
	defer courseRepo.Close()

	artifactRepo, err := db.NewPostgresArtifactRepository(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize artifact database: %v", err)
	}
	defer artifactRepo.Close()

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: cfg.PineconeAPIKey,
	})
	if err != nil {
		log.Fatalf("[ERROR] Failed to create Pinecone client: %v", err)
	}

	if err := ensureIndex(pc, cfg.PineconeIndexName); err != nil {
		log.Fatalf("[ERROR] Failed to ensure index: %v", err)
	}

	index, err := docindex.NewService(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName)
	if err != nil {
		log.Fatalf("[ERROR] Failed to initialize document index service: %v", err)
	}

	courses, err := courseRepo.GetAllCourses()
	if err != nil {
		log.Fatalf("[ERROR] Failed to retrieve courses: %v", err)
	}

	log.Printf("[INFO] Retrieved %d courses from database", len(courses))

	ctx := context.Background()
	for i, course := range courses {
		log.Printf("[INFO] Processing course %d/%d (%s)", i+1, len(courses), course.ID)

		material, err := artifactRepo.GetArtifact(course.ID, db.KindMaterial)
		if err != nil {
			if errors.Is(err, models.ErrArtifactNotFound) {
				log.Printf("[INFO] Course %s has no material, skipping", course.ID)
				continue
			}
			log.Printf("[ERROR] Failed to load material for course %s: %v", course.ID, err)
			continue
		}

		if err := index.IndexMaterial(ctx, course.ID, material); err != nil {
			log.Printf("[ERROR] Failed to index material for course %s: %v", course.ID, err)
			continue
		}

		log.Printf("[INFO] Successfully indexed material for course %s", course.ID)
	}

	log.Printf("[INFO] Material index setup completed")
}

func ensureIndex(pc *pinecone.Client, indexName string) error {
	ctx := context.Background()

	indexes, err := pc.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}

	for _, idx := range indexes {
		if idx.Name == indexName {
			log.Printf("[INFO] Index %s already exists", indexName)
			return nil
		}
	}

	log.Printf("[INFO] Creating Pinecone index: %s", indexName)
	dimension := int32(1536) // OpenAI ada-002 embedding dimension
	deletionProtection := pinecone.DeletionProtectionDisabled
	metric := pinecone.Cosine

	_, err = pc.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:               indexName,
		Dimension:          &dimension,
		Metric:             &metric,
		Cloud:              pinecone.Aws,
		Region:             "us-east-1",
		DeletionProtection: &deletionProtection,
		Tags:               &pinecone.IndexTags{"project": "studyhall"},
	})
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	for {
		idx, err := pc.DescribeIndex(ctx, indexName)
		if err != nil {
			return fmt.Errorf("failed to describe index: %w", err)
		}
		if idx.Status.Ready {
			log.Printf("[INFO] Index %s is ready", indexName)
			break
		}
		log.Printf("[INFO] Waiting for index %s to be ready...", indexName)
		time.Sleep(10 * time.Second)
	}

	return nil
}
