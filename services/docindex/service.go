package docindex

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	chunkCharLimit = 1200
	queryTopK      = 10
)

// Service indexes uploaded chapter material into per-course namespaces so
// prompts can carry the chunks most relevant to the current question instead
// of a blind prefix of the material.
type Service struct {
	client    *pinecone.Client
	embedder  embeddings.Embedder
	indexName string
}

func NewService(apiKey, openaiAPIKey, indexName string) (*Service, error) {
	log.Printf("[INFO] Initializing material index service")

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	llm, err := openai.New(
		openai.WithModel("gpt-4o-mini"),
		openai.WithToken(openaiAPIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	service := &Service{
		client:    pc,
		embedder:  embedder,
		indexName: indexName,
	}

	log.Printf("[INFO] Material index service initialized successfully")
	return service, nil
}

// IndexMaterial chunks the material text and upserts the chunks into the
// course's namespace. Re-uploading material overwrites chunks by id.
func (s *Service) IndexMaterial(ctx context.Context, courseID, material string) error {
	chunks := chunkMaterial(material)
	if len(chunks) == 0 {
		log.Printf("[INFO] No chunks produced for course %s", courseID)
		return nil
	}
	log.Printf("[INFO] Indexing %d material chunks for course %s", len(chunks), courseID)

	vectors, err := s.embedder.EmbedDocuments(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to embed material chunks: %w", err)
	}

	idxConn, err := s.courseConnection(ctx, courseID)
	if err != nil {
		return err
	}

	var upserts []*pinecone.Vector
	for i, chunk := range chunks {
		metadata, err := structpb.NewStruct(map[string]any{
			"course_id":   courseID,
			"chunk_index": i,
			"content":     chunk,
			"created_at":  time.Now().Format(time.RFC3339),
		})
		if err != nil {
			return fmt.Errorf("failed to create metadata struct for chunk %d: %w", i, err)
		}

		upserts = append(upserts, &pinecone.Vector{
			Id:       fmt.Sprintf("%s-%d", courseID, i),
			Values:   &vectors[i],
			Metadata: metadata,
		})
	}

	if _, err := idxConn.UpsertVectors(ctx, upserts); err != nil {
		return fmt.Errorf("failed to upsert material chunks: %w", err)
	}

	log.Printf("[INFO] Indexed %d chunks for course %s", len(upserts), courseID)
	return nil
}

// QueryChunks returns up to limit material chunks for the course ranked by
// relevance to the focus text.
func (s *Service) QueryChunks(ctx context.Context, courseID, focus string, limit int) ([]string, error) {
	log.Printf("[INFO] Querying material chunks for course %s (limit %d)", courseID, limit)

	queryEmbeddings, err := s.embedder.EmbedDocuments(ctx, []string{focus})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	idxConn, err := s.courseConnection(ctx, courseID)
	if err != nil {
		return nil, err
	}

	result, err := idxConn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          queryEmbeddings[0],
		TopK:            queryTopK,
		IncludeValues:   false,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query material chunks: %w", err)
	}

	var chunks []string
	for _, match := range result.Matches {
		if match.Vector.Metadata == nil {
			continue
		}
		metadata := match.Vector.Metadata.AsMap()
		if content, ok := metadata["content"].(string); ok && content != "" {
			chunks = append(chunks, content)
		}
	}

	if len(chunks) > limit {
		chunks = chunks[:limit]
	}

	log.Printf("[INFO] Retrieved %d chunks for course %s", len(chunks), courseID)
	return chunks, nil
}

func (s *Service) courseConnection(ctx context.Context, courseID string) (*pinecone.IndexConnection, error) {
	idxDesc, err := s.client.DescribeIndex(ctx, s.indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index: %w", err)
	}

	idxConn, err := s.client.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: courseID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection: %w", err)
	}

	return idxConn, nil
}

// chunkMaterial splits material on blank lines and packs paragraphs into
// chunks bounded by chunkCharLimit.
func chunkMaterial(material string) []string {
	paragraphs := strings.Split(material, "\n\n")

	var chunks []string
	var current strings.Builder
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(para) > chunkCharLimit {
			chunks = append(chunks, current.String())
			current.Reset()
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)

		for current.Len() > chunkCharLimit {
			text := current.String()
			chunks = append(chunks, text[:chunkCharLimit])
			current.Reset()
			current.WriteString(text[chunkCharLimit:])
		}
	}

	if strings.TrimSpace(current.String()) != "" {
		chunks = append(chunks, current.String())
	}

	return chunks
}
