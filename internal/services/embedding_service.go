package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	apperrors "study_tutor_go_backend/internal/errors"
)

// GenAIEmbeddingService implements EmbeddingProvider and ImageTranscriber
// on top of the Gemini client.
type GenAIEmbeddingService struct {
	client         *genai.Client
	embeddingModel string
	visionModel    string
}

func NewGenAIEmbeddingService(client *genai.Client, embeddingModel string) *GenAIEmbeddingService {
	return &GenAIEmbeddingService{
		client:         client,
		embeddingModel: embeddingModel,
		visionModel:    "gemini-1.5-flash",
	}
}

func (s *GenAIEmbeddingService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	em := s.client.EmbeddingModel(s.embeddingModel)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, apperrors.NewEmbeddingError(err)
	}
	if res.Embedding == nil {
		return nil, apperrors.NewEmbeddingError(fmt.Errorf("empty embedding response"))
	}
	return res.Embedding.Values, nil
}

// EmbedTexts sends all texts in a single batched call. The returned vectors
// are index-aligned with the input slice.
func (s *GenAIEmbeddingService) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	em := s.client.EmbeddingModel(s.embeddingModel)
	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, apperrors.NewEmbeddingError(err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, apperrors.NewEmbeddingError(fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(res.Embeddings)))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, embedding := range res.Embeddings {
		vectors[i] = embedding.Values
	}
	return vectors, nil
}

// TranscribeImage asks the vision model for a verbatim transcription of the
// text visible in the image.
func (s *GenAIEmbeddingService) TranscribeImage(ctx context.Context, format string, data []byte) (string, error) {
	model := s.client.GenerativeModel(s.visionModel)
	resp, err := model.GenerateContent(ctx,
		genai.ImageData(format, data),
		genai.Text("Transcribe all text visible in this image. Return only the transcribed text, preserving paragraph breaks."),
	)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe image: %v", err)
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text recognized in image")
	}
	return sb.String(), nil
}
