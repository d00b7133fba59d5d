package services

import (
	"context"
)

// EmbeddingProvider turns text into fixed-dimension vectors. Batch calls
// return vectors index-aligned with their inputs.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ImageTranscriber extracts the readable text from an uploaded image.
type ImageTranscriber interface {
	TranscribeImage(ctx context.Context, format string, data []byte) (string, error)
}

// TextExtractor produces plain text from an uploaded file.
type TextExtractor interface {
	ExtractText(ctx context.Context, path, fileType string) (string, error)
}

// ChatMessage is one turn in the provider's expected message list.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResult is a successful chat-completion response.
type ChatResult struct {
	Content     string
	TotalTokens int
}

// ChatCompleter invokes the language-model provider's chat endpoint.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []ChatMessage) (*ChatResult, error)
}
