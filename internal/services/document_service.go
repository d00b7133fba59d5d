package services

import (
	"context"
	"fmt"
	"strings"

	"study_tutor_go_backend/internal/broker"
	apperrors "study_tutor_go_backend/internal/errors"
	"study_tutor_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"
)

// Progress milestones. Extraction accounts for the first slice, embedding
// and persistence fill the rest up to completion.
const (
	progressExtracting = 10
	progressExtracted  = 20
	progressComplete   = 100
)

// DocumentService runs the ingestion pipeline: extract text, chunk it,
// embed the chunks and persist them batch by batch. Persistence is
// incremental with a resumption cursor: an embedding failure aborts the run
// but keeps every committed batch, and a reprocess resumes from the cursor.
type DocumentService struct {
	docDB          DocumentServiceDB
	extractor      TextExtractor
	embedder       EmbeddingProvider
	events         *broker.Broker
	tokensPerChunk int
	overlapTokens  int
	charsPerToken  int
	embedBatchSize int
	logger         zerolog.Logger
}

func NewDocumentService(
	docDB DocumentServiceDB,
	extractor TextExtractor,
	embedder EmbeddingProvider,
	events *broker.Broker,
	tokensPerChunk, overlapTokens, charsPerToken, embedBatchSize int,
	logger zerolog.Logger,
) *DocumentService {
	return &DocumentService{
		docDB:          docDB,
		extractor:      extractor,
		embedder:       embedder,
		events:         events,
		tokensPerChunk: tokensPerChunk,
		overlapTokens:  overlapTokens,
		charsPerToken:  charsPerToken,
		embedBatchSize: embedBatchSize,
		logger:         logger,
	}
}

// Register records a freshly uploaded document in pending state.
func (s *DocumentService) Register(userID uuid.UUID, documentID uuid.UUID, fileName, storagePath, fileType string) (*models.Document, error) {
	switch fileType {
	case models.FileTypePDF, models.FileTypePNG, models.FileTypeJPEG, models.FileTypeDOCX:
	default:
		return nil, apperrors.New400Error(fmt.Sprintf("unsupported file type: %s", fileType))
	}

	doc := &models.Document{
		ID:          documentID,
		UserID:      userID,
		FileName:    fileName,
		StoragePath: storagePath,
		FileType:    fileType,
		Status:      models.DocumentStatusPending,
	}
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if err := s.docDB.CreateDocumentInDB(doc); err != nil {
		return nil, fmt.Errorf("failed to create document: %v", err)
	}
	return doc, nil
}

// Process runs the pipeline for one document. It is called on a background
// goroutine decoupled from the upload request; completion is pushed over
// the event broker rather than discovered by polling.
func (s *DocumentService) Process(ctx context.Context, documentID uuid.UUID) error {
	doc, err := s.docDB.GetDocumentFromDB(documentID)
	if err != nil {
		return fmt.Errorf("failed to load document %s: %v", documentID, err)
	}

	if err := s.docDB.MarkDocumentProcessing(doc.ID); err != nil {
		return fmt.Errorf("failed to mark document processing: %v", err)
	}
	s.progress(doc, progressExtracting)

	text, err := s.extractor.ExtractText(ctx, doc.StoragePath, doc.FileType)
	if err != nil {
		return s.fail(doc, err)
	}
	s.progress(doc, progressExtracted)

	chunks := Chunk(text, s.tokensPerChunk, s.overlapTokens, s.charsPerToken)
	if len(chunks) == 0 {
		return s.fail(doc, apperrors.NewExtractionError("document produced no text chunks", nil))
	}

	// Resume from the cursor: chunks before it were embedded and committed
	// by a previous run.
	cursor := doc.ChunksPersisted
	if cursor > len(chunks) {
		cursor = 0
	}

	for cursor < len(chunks) {
		end := cursor + s.embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[cursor:end]

		vectors, err := s.embedder.EmbedTexts(ctx, batch)
		if err != nil {
			// Committed batches survive; the next reprocess resumes here.
			return s.fail(doc, err)
		}

		rows := make([]models.DocumentChunk, len(batch))
		for i, content := range batch {
			rows[i] = models.DocumentChunk{
				DocumentID: doc.ID,
				ChunkIndex: cursor + i,
				Content:    content,
				Embedding:  pgvector.NewVector(vectors[i]),
				Summary:    summarize(content),
			}
		}
		if err := s.docDB.SaveChunkBatch(doc.ID, rows, end); err != nil {
			return s.fail(doc, fmt.Errorf("failed to persist chunk batch: %v", err))
		}

		cursor = end
		pct := progressExtracted + (progressComplete-progressExtracted)*cursor/len(chunks)
		if pct >= progressComplete {
			// Completion itself sets 100.
			pct = progressComplete - 1
		}
		s.progress(doc, pct)
	}

	if err := s.docDB.CompleteDocument(doc.ID, len(chunks)); err != nil {
		return fmt.Errorf("failed to complete document: %v", err)
	}
	s.logger.Info().Str("documentID", doc.ID.String()).Int("chunks", len(chunks)).Msg("document ingestion completed")
	s.events.Publish(doc.UserID.String(), broker.DocumentEvent{
		DocumentID:  doc.ID,
		Status:      models.DocumentStatusCompleted,
		Progress:    progressComplete,
		ChunksCount: len(chunks),
		Terminal:    true,
	})
	return nil
}

// Reprocess is the owner-triggered recovery path for a failed document. An
// extraction failure starts over; an embedding or persistence failure
// resumes from the cursor.
func (s *DocumentService) Reprocess(ctx context.Context, documentID, userID uuid.UUID) (*models.Document, error) {
	doc, err := s.docDB.GetDocumentForUserFromDB(documentID, userID)
	if err != nil {
		return nil, apperrors.New404Error("document not found")
	}
	if doc.Status == models.DocumentStatusProcessing {
		return nil, apperrors.New400Error("document is already being processed")
	}

	keepCursor := doc.ChunksPersisted > 0
	if err := s.docDB.ResetDocumentForReprocess(doc.ID, keepCursor); err != nil {
		return nil, fmt.Errorf("failed to reset document: %v", err)
	}

	go func() {
		if err := s.Process(context.Background(), doc.ID); err != nil {
			s.logger.Error().Err(err).Str("documentID", doc.ID.String()).Msg("reprocess run failed")
		}
	}()
	return doc, nil
}

func (s *DocumentService) progress(doc *models.Document, progress int) {
	if err := s.docDB.RaiseDocumentProgress(doc.ID, progress); err != nil {
		s.logger.Warn().Err(err).Str("documentID", doc.ID.String()).Msg("failed to update progress")
	}
	s.events.Publish(doc.UserID.String(), broker.DocumentEvent{
		DocumentID: doc.ID,
		Status:     models.DocumentStatusProcessing,
		Progress:   progress,
	})
}

func (s *DocumentService) fail(doc *models.Document, cause error) error {
	s.logger.Error().Err(cause).Str("documentID", doc.ID.String()).Msg("document ingestion failed")
	if err := s.docDB.FailDocument(doc.ID, cause.Error()); err != nil {
		s.logger.Error().Err(err).Str("documentID", doc.ID.String()).Msg("failed to mark document failed")
	}
	s.events.Publish(doc.UserID.String(), broker.DocumentEvent{
		DocumentID: doc.ID,
		Status:     models.DocumentStatusFailed,
		Error:      cause.Error(),
		Terminal:   true,
	})
	return cause
}

// summarize keeps the chunk's opening line as a cheap label for display.
func summarize(content string) string {
	const maxSummary = 120
	line := content
	if idx := strings.Index(line, "\n"); idx > 0 {
		line = line[:idx]
	}
	if runes := []rune(line); len(runes) > maxSummary {
		line = string(runes[:maxSummary])
	}
	return strings.TrimSpace(line)
}
