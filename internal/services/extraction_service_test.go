package services

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	apperrors "study_tutor_go_backend/internal/errors"
	"study_tutor_go_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockTranscriber struct {
	mock.Mock
}

func (m *mockTranscriber) TranscribeImage(ctx context.Context, fileType string, data []byte) (string, error) {
	args := m.Called(ctx, fileType, data)
	return args.String(0), args.Error(1)
}

func writeDOCX(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.docx")
	file, err := os.Create(path)
	assert.NoError(t, err)

	w := zip.NewWriter(file)
	entry, err := w.Create("word/document.xml")
	assert.NoError(t, err)
	_, err = entry.Write([]byte(documentXML))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, file.Close())
	return path
}

func TestExtractTextRejectsUnsupportedType(t *testing.T) {
	service := NewExtractionService(new(mockTranscriber))

	_, err := service.ExtractText(context.Background(), "/tmp/file.csv", "csv")
	assert.Error(t, err)
	customErr, ok := err.(*apperrors.CustomError)
	assert.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeExtraction, customErr.Type)
}

func TestExtractTextFromDOCX(t *testing.T) {
	path := writeDOCX(t, `<?xml version="1.0"?>
<document>
  <body>
    <p><r><t>Cells are the basic unit of life.</t></r></p>
    <p><r><t>They divide </t></r><r><t>by mitosis.</t></r></p>
  </body>
</document>`)

	service := NewExtractionService(new(mockTranscriber))
	text, err := service.ExtractText(context.Background(), path, models.FileTypeDOCX)

	assert.NoError(t, err)
	assert.Contains(t, text, "Cells are the basic unit of life.")
	// Runs in one paragraph join without separators.
	assert.Contains(t, text, "They divide by mitosis.")
}

func TestExtractTextFromDOCXWithoutBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	file, err := os.Create(path)
	assert.NoError(t, err)
	w := zip.NewWriter(file)
	assert.NoError(t, w.Close())
	assert.NoError(t, file.Close())

	service := NewExtractionService(new(mockTranscriber))
	_, err = service.ExtractText(context.Background(), path, models.FileTypeDOCX)

	assert.Error(t, err)
	customErr, ok := err.(*apperrors.CustomError)
	assert.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeExtraction, customErr.Type)
}

func TestExtractTextFromDOCXWithEmptyParagraphs(t *testing.T) {
	path := writeDOCX(t, `<?xml version="1.0"?><document><body><p></p><p></p></body></document>`)

	service := NewExtractionService(new(mockTranscriber))
	_, err := service.ExtractText(context.Background(), path, models.FileTypeDOCX)
	assert.Error(t, err)
}

func TestExtractTextFromImageUsesTranscriber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whiteboard.png")
	assert.NoError(t, os.WriteFile(path, []byte("fake png bytes"), 0o644))

	transcriber := new(mockTranscriber)
	transcriber.On("TranscribeImage", mock.Anything, models.FileTypePNG, []byte("fake png bytes")).
		Return("E = mc^2 written on a whiteboard", nil)

	service := NewExtractionService(transcriber)
	text, err := service.ExtractText(context.Background(), path, models.FileTypePNG)

	assert.NoError(t, err)
	assert.Equal(t, "E = mc^2 written on a whiteboard", text)
	transcriber.AssertExpectations(t)
}

func TestExtractTextFromMissingImage(t *testing.T) {
	service := NewExtractionService(new(mockTranscriber))

	_, err := service.ExtractText(context.Background(), filepath.Join(t.TempDir(), "missing.png"), models.FileTypePNG)
	assert.Error(t, err)
	customErr, ok := err.(*apperrors.CustomError)
	assert.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeExtraction, customErr.Type)
}
