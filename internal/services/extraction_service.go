package services

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"

	apperrors "study_tutor_go_backend/internal/errors"
	"study_tutor_go_backend/internal/models"
)

// ExtractionService pulls plain text out of uploaded study files. Each
// supported file kind has its own branch; any failure surfaces as an
// ExtractionError and the document is marked failed without auto-retry.
type ExtractionService struct {
	transcriber ImageTranscriber
}

func NewExtractionService(transcriber ImageTranscriber) *ExtractionService {
	return &ExtractionService{transcriber: transcriber}
}

func (s *ExtractionService) ExtractText(ctx context.Context, path, fileType string) (string, error) {
	switch fileType {
	case models.FileTypePDF:
		return s.extractTextFromPDF(path)
	case models.FileTypePNG, models.FileTypeJPEG:
		return s.extractTextFromImage(ctx, path, fileType)
	case models.FileTypeDOCX:
		return s.extractTextFromDOCX(path)
	default:
		return "", apperrors.NewExtractionError(fmt.Sprintf("unsupported file type: %s", fileType), nil)
	}
}

func (s *ExtractionService) extractTextFromPDF(pdfPath string) (string, error) {
	// Reject malformed files up front rather than partway through a page loop.
	if err := pdfcpu.ValidateFile(pdfPath, nil); err != nil {
		return "", apperrors.NewExtractionError("invalid or corrupted PDF", err)
	}

	f, r, err := pdf.Open(pdfPath)
	if err != nil {
		return "", apperrors.NewExtractionError("failed to open PDF", err)
	}
	defer f.Close()

	var content strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}

		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		content.WriteString(text)
		content.WriteString("\n\n")
	}

	if content.Len() == 0 {
		return "", apperrors.NewExtractionError("no text content extracted from PDF", nil)
	}

	return content.String(), nil
}

func (s *ExtractionService) extractTextFromImage(ctx context.Context, path, fileType string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", apperrors.NewExtractionError("failed to read image file", err)
	}

	text, err := s.transcriber.TranscribeImage(ctx, fileType, data)
	if err != nil {
		return "", apperrors.NewExtractionError("failed to transcribe image", err)
	}
	return text, nil
}

// docxBody mirrors the parts of word/document.xml we care about: paragraphs
// of text runs.
type docxBody struct {
	Paragraphs []struct {
		Runs []struct {
			Text string `xml:"t"`
		} `xml:"r"`
	} `xml:"body>p"`
}

func (s *ExtractionService) extractTextFromDOCX(path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", apperrors.NewExtractionError("failed to open DOCX archive", err)
	}
	defer reader.Close()

	var documentXML io.ReadCloser
	for _, file := range reader.File {
		if file.Name == "word/document.xml" {
			documentXML, err = file.Open()
			if err != nil {
				return "", apperrors.NewExtractionError("failed to read DOCX document body", err)
			}
			break
		}
	}
	if documentXML == nil {
		return "", apperrors.NewExtractionError("DOCX archive has no document body", nil)
	}
	defer documentXML.Close()

	var body docxBody
	if err := xml.NewDecoder(documentXML).Decode(&body); err != nil {
		return "", apperrors.NewExtractionError("failed to parse DOCX document body", err)
	}

	var content strings.Builder
	for _, paragraph := range body.Paragraphs {
		for _, run := range paragraph.Runs {
			content.WriteString(run.Text)
		}
		content.WriteString("\n\n")
	}

	text := strings.TrimSpace(content.String())
	if text == "" {
		return "", apperrors.NewExtractionError("no text content extracted from DOCX", nil)
	}
	return text, nil
}
