package services

import (
	"bytes"
	"fmt"

	"study_tutor_go_backend/internal/models"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// TranscriptService renders a tutoring session's conversation as a PDF
// the student can download and review offline.
type TranscriptService struct {
	conversationDB ConversationServiceDB
}

func NewTranscriptService(conversationDB ConversationServiceDB) *TranscriptService {
	return &TranscriptService{conversationDB: conversationDB}
}

func (s *TranscriptService) RenderSessionPDF(userID uuid.UUID, sessionID string) ([]byte, error) {
	messages, err := s.conversationDB.GetSessionMessagesFromDB(userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session messages: %v", err)
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("session %s has no messages", sessionID)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Tutoring session %s", sessionID), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Tutoring Session Transcript", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Session %s", sessionID), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, msg := range messages {
		label := "Student"
		if msg.Role == models.RoleAssistant {
			label = "Tutor"
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, fmt.Sprintf("%s (%s)", label, msg.CreatedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, msg.Content, "", "L", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render transcript PDF: %v", err)
	}
	return buf.Bytes(), nil
}
