package wsocket

import (
	"log"
	"net/http"
	"time"

	"study_tutor_go_backend/internal/broker"
	"study_tutor_go_backend/internal/models"

	"github.com/gorilla/websocket"
)

// Handler pushes document ingestion events to connected clients, replacing
// the poll-until-done pattern: the UI subscribes once and receives the
// terminal state the moment the background job reaches it.
type Handler struct {
	events       *broker.Broker
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

type Message struct {
	Type  string               `json:"type"`
	Event broker.DocumentEvent `json:"event,omitempty"`
}

func NewHandler(events *broker.Broker, upgrader websocket.Upgrader, pingInterval time.Duration) *Handler {
	return &Handler{
		events:       events,
		upgrader:     upgrader,
		pingInterval: pingInterval,
	}
}

func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request, user interface{}) {
	userModel, ok := user.(*models.User)
	if !ok {
		http.Error(w, "No authenticated user", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading connection: %v", err)
		return
	}
	defer conn.Close()

	userID := userModel.ID.String()
	eventChan := h.events.Subscribe(userID)
	defer h.events.Unsubscribe(userID, eventChan)

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	// Drain the client side so closes are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case event, open := <-eventChan:
			if !open {
				return
			}
			if err := conn.WriteJSON(Message{Type: "document_update", Event: event}); err != nil {
				log.Printf("Error writing document event: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
