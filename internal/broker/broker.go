package broker

import (
	"sync"

	"github.com/google/uuid"
)

// DocumentEvent is pushed when an ingestion run changes a document's state.
// Terminal is true for completed and failed so subscribers know when to stop
// waiting instead of polling the status endpoint.
type DocumentEvent struct {
	DocumentID  uuid.UUID `json:"documentId"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	ChunksCount int       `json:"chunksCount"`
	Error       string    `json:"error,omitempty"`
	Terminal    bool      `json:"terminal"`
}

// Broker fans document events out to per-user subscriber channels.
type Broker struct {
	subscribers map[string][]chan DocumentEvent
	mu          sync.RWMutex
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string][]chan DocumentEvent),
	}
}

// Subscribe registers a channel for all document events of one user.
func (b *Broker) Subscribe(userID string) <-chan DocumentEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan DocumentEvent, 8)
	b.subscribers[userID] = append(b.subscribers[userID], ch)
	return ch
}

func (b *Broker) Unsubscribe(userID string, ch <-chan DocumentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if chans, ok := b.subscribers[userID]; ok {
		for i, c := range chans {
			if c == ch {
				b.subscribers[userID] = append(chans[:i], chans[i+1:]...)
				close(c)
				break
			}
		}
	}
}

// Publish delivers the event to every subscriber of the user. Slow
// subscribers drop events rather than block the ingestion goroutine.
func (b *Broker) Publish(userID string, event DocumentEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}
