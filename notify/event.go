package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const TypeJourneyUpdate = "JOURNEY_UPDATE"

// Event is what travels over the pub/sub channel.
type Event struct {
	Recipients []string          `json:"recipients"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	SentAt     time.Time         `json:"sent_at"`
}

// Notification is what one recipient's socket receives.
type Notification struct {
	ID          string            `json:"id"`
	RecipientID string            `json:"recipient_id"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// fanOut hands one payload per recipient to the hub.
func fanOut(hub *Hub, ev Event) error {
	for _, r := range ev.Recipients {
		data, err := json.Marshal(Notification{
			ID:          uuid.NewString(),
			RecipientID: r,
			Type:        TypeJourneyUpdate,
			Title:       ev.Title,
			Message:     ev.Message,
			Metadata:    ev.Metadata,
			CreatedAt:   ev.SentAt,
		})
		if err != nil {
			return err
		}
		hub.Deliver(r, data)
	}
	return nil
}

// Local delivers straight to an in-process hub. It serves single-instance
// deployments running without Redis.
type Local struct {
	Hub *Hub
}

func (l Local) Send(_ context.Context, recipients []string, title, message string, metadata map[string]string) error {
	return fanOut(l.Hub, Event{Recipients: recipients, Title: title, Message: message, Metadata: metadata, SentAt: time.Now().UTC()})
}
