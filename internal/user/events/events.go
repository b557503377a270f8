package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rgarchitects/internal/user"
)

type Type string

const (
	TypeCreated Type = "users.created"
	TypeUpdated Type = "users.updated"
	TypeDeleted Type = "users.deleted"
)

// Event публикуется после успешного коммита операции.
type Event struct {
	ID         uuid.UUID  `json:"id"`
	Type       Type       `json:"type"`
	UserID     int64      `json:"userId"`
	User       *user.User `json:"user,omitempty"`
	OccurredAt time.Time  `json:"occurredAt"`
}

func New(t Type, userID int64, u *user.User) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		UserID:     userID,
		User:       u,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Event) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	return data, nil
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
