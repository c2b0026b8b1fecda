package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

type EventType string

const (
	EventTransactionCreated EventType = "transaction.created"
	EventTransactionUpdated EventType = "transaction.updated"
	EventTransactionDeleted EventType = "transaction.deleted"
	EventCategoryCreated    EventType = "category.created"
	EventCategoryUpdated    EventType = "category.updated"
	EventCategoryDeleted    EventType = "category.deleted"
)

// Event is a change notification. It carries ids only; consumers load the
// current record themselves.
type Event struct {
	Type          EventType `json:"type"`
	UserID        string    `json:"userId"`
	TransactionID string    `json:"transactionId,omitempty"`
	CategoryID    string    `json:"categoryId,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEvent(t EventType, userID, transactionID string) Event {
	return Event{
		Type:          t,
		UserID:        userID,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	}
}

func NewCategoryEvent(t EventType, userID, categoryID string) Event {
	return Event{
		Type:       t,
		UserID:     userID,
		CategoryID: categoryID,
		Timestamp:  time.Now().UTC(),
	}
}

// IsTransaction reports whether the event refers to a transaction.
func (e Event) IsTransaction() bool {
	return strings.HasPrefix(string(e.Type), "transaction.")
}

func (e Event) Validate() error {
	if e.UserID == "" {
		return errors.New("event without userId")
	}
	switch e.Type {
	case EventTransactionCreated, EventTransactionUpdated, EventTransactionDeleted:
		if e.TransactionID == "" {
			return fmt.Errorf("%s event without transactionId", e.Type)
		}
	case EventCategoryCreated, EventCategoryUpdated, EventCategoryDeleted:
		if e.CategoryID == "" {
			return fmt.Errorf("%s event without categoryId", e.Type)
		}
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
