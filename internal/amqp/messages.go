package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

type EventKind string

const (
	KindPayment EventKind = "payment"
	KindAdvance EventKind = "advance"
)

type EventOp string

const (
	OpUpsert EventOp = "upsert"
	OpDelete EventOp = "delete"
)

// LedgerEvent announces that a payment or advance changed. It carries only the
// record id; the consumer loads the current state from storage.
type LedgerEvent struct {
	Kind      EventKind `json:"kind"`
	ID        string    `json:"id"`
	Op        EventOp   `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(kind EventKind, id string, op EventOp) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		ID:        id,
		Op:        op,
		Timestamp: time.Now().UTC(),
	}
}

func (e *LedgerEvent) Validate() error {
	switch e.Kind {
	case KindPayment, KindAdvance:
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	switch e.Op {
	case OpUpsert, OpDelete:
	default:
		return fmt.Errorf("unknown event op %q", e.Op)
	}
	if e.ID == "" {
		return fmt.Errorf("event without record id")
	}
	return nil
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and validates an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
