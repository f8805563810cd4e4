package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/orgvault/orgvault/internal/common"
	"github.com/orgvault/orgvault/internal/models"
)

// Codec converts a record to and from its archived payload. Both directions
// are pure; Decode reports common.ErrorMalformedPayload on corrupt or
// kind-mismatched input instead of panicking.
//
// Payloads are JSON with field names preserved, so partial reads (summaries)
// stay possible without the native type. Soft foreign keys are serialized as
// raw identifiers because the referenced entity may be gone at restore time.
type Codec interface {
	Encode(record any) ([]byte, error)
	Decode(payload []byte) (any, error)
}

// jsonCodec is the Codec for a concrete record struct T. Decoding is strict:
// unknown fields fail, which catches payloads written under a different kind
// tag, and a validate hook rejects records missing identity fields.
type jsonCodec[T any] struct {
	validate func(*T) error
}

func (c jsonCodec[T]) Encode(record any) ([]byte, error) {
	r, ok := record.(*T)
	if !ok {
		return nil, fmt.Errorf("%w: cannot encode %T", common.ErrorMalformedPayload, record)
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorMalformedPayload, err)
	}
	return b, nil
}

func (c jsonCodec[T]) Decode(payload []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	r := new(T)
	if err := dec.Decode(r); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorMalformedPayload, err)
	}
	if c.validate != nil {
		if err := c.validate(r); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorMalformedPayload, err)
		}
	}
	return r, nil
}

func requireIdentity(id, userID string) error {
	if id == "" || userID == "" {
		return fmt.Errorf("missing identity fields")
	}
	return nil
}

// NoteCodec returns the codec for models.Note.
func NoteCodec() Codec {
	return jsonCodec[models.Note]{validate: func(n *models.Note) error {
		return requireIdentity(n.ID, n.UserID)
	}}
}

// TaskCodec returns the codec for models.Task.
func TaskCodec() Codec {
	return jsonCodec[models.Task]{validate: func(t *models.Task) error {
		return requireIdentity(t.ID, t.UserID)
	}}
}

// TransactionCodec returns the codec for models.Transaction.
func TransactionCodec() Codec {
	return jsonCodec[models.Transaction]{validate: func(t *models.Transaction) error {
		return requireIdentity(t.ID, t.UserID)
	}}
}

// BudgetCodec returns the codec for models.Budget.
func BudgetCodec() Codec {
	return jsonCodec[models.Budget]{validate: func(b *models.Budget) error {
		return requireIdentity(b.ID, b.UserID)
	}}
}

// GoalCodec returns the codec for models.Goal.
func GoalCodec() Codec {
	return jsonCodec[models.Goal]{validate: func(g *models.Goal) error {
		return requireIdentity(g.ID, g.UserID)
	}}
}
